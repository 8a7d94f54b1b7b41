package pipeline

import (
	"net/url"
	"os"
	"path/filepath"
	"regexp"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/avplay/glplayer/pkg/logger"
)

var uriSchemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// NormalizeURI returns input unchanged when it already carries a URI
// scheme. Anything else is treated as a filename and converted to a
// file:// URI, which requires the file to exist. When both
// interpretations fail, the returned error describes both failures.
func NormalizeURI(input string) (string, error) {
	if uriSchemeRe.MatchString(input) {
		return input, nil
	}

	uri, err := filenameToURI(input)
	if err != nil {
		return "", multierr.Append(
			errors.Wrapf(ErrInvalidInput, "%q", input),
			err,
		)
	}

	logger.Infow("input is not a URI, treated it as a filename", "uri", uri)
	return uri, nil
}

func filenameToURI(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrap(err, "could not resolve filename")
	}
	if _, err := os.Stat(abs); err != nil {
		return "", errors.Wrap(err, "could not convert filename to a file URI")
	}
	u := url.URL{Scheme: "file", Path: abs}
	return u.String(), nil
}
