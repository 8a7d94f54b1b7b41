package pipeline

import "errors"

var (
	ErrAlreadyConfigured = errors.New("session is already configured")
	ErrNotConfigured     = errors.New("session has not been configured")
	ErrInvalidInput      = errors.New("input is neither a valid URI nor an existing file")
)
