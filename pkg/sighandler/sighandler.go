// Package sighandler bridges termination signals onto the UI event
// loop through a self-pipe: the signal side performs only a one-byte
// pipe write, and a listener on the read side asks the window to
// close. Multiple rapid signals coalesce into a single close request.
package sighandler

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/avplay/glplayer/pkg/logger"
)

// Closer is asked to shut down when a termination signal arrives.
// fyne.Window satisfies it.
type Closer interface {
	Close()
}

// pipeActive mirrors the write end's availability so a signal arriving
// after teardown is a safe no-op.
var pipeActive = atomic.NewBool(false)

var handledSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
	syscall.SIGHUP,
}

type Handler struct {
	notify    chan os.Signal
	pipeR     *os.File
	pipeW     *os.File
	installed []os.Signal
	closeOnce sync.Once
	teardown  chan struct{}
	done      sync.WaitGroup
}

func New() *Handler {
	return &Handler{
		teardown: make(chan struct{}),
	}
}

// Setup installs handlers for the termination signals and arranges for
// target to be asked to close when one is caught. A signal already set
// to be ignored by the environment is never intercepted.
func (h *Handler) Setup(target Closer) error {
	r, w, err := os.Pipe()
	if err != nil {
		return errors.Wrap(err, "could not create signal pipe")
	}
	h.pipeR, h.pipeW = r, w
	pipeActive.Store(true)

	for _, sig := range handledSignals {
		if signal.Ignored(sig) {
			logger.Debugw("leaving ignored signal untouched", "signal", sig)
			continue
		}
		h.installed = append(h.installed, sig)
	}

	// Notify with an empty set would subscribe to every signal.
	h.notify = make(chan os.Signal, 1)
	if len(h.installed) > 0 {
		signal.Notify(h.notify, h.installed...)
	}

	h.done.Add(2)
	go h.forward()
	go h.listen(target)
	return nil
}

// forward is the restricted side of the bridge: one atomic pipe write
// per caught signal, nothing else.
func (h *Handler) forward() {
	defer h.done.Done()
	for {
		select {
		case <-h.teardown:
			return
		case <-h.notify:
			if !pipeActive.Load() {
				continue
			}
			if _, err := h.pipeW.Write([]byte{1}); err != nil {
				return
			}
		}
	}
}

// listen wakes when the pipe becomes readable and requests a close.
// Read errors count as a close request unless teardown already began.
func (h *Handler) listen(target Closer) {
	defer h.done.Done()
	buf := make([]byte, 1)
	for {
		_, err := h.pipeR.Read(buf)
		select {
		case <-h.teardown:
			return
		default:
		}
		if err != nil {
			logger.Errorw("error reading from signal pipe", err)
		} else {
			logger.Infow("signal caught, quitting")
		}
		h.closeOnce.Do(target.Close)
		if err != nil {
			return
		}
	}
}

// Close restores the previous signal dispositions, tears the pipe
// down, and resets the availability flag. Ignored signals were never
// touched and remain ignored.
//
// Close waits for the listener goroutine, which may be inside
// target.Close; it must not be called from the target's own close
// path or the two will deadlock.
func (h *Handler) Close() {
	if h.pipeW == nil {
		return
	}
	pipeActive.Store(false)
	signal.Stop(h.notify)
	close(h.teardown)
	_ = h.pipeW.Close()
	_ = h.pipeR.Close()
	h.done.Wait()
	h.pipeR, h.pipeW = nil, nil
}
