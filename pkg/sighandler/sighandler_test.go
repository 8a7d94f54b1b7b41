package sighandler

import (
	"os/signal"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

type fakeCloser struct {
	closes atomic.Int32
}

func (f *fakeCloser) Close() {
	f.closes.Inc()
}

func TestIgnoredSignalStaysIgnored(t *testing.T) {
	signal.Ignore(syscall.SIGHUP)
	defer signal.Reset(syscall.SIGHUP)

	h := New()
	target := &fakeCloser{}
	require.NoError(t, h.Setup(target))
	require.True(t, signal.Ignored(syscall.SIGHUP))

	h.Close()
	require.True(t, signal.Ignored(syscall.SIGHUP))
	require.EqualValues(t, 0, target.closes.Load())
}

func TestSignalRequestsClose(t *testing.T) {
	h := New()
	target := &fakeCloser{}
	require.NoError(t, h.Setup(target))
	defer h.Close()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGHUP))
	require.Eventually(t, func() bool {
		return target.closes.Load() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestRapidSignalsCoalesce(t *testing.T) {
	h := New()
	target := &fakeCloser{}
	require.NoError(t, h.Setup(target))
	defer h.Close()

	pid := syscall.Getpid()
	require.NoError(t, syscall.Kill(pid, syscall.SIGHUP))
	require.NoError(t, syscall.Kill(pid, syscall.SIGHUP))

	require.Eventually(t, func() bool {
		return target.closes.Load() == 1
	}, time.Second, 10*time.Millisecond)

	// give a stacked close time to show up if one existed
	time.Sleep(100 * time.Millisecond)
	require.EqualValues(t, 1, target.closes.Load())
}

func TestCloseIsIdempotent(t *testing.T) {
	h := New()
	require.NoError(t, h.Setup(&fakeCloser{}))
	h.Close()
	h.Close()
}
