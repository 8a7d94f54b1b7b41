package guard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunsOnFailurePath(t *testing.T) {
	released := 0
	func() {
		g := New(func() { released++ })
		defer g.Run()
	}()
	require.Equal(t, 1, released)
}

func TestDismissedGuardDoesNothing(t *testing.T) {
	released := 0
	func() {
		g := New(func() { released++ })
		defer g.Run()
		g.Dismiss()
	}()
	require.Equal(t, 0, released)
}

func TestRunsAtMostOnce(t *testing.T) {
	released := 0
	g := New(func() { released++ })
	g.Run()
	g.Run()
	require.Equal(t, 1, released)
}

func TestRollbackOrder(t *testing.T) {
	// mirrors the setup pattern: inner resources release before outer
	// ones, and a dismissed guard drops out of the unwind entirely
	var order []string
	func() {
		outer := New(func() { order = append(order, "outer") })
		defer outer.Run()

		owned := New(func() { order = append(order, "owned") })
		defer owned.Run()
		owned.Dismiss()

		inner := New(func() { order = append(order, "inner") })
		defer inner.Run()
	}()
	require.Equal(t, []string{"inner", "outer"}, order)
}
