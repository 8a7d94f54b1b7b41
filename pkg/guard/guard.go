// Package guard provides a scope guard for rollback-style cleanup:
// acquire a resource, defer the guard, and dismiss it once every later
// step has succeeded.
package guard

type Guard struct {
	release   func()
	dismissed bool
}

func New(release func()) *Guard {
	return &Guard{release: release}
}

// Run invokes the release func unless the guard was dismissed. Meant
// to be deferred at the acquisition site; runs at most once.
func (g *Guard) Run() {
	if g.dismissed || g.release == nil {
		return
	}
	release := g.release
	g.release = nil
	release()
}

// Dismiss disables the guard. Call it after ownership of the guarded
// resource has been handed off.
func (g *Guard) Dismiss() {
	g.dismissed = true
}
