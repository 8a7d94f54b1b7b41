// Package subtitle drives a display-bound text property with debounced
// visibility: each subtitle stays up for a duration scaled by its
// length, and a newer subtitle restarts the pending clear instead of
// stacking a second one.
package subtitle

import (
	"sync"
	"time"
	"unicode/utf8"
)

// TextSink receives subtitle text updates. fyne's binding.String
// satisfies it; binding writes are marshaled onto the UI thread, which
// makes Show safe to call from pipeline streaming threads.
type TextSink interface {
	Set(string) error
}

type Display struct {
	mu         sync.Mutex
	sink       TextSink
	timer      *time.Timer
	current    string
	gen        uint64
	minDisplay time.Duration
	perChar    time.Duration
}

func NewDisplay(sink TextSink, minDisplay, perChar time.Duration) *Display {
	return &Display{
		sink:       sink,
		minDisplay: minDisplay,
		perChar:    perChar,
	}
}

// Show writes text through the bound property and schedules a single
// pending clear. Empty text never starts a display cycle.
func (d *Display) Show(text string) {
	if text == "" {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// Stop cannot cancel a timer that has already fired but whose
	// callback has not yet taken the lock; the generation bump turns
	// such a stale clear into a no-op.
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.current = text
	_ = d.sink.Set(text)
	d.timer = time.AfterFunc(d.DisplayFor(text), func() {
		d.clear(gen)
	})
}

// DisplayFor returns how long text stays visible:
// max(length × perChar, minDisplay).
func (d *Display) DisplayFor(text string) time.Duration {
	dur := time.Duration(utf8.RuneCountInString(text)) * d.perChar
	if dur < d.minDisplay {
		dur = d.minDisplay
	}
	return dur
}

// Stop cancels any pending clear without touching the property.
func (d *Display) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// clear is a no-op when a newer subtitle or Stop superseded the timer
// that scheduled it.
func (d *Display) clear(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen || d.current == "" {
		return
	}
	d.current = ""
	_ = d.sink.Set("")
}
