// Package ui holds the single application window: a video canvas fed
// by the playback session and a subtitle overlay anchored to the
// bottom edge.
package ui

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"github.com/avplay/glplayer/pkg/config"
)

type Player struct {
	window   fyne.Window
	frame    *image.RGBA
	video    *canvas.Image
	subtitle binding.String
	label    *widget.Label
}

func NewPlayer(a fyne.App, conf *config.Config) *Player {
	w := a.NewWindow("glplayer")
	w.Resize(fyne.NewSize(float32(conf.Width), float32(conf.Height)))
	w.SetPadded(false)

	frame := image.NewRGBA(image.Rect(0, 0, conf.Width, conf.Height))
	video := canvas.NewImageFromImage(frame)
	video.ScaleMode = canvas.ImageScaleFastest

	text := binding.NewString()
	label := widget.NewLabelWithData(text)
	label.Alignment = fyne.TextAlignCenter
	label.TextStyle = fyne.TextStyle{Bold: true}
	label.Wrapping = fyne.TextWrapWord
	label.Hide()

	// Visibility follows the bound text, not the debounce timer.
	text.AddListener(binding.NewDataListener(func() {
		v, _ := text.Get()
		if v == "" {
			label.Hide()
		} else {
			label.Show()
		}
	}))

	w.SetContent(container.NewStack(
		video,
		container.NewVBox(layout.NewSpacer(), label),
	))

	return &Player{
		window:   w,
		frame:    frame,
		video:    video,
		subtitle: text,
		label:    label,
	}
}

// SubtitleText is the display-bound subtitle property. Binding writes
// are queued onto the UI thread, so it is safe to set from pipeline
// streaming threads.
func (p *Player) SubtitleText() binding.String {
	return p.subtitle
}

// RenderFrame copies one RGBA frame into the canvas backing image and
// refreshes it. Called from the renderer sink's streaming thread.
func (p *Player) RenderFrame(pix []byte) {
	if len(pix) < len(p.frame.Pix) {
		return
	}
	copy(p.frame.Pix, pix[:len(p.frame.Pix)])
	p.video.Refresh()
}

// Close requests a window close. Satisfies the signal bridge target.
func (p *Player) Close() {
	p.window.Close()
}

func (p *Player) SetOnClosed(f func()) {
	p.window.SetOnClosed(f)
}

// ShowAndRun shows the window, fullscreen if requested, and blocks in
// the UI event loop until the window closes.
func (p *Player) ShowAndRun(fullscreen bool) {
	if fullscreen {
		p.window.SetFullScreen(true)
	}
	p.window.ShowAndRun()
}
