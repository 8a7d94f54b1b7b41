package pipeline

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-gst/go-glib/glib"
	"github.com/go-gst/go-gst/gst"
	"github.com/go-gst/go-gst/gst/app"
	"github.com/pkg/errors"

	"github.com/avplay/glplayer/pkg/config"
	"github.com/avplay/glplayer/pkg/guard"
	"github.com/avplay/glplayer/pkg/logger"
	"github.com/avplay/glplayer/pkg/subtitle"
)

// State tracks the session lifecycle. There is no transition out of
// StateStopped, and a failed Configured → Playing transition leaves
// the session Configured.
type State int

const (
	StateUnconfigured State = iota
	StateConfigured
	StatePlaying
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateConfigured:
		return "configured"
	case StatePlaying:
		return "playing"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// playbin flag bits (GstPlayFlags). The combination keeps video, audio,
// subtitle text and software volume but forces the native video path:
// software video post-processing stutters on saturated embedded CPUs.
const (
	flagVideo       = 0x01
	flagAudio       = 0x02
	flagText        = 0x04
	flagSoftVolume  = 0x10
	flagNativeVideo = 0x40

	playbinFlags = flagVideo | flagAudio | flagText | flagSoftVolume | flagNativeVideo
)

// RenderTarget receives decoded RGBA frames from the renderer sink.
// pkg/ui's video canvas implements it.
type RenderTarget interface {
	RenderFrame(pix []byte)
}

// Session owns a fixed-topology playback graph: playbin, a glsinkbin
// video output, the renderer appsink nested inside it, and, when
// subtitles are enabled, an appsink on playbin's text pad. The
// renderer must be detached from its render target (Close) strictly
// before the UI holding that target is torn down.
type Session struct {
	mu       sync.Mutex
	state    State
	playbin  *gst.Element
	renderer *app.Sink

	// targetMu guards only the render target: the renderer's sample
	// callback runs on a streaming thread and must not contend with
	// state transitions.
	targetMu sync.RWMutex
	target   RenderTarget

	subtitles *subtitle.Display
	conf      *config.Config
}

func NewSession(conf *config.Config, subtitles *subtitle.Display) *Session {
	return &Session{
		conf:      conf,
		subtitles: subtitles,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Setup builds the graph for the given file path or URI. On any
// failure every node created so far is released and the session stays
// unconfigured.
func (s *Session) Setup(input string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateUnconfigured {
		return ErrAlreadyConfigured
	}

	uri, err := NormalizeURI(input)
	if err != nil {
		return err
	}

	// playbin is a fully featured pipeline element on its own; no
	// enclosing gst.NewPipeline is needed.
	playbin, err := gst.NewElement("playbin")
	if err != nil {
		return errors.Wrap(err, "could not create playbin element")
	}
	pipelineGuard := guard.New(func() {
		playbin.Unref()
	})
	defer pipelineGuard.Run()

	glsinkbin, err := gst.NewElement("glsinkbin")
	if err != nil {
		return errors.Wrap(err, "could not create glsinkbin element")
	}
	glsinkbinGuard := guard.New(func() {
		glsinkbin.Unref()
	})
	defer glsinkbinGuard.Run()

	renderer, err := app.NewAppSink()
	if err != nil {
		return errors.Wrap(err, "could not create renderer sink")
	}
	rendererGuard := guard.New(func() {
		renderer.Unref()
	})
	defer rendererGuard.Run()

	caps := gst.NewCapsFromString(fmt.Sprintf(
		"video/x-raw,format=RGBA,width=%d,height=%d", s.conf.Width, s.conf.Height))
	if err = renderer.SetProperty("caps", caps); err != nil {
		return errors.Wrap(err, "could not set renderer caps")
	}
	// The UI repaints at its own pace; never queue stale frames.
	if err = renderer.SetProperty("max-buffers", uint(1)); err != nil {
		return errors.Wrap(err, "could not set renderer max-buffers")
	}
	if err = renderer.SetProperty("drop", true); err != nil {
		return errors.Wrap(err, "could not set renderer drop")
	}

	// glsinkbin takes ownership of the renderer.
	if err = glsinkbin.SetProperty("sink", renderer.Element); err != nil {
		return errors.Wrap(err, "could not assign renderer to glsinkbin")
	}
	rendererGuard.Dismiss()

	if err = playbin.SetProperty("uri", uri); err != nil {
		return errors.Wrap(err, "could not set playbin uri")
	}
	playbin.SetArg("flags", fmt.Sprintf("0x%x", playbinFlags))
	if err = playbin.SetProperty("video-sink", glsinkbin); err != nil {
		return errors.Wrap(err, "could not set playbin video sink")
	}
	// playbin owns the glsinkbin now
	glsinkbinGuard.Dismiss()

	if s.conf.Subtitles.Enabled {
		if err = s.setupTextSink(playbin); err != nil {
			return err
		}
	}

	s.playbin = playbin
	s.renderer = renderer
	s.state = StateConfigured
	pipelineGuard.Dismiss()

	logger.Debugw("playback graph configured", "uri", uri)
	return nil
}

// setupTextSink hangs an appsink on playbin's text pad. It is
// configured to never backpressure playback: stale subtitles are
// worthless, so buffers are dropped rather than queued.
func (s *Session) setupTextSink(playbin *gst.Element) error {
	textSink, err := app.NewAppSink()
	if err != nil {
		return errors.Wrap(err, "could not create subtitle sink")
	}
	textGuard := guard.New(func() {
		textSink.Unref()
	})
	defer textGuard.Run()

	if err = textSink.SetProperty("caps", gst.NewCapsFromString("text/x-raw,format=utf8")); err != nil {
		return errors.Wrap(err, "could not set subtitle sink caps")
	}
	if err = textSink.SetProperty("max-buffers", uint(1)); err != nil {
		return errors.Wrap(err, "could not set subtitle sink max-buffers")
	}
	if err = textSink.SetProperty("drop", true); err != nil {
		return errors.Wrap(err, "could not set subtitle sink drop")
	}
	if err = textSink.SetProperty("sync", false); err != nil {
		return errors.Wrap(err, "could not set subtitle sink sync")
	}

	textSink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: func(sink *app.Sink) gst.FlowReturn {
			sample := sink.PullSample()
			if sample == nil {
				return gst.FlowEOS
			}
			buffer := sample.GetBuffer()
			if buffer == nil {
				return gst.FlowError
			}
			text := strings.TrimSpace(strings.TrimRight(string(buffer.Bytes()), "\x00"))
			s.subtitles.Show(text)
			return gst.FlowOK
		},
	})

	if err = playbin.SetProperty("text-sink", textSink.Element); err != nil {
		return errors.Wrap(err, "could not set playbin text sink")
	}
	textGuard.Dismiss()
	return nil
}

// Start binds the renderer to target and transitions the graph to
// PLAYING. A failed transition leaves the session configured; the
// caller decides whether to abort.
func (s *Session) Start(target RenderTarget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConfigured {
		return ErrNotConfigured
	}

	s.targetMu.Lock()
	s.target = target
	s.targetMu.Unlock()

	s.renderer.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: s.renderSample,
	})

	if err := s.playbin.SetState(gst.StatePlaying); err != nil {
		s.targetMu.Lock()
		s.target = nil
		s.targetMu.Unlock()
		return errors.Wrap(err, "could not set pipeline state to PLAYING")
	}

	s.state = StatePlaying
	return nil
}

func (s *Session) renderSample(sink *app.Sink) gst.FlowReturn {
	sample := sink.PullSample()
	if sample == nil {
		return gst.FlowEOS
	}
	buffer := sample.GetBuffer()
	if buffer == nil {
		return gst.FlowError
	}

	s.targetMu.RLock()
	target := s.target
	s.targetMu.RUnlock()
	if target == nil {
		// detached; late samples are dropped
		return gst.FlowOK
	}
	target.RenderFrame(buffer.Bytes())
	return gst.FlowOK
}

// Watch installs a bus watch that ends loop on EOS or a pipeline
// error. onFatal runs for errors before the loop quits. Requires a
// configured session and a running glib main loop.
func (s *Session) Watch(loop *glib.MainLoop, onFatal func(error)) bool {
	s.mu.Lock()
	playbin := s.playbin
	s.mu.Unlock()
	if playbin == nil {
		return false
	}

	return playbin.GetBus().AddWatch(func(msg *gst.Message) bool {
		switch msg.Type() {
		case gst.MessageEOS:
			logger.Infow("EOS received")
			_ = playbin.BlockSetState(gst.StateNull)
			loop.Quit()
		case gst.MessageError:
			gErr := msg.ParseError()
			logger.Errorw("pipeline error", gErr, "debug", gErr.DebugString())
			if onFatal != nil {
				onFatal(gErr)
			}
			loop.Quit()
		}
		return true
	})
}

// Close stops playback, detaches the renderer from the render target,
// and releases the graph. Idempotent. Must run before the UI holding
// the render target is torn down.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playbin == nil || s.state == StateStopped {
		return
	}

	_ = s.playbin.BlockSetState(gst.StateNull)

	s.targetMu.Lock()
	s.target = nil
	s.targetMu.Unlock()

	if s.subtitles != nil {
		s.subtitles.Stop()
	}

	// glsinkbin owns the renderer and playbin owns glsinkbin, so
	// releasing playbin releases the whole graph.
	s.playbin.Unref()
	s.playbin = nil
	s.renderer = nil
	s.state = StateStopped

	logger.Debugw("playback session closed")
}
