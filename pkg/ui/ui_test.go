package ui

import (
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/require"

	"github.com/avplay/glplayer/pkg/config"
)

func TestRenderFrameCopiesPixels(t *testing.T) {
	conf := config.TestConfig()
	p := NewPlayer(test.NewApp(), conf)

	pix := make([]byte, conf.Width*conf.Height*4)
	for i := range pix {
		pix[i] = 0x7f
	}
	p.RenderFrame(pix)
	require.Equal(t, byte(0x7f), p.frame.Pix[0])
	require.Equal(t, byte(0x7f), p.frame.Pix[len(p.frame.Pix)-1])
}

func TestShortFrameIsDropped(t *testing.T) {
	conf := config.TestConfig()
	p := NewPlayer(test.NewApp(), conf)

	p.RenderFrame([]byte{1, 2, 3})
	require.Equal(t, byte(0), p.frame.Pix[0])
}

func TestSubtitleVisibilityFollowsBinding(t *testing.T) {
	p := NewPlayer(test.NewApp(), config.TestConfig())
	require.False(t, p.label.Visible())

	require.NoError(t, p.SubtitleText().Set("hello"))
	require.Eventually(t, func() bool {
		return p.label.Visible()
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, p.SubtitleText().Set(""))
	require.Eventually(t, func() bool {
		return !p.label.Visible()
	}, time.Second, 10*time.Millisecond)
}
