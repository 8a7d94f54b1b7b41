package main

import (
	"fmt"
	"os"
	"time"

	"fyne.io/fyne/v2/app"
	"github.com/go-gst/go-glib/glib"
	"github.com/go-gst/go-gst/gst"
	"github.com/urfave/cli/v2"

	"github.com/avplay/glplayer/pkg/config"
	"github.com/avplay/glplayer/pkg/guard"
	"github.com/avplay/glplayer/pkg/logger"
	"github.com/avplay/glplayer/pkg/pipeline"
	"github.com/avplay/glplayer/pkg/sighandler"
	"github.com/avplay/glplayer/pkg/subtitle"
	"github.com/avplay/glplayer/pkg/ui"
	"github.com/avplay/glplayer/version"
)

func main() {
	cliApp := &cli.App{
		Name:        "glplayer",
		Usage:       "GPU-accelerated GStreamer playback demo",
		Description: "plays a single media file or URI in a GL-backed window",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "input file or URI to play",
				Required: true,
			},
			&cli.BoolFlag{
				Name:    "fullscreen",
				Aliases: []string{"f"},
				Usage:   "run the window in fullscreen mode",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to glplayer config file",
			},
			&cli.StringFlag{
				Name:    "config-body",
				Usage:   "glplayer config in YAML, typically passed in as an environment var in a container",
				EnvVars: []string{"GLPLAYER_CONFIG"},
			},
		},
		Action:  runPlayer,
		Version: version.Version,
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func getConfig(c *cli.Context) (*config.Config, error) {
	confString := c.String("config-body")
	if confString == "" {
		if path := c.String("config"); path != "" {
			content, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			confString = string(content)
		}
	}
	return config.NewConfig(confString)
}

func runPlayer(c *cli.Context) error {
	conf, err := getConfig(c)
	if err != nil {
		return err
	}
	if c.Bool("fullscreen") {
		conf.Fullscreen = true
	}

	logger.Init(conf.LogLevel)

	gst.Init(nil)
	// gst.Deinit lets the leak tracer report at exit; run with
	// GST_TRACERS=leaks GST_DEBUG=GST_TRACER:7 to use it.
	deinitGuard := guard.New(func() {
		gst.Deinit()
		logger.Debugw("application finished")
	})
	defer deinitGuard.Run()

	player := ui.NewPlayer(app.New(), conf)

	display := subtitle.NewDisplay(
		player.SubtitleText(),
		time.Duration(conf.Subtitles.MinDisplayMs)*time.Millisecond,
		time.Duration(conf.Subtitles.PerCharMs)*time.Millisecond,
	)

	session := pipeline.NewSession(conf, display)
	if err := session.Setup(c.String("input")); err != nil {
		return err
	}
	defer session.Close()

	handler := sighandler.New()
	if err := handler.Setup(player); err != nil {
		return err
	}
	defer handler.Close()

	loop := glib.NewMainLoop(glib.MainContextDefault(), false)
	if !session.Watch(loop, func(error) {
		player.Close()
	}) {
		logger.Warnw("could not install pipeline bus watch, EOS and pipeline errors will go unnoticed", nil)
	}
	player.SetOnClosed(func() {
		loop.Quit()
	})

	logger.Infow("playing media", "input", c.String("input"), "fullscreen", conf.Fullscreen)

	// The render target needs a live GL surface before frames arrive,
	// so playback starts from its own goroutine while the UI loop takes
	// over this one.
	go func() {
		if err := session.Start(player); err != nil {
			logger.Errorw("could not start playback, quitting", err)
			player.Close()
			return
		}
		logger.Infow("playback started")
		loop.Run()
	}()

	player.ShowAndRun(conf.Fullscreen)

	// The window is gone; stop the graph and detach the renderer before
	// the remaining UI objects go away.
	session.Close()
	return nil
}
