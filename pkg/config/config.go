package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel    string         `yaml:"log_level"`
	GstLogLevel int            `yaml:"gst_log_level"`
	Width       int            `yaml:"width"`
	Height      int            `yaml:"height"`
	Fullscreen  bool           `yaml:"fullscreen"`
	Subtitles   SubtitleConfig `yaml:"subtitles"`
}

type SubtitleConfig struct {
	Enabled      bool `yaml:"enabled"`
	MinDisplayMs int  `yaml:"min_display_ms"`
	PerCharMs    int  `yaml:"per_char_ms"`
}

func NewConfig(confString string) (*Config, error) {
	// start with defaults
	conf := &Config{
		LogLevel:    "info",
		GstLogLevel: 2,
		Width:       1280,
		Height:      720,
		Subtitles: SubtitleConfig{
			Enabled:      true,
			MinDisplayMs: 1000,
			PerCharMs:    80,
		},
	}

	if confString != "" {
		if err := yaml.Unmarshal([]byte(confString), conf); err != nil {
			return nil, fmt.Errorf("could not parse config: %v", err)
		}
	}

	if err := os.Setenv("GST_DEBUG", fmt.Sprint(conf.GstLogLevel)); err != nil {
		return nil, err
	}

	return conf, nil
}

func TestConfig() *Config {
	return &Config{
		LogLevel:    "debug",
		GstLogLevel: 2,
		Width:       320,
		Height:      240,
		Subtitles: SubtitleConfig{
			Enabled:      true,
			MinDisplayMs: 1000,
			PerCharMs:    80,
		},
	}
}
