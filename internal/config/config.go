// Package config loads textclean settings from a TOML file.
//
// The default file is $XDG_CONFIG_HOME/textclean/config.toml. A missing
// file is not an error: every setting has a default, and a file only needs
// the keys it changes.
//
//	[log]
//	level = "debug"
//
//	[mask]
//	strategy = "polygon"
//	padding = 6
//
//	[ocr]
//	language = "jpn"
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"

	"github.com/ironsheep/textclean/internal/cleanup"
	"github.com/ironsheep/textclean/internal/detection"
	"github.com/ironsheep/textclean/internal/imaging"
	"github.com/ironsheep/textclean/internal/mask"
	"github.com/ironsheep/textclean/internal/ocr"
)

// AppName is the directory name under the XDG config home.
const AppName = "textclean"

type Config struct {
	Log      LogConfig                `toml:"log"`
	Filter   detection.FilterOptions  `toml:"filter"`
	Cluster  detection.ClusterOptions `toml:"cluster"`
	Mask     MaskConfig               `toml:"mask"`
	Binarize imaging.BinarizeOptions  `toml:"binarize"`
	Classify cleanup.ClassifyOptions  `toml:"classify"`
	Cleanup  CleanupConfig            `toml:"cleanup"`
	OCR      ocr.Options              `toml:"ocr"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type MaskConfig struct {
	// Strategy is "blocks", "polygon" or "auto".
	Strategy string `toml:"strategy"`

	mask.Options
}

type CleanupConfig struct {
	TextPadding int `toml:"text_padding"`
}

func NewDefaultConfig() *Config {
	pipeline := cleanup.DefaultOptions()
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		Filter:   pipeline.Filter,
		Cluster:  pipeline.Cluster,
		Mask:     MaskConfig{Strategy: "auto", Options: pipeline.Mask},
		Binarize: pipeline.Binarize,
		Classify: pipeline.Classify,
		Cleanup: CleanupConfig{
			TextPadding: pipeline.TextPadding,
		},
		OCR: ocr.DefaultOptions(),
	}
}

// DefaultPath returns the config file location under the XDG config home.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.toml")
}

func LoadConfigFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil // no config file, return defaults
	}

	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, fmt.Errorf("failed to decode TOML config: %w", err)
	}

	if _, err := mask.ParseStrategy(config.Mask.Strategy); err != nil {
		return nil, fmt.Errorf("invalid [mask] section: %w", err)
	}

	return config, nil
}

// PipelineOptions assembles the cleanup options from the config.
func (c *Config) PipelineOptions() cleanup.Options {
	strategy, _ := mask.ParseStrategy(c.Mask.Strategy)
	return cleanup.Options{
		Filter:      c.Filter,
		Cluster:     c.Cluster,
		Mask:        c.Mask.Options,
		Binarize:    c.Binarize,
		Classify:    c.Classify,
		Strategy:    strategy,
		TextPadding: c.Cleanup.TextPadding,
	}
}
