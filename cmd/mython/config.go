package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// replConfig is optional REPL tuning loaded from .mython.yml in the working
// directory. A missing file means defaults.
type replConfig struct {
	Prompt      string `yaml:"prompt"`
	HistorySize int    `yaml:"history_size"`
	AltScreen   *bool  `yaml:"alt_screen"`
}

func defaultREPLConfig() replConfig {
	return replConfig{
		Prompt:      "mython> ",
		HistorySize: 500,
	}
}

func loadREPLConfig(path string) (replConfig, error) {
	cfg := defaultREPLConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var loaded replConfig
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if loaded.Prompt != "" {
		cfg.Prompt = loaded.Prompt
	}
	if loaded.HistorySize > 0 {
		cfg.HistorySize = loaded.HistorySize
	}
	if loaded.AltScreen != nil {
		cfg.AltScreen = loaded.AltScreen
	}
	return cfg, nil
}

func (c replConfig) altScreen() bool {
	if c.AltScreen == nil {
		return true
	}
	return *c.AltScreen
}
