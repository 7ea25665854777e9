// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Reader ReaderConfig `toml:"reader"`
	Music  MusicConfig  `toml:"music"`
}

// ReaderConfig maps reader-related settings.
type ReaderConfig struct {
	DataDir     *string  `toml:"data-dir"`
	Translation *string  `toml:"translation"`
	Mode        *string  `toml:"mode"`
	WordSpeed   *float64 `toml:"word-speed"`
	FontSize    *int     `toml:"font-size"`
	NightMode   *bool    `toml:"night-mode"`
}

// MusicConfig maps background music settings.
type MusicConfig struct {
	Folder  *string  `toml:"folder"`
	Volume  *float64 `toml:"volume"`
	Enabled *bool    `toml:"enabled"`
	Player  *string  `toml:"player"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
