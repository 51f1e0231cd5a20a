// Package config holds the roll tool's configuration: CLI and REPL defaults
// loaded from an optional YAML file.
package config

import "os"

// Config represents the complete roll configuration
type Config struct {
	Verbose        bool   `yaml:"verbose"`         // Show individual rolls by default
	Color          bool   `yaml:"color"`           // Styled output (off when piping)
	ExplosionLimit int    `yaml:"explosion_limit"` // Cap on extra exploded rolls per modifier
	Seed           int64  `yaml:"seed"`            // Fixed seed; 0 means seed from the clock
	HistoryFile    string `yaml:"history_file"`    // REPL history location
}

// Defaults returns a Config with default values
func Defaults() *Config {
	return &Config{
		Verbose:        false,
		Color:          true,
		ExplosionLimit: 1000,
		Seed:           0,
		HistoryFile:    defaultHistoryFile(),
	}
}

func defaultHistoryFile() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home + "/.roll_history"
	}
	return os.TempDir() + "/.roll_history"
}
