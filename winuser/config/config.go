// Package config loads the optional winuser INI file.
package config

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

const (
	DefaultBackend    = "netapi"
	DefaultPowerShell = "powershell.exe"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
)

type Log struct {
	Level       string
	Format      string
	File        string
	EventSource string
}

type Store struct {
	Backend    string
	PowerShell string
}

type Config struct {
	Log   Log
	Store Store
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log: Log{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Store: Store{
			Backend:    DefaultBackend,
			PowerShell: DefaultPowerShell,
		},
	}
}

// Load reads filePath on top of the defaults. An empty path yields the
// defaults.
func Load(filePath string) (*Config, error) {
	c := Default()
	if filePath == "" {
		return c, nil
	}

	file, err := ini.Load(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", filePath, err)
	}

	log := file.Section("log")
	c.Log.Level = log.Key("level").MustString(c.Log.Level)
	c.Log.Format = log.Key("format").In(c.Log.Format, []string{"text", "json"})
	c.Log.File = log.Key("file").String()
	c.Log.EventSource = log.Key("event_source").String()

	store := file.Section("store")
	c.Store.Backend = strings.ToLower(store.Key("backend").MustString(c.Store.Backend))
	c.Store.PowerShell = store.Key("powershell").MustString(c.Store.PowerShell)

	return c, c.Validate()
}

// Validate checks the values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "netapi", "powershell":
	default:
		return fmt.Errorf("invalid store backend %q", c.Store.Backend)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}
	return nil
}
