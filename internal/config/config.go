// Package config loads the settings of the hello binary: where to listen,
// what to call the page, how much to cache, and how loudly to log.
//
// The displayed name is deliberately not part of it. That comes from the NAME
// environment variable, read on every render.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"impractical.co/hello"
	"impractical.co/hello/internal/logger"
)

const (
	DefaultListen        = "127.0.0.1:8080"
	DefaultShutdownGrace = 5 * time.Second
	DefaultLogLevel      = "info"
)

// Config holds the host settings. The zero value is not valid; start from
// Default.
type Config struct {
	Title         string        `yaml:"title"`
	Lang          string        `yaml:"lang"`
	Listen        string        `yaml:"listen"`
	CacheSize     int           `yaml:"cache_size"`
	ShutdownGrace time.Duration `yaml:"shutdown_grace"`
	LogLevel      string        `yaml:"log_level"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Title:         hello.DefaultTitle,
		Lang:          hello.DefaultLang,
		Listen:        DefaultListen,
		CacheSize:     hello.DefaultCacheSize,
		ShutdownGrace: DefaultShutdownGrace,
		LogLevel:      DefaultLogLevel,
	}
}

// Load reads the YAML file at path on top of Default. An empty path returns
// the defaults. Unknown keys are an error, so typos don't go unnoticed.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first setting that can't be used.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Listen) == "" {
		return errors.New("listen must not be empty")
	}
	if c.CacheSize < 1 {
		return fmt.Errorf("cache_size must be positive, got %d", c.CacheSize)
	}
	if c.ShutdownGrace < 0 {
		return fmt.Errorf("shutdown_grace must not be negative, got %s", c.ShutdownGrace)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// RendererOptions returns the hello.PageRenderer options c describes.
func (c Config) RendererOptions() []hello.Option {
	return []hello.Option{
		hello.WithTitle(c.Title),
		hello.WithLang(c.Lang),
		hello.WithCacheSize(c.CacheSize),
	}
}
