// ============================================================================
// mdispatch - Predicate Dispatch Engine
// ============================================================================
//
// Package:     config
// Description: Typed application configuration loaded from TOML or YAML
// Author:      Mike Stoffels
// Created:     2025-02-24
// License:     MIT
// ============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	mdwerror "github.com/msto63/mdispatch/foundation/core/error"
	"github.com/msto63/mdispatch/foundation/core/log"
	"github.com/msto63/mdispatch/pkg/core/cache"
)

// Environment variables consulted by LoadFromEnv and ApplyEnv.
const (
	EnvConfig        = "MDISPATCH_CONFIG"
	EnvLogLevel      = "MDISPATCH_LOG_LEVEL"
	EnvLogFormat     = "MDISPATCH_LOG_FORMAT"
	EnvCacheMaxItems = "MDISPATCH_CACHE_MAX_ITEMS"
)

// FormatAuto selects console output on a terminal and JSON otherwise.
const FormatAuto = "auto"

// Config holds the complete application configuration
type Config struct {
	General  GeneralConfig  `toml:"general" yaml:"general"`
	Dispatch DispatchConfig `toml:"dispatch" yaml:"dispatch"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name      string `toml:"name" yaml:"name"`
	LogLevel  string `toml:"log_level" yaml:"log_level"`
	LogFormat string `toml:"log_format" yaml:"log_format"`
}

// DispatchConfig holds registry settings
type DispatchConfig struct {
	// CacheMaxItems bounds each generic function's resolution cache;
	// 0 means unbounded
	CacheMaxItems int `toml:"cache_max_items" yaml:"cache_max_items"`

	// Seal freezes the registry once the manifests are loaded
	Seal bool `toml:"seal" yaml:"seal"`

	// Manifests are loaded in order; relative paths are resolved against
	// the directory of the configuration file
	Manifests []string `toml:"manifests" yaml:"manifests"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML or YAML file, by extension
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, mdwerror.New(fmt.Sprintf("config file not found: %s", path)).
			WithCode(mdwerror.CodeMissingConfig).
			WithOperation("config.Load").
			WithDetail("path", path)
	}
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to read config").
			WithCode(mdwerror.CodeConfigError).
			WithOperation("config.Load").
			WithDetail("path", path)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		_, err = toml.Decode(string(data), &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = fmt.Errorf("unsupported config extension %q", ext)
	}
	if err != nil {
		return nil, mdwerror.Wrap(err, fmt.Sprintf("failed to parse config: %v", err)).
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("config.Load").
			WithDetail("path", path)
	}

	// Apply defaults
	cfg.applyDefaults()

	// Expand environment variables and anchor manifest paths
	cfg.expandPaths(filepath.Dir(path))

	return &cfg, nil
}

// LoadFromEnv loads configuration from the MDISPATCH_CONFIG environment
// variable or a default location, then applies environment overrides.
// Without any file the defaults are used.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv(EnvConfig)
	if path == "" {
		// Try default locations
		defaultPaths := []string{
			"./configs/mdispatch.toml",
			"./mdispatch.toml",
			"./mdispatch.yaml",
			filepath.Join(os.Getenv("HOME"), ".config/mdispatch/config.toml"),
		}
		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from MDISPATCH_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.General.LogLevel = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.General.LogFormat = v
	}
	if v := os.Getenv(EnvCacheMaxItems); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return mdwerror.Wrap(err, fmt.Sprintf("%s must be an integer", EnvCacheMaxItems)).
				WithCode(mdwerror.CodeInvalidConfig).
				WithOperation("config.ApplyEnv").
				WithDetail("value", v)
		}
		c.Dispatch.CacheMaxItems = n
	}
	return c.Validate()
}

// Validate checks values that cannot be caught while decoding.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.General.LogLevel); err != nil {
		return invalidConfig("general.log_level", c.General.LogLevel, err)
	}
	if f := c.General.LogFormat; f != FormatAuto {
		if _, err := log.ParseFormat(f); err != nil {
			return invalidConfig("general.log_format", f, err)
		}
	}
	if c.Dispatch.CacheMaxItems < 0 {
		return invalidConfig("dispatch.cache_max_items", c.Dispatch.CacheMaxItems,
			fmt.Errorf("must not be negative"))
	}
	return nil
}

// CacheConfig returns the resolution cache settings.
func (c *Config) CacheConfig() cache.Config {
	return cache.Config{MaxItems: c.Dispatch.CacheMaxItems}
}

func invalidConfig(key string, value any, err error) *mdwerror.Error {
	return mdwerror.Wrap(err, fmt.Sprintf("invalid %s: %v", key, err)).
		WithCode(mdwerror.CodeInvalidConfig).
		WithOperation("config.Validate").
		WithDetail("key", key).
		WithDetail("value", value)
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.General.Name == "" {
		c.General.Name = "mdispatch"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = FormatAuto
	}
}

// expandPaths expands environment variables in manifest paths and resolves
// relative ones against dir
func (c *Config) expandPaths(dir string) {
	for i, p := range c.Dispatch.Manifests {
		p = os.ExpandEnv(p)
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		c.Dispatch.Manifests[i] = p
	}
}
