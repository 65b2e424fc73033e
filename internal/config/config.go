// Package config loads the optional YAML configuration file. Env defaults
// from pkg/config fill anything the file leaves unset.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/LodestarLearning/lodestar-go/pkg/config"
)

type Config struct {
	Server struct {
		Port         string `yaml:"port"`
		ReadTimeout  string `yaml:"readTimeout"`
		WriteTimeout string `yaml:"writeTimeout"`
		IdleTimeout  string `yaml:"idleTimeout"`
	} `yaml:"server"`
	Lessons struct {
		Directory string `yaml:"directory"`
	} `yaml:"lessons"`
	Sessions struct {
		TTL             string `yaml:"ttl"`
		CleanupInterval string `yaml:"cleanupInterval"`
	} `yaml:"sessions"`
	Logging struct {
		Directory string `yaml:"directory"`
		ToFile    *bool  `yaml:"toFile"`
		ToConsole *bool  `yaml:"toConsole"`
		Level     string `yaml:"level"`
	} `yaml:"logging"`
}

// Load reads YAML config from path. A missing file is not an error: the
// zero Config falls through to the env defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Port resolves the listen port: YAML first, then env default.
func (c Config) Port() string {
	if c.Server.Port != "" {
		return c.Server.Port
	}
	return config.Port
}

// LessonDirectory resolves the lesson content directory.
func (c Config) LessonDirectory() string {
	if c.Lessons.Directory != "" {
		return c.Lessons.Directory
	}
	return config.LessonDirectory
}

// SessionTTL resolves the session idle TTL.
func (c Config) SessionTTL() time.Duration {
	return Duration(c.Sessions.TTL, config.SessionTTL)
}

// CleanupInterval resolves the session cleanup interval.
func (c Config) CleanupInterval() time.Duration {
	return Duration(c.Sessions.CleanupInterval, config.CleanupInterval)
}

// ReadTimeout resolves the server read timeout.
func (c Config) ReadTimeout() time.Duration {
	return Duration(c.Server.ReadTimeout, config.ServerReadTimeout)
}

// WriteTimeout resolves the server write timeout.
func (c Config) WriteTimeout() time.Duration {
	return Duration(c.Server.WriteTimeout, config.ServerWriteTimeout)
}

// IdleTimeout resolves the server idle timeout.
func (c Config) IdleTimeout() time.Duration {
	return Duration(c.Server.IdleTimeout, config.ServerIdleTimeout)
}

// Duration parses a duration string or returns the fallback if empty or
// malformed.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
