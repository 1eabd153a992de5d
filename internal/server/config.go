/*
 * Copyright 2020 grant@lastweekend.com.au
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package server

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults match the layout of a project under test: index and pid file under test/.
const (
	DefaultPort            = 4203
	DefaultRoot            = "."
	DefaultIndex           = "test/index.html"
	DefaultPIDFile         = "test/pid.txt"
	DefaultShutdownTimeout = 5 * time.Second
)

// Config holds the server configuration.
type Config struct {
	// Host to bind, empty for all interfaces
	Host string `yaml:"host"`
	// Port to bind, 0 for an ephemeral port
	Port int `yaml:"port"`
	// Root directory served as static files
	Root string `yaml:"root"`
	// Index is served for every route that is not a file under Root.
	// Relative paths resolve against Root.
	Index string `yaml:"index"`
	// PIDFile receives the server's process id once it is listening.
	// Relative paths resolve against Root. Empty disables it.
	PIDFile string `yaml:"pid_file"`
	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	Log LogConfig `yaml:"log"`
}

// LogConfig selects the server's log level and format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Port:            DefaultPort,
		Root:            DefaultRoot,
		Index:           DefaultIndex,
		PIDFile:         DefaultPIDFile,
		ShutdownTimeout: DefaultShutdownTimeout,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from the YAML file at path over the defaults.
// If path is empty the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 0 and 65535, got %d", c.Port))
	}
	if c.Root == "" {
		errs = append(errs, errors.New("root must not be empty"))
	}
	if c.Index == "" {
		errs = append(errs, errors.New("index must not be empty"))
	}
	if c.ShutdownTimeout < 0 {
		errs = append(errs, fmt.Errorf("shutdown_timeout must not be negative, got %v", c.ShutdownTimeout))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Errorf("log.level must be one of [debug, info, warn, warning, error], got %q", c.Log.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Errorf("log.format must be one of [json, text], got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IndexPath is the index file, resolved against Root.
func (c *Config) IndexPath() string {
	return c.resolve(c.Index)
}

// PIDPath is the pid file, resolved against Root. Empty if disabled.
func (c *Config) PIDPath() string {
	if c.PIDFile == "" {
		return ""
	}
	return c.resolve(c.PIDFile)
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Root, path)
}
