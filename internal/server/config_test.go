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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 4203, cfg.Port)
	assert.Equal(t, ":4203", cfg.Addr())
	assert.Equal(t, filepath.Join("test", "index.html"), cfg.IndexPath())
	assert.Equal(t, filepath.Join("test", "pid.txt"), cfg.PIDPath())
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
host: 127.0.0.1
port: 8080
root: /srv/tests
pid_file: ""
shutdown_timeout: 2s
log:
  level: debug
  format: json
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.Equal(t, "/srv/tests", cfg.Root)
	assert.Equal(t, filepath.Join("/srv/tests", "test", "index.html"), cfg.IndexPath(), "unset keys keep their defaults")
	assert.Empty(t, cfg.PIDPath())
	assert.Equal(t, 2*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)
}

func TestLoad_NoPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"InvalidYAML", "port: [", "failed to parse config file"},
		{"PortRange", "port: 70000", "port must be between 0 and 65535, got 70000"},
		{"EmptyIndex", `index: ""`, "index must not be empty"},
		{"LogLevel", "log:\n  level: loud", `log.level must be one of`},
		{"LogFormat", "log:\n  format: xml", `log.format must be one of`},
		{"Several", "port: -1\nroot: \"\"", "root must not be empty"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_AbsolutePaths(t *testing.T) {
	cfg := Default()
	cfg.Root = "/srv"
	cfg.Index = "/var/www/index.html"
	cfg.PIDFile = "/run/tester.pid"

	assert.Equal(t, "/var/www/index.html", cfg.IndexPath())
	assert.Equal(t, "/run/tester.pid", cfg.PIDPath())
}
