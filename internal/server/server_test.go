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
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRoot lays out a directory like a project under test
func newRoot(t *testing.T) *Config {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"test/index.html": "<html>index</html>",
		"lib/acme.js":     "window.acme = {};",
		"docs/index.html": "<html>docs</html>",
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))

	cfg := Default()
	cfg.Root = root
	return cfg
}

func TestServer_Routes(t *testing.T) {
	srv := httptest.NewServer(New(newRoot(t), nil).Handler())
	defer srv.Close()

	tests := []struct {
		name        string
		path        string
		status      int
		body        string
		contentType string
	}{
		{"File", "/lib/acme.js", http.StatusOK, "window.acme = {};", "javascript"},
		{"Index", "/test/index.html", http.StatusOK, "<html>index</html>", "text/html"},
		{"DirectoryIndex", "/docs", http.StatusOK, "<html>docs</html>", "text/html"},
		{"DirectoryWithoutIndex", "/empty/", http.StatusOK, "<html>index</html>", "text/html"},
		{"UnknownRoute", "/some/route", http.StatusOK, "<html>index</html>", "text/html"},
		{"Root", "/", http.StatusOK, "<html>index</html>", "text/html"},
		{"Traversal", "/../../etc/passwd", http.StatusOK, "<html>index</html>", "text/html"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.body, string(body))
			assert.Contains(t, resp.Header.Get("Content-Type"), tt.contentType)
		})
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	New(newRoot(t), nil).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/lib/acme.js", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_MissingIndex(t *testing.T) {
	cfg := newRoot(t)
	cfg.Index = "nope.html"

	rec := httptest.NewRecorder()
	New(cfg, nil).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/some/route", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_ServeWritesPIDAndShutsDown(t *testing.T) {
	cfg := newRoot(t)
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	s := New(cfg, nil)

	ln, err := s.Listen()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- s.Serve(ctx, ln) }()

	url := fmt.Sprintf("http://%s/lib/acme.js", ln.Addr())
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)

	pid, err := os.ReadFile(filepath.Join(cfg.Root, "test", "pid.txt"))
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(pid))

	cancel()
	select {
	case err := <-result:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServer_ListenPortInUse(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	cfg := newRoot(t)
	cfg.Host = "127.0.0.1"
	cfg.Port = taken.Addr().(*net.TCPAddr).Port

	err = New(cfg, nil).Run(context.Background())
	assert.ErrorIs(t, err, ErrPortInUse)

	_, statErr := os.Stat(cfg.PIDPath())
	assert.ErrorIs(t, statErr, os.ErrNotExist, "pid file is only written once listening")
}

func TestServer_PIDFileError(t *testing.T) {
	cfg := newRoot(t)
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	// a file where the pid file's directory should be
	cfg.PIDFile = "lib/acme.js/pid.txt"
	s := New(cfg, nil)

	ln, err := s.Listen()
	require.NoError(t, err)

	err = s.Serve(context.Background(), ln)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pid file")
}
