package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload(t *testing.T) {
	tests := []struct {
		name        string
		setupServer func() *httptest.Server
		path        string
		wantErr     string
		validate    func(t *testing.T, path string)
	}{
		{
			name: "successful download",
			setupServer: func() *httptest.Server {
				return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.Header().Set("Content-Type", "application/octet-stream")
					fmt.Fprint(w, "archive bytes")
				}))
			},
			validate: func(t *testing.T, path string) {
				content, err := os.ReadFile(path)
				require.NoError(t, err)
				assert.Equal(t, "archive bytes", string(content))
			},
		},
		{
			name: "not found",
			setupServer: func() *httptest.Server {
				return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					http.NotFound(w, r)
				}))
			},
			wantErr: "unexpected status 404",
		},
		{
			name: "server error",
			setupServer: func() *httptest.Server {
				return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusInternalServerError)
				}))
			},
			wantErr: "unexpected status 500",
		},
		{
			name: "empty body",
			setupServer: func() *httptest.Server {
				return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusOK)
				}))
			},
			wantErr: "no content downloaded",
		},
		{
			name: "follows redirect",
			path: "/asset",
			setupServer: func() *httptest.Server {
				mux := http.NewServeMux()
				server := httptest.NewServer(mux)
				mux.HandleFunc("/asset", func(w http.ResponseWriter, r *http.Request) {
					http.Redirect(w, r, server.URL+"/cdn", http.StatusFound)
				})
				mux.HandleFunc("/cdn", func(w http.ResponseWriter, r *http.Request) {
					fmt.Fprint(w, "redirected bytes")
				})
				return server
			},
			validate: func(t *testing.T, path string) {
				content, err := os.ReadFile(path)
				require.NoError(t, err)
				assert.Equal(t, "redirected bytes", string(content))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := tt.setupServer()
			defer server.Close()

			dest := filepath.Join(t.TempDir(), "task.tar.gz")

			err := Download(context.Background(), server.Client(), server.URL+tt.path, dest)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.NoFileExists(t, dest, "failed download must not leave a destination file")
				return
			}

			require.NoError(t, err)
			tt.validate(t, dest)
		})
	}
}

func TestDownloadCarriesNoCredentials(t *testing.T) {
	// Release downloads redirect to pre-signed CDN URLs that reject requests
	// carrying an Authorization header on top of the query signature, so no
	// hop of the download may send one, ambient token or not.
	t.Setenv("GITHUB_TOKEN", "ghs_secret")

	authHeaders := map[string]string{}
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/release", func(w http.ResponseWriter, r *http.Request) {
		authHeaders["release"] = r.Header.Get("Authorization")
		http.Redirect(w, r, server.URL+"/signed?X-Amz-Signature=abc123", http.StatusFound)
	})
	mux.HandleFunc("/signed", func(w http.ResponseWriter, r *http.Request) {
		authHeaders["signed"] = r.Header.Get("Authorization")
		if r.Header.Get("Authorization") != "" {
			http.Error(w, "only one auth mechanism allowed", http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, "archive bytes")
	})

	dest := filepath.Join(t.TempDir(), "task.tar.gz")
	require.NoError(t, Download(context.Background(), DefaultClient, server.URL+"/release", dest))

	assert.Empty(t, authHeaders["release"])
	assert.Empty(t, authHeaders["signed"])
}

func TestDownloadLeavesNoTempFiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "content")
	}))
	defer server.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "task.zip")
	require.NoError(t, Download(context.Background(), server.Client(), server.URL, dest))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "task.zip", entries[0].Name())
}

func TestDownloadCreatesDestDir(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "content")
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "nested", "dir", "task.tar.gz")
	require.NoError(t, Download(context.Background(), server.Client(), server.URL, dest))
	assert.FileExists(t, dest)
}
