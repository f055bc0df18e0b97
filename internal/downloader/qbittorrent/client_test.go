package qbittorrent

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seasonarr/seasonarr/internal/downloader/types"
)

func TestMapState(t *testing.T) {
	tests := []struct {
		state string
		want  types.Status
	}{
		{"downloading", types.StatusDownloading},
		{"metaDL", types.StatusDownloading},
		{"pausedDL", types.StatusDownloading},
		{"stalledDL", types.StatusDownloading},
		{"moving", types.StatusDownloading},
		{"uploading", types.StatusFinished},
		{"pausedUP", types.StatusFinished},
		{"stalledUP", types.StatusFinished},
		{"forcedUP", types.StatusFinished},
		{"missingFiles", types.StatusError},
		{"error", types.StatusError},
		{"checkingResumeData", types.StatusError},
		{"unknown", types.StatusUnknown},
		// Unrecognized states fall back to unknown.
		{"someFutureState", types.StatusUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MapState(tt.state), "state %q", tt.state)
	}
}

// newTestServer runs a minimal qBittorrent API that tracks login state.
func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, loggedIn bool)) (*httptest.Server, *Client) {
	t.Helper()
	loggedIn := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v2/auth/login" {
			r.ParseForm()
			if r.PostForm.Get("username") == "admin" && r.PostForm.Get("password") == "secret" {
				loggedIn = true
				http.SetCookie(w, &http.Cookie{Name: "SID", Value: "session"})
				fmt.Fprint(w, "Ok.")
			} else {
				fmt.Fprint(w, "Fails.")
			}
			return
		}
		handler(w, r, loggedIn)
	}))
	t.Cleanup(server.Close)

	parsed, err := url.Parse(server.URL)
	require.NoError(t, err)
	var port int
	fmt.Sscanf(parsed.Port(), "%d", &port)

	client := New(Config{
		Host:     parsed.Hostname(),
		Port:     port,
		Username: "admin",
		Password: "secret",
	}, zerolog.Nop())
	return server, client
}

func TestTestSucceeds(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request, loggedIn bool) {
		if r.URL.Path == "/api/v2/app/version" {
			fmt.Fprint(w, "v5.0.0")
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	require.NoError(t, client.Test(context.Background()))
}

func TestTestBadCredentials(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request, loggedIn bool) {})
	client.config.Password = "wrong"

	err := client.Test(context.Background())
	assert.ErrorIs(t, err, types.ErrAuthFailed)
}

func TestAddTorrentFile(t *testing.T) {
	var gotCategory, gotSavePath string
	var gotFile []byte
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request, loggedIn bool) {
		if r.URL.Path != "/api/v2/torrents/add" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotCategory = r.FormValue("category")
		gotSavePath = r.FormValue("savepath")
		file, _, err := r.FormFile("torrents")
		require.NoError(t, err)
		defer file.Close()
		buf := make([]byte, 64)
		n, _ := file.Read(buf)
		gotFile = buf[:n]
		fmt.Fprint(w, "Ok.")
	})

	err := client.Add(context.Background(), types.AddOptions{
		FileContent: []byte("d4:infod0:ee"),
		Category:    "seasonarr",
		SavePath:    "Show.S01.1080p",
	})
	require.NoError(t, err)
	assert.Equal(t, "seasonarr", gotCategory)
	assert.Equal(t, "Show.S01.1080p", gotSavePath)
	assert.Equal(t, "d4:infod0:ee", string(gotFile))
}

func TestAddRejectedByClient(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request, loggedIn bool) {
		fmt.Fprint(w, "Fails.")
	})

	err := client.Add(context.Background(), types.AddOptions{MagnetURL: "magnet:?xt=urn:btih:abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Fails.")
}

func TestStatus(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request, loggedIn bool) {
		if r.URL.Path != "/api/v2/torrents/info" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Equal(t, "abc123", r.URL.Query().Get("hashes"))
		fmt.Fprint(w, `[{"hash":"abc123","name":"Show.S01","state":"stalledUP"}]`)
	})

	status, err := client.Status(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, types.StatusFinished, status)
}

func TestStatusUnknownHash(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request, loggedIn bool) {
		fmt.Fprint(w, `[]`)
	})

	status, err := client.Status(context.Background(), "doesnotexist")
	require.NoError(t, err)
	assert.Equal(t, types.StatusUnknown, status)
}

func TestReloginOnForbidden(t *testing.T) {
	attempts := 0
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request, loggedIn bool) {
		attempts++
		// First request hits an expired session.
		if attempts == 1 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		assert.True(t, loggedIn, "expected client to log in before retrying")
		fmt.Fprint(w, `[{"hash":"abc","name":"Show","state":"downloading"}]`)
	})

	status, err := client.Status(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, types.StatusDownloading, status)
	assert.Equal(t, 2, attempts)
}

func TestRemoveDeletesFiles(t *testing.T) {
	var gotDelete string
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request, loggedIn bool) {
		if r.URL.Path != "/api/v2/torrents/delete" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		r.ParseForm()
		gotDelete = r.PostForm.Get("deleteFiles")
	})

	require.NoError(t, client.Remove(context.Background(), "abc", true))
	assert.Equal(t, "true", gotDelete)
}
