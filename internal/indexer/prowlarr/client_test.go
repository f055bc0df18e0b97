package prowlarr

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/seasonarr/seasonarr/internal/indexer"
	"github.com/seasonarr/seasonarr/internal/indexer/types"
	"github.com/seasonarr/seasonarr/internal/library/quality"
)

func newTestClient(serverURL string) *Client {
	return New(Config{URL: serverURL, APIKey: "test-key"}, zerolog.Nop())
}

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/search" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("apikey"); got != "test-key" {
			t.Errorf("expected apikey test-key, got %q", got)
		}
		if got := r.URL.Query().Get("categories"); got != "5000" {
			t.Errorf("expected TV category 5000, got %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{
				"guid": "guid-1",
				"title": "Show.S02.1080p.WEB-DL",
				"downloadUrl": "http://indexer/dl/1.torrent",
				"seeders": 42,
				"size": 5000000000,
				"indexerFlags": ["freeleech"],
				"protocol": "torrent"
			},
			{
				"guid": "guid-2",
				"sortTitle": "show s02 720p",
				"downloadUrl": "http://indexer/dl/2.nzb",
				"seeders": 0,
				"size": 3000000000,
				"indexerFlags": [],
				"protocol": "usenet",
				"ageMinutes": 120.5
			}
		]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	candidates, err := client.Search(context.Background(), "Show s02", true)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}

	torrent := candidates[0]
	if torrent.Protocol != types.ProtocolTorrent {
		t.Errorf("expected torrent protocol, got %s", torrent.Protocol)
	}
	if torrent.Seeders != 42 {
		t.Errorf("expected 42 seeders, got %d", torrent.Seeders)
	}
	if torrent.Quality != quality.FullHD {
		t.Errorf("expected fullhd quality, got %v", torrent.Quality)
	}
	if len(torrent.Seasons) != 1 || torrent.Seasons[0] != 2 {
		t.Errorf("expected seasons [2], got %v", torrent.Seasons)
	}
	if len(torrent.Flags) != 1 || torrent.Flags[0] != "freeleech" {
		t.Errorf("expected freeleech flag, got %v", torrent.Flags)
	}

	usenet := candidates[1]
	if usenet.Protocol != types.ProtocolUsenet {
		t.Errorf("expected usenet protocol, got %s", usenet.Protocol)
	}
	if usenet.Seeders != 0 {
		t.Errorf("expected 0 seeders for usenet, got %d", usenet.Seeders)
	}
	if usenet.AgeMinutes != 120 {
		t.Errorf("expected age 120 minutes, got %d", usenet.AgeMinutes)
	}
	if usenet.Title != "show s02 720p" {
		t.Errorf("expected sortTitle fallback, got %q", usenet.Title)
	}
}

func TestSearchMovieCategory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("categories"); got != "2000" {
			t.Errorf("expected movie category 2000, got %q", got)
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	candidates, err := client.Search(context.Background(), "Some Movie", false)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("expected no candidates, got %d", len(candidates))
	}
}

func TestSearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Search(context.Background(), "Show s02", true)
	if !errors.Is(err, indexer.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestSearchUnreachable(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1")
	_, err := client.Search(context.Background(), "Show s02", true)
	if !errors.Is(err, indexer.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
