// Package prowlarr implements the Prowlarr search backend.
package prowlarr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/seasonarr/seasonarr/internal/indexer"
	"github.com/seasonarr/seasonarr/internal/indexer/types"
)

const (
	// Newznab top-level categories for TV and movie searches.
	categoryTV     = "5000"
	categoryMovies = "2000"

	defaultTimeout = 30 * time.Second
)

// Config holds the configuration for a Prowlarr client.
type Config struct {
	URL    string
	APIKey string
}

// Client queries the Prowlarr aggregate search API.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     zerolog.Logger
}

// Compile-time check that Client implements the Indexer interface.
var _ indexer.Indexer = (*Client)(nil)

// New creates a new Prowlarr client.
func New(cfg Config, logger zerolog.Logger) *Client {
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger.With().Str("component", "prowlarr").Logger(),
	}
}

// Name returns the backend name.
func (c *Client) Name() string {
	return "prowlarr"
}

// searchResult mirrors one entry of the Prowlarr search response.
type searchResult struct {
	GUID         string   `json:"guid"`
	Title        string   `json:"title"`
	SortTitle    string   `json:"sortTitle"`
	DownloadURL  string   `json:"downloadUrl"`
	Seeders      int      `json:"seeders"`
	Size         int64    `json:"size"`
	IndexerFlags []string `json:"indexerFlags"`
	Protocol     string   `json:"protocol"`
	AgeMinutes   float64  `json:"ageMinutes"`
}

// Search queries Prowlarr and normalizes the response into candidates.
func (c *Client) Search(ctx context.Context, query string, isTV bool) ([]types.Candidate, error) {
	endpoint, err := url.Parse(c.config.URL + "/api/v1/search")
	if err != nil {
		return nil, fmt.Errorf("%w: invalid prowlarr url: %w", indexer.ErrUnavailable, err)
	}

	category := categoryMovies
	if isTV {
		category = categoryTV
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("apikey", c.config.APIKey)
	params.Set("categories", category)
	params.Set("limit", "10000")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", indexer.ErrUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", indexer.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: prowlarr returned status %d", indexer.ErrUnavailable, resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", indexer.ErrUnavailable, err)
	}

	candidates := make([]types.Candidate, 0, len(results))
	for _, result := range results {
		title := result.Title
		if title == "" {
			title = result.SortTitle
		}
		downloadURL := result.DownloadURL
		if downloadURL == "" {
			downloadURL = result.GUID
		}

		candidate := types.NewCandidate(c.Name(), title, downloadURL)
		candidate.Flags = result.IndexerFlags
		candidate.Size = result.Size

		if result.Protocol == "usenet" {
			// Usenet results have no seeders; age is their health signal.
			candidate.Protocol = types.ProtocolUsenet
			candidate.AgeMinutes = int64(result.AgeMinutes)
		} else {
			candidate.Seeders = result.Seeders
		}

		candidates = append(candidates, candidate)
	}

	c.logger.Debug().
		Str("query", query).
		Int("results", len(candidates)).
		Msg("Prowlarr search completed")

	return candidates, nil
}
