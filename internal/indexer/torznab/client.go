// Package torznab implements a Jackett-style Torznab feed backend. Results
// arrive as an XML feed with attribute-style metadata instead of JSON; the
// client normalizes them into the shared candidate shape.
package torznab

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/seasonarr/seasonarr/internal/indexer"
	"github.com/seasonarr/seasonarr/internal/indexer/types"
)

const defaultTimeout = 30 * time.Second

// Config holds the configuration for a Torznab client. Indexers lists the
// upstream indexer slugs to query; each gets its own feed request.
type Config struct {
	URL      string
	APIKey   string
	Indexers []string
}

// Client queries one or more Torznab feeds behind a Jackett-style proxy.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     zerolog.Logger
}

// Compile-time check that Client implements the Indexer interface.
var _ indexer.Indexer = (*Client)(nil)

// New creates a new Torznab client. An empty indexer list falls back to the
// aggregate "all" feed.
func New(cfg Config, logger zerolog.Logger) *Client {
	if len(cfg.Indexers) == 0 {
		cfg.Indexers = []string{"all"}
	}
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger.With().Str("component", "torznab").Logger(),
	}
}

// Name returns the backend name.
func (c *Client) Name() string {
	return "torznab"
}

// feed mirrors the Torznab RSS envelope.
type feed struct {
	Channel struct {
		Items []feedItem `xml:"item"`
	} `xml:"channel"`
}

type feedItem struct {
	Title string     `xml:"title"`
	Link  string     `xml:"link"`
	Size  int64      `xml:"size"`
	Attrs []feedAttr `xml:"attr"`
}

type feedAttr struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// seeders extracts the torznab seeders attribute; ok is false when absent.
func (it *feedItem) seeders() (int, bool) {
	for _, attr := range it.Attrs {
		if attr.Name == "seeders" {
			n, err := strconv.Atoi(attr.Value)
			if err != nil {
				return 0, false
			}
			return n, true
		}
	}
	return 0, false
}

// Search fans in results from every configured upstream indexer feed.
func (c *Client) Search(ctx context.Context, query string, isTV bool) ([]types.Candidate, error) {
	searchType := "search"
	if isTV {
		searchType = "tvsearch"
	}

	var candidates []types.Candidate
	for _, slug := range c.config.Indexers {
		items, err := c.fetchFeed(ctx, slug, searchType, query)
		if err != nil {
			return nil, err
		}

		for _, item := range items {
			seeders, ok := item.seeders()
			if !ok {
				c.logger.Warn().
					Str("title", item.Title).
					Msg("Result missing seeders attribute, skipping")
				continue
			}

			candidate := types.NewCandidate(c.Name(), item.Title, item.Link)
			candidate.Seeders = seeders
			candidate.Size = item.Size
			candidates = append(candidates, candidate)
		}
	}

	c.logger.Debug().
		Str("query", query).
		Int("results", len(candidates)).
		Msg("Torznab search completed")

	return candidates, nil
}

func (c *Client) fetchFeed(ctx context.Context, slug, searchType, query string) ([]feedItem, error) {
	endpoint, err := url.Parse(fmt.Sprintf("%s/api/v2.0/indexers/%s/results/torznab/api", c.config.URL, slug))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid torznab url: %w", indexer.ErrUnavailable, err)
	}

	params := url.Values{}
	params.Set("apikey", c.config.APIKey)
	params.Set("t", searchType)
	params.Set("q", query)
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
		return nil, fmt.Errorf("%w: indexer %s returned status %d", indexer.ErrUnavailable, slug, resp.StatusCode)
	}

	var parsed feed
	if err := xml.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to decode feed: %w", indexer.ErrUnavailable, err)
	}

	return parsed.Channel.Items, nil
}
