// Package qbittorrent implements a qBittorrent Web API client.
package qbittorrent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/seasonarr/seasonarr/internal/downloader/types"
)

// qBittorrent state vocabulary, bucketed into the shared Status values.
var (
	downloadingStates = []string{
		"allocating", "downloading", "metaDL", "pausedDL", "queuedDL",
		"stalledDL", "checkingDL", "forcedDL", "moving",
	}
	finishedStates = []string{
		"uploading", "pausedUP", "queuedUP", "stalledUP", "checkingUP",
		"forcedUP",
	}
	errorStates = []string{"missingFiles", "error", "checkingResumeData"}
)

// MapState buckets a qBittorrent torrent state into a Status. States outside
// the known vocabulary map to StatusUnknown.
func MapState(state string) types.Status {
	for _, s := range downloadingStates {
		if state == s {
			return types.StatusDownloading
		}
	}
	for _, s := range finishedStates {
		if state == s {
			return types.StatusFinished
		}
	}
	for _, s := range errorStates {
		if state == s {
			return types.StatusError
		}
	}
	return types.StatusUnknown
}

// Config holds the configuration for a qBittorrent client.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	UseSSL   bool
}

// Client implements the types.Client interface against the qBittorrent
// Web API (api/v2). Authentication is a session cookie obtained from
// auth/login; on a 403 the client logs in again and retries once.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     zerolog.Logger
}

// Compile-time check that Client implements the Client interface.
var _ types.Client = (*Client)(nil)

// New creates a new qBittorrent client.
func New(cfg Config, logger zerolog.Logger) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
		logger: logger.With().Str("component", "qbittorrent").Logger(),
	}
}

func (c *Client) baseURL() string {
	scheme := "http"
	if c.config.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.config.Host, c.config.Port)
}

// login obtains a fresh session cookie.
func (c *Client) login(ctx context.Context) error {
	form := url.Values{}
	form.Set("username", c.config.Username)
	form.Set("password", c.config.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL()+"/api/v2/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrNotConnected, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrNotConnected, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(body)) != "Ok." {
		return fmt.Errorf("%w: login response %q", types.ErrAuthFailed, strings.TrimSpace(string(body)))
	}

	c.logger.Debug().Msg("Logged into qBittorrent")
	return nil
}

// do performs an authenticated request, logging in again once on a 403.
func (c *Client) do(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	req, err := build()
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrNotConnected, err)
	}
	if resp.StatusCode != http.StatusForbidden {
		return resp, nil
	}
	resp.Body.Close()

	if err := c.login(ctx); err != nil {
		return nil, err
	}
	req, err = build()
	if err != nil {
		return nil, err
	}
	resp, err = c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrNotConnected, err)
	}
	return resp, nil
}

// Test verifies connectivity and credentials.
func (c *Client) Test(ctx context.Context) error {
	if err := c.login(ctx); err != nil {
		return err
	}
	resp, err := c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet,
			c.baseURL()+"/api/v2/app/version", nil)
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: version check returned status %d", types.ErrNotConnected, resp.StatusCode)
	}
	version, _ := io.ReadAll(resp.Body)
	c.logger.Info().Str("version", string(version)).Msg("Connected to qBittorrent")
	return nil
}

// Add submits a torrent file or magnet link.
func (c *Client) Add(ctx context.Context, opts types.AddOptions) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if len(opts.FileContent) > 0 {
		part, err := writer.CreateFormFile("torrents", "release.torrent")
		if err != nil {
			return fmt.Errorf("failed to build upload: %w", err)
		}
		if _, err := part.Write(opts.FileContent); err != nil {
			return fmt.Errorf("failed to build upload: %w", err)
		}
	} else if opts.MagnetURL != "" {
		if err := writer.WriteField("urls", opts.MagnetURL); err != nil {
			return fmt.Errorf("failed to build upload: %w", err)
		}
	} else {
		return fmt.Errorf("either FileContent or MagnetURL must be provided")
	}

	if opts.Category != "" {
		if err := writer.WriteField("category", opts.Category); err != nil {
			return fmt.Errorf("failed to build upload: %w", err)
		}
	}
	if opts.SavePath != "" {
		if err := writer.WriteField("savepath", opts.SavePath); err != nil {
			return fmt.Errorf("failed to build upload: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to build upload: %w", err)
	}

	payload := body.Bytes()
	resp, err := c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL()+"/api/v2/torrents/add", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	answer, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(answer)) != "Ok." {
		return fmt.Errorf("failed to add torrent, response %q (status %d)",
			strings.TrimSpace(string(answer)), resp.StatusCode)
	}
	return nil
}

// torrentInfo mirrors one entry of the torrents/info response.
type torrentInfo struct {
	Hash  string `json:"hash"`
	Name  string `json:"name"`
	State string `json:"state"`
}

// Status reports the bucketed state of the torrent with the given hash.
func (c *Client) Status(ctx context.Context, hash string) (types.Status, error) {
	resp, err := c.do(ctx, func() (*http.Request, error) {
		endpoint := fmt.Sprintf("%s/api/v2/torrents/info?hashes=%s",
			c.baseURL(), url.QueryEscape(hash))
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return types.StatusUnknown, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.StatusUnknown, fmt.Errorf("%w: info returned status %d", types.ErrNotConnected, resp.StatusCode)
	}

	var infos []torrentInfo
	if err := json.NewDecoder(resp.Body).Decode(&infos); err != nil {
		return types.StatusUnknown, fmt.Errorf("failed to decode torrent info: %w", err)
	}
	if len(infos) == 0 {
		c.logger.Warn().Str("hash", hash).Msg("Torrent not known to client")
		return types.StatusUnknown, nil
	}

	return MapState(infos[0].State), nil
}

// Pause pauses the torrent with the given hash.
func (c *Client) Pause(ctx context.Context, hash string) error {
	return c.postHashes(ctx, "/api/v2/torrents/pause", hash, nil)
}

// Resume resumes the torrent with the given hash.
func (c *Client) Resume(ctx context.Context, hash string) error {
	return c.postHashes(ctx, "/api/v2/torrents/resume", hash, nil)
}

// Remove drops the torrent, optionally deleting its files.
func (c *Client) Remove(ctx context.Context, hash string, deleteFiles bool) error {
	extra := url.Values{}
	extra.Set("deleteFiles", fmt.Sprintf("%t", deleteFiles))
	return c.postHashes(ctx, "/api/v2/torrents/delete", hash, extra)
}

func (c *Client) postHashes(ctx context.Context, path, hash string, extra url.Values) error {
	form := url.Values{}
	form.Set("hashes", hash)
	for key, values := range extra {
		for _, value := range values {
			form.Add(key, value)
		}
	}
	encoded := form.Encode()

	resp, err := c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL()+path, strings.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request to %s returned status %d", path, resp.StatusCode)
	}
	return nil
}
