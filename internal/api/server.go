// Package api exposes the HTTP surface: library browsing, candidate search,
// season requests, transfer control, jobs and the event WebSocket.
package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/seasonarr/seasonarr/internal/acquisition"
	"github.com/seasonarr/seasonarr/internal/api/middleware"
	"github.com/seasonarr/seasonarr/internal/downloader"
	"github.com/seasonarr/seasonarr/internal/indexer/search"
	"github.com/seasonarr/seasonarr/internal/library/tv"
	"github.com/seasonarr/seasonarr/internal/logger"
	"github.com/seasonarr/seasonarr/internal/scheduler"
	"github.com/seasonarr/seasonarr/internal/websocket"
)

// Server handles HTTP requests for the Seasonarr API.
type Server struct {
	echo   *echo.Echo
	hub    *websocket.Hub
	logger zerolog.Logger

	acquisition *acquisition.Service
	downloads   *downloader.Service
	search      *search.Service
	library     *tv.Repository
	scheduler   *scheduler.Scheduler
	logStream   *logger.StreamWriter
}

// Deps bundles the services the server fronts. LogStream and Scheduler may
// be nil; the matching endpoints then report empty data.
type Deps struct {
	Acquisition *acquisition.Service
	Downloads   *downloader.Service
	Search      *search.Service
	Library     *tv.Repository
	Scheduler   *scheduler.Scheduler
	Hub         *websocket.Hub
	LogStream   *logger.StreamWriter
}

// NewServer creates an API server over already constructed services.
func NewServer(deps Deps, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:        e,
		hub:         deps.Hub,
		logger:      logger.With().Str("component", "api").Logger(),
		acquisition: deps.Acquisition,
		downloads:   deps.Downloads,
		search:      deps.Search,
		library:     deps.Library,
		scheduler:   deps.Scheduler,
		logStream:   deps.LogStream,
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.echo.Use(echomw.Recover())
	s.echo.Use(echomw.RequestID())
	s.echo.Use(middleware.SecurityHeaders())

	s.echo.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	s.echo.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Info().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))

	s.echo.Use(echomw.GzipWithConfig(echomw.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return c.Request().Header.Get("Upgrade") == "websocket"
		},
	}))
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/ws", s.hub.HandleWebSocket)

	api := s.echo.Group("/api/v1")

	// Library
	api.GET("/shows", s.listShows)
	api.POST("/shows", s.addShow)
	api.GET("/shows/:id", s.getShow)
	api.GET("/shows/:id/seasons", s.listSeasons)
	api.POST("/shows/:id/seasons", s.addSeason)
	api.GET("/seasons/:id/episodes", s.listEpisodes)
	api.POST("/seasons/:id/episodes", s.addEpisode)

	// Candidate search
	api.GET("/search", s.searchCandidates)
	api.GET("/shows/:id/seasons/:number/candidates", s.availableCandidates)
	api.POST("/shows/:id/candidates/:candidateId/download", s.downloadCandidate)

	// Season requests
	api.GET("/requests", s.listRequests)
	api.POST("/requests", s.createRequest)
	api.POST("/requests/:id/authorize", s.authorizeRequest)
	api.POST("/requests/:id/download", s.downloadRequest)
	api.DELETE("/requests/:id", s.deleteRequest)

	// Transfers
	api.GET("/torrents", s.listTorrents)
	api.GET("/torrents/:id", s.getTorrent)
	api.POST("/torrents/:id/pause", s.pauseTorrent)
	api.POST("/torrents/:id/resume", s.resumeTorrent)
	api.POST("/torrents/:id/cancel", s.cancelTorrent)
	api.DELETE("/torrents/:id", s.deleteTorrent)

	// Jobs
	api.GET("/jobs", s.listJobs)
	api.POST("/jobs/:id/run", s.runJob)
	api.POST("/jobs/auto-download", s.runAutoDownload)
	api.POST("/jobs/import", s.runImport)

	// Logs
	api.GET("/logs", s.recentLogs)
}

// Start begins listening for HTTP requests.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) recentLogs(c echo.Context) error {
	if s.logStream == nil {
		return c.JSON(http.StatusOK, []logger.LogEntry{})
	}
	return c.JSON(http.StatusOK, s.logStream.Recent())
}

func errorJSON(c echo.Context, status int, err error) error {
	return c.JSON(status, map[string]string{"error": err.Error()})
}
