package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/seasonarr/seasonarr/internal/downloader"
	"github.com/seasonarr/seasonarr/internal/downloader/types"
	"github.com/seasonarr/seasonarr/internal/websocket"
)

func (s *Server) listTorrents(c echo.Context) error {
	torrents, err := s.downloads.List(c.Request().Context())
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err)
	}
	if torrents == nil {
		torrents = []types.Torrent{}
	}
	return c.JSON(http.StatusOK, torrents)
}

func (s *Server) getTorrent(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, errors.New("invalid torrent id"))
	}

	torrent, err := s.downloads.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, downloader.ErrTorrentNotFound) {
			return errorJSON(c, http.StatusNotFound, err)
		}
		return errorJSON(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, torrent)
}

func (s *Server) pauseTorrent(c echo.Context) error {
	return s.controlTorrent(c, s.downloads.Pause)
}

func (s *Server) resumeTorrent(c echo.Context) error {
	return s.controlTorrent(c, s.downloads.Resume)
}

func (s *Server) controlTorrent(c echo.Context, action func(ctx context.Context, id uuid.UUID) (*types.Torrent, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, errors.New("invalid torrent id"))
	}

	torrent, err := action(c.Request().Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, downloader.ErrTorrentNotFound):
			return errorJSON(c, http.StatusNotFound, err)
		case errors.Is(err, downloader.ErrClientUnavailable):
			return errorJSON(c, http.StatusBadGateway, err)
		default:
			return errorJSON(c, http.StatusInternalServerError, err)
		}
	}

	s.hub.Broadcast(websocket.EventTorrentStatus, torrent)
	return c.JSON(http.StatusOK, torrent)
}

func (s *Server) cancelTorrent(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, errors.New("invalid torrent id"))
	}
	deleteFiles := c.QueryParam("deleteFiles") == "true"

	torrent, err := s.downloads.Cancel(c.Request().Context(), id, deleteFiles)
	if err != nil {
		switch {
		case errors.Is(err, downloader.ErrTorrentNotFound):
			return errorJSON(c, http.StatusNotFound, err)
		case errors.Is(err, downloader.ErrClientUnavailable):
			return errorJSON(c, http.StatusBadGateway, err)
		default:
			return errorJSON(c, http.StatusInternalServerError, err)
		}
	}

	s.hub.Broadcast(websocket.EventTorrentStatus, torrent)
	return c.JSON(http.StatusOK, torrent)
}

func (s *Server) deleteTorrent(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, errors.New("invalid torrent id"))
	}

	if err := s.downloads.Delete(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, downloader.ErrTorrentNotFound):
			return errorJSON(c, http.StatusNotFound, err)
		case errors.Is(err, downloader.ErrTorrentReferenced):
			return errorJSON(c, http.StatusConflict, err)
		default:
			return errorJSON(c, http.StatusInternalServerError, err)
		}
	}
	return c.NoContent(http.StatusNoContent)
}
