package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	dltypes "github.com/seasonarr/seasonarr/internal/downloader/types"
	"github.com/seasonarr/seasonarr/internal/scheduler"
	"github.com/seasonarr/seasonarr/internal/websocket"
)

func (s *Server) listJobs(c echo.Context) error {
	if s.scheduler == nil {
		return c.JSON(http.StatusOK, []scheduler.TaskInfo{})
	}
	return c.JSON(http.StatusOK, s.scheduler.ListTasks())
}

func (s *Server) runJob(c echo.Context) error {
	if s.scheduler == nil {
		return errorJSON(c, http.StatusServiceUnavailable, errors.New("scheduler not running"))
	}
	taskID := c.Param("id")
	if err := s.scheduler.RunNow(taskID); err != nil {
		return errorJSON(c, http.StatusBadRequest, err)
	}
	return c.JSON(http.StatusAccepted, map[string]string{
		"message": "Task started",
		"taskId":  taskID,
	})
}

// runAutoDownload sweeps the authorized requests synchronously and reports
// how many were satisfied.
func (s *Server) runAutoDownload(c echo.Context) error {
	satisfied, err := s.acquisition.AutoDownloadApproved(c.Request().Context())
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, map[string]int{"satisfied": satisfied})
}

// runImport imports finished transfers synchronously and reports which ones
// landed in the library.
func (s *Server) runImport(c echo.Context) error {
	imported, err := s.acquisition.ImportFinished(c.Request().Context())
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err)
	}
	for i := range imported {
		s.hub.Broadcast(websocket.EventImportCompleted, &imported[i])
	}
	if imported == nil {
		imported = []dltypes.Torrent{}
	}
	return c.JSON(http.StatusOK, imported)
}
