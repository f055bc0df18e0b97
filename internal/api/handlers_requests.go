package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/seasonarr/seasonarr/internal/acquisition"
	"github.com/seasonarr/seasonarr/internal/indexer/types"
	"github.com/seasonarr/seasonarr/internal/library/quality"
	"github.com/seasonarr/seasonarr/internal/library/tv"
	"github.com/seasonarr/seasonarr/internal/websocket"
)

func (s *Server) listRequests(c echo.Context) error {
	requests, err := s.library.ListSeasonRequests(c.Request().Context())
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err)
	}
	if requests == nil {
		requests = []tv.SeasonRequest{}
	}
	return c.JSON(http.StatusOK, requests)
}

type createRequestInput struct {
	SeasonID      string `json:"seasonId"`
	WantedQuality string `json:"wantedQuality"`
	MinQuality    string `json:"minQuality"`
	RequestedBy   string `json:"requestedBy"`
	Privileged    bool   `json:"privileged"`
}

func (s *Server) createRequest(c echo.Context) error {
	var input createRequestInput
	if err := c.Bind(&input); err != nil {
		return errorJSON(c, http.StatusBadRequest, errors.New("invalid request body"))
	}
	seasonID, err := uuid.Parse(input.SeasonID)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, errors.New("invalid season id"))
	}
	wanted, err := quality.Parse(input.WantedQuality)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err)
	}
	min, err := quality.Parse(input.MinQuality)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err)
	}
	if min > wanted {
		return errorJSON(c, http.StatusBadRequest, errors.New("min quality exceeds wanted quality"))
	}

	request, err := s.acquisition.CreateRequest(c.Request().Context(),
		seasonID, wanted, min, input.RequestedBy, input.Privileged)
	if err != nil {
		if errors.Is(err, tv.ErrSeasonNotFound) {
			return errorJSON(c, http.StatusNotFound, err)
		}
		return errorJSON(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusCreated, request)
}

type authorizeRequestInput struct {
	AuthorizedBy string `json:"authorizedBy"`
}

func (s *Server) authorizeRequest(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, errors.New("invalid request id"))
	}
	var input authorizeRequestInput
	if err := c.Bind(&input); err != nil {
		return errorJSON(c, http.StatusBadRequest, errors.New("invalid request body"))
	}

	if err := s.acquisition.AuthorizeRequest(c.Request().Context(), id, input.AuthorizedBy); err != nil {
		if errors.Is(err, tv.ErrRequestNotFound) {
			return errorJSON(c, http.StatusNotFound, err)
		}
		return errorJSON(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "authorized"})
}

func (s *Server) downloadRequest(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, errors.New("invalid request id"))
	}
	queryOverride := c.QueryParam("query")

	torrent, err := s.acquisition.DownloadRequest(c.Request().Context(), id, queryOverride)
	if err != nil {
		switch {
		case errors.Is(err, tv.ErrRequestNotFound):
			return errorJSON(c, http.StatusNotFound, err)
		case errors.Is(err, acquisition.ErrNotAuthorized):
			return errorJSON(c, http.StatusForbidden, err)
		case errors.Is(err, acquisition.ErrNoCandidateFound):
			return errorJSON(c, http.StatusNotFound, err)
		default:
			return errorJSON(c, http.StatusInternalServerError, err)
		}
	}

	s.hub.Broadcast(websocket.EventRequestSatisfied, torrent)
	return c.JSON(http.StatusOK, torrent)
}

func (s *Server) deleteRequest(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, errors.New("invalid request id"))
	}
	if err := s.library.DeleteSeasonRequest(c.Request().Context(), id); err != nil {
		return errorJSON(c, http.StatusInternalServerError, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// searchCandidates runs a raw indexer search. The library parameter selects
// which scoring rulesets apply; media defaults to TV.
func (s *Server) searchCandidates(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return errorJSON(c, http.StatusBadRequest, errors.New("query is required"))
	}
	library := c.QueryParam("library")
	if library == "" {
		library = "shows"
	}
	isTV := c.QueryParam("media") != "movie"

	candidates, err := s.search.Search(c.Request().Context(), query, library, isTV)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err)
	}
	if candidates == nil {
		candidates = []types.Candidate{}
	}
	return c.JSON(http.StatusOK, candidates)
}

func (s *Server) availableCandidates(c echo.Context) error {
	showID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, errors.New("invalid show id"))
	}
	seasonNumber, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, errors.New("invalid season number"))
	}
	queryOverride := c.QueryParam("query")

	candidates, err := s.acquisition.AvailableCandidates(c.Request().Context(), showID, seasonNumber, queryOverride)
	if err != nil {
		if errors.Is(err, tv.ErrShowNotFound) {
			return errorJSON(c, http.StatusNotFound, err)
		}
		return errorJSON(c, http.StatusInternalServerError, err)
	}
	if candidates == nil {
		candidates = []types.Candidate{}
	}
	return c.JSON(http.StatusOK, candidates)
}

type downloadCandidateInput struct {
	Suffix string `json:"suffix"`
}

func (s *Server) downloadCandidate(c echo.Context) error {
	showID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, errors.New("invalid show id"))
	}
	candidateID, err := uuid.Parse(c.Param("candidateId"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, errors.New("invalid candidate id"))
	}
	var input downloadCandidateInput
	if err := c.Bind(&input); err != nil {
		return errorJSON(c, http.StatusBadRequest, errors.New("invalid request body"))
	}

	torrent, err := s.acquisition.DownloadCandidate(c.Request().Context(), candidateID, showID, input.Suffix)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err)
	}

	s.hub.Broadcast(websocket.EventTorrentStatus, torrent)
	return c.JSON(http.StatusOK, torrent)
}
