package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/seasonarr/seasonarr/internal/library/tv"
)

func (s *Server) listShows(c echo.Context) error {
	shows, err := s.library.ListShows(c.Request().Context())
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err)
	}
	if shows == nil {
		shows = []tv.Show{}
	}
	return c.JSON(http.StatusOK, shows)
}

type addShowInput struct {
	Name             string `json:"name"`
	Year             int    `json:"year"`
	ExternalID       int64  `json:"externalId"`
	MetadataProvider string `json:"metadataProvider"`
	Library          string `json:"library"`
}

func (s *Server) addShow(c echo.Context) error {
	var input addShowInput
	if err := c.Bind(&input); err != nil {
		return errorJSON(c, http.StatusBadRequest, errors.New("invalid request body"))
	}
	if input.Name == "" {
		return errorJSON(c, http.StatusBadRequest, errors.New("name is required"))
	}

	show := &tv.Show{
		ID:               uuid.New(),
		Name:             input.Name,
		Year:             input.Year,
		ExternalID:       input.ExternalID,
		MetadataProvider: input.MetadataProvider,
		Library:          input.Library,
	}
	if err := s.library.AddShow(c.Request().Context(), show); err != nil {
		return errorJSON(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusCreated, show)
}

func (s *Server) getShow(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, errors.New("invalid show id"))
	}

	show, err := s.library.GetShow(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, tv.ErrShowNotFound) {
			return errorJSON(c, http.StatusNotFound, err)
		}
		return errorJSON(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, show)
}

func (s *Server) listSeasons(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, errors.New("invalid show id"))
	}

	seasons, err := s.library.ListSeasons(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err)
	}
	if seasons == nil {
		seasons = []tv.Season{}
	}
	return c.JSON(http.StatusOK, seasons)
}

type addSeasonInput struct {
	Number int `json:"number"`
}

func (s *Server) addSeason(c echo.Context) error {
	showID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, errors.New("invalid show id"))
	}
	var input addSeasonInput
	if err := c.Bind(&input); err != nil {
		return errorJSON(c, http.StatusBadRequest, errors.New("invalid request body"))
	}
	if input.Number < 0 {
		return errorJSON(c, http.StatusBadRequest, errors.New("season number must not be negative"))
	}
	if _, err := s.library.GetShow(c.Request().Context(), showID); err != nil {
		if errors.Is(err, tv.ErrShowNotFound) {
			return errorJSON(c, http.StatusNotFound, err)
		}
		return errorJSON(c, http.StatusInternalServerError, err)
	}

	season := &tv.Season{ID: uuid.New(), ShowID: showID, Number: input.Number}
	if err := s.library.AddSeason(c.Request().Context(), season); err != nil {
		return errorJSON(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusCreated, season)
}

func (s *Server) listEpisodes(c echo.Context) error {
	seasonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, errors.New("invalid season id"))
	}

	episodes, err := s.library.ListEpisodes(c.Request().Context(), seasonID)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err)
	}
	if episodes == nil {
		episodes = []tv.Episode{}
	}
	return c.JSON(http.StatusOK, episodes)
}

type addEpisodeInput struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
}

func (s *Server) addEpisode(c echo.Context) error {
	seasonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, errors.New("invalid season id"))
	}
	var input addEpisodeInput
	if err := c.Bind(&input); err != nil {
		return errorJSON(c, http.StatusBadRequest, errors.New("invalid request body"))
	}
	if _, err := s.library.GetSeason(c.Request().Context(), seasonID); err != nil {
		if errors.Is(err, tv.ErrSeasonNotFound) {
			return errorJSON(c, http.StatusNotFound, err)
		}
		return errorJSON(c, http.StatusInternalServerError, err)
	}

	episode := &tv.Episode{ID: uuid.New(), SeasonID: seasonID, Number: input.Number, Title: input.Title}
	if err := s.library.AddEpisode(c.Request().Context(), episode); err != nil {
		return errorJSON(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusCreated, episode)
}
