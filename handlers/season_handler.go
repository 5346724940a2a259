package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/leagueforge/league-engine/services"
)

type SeasonHandler struct {
	seasonService services.SeasonService
}

func NewSeasonHandler(seasonService services.SeasonService) *SeasonHandler {
	return &SeasonHandler{seasonService: seasonService}
}

type createSeasonInput struct {
	ID        string `json:"id"`
	Game      string `json:"game"`
	Name      string `json:"name,omitempty"`
	StartDate string `json:"start_date,omitempty"` // YYYY-MM-DD
}

func (h *SeasonHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input createSeasonInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.ID == "" || input.Game == "" {
		badRequestResponse(w, r, errors.New("id and game are required"))
		return
	}

	var startDate time.Time
	if input.StartDate != "" {
		parsed, err := time.Parse("2006-01-02", input.StartDate)
		if err != nil {
			badRequestResponse(w, r, errors.New("start_date must be formatted as YYYY-MM-DD"))
			return
		}
		startDate = parsed
	}

	season, err := h.seasonService.Create(r.Context(), services.CreateSeasonInput{
		ID:        input.ID,
		Game:      input.Game,
		Name:      input.Name,
		StartDate: startDate,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"season": season}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SeasonHandler) List(w http.ResponseWriter, r *http.Request) {
	game := r.URL.Query().Get("game")
	includeArchived := r.URL.Query().Get("include_archived") == "true"

	seasons, err := h.seasonService.List(r.Context(), game, includeArchived)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"seasons": seasons}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SeasonHandler) Get(w http.ResponseWriter, r *http.Request) {
	season, err := h.seasonService.GetByID(r.Context(), chi.URLParam(r, "seasonID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"season": season}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SeasonHandler) Close(w http.ResponseWriter, r *http.Request) {
	season, err := h.seasonService.Close(r.Context(), chi.URLParam(r, "seasonID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"season": season}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SeasonHandler) Archive(w http.ResponseWriter, r *http.Request) {
	season, err := h.seasonService.Archive(r.Context(), chi.URLParam(r, "seasonID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"season": season}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SeasonHandler) SuggestNextID(w http.ResponseWriter, r *http.Request) {
	game := r.URL.Query().Get("game")
	if game == "" {
		badRequestResponse(w, r, errors.New("game query parameter is required"))
		return
	}
	suggestion, err := h.seasonService.SuggestNextID(r.Context(), game)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"suggested_id": suggestion}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
