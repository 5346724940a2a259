package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/leagueforge/league-engine/services"
)

type StatsHandler struct {
	statsService services.StatsService
}

func NewStatsHandler(statsService services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

func (h *StatsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	game := r.URL.Query().Get("game")

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			badRequestResponse(w, r, errors.New("limit must be an integer between 1 and 500"))
			return
		}
		limit = n
	}

	leaderboard, err := h.statsService.Leaderboard(r.Context(), game, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": leaderboard}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StatsHandler) PlayerDashboard(w http.ResponseWriter, r *http.Request) {
	game := r.URL.Query().Get("game")
	if game == "" {
		badRequestResponse(w, r, errors.New("game query parameter is required"))
		return
	}

	dashboard, err := h.statsService.GetPlayerDashboard(r.Context(), chi.URLParam(r, "playerID"), game)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"dashboard": dashboard}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
