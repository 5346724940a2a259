package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/leagueforge/league-engine/cache"
	"github.com/leagueforge/league-engine/services"
)

type StandingsHandler struct {
	standingsService services.StandingsService
	standingsCache   *cache.StandingsCache
}

func NewStandingsHandler(standingsService services.StandingsService, standingsCache *cache.StandingsCache) *StandingsHandler {
	return &StandingsHandler{
		standingsService: standingsService,
		standingsCache:   standingsCache,
	}
}

// GetSeasonStandings serves the season table through the cache. The X-Stale
// header tells the client whether a storage hiccup left it with expired data.
func (h *StandingsHandler) GetSeasonStandings(w http.ResponseWriter, r *http.Request) {
	seasonID := chi.URLParam(r, "seasonID")

	standings, stale, err := h.standingsCache.Get(r.Context(), seasonID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	headers := http.Header{}
	headers.Set("X-Stale", strconv.FormatBool(stale))
	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings, "stale": stale}, headers); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StandingsHandler) GetPlayerStanding(w http.ResponseWriter, r *http.Request) {
	standing, err := h.standingsService.GetPlayerStanding(r.Context(),
		chi.URLParam(r, "seasonID"), chi.URLParam(r, "playerID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"standing": standing}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
