package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/leagueforge/league-engine/cache"
	"github.com/leagueforge/league-engine/services"
)

// maxImportBytes bounds one multipart import request. Round files are small
// CSVs; 16MB leaves room for a full day of exports.
const maxImportBytes = 16 << 20

type ImportHandler struct {
	importService services.ImportService
	standings     *cache.StandingsCache
}

func NewImportHandler(importService services.ImportService, standings *cache.StandingsCache) *ImportHandler {
	return &ImportHandler{importService: importService, standings: standings}
}

// Import accepts a multipart form:
//
//	rounds    — one or more cumulative round CSVs (round number in file name)
//	pairings  — optional pairings CSV, preferred over rounds
//	final     — optional authoritative final standings CSV
//	date      — optional YYYY-MM-DD, otherwise read from file names
//	allow_reimport — "true" to replace an already-imported tournament
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	seasonID := chi.URLParam(r, "seasonID")

	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		badRequestResponse(w, r, fmt.Errorf("parse multipart form: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	input := services.ImportInput{
		SeasonID:      seasonID,
		AllowReimport: r.FormValue("allow_reimport") == "true",
	}

	if raw := r.FormValue("date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			badRequestResponse(w, r, errors.New("date must be formatted as YYYY-MM-DD"))
			return
		}
		input.Date = date
	}

	for _, header := range r.MultipartForm.File["rounds"] {
		file, err := readFormFile(header)
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
		input.RoundFiles = append(input.RoundFiles, *file)
	}
	if headers := r.MultipartForm.File["pairings"]; len(headers) > 0 {
		file, err := readFormFile(headers[0])
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
		input.PairingsFile = file
	}
	if headers := r.MultipartForm.File["final"]; len(headers) > 0 {
		file, err := readFormFile(headers[0])
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
		input.FinalFile = file
	}

	report, err := h.importService.ImportTournament(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.standings.Put(seasonID, report.Standings)

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"import": report}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func readFormFile(header *multipart.FileHeader) (*services.SourceFile, error) {
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded file %s: %w", header.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read uploaded file %s: %w", header.Filename, err)
	}
	return &services.SourceFile{Name: header.Filename, Data: data}, nil
}

// DeleteTournament removes a stored tournament. The season table is
// recomputed inside the same transaction and the refreshed copy replaces the
// cached one.
func (h *ImportHandler) DeleteTournament(w http.ResponseWriter, r *http.Request) {
	report, err := h.importService.DeleteTournament(r.Context(), chi.URLParam(r, "tournamentID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.standings.Put(report.SeasonID, report.Standings)

	if err := writeJSON(w, http.StatusOK, jsonResponse{"season": report}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ImportHandler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.importService.ListTournaments(r.Context(), chi.URLParam(r, "seasonID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ImportHandler) GetTournament(w http.ResponseWriter, r *http.Request) {
	tournament, err := h.importService.GetTournament(r.Context(), chi.URLParam(r, "tournamentID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
