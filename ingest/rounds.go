package ingest

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/leagueforge/league-engine/models"
)

// Cumulative round files carry the standings *after* each round: one row per
// still-active player with their running match-point total. Per-match
// outcomes are not present and get reconstructed from point deltas later.

// ParseRoundFile reads a single cumulative round export. The round number is
// taken from the caller because it is encoded in the file name, not the rows.
func ParseRoundFile(r io.Reader, round int) ([]models.PlayerRoundRecord, error) {
	rd := csv.NewReader(r)
	rd.FieldsPerRecord = -1

	head, err := rd.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	h := newHeader(head)

	rankIdx, err := h.index("Rank")
	if err != nil {
		return nil, err
	}
	pointsIdx, err := h.index("Match Point")
	if err != nil {
		return nil, err
	}
	nameIdx, err := h.index("Player Name - 1")
	if err != nil {
		return nil, err
	}
	idIdx, err := h.index("Membership Number - 1")
	if err != nil {
		return nil, err
	}
	// Status is optional; when present, dropped players are filtered out.
	statusIdx := -1
	if i, serr := h.index("Status"); serr == nil {
		statusIdx = i
	}

	var records []models.PlayerRoundRecord
	for {
		row, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if field(row, idIdx) == "" {
			continue
		}
		if statusIdx >= 0 {
			if s := field(row, statusIdx); s != "" && s != "Active" {
				continue
			}
		}
		records = append(records, models.PlayerRoundRecord{
			PlayerID:   NormalizePlayerID(field(row, idIdx)),
			PlayerName: field(row, nameIdx),
			Round:      round,
			Points:     intField(row, pointsIdx),
			Rank:       intField(row, rankIdx),
		})
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}
	return records, nil
}

// ParseRoundFiles reads the full progression. Readers must be supplied in
// round order; the first reader is round 1.
func ParseRoundFiles(readers []io.Reader) ([]models.PlayerRoundRecord, error) {
	var all []models.PlayerRoundRecord
	for i, r := range readers {
		recs, err := ParseRoundFile(r, i+1)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", i+1, err)
		}
		all = append(all, recs...)
	}
	if len(all) == 0 {
		return nil, ErrEmptyFile
	}
	return all, nil
}
