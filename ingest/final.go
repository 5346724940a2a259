package ingest

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/leagueforge/league-engine/models"
)

// ParseFinalStandings reads the final classification export. This file is
// authoritative for rank, win points and tiebreakers; the OOMW column is
// absent in some exports and defaults to zero.
func ParseFinalStandings(r io.Reader) ([]models.FinalStandingRow, error) {
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

	rankIdx, err := h.index("Ranking")
	if err != nil {
		return nil, err
	}
	idIdx, err := h.index("Membership Number")
	if err != nil {
		return nil, err
	}
	nameIdx, err := h.index("User Name")
	if err != nil {
		return nil, err
	}
	pointsIdx, err := h.index("Win Points")
	if err != nil {
		return nil, err
	}
	omwIdx, err := h.index("OMW %")
	if err != nil {
		return nil, err
	}
	oomwIdx := -1
	if i, oerr := h.index("OOMW %"); oerr == nil {
		oomwIdx = i
	}

	var rows []models.FinalStandingRow
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
		fr := models.FinalStandingRow{
			Rank:       intField(row, rankIdx),
			PlayerID:   NormalizePlayerID(field(row, idIdx)),
			PlayerName: field(row, nameIdx),
			WinPoints:  intField(row, pointsIdx),
			OMW:        percentField(row, omwIdx),
		}
		if oomwIdx >= 0 {
			fr.OOMW = percentField(row, oomwIdx)
		}
		rows = append(rows, fr)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}
