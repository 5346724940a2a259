package ingest

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/leagueforge/league-engine/models"
)

// ParsePairings reads a per-match pairings export and groups the pairings by
// round, ordered round 1 first. The Winner column holds "1" or "2" for the
// winning seat, "0" or empty for a draw. A row with no second player is a bye.
func ParsePairings(r io.Reader) ([][]models.Pairing, error) {
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

	roundIdx, err := h.index("Round")
	if err != nil {
		return nil, err
	}
	p1Idx, err := h.index("ID Player 1")
	if err != nil {
		return nil, err
	}
	n1Idx, err := h.index("Nick Player 1")
	if err != nil {
		return nil, err
	}
	p2Idx, err := h.index("ID Player 2")
	if err != nil {
		return nil, err
	}
	n2Idx, err := h.index("Nick Player 2")
	if err != nil {
		return nil, err
	}
	winIdx, err := h.index("Winner")
	if err != nil {
		return nil, err
	}

	byRound := map[int][]models.Pairing{}
	maxRound := 0
	for {
		row, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if field(row, p1Idx) == "" {
			continue
		}
		round := intField(row, roundIdx)
		if round < 1 {
			continue
		}
		p := models.Pairing{
			Round:  round,
			P1ID:   NormalizePlayerID(field(row, p1Idx)),
			P1Name: field(row, n1Idx),
		}
		if raw := field(row, p2Idx); raw != "" {
			p.P2ID = NormalizePlayerID(raw)
			p.P2Name = field(row, n2Idx)
		}
		switch field(row, winIdx) {
		case "1":
			p.WinnerID = p.P1ID
		case "2":
			p.WinnerID = p.P2ID
		}
		byRound[round] = append(byRound[round], p)
		if round > maxRound {
			maxRound = round
		}
	}
	if maxRound == 0 {
		return nil, ErrEmptyFile
	}

	rounds := make([][]models.Pairing, maxRound)
	for r := 1; r <= maxRound; r++ {
		rounds[r-1] = byRound[r]
	}
	return rounds, nil
}
