package swiss

import (
	"errors"
	"fmt"
	"sort"

	"github.com/leagueforge/league-engine/models"
)

var (
	ErrNoRoundData        = errors.New("no round data supplied")
	ErrInsufficientRounds = errors.New("tournament has fewer than one round")
)

// PlayerOutcome is the reconstructed result of one player in one tournament,
// before the league point formula is applied.
type PlayerOutcome struct {
	PlayerID   string
	PlayerName string
	Wins       int
	Ties       int
	Losses     int
	WinPoints  int
	OMW        float64
	OOMW       float64
	Rank       int // 0 until ranked or overridden by the final-standings file
}

// IntegrityWarning flags a disagreement between the authoritative
// final-standings file and the round-reconstructed numbers. Non-fatal: the
// import proceeds using the authoritative values.
type IntegrityWarning struct {
	PlayerID string
	Message  string
}

func (w IntegrityWarning) String() string {
	return fmt.Sprintf("player %s: %s", w.PlayerID, w.Message)
}

// ReconstructFromPairings derives each player's record directly from pairing
// records, one slice per round. A bye counts as a win for the present player;
// a pairing without a winner counts as a tie for both. Opponents are tracked
// so that OMW/OOMW can be computed from the pairing graph.
func ReconstructFromPairings(rounds [][]models.Pairing) ([]PlayerOutcome, error) {
	if len(rounds) < 1 {
		return nil, ErrInsufficientRounds
	}

	records := make(map[string]Record)
	names := make(map[string]string)
	opponents := make(map[string][]string)
	seen := make(map[string]map[string]bool) // distinct-opponent sets

	addOpponent := func(playerID, oppID string) {
		if seen[playerID] == nil {
			seen[playerID] = make(map[string]bool)
		}
		if !seen[playerID][oppID] {
			seen[playerID][oppID] = true
			opponents[playerID] = append(opponents[playerID], oppID)
		}
	}

	for _, round := range rounds {
		for _, p := range round {
			if p.P1ID == "" {
				continue
			}
			if p.P1Name != "" {
				names[p.P1ID] = p.P1Name
			}
			if p.P2Name != "" && p.P2ID != "" {
				names[p.P2ID] = p.P2Name
			}

			if p.IsBye() {
				// Bye: implicit win, no opponent.
				rec := records[p.P1ID]
				rec.Wins++
				records[p.P1ID] = rec
				continue
			}

			addOpponent(p.P1ID, p.P2ID)
			addOpponent(p.P2ID, p.P1ID)

			r1, r2 := records[p.P1ID], records[p.P2ID]
			switch p.WinnerID {
			case p.P1ID:
				r1.Wins++
				r2.Losses++
			case p.P2ID:
				r2.Wins++
				r1.Losses++
			default:
				// No winner recorded = draw.
				r1.Ties++
				r2.Ties++
			}
			records[p.P1ID], records[p.P2ID] = r1, r2
		}
	}

	if len(records) == 0 {
		return nil, ErrNoRoundData
	}

	outcomes := make([]PlayerOutcome, 0, len(records))
	for id, rec := range records {
		outcomes = append(outcomes, PlayerOutcome{
			PlayerID:   id,
			PlayerName: names[id],
			Wins:       rec.Wins,
			Ties:       rec.Ties,
			Losses:     rec.Losses,
			WinPoints:  rec.WinPoints(),
			OMW:        OMW(id, opponents, records),
			OOMW:       OOMW(id, opponents, records),
		})
	}
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].PlayerID < outcomes[j].PlayerID })
	return outcomes, nil
}

// ReconstructFromProgression infers each round's outcome from the point
// delta between consecutive cumulative totals: delta >= 3 is a win, delta
// == 1 a tie, anything else a loss. The first round's delta is taken against
// a baseline of 0. A player absent from an intermediate round is treated as
// a no-show for that round (0 delta), not an error. The rank reported on a
// player's last round is kept as a provisional rank; the authoritative
// final-standings file overrides it when present, and the scoring step
// re-ranks whenever the provisional ranks do not form a permutation.
func ReconstructFromProgression(records []models.PlayerRoundRecord) ([]PlayerOutcome, error) {
	if len(records) == 0 {
		return nil, ErrInsufficientRounds
	}

	type progression struct {
		name    string
		byRound map[int]models.PlayerRoundRecord
		last    int
	}
	players := make(map[string]*progression)
	for _, rec := range records {
		p := players[rec.PlayerID]
		if p == nil {
			p = &progression{byRound: make(map[int]models.PlayerRoundRecord)}
			players[rec.PlayerID] = p
		}
		p.byRound[rec.Round] = rec
		if rec.Round > p.last {
			p.last = rec.Round
		}
		if rec.PlayerName != "" {
			p.name = rec.PlayerName
		}
	}

	outcomes := make([]PlayerOutcome, 0, len(players))
	for id, p := range players {
		out := PlayerOutcome{PlayerID: id, PlayerName: p.name}
		prev := 0
		for round := 1; round <= p.last; round++ {
			rec, ok := p.byRound[round]
			points := prev // missing round: 0 delta
			if ok {
				points = rec.Points
			}
			switch delta := points - prev; {
			case delta >= 3:
				out.Wins++
			case delta == 1:
				out.Ties++
			default:
				// Delta 0 always maps to a loss; an undocumented tie is
				// indistinguishable here. Known precision limit of the
				// reconstruction method.
				out.Losses++
			}
			prev = points
			if ok {
				out.Rank = rec.Rank
			}
		}
		out.WinPoints = out.Wins*3 + out.Ties
		outcomes = append(outcomes, out)
	}
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].PlayerID < outcomes[j].PlayerID })
	return outcomes, nil
}

// MergeFinal merges reconstructed outcomes with the authoritative
// final-standings file. Rank, win points, OMW and OOMW come from the final
// file; wins/ties/losses stay as reconstructed from the round progression.
// The two sources describe the same tournament and must agree on total win
// points; a mismatch is reported as a warning and the authoritative numbers
// win. The final file defines the participant roster: a player present only
// in the final file gets wins derived from win points, and a player missing
// from it is dropped with a warning.
func MergeFinal(outcomes []PlayerOutcome, final []models.FinalStandingRow) ([]PlayerOutcome, []IntegrityWarning) {
	var warnings []IntegrityWarning

	byID := make(map[string]PlayerOutcome, len(outcomes))
	for _, o := range outcomes {
		byID[o.PlayerID] = o
	}

	merged := make([]PlayerOutcome, 0, len(final))
	for _, row := range final {
		out, ok := byID[row.PlayerID]
		if !ok {
			// No round data: derive what we can from the win-point total.
			merged = append(merged, PlayerOutcome{
				PlayerID:   row.PlayerID,
				PlayerName: row.PlayerName,
				Wins:       row.WinPoints / 3,
				WinPoints:  row.WinPoints,
				OMW:        row.OMW,
				OOMW:       row.OOMW,
				Rank:       row.Rank,
			})
			warnings = append(warnings, IntegrityWarning{
				PlayerID: row.PlayerID,
				Message:  "present in final standings but missing from round files",
			})
			continue
		}
		delete(byID, row.PlayerID)

		if out.WinPoints != row.WinPoints {
			warnings = append(warnings, IntegrityWarning{
				PlayerID: row.PlayerID,
				Message: fmt.Sprintf("reconstructed win points %d disagree with final standings %d",
					out.WinPoints, row.WinPoints),
			})
		}

		out.Rank = row.Rank
		out.WinPoints = row.WinPoints
		out.OMW = row.OMW
		out.OOMW = row.OOMW
		if out.PlayerName == "" {
			out.PlayerName = row.PlayerName
		}
		merged = append(merged, out)
	}

	missing := make([]string, 0, len(byID))
	for id := range byID {
		missing = append(missing, id)
	}
	sort.Strings(missing)
	for _, id := range missing {
		warnings = append(warnings, IntegrityWarning{
			PlayerID: id,
			Message:  "present in round files but missing from final standings",
		})
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].Rank < merged[j].Rank })
	return merged, warnings
}
