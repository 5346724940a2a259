package swiss

import (
	"sort"

	"github.com/leagueforge/league-engine/models"
)

// RoundsForField returns the expected Swiss round count for a field size.
// Display metadata only; never used for scoring.
func RoundsForField(n int) int {
	switch {
	case n <= 8:
		return 3
	case n <= 16:
		return 4
	case n <= 32:
		return 5
	case n <= 64:
		return 6
	case n <= 128:
		return 7
	default:
		return 8
	}
}

// Rank assigns 1-based ranks ordered by win points DESC, then OMW DESC, then
// OOMW DESC, then player ID ASC. The final key keeps the order stable and
// deterministic; ties are never dropped.
func Rank(outcomes []PlayerOutcome) {
	sort.SliceStable(outcomes, func(i, j int) bool {
		a, b := outcomes[i], outcomes[j]
		if a.WinPoints != b.WinPoints {
			return a.WinPoints > b.WinPoints
		}
		if a.OMW != b.OMW {
			return a.OMW > b.OMW
		}
		if a.OOMW != b.OOMW {
			return a.OOMW > b.OOMW
		}
		return a.PlayerID < b.PlayerID
	})
	for i := range outcomes {
		outcomes[i].Rank = i + 1
	}
}

// Score applies the league point formula to ranked outcomes:
// victory_points = wins, ranking_points = field_size - (rank - 1),
// league_points = victory_points + ranking_points. Field size is the number
// of players with at least one recorded round appearance, which is exactly
// the outcome set. Outcomes whose ranks do not form a permutation of 1..N
// are re-ranked first, so ranking points always sum to N(N+1)/2.
func Score(tournamentID string, outcomes []PlayerOutcome) []models.ParticipantResult {
	if !ranksArePermutation(outcomes) {
		Rank(outcomes)
	}

	fieldSize := len(outcomes)
	results := make([]models.ParticipantResult, 0, fieldSize)
	for _, o := range outcomes {
		victory := o.Wins
		ranking := fieldSize - (o.Rank - 1)
		results = append(results, models.ParticipantResult{
			ID:            models.ResultID(tournamentID, o.PlayerID),
			TournamentID:  tournamentID,
			PlayerID:      o.PlayerID,
			PlayerName:    o.PlayerName,
			Rank:          o.Rank,
			Wins:          o.Wins,
			Ties:          o.Ties,
			Losses:        o.Losses,
			WinPoints:     o.WinPoints,
			OMW:           o.OMW,
			OOMW:          o.OOMW,
			VictoryPoints: victory,
			RankingPoints: ranking,
			LeaguePoints:  victory + ranking,
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Rank < results[j].Rank })
	return results
}

// ranksArePermutation reports whether every outcome carries a distinct rank
// in 1..N. Unranked outcomes fail the check, and so do provisional ranks
// from a round progression: a player who drops mid-event keeps the rank of
// their last reported round, which can collide with a finisher's.
func ranksArePermutation(outcomes []PlayerOutcome) bool {
	seen := make([]bool, len(outcomes))
	for _, o := range outcomes {
		if o.Rank < 1 || o.Rank > len(outcomes) || seen[o.Rank-1] {
			return false
		}
		seen[o.Rank-1] = true
	}
	return true
}

// WinnerName returns the name of the rank-1 participant, or the empty string
// for an empty field.
func WinnerName(results []models.ParticipantResult) string {
	for _, r := range results {
		if r.Rank == 1 {
			if r.PlayerName != "" {
				return r.PlayerName
			}
			return r.PlayerID
		}
	}
	return ""
}
