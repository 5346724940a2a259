package services

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leagueforge/league-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seasonResults builds one result per entry of leaguePoints for a single
// player, rank defaulting to 2 so no tournament counts as a win.
func seasonResults(playerID string, leaguePoints ...int) []models.ParticipantResult {
	results := make([]models.ParticipantResult, 0, len(leaguePoints))
	for i, lp := range leaguePoints {
		results = append(results, models.ParticipantResult{
			ID:           fmt.Sprintf("S_%02d_%s", i, playerID),
			TournamentID: fmt.Sprintf("S_%02d", i),
			PlayerID:     playerID,
			PlayerName:   "Player " + playerID,
			Rank:         2,
			Wins:         2,
			LeaguePoints: lp,
		})
	}
	return results
}

func TestBuildStandings(t *testing.T) {
	t.Run("no drop while season is active", func(t *testing.T) {
		standings := BuildStandings("OP12", models.SeasonStatusActive,
			seasonResults("p1", 10, 15, 8))
		require.Len(t, standings, 1)
		assert.Equal(t, 33, standings[0].TotalPoints)
		assert.Equal(t, 3, standings[0].TournamentsPlayed)
		assert.Equal(t, 3, standings[0].TournamentsCounted)
	})

	t.Run("closed season drops the two weakest above the threshold", func(t *testing.T) {
		// 10 tournaments: 1..10 points. Dropping the two weakest (1, 2)
		// leaves 3+..+10 = 52.
		standings := BuildStandings("OP12", models.SeasonStatusClosed,
			seasonResults("p1", 1, 2, 3, 4, 5, 6, 7, 8, 9, 10))
		require.Len(t, standings, 1)
		assert.Equal(t, 10, standings[0].TournamentsPlayed)
		assert.Equal(t, 8, standings[0].TournamentsCounted)
		assert.Equal(t, 52, standings[0].TotalPoints)
	})

	t.Run("closed season below the threshold keeps everything", func(t *testing.T) {
		standings := BuildStandings("OP12", models.SeasonStatusClosed,
			seasonResults("p1", 1, 2, 3, 4, 5, 6, 7))
		require.Len(t, standings, 1)
		assert.Equal(t, 7, standings[0].TournamentsCounted)
		assert.Equal(t, 28, standings[0].TotalPoints)
	})

	t.Run("archived season never drops", func(t *testing.T) {
		standings := BuildStandings("OP12", models.SeasonStatusArchived,
			seasonResults("p1", 1, 2, 3, 4, 5, 6, 7, 8, 9, 10))
		require.Len(t, standings, 1)
		assert.Equal(t, 10, standings[0].TournamentsCounted)
		assert.Equal(t, 55, standings[0].TotalPoints)
	})

	t.Run("aggregates cover all played tournaments even when dropped", func(t *testing.T) {
		results := []models.ParticipantResult{}
		// 9 tournaments: one win, the rest mid-field, one last place.
		for i := 0; i < 9; i++ {
			rank := 5
			wins := 2
			switch i {
			case 0:
				rank, wins = 1, 4
			case 8:
				rank, wins = 12, 0
			}
			results = append(results, models.ParticipantResult{
				ID:           fmt.Sprintf("S_%02d_p1", i),
				TournamentID: fmt.Sprintf("S_%02d", i),
				PlayerID:     "p1",
				PlayerName:   "Alice",
				Rank:         rank,
				Wins:         wins,
				LeaguePoints: i + 1,
			})
		}
		standings := BuildStandings("OP12", models.SeasonStatusClosed, results)
		require.Len(t, standings, 1)
		s := standings[0]
		assert.Equal(t, 9, s.TournamentsPlayed)
		assert.Equal(t, 7, s.TournamentsCounted)
		assert.Equal(t, 1, s.TournamentWins)
		assert.Equal(t, 2+3+4+5+6+7+8+9, s.MatchWins, "match wins count every tournament")
		assert.Equal(t, 1, s.BestRank)
		assert.Equal(t, 8, s.Top8Count)
	})

	t.Run("orders by total points with stable ranks", func(t *testing.T) {
		results := append(seasonResults("p2", 20), seasonResults("p1", 30)...)
		results = append(results, seasonResults("p3", 20)...)
		standings := BuildStandings("OP12", models.SeasonStatusActive, results)
		require.Len(t, standings, 3)
		assert.Equal(t, "p1", standings[0].PlayerID)
		assert.Equal(t, 1, standings[0].RankInSeason)
		assert.Equal(t, "p2", standings[1].PlayerID)
		assert.Equal(t, 2, standings[1].RankInSeason)
		assert.Equal(t, "p3", standings[2].PlayerID)
		assert.Equal(t, 3, standings[2].RankInSeason)
	})

	t.Run("recomputation is idempotent", func(t *testing.T) {
		results := append(seasonResults("p2", 4, 9, 2), seasonResults("p1", 7, 7)...)
		first := BuildStandings("OP12", models.SeasonStatusClosed, results)
		second := BuildStandings("OP12", models.SeasonStatusClosed, results)
		assert.Empty(t, cmp.Diff(first, second))
	})

	t.Run("empty season yields empty standings", func(t *testing.T) {
		standings := BuildStandings("OP12", models.SeasonStatusActive, nil)
		assert.Empty(t, standings)
	})
}
