package swiss

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundsForField(t *testing.T) {
	cases := map[int]int{
		4: 3, 8: 3, 9: 4, 16: 4, 17: 5, 32: 5, 64: 6, 128: 7, 200: 8,
	}
	for field, rounds := range cases {
		assert.Equal(t, rounds, RoundsForField(field), "field %d", field)
	}
}

func TestRank(t *testing.T) {
	outcomes := []PlayerOutcome{
		{PlayerID: "b", WinPoints: 9, OMW: 0.5},
		{PlayerID: "a", WinPoints: 9, OMW: 0.5},
		{PlayerID: "c", WinPoints: 9, OMW: 0.7},
		{PlayerID: "d", WinPoints: 12},
	}
	Rank(outcomes)

	assert.Equal(t, "d", outcomes[0].PlayerID)
	assert.Equal(t, "c", outcomes[1].PlayerID)
	// Fully tied pair falls back to player ID for determinism.
	assert.Equal(t, "a", outcomes[2].PlayerID)
	assert.Equal(t, "b", outcomes[3].PlayerID)
	for i, o := range outcomes {
		assert.Equal(t, i+1, o.Rank)
	}
}

func TestScore(t *testing.T) {
	t.Run("twelve player scenario", func(t *testing.T) {
		outcomes := make([]PlayerOutcome, 0, 12)
		for i := 1; i <= 12; i++ {
			wins := 0
			if i == 1 {
				wins = 4
			}
			outcomes = append(outcomes, PlayerOutcome{
				PlayerID:  fmt.Sprintf("p%02d", i),
				Wins:      wins,
				WinPoints: wins * 3,
				Rank:      i,
			})
		}

		results := Score("OP12_20251113", outcomes)
		require.Len(t, results, 12)

		first := results[0]
		assert.Equal(t, 1, first.Rank)
		assert.Equal(t, 16, first.LeaguePoints) // 4 wins + (12 - 0)
		assert.Equal(t, 12, first.RankingPoints)

		last := results[11]
		assert.Equal(t, 12, last.Rank)
		assert.Equal(t, 1, last.LeaguePoints) // 0 wins + (12 - 11)
	})

	t.Run("ranking points form a permutation of 1..N", func(t *testing.T) {
		outcomes := []PlayerOutcome{
			{PlayerID: "a", Wins: 3, WinPoints: 9},
			{PlayerID: "b", Wins: 2, WinPoints: 6},
			{PlayerID: "c", Wins: 1, WinPoints: 3},
			{PlayerID: "d", Wins: 0, WinPoints: 0},
			{PlayerID: "e", Wins: 0, WinPoints: 0},
		}
		results := Score("T", outcomes)

		sum := 0
		for _, r := range results {
			sum += r.RankingPoints
		}
		n := len(results)
		assert.Equal(t, n*(n+1)/2, sum)
	})

	t.Run("unranked outcomes get ranked first", func(t *testing.T) {
		outcomes := []PlayerOutcome{
			{PlayerID: "weak", Wins: 0, WinPoints: 0},
			{PlayerID: "strong", Wins: 2, WinPoints: 6},
		}
		results := Score("T", outcomes)
		assert.Equal(t, "strong", results[0].PlayerID)
		assert.Equal(t, 1, results[0].Rank)
	})

	t.Run("stale rank from a mid-event drop gets re-ranked", func(t *testing.T) {
		// "d" led after round 2 and dropped; their last reported rank
		// collides with the eventual winner's.
		outcomes := []PlayerOutcome{
			{PlayerID: "a", Wins: 3, WinPoints: 9, Rank: 1},
			{PlayerID: "b", Wins: 2, Losses: 1, WinPoints: 6, Rank: 2},
			{PlayerID: "c", Wins: 1, Losses: 2, WinPoints: 3, Rank: 3},
			{PlayerID: "d", Wins: 2, Losses: 1, WinPoints: 6, Rank: 1},
		}
		results := Score("T", outcomes)
		require.Len(t, results, 4)

		sum := 0
		seen := map[int]bool{}
		for _, r := range results {
			sum += r.RankingPoints
			assert.False(t, seen[r.Rank], "duplicate rank %d", r.Rank)
			seen[r.Rank] = true
		}
		assert.Equal(t, 10, sum)
		assert.Equal(t, "a", results[0].PlayerID)
		assert.Equal(t, 1, results[0].Rank)
	})

	t.Run("result ids are deterministic", func(t *testing.T) {
		results := Score("OP12_20251113", []PlayerOutcome{{PlayerID: "0001", Rank: 1}})
		assert.Equal(t, "OP12_20251113_0001", results[0].ID)
	})
}

func TestWinnerName(t *testing.T) {
	results := Score("T", []PlayerOutcome{
		{PlayerID: "p1", PlayerName: "Alice", Wins: 2, WinPoints: 6},
		{PlayerID: "p2", PlayerName: "Bob"},
	})
	assert.Equal(t, "Alice", WinnerName(results))
	assert.Equal(t, "", WinnerName(nil))
}
