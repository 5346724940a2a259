package swiss

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leagueforge/league-engine/models"
)

func progressionOf(playerID string, points ...int) []models.PlayerRoundRecord {
	recs := make([]models.PlayerRoundRecord, 0, len(points))
	for i, p := range points {
		recs = append(recs, models.PlayerRoundRecord{
			PlayerID: playerID,
			Round:    i + 1,
			Points:   p,
			Rank:     1,
		})
	}
	return recs
}

func TestReconstructFromProgression(t *testing.T) {
	t.Run("all wins", func(t *testing.T) {
		out, err := ReconstructFromProgression(progressionOf("p1", 3, 6, 9, 12))
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, 4, out[0].Wins)
		assert.Equal(t, 0, out[0].Ties)
		assert.Equal(t, 0, out[0].Losses)
		assert.Equal(t, 12, out[0].WinPoints)
	})

	t.Run("mixed record", func(t *testing.T) {
		out, err := ReconstructFromProgression(progressionOf("p1", 3, 4, 4, 7))
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, 2, out[0].Wins)
		assert.Equal(t, 1, out[0].Ties)
		assert.Equal(t, 1, out[0].Losses)
		assert.Equal(t, 7, out[0].WinPoints)
	})

	t.Run("missing round counts as a zero-delta loss", func(t *testing.T) {
		recs := []models.PlayerRoundRecord{
			{PlayerID: "p1", Round: 1, Points: 3},
			{PlayerID: "p1", Round: 3, Points: 6},
		}
		out, err := ReconstructFromProgression(recs)
		require.NoError(t, err)
		assert.Equal(t, 2, out[0].Wins)
		assert.Equal(t, 1, out[0].Losses)
	})

	t.Run("dropped player only counts played rounds", func(t *testing.T) {
		recs := append(progressionOf("p1", 3, 6, 9, 12), progressionOf("p2", 0, 0)...)
		out, err := ReconstructFromProgression(recs)
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, "p1", out[0].PlayerID)
		assert.Equal(t, 2, out[1].Losses)
		assert.Equal(t, 0, out[1].Wins)
	})

	t.Run("keeps last reported rank", func(t *testing.T) {
		recs := []models.PlayerRoundRecord{
			{PlayerID: "p1", Round: 1, Points: 3, Rank: 4},
			{PlayerID: "p1", Round: 2, Points: 6, Rank: 2},
		}
		out, err := ReconstructFromProgression(recs)
		require.NoError(t, err)
		assert.Equal(t, 2, out[0].Rank)
	})

	t.Run("empty input rejected", func(t *testing.T) {
		_, err := ReconstructFromProgression(nil)
		assert.ErrorIs(t, err, ErrInsufficientRounds)
	})
}

func TestReconstructFromPairings(t *testing.T) {
	rounds := [][]models.Pairing{
		{
			{Round: 1, P1ID: "a", P2ID: "b", WinnerID: "a"},
			{Round: 1, P1ID: "c", P2ID: "d", WinnerID: "d"},
		},
		{
			{Round: 2, P1ID: "a", P2ID: "d", WinnerID: "a"},
			{Round: 2, P1ID: "b", P2ID: "c"}, // draw
		},
	}

	out, err := ReconstructFromPairings(rounds)
	require.NoError(t, err)
	require.Len(t, out, 4)

	byID := make(map[string]PlayerOutcome)
	for _, o := range out {
		byID[o.PlayerID] = o
	}

	assert.Equal(t, Record{Wins: 2}, Record{Wins: byID["a"].Wins, Losses: byID["a"].Losses, Ties: byID["a"].Ties})
	assert.Equal(t, 1, byID["b"].Losses)
	assert.Equal(t, 1, byID["b"].Ties)
	assert.Equal(t, 1, byID["c"].Ties)
	assert.Equal(t, 1, byID["d"].Wins)
	assert.Equal(t, 1, byID["d"].Losses)

	t.Run("tiebreaks come from the pairing graph", func(t *testing.T) {
		// a faced b and d: MWR(b) = 1/6 -> floored, MWR(d) = 3/6.
		assert.InDelta(t, (0.3333+0.5)/2, byID["a"].OMW, 1e-9)
		assert.Greater(t, byID["a"].OOMW, 0.0)
	})

	t.Run("bye is a win without an opponent", func(t *testing.T) {
		out, err := ReconstructFromPairings([][]models.Pairing{
			{{Round: 1, P1ID: "solo"}},
		})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, 1, out[0].Wins)
		assert.Equal(t, 0.0, out[0].OMW)
	})

	t.Run("no rounds rejected", func(t *testing.T) {
		_, err := ReconstructFromPairings(nil)
		assert.ErrorIs(t, err, ErrInsufficientRounds)
	})
}

func TestMergeFinal(t *testing.T) {
	outcomes := []PlayerOutcome{
		{PlayerID: "p1", PlayerName: "Alice", Wins: 3, Losses: 1, WinPoints: 9},
		{PlayerID: "p2", PlayerName: "Bob", Wins: 2, Losses: 2, WinPoints: 6},
	}
	final := []models.FinalStandingRow{
		{Rank: 1, PlayerID: "p1", PlayerName: "Alice", WinPoints: 9, OMW: 0.62, OOMW: 0.55},
		{Rank: 2, PlayerID: "p2", PlayerName: "Bob", WinPoints: 6, OMW: 0.48, OOMW: 0.5},
	}

	merged, warnings := MergeFinal(outcomes, final)
	require.Len(t, merged, 2)
	assert.Empty(t, warnings)
	assert.Equal(t, 1, merged[0].Rank)
	assert.Equal(t, 0.62, merged[0].OMW)
	assert.Equal(t, 3, merged[0].Wins) // W/T/L stay reconstructed

	t.Run("win point mismatch warns but proceeds", func(t *testing.T) {
		bad := []models.FinalStandingRow{
			{Rank: 1, PlayerID: "p1", PlayerName: "Alice", WinPoints: 12},
			{Rank: 2, PlayerID: "p2", PlayerName: "Bob", WinPoints: 6},
		}
		merged, warnings := MergeFinal(outcomes, bad)
		require.Len(t, warnings, 1)
		assert.Equal(t, "p1", warnings[0].PlayerID)
		assert.Equal(t, 12, merged[0].WinPoints) // authoritative value wins
	})

	t.Run("final-only player gets derived wins", func(t *testing.T) {
		extra := append(final, models.FinalStandingRow{
			Rank: 3, PlayerID: "p3", PlayerName: "Carol", WinPoints: 6,
		})
		merged, warnings := MergeFinal(outcomes, extra)
		require.Len(t, merged, 3)
		require.Len(t, warnings, 1)
		assert.Equal(t, 2, merged[2].Wins)
	})

	t.Run("round-only player warns", func(t *testing.T) {
		_, warnings := MergeFinal(outcomes, final[:1])
		require.Len(t, warnings, 1)
		assert.Equal(t, "p2", warnings[0].PlayerID)
	})

	t.Run("round-only warnings are ordered by player id", func(t *testing.T) {
		many := append(outcomes,
			PlayerOutcome{PlayerID: "p9", Wins: 1, WinPoints: 3},
			PlayerOutcome{PlayerID: "p4", Wins: 1, WinPoints: 3},
		)
		_, warnings := MergeFinal(many, final[:1])
		require.Len(t, warnings, 3)
		assert.Equal(t, "p2", warnings[0].PlayerID)
		assert.Equal(t, "p4", warnings[1].PlayerID)
		assert.Equal(t, "p9", warnings[2].PlayerID)
	})
}
