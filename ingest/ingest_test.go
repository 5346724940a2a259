package ingest

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePlayerID(t *testing.T) {
	assert.Equal(t, "0000012345", NormalizePlayerID("12345"))
	assert.Equal(t, "0000012345", NormalizePlayerID(" 12345 "))
	assert.Equal(t, "9876543210", NormalizePlayerID("9876543210"))
	assert.Equal(t, "98765432100", NormalizePlayerID("98765432100"))
}

func TestParseRoundFile(t *testing.T) {
	t.Run("reads rows and pads ids", func(t *testing.T) {
		data := "Rank,Match Point,Player Name - 1,Membership Number - 1\n" +
			"1,3,Alice,12345\n" +
			"2,1,Bob,67890\n"
		recs, err := ParseRoundFile(strings.NewReader(data), 1)
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, "0000012345", recs[0].PlayerID)
		assert.Equal(t, "Alice", recs[0].PlayerName)
		assert.Equal(t, 1, recs[0].Round)
		assert.Equal(t, 3, recs[0].Points)
		assert.Equal(t, 1, recs[0].Rank)
	})

	t.Run("tolerates a BOM on the first header cell", func(t *testing.T) {
		data := "\uFEFFRank,Match Point,Player Name - 1,Membership Number - 1\n" +
			"1,3,Alice,12345\n"
		recs, err := ParseRoundFile(strings.NewReader(data), 2)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, 2, recs[0].Round)
	})

	t.Run("filters dropped players when Status is present", func(t *testing.T) {
		data := "Rank,Match Point,Status,Player Name - 1,Membership Number - 1\n" +
			"1,6,Active,Alice,12345\n" +
			"2,3,Dropped,Bob,67890\n"
		recs, err := ParseRoundFile(strings.NewReader(data), 3)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "0000012345", recs[0].PlayerID)
	})

	t.Run("rejects a file missing the id column", func(t *testing.T) {
		data := "Rank,Match Point,Player Name - 1\n1,3,Alice\n"
		_, err := ParseRoundFile(strings.NewReader(data), 1)
		require.ErrorIs(t, err, ErrMissingColumn)
	})

	t.Run("rejects a header-only file", func(t *testing.T) {
		data := "Rank,Match Point,Player Name - 1,Membership Number - 1\n"
		_, err := ParseRoundFile(strings.NewReader(data), 1)
		require.ErrorIs(t, err, ErrEmptyFile)
	})
}

func TestParseRoundFiles(t *testing.T) {
	r1 := "Rank,Match Point,Player Name - 1,Membership Number - 1\n1,3,Alice,1\n2,0,Bob,2\n"
	r2 := "Rank,Match Point,Player Name - 1,Membership Number - 1\n1,6,Alice,1\n2,0,Bob,2\n"
	recs, err := ParseRoundFiles([]io.Reader{strings.NewReader(r1), strings.NewReader(r2)})
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, 1, recs[0].Round)
	assert.Equal(t, 2, recs[2].Round)
	assert.Equal(t, 6, recs[2].Points)
}

func TestParseFinalStandings(t *testing.T) {
	t.Run("reads percent tiebreakers as fractions", func(t *testing.T) {
		data := "Ranking,Membership Number,User Name,Win Points,OMW %,OOMW %\n" +
			"1,12345,Alice,12,68.8%,54.2%\n" +
			"2,67890,Bob,9,52,0.48\n"
		rows, err := ParseFinalStandings(strings.NewReader(data))
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "0000012345", rows[0].PlayerID)
		assert.InDelta(t, 0.688, rows[0].OMW, 1e-9)
		assert.InDelta(t, 0.542, rows[0].OOMW, 1e-9)
		assert.InDelta(t, 0.52, rows[1].OMW, 1e-9)
		assert.InDelta(t, 0.48, rows[1].OOMW, 1e-9)
	})

	t.Run("tolerates a missing OOMW column", func(t *testing.T) {
		data := "Ranking,Membership Number,User Name,Win Points,OMW %\n" +
			"1,12345,Alice,12,68.8%\n"
		rows, err := ParseFinalStandings(strings.NewReader(data))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Zero(t, rows[0].OOMW)
	})

	t.Run("rejects a file missing Win Points", func(t *testing.T) {
		data := "Ranking,Membership Number,User Name,OMW %\n1,12345,Alice,68.8%\n"
		_, err := ParseFinalStandings(strings.NewReader(data))
		require.ErrorIs(t, err, ErrMissingColumn)
	})
}

func TestParsePairings(t *testing.T) {
	t.Run("groups pairings by round", func(t *testing.T) {
		data := "Round,ID Player 1,Nick Player 1,ID Player 2,Nick Player 2,Winner\n" +
			"1,1,Alice,2,Bob,1\n" +
			"1,3,Carol,4,Dave,0\n" +
			"2,1,Alice,3,Carol,2\n"
		rounds, err := ParsePairings(strings.NewReader(data))
		require.NoError(t, err)
		require.Len(t, rounds, 2)
		require.Len(t, rounds[0], 2)
		require.Len(t, rounds[1], 1)
		assert.Equal(t, rounds[0][0].P1ID, rounds[0][0].WinnerID)
		assert.Empty(t, rounds[0][1].WinnerID)
		assert.Equal(t, rounds[1][0].P2ID, rounds[1][0].WinnerID)
	})

	t.Run("treats a missing second player as a bye", func(t *testing.T) {
		data := "Round,ID Player 1,Nick Player 1,ID Player 2,Nick Player 2,Winner\n" +
			"1,5,Eve,,,\n"
		rounds, err := ParsePairings(strings.NewReader(data))
		require.NoError(t, err)
		require.Len(t, rounds[0], 1)
		assert.True(t, rounds[0][0].IsBye())
	})

	t.Run("rejects a file with no pairings", func(t *testing.T) {
		data := "Round,ID Player 1,Nick Player 1,ID Player 2,Nick Player 2,Winner\n"
		_, err := ParsePairings(strings.NewReader(data))
		require.ErrorIs(t, err, ErrEmptyFile)
	})
}

func TestDateFromFilename(t *testing.T) {
	cases := []struct {
		name string
		want string
		ok   bool
	}{
		{"OP01_20250614_round1.csv", "2025-06-14", true},
		{"standings_2025-06-14.csv", "2025-06-14", true},
		{"export_2025_06_14_final.csv", "2025-06-14", true},
		{"standings_final.csv", "", false},
		{"noise_9999_13_45.csv", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := DateFromFilename(tc.name)
			require.Equal(t, tc.ok, ok)
			if ok {
				assert.Equal(t, tc.want, got.Format("2006-01-02"))
				assert.Equal(t, time.UTC, got.Location())
			}
		})
	}
}

func TestRoundFromFilename(t *testing.T) {
	assert.Equal(t, 3, RoundFromFilename("OP01_20250614_round3.csv"))
	assert.Equal(t, 2, RoundFromFilename("export_R02.csv"))
	assert.Equal(t, 5, RoundFromFilename("turno 5.csv"))
	assert.Equal(t, 0, RoundFromFilename("final.csv"))
}
