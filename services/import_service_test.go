package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const roundHeader = "Rank,Match Point,Player Name - 1,Membership Number - 1\n"

func TestResolveDate(t *testing.T) {
	t.Run("explicit date wins", func(t *testing.T) {
		date, err := resolveDate(ImportInput{
			Date:       time.Date(2025, 6, 14, 18, 30, 0, 0, time.UTC),
			RoundFiles: []SourceFile{{Name: "OP12_20990101_round1.csv"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "2025-06-14", date.Format("2006-01-02"))
	})

	t.Run("falls back to file names", func(t *testing.T) {
		date, err := resolveDate(ImportInput{
			RoundFiles: []SourceFile{
				{Name: "round1.csv"},
				{Name: "OP12_2025-06-14_round2.csv"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "2025-06-14", date.Format("2006-01-02"))
	})

	t.Run("errors when nothing carries a date", func(t *testing.T) {
		_, err := resolveDate(ImportInput{
			RoundFiles: []SourceFile{{Name: "round1.csv"}},
		})
		require.ErrorIs(t, err, ErrImportDateUnknown)
	})
}

func TestReconstructFromInput(t *testing.T) {
	svc := &importService{}

	t.Run("round files sorted by file name round number", func(t *testing.T) {
		// Supplied out of order; round 2 carries the higher totals.
		input := ImportInput{
			RoundFiles: []SourceFile{
				{Name: "t_round2.csv", Data: []byte(roundHeader + "1,6,Alice,1\n2,0,Bob,2\n")},
				{Name: "t_round1.csv", Data: []byte(roundHeader + "1,3,Alice,1\n2,0,Bob,2\n")},
			},
		}
		outcomes, roundCount, warnings, err := svc.reconstruct(input)
		require.NoError(t, err)
		assert.Equal(t, 2, roundCount)
		assert.Empty(t, warnings)
		require.Len(t, outcomes, 2)
		for _, o := range outcomes {
			if o.PlayerID == "0000000001" {
				assert.Equal(t, 2, o.Wins)
			}
		}
	})

	t.Run("pairings preferred over round files", func(t *testing.T) {
		pairings := "Round,ID Player 1,Nick Player 1,ID Player 2,Nick Player 2,Winner\n" +
			"1,1,Alice,2,Bob,1\n"
		input := ImportInput{
			PairingsFile: &SourceFile{Name: "pairings.csv", Data: []byte(pairings)},
			RoundFiles: []SourceFile{
				{Name: "t_round1.csv", Data: []byte(roundHeader + "1,3,Bob,2\n")},
			},
		}
		outcomes, roundCount, _, err := svc.reconstruct(input)
		require.NoError(t, err)
		assert.Equal(t, 1, roundCount)
		require.Len(t, outcomes, 2)
	})

	t.Run("final standings merge surfaces integrity warnings", func(t *testing.T) {
		final := "Ranking,Membership Number,User Name,Win Points,OMW %,OOMW %\n" +
			"1,1,Alice,6,55%,50%\n" +
			"2,2,Bob,3,45%,50%\n" // reconstruction says Bob has 0 points
		input := ImportInput{
			RoundFiles: []SourceFile{
				{Name: "t_round1.csv", Data: []byte(roundHeader + "1,3,Alice,1\n2,0,Bob,2\n")},
				{Name: "t_round2.csv", Data: []byte(roundHeader + "1,6,Alice,1\n2,0,Bob,2\n")},
			},
			FinalFile: &SourceFile{Name: "final.csv", Data: []byte(final)},
		}
		outcomes, _, warnings, err := svc.reconstruct(input)
		require.NoError(t, err)
		require.Len(t, outcomes, 2)
		assert.NotEmpty(t, warnings)
		// authoritative win points stick
		assert.Equal(t, 3, outcomes[1].WinPoints)
	})

	t.Run("no input data", func(t *testing.T) {
		_, _, _, err := svc.reconstruct(ImportInput{})
		require.ErrorIs(t, err, ErrImportNoRoundData)
	})

	t.Run("malformed round file aborts before any write", func(t *testing.T) {
		input := ImportInput{
			RoundFiles: []SourceFile{{Name: "t_round1.csv", Data: []byte("Rank,Match Point\n1,3\n")}},
		}
		_, _, _, err := svc.reconstruct(input)
		require.ErrorIs(t, err, ErrValidationFailed)
	})
}

func TestSourceKeys(t *testing.T) {
	input := ImportInput{
		RoundFiles:   []SourceFile{{Name: "r1.csv"}, {Name: "r2.csv"}},
		PairingsFile: &SourceFile{Name: "pairings.csv"},
		FinalFile:    &SourceFile{Name: "final.csv"},
	}
	keys := sourceKeys("OP12_20250614", input)
	assert.Equal(t, []string{
		"sources/OP12_20250614/r1.csv",
		"sources/OP12_20250614/r2.csv",
		"sources/OP12_20250614/pairings.csv",
		"sources/OP12_20250614/final.csv",
	}, keys)
}
