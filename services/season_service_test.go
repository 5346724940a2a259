package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSeasonID(t *testing.T) {
	cases := []struct {
		id      string
		game    string
		wantErr bool
	}{
		{"OP12", GameOnePiece, false},
		{"OP7", GameOnePiece, false},
		{" OP12 ", GameOnePiece, false},
		{"OP", GameOnePiece, true},
		{"RFB01", GameRiftbound, false},
		{"RFB1", GameRiftbound, false},
		{"RB01", GameRiftbound, true},
		{"PKM-FS25", GamePokemon, false},
		{"PKM-SVIV24", GamePokemon, false},
		{"PKM-A25", GamePokemon, true},
		{"OP12", "magic", true},
	}
	for _, tc := range cases {
		t.Run(tc.game+"/"+tc.id, func(t *testing.T) {
			got, err := ValidateSeasonID(tc.id, tc.game)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrSeasonIDInvalid)
				return
			}
			require.NoError(t, err)
			assert.NotContains(t, got, " ")
		})
	}

	t.Run("lower case ids are normalized", func(t *testing.T) {
		got, err := ValidateSeasonID("pkm-fs25", GamePokemon)
		require.NoError(t, err)
		assert.Equal(t, "PKM-FS25", got)

		got, err = ValidateSeasonID(" op12 ", GameOnePiece)
		require.NoError(t, err)
		assert.Equal(t, "OP12", got)
	})
}

func TestGenerateSeasonName(t *testing.T) {
	assert.Equal(t, "One Piece - Season 12", GenerateSeasonName("OP12", GameOnePiece))
	assert.Equal(t, "Riftbound - Season 1", GenerateSeasonName("RFB01", GameRiftbound))
	assert.Equal(t, "Pokémon - FS25", GenerateSeasonName("PKM-FS25", GamePokemon))
	assert.Equal(t, "X99", GenerateSeasonName("X99", "unknown"))
}
