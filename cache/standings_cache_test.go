package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leagueforge/league-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	calls int
	fail  bool
	data  []models.SeasonalStanding
}

func (f *fakeSource) ListBySeason(_ context.Context, seasonID string) ([]models.SeasonalStanding, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("db down")
	}
	return f.data, nil
}

func standingsOf(players ...string) []models.SeasonalStanding {
	out := make([]models.SeasonalStanding, 0, len(players))
	for i, p := range players {
		out = append(out, models.SeasonalStanding{SeasonID: "OP12", PlayerID: p, RankInSeason: i + 1})
	}
	return out
}

func TestStandingsCache(t *testing.T) {
	ctx := context.Background()

	t.Run("miss reads through once", func(t *testing.T) {
		src := &fakeSource{data: standingsOf("p1", "p2")}
		c := NewStandingsCache(src, time.Minute)

		got, stale, err := c.Get(ctx, "OP12")
		require.NoError(t, err)
		assert.False(t, stale)
		assert.Len(t, got, 2)

		_, stale, err = c.Get(ctx, "OP12")
		require.NoError(t, err)
		assert.False(t, stale)
		assert.Equal(t, 1, src.calls, "second read served from cache")
	})

	t.Run("expired entry is refreshed", func(t *testing.T) {
		src := &fakeSource{data: standingsOf("p1")}
		c := NewStandingsCache(src, -time.Second) // everything immediately expired

		_, _, err := c.Get(ctx, "OP12")
		require.NoError(t, err)
		_, stale, err := c.Get(ctx, "OP12")
		require.NoError(t, err)
		assert.False(t, stale)
		assert.Equal(t, 2, src.calls)
	})

	t.Run("failed refresh serves expired data as stale", func(t *testing.T) {
		src := &fakeSource{data: standingsOf("p1")}
		c := NewStandingsCache(src, -time.Second)

		_, _, err := c.Get(ctx, "OP12")
		require.NoError(t, err)

		src.fail = true
		got, stale, err := c.Get(ctx, "OP12")
		require.NoError(t, err)
		assert.True(t, stale)
		assert.Len(t, got, 1)
	})

	t.Run("miss with failing source errors", func(t *testing.T) {
		src := &fakeSource{fail: true}
		c := NewStandingsCache(src, time.Minute)
		_, _, err := c.Get(ctx, "OP12")
		require.Error(t, err)
	})

	t.Run("put overwrites without a source read", func(t *testing.T) {
		src := &fakeSource{data: standingsOf("p1")}
		c := NewStandingsCache(src, time.Minute)
		c.Put("OP12", standingsOf("p1", "p2", "p3"))

		got, stale, err := c.Get(ctx, "OP12")
		require.NoError(t, err)
		assert.False(t, stale)
		assert.Len(t, got, 3)
		assert.Zero(t, src.calls)
	})

	t.Run("invalidate forces a read-through", func(t *testing.T) {
		src := &fakeSource{data: standingsOf("p1")}
		c := NewStandingsCache(src, time.Minute)
		c.Put("OP12", standingsOf("stalePlayer"))
		c.Invalidate("OP12")

		got, _, err := c.Get(ctx, "OP12")
		require.NoError(t, err)
		assert.Equal(t, "p1", got[0].PlayerID)
		assert.Equal(t, 1, src.calls)
	})
}
