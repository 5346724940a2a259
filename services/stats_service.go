package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leagueforge/league-engine/models"
	"github.com/leagueforge/league-engine/repositories"
	"golang.org/x/sync/errgroup"
)

// PlayerStatsUpdater rebuilds the lifetime read model for one player after
// the write side changed.
type PlayerStatsUpdater interface {
	RefreshPlayer(ctx context.Context, exec repositories.SQLExecutor, playerID, game string) error
}

// PlayerDashboard bundles everything the profile view shows.
type PlayerDashboard struct {
	Stats   *models.PlayerStats             `json:"stats"`
	History []repositories.PlayerGameResult `json:"history"`
}

type StatsService interface {
	PlayerStatsUpdater
	GetPlayerStats(ctx context.Context, playerID, game string) (*models.PlayerStats, error)
	Leaderboard(ctx context.Context, game string, limit int) ([]models.PlayerStats, error)
	GetPlayerDashboard(ctx context.Context, playerID, game string) (*PlayerDashboard, error)
}

type statsService struct {
	resultRepo repositories.ResultRepository
	statsRepo  repositories.PlayerStatsRepository
	logger     *slog.Logger
}

func NewStatsService(
	resultRepo repositories.ResultRepository,
	statsRepo repositories.PlayerStatsRepository,
	logger *slog.Logger,
) StatsService {
	return &statsService{
		resultRepo: resultRepo,
		statsRepo:  statsRepo,
		logger:     logger.With(slog.String("service", "stats")),
	}
}

// RefreshPlayer recomputes the row from every stored result of the player in
// the given game. Full rebuild, same transaction as the import that
// triggered it.
func (s *statsService) RefreshPlayer(ctx context.Context, exec repositories.SQLExecutor, playerID, game string) error {
	rows, err := s.resultRepo.ListByPlayerAndGame(ctx, exec, playerID, game)
	if err != nil {
		return fmt.Errorf("load results for player %s: %w", playerID, err)
	}
	if len(rows) == 0 {
		// last result of the player was deleted, drop the read model too
		if err := s.statsRepo.DeleteByPlayerAndGame(ctx, exec, playerID, game); err != nil {
			return fmt.Errorf("drop stats for player %s: %w", playerID, err)
		}
		return nil
	}

	stats := buildPlayerStats(playerID, game, rows)
	if err := s.statsRepo.Upsert(ctx, exec, stats); err != nil {
		return fmt.Errorf("upsert stats for player %s: %w", playerID, err)
	}
	return nil
}

func buildPlayerStats(playerID, game string, rows []repositories.PlayerGameResult) *models.PlayerStats {
	stats := &models.PlayerStats{
		PlayerID:  playerID,
		Game:      game,
		BestRank:  rows[0].Rank,
		FirstSeen: rows[0].TournamentDate,
		LastSeen:  rows[0].TournamentDate,
	}
	for _, row := range rows {
		stats.PlayerName = row.PlayerName
		stats.TotalTournaments++
		stats.MatchWins += row.Wins
		stats.MatchTies += row.Ties
		stats.MatchLosses += row.Losses
		stats.TotalPoints += row.LeaguePoints
		if row.Rank == 1 {
			stats.TournamentWins++
		}
		if row.Rank <= top8Threshold {
			stats.Top8Count++
		}
		if row.Rank < stats.BestRank {
			stats.BestRank = row.Rank
		}
		if row.TournamentDate.Before(stats.FirstSeen) {
			stats.FirstSeen = row.TournamentDate
		}
		if row.TournamentDate.After(stats.LastSeen) {
			stats.LastSeen = row.TournamentDate
		}
	}
	return stats
}

func (s *statsService) GetPlayerStats(ctx context.Context, playerID, game string) (*models.PlayerStats, error) {
	stats, err := s.statsRepo.GetByPlayerAndGame(ctx, nil, playerID, game)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerStatsNotFound) {
			return nil, ErrPlayerStatsMissing
		}
		return nil, err
	}
	return stats, nil
}

func (s *statsService) Leaderboard(ctx context.Context, game string, limit int) ([]models.PlayerStats, error) {
	filter := repositories.ListPlayerStatsFilter{Limit: limit}
	if game != "" {
		filter.Game = &game
	}
	stats, err := s.statsRepo.List(ctx, nil, filter)
	if err != nil {
		return nil, fmt.Errorf("list player stats: %w", err)
	}
	return stats, nil
}

// GetPlayerDashboard loads the read model and the full result history
// concurrently.
func (s *statsService) GetPlayerDashboard(ctx context.Context, playerID, game string) (*PlayerDashboard, error) {
	dashboard := &PlayerDashboard{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := s.GetPlayerStats(gctx, playerID, game)
		if err != nil {
			return err
		}
		dashboard.Stats = stats
		return nil
	})
	g.Go(func() error {
		history, err := s.resultRepo.ListByPlayerAndGame(gctx, nil, playerID, game)
		if err != nil {
			return fmt.Errorf("load history for player %s: %w", playerID, err)
		}
		dashboard.History = history
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dashboard, nil
}
