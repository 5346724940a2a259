package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/leagueforge/league-engine/models"
)

var ErrStandingNotFound = errors.New("seasonal standing not found")

type StandingRepository interface {
	ReplaceForSeason(ctx context.Context, exec SQLExecutor, seasonID string, standings []models.SeasonalStanding) error
	ListBySeason(ctx context.Context, exec SQLExecutor, seasonID string) ([]models.SeasonalStanding, error)
	GetByPlayer(ctx context.Context, exec SQLExecutor, seasonID, playerID string) (*models.SeasonalStanding, error)
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// ReplaceForSeason swaps the season's standings atomically: delete all rows,
// insert the recomputed set. Callers run it inside a transaction so readers
// never observe the empty intermediate state.
func (r *postgresStandingRepository) ReplaceForSeason(ctx context.Context, exec SQLExecutor, seasonID string, standings []models.SeasonalStanding) error {
	executor := r.getExecutor(exec)

	if _, err := executor.ExecContext(ctx,
		`DELETE FROM seasonal_standings WHERE season_id = $1`, seasonID); err != nil {
		return fmt.Errorf("clear standings for season %s: %w", seasonID, err)
	}

	query := `
		INSERT INTO seasonal_standings
			(season_id, rank_in_season, player_id, player_name, total_points,
			 tournaments_played, tournaments_counted, tournament_wins, match_wins,
			 best_rank, top8_count, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	now := time.Now()
	for i := range standings {
		s := &standings[i]
		if s.UpdatedAt.IsZero() {
			s.UpdatedAt = now
		}
		_, err := executor.ExecContext(ctx, query,
			seasonID, s.RankInSeason, s.PlayerID, s.PlayerName, s.TotalPoints,
			s.TournamentsPlayed, s.TournamentsCounted, s.TournamentWins, s.MatchWins,
			s.BestRank, s.Top8Count, s.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert standing for player %s: %w", s.PlayerID, err)
		}
	}
	return nil
}

func (r *postgresStandingRepository) scanStanding(rowScanner interface{ Scan(...interface{}) error }) (*models.SeasonalStanding, error) {
	var s models.SeasonalStanding
	err := rowScanner.Scan(
		&s.ID, &s.SeasonID, &s.RankInSeason, &s.PlayerID, &s.PlayerName,
		&s.TotalPoints, &s.TournamentsPlayed, &s.TournamentsCounted,
		&s.TournamentWins, &s.MatchWins, &s.BestRank, &s.Top8Count, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStandingNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresStandingRepository) ListBySeason(ctx context.Context, exec SQLExecutor, seasonID string) ([]models.SeasonalStanding, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, season_id, rank_in_season, player_id, player_name, total_points,
		       tournaments_played, tournaments_counted, tournament_wins, match_wins,
		       best_rank, top8_count, updated_at
		FROM seasonal_standings
		WHERE season_id = $1
		ORDER BY rank_in_season ASC`
	rows, err := executor.QueryContext(ctx, query, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]models.SeasonalStanding, 0)
	for rows.Next() {
		s, errScan := r.scanStanding(rows)
		if errScan != nil {
			return nil, errScan
		}
		standings = append(standings, *s)
	}
	return standings, rows.Err()
}

func (r *postgresStandingRepository) GetByPlayer(ctx context.Context, exec SQLExecutor, seasonID, playerID string) (*models.SeasonalStanding, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, season_id, rank_in_season, player_id, player_name, total_points,
		       tournaments_played, tournaments_counted, tournament_wins, match_wins,
		       best_rank, top8_count, updated_at
		FROM seasonal_standings
		WHERE season_id = $1 AND player_id = $2`
	row := executor.QueryRowContext(ctx, query, seasonID, playerID)
	return r.scanStanding(row)
}
