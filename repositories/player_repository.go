package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/leagueforge/league-engine/models"
)

var ErrPlayerStatsNotFound = errors.New("player stats not found")

type ListPlayerStatsFilter struct {
	Game   *string
	Limit  int
	Offset int
}

type PlayerStatsRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, stats *models.PlayerStats) error
	GetByPlayerAndGame(ctx context.Context, exec SQLExecutor, playerID, game string) (*models.PlayerStats, error)
	List(ctx context.Context, exec SQLExecutor, filter ListPlayerStatsFilter) ([]models.PlayerStats, error)
	DeleteByPlayerAndGame(ctx context.Context, exec SQLExecutor, playerID, game string) error
}

type postgresPlayerStatsRepository struct {
	db *sql.DB
}

func NewPostgresPlayerStatsRepository(db *sql.DB) PlayerStatsRepository {
	return &postgresPlayerStatsRepository{db: db}
}

func (r *postgresPlayerStatsRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// Upsert writes the full recomputed row. The read model is always rebuilt
// from results, so every column is replaced on conflict.
func (r *postgresPlayerStatsRepository) Upsert(ctx context.Context, exec SQLExecutor, st *models.PlayerStats) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO player_stats
			(player_id, player_name, game, total_tournaments, tournament_wins,
			 match_wins, match_ties, match_losses, total_points, top8_count,
			 best_rank, first_seen, last_seen, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		ON CONFLICT (player_id, game) DO UPDATE SET
			player_name       = EXCLUDED.player_name,
			total_tournaments = EXCLUDED.total_tournaments,
			tournament_wins   = EXCLUDED.tournament_wins,
			match_wins        = EXCLUDED.match_wins,
			match_ties        = EXCLUDED.match_ties,
			match_losses      = EXCLUDED.match_losses,
			total_points      = EXCLUDED.total_points,
			top8_count        = EXCLUDED.top8_count,
			best_rank         = EXCLUDED.best_rank,
			first_seen        = LEAST(player_stats.first_seen, EXCLUDED.first_seen),
			last_seen         = EXCLUDED.last_seen,
			updated_at        = NOW()
		RETURNING id, updated_at`
	return executor.QueryRowContext(ctx, query,
		st.PlayerID, st.PlayerName, st.Game, st.TotalTournaments, st.TournamentWins,
		st.MatchWins, st.MatchTies, st.MatchLosses, st.TotalPoints, st.Top8Count,
		st.BestRank, st.FirstSeen, st.LastSeen,
	).Scan(&st.ID, &st.UpdatedAt)
}

func (r *postgresPlayerStatsRepository) scanStats(rowScanner interface{ Scan(...interface{}) error }) (*models.PlayerStats, error) {
	var st models.PlayerStats
	err := rowScanner.Scan(
		&st.ID, &st.PlayerID, &st.PlayerName, &st.Game, &st.TotalTournaments,
		&st.TournamentWins, &st.MatchWins, &st.MatchTies, &st.MatchLosses,
		&st.TotalPoints, &st.Top8Count, &st.BestRank, &st.FirstSeen, &st.LastSeen, &st.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerStatsNotFound
		}
		return nil, err
	}
	return &st, nil
}

const playerStatsColumns = `id, player_id, player_name, game, total_tournaments, tournament_wins,
		match_wins, match_ties, match_losses, total_points, top8_count, best_rank,
		first_seen, last_seen, updated_at`

func (r *postgresPlayerStatsRepository) GetByPlayerAndGame(ctx context.Context, exec SQLExecutor, playerID, game string) (*models.PlayerStats, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT ` + playerStatsColumns + `
		FROM player_stats
		WHERE player_id = $1 AND game = $2`
	row := executor.QueryRowContext(ctx, query, playerID, game)
	return r.scanStats(row)
}

func (r *postgresPlayerStatsRepository) List(ctx context.Context, exec SQLExecutor, filter ListPlayerStatsFilter) ([]models.PlayerStats, error) {
	executor := r.getExecutor(exec)

	queryBuilder := strings.Builder{}
	queryBuilder.WriteString(`SELECT ` + playerStatsColumns + ` FROM player_stats`)

	args := []interface{}{}
	argID := 1
	if filter.Game != nil {
		queryBuilder.WriteString(" WHERE game = $" + strconv.Itoa(argID))
		args = append(args, *filter.Game)
		argID++
	}
	queryBuilder.WriteString(" ORDER BY total_points DESC, player_id ASC")
	if filter.Limit > 0 {
		queryBuilder.WriteString(" LIMIT $" + strconv.Itoa(argID))
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		queryBuilder.WriteString(" OFFSET $" + strconv.Itoa(argID))
		args = append(args, filter.Offset)
	}

	rows, err := executor.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]models.PlayerStats, 0)
	for rows.Next() {
		st, errScan := r.scanStats(rows)
		if errScan != nil {
			return nil, errScan
		}
		stats = append(stats, *st)
	}
	return stats, rows.Err()
}

// DeleteByPlayerAndGame removes the row when the player has no stored
// results left. Not an error if the row never existed.
func (r *postgresPlayerStatsRepository) DeleteByPlayerAndGame(ctx context.Context, exec SQLExecutor, playerID, game string) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM player_stats WHERE player_id = $1 AND game = $2`
	_, err := executor.ExecContext(ctx, query, playerID, game)
	return err
}
