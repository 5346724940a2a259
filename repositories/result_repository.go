package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/leagueforge/league-engine/models"
	"github.com/lib/pq"
)

var (
	ErrResultNotFound = errors.New("participant result not found")
	ErrResultConflict = errors.New("participant result already exists")
)

type ResultRepository interface {
	BatchCreate(ctx context.Context, exec SQLExecutor, results []models.ParticipantResult) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.ParticipantResult, error)
	ListBySeason(ctx context.Context, exec SQLExecutor, seasonID string) ([]models.ParticipantResult, error)
	ListPlayerIDsByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]string, error)
	ListByPlayerAndGame(ctx context.Context, exec SQLExecutor, playerID, game string) ([]PlayerGameResult, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) error
}

type postgresResultRepository struct {
	db *sql.DB
}

func NewPostgresResultRepository(db *sql.DB) ResultRepository {
	return &postgresResultRepository{db: db}
}

func (r *postgresResultRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const resultColumns = `id, tournament_id, player_id, player_name, rank, wins, ties, losses,
		win_points, omw_percent, oomw_percent, victory_points, ranking_points, league_points`

func (r *postgresResultRepository) BatchCreate(ctx context.Context, exec SQLExecutor, results []models.ParticipantResult) error {
	executor := r.getExecutor(exec)
	if len(results) == 0 {
		return nil
	}
	query := `
		INSERT INTO participant_results (` + resultColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	for i := range results {
		res := &results[i]
		_, err := executor.ExecContext(ctx, query,
			res.ID, res.TournamentID, res.PlayerID, res.PlayerName, res.Rank,
			res.Wins, res.Ties, res.Losses, res.WinPoints, res.OMW, res.OOMW,
			res.VictoryPoints, res.RankingPoints, res.LeaguePoints,
		)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
				return fmt.Errorf("player %s: %w", res.PlayerID, ErrResultConflict)
			}
			return fmt.Errorf("insert result for player %s: %w", res.PlayerID, err)
		}
	}
	return nil
}

func (r *postgresResultRepository) scanResult(rowScanner interface{ Scan(...interface{}) error }) (*models.ParticipantResult, error) {
	var res models.ParticipantResult
	err := rowScanner.Scan(
		&res.ID, &res.TournamentID, &res.PlayerID, &res.PlayerName, &res.Rank,
		&res.Wins, &res.Ties, &res.Losses, &res.WinPoints, &res.OMW, &res.OOMW,
		&res.VictoryPoints, &res.RankingPoints, &res.LeaguePoints,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, err
	}
	return &res, nil
}

func (r *postgresResultRepository) listResults(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) ([]models.ParticipantResult, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]models.ParticipantResult, 0)
	for rows.Next() {
		res, errScan := r.scanResult(rows)
		if errScan != nil {
			return nil, errScan
		}
		results = append(results, *res)
	}
	return results, rows.Err()
}

func (r *postgresResultRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.ParticipantResult, error) {
	query := `
		SELECT ` + resultColumns + `
		FROM participant_results
		WHERE tournament_id = $1
		ORDER BY rank ASC`
	return r.listResults(ctx, r.getExecutor(exec), query, tournamentID)
}

// ListBySeason returns every result of the season, tournaments in date order.
// Feeds the seasonal recomputation.
func (r *postgresResultRepository) ListBySeason(ctx context.Context, exec SQLExecutor, seasonID string) ([]models.ParticipantResult, error) {
	query := `
		SELECT pr.id, pr.tournament_id, pr.player_id, pr.player_name, pr.rank, pr.wins, pr.ties, pr.losses,
		       pr.win_points, pr.omw_percent, pr.oomw_percent, pr.victory_points, pr.ranking_points, pr.league_points
		FROM participant_results pr
		JOIN tournaments t ON pr.tournament_id = t.id
		WHERE t.season_id = $1
		ORDER BY t.date ASC, pr.rank ASC`
	return r.listResults(ctx, r.getExecutor(exec), query, seasonID)
}

func (r *postgresResultRepository) ListPlayerIDsByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]string, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx,
		`SELECT player_id FROM participant_results WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// PlayerGameResult pairs a result with its tournament date, for rebuilding
// the lifetime read model.
type PlayerGameResult struct {
	models.ParticipantResult
	TournamentDate time.Time
}

func (r *postgresResultRepository) ListByPlayerAndGame(ctx context.Context, exec SQLExecutor, playerID, game string) ([]PlayerGameResult, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT pr.id, pr.tournament_id, pr.player_id, pr.player_name, pr.rank, pr.wins, pr.ties, pr.losses,
		       pr.win_points, pr.omw_percent, pr.oomw_percent, pr.victory_points, pr.ranking_points, pr.league_points,
		       t.date
		FROM participant_results pr
		JOIN tournaments t ON pr.tournament_id = t.id
		JOIN seasons s ON t.season_id = s.id
		WHERE pr.player_id = $1 AND s.game = $2
		ORDER BY t.date ASC`
	rows, err := executor.QueryContext(ctx, query, playerID, game)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]PlayerGameResult, 0)
	for rows.Next() {
		var res PlayerGameResult
		err := rows.Scan(
			&res.ID, &res.TournamentID, &res.PlayerID, &res.PlayerName, &res.Rank,
			&res.Wins, &res.Ties, &res.Losses, &res.WinPoints, &res.OMW, &res.OOMW,
			&res.VictoryPoints, &res.RankingPoints, &res.LeaguePoints,
			&res.TournamentDate,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

func (r *postgresResultRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`DELETE FROM participant_results WHERE tournament_id = $1`, tournamentID)
	return err
}
