package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/leagueforge/league-engine/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound      = errors.New("tournament not found")
	ErrTournamentExists        = errors.New("tournament already imported")
	ErrTournamentInvalidSeason = errors.New("invalid season reference")
)

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error)
	ListBySeason(ctx context.Context, exec SQLExecutor, seasonID string) ([]models.Tournament, error)
	Delete(ctx context.Context, exec SQLExecutor, id string) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournaments
			(id, season_id, date, participant_count, round_count, winner_name, source_file_refs)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING imported_at`
	err := executor.QueryRowContext(ctx, query,
		t.ID, t.SeasonID, t.Date, t.ParticipantCount, t.RoundCount, t.WinnerName,
		pq.Array(t.SourceFileRefs),
	).Scan(&t.ImportedAt)
	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) scanTournament(rowScanner interface{ Scan(...interface{}) error }) (*models.Tournament, error) {
	var t models.Tournament
	err := rowScanner.Scan(
		&t.ID, &t.SeasonID, &t.Date, &t.ParticipantCount, &t.RoundCount,
		&t.WinnerName, pq.Array(&t.SourceFileRefs), &t.ImportedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, season_id, date, participant_count, round_count, winner_name, source_file_refs, imported_at
		FROM tournaments
		WHERE id = $1`
	row := executor.QueryRowContext(ctx, query, id)
	return r.scanTournament(row)
}

func (r *postgresTournamentRepository) ListBySeason(ctx context.Context, exec SQLExecutor, seasonID string) ([]models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, season_id, date, participant_count, round_count, winner_name, source_file_refs, imported_at
		FROM tournaments
		WHERE season_id = $1
		ORDER BY date ASC, id ASC`
	rows, err := executor.QueryContext(ctx, query, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		t, errScan := r.scanTournament(rows)
		if errScan != nil {
			return nil, errScan
		}
		tournaments = append(tournaments, *t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, exec SQLExecutor, id string) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			return ErrTournamentExists
		case "23503":
			return ErrTournamentInvalidSeason
		}
	}
	return err
}
