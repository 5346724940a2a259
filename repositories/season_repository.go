package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/leagueforge/league-engine/models"
	"github.com/lib/pq"
)

var (
	ErrSeasonNotFound = errors.New("season not found")
	ErrSeasonConflict = errors.New("season already exists")
)

type ListSeasonsFilter struct {
	Game   *string
	Status *models.SeasonStatus
	Limit  int
	Offset int
}

type SeasonRepository interface {
	Create(ctx context.Context, exec SQLExecutor, season *models.Season) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Season, error)
	List(ctx context.Context, exec SQLExecutor, filter ListSeasonsFilter) ([]models.Season, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.SeasonStatus) error
	IncrementTournamentsCount(ctx context.Context, exec SQLExecutor, id string) (int, error)
	DecrementTournamentsCount(ctx context.Context, exec SQLExecutor, id string) (int, error)
}

type postgresSeasonRepository struct {
	db *sql.DB
}

func NewPostgresSeasonRepository(db *sql.DB) SeasonRepository {
	return &postgresSeasonRepository{db: db}
}

func (r *postgresSeasonRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresSeasonRepository) Create(ctx context.Context, exec SQLExecutor, s *models.Season) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO seasons (id, game, name, status, start_date, tournaments_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`
	err := executor.QueryRowContext(ctx, query,
		s.ID, s.Game, s.Name, s.Status, s.StartDate, s.TournamentsCount,
	).Scan(&s.CreatedAt)
	return r.handleSeasonError(err)
}

func (r *postgresSeasonRepository) scanSeason(rowScanner interface{ Scan(...interface{}) error }) (*models.Season, error) {
	var s models.Season
	err := rowScanner.Scan(
		&s.ID, &s.Game, &s.Name, &s.Status, &s.StartDate, &s.TournamentsCount, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeasonNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresSeasonRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Season, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, game, name, status, start_date, tournaments_count, created_at
		FROM seasons
		WHERE id = $1`
	row := executor.QueryRowContext(ctx, query, id)
	return r.scanSeason(row)
}

func (r *postgresSeasonRepository) List(ctx context.Context, exec SQLExecutor, filter ListSeasonsFilter) ([]models.Season, error) {
	executor := r.getExecutor(exec)

	queryBuilder := strings.Builder{}
	queryBuilder.WriteString(`
		SELECT id, game, name, status, start_date, tournaments_count, created_at
		FROM seasons`)

	args := []interface{}{}
	conditions := []string{}
	argID := 1

	if filter.Game != nil {
		conditions = append(conditions, "game = $"+strconv.Itoa(argID))
		args = append(args, *filter.Game)
		argID++
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = $"+strconv.Itoa(argID))
		args = append(args, *filter.Status)
		argID++
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY start_date DESC, id DESC")
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

	seasons := make([]models.Season, 0)
	for rows.Next() {
		s, errScan := r.scanSeason(rows)
		if errScan != nil {
			return nil, errScan
		}
		seasons = append(seasons, *s)
	}
	return seasons, rows.Err()
}

func (r *postgresSeasonRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.SeasonStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE seasons SET status = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSeasonNotFound)
}

// IncrementTournamentsCount bumps the per-season counter and returns the new
// value. Runs inside the import transaction so concurrent imports cannot
// produce the same ordinal.
func (r *postgresSeasonRepository) IncrementTournamentsCount(ctx context.Context, exec SQLExecutor, id string) (int, error) {
	executor := r.getExecutor(exec)
	query := `
		UPDATE seasons SET tournaments_count = tournaments_count + 1
		WHERE id = $1
		RETURNING tournaments_count`
	var count int
	err := executor.QueryRowContext(ctx, query, id).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrSeasonNotFound
		}
		return 0, err
	}
	return count, nil
}

// DecrementTournamentsCount is the inverse used when a tournament is removed.
// Never drops below zero.
func (r *postgresSeasonRepository) DecrementTournamentsCount(ctx context.Context, exec SQLExecutor, id string) (int, error) {
	executor := r.getExecutor(exec)
	query := `
		UPDATE seasons SET tournaments_count = GREATEST(tournaments_count - 1, 0)
		WHERE id = $1
		RETURNING tournaments_count`
	var count int
	err := executor.QueryRowContext(ctx, query, id).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrSeasonNotFound
		}
		return 0, err
	}
	return count, nil
}

func (r *postgresSeasonRepository) handleSeasonError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23505" {
			return ErrSeasonConflict
		}
	}
	return err
}
