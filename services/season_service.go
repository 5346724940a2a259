package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/leagueforge/league-engine/models"
	"github.com/leagueforge/league-engine/repositories"
)

// Supported games and their season identifier formats.
const (
	GameOnePiece  = "onepiece"
	GameRiftbound = "riftbound"
	GamePokemon   = "pokemon"
)

var seasonIDPatterns = map[string]*regexp.Regexp{
	GameOnePiece:  regexp.MustCompile(`^OP\d+$`),
	GameRiftbound: regexp.MustCompile(`^RFB\d+$`),
	GamePokemon:   regexp.MustCompile(`^PKM-[A-Z]{2,4}\d{2}$`),
}

type CreateSeasonInput struct {
	ID        string
	Game      string
	Name      string // optional, generated from the id when empty
	StartDate time.Time
}

type SeasonService interface {
	Create(ctx context.Context, input CreateSeasonInput) (*models.Season, error)
	GetByID(ctx context.Context, id string) (*models.Season, error)
	List(ctx context.Context, game string, includeArchived bool) ([]models.Season, error)
	Close(ctx context.Context, id string) (*models.Season, error)
	Archive(ctx context.Context, id string) (*models.Season, error)
	SuggestNextID(ctx context.Context, game string) (string, error)
}

type seasonService struct {
	db           *sql.DB
	seasonRepo   repositories.SeasonRepository
	standingsSvc StandingsService
	logger       *slog.Logger
}

func NewSeasonService(
	db *sql.DB,
	seasonRepo repositories.SeasonRepository,
	standingsSvc StandingsService,
	logger *slog.Logger,
) SeasonService {
	return &seasonService{
		db:           db,
		seasonRepo:   seasonRepo,
		standingsSvc: standingsSvc,
		logger:       logger.With(slog.String("service", "season")),
	}
}

// ValidateSeasonID checks the id against the game's format and returns the
// normalized form: trimmed and upper-cased, so "op12" and "OP12" name the
// same season.
func ValidateSeasonID(id, game string) (string, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	pattern, ok := seasonIDPatterns[game]
	if !ok {
		return "", fmt.Errorf("%w: unknown game %q", ErrSeasonIDInvalid, game)
	}
	if !pattern.MatchString(id) {
		return "", fmt.Errorf("%w: %q does not match the %s format", ErrSeasonIDInvalid, id, game)
	}
	return id, nil
}

// GenerateSeasonName builds a display name from the season id, e.g.
// "OP12" -> "One Piece - Season 12", "PKM-FS25" -> "Pokémon - FS25".
func GenerateSeasonName(id, game string) string {
	switch game {
	case GameOnePiece:
		return "One Piece - Season " + strings.TrimLeft(digits(id), "0")
	case GameRiftbound:
		return "Riftbound - Season " + strings.TrimLeft(digits(id), "0")
	case GamePokemon:
		return "Pokémon - " + strings.TrimPrefix(id, "PKM-")
	}
	return id
}

func digits(s string) string {
	var b strings.Builder
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

func (s *seasonService) Create(ctx context.Context, input CreateSeasonInput) (*models.Season, error) {
	id, err := ValidateSeasonID(input.ID, input.Game)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = GenerateSeasonName(id, input.Game)
	}
	startDate := input.StartDate
	if startDate.IsZero() {
		startDate = time.Now().UTC().Truncate(24 * time.Hour)
	}

	season := &models.Season{
		ID:        id,
		Game:      input.Game,
		Name:      name,
		Status:    models.SeasonStatusActive,
		StartDate: startDate,
	}
	if err := s.seasonRepo.Create(ctx, nil, season); err != nil {
		if errors.Is(err, repositories.ErrSeasonConflict) {
			return nil, ErrSeasonConflict
		}
		return nil, fmt.Errorf("create season %s: %w", id, err)
	}

	s.logger.Info("season created",
		slog.String("season_id", season.ID),
		slog.String("game", season.Game),
	)
	return season, nil
}

func (s *seasonService) GetByID(ctx context.Context, id string) (*models.Season, error) {
	season, err := s.seasonRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, err
	}
	return season, nil
}

func (s *seasonService) List(ctx context.Context, game string, includeArchived bool) ([]models.Season, error) {
	filter := repositories.ListSeasonsFilter{}
	if game != "" {
		filter.Game = &game
	}
	seasons, err := s.seasonRepo.List(ctx, nil, filter)
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	if includeArchived {
		return seasons, nil
	}
	filtered := seasons[:0]
	for _, season := range seasons {
		if season.Status != models.SeasonStatusArchived {
			filtered = append(filtered, season)
		}
	}
	return filtered, nil
}

// Close moves an ACTIVE season to CLOSED and recomputes its standings once
// with the drop rule in effect. Status change and recomputation commit
// together.
func (s *seasonService) Close(ctx context.Context, id string) (*models.Season, error) {
	return s.transition(ctx, id, models.SeasonStatusClosed, true)
}

// Archive moves a CLOSED season to ARCHIVED. Standings are left as the close
// computed them.
func (s *seasonService) Archive(ctx context.Context, id string) (*models.Season, error) {
	return s.transition(ctx, id, models.SeasonStatusArchived, false)
}

func (s *seasonService) transition(ctx context.Context, id string, next models.SeasonStatus, recompute bool) (result *models.Season, txErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("rollback failed",
					slog.String("season_id", id), slog.Any("error", rbErr))
			}
			result = nil
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit transaction: %w", cErr)
			result = nil
		}
	}()

	season, err := s.seasonRepo.GetByID(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			txErr = ErrSeasonNotFound
		} else {
			txErr = fmt.Errorf("load season %s: %w", id, err)
		}
		return nil, txErr
	}

	if !season.Status.CanTransitionTo(next) {
		txErr = fmt.Errorf("%w: %s → %s", ErrSeasonInvalidStatusTransition, season.Status, next)
		return nil, txErr
	}

	if err := s.seasonRepo.UpdateStatus(ctx, tx, id, next); err != nil {
		txErr = fmt.Errorf("update season %s status: %w", id, err)
		return nil, txErr
	}
	season.Status = next

	if recompute {
		if _, err := s.standingsSvc.Recompute(ctx, tx, id); err != nil {
			txErr = fmt.Errorf("recompute standings on close: %w", err)
			return nil, txErr
		}
	}

	s.logger.Info("season status changed",
		slog.String("season_id", id),
		slog.String("status", string(next)),
	)
	return season, nil
}

// SuggestNextID proposes the next sequential season id for games with
// numbered seasons. Pokémon seasons are named by set initials, so there is
// nothing to suggest.
func (s *seasonService) SuggestNextID(ctx context.Context, game string) (string, error) {
	if game == GamePokemon {
		return "", nil
	}
	prefix := ""
	switch game {
	case GameOnePiece:
		prefix = "OP"
	case GameRiftbound:
		prefix = "RFB"
	default:
		return "", fmt.Errorf("%w: unknown game %q", ErrSeasonIDInvalid, game)
	}

	seasons, err := s.seasonRepo.List(ctx, nil, repositories.ListSeasonsFilter{Game: &game})
	if err != nil {
		return "", fmt.Errorf("list seasons for suggestion: %w", err)
	}

	max := 0
	for _, season := range seasons {
		n, convErr := strconv.Atoi(digits(season.ID))
		if convErr == nil && n > max {
			max = n
		}
	}
	next := max + 1
	if game == GameRiftbound {
		return fmt.Sprintf("%s%02d", prefix, next), nil
	}
	return fmt.Sprintf("%s%d", prefix, next), nil
}
