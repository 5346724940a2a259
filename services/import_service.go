package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/leagueforge/league-engine/ingest"
	"github.com/leagueforge/league-engine/models"
	"github.com/leagueforge/league-engine/repositories"
	"github.com/leagueforge/league-engine/storage"
	"github.com/leagueforge/league-engine/swiss"
)

// SourceFile is one uploaded export, kept in memory for the duration of the
// import.
type SourceFile struct {
	Name string
	Data []byte
}

type ImportInput struct {
	SeasonID string
	// Date of the tournament; when zero it is extracted from file names.
	Date time.Time
	// RoundFiles are cumulative per-round exports, any order; the round
	// number is read from each file name.
	RoundFiles []SourceFile
	// PairingsFile, when present, takes precedence over RoundFiles.
	PairingsFile *SourceFile
	// FinalFile is the optional authoritative final standings export.
	FinalFile     *SourceFile
	AllowReimport bool
}

// ImportReport is returned to the caller after a committed import.
type ImportReport struct {
	Tournament *models.Tournament         `json:"tournament"`
	Results    []models.ParticipantResult `json:"results"`
	Standings  []models.SeasonalStanding  `json:"standings"`
	Warnings   []string                   `json:"warnings,omitempty"`
	Reimported bool                       `json:"reimported"`
}

// StandingsBroadcaster pushes refreshed standings to live subscribers.
type StandingsBroadcaster interface {
	BroadcastStandings(seasonID string, standings []models.SeasonalStanding)
}

// DeleteReport describes the state of a season after one of its tournaments
// was removed.
type DeleteReport struct {
	SeasonID  string                    `json:"season_id"`
	Standings []models.SeasonalStanding `json:"standings"`
}

type ImportService interface {
	ImportTournament(ctx context.Context, input ImportInput) (*ImportReport, error)
	DeleteTournament(ctx context.Context, id string) (*DeleteReport, error)
	GetTournament(ctx context.Context, id string) (*models.Tournament, error)
	ListTournaments(ctx context.Context, seasonID string) ([]models.Tournament, error)
}

type importService struct {
	db             *sql.DB
	seasonRepo     repositories.SeasonRepository
	tournamentRepo repositories.TournamentRepository
	resultRepo     repositories.ResultRepository
	statsSvc       PlayerStatsUpdater
	standingsSvc   StandingsService
	uploader       storage.FileUploader // nil disables source archival
	broadcaster    StandingsBroadcaster // nil disables live updates
	logger         *slog.Logger

	// Imports into the same season are serialized; different seasons are
	// independent and may run concurrently.
	mu          sync.Mutex
	seasonLocks map[string]*sync.Mutex
}

func NewImportService(
	db *sql.DB,
	seasonRepo repositories.SeasonRepository,
	tournamentRepo repositories.TournamentRepository,
	resultRepo repositories.ResultRepository,
	statsSvc PlayerStatsUpdater,
	standingsSvc StandingsService,
	uploader storage.FileUploader,
	broadcaster StandingsBroadcaster,
	logger *slog.Logger,
) ImportService {
	return &importService{
		db:             db,
		seasonRepo:     seasonRepo,
		tournamentRepo: tournamentRepo,
		resultRepo:     resultRepo,
		statsSvc:       statsSvc,
		standingsSvc:   standingsSvc,
		uploader:       uploader,
		broadcaster:    broadcaster,
		logger:         logger.With(slog.String("service", "import")),
		seasonLocks:    make(map[string]*sync.Mutex),
	}
}

func (s *importService) seasonLock(seasonID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.seasonLocks[seasonID]
	if !ok {
		lock = &sync.Mutex{}
		s.seasonLocks[seasonID] = lock
	}
	return lock
}

func (s *importService) ImportTournament(ctx context.Context, input ImportInput) (*ImportReport, error) {
	lock := s.seasonLock(input.SeasonID)
	lock.Lock()
	defer lock.Unlock()

	season, err := s.seasonRepo.GetByID(ctx, nil, input.SeasonID)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("load season %s: %w", input.SeasonID, err)
	}
	if season.Status != models.SeasonStatusActive {
		return nil, fmt.Errorf("%w: season %s is %s", ErrSeasonNotActive, season.ID, season.Status)
	}

	date, err := resolveDate(input)
	if err != nil {
		return nil, err
	}
	tournamentID := models.TournamentID(season.ID, date)

	outcomes, roundCount, warnings, err := s.reconstruct(input)
	if err != nil {
		return nil, err
	}

	results := swiss.Score(tournamentID, outcomes)

	if expected := swiss.RoundsForField(len(results)); roundCount < expected {
		warnings = append(warnings, fmt.Sprintf(
			"only %d of %d expected rounds for a %d-player field", roundCount, expected, len(results)))
	}

	check, priorExists, err := s.checkDuplicate(ctx, season.ID, tournamentID, date, results)
	if err != nil {
		return nil, err
	}
	if check.Blocked && !input.AllowReimport {
		return nil, fmt.Errorf("%w: %s", ErrReimportNotRequested, tournamentID)
	}
	if check.Warning != "" {
		warnings = append(warnings, check.Warning)
	}

	tournament := &models.Tournament{
		ID:               tournamentID,
		SeasonID:         season.ID,
		Date:             date,
		ParticipantCount: len(results),
		RoundCount:       roundCount,
		WinnerName:       swiss.WinnerName(results),
		SourceFileRefs:   sourceKeys(tournamentID, input),
	}

	standings, err := s.commit(ctx, season, tournament, results, priorExists && input.AllowReimport)
	if err != nil {
		return nil, err
	}

	s.archiveSources(ctx, tournamentID, input)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastStandings(season.ID, standings)
	}

	s.logger.Info("tournament imported",
		slog.String("tournament_id", tournamentID),
		slog.String("season_id", season.ID),
		slog.Int("participants", len(results)),
		slog.Int("rounds", roundCount),
		slog.Bool("reimport", priorExists),
		slog.Int("warnings", len(warnings)),
	)

	return &ImportReport{
		Tournament: tournament,
		Results:    results,
		Standings:  standings,
		Warnings:   warnings,
		Reimported: priorExists,
	}, nil
}

// resolveDate prefers the explicit date, then dates embedded in file names.
func resolveDate(input ImportInput) (time.Time, error) {
	if !input.Date.IsZero() {
		return input.Date.UTC().Truncate(24 * time.Hour), nil
	}
	names := make([]string, 0, len(input.RoundFiles)+2)
	for _, f := range input.RoundFiles {
		names = append(names, f.Name)
	}
	if input.PairingsFile != nil {
		names = append(names, input.PairingsFile.Name)
	}
	if input.FinalFile != nil {
		names = append(names, input.FinalFile.Name)
	}
	for _, name := range names {
		if date, ok := ingest.DateFromFilename(name); ok {
			return date, nil
		}
	}
	return time.Time{}, ErrImportDateUnknown
}

// reconstruct parses the uploaded files and rebuilds per-player outcomes.
// Pairings give exact match results; cumulative round files fall back to
// point-delta reconstruction. The final standings file, when present,
// overrides ranks and tiebreakers.
func (s *importService) reconstruct(input ImportInput) ([]swiss.PlayerOutcome, int, []string, error) {
	var (
		outcomes   []swiss.PlayerOutcome
		roundCount int
		err        error
	)

	switch {
	case input.PairingsFile != nil:
		rounds, perr := ingest.ParsePairings(bytes.NewReader(input.PairingsFile.Data))
		if perr != nil {
			return nil, 0, nil, fmt.Errorf("%w: %s: %v", ErrValidationFailed, input.PairingsFile.Name, perr)
		}
		roundCount = len(rounds)
		outcomes, err = swiss.ReconstructFromPairings(rounds)

	case len(input.RoundFiles) > 0:
		files := append([]SourceFile(nil), input.RoundFiles...)
		sort.SliceStable(files, func(i, j int) bool {
			return ingest.RoundFromFilename(files[i].Name) < ingest.RoundFromFilename(files[j].Name)
		})
		readers := make([]io.Reader, len(files))
		for i, f := range files {
			readers[i] = bytes.NewReader(f.Data)
		}
		records, perr := ingest.ParseRoundFiles(readers)
		if perr != nil {
			return nil, 0, nil, fmt.Errorf("%w: %v", ErrValidationFailed, perr)
		}
		roundCount = len(files)
		outcomes, err = swiss.ReconstructFromProgression(records)

	default:
		return nil, 0, nil, ErrImportNoRoundData
	}
	if err != nil {
		return nil, 0, nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	var warnings []string
	if input.FinalFile != nil {
		final, perr := ingest.ParseFinalStandings(bytes.NewReader(input.FinalFile.Data))
		if perr != nil {
			return nil, 0, nil, fmt.Errorf("%w: %s: %v", ErrValidationFailed, input.FinalFile.Name, perr)
		}
		var integrity []swiss.IntegrityWarning
		outcomes, integrity = swiss.MergeFinal(outcomes, final)
		for _, w := range integrity {
			warnings = append(warnings, w.String())
		}
	}
	return outcomes, roundCount, warnings, nil
}

// checkDuplicate compares the proposed tournament against everything already
// stored in the season. Reports whether a tournament with the same id exists.
func (s *importService) checkDuplicate(ctx context.Context, seasonID, tournamentID string, date time.Time, results []models.ParticipantResult) (swiss.DuplicateCheck, bool, error) {
	existingTournaments, err := s.tournamentRepo.ListBySeason(ctx, nil, seasonID)
	if err != nil {
		return swiss.DuplicateCheck{}, false, fmt.Errorf("list tournaments for season %s: %w", seasonID, err)
	}

	proposed := swiss.TournamentFingerprint{ID: tournamentID, Date: date}
	for _, res := range results {
		proposed.ParticipantIDs = append(proposed.ParticipantIDs, res.PlayerID)
	}

	priorExists := false
	existing := make([]swiss.TournamentFingerprint, 0, len(existingTournaments))
	for _, t := range existingTournaments {
		if t.ID == tournamentID {
			priorExists = true
		}
		fp := swiss.TournamentFingerprint{ID: t.ID, Date: t.Date}
		playerIDs, err := s.resultRepo.ListPlayerIDsByTournament(ctx, nil, t.ID)
		if err != nil {
			return swiss.DuplicateCheck{}, false, fmt.Errorf("list participants of %s: %w", t.ID, err)
		}
		fp.ParticipantIDs = playerIDs
		existing = append(existing, fp)
	}

	return swiss.CheckDuplicate(proposed, existing), priorExists, nil
}

// commit runs the transactional part of the import: optional delete of the
// prior record, inserts, season counter, standings and read-model refresh.
// Either everything lands or nothing does.
func (s *importService) commit(ctx context.Context, season *models.Season, tournament *models.Tournament, results []models.ParticipantResult, reimport bool) (standings []models.SeasonalStanding, txErr error) {
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
					slog.String("tournament_id", tournament.ID), slog.Any("error", rbErr))
			}
			standings = nil
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit transaction: %w", cErr)
			standings = nil
		}
	}()

	if reimport {
		if err := s.resultRepo.DeleteByTournament(ctx, tx, tournament.ID); err != nil {
			txErr = fmt.Errorf("delete prior results: %w", err)
			return nil, txErr
		}
		if err := s.tournamentRepo.Delete(ctx, tx, tournament.ID); err != nil && !errors.Is(err, repositories.ErrTournamentNotFound) {
			txErr = fmt.Errorf("delete prior tournament: %w", err)
			return nil, txErr
		}
	}

	if err := s.tournamentRepo.Create(ctx, tx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentExists) {
			txErr = fmt.Errorf("%w: %s", ErrDuplicateImport, tournament.ID)
		} else {
			txErr = fmt.Errorf("create tournament %s: %w", tournament.ID, err)
		}
		return nil, txErr
	}
	if err := s.resultRepo.BatchCreate(ctx, tx, results); err != nil {
		txErr = fmt.Errorf("store results for %s: %w", tournament.ID, err)
		return nil, txErr
	}

	if !reimport {
		if _, err := s.seasonRepo.IncrementTournamentsCount(ctx, tx, season.ID); err != nil {
			txErr = fmt.Errorf("bump tournament counter: %w", err)
			return nil, txErr
		}
	}

	standings, err = s.standingsSvc.Recompute(ctx, tx, season.ID)
	if err != nil {
		txErr = fmt.Errorf("recompute standings: %w", err)
		return nil, txErr
	}

	for _, res := range results {
		if err := s.statsSvc.RefreshPlayer(ctx, tx, res.PlayerID, season.Game); err != nil {
			txErr = fmt.Errorf("refresh stats for player %s: %w", res.PlayerID, err)
			return nil, txErr
		}
	}
	return standings, nil
}

func sourceKeys(tournamentID string, input ImportInput) []string {
	keys := make([]string, 0, len(input.RoundFiles)+2)
	for _, f := range input.RoundFiles {
		keys = append(keys, sourceKey(tournamentID, f.Name))
	}
	if input.PairingsFile != nil {
		keys = append(keys, sourceKey(tournamentID, input.PairingsFile.Name))
	}
	if input.FinalFile != nil {
		keys = append(keys, sourceKey(tournamentID, input.FinalFile.Name))
	}
	return keys
}

func sourceKey(tournamentID, fileName string) string {
	return "sources/" + tournamentID + "/" + fileName
}

// archiveSources uploads the raw exports after a successful commit. Failures
// are logged, never surfaced: the import already succeeded and the keys are
// recorded either way.
func (s *importService) archiveSources(ctx context.Context, tournamentID string, input ImportInput) {
	if s.uploader == nil {
		return
	}
	files := append([]SourceFile(nil), input.RoundFiles...)
	if input.PairingsFile != nil {
		files = append(files, *input.PairingsFile)
	}
	if input.FinalFile != nil {
		files = append(files, *input.FinalFile)
	}
	for _, f := range files {
		key := sourceKey(tournamentID, f.Name)
		if _, err := s.uploader.Upload(ctx, key, "text/csv", bytes.NewReader(f.Data)); err != nil {
			s.logger.Warn("source archival failed",
				slog.String("key", key), slog.Any("error", err))
		}
	}
}

func (s *importService) GetTournament(ctx context.Context, id string) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	results, err := s.resultRepo.ListByTournament(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("load results for %s: %w", id, err)
	}
	tournament.Results = results
	return tournament, nil
}

// DeleteTournament removes a stored tournament together with its results,
// then recomputes the season table and the affected players' lifetime stats.
func (s *importService) DeleteTournament(ctx context.Context, id string) (*DeleteReport, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("load tournament %s: %w", id, err)
	}

	lock := s.seasonLock(tournament.SeasonID)
	lock.Lock()
	defer lock.Unlock()

	season, err := s.seasonRepo.GetByID(ctx, nil, tournament.SeasonID)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("load season %s: %w", tournament.SeasonID, err)
	}

	playerIDs, err := s.resultRepo.ListPlayerIDsByTournament(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("list participants of %s: %w", id, err)
	}

	standings, err := s.commitDelete(ctx, season, id, playerIDs)
	if err != nil {
		return nil, err
	}

	s.dropArchivedSources(ctx, tournament.SourceFileRefs)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastStandings(season.ID, standings)
	}

	s.logger.Info("tournament deleted",
		slog.String("tournament_id", id),
		slog.String("season_id", season.ID),
		slog.Int("participants", len(playerIDs)),
	)

	return &DeleteReport{SeasonID: season.ID, Standings: standings}, nil
}

func (s *importService) commitDelete(ctx context.Context, season *models.Season, tournamentID string, playerIDs []string) (standings []models.SeasonalStanding, txErr error) {
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
					slog.String("tournament_id", tournamentID), slog.Any("error", rbErr))
			}
			standings = nil
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit transaction: %w", cErr)
			standings = nil
		}
	}()

	if err := s.resultRepo.DeleteByTournament(ctx, tx, tournamentID); err != nil {
		txErr = fmt.Errorf("delete results of %s: %w", tournamentID, err)
		return nil, txErr
	}
	if err := s.tournamentRepo.Delete(ctx, tx, tournamentID); err != nil {
		txErr = fmt.Errorf("delete tournament %s: %w", tournamentID, err)
		return nil, txErr
	}
	if _, err := s.seasonRepo.DecrementTournamentsCount(ctx, tx, season.ID); err != nil {
		txErr = fmt.Errorf("lower tournament counter: %w", err)
		return nil, txErr
	}

	standings, err = s.standingsSvc.Recompute(ctx, tx, season.ID)
	if err != nil {
		txErr = fmt.Errorf("recompute standings: %w", err)
		return nil, txErr
	}

	for _, playerID := range playerIDs {
		if err := s.statsSvc.RefreshPlayer(ctx, tx, playerID, season.Game); err != nil {
			txErr = fmt.Errorf("refresh stats for player %s: %w", playerID, err)
			return nil, txErr
		}
	}
	return standings, nil
}

// dropArchivedSources deletes the raw exports from object storage.
// Best-effort, same as archival.
func (s *importService) dropArchivedSources(ctx context.Context, keys []string) {
	if s.uploader == nil {
		return
	}
	for _, key := range keys {
		if err := s.uploader.Delete(ctx, key); err != nil {
			s.logger.Warn("source cleanup failed",
				slog.String("key", key), slog.Any("error", err))
		}
	}
}

func (s *importService) ListTournaments(ctx context.Context, seasonID string) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.ListBySeason(ctx, nil, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list tournaments for season %s: %w", seasonID, err)
	}
	return tournaments, nil
}
