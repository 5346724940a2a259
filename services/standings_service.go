package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/leagueforge/league-engine/models"
	"github.com/leagueforge/league-engine/repositories"
)

// Drop rule: once a season is closed, a player with at least
// dropMinimumPlayed tournaments has their dropWorstCount weakest scores
// excluded from the season total.
const (
	dropWorstCount    = 2
	dropMinimumPlayed = 8
	top8Threshold     = 8
)

type StandingsService interface {
	// Recompute rebuilds the season's standings table from all stored
	// results. Runs inside the caller's transaction when exec is non-nil.
	Recompute(ctx context.Context, exec repositories.SQLExecutor, seasonID string) ([]models.SeasonalStanding, error)
	ListBySeason(ctx context.Context, seasonID string) ([]models.SeasonalStanding, error)
	GetPlayerStanding(ctx context.Context, seasonID, playerID string) (*models.SeasonalStanding, error)
}

type standingsService struct {
	seasonRepo   repositories.SeasonRepository
	resultRepo   repositories.ResultRepository
	standingRepo repositories.StandingRepository
	logger       *slog.Logger
}

func NewStandingsService(
	seasonRepo repositories.SeasonRepository,
	resultRepo repositories.ResultRepository,
	standingRepo repositories.StandingRepository,
	logger *slog.Logger,
) StandingsService {
	return &standingsService{
		seasonRepo:   seasonRepo,
		resultRepo:   resultRepo,
		standingRepo: standingRepo,
		logger:       logger.With(slog.String("service", "standings")),
	}
}

func (s *standingsService) Recompute(ctx context.Context, exec repositories.SQLExecutor, seasonID string) ([]models.SeasonalStanding, error) {
	season, err := s.seasonRepo.GetByID(ctx, exec, seasonID)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("load season %s: %w", seasonID, err)
	}

	results, err := s.resultRepo.ListBySeason(ctx, exec, seasonID)
	if err != nil {
		return nil, fmt.Errorf("load results for season %s: %w", seasonID, err)
	}

	standings := BuildStandings(seasonID, season.Status, results)

	if err := s.standingRepo.ReplaceForSeason(ctx, exec, seasonID, standings); err != nil {
		return nil, fmt.Errorf("replace standings for season %s: %w", seasonID, err)
	}

	s.logger.Info("standings recomputed",
		slog.String("season_id", seasonID),
		slog.String("status", string(season.Status)),
		slog.Int("players", len(standings)),
	)
	return standings, nil
}

func (s *standingsService) ListBySeason(ctx context.Context, seasonID string) ([]models.SeasonalStanding, error) {
	standings, err := s.standingRepo.ListBySeason(ctx, nil, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list standings for season %s: %w", seasonID, err)
	}
	return standings, nil
}

func (s *standingsService) GetPlayerStanding(ctx context.Context, seasonID, playerID string) (*models.SeasonalStanding, error) {
	standing, err := s.standingRepo.GetByPlayer(ctx, nil, seasonID, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrStandingNotFound) {
			return nil, ErrStandingsNotFound
		}
		return nil, err
	}
	return standing, nil
}

// BuildStandings derives the seasonal table from a season's results. Pure:
// same inputs always yield the same ordered slice, so recomputation is
// idempotent.
//
// Season total counts only the player's best tournaments once the drop rule
// is in effect; tournament wins, match wins, best rank and top-8 count always
// cover every played tournament.
func BuildStandings(seasonID string, status models.SeasonStatus, results []models.ParticipantResult) []models.SeasonalStanding {
	type playerAccum struct {
		name         string
		leaguePoints []int
		wins         int
		matchWins    int
		bestRank     int
		top8         int
	}

	players := make(map[string]*playerAccum)
	order := make([]string, 0)
	for _, res := range results {
		acc, ok := players[res.PlayerID]
		if !ok {
			acc = &playerAccum{bestRank: res.Rank}
			players[res.PlayerID] = acc
			order = append(order, res.PlayerID)
		}
		// results arrive in tournament date order, keep the latest name
		acc.name = res.PlayerName
		acc.leaguePoints = append(acc.leaguePoints, res.LeaguePoints)
		acc.matchWins += res.Wins
		if res.Rank == 1 {
			acc.wins++
		}
		if res.Rank < acc.bestRank {
			acc.bestRank = res.Rank
		}
		if res.Rank <= top8Threshold {
			acc.top8++
		}
	}

	standings := make([]models.SeasonalStanding, 0, len(players))
	for _, playerID := range order {
		acc := players[playerID]
		played := len(acc.leaguePoints)
		counted := countedTournaments(status, played)

		points := append([]int(nil), acc.leaguePoints...)
		sort.Sort(sort.Reverse(sort.IntSlice(points)))
		total := 0
		for _, p := range points[:counted] {
			total += p
		}

		standings = append(standings, models.SeasonalStanding{
			SeasonID:           seasonID,
			PlayerID:           playerID,
			PlayerName:         acc.name,
			TotalPoints:        total,
			TournamentsPlayed:  played,
			TournamentsCounted: counted,
			TournamentWins:     acc.wins,
			MatchWins:          acc.matchWins,
			BestRank:           acc.bestRank,
			Top8Count:          acc.top8,
		})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].TotalPoints != standings[j].TotalPoints {
			return standings[i].TotalPoints > standings[j].TotalPoints
		}
		return standings[i].PlayerID < standings[j].PlayerID
	})
	for i := range standings {
		standings[i].RankInSeason = i + 1
	}
	return standings
}

// countedTournaments applies the lifecycle-dependent cap.
func countedTournaments(status models.SeasonStatus, played int) int {
	cap := played
	if status == models.SeasonStatusClosed && played >= dropMinimumPlayed {
		cap = played - dropWorstCount
	}
	if played < cap {
		return played
	}
	return cap
}
