package models

import "time"

// PlayerStats is the lifetime read model per (player, game), rebuilt from all
// stored results whenever a tournament is imported. Results are the write
// model, PlayerStats the pre-aggregated read side.
type PlayerStats struct {
	ID               int       `json:"id" db:"id"`
	PlayerID         string    `json:"player_id" db:"player_id"`
	PlayerName       string    `json:"player_name" db:"player_name"`
	Game             string    `json:"game" db:"game"`
	TotalTournaments int       `json:"total_tournaments" db:"total_tournaments"`
	TournamentWins   int       `json:"tournament_wins" db:"tournament_wins"`
	MatchWins        int       `json:"match_wins" db:"match_wins"`
	MatchTies        int       `json:"match_ties" db:"match_ties"`
	MatchLosses      int       `json:"match_losses" db:"match_losses"`
	TotalPoints      int       `json:"total_points" db:"total_points"`
	Top8Count        int       `json:"top8_count" db:"top8_count"`
	BestRank         int       `json:"best_rank" db:"best_rank"`
	FirstSeen        time.Time `json:"first_seen" db:"first_seen"`
	LastSeen         time.Time `json:"last_seen" db:"last_seen"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}
