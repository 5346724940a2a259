package models

import "time"

// SeasonalStanding is a derived view: one row per player per season,
// recomputed in full from all of the season's ParticipantResults after every
// import and on season close. Never hand-edited.
type SeasonalStanding struct {
	ID                 int       `json:"id" db:"id"`
	SeasonID           string    `json:"season_id" db:"season_id"`
	RankInSeason       int       `json:"rank_in_season" db:"rank_in_season"`
	PlayerID           string    `json:"player_id" db:"player_id"`
	PlayerName         string    `json:"player_name" db:"player_name"`
	TotalPoints        int       `json:"total_points" db:"total_points"`
	TournamentsPlayed  int       `json:"tournaments_played" db:"tournaments_played"`
	TournamentsCounted int       `json:"tournaments_counted" db:"tournaments_counted"`
	TournamentWins     int       `json:"tournament_wins" db:"tournament_wins"`
	MatchWins          int       `json:"match_wins" db:"match_wins"`
	BestRank           int       `json:"best_rank" db:"best_rank"`
	Top8Count          int       `json:"top8_count" db:"top8_count"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}
