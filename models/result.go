package models

// ParticipantResult is one player's validated result in one tournament.
// Created once per import and immutable afterwards; a reimport deletes and
// recreates the whole set for the tournament.
type ParticipantResult struct {
	ID           string  `json:"id" db:"id"` // "{tournament_id}_{player_id}"
	TournamentID string  `json:"tournament_id" db:"tournament_id"`
	PlayerID     string  `json:"player_id" db:"player_id"`
	PlayerName   string  `json:"player_name" db:"player_name"`
	Rank         int     `json:"rank" db:"rank"`
	Wins         int     `json:"wins" db:"wins"`
	Ties         int     `json:"ties" db:"ties"`
	Losses       int     `json:"losses" db:"losses"`
	WinPoints    int     `json:"win_points" db:"win_points"`
	OMW          float64 `json:"omw_percent" db:"omw_percent"`
	OOMW         float64 `json:"oomw_percent" db:"oomw_percent"`

	// League point breakdown: victory_points = wins,
	// ranking_points = field_size - (rank - 1), league_points = sum of both.
	VictoryPoints int `json:"victory_points" db:"victory_points"`
	RankingPoints int `json:"ranking_points" db:"ranking_points"`
	LeaguePoints  int `json:"league_points" db:"league_points"`
}

// ResultID builds the deterministic result identifier.
func ResultID(tournamentID, playerID string) string {
	return tournamentID + "_" + playerID
}
