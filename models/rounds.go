package models

// Pairing is one table of one Swiss round. P2ID empty means a bye: exactly
// one player and an implicit win for that player. WinnerID empty on a
// non-bye pairing means a draw.
type Pairing struct {
	Round    int    `json:"round"`
	Table    string `json:"table,omitempty"`
	P1ID     string `json:"p1_id"`
	P1Name   string `json:"p1_name,omitempty"`
	P2ID     string `json:"p2_id,omitempty"`
	P2Name   string `json:"p2_name,omitempty"`
	WinnerID string `json:"winner_id,omitempty"`
}

// IsBye reports whether the pairing has a single player.
func (p Pairing) IsBye() bool {
	return p.P2ID == ""
}

// PlayerRoundRecord is one player's row in a cumulative round file: the
// running match-point total after the given round. Points are non-decreasing
// across rounds; the per-round increment is 0, 1 or 3 under the
// win=3/tie=1/loss=0 convention.
type PlayerRoundRecord struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Round      int    `json:"round"`
	Points     int    `json:"points"`
	Rank       int    `json:"rank"`
}

// FinalStandingRow is one row of the authoritative final-standings file the
// tournament software exports alongside the per-round files.
type FinalStandingRow struct {
	Rank       int     `json:"rank"`
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	WinPoints  int     `json:"win_points"`
	OMW        float64 `json:"omw_percent"`
	OOMW       float64 `json:"oomw_percent"`
}
