// Package swiss implements the scoring core of the league: Swiss tiebreak
// math, reconstruction of match outcomes from round data, the league point
// formula and duplicate-tournament detection. Everything here is pure and
// operates on in-memory data for a single tournament; storage and transport
// live elsewhere.
package swiss

// winRateFloor is the standard Swiss floor applied by the tournament
// organizer software being modeled. Hard rule, do not change.
const winRateFloor = 0.3333

// Record is a player's aggregate match record within one tournament.
type Record struct {
	Wins   int
	Losses int
	Ties   int
}

// Matches returns the number of recorded matches.
func (r Record) Matches() int {
	return r.Wins + r.Losses + r.Ties
}

// WinPoints returns match points under the win=3/tie=1/loss=0 convention.
func (r Record) WinPoints() int {
	return r.Wins*3 + r.Ties
}

// MatchWinRate returns (wins*3 + ties) / (matches*3), floored at 0.3333.
// A player with zero recorded matches gets the floor.
func MatchWinRate(r Record) float64 {
	total := r.Matches()
	if total == 0 {
		return winRateFloor
	}
	rate := float64(r.WinPoints()) / float64(total*3)
	if rate < winRateFloor {
		return winRateFloor
	}
	return rate
}

// OMW returns the mean match-win rate of a player's distinct opponents,
// or 0 if the player faced no opponents (byes only).
func OMW(playerID string, opponents map[string][]string, records map[string]Record) float64 {
	opps := opponents[playerID]
	if len(opps) == 0 {
		return 0
	}
	var sum float64
	for _, oppID := range opps {
		sum += MatchWinRate(records[oppID])
	}
	return sum / float64(len(opps))
}

// OOMW returns the mean OMW of a player's distinct opponents, or 0 if the
// player faced no opponents.
func OOMW(playerID string, opponents map[string][]string, records map[string]Record) float64 {
	opps := opponents[playerID]
	if len(opps) == 0 {
		return 0
	}
	var sum float64
	for _, oppID := range opps {
		sum += OMW(oppID, opponents, records)
	}
	return sum / float64(len(opps))
}
