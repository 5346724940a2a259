package models

import "time"

// Tournament holds the metadata of one imported tournament. The ID is
// deterministic: "{season_id}_{YYYYMMDD}", so one season can hold at most
// one tournament per date.
type Tournament struct {
	ID               string    `json:"id" db:"id"`
	SeasonID         string    `json:"season_id" db:"season_id"`
	Date             time.Time `json:"date" db:"date"`
	ParticipantCount int       `json:"participant_count" db:"participant_count"`
	RoundCount       int       `json:"round_count" db:"round_count"`
	WinnerName       string    `json:"winner_name" db:"winner_name"`
	SourceFileRefs   []string  `json:"source_file_refs" db:"source_file_refs"`
	ImportedAt       time.Time `json:"imported_at" db:"imported_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Season  *Season             `json:"-" db:"-"`
	Results []ParticipantResult `json:"results,omitempty" db:"-"`
}

// TournamentID builds the deterministic tournament identifier for a season
// and date, e.g. "OP12_20251113".
func TournamentID(seasonID string, date time.Time) string {
	return seasonID + "_" + date.Format("20060102")
}
