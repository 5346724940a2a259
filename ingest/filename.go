package ingest

import (
	"regexp"
	"time"
)

var (
	datePattern  = regexp.MustCompile(`(\d{4})[_-]?(\d{2})[_-]?(\d{2})`)
	roundPattern = regexp.MustCompile(`(?i)(?:round|turno|r)[_ -]?(\d+)`)
)

// DateFromFilename extracts a YYYYMMDD / YYYY-MM-DD / YYYY_MM_DD date embedded
// in an export file name. Returns false when no plausible date is present.
func DateFromFilename(name string) (time.Time, bool) {
	for _, m := range datePattern.FindAllStringSubmatch(name, -1) {
		t, err := time.Parse("2006-01-02", m[1]+"-"+m[2]+"-"+m[3])
		if err != nil {
			continue
		}
		return t, true
	}
	return time.Time{}, false
}

// RoundFromFilename extracts the round number from a cumulative round export
// file name ("..._round3.csv", "..._R02.csv"). Returns 0 when absent.
func RoundFromFilename(name string) int {
	m := roundPattern.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	n := 0
	for _, c := range m[1] {
		n = n*10 + int(c-'0')
	}
	return n
}
