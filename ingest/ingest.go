// Package ingest reads the files exported by the tournament software and
// turns them into typed records. All column-position knowledge lives here;
// nothing downstream ever indexes a raw row.
package ingest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrEmptyFile     = errors.New("file contains no data rows")
	ErrMissingColumn = errors.New("required column missing")
)

// playerIDWidth: membership numbers are zero-padded to a fixed width so the
// same player matches across files that format the number differently.
const playerIDWidth = 10

// NormalizePlayerID pads a membership number with leading zeros.
func NormalizePlayerID(raw string) string {
	id := strings.TrimSpace(raw)
	if len(id) >= playerIDWidth {
		return id
	}
	return strings.Repeat("0", playerIDWidth-len(id)) + id
}

// header maps trimmed column names to their positions.
type header map[string]int

func newHeader(row []string) header {
	h := make(header, len(row))
	for i, name := range row {
		h[strings.TrimSpace(stripBOM(name))] = i
	}
	return h
}

func (h header) index(name string) (int, error) {
	i, ok := h[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMissingColumn, name)
	}
	return i, nil
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func intField(row []string, idx int) int {
	n, err := strconv.Atoi(field(row, idx))
	if err != nil {
		return 0
	}
	return n
}

// percentField parses "68.8%", "68.8" or "0.688" into a fraction in [0, 1].
func percentField(row []string, idx int) float64 {
	raw := strings.TrimSuffix(field(row, idx), "%")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	if v > 1 {
		v /= 100
	}
	return v
}

// stripBOM drops the UTF-8 byte order mark some exports prepend.
func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\uFEFF")
}
