package swiss

import (
	"fmt"
	"time"
)

// overlapThreshold is the participant-overlap fraction above which two
// same-date tournaments are flagged as likely duplicates. Fixed constant,
// no stated rationale in the product rules; keep unless told otherwise.
const overlapThreshold = 0.80

// TournamentFingerprint is what the duplicate check needs to know about a
// tournament: its identifier, date and participant set.
type TournamentFingerprint struct {
	ID             string
	Date           time.Time
	ParticipantIDs []string
}

// DuplicateCheck is the outcome of CheckDuplicate. Blocked is set only on an
// exact identifier collision; Warning carries the advisory overlap message
// and never blocks by itself.
type DuplicateCheck struct {
	Blocked bool
	Warning string
}

// CheckDuplicate decides whether a proposed tournament duplicates one
// already recorded. An identifier collision blocks the import (the caller
// may still force a reimport). Failing that, any existing tournament on the
// same date sharing at least 80% of the proposed participant set yields an
// advisory warning. Read-only; deletion on reimport is the caller's job.
func CheckDuplicate(proposed TournamentFingerprint, existing []TournamentFingerprint) DuplicateCheck {
	for _, t := range existing {
		if t.ID == proposed.ID {
			return DuplicateCheck{
				Blocked: true,
				Warning: fmt.Sprintf("tournament %s already exists", proposed.ID),
			}
		}
	}

	if len(proposed.ParticipantIDs) == 0 {
		return DuplicateCheck{}
	}

	proposedSet := make(map[string]bool, len(proposed.ParticipantIDs))
	for _, id := range proposed.ParticipantIDs {
		proposedSet[id] = true
	}

	for _, t := range existing {
		if !sameDate(t.Date, proposed.Date) {
			continue
		}
		shared := 0
		for _, id := range t.ParticipantIDs {
			if proposedSet[id] {
				shared++
			}
		}
		overlap := float64(shared) / float64(len(proposedSet))
		if overlap >= overlapThreshold {
			return DuplicateCheck{
				Warning: fmt.Sprintf(
					"tournament %s on the same date shares %d of %d participants (%.0f%%), likely a duplicate",
					t.ID, shared, len(proposedSet), overlap*100),
			}
		}
	}

	return DuplicateCheck{}
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
