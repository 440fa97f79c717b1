package entities

import (
	"time"

	"roundbot/internal/domain"
)

// Round is one timed sub-session of an Event.
type Round struct {
	ID          uint
	EventID     uint
	Number      int
	Name        string
	StartedAt   time.Time
	ListShownAt time.Time // zero = still mingling
	EndedAt     time.Time // zero = current round
}

func (r *Round) IsOpen() bool {
	return r.EndedAt.IsZero()
}

// Phase derives the round phase from its markers.
func (r *Round) Phase() domain.Phase {
	switch {
	case !r.EndedAt.IsZero():
		return domain.PhaseClosed
	case !r.ListShownAt.IsZero():
		return domain.PhaseCollecting
	default:
		return domain.PhaseMingling
	}
}
