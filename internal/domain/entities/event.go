package entities

import "time"

// Event is one run of the activity: an ordered sequence of rounds.
type Event struct {
	ID             uint
	Started        bool
	Ended          bool
	TotalRounds    int
	CurrentRound   int       // 0 = first round not opened yet
	RoundStartedAt time.Time // zero = not set
	CreatedAt      time.Time
}

func (e *Event) IsActive() bool {
	return e.Started && !e.Ended
}

// HasNextRound reports whether another round can still be opened.
func (e *Event) HasNextRound() bool {
	return e.CurrentRound < e.TotalRounds
}
