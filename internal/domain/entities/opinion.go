package entities

import "time"

// Opinion is an append-only piece of feedback one participant wrote about
// another during a round.
type Opinion struct {
	ID          uint
	EventID     uint
	RoundNumber int
	AuthorID    uint
	TargetID    uint
	Text        string
	CreatedAt   time.Time
}
