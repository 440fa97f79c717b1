// Package view models the UI mode shown on a participant's live round message.
package view

import "fmt"

// Key identifies a participant's view within one round.
type Key struct {
	EventID       uint
	RoundNumber   int
	ParticipantID uint
}

func (k Key) String() string {
	return fmt.Sprintf("%d/%d/%d", k.EventID, k.RoundNumber, k.ParticipantID)
}

// State is one of Idle, Listing, Writing or Done.
type State interface {
	isState()
}

// Idle is the state before the participant interacted in the round.
type Idle struct{}

// Listing shows the list of possible targets.
type Listing struct{}

// Writing means the participant is composing an opinion about a target.
type Writing struct {
	TargetID   uint
	TargetName string
}

// Done is terminal for the round.
type Done struct{}

func (Idle) isState()    {}
func (Listing) isState() {}
func (Writing) isState() {}
func (Done) isState()    {}

// Name returns a short label used in logs.
func Name(s State) string {
	switch v := s.(type) {
	case Idle:
		return "idle"
	case Listing:
		return "listing"
	case Writing:
		return fmt.Sprintf("writing(%d)", v.TargetID)
	case Done:
		return "done"
	default:
		return "unknown"
	}
}
