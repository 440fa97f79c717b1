package domain

// Phase is the lifecycle position of a round.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseMingling
	PhaseCollecting
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseMingling:
		return "mingling"
	case PhaseCollecting:
		return "collecting"
	case PhaseClosed:
		return "closed"
	default:
		return "none"
	}
}
