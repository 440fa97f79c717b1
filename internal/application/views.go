package application

import (
	"sync"

	"roundbot/internal/domain"
	"roundbot/internal/domain/view"
)

type roundKey struct {
	eventID uint
	number  int
}

func roundOf(key view.Key) roundKey {
	return roundKey{eventID: key.EventID, number: key.RoundNumber}
}

// ViewTracker holds the in-memory view state of every participant of the
// running rounds. It is shared by phase transitions, participant actions and
// countdown ticks; every read-modify-write goes through Transition.
type ViewTracker struct {
	mu     sync.Mutex
	states map[view.Key]view.State
	closed map[roundKey]struct{}
}

func NewViewTracker() *ViewTracker {
	return &ViewTracker{
		states: make(map[view.Key]view.State),
		closed: make(map[roundKey]struct{}),
	}
}

// Get returns the current state, Idle when the participant has no entry.
func (t *ViewTracker) Get(key view.Key) view.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.states[key]; ok {
		return s
	}
	return view.Idle{}
}

// Set overwrites the state unless the round was closed.
func (t *ViewTracker) Set(key view.Key, s view.State) error {
	_, err := t.Transition(key, func(view.State) (view.State, error) { return s, nil })
	return err
}

// Transition atomically applies fn to the current state. When fn fails the
// state is left untouched. Closed rounds reject every transition with
// domain.ErrRoundClosed.
func (t *ViewTracker) Transition(key view.Key, fn func(view.State) (view.State, error)) (view.State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, closed := t.closed[roundOf(key)]; closed {
		return nil, domain.ErrRoundClosed
	}
	cur, ok := t.states[key]
	if !ok {
		cur = view.Idle{}
	}
	next, err := fn(cur)
	if err != nil {
		return cur, err
	}
	t.states[key] = next
	return next, nil
}

// CloseRound drops every entry of the round and rejects later transitions.
func (t *ViewTracker) CloseRound(eventID uint, number int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rk := roundKey{eventID: eventID, number: number}
	t.closed[rk] = struct{}{}
	for k := range t.states {
		if roundOf(k) == rk {
			delete(t.states, k)
		}
	}
}

// ForgetEvent drops every entry of the event, closed rounds included. Ended
// events are rejected by the services before the tracker is consulted.
func (t *ViewTracker) ForgetEvent(eventID uint) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k := range t.states {
		if k.EventID == eventID {
			delete(t.states, k)
		}
	}
	for rk := range t.closed {
		if rk.eventID == eventID {
			delete(t.closed, rk)
		}
	}
}

// IsClosed reports whether CloseRound was called for the round.
func (t *ViewTracker) IsClosed(eventID uint, number int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.closed[roundKey{eventID: eventID, number: number}]
	return ok
}

// ClosedRounds returns the number of rounds still remembered as closed.
func (t *ViewTracker) ClosedRounds() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.closed)
}

// Len returns the number of tracked participants.
func (t *ViewTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.states)
}

func toWriting(targetID uint, targetName string) func(view.State) (view.State, error) {
	return func(cur view.State) (view.State, error) {
		switch cur.(type) {
		case view.Done:
			return nil, domain.ErrAlreadyDone
		case view.Idle, view.Listing, view.Writing:
			return view.Writing{TargetID: targetID, TargetName: targetName}, nil
		default:
			return nil, domain.ErrInvalidArgument
		}
	}
}

// toListing leaves a writing session.
func toListing(cur view.State) (view.State, error) {
	switch cur.(type) {
	case view.Done:
		return nil, domain.ErrAlreadyDone
	case view.Writing:
		return view.Listing{}, nil
	default:
		return nil, domain.ErrNoWritingSession
	}
}

// expireWindow is applied on the last countdown tick and accepts any state
// but Done.
func expireWindow(cur view.State) (view.State, error) {
	switch cur.(type) {
	case view.Done:
		return nil, domain.ErrAlreadyDone
	case view.Idle, view.Listing, view.Writing:
		return view.Listing{}, nil
	default:
		return nil, domain.ErrInvalidArgument
	}
}

func toDone(cur view.State) (view.State, error) {
	switch cur.(type) {
	case view.Idle, view.Listing, view.Writing, view.Done:
		return view.Done{}, nil
	default:
		return nil, domain.ErrInvalidArgument
	}
}
