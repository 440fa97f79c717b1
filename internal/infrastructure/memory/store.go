// Package memory is an in-process implementation of the store ports. It is
// used by tests and by STORE=memory for local runs; nothing survives a restart.
package memory

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"roundbot/internal/domain/entities"
)

type participantKey struct {
	eventID uint
	userID  string
}

type surfaceKey struct {
	eventID       uint
	roundNumber   int
	participantID uint
}

// Store holds every table behind one lock.
type Store struct {
	clock clockwork.Clock

	mu           sync.Mutex
	seq          uint
	events       []entities.Event
	rounds       []entities.Round
	participants []entities.Participant
	opinions     []entities.Opinion
	messages     []entities.RoundMessage

	participantIdx map[participantKey]int
	surfaceIdx     map[surfaceKey]int
}

func NewStore(clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{
		clock:          clock,
		participantIdx: make(map[participantKey]int),
		surfaceIdx:     make(map[surfaceKey]int),
	}
}

func (s *Store) nextID() uint {
	s.seq++
	return s.seq
}

func (s *Store) now() time.Time {
	return s.clock.Now()
}

func (s *Store) Events() *EventRepository {
	return &EventRepository{s: s}
}

func (s *Store) Rounds() *RoundRepository {
	return &RoundRepository{s: s}
}

func (s *Store) Participants() *ParticipantRepository {
	return &ParticipantRepository{s: s}
}

func (s *Store) Opinions() *OpinionRepository {
	return &OpinionRepository{s: s}
}

func (s *Store) RoundMessages() *RoundMessageRepository {
	return &RoundMessageRepository{s: s}
}
