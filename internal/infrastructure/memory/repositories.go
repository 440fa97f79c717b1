package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"roundbot/internal/domain"
	"roundbot/internal/domain/entities"
	"roundbot/internal/ports/output"
)

var (
	_ output.EventRepository        = (*EventRepository)(nil)
	_ output.RoundRepository        = (*RoundRepository)(nil)
	_ output.ParticipantRepository  = (*ParticipantRepository)(nil)
	_ output.OpinionRepository      = (*OpinionRepository)(nil)
	_ output.RoundMessageRepository = (*RoundMessageRepository)(nil)
)

type EventRepository struct{ s *Store }

func (r *EventRepository) Create(_ context.Context, event *entities.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	event.ID = r.s.nextID()
	event.CreatedAt = r.s.now()
	r.s.events = append(r.s.events, *event)
	return nil
}

func (r *EventRepository) FindByID(_ context.Context, id uint) (*entities.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.events {
		if r.s.events[i].ID == id {
			e := r.s.events[i]
			return &e, nil
		}
	}
	return nil, domain.ErrEventNotFound
}

func (r *EventRepository) FindActive(_ context.Context) (*entities.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := len(r.s.events) - 1; i >= 0; i-- {
		if r.s.events[i].IsActive() {
			e := r.s.events[i]
			return &e, nil
		}
	}
	return nil, domain.ErrNoActiveEvent
}

func (r *EventRepository) FindLatest(_ context.Context) (*entities.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if len(r.s.events) == 0 {
		return nil, domain.ErrEventNotFound
	}
	e := r.s.events[len(r.s.events)-1]
	return &e, nil
}

func (r *EventRepository) EndActive(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for i := range r.s.events {
		if r.s.events[i].IsActive() {
			r.s.events[i].Ended = true
			n++
		}
	}
	return n, nil
}

func (r *EventRepository) Update(_ context.Context, event *entities.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.events {
		if r.s.events[i].ID == event.ID {
			r.s.events[i] = *event
			return nil
		}
	}
	return domain.ErrEventNotFound
}

type RoundRepository struct{ s *Store }

func (r *RoundRepository) Create(_ context.Context, round *entities.Round) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	round.ID = r.s.nextID()
	if round.StartedAt.IsZero() {
		round.StartedAt = r.s.now()
	}
	r.s.rounds = append(r.s.rounds, *round)
	return nil
}

func (r *RoundRepository) FindOpen(_ context.Context, eventID uint) (*entities.Round, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := len(r.s.rounds) - 1; i >= 0; i-- {
		if r.s.rounds[i].EventID == eventID && r.s.rounds[i].IsOpen() {
			round := r.s.rounds[i]
			return &round, nil
		}
	}
	return nil, domain.ErrRoundNotFound
}

func (r *RoundRepository) FindByNumber(_ context.Context, eventID uint, number int) (*entities.Round, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.rounds {
		if r.s.rounds[i].EventID == eventID && r.s.rounds[i].Number == number {
			round := r.s.rounds[i]
			return &round, nil
		}
	}
	return nil, domain.ErrRoundNotFound
}

func (r *RoundRepository) update(id uint, fn func(*entities.Round)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.rounds {
		if r.s.rounds[i].ID == id {
			fn(&r.s.rounds[i])
			return nil
		}
	}
	return domain.ErrRoundNotFound
}

func (r *RoundRepository) MarkListShown(_ context.Context, id uint, at time.Time) error {
	return r.update(id, func(round *entities.Round) { round.ListShownAt = at })
}

func (r *RoundRepository) MarkEnded(_ context.Context, id uint, at time.Time) error {
	return r.update(id, func(round *entities.Round) { round.EndedAt = at })
}

// Rounds returns a snapshot of the rounds of an event ordered by number.
func (r *RoundRepository) Rounds(eventID uint) []entities.Round {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entities.Round
	for _, round := range r.s.rounds {
		if round.EventID == eventID {
			out = append(out, round)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

type ParticipantRepository struct{ s *Store }

func (r *ParticipantRepository) Create(_ context.Context, p *entities.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := participantKey{eventID: p.EventID, userID: p.UserID}
	if _, exists := r.s.participantIdx[k]; exists {
		return domain.ErrDuplicateRegistration
	}
	p.ID = r.s.nextID()
	p.CreatedAt = r.s.now()
	r.s.participantIdx[k] = len(r.s.participants)
	r.s.participants = append(r.s.participants, *p)
	return nil
}

func (r *ParticipantRepository) FindByID(_ context.Context, id uint) (*entities.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.participants {
		if r.s.participants[i].ID == id {
			p := r.s.participants[i]
			return &p, nil
		}
	}
	return nil, domain.ErrParticipantNotFound
}

func (r *ParticipantRepository) FindByEventIDAndUserID(_ context.Context, eventID uint, userID string) (*entities.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.s.participantIdx[participantKey{eventID: eventID, userID: userID}]
	if !ok {
		return nil, domain.ErrParticipantNotFound
	}
	p := r.s.participants[i]
	return &p, nil
}

func (r *ParticipantRepository) FindByEventID(ctx context.Context, eventID uint) ([]entities.Participant, error) {
	return r.Search(ctx, eventID, "")
}

func (r *ParticipantRepository) Search(_ context.Context, eventID uint, query string) ([]entities.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	query = strings.ToLower(query)
	out := make([]entities.Participant, 0)
	for _, p := range r.s.participants {
		if p.EventID != eventID {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.DisplayName), query) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out, nil
}

type OpinionRepository struct{ s *Store }

func (r *OpinionRepository) Create(_ context.Context, o *entities.Opinion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o.ID = r.s.nextID()
	o.CreatedAt = r.s.now()
	r.s.opinions = append(r.s.opinions, *o)
	return nil
}

func (r *OpinionRepository) FindByTarget(_ context.Context, eventID, targetID uint) ([]entities.Opinion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entities.Opinion, 0)
	for _, o := range r.s.opinions {
		if o.EventID == eventID && o.TargetID == targetID {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RoundNumber < out[j].RoundNumber })
	return out, nil
}

func (r *OpinionRepository) FindByAuthorAndRound(_ context.Context, eventID uint, roundNumber int, authorID uint) ([]entities.Opinion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entities.Opinion, 0)
	for _, o := range r.s.opinions {
		if o.EventID == eventID && o.RoundNumber == roundNumber && o.AuthorID == authorID {
			out = append(out, o)
		}
	}
	return out, nil
}

// Count returns the number of stored opinions.
func (r *OpinionRepository) Count() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.opinions)
}

type RoundMessageRepository struct{ s *Store }

func (r *RoundMessageRepository) Create(_ context.Context, m *entities.RoundMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := surfaceKey{eventID: m.EventID, roundNumber: m.RoundNumber, participantID: m.ParticipantID}
	if _, exists := r.s.surfaceIdx[k]; exists {
		return domain.ErrDuplicateRoundMessage
	}
	m.ID = r.s.nextID()
	r.s.surfaceIdx[k] = len(r.s.messages)
	r.s.messages = append(r.s.messages, *m)
	return nil
}

func (r *RoundMessageRepository) Find(_ context.Context, eventID uint, roundNumber int, participantID uint) (*entities.RoundMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.s.surfaceIdx[surfaceKey{eventID: eventID, roundNumber: roundNumber, participantID: participantID}]
	if !ok {
		return nil, domain.ErrRoundMessageNotFound
	}
	m := r.s.messages[i]
	return &m, nil
}

func (r *RoundMessageRepository) FindByRound(_ context.Context, eventID uint, roundNumber int) ([]entities.RoundMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entities.RoundMessage, 0)
	for _, m := range r.s.messages {
		if m.EventID == eventID && m.RoundNumber == roundNumber {
			out = append(out, m)
		}
	}
	return out, nil
}
