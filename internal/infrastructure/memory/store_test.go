package memory

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roundbot/internal/domain"
	"roundbot/internal/domain/entities"
)

func newTestStore() (*Store, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC))
	return NewStore(clock), clock
}

func TestEventLifecycle(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()
	events := s.Events()

	_, err := events.FindActive(ctx)
	assert.ErrorIs(t, err, domain.ErrNoActiveEvent)
	_, err = events.FindLatest(ctx)
	assert.ErrorIs(t, err, domain.ErrEventNotFound)

	first := &entities.Event{Started: true, TotalRounds: 2}
	require.NoError(t, events.Create(ctx, first))
	second := &entities.Event{Started: true, TotalRounds: 3}
	require.NoError(t, events.Create(ctx, second))

	active, err := events.FindActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	n, err := events.EndActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	_, err = events.FindActive(ctx)
	assert.ErrorIs(t, err, domain.ErrNoActiveEvent)

	latest, err := events.FindLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.True(t, latest.Ended)
}

func TestEventUpdateReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()
	event := &entities.Event{Started: true, TotalRounds: 2}
	require.NoError(t, s.Events().Create(ctx, event))

	got, err := s.Events().FindByID(ctx, event.ID)
	require.NoError(t, err)
	got.CurrentRound = 2

	again, err := s.Events().FindByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, again.CurrentRound, "mutating a result must not touch the store")

	require.NoError(t, s.Events().Update(ctx, got))
	again, err = s.Events().FindByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, again.CurrentRound)

	assert.ErrorIs(t, s.Events().Update(ctx, &entities.Event{ID: 999}), domain.ErrEventNotFound)
}

func TestRoundPhases(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore()
	rounds := s.Rounds()

	r := &entities.Round{EventID: 1, Number: 1, Name: "one"}
	require.NoError(t, rounds.Create(ctx, r))
	assert.Equal(t, clock.Now(), r.StartedAt)

	open, err := rounds.FindOpen(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseMingling, open.Phase())

	require.NoError(t, rounds.MarkListShown(ctx, r.ID, clock.Now()))
	open, err = rounds.FindOpen(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseCollecting, open.Phase())

	require.NoError(t, rounds.MarkEnded(ctx, r.ID, clock.Now()))
	_, err = rounds.FindOpen(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrRoundNotFound)

	closed, err := rounds.FindByNumber(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseClosed, closed.Phase())
	_, err = rounds.FindByNumber(ctx, 1, 2)
	assert.ErrorIs(t, err, domain.ErrRoundNotFound)
}

func TestParticipants(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()
	ps := s.Participants()

	for _, p := range []*entities.Participant{
		{EventID: 1, UserID: "z", DisplayName: "Zoe Park"},
		{EventID: 1, UserID: "a", DisplayName: "Ann Lee"},
		{EventID: 2, UserID: "a", DisplayName: "Ann Lee"},
	} {
		require.NoError(t, ps.Create(ctx, p))
	}
	err := ps.Create(ctx, &entities.Participant{EventID: 1, UserID: "a", DisplayName: "Again"})
	assert.ErrorIs(t, err, domain.ErrDuplicateRegistration)

	list, err := ps.FindByEventID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Ann Lee", list[0].DisplayName)
	assert.Equal(t, "Zoe Park", list[1].DisplayName)

	found, err := ps.Search(ctx, 1, "PARK")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "z", found[0].UserID)

	_, err = ps.FindByEventIDAndUserID(ctx, 2, "z")
	assert.ErrorIs(t, err, domain.ErrParticipantNotFound)
	_, err = ps.FindByID(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrParticipantNotFound)
}

func TestOpinionsAndRoundMessages(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	for _, o := range []*entities.Opinion{
		{EventID: 1, RoundNumber: 2, AuthorID: 1, TargetID: 2, Text: "later"},
		{EventID: 1, RoundNumber: 1, AuthorID: 3, TargetID: 2, Text: "earlier"},
		{EventID: 1, RoundNumber: 1, AuthorID: 1, TargetID: 3, Text: "other"},
	} {
		require.NoError(t, s.Opinions().Create(ctx, o))
	}
	about, err := s.Opinions().FindByTarget(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, about, 2)
	assert.Equal(t, "earlier", about[0].Text)
	assert.Equal(t, "later", about[1].Text)

	mine, err := s.Opinions().FindByAuthorAndRound(ctx, 1, 1, 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, uint(3), mine[0].TargetID)

	msgs := s.RoundMessages()
	m := &entities.RoundMessage{EventID: 1, RoundNumber: 1, ParticipantID: 2, ChatID: "c", MessageID: "m"}
	require.NoError(t, msgs.Create(ctx, m))
	assert.ErrorIs(t, msgs.Create(ctx, &entities.RoundMessage{EventID: 1, RoundNumber: 1, ParticipantID: 2}), domain.ErrDuplicateRoundMessage)

	got, err := msgs.Find(ctx, 1, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, entities.MessageHandle{ChatID: "c", MessageID: "m"}, got.Handle())
	_, err = msgs.Find(ctx, 1, 2, 2)
	assert.ErrorIs(t, err, domain.ErrRoundMessageNotFound)

	byRound, err := msgs.FindByRound(ctx, 1, 1)
	require.NoError(t, err)
	assert.Len(t, byRound, 1)
}
