package application

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roundbot/internal/domain"
	"roundbot/internal/domain/entities"
	"roundbot/internal/domain/view"
	"roundbot/internal/ports/output"
)

func TestStartEventRejectsInvalidRoundCount(t *testing.T) {
	h := newHarness(t)
	for _, n := range []int{0, -1} {
		_, err := h.rounds.StartEvent(h.ctx, n)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	}
	_, err := h.store.Events().FindLatest(h.ctx)
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestStartEventEndsPreviousEvent(t *testing.T) {
	h := newHarness(t)
	prev, _, _ := h.collectingRound(t, "a", "b")
	require.Equal(t, 2, h.rounds.Countdowns().Len())

	event, err := h.rounds.StartEvent(h.ctx, 2)
	require.NoError(t, err)
	assert.NotEqual(t, prev.ID, event.ID)
	assert.Equal(t, 0, h.rounds.Countdowns().Len())
	assert.False(t, h.rounds.Views().IsClosed(prev.ID, 1), "an ended event leaves nothing in the tracker")
	assert.Equal(t, 0, h.rounds.Views().ClosedRounds())
	assert.Len(t, h.notifier.deletedHandles(), 2)

	old, err := h.store.Events().FindByID(h.ctx, prev.ID)
	require.NoError(t, err)
	assert.True(t, old.Ended)
	rounds := h.store.Rounds().Rounds(prev.ID)
	require.Len(t, rounds, 1)
	assert.Equal(t, domain.PhaseClosed, rounds[0].Phase())

	active, err := h.store.Events().FindActive(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, event.ID, active.ID)
	assert.Equal(t, 0, active.CurrentRound)
}

func TestOpenRoundAnnouncesToEveryone(t *testing.T) {
	h := newHarness(t)
	event, err := h.rounds.StartEvent(h.ctx, 2)
	require.NoError(t, err)
	a := h.register(t, "a", "Ann Lee")
	h.register(t, "b", "Bob Stone")

	round, report, err := h.rounds.OpenRound(h.ctx, "  Warm up ")
	require.NoError(t, err)
	assert.Equal(t, 1, round.Number)
	assert.Equal(t, "Warm up", round.Name)
	assert.Equal(t, domain.PhaseMingling, round.Phase())
	assert.Equal(t, domain.DeliveryReport{Delivered: 2, Total: 2}, report)

	sent := h.notifier.sentTo("a")
	require.Len(t, sent, 1)
	assert.True(t, strings.HasPrefix(sent[0].Text, "round.announce"))
	assert.Empty(t, sent[0].Controls.Targets)

	surface, err := h.store.RoundMessages().Find(h.ctx, event.ID, 1, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "dm-a", surface.ChatID)

	current, err := h.store.Events().FindActive(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, current.CurrentRound)
	assert.Equal(t, h.clock.Now(), current.RoundStartedAt)
}

func TestOpenRoundDefaultName(t *testing.T) {
	h := newHarness(t)
	_, err := h.rounds.StartEvent(h.ctx, 1)
	require.NoError(t, err)

	round, _, err := h.rounds.OpenRound(h.ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "round.default_name map[Number:1]", round.Name)
}

func TestRoundSequenceErrors(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.rounds.OpenRound(h.ctx, "")
	assert.ErrorIs(t, err, domain.ErrNoActiveEvent)

	_, err = h.rounds.StartEvent(h.ctx, 2)
	require.NoError(t, err)
	h.register(t, "a", "Ann Lee")

	_, _, err = h.rounds.NextRound(h.ctx, "")
	assert.ErrorIs(t, err, domain.ErrNotStarted)
	_, _, err = h.rounds.BeginCollecting(h.ctx)
	assert.ErrorIs(t, err, domain.ErrNotStarted)

	_, _, err = h.rounds.StartFirstRound(h.ctx, "")
	require.NoError(t, err)
	_, _, err = h.rounds.StartFirstRound(h.ctx, "")
	assert.ErrorIs(t, err, domain.ErrAlreadyStarted)

	_, _, err = h.rounds.BeginCollecting(h.ctx)
	require.NoError(t, err)
	_, _, err = h.rounds.BeginCollecting(h.ctx)
	assert.ErrorIs(t, err, domain.ErrAlreadyCollecting)

	second, _, err := h.rounds.NextRound(h.ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, second.Number)
	assert.Equal(t, 0, h.rounds.Countdowns().Len(), "round 1 countdowns are gone")

	_, _, err = h.rounds.NextRound(h.ctx, "")
	assert.ErrorIs(t, err, domain.ErrAllRoundsDone)

	_, err = h.rounds.CloseRound(h.ctx)
	require.NoError(t, err)
	_, err = h.rounds.CloseRound(h.ctx)
	assert.ErrorIs(t, err, domain.ErrNoOpenRound)
	_, _, err = h.rounds.BeginCollecting(h.ctx)
	assert.ErrorIs(t, err, domain.ErrNoOpenRound)
}

func TestBeginCollectingWithoutAnnouncedParticipants(t *testing.T) {
	h := newHarness(t)
	event, err := h.rounds.StartEvent(h.ctx, 1)
	require.NoError(t, err)
	_, _, err = h.rounds.OpenRound(h.ctx, "")
	require.NoError(t, err)

	_, _, err = h.rounds.BeginCollecting(h.ctx)
	assert.ErrorIs(t, err, domain.ErrNoParticipants)

	round, err := h.store.Rounds().FindOpen(h.ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseMingling, round.Phase())
}

func TestBeginCollectingShowsListAndStartsCountdowns(t *testing.T) {
	h := newHarness(t)
	event, round, ps := h.collectingRound(t, "a", "b", "c")
	b, c := ps[1], ps[2]

	assert.Equal(t, domain.PhaseCollecting, round.Phase())
	assert.Equal(t, h.clock.Now(), round.ListShownAt)
	assert.Equal(t, 3, h.rounds.Countdowns().Len())

	msg, ok := h.notifier.lastEditOf("a")
	require.True(t, ok)
	assert.Equal(t, "round.list map[Minutes:10]", msg.Text)
	assert.ElementsMatch(t, []uint{b.ID, c.ID}, targetIDs(msg))
	assert.True(t, hasButton(msg, output.ActionRefresh))
	assert.True(t, hasButton(msg, output.ActionDone))

	for _, p := range ps {
		key := view.Key{EventID: event.ID, RoundNumber: 1, ParticipantID: p.ID}
		assert.Equal(t, view.Listing{}, h.rounds.Views().Get(key))
		assert.True(t, h.rounds.Countdowns().Active(key))
	}
}

func TestDeliveryFailuresAreIsolated(t *testing.T) {
	h := newHarness(t)
	_, err := h.rounds.StartEvent(h.ctx, 1)
	require.NoError(t, err)
	h.register(t, "a", "Ann Lee")
	h.register(t, "b", "Bob Stone")
	h.register(t, "c", "Cid Moss")
	h.notifier.failSendTo("b")

	_, report, err := h.rounds.OpenRound(h.ctx, "")
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryReport{Delivered: 2, Total: 3}, report)
	assert.False(t, report.Complete())
	assert.Equal(t, 1, report.Failed())

	h.notifier.failEdit["dm-c"] = true
	_, report, err = h.rounds.BeginCollecting(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryReport{Delivered: 1, Total: 2}, report)
	// c still gets a countdown; b has no surface and none.
	assert.Equal(t, 2, h.rounds.Countdowns().Len())
}

func TestCloseRoundNotifiesAndStopsRuntime(t *testing.T) {
	h := newHarness(t)
	event, _, ps := h.collectingRound(t, "a", "b")

	report, err := h.rounds.CloseRound(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryReport{Delivered: 2, Total: 2}, report)
	assert.Equal(t, 0, h.rounds.Countdowns().Len())
	assert.True(t, h.rounds.Views().IsClosed(event.ID, 1))

	msg, ok := h.notifier.lastEditOf("a")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(msg.Text, "round.closed"))
	assert.Empty(t, msg.Controls.Targets)
	assert.Empty(t, h.notifier.deletedHandles(), "a closed round keeps its notice")

	edits := h.notifier.editCount()
	h.clock.Advance(15 * time.Minute)
	assert.Never(t, func() bool { return h.notifier.editCount() != edits }, 50*time.Millisecond, 5*time.Millisecond)

	err = h.participants.SubmitOpinion(h.ctx, event.ID, 1, ps[0].ID, ps[1].ID, "late")
	assert.ErrorIs(t, err, domain.ErrRoundClosed)
}

func TestNextRoundRetiresPreviousMessages(t *testing.T) {
	h := newHarness(t)
	event, _, ps := h.collectingRound(t, "a", "b")
	require.NoError(t, h.participants.ChooseTarget(h.ctx, "a", ps[1].ID))
	surfaces, err := h.store.RoundMessages().FindByRound(h.ctx, event.ID, 1)
	require.NoError(t, err)
	var want []entities.MessageHandle
	for _, m := range surfaces {
		want = append(want, m.Handle())
	}

	_, _, err = h.rounds.NextRound(h.ctx, "")
	require.NoError(t, err)

	assert.ElementsMatch(t, want, h.notifier.deletedHandles())
	assert.Equal(t, 1, h.rounds.Views().ClosedRounds())
	// buttons of the old message resolve onto the new mingling round
	assert.ErrorIs(t, h.participants.CancelWriting(h.ctx, "a"), domain.ErrNotCollecting)
	assert.ErrorIs(t, h.participants.SignalDone(h.ctx, "a"), domain.ErrNotCollecting)
}

func TestCloseEventBroadcastsEnd(t *testing.T) {
	h := newHarness(t)
	event, _, _ := h.collectingRound(t, "a", "b")
	h.notifier.failSendTo("b")

	report, err := h.rounds.CloseEvent(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryReport{Delivered: 1, Total: 2}, report)

	sent := h.notifier.sentTo("a")
	assert.Equal(t, "event.ended", sent[len(sent)-1].Text)
	assert.Equal(t, 0, h.rounds.Countdowns().Len())
	assert.Equal(t, 0, h.rounds.Views().ClosedRounds())
	assert.Equal(t, 0, h.rounds.Views().Len())
	assert.Len(t, h.notifier.deletedHandles(), 2)

	ended, err := h.store.Events().FindByID(h.ctx, event.ID)
	require.NoError(t, err)
	assert.True(t, ended.Ended)

	_, err = h.rounds.CloseEvent(h.ctx)
	assert.ErrorIs(t, err, domain.ErrNoActiveEvent)
}

func TestRecoverResumesCountdowns(t *testing.T) {
	h := newHarness(t)
	event, _, ps := h.collectingRound(t, "a", "b")
	h.rounds.Shutdown()
	h.clock.Advance(3 * time.Minute)

	restarted := NewRoundService(repositories(h.store), h.notifier, stubTranslator{}, h.clock, Settings{
		Locale:       "en",
		Window:       DefaultWindow,
		TickInterval: DefaultTickInterval,
	})
	t.Cleanup(restarted.Shutdown)

	n, err := restarted.Recover(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	key := view.Key{EventID: event.ID, RoundNumber: 1, ParticipantID: ps[0].ID}
	assert.Equal(t, view.Listing{}, restarted.Views().Get(key))
	assert.True(t, restarted.Countdowns().Active(key))

	n, err = restarted.Recover(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "tasks already running")
}

func TestRecoverSkipsExpiredWindow(t *testing.T) {
	h := newHarness(t)
	h.collectingRound(t, "a", "b")
	h.rounds.Shutdown()
	h.clock.Advance(11 * time.Minute)

	restarted := NewRoundService(repositories(h.store), h.notifier, stubTranslator{}, h.clock, Settings{Locale: "en"})
	t.Cleanup(restarted.Shutdown)
	n, err := restarted.Recover(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRecoverWithoutEvent(t *testing.T) {
	h := newHarness(t)
	n, err := h.rounds.Recover(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestStatus(t *testing.T) {
	h := newHarness(t)

	status, err := h.rounds.Status(h.ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "admin.status.none", status)

	_, err = h.rounds.StartEvent(h.ctx, 2)
	require.NoError(t, err)
	h.register(t, "a", "Ann Lee")
	status, err = h.rounds.Status(h.ctx, "")
	require.NoError(t, err)
	assert.Contains(t, status, "admin.status.not_started")

	_, _, err = h.rounds.OpenRound(h.ctx, "")
	require.NoError(t, err)
	status, err = h.rounds.Status(h.ctx, "")
	require.NoError(t, err)
	assert.Contains(t, status, "admin.status.phase_mingling map[Announced:1]")

	_, _, err = h.rounds.BeginCollecting(h.ctx)
	require.NoError(t, err)
	status, err = h.rounds.Status(h.ctx, "")
	require.NoError(t, err)
	assert.Contains(t, status, "admin.status.phase_collecting map[Countdowns:1 Minutes:10]")

	_, err = h.rounds.CloseEvent(h.ctx)
	require.NoError(t, err)
	status, err = h.rounds.Status(h.ctx, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(status, "admin.status.ended"))
}

func TestListParticipantsAndOpinionsAbout(t *testing.T) {
	h := newHarness(t)
	event, _, ps := h.collectingRound(t, "a", "b")
	require.NoError(t, h.participants.ChooseTarget(h.ctx, "a", ps[1].ID))
	require.NoError(t, h.participants.SubmitOpinion(h.ctx, event.ID, 1, ps[0].ID, ps[1].ID, "kind"))

	all, err := h.rounds.ListParticipants(h.ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := h.rounds.ListParticipants(h.ctx, "  USER B ")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, ps[1].ID, found[0].ID)

	target, opinions, err := h.rounds.OpinionsAbout(h.ctx, ps[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "User b", target.DisplayName)
	require.Len(t, opinions, 1)
	assert.Equal(t, "kind", opinions[0].Text)

	_, _, err = h.rounds.OpinionsAbout(h.ctx, 999)
	assert.ErrorIs(t, err, domain.ErrParticipantNotFound)
}
