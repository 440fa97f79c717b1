package application

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"roundbot/internal/domain/entities"
	"roundbot/internal/infrastructure/memory"
	"roundbot/internal/ports/output"
)

var errUnreachable = errors.New("recipient unreachable")

// stubTranslator renders "key" or "key map[...]" so tests can match on data.
type stubTranslator struct{}

func (stubTranslator) T(_, key string, data map[string]any) string {
	if len(data) == 0 {
		return key
	}
	return fmt.Sprintf("%s %v", key, data)
}

type sentMessage struct {
	Recipient string
	Handle    entities.MessageHandle
	Msg       output.Message
}

type editedMessage struct {
	Handle entities.MessageHandle
	Msg    output.Message
}

// recordingNotifier records every call; recipients in failSend and chats in
// failEdit fail.
type recordingNotifier struct {
	mu       sync.Mutex
	seq      int
	sent     []sentMessage
	edits    []editedMessage
	deleted  []entities.MessageHandle
	failSend map[string]bool
	failEdit map[string]bool
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{failSend: map[string]bool{}, failEdit: map[string]bool{}}
}

func (n *recordingNotifier) Send(_ context.Context, recipient string, msg output.Message) (entities.MessageHandle, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failSend[recipient] {
		return entities.MessageHandle{}, errUnreachable
	}
	n.seq++
	h := entities.MessageHandle{ChatID: "dm-" + recipient, MessageID: fmt.Sprintf("m%d", n.seq)}
	n.sent = append(n.sent, sentMessage{Recipient: recipient, Handle: h, Msg: msg})
	return h, nil
}

func (n *recordingNotifier) Edit(_ context.Context, handle entities.MessageHandle, msg output.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failEdit[handle.ChatID] {
		return errUnreachable
	}
	n.edits = append(n.edits, editedMessage{Handle: handle, Msg: msg})
	return nil
}

func (n *recordingNotifier) Delete(_ context.Context, handle entities.MessageHandle) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deleted = append(n.deleted, handle)
	return nil
}

func (n *recordingNotifier) failSendTo(userID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failSend[userID] = true
}

func (n *recordingNotifier) sentTo(userID string) []output.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []output.Message
	for _, s := range n.sent {
		if s.Recipient == userID {
			out = append(out, s.Msg)
		}
	}
	return out
}

func (n *recordingNotifier) editsOf(userID string) []output.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []output.Message
	for _, e := range n.edits {
		if e.Handle.ChatID == "dm-"+userID {
			out = append(out, e.Msg)
		}
	}
	return out
}

func (n *recordingNotifier) lastEditOf(userID string) (output.Message, bool) {
	edits := n.editsOf(userID)
	if len(edits) == 0 {
		return output.Message{}, false
	}
	return edits[len(edits)-1], true
}

func (n *recordingNotifier) deletedHandles() []entities.MessageHandle {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.deleted)
}

func (n *recordingNotifier) editCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.edits)
}

type harness struct {
	ctx          context.Context
	clock        *clockwork.FakeClock
	store        *memory.Store
	notifier     *recordingNotifier
	rounds       *RoundService
	participants *ParticipantService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC))
	store := memory.NewStore(clock)
	notifier := newRecordingNotifier()
	rounds := NewRoundService(repositories(store), notifier, stubTranslator{}, clock, Settings{
		Locale:       "en",
		Window:       DefaultWindow,
		TickInterval: DefaultTickInterval,
	})
	t.Cleanup(rounds.Shutdown)
	return &harness{
		ctx:          context.Background(),
		clock:        clock,
		store:        store,
		notifier:     notifier,
		rounds:       rounds,
		participants: NewParticipantService(rounds),
	}
}

func repositories(store *memory.Store) Repositories {
	return Repositories{
		Events:        store.Events(),
		Rounds:        store.Rounds(),
		Participants:  store.Participants(),
		Opinions:      store.Opinions(),
		RoundMessages: store.RoundMessages(),
	}
}

func (h *harness) register(t *testing.T, userID, name string) *entities.Participant {
	t.Helper()
	p, err := h.participants.Register(h.ctx, entities.RegistrationForm{UserID: userID, FullName: name})
	require.NoError(t, err)
	return p
}

// collectingRound starts an event, registers the given users and brings
// round 1 to the collecting phase.
func (h *harness) collectingRound(t *testing.T, users ...string) (*entities.Event, *entities.Round, []*entities.Participant) {
	t.Helper()
	event, err := h.rounds.StartEvent(h.ctx, 3)
	require.NoError(t, err)
	participants := make([]*entities.Participant, 0, len(users))
	for _, u := range users {
		participants = append(participants, h.register(t, u, "User "+u))
	}
	_, _, err = h.rounds.OpenRound(h.ctx, "")
	require.NoError(t, err)
	round, _, err := h.rounds.BeginCollecting(h.ctx)
	require.NoError(t, err)
	return event, round, participants
}

func targetIDs(msg output.Message) []uint {
	ids := make([]uint, 0, len(msg.Controls.Targets))
	for _, t := range msg.Controls.Targets {
		ids = append(ids, t.ParticipantID)
	}
	return ids
}

func hasButton(msg output.Message, a output.Action) bool {
	return slices.ContainsFunc(msg.Controls.Buttons, func(b output.Button) bool { return b.Action == a })
}
