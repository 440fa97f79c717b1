package application

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roundbot/internal/domain"
	"roundbot/internal/domain/view"
)

func TestViewTrackerDefaultsToIdle(t *testing.T) {
	tr := NewViewTracker()
	assert.Equal(t, view.Idle{}, tr.Get(view.Key{EventID: 1, RoundNumber: 1, ParticipantID: 1}))
	assert.Equal(t, 0, tr.Len())
}

func TestViewTrackerTransitions(t *testing.T) {
	tr := NewViewTracker()
	key := view.Key{EventID: 1, RoundNumber: 1, ParticipantID: 7}

	state, err := tr.Transition(key, toWriting(9, "Bob Stone"))
	require.NoError(t, err)
	assert.Equal(t, view.Writing{TargetID: 9, TargetName: "Bob Stone"}, state)

	// switching target while writing is allowed
	state, err = tr.Transition(key, toWriting(10, "Eve Moss"))
	require.NoError(t, err)
	assert.Equal(t, view.Writing{TargetID: 10, TargetName: "Eve Moss"}, state)

	state, err = tr.Transition(key, toListing)
	require.NoError(t, err)
	assert.Equal(t, view.Listing{}, state)

	state, err = tr.Transition(key, toDone)
	require.NoError(t, err)
	assert.Equal(t, view.Done{}, state)

	_, err = tr.Transition(key, toWriting(9, "Bob Stone"))
	assert.ErrorIs(t, err, domain.ErrAlreadyDone)
	_, err = tr.Transition(key, toListing)
	assert.ErrorIs(t, err, domain.ErrAlreadyDone)
	assert.Equal(t, view.Done{}, tr.Get(key))
}

func TestViewTrackerFailedTransitionKeepsState(t *testing.T) {
	tr := NewViewTracker()
	key := view.Key{EventID: 1, RoundNumber: 1, ParticipantID: 1}
	require.NoError(t, tr.Set(key, view.Writing{TargetID: 2, TargetName: "Ann Lee"}))

	boom := errors.New("boom")
	_, err := tr.Transition(key, func(view.State) (view.State, error) { return view.Listing{}, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, view.Writing{TargetID: 2, TargetName: "Ann Lee"}, tr.Get(key))
}

func TestViewTrackerCloseRound(t *testing.T) {
	tr := NewViewTracker()
	r1 := view.Key{EventID: 1, RoundNumber: 1, ParticipantID: 1}
	r1b := view.Key{EventID: 1, RoundNumber: 1, ParticipantID: 2}
	r2 := view.Key{EventID: 1, RoundNumber: 2, ParticipantID: 1}
	require.NoError(t, tr.Set(r1, view.Listing{}))
	require.NoError(t, tr.Set(r1b, view.Done{}))
	require.NoError(t, tr.Set(r2, view.Listing{}))

	tr.CloseRound(1, 1)

	assert.True(t, tr.IsClosed(1, 1))
	assert.False(t, tr.IsClosed(1, 2))
	assert.Equal(t, 1, tr.Len())
	assert.Equal(t, view.Idle{}, tr.Get(r1))
	assert.ErrorIs(t, tr.Set(r1, view.Listing{}), domain.ErrRoundClosed)
	_, err := tr.Transition(r1b, toDone)
	assert.ErrorIs(t, err, domain.ErrRoundClosed)
	assert.NoError(t, tr.Set(r2, view.Done{}))
}

func TestViewTrackerConcurrentTransitions(t *testing.T) {
	tr := NewViewTracker()
	key := view.Key{EventID: 1, RoundNumber: 1, ParticipantID: 1}
	require.NoError(t, tr.Set(key, view.Listing{}))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tr.Transition(key, func(cur view.State) (view.State, error) {
				if _, ok := cur.(view.Listing); !ok {
					return nil, domain.ErrAlreadyDone
				}
				return view.Done{}, nil
			})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
	assert.Equal(t, view.Done{}, tr.Get(key))
}

func TestViewTrackerListingRequiresWriting(t *testing.T) {
	tr := NewViewTracker()
	key := view.Key{EventID: 1, RoundNumber: 1, ParticipantID: 1}

	_, err := tr.Transition(key, toListing)
	assert.ErrorIs(t, err, domain.ErrNoWritingSession)
	require.NoError(t, tr.Set(key, view.Listing{}))
	_, err = tr.Transition(key, toListing)
	assert.ErrorIs(t, err, domain.ErrNoWritingSession)

	// the window expiry moves every state but Done to the list
	state, err := tr.Transition(key, expireWindow)
	require.NoError(t, err)
	assert.Equal(t, view.Listing{}, state)
	require.NoError(t, tr.Set(key, view.Done{}))
	_, err = tr.Transition(key, expireWindow)
	assert.ErrorIs(t, err, domain.ErrAlreadyDone)
}

func TestViewTrackerForgetEvent(t *testing.T) {
	tr := NewViewTracker()
	old := view.Key{EventID: 1, RoundNumber: 2, ParticipantID: 1}
	cur := view.Key{EventID: 2, RoundNumber: 1, ParticipantID: 1}
	require.NoError(t, tr.Set(old, view.Listing{}))
	require.NoError(t, tr.Set(cur, view.Listing{}))
	tr.CloseRound(1, 1)
	tr.CloseRound(2, 1)

	tr.ForgetEvent(1)

	assert.False(t, tr.IsClosed(1, 1))
	assert.True(t, tr.IsClosed(2, 1))
	assert.Equal(t, 1, tr.ClosedRounds())
	assert.Equal(t, 0, tr.Len())
	assert.Equal(t, view.Idle{}, tr.Get(old))
}
