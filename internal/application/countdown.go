package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"roundbot/internal/domain"
	"roundbot/internal/domain/entities"
	"roundbot/internal/domain/view"
)

const (
	DefaultWindow       = 10 * time.Minute
	DefaultTickInterval = time.Minute
)

// SurfaceRenderer pushes the view of one participant to their live message.
type SurfaceRenderer interface {
	RenderTick(ctx context.Context, surface entities.RoundMessage, state view.State, remaining int) error
}

type countdownTask struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}
}

// Scheduler runs one countdown goroutine per participant of a collecting
// round. Each task ticks every interval until the window elapses, refreshing
// the participant's live message with the minutes left.
type Scheduler struct {
	clock    clockwork.Clock
	views    *ViewTracker
	renderer SurfaceRenderer
	window   time.Duration
	interval time.Duration

	base   context.Context
	stop   context.CancelFunc
	mu     sync.Mutex
	tasks  map[view.Key]*countdownTask
	closed bool
}

// NewScheduler creates a Scheduler. window must be a positive multiple of interval.
func NewScheduler(clock clockwork.Clock, views *ViewTracker, renderer SurfaceRenderer, window, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if window < interval {
		window = DefaultWindow
	}
	base, stop := context.WithCancel(context.Background())
	return &Scheduler{
		clock:    clock,
		views:    views,
		renderer: renderer,
		window:   window,
		interval: interval,
		base:     base,
		stop:     stop,
		tasks:    make(map[view.Key]*countdownTask),
	}
}

// Ticks is the number of renders a full window produces.
func (s *Scheduler) Ticks() int {
	return int(s.window / s.interval)
}

// Remaining returns the whole ticks left in the window opened at listShownAt.
func (s *Scheduler) Remaining(listShownAt time.Time) int {
	elapsed := s.clock.Now().Sub(listShownAt)
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := s.Ticks() - int(elapsed/s.interval)
	return max(0, remaining)
}

// Start registers and launches the countdown of one participant. It returns
// false when a task already runs for the key or the scheduler is shut down.
func (s *Scheduler) Start(key view.Key, surface entities.RoundMessage, listShownAt time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if _, exists := s.tasks[key]; exists {
		return false
	}
	ctx, cancel := context.WithCancel(s.base)
	t := &countdownTask{
		id:     uuid.New().String()[:8],
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.tasks[key] = t
	go s.run(ctx, t, key, surface, listShownAt)

	log.Debug().
		Str("task_id", t.id).
		Stringer("key", key).
		Time("list_shown_at", listShownAt).
		Msg("countdown started")
	return true
}

func (s *Scheduler) run(ctx context.Context, t *countdownTask, key view.Key, surface entities.RoundMessage, listShownAt time.Time) {
	defer close(t.done)
	defer s.forget(key, t)

	ticks := s.Ticks()
	for n := 1; n <= ticks; n++ {
		deadline := listShownAt.Add(time.Duration(n) * s.interval)
		wait := deadline.Sub(s.clock.Now())
		if wait <= 0 && n < ticks {
			// Admitted mid-window: this tick is already behind us.
			continue
		}
		if wait > 0 {
			timer := s.clock.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.Chan():
			}
		}
		if ctx.Err() != nil {
			return
		}

		state := s.views.Get(key)
		if _, done := state.(view.Done); done {
			log.Debug().Str("task_id", t.id).Stringer("key", key).Msg("countdown stopped: participant done")
			return
		}

		remaining := ticks - n
		if remaining == 0 {
			next, err := s.views.Transition(key, expireWindow)
			if err != nil {
				if !errors.Is(err, domain.ErrAlreadyDone) && !errors.Is(err, domain.ErrRoundClosed) {
					log.Warn().Err(err).Str("task_id", t.id).Stringer("key", key).Msg("countdown: force listing failed")
				}
				return
			}
			state = next
		}

		if ctx.Err() != nil {
			return
		}
		if err := s.renderer.RenderTick(ctx, surface, state, remaining); err != nil {
			log.Warn().
				Err(err).
				Str("task_id", t.id).
				Stringer("key", key).
				Int("remaining", remaining).
				Msg("countdown render failed")
		}
	}
	log.Debug().Str("task_id", t.id).Stringer("key", key).Msg("countdown finished")
}

func (s *Scheduler) forget(key view.Key, t *countdownTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tasks[key] == t {
		delete(s.tasks, key)
	}
}

// Cancel stops the countdown of one participant and waits for it to exit.
func (s *Scheduler) Cancel(key view.Key) bool {
	s.mu.Lock()
	t, ok := s.tasks[key]
	if ok {
		delete(s.tasks, key)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	t.cancel()
	<-t.done
	return true
}

// CancelRound stops every countdown of the round. When it returns no task of
// the round will render again.
func (s *Scheduler) CancelRound(eventID uint, number int) int {
	rk := roundKey{eventID: eventID, number: number}
	s.mu.Lock()
	var victims []*countdownTask
	for k, t := range s.tasks {
		if roundOf(k) == rk {
			victims = append(victims, t)
			delete(s.tasks, k)
		}
	}
	s.mu.Unlock()

	for _, t := range victims {
		t.cancel()
	}
	for _, t := range victims {
		<-t.done
	}
	if len(victims) > 0 {
		log.Info().Uint("event_id", eventID).Int("round", number).Int("cancelled", len(victims)).Msg("countdowns cancelled")
	}
	return len(victims)
}

// Active reports whether a countdown runs for key.
func (s *Scheduler) Active(key view.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[key]
	return ok
}

// Len returns the number of running countdowns.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Shutdown cancels every countdown and waits for them.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	s.closed = true
	victims := make([]*countdownTask, 0, len(s.tasks))
	for k, t := range s.tasks {
		victims = append(victims, t)
		delete(s.tasks, k)
	}
	s.mu.Unlock()

	s.stop()
	for _, t := range victims {
		<-t.done
	}
}
