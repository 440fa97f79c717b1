package application

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"roundbot/internal/domain"
	"roundbot/internal/domain/entities"
	"roundbot/internal/domain/view"
	"roundbot/internal/ports/input"
	"roundbot/internal/ports/output"
)

var _ input.RoundUseCase = (*RoundService)(nil)

// Repositories groups the store ports used by the services.
type Repositories struct {
	Events        output.EventRepository
	Rounds        output.RoundRepository
	Participants  output.ParticipantRepository
	Opinions      output.OpinionRepository
	RoundMessages output.RoundMessageRepository
}

// Settings tunes the services.
type Settings struct {
	Locale       string
	Window       time.Duration
	TickInterval time.Duration
}

// RoundService owns the authoritative phase of the current round and the
// per-process runtime state (view states and countdowns) attached to it.
type RoundService struct {
	eventRepo       output.EventRepository
	roundRepo       output.RoundRepository
	participantRepo output.ParticipantRepository
	opinionRepo     output.OpinionRepository
	messageRepo     output.RoundMessageRepository
	notifier        output.Notifier
	translator      output.T
	locale          string
	clock           clockwork.Clock

	presenter  *Presenter
	views      *ViewTracker
	countdowns *Scheduler
	shuffle    func([]string)

	// mu serializes phase transitions and late-joiner admission.
	mu sync.Mutex
}

func NewRoundService(
	repos Repositories,
	notifier output.Notifier,
	translator output.T,
	clock clockwork.Clock,
	settings Settings,
) *RoundService {
	views := NewViewTracker()
	presenter := NewPresenter(repos.Participants, repos.Opinions, notifier, translator, settings.Locale)
	return &RoundService{
		eventRepo:       repos.Events,
		roundRepo:       repos.Rounds,
		participantRepo: repos.Participants,
		opinionRepo:     repos.Opinions,
		messageRepo:     repos.RoundMessages,
		notifier:        notifier,
		translator:      translator,
		locale:          settings.Locale,
		clock:           clock,
		presenter:       presenter,
		views:           views,
		countdowns:      NewScheduler(clock, views, presenter, settings.Window, settings.TickInterval),
		shuffle: func(s []string) {
			rand.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
		},
	}
}

func (s *RoundService) Views() *ViewTracker {
	return s.views
}

func (s *RoundService) Countdowns() *Scheduler {
	return s.countdowns
}

// Shutdown stops every running countdown.
func (s *RoundService) Shutdown() {
	s.countdowns.Shutdown()
}

// StartEvent ends any active event and creates a new one with roundCount rounds.
func (s *RoundService) StartEvent(ctx context.Context, roundCount int) (*entities.Event, error) {
	if roundCount < 1 {
		return nil, fmt.Errorf("round count %d: %w", roundCount, domain.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, err := s.eventRepo.FindActive(ctx); err == nil {
		if cur, err := s.roundRepo.FindOpen(ctx, prev.ID); err == nil {
			if err := s.closeRound(ctx, cur); err != nil {
				return nil, err
			}
			s.retireSurfaces(ctx, cur)
		} else if !errors.Is(err, domain.ErrRoundNotFound) {
			return nil, fmt.Errorf("find open round: %w", err)
		}
		s.views.ForgetEvent(prev.ID)
	} else if !errors.Is(err, domain.ErrNoActiveEvent) {
		return nil, fmt.Errorf("find active event: %w", err)
	}

	ended, err := s.eventRepo.EndActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("end active events: %w", err)
	}
	event := &entities.Event{
		Started:     true,
		TotalRounds: roundCount,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	log.Info().Uint("event_id", event.ID).Int("rounds", roundCount).Int64("force_ended", ended).Msg("event started")
	return event, nil
}

// OpenRound opens the first round when none was opened yet, the next one otherwise.
func (s *RoundService) OpenRound(ctx context.Context, name string) (*entities.Round, domain.DeliveryReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, err := s.eventRepo.FindActive(ctx)
	if err != nil {
		return nil, domain.DeliveryReport{}, err
	}
	return s.openRound(ctx, event, name, event.CurrentRound == 0)
}

// StartFirstRound opens round 1; it fails with domain.ErrAlreadyStarted afterwards.
func (s *RoundService) StartFirstRound(ctx context.Context, name string) (*entities.Round, domain.DeliveryReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, err := s.eventRepo.FindActive(ctx)
	if err != nil {
		return nil, domain.DeliveryReport{}, err
	}
	return s.openRound(ctx, event, name, true)
}

// NextRound closes the current round and opens the following one.
func (s *RoundService) NextRound(ctx context.Context, name string) (*entities.Round, domain.DeliveryReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, err := s.eventRepo.FindActive(ctx)
	if err != nil {
		return nil, domain.DeliveryReport{}, err
	}
	return s.openRound(ctx, event, name, false)
}

func (s *RoundService) openRound(ctx context.Context, event *entities.Event, name string, first bool) (*entities.Round, domain.DeliveryReport, error) {
	var report domain.DeliveryReport
	switch {
	case first && event.CurrentRound != 0:
		return nil, report, domain.ErrAlreadyStarted
	case !first && event.CurrentRound == 0:
		return nil, report, domain.ErrNotStarted
	case !first && !event.HasNextRound():
		return nil, report, domain.ErrAllRoundsDone
	}

	if prev, err := s.roundRepo.FindOpen(ctx, event.ID); err == nil {
		if err := s.closeRound(ctx, prev); err != nil {
			return nil, report, err
		}
		s.retireSurfaces(ctx, prev)
	} else if !errors.Is(err, domain.ErrRoundNotFound) {
		return nil, report, fmt.Errorf("find open round: %w", err)
	}

	number := event.CurrentRound + 1
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.translator.T(s.locale, "round.default_name", map[string]any{"Number": number})
	}
	now := s.clock.Now()
	round := &entities.Round{
		EventID:   event.ID,
		Number:    number,
		Name:      name,
		StartedAt: now,
	}
	if err := s.roundRepo.Create(ctx, round); err != nil {
		return nil, report, fmt.Errorf("create round: %w", err)
	}
	event.CurrentRound = number
	event.RoundStartedAt = now
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, report, fmt.Errorf("update event: %w", err)
	}
	log.Info().Uint("event_id", event.ID).Int("round", number).Str("name", name).Msg("round opened")

	report, err := s.broadcastRoundStart(ctx, round)
	return round, report, err
}

// BeginCollecting switches the open round to the collecting phase and starts
// the countdown of every reachable participant.
func (s *RoundService) BeginCollecting(ctx context.Context) (*entities.Round, domain.DeliveryReport, error) {
	var report domain.DeliveryReport
	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.eventRepo.FindActive(ctx)
	if err != nil {
		return nil, report, err
	}
	if event.CurrentRound == 0 {
		return nil, report, domain.ErrNotStarted
	}
	round, err := s.roundRepo.FindOpen(ctx, event.ID)
	if err != nil {
		if errors.Is(err, domain.ErrRoundNotFound) {
			return nil, report, domain.ErrNoOpenRound
		}
		return nil, report, fmt.Errorf("find open round: %w", err)
	}
	if round.Phase() == domain.PhaseCollecting {
		return nil, report, domain.ErrAlreadyCollecting
	}
	surfaces, err := s.messageRepo.FindByRound(ctx, event.ID, round.Number)
	if err != nil {
		return nil, report, fmt.Errorf("find round messages: %w", err)
	}
	if len(surfaces) == 0 {
		return nil, report, domain.ErrNoParticipants
	}

	now := s.clock.Now()
	if err := s.roundRepo.MarkListShown(ctx, round.ID, now); err != nil {
		return nil, report, fmt.Errorf("mark list shown: %w", err)
	}
	round.ListShownAt = now

	full := s.countdowns.Ticks()
	for _, surface := range surfaces {
		key := view.Key{EventID: event.ID, RoundNumber: round.Number, ParticipantID: surface.ParticipantID}
		if err := s.views.Set(key, view.Listing{}); err != nil {
			report.Record(err)
			continue
		}
		err := s.pushList(ctx, surface, full)
		report.Record(err)
		if err != nil {
			log.Warn().Err(err).Stringer("key", key).Msg("collecting view not delivered")
		}
		s.countdowns.Start(key, surface, now)
	}
	log.Info().
		Uint("event_id", event.ID).
		Int("round", round.Number).
		Int("delivered", report.Delivered).
		Int("total", report.Total).
		Msg("collecting started")
	return round, report, nil
}

func (s *RoundService) pushList(ctx context.Context, surface entities.RoundMessage, remaining int) error {
	msg, err := s.presenter.ListView(ctx, surface.EventID, surface.RoundNumber, surface.ParticipantID, remaining)
	if err != nil {
		return err
	}
	return s.presenter.Show(ctx, surface, msg)
}

// CloseRound ends the open round without opening another one.
func (s *RoundService) CloseRound(ctx context.Context) (domain.DeliveryReport, error) {
	var report domain.DeliveryReport
	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.eventRepo.FindActive(ctx)
	if err != nil {
		return report, err
	}
	round, err := s.roundRepo.FindOpen(ctx, event.ID)
	if err != nil {
		if errors.Is(err, domain.ErrRoundNotFound) {
			return report, domain.ErrNoOpenRound
		}
		return report, fmt.Errorf("find open round: %w", err)
	}
	if err := s.closeRound(ctx, round); err != nil {
		return report, err
	}

	surfaces, err := s.messageRepo.FindByRound(ctx, event.ID, round.Number)
	if err != nil {
		return report, fmt.Errorf("find round messages: %w", err)
	}
	msg := s.presenter.Text("round.closed", map[string]any{"Number": round.Number, "Name": round.Name})
	for _, surface := range surfaces {
		err := s.presenter.Show(ctx, surface, msg)
		report.Record(err)
		if err != nil {
			log.Warn().Err(err).Uint("participant_id", surface.ParticipantID).Msg("round closed notice not delivered")
		}
	}
	return report, nil
}

// closeRound stamps ended-at and tears down the runtime state of the round.
// Countdowns are cancelled before the round is marked closed in the store so
// that no task renders a phase that no longer exists.
func (s *RoundService) closeRound(ctx context.Context, round *entities.Round) error {
	s.countdowns.CancelRound(round.EventID, round.Number)
	s.views.CloseRound(round.EventID, round.Number)
	now := s.clock.Now()
	if err := s.roundRepo.MarkEnded(ctx, round.ID, now); err != nil {
		return fmt.Errorf("mark round ended: %w", err)
	}
	round.EndedAt = now
	log.Info().Uint("event_id", round.EventID).Int("round", round.Number).Msg("round closed")
	return nil
}

// retireSurfaces deletes the live messages of a round that was closed without
// a closing notice, so their controls cannot act on the next round. Failures
// are logged only.
func (s *RoundService) retireSurfaces(ctx context.Context, round *entities.Round) {
	surfaces, err := s.messageRepo.FindByRound(ctx, round.EventID, round.Number)
	if err != nil {
		log.Warn().Err(err).Uint("event_id", round.EventID).Int("round", round.Number).Msg("live messages not retired")
		return
	}
	for _, surface := range surfaces {
		if err := s.notifier.Delete(ctx, surface.Handle()); err != nil {
			log.Warn().
				Err(err).
				Uint("event_id", round.EventID).
				Int("round", round.Number).
				Uint("participant_id", surface.ParticipantID).
				Msg("live message not deleted")
		}
	}
}

// CloseEvent ends the active event and its current round, then tells every
// participant the event is over.
func (s *RoundService) CloseEvent(ctx context.Context) (domain.DeliveryReport, error) {
	var report domain.DeliveryReport
	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.eventRepo.FindActive(ctx)
	if err != nil {
		return report, err
	}
	event.Ended = true
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return report, fmt.Errorf("update event: %w", err)
	}
	if round, err := s.roundRepo.FindOpen(ctx, event.ID); err == nil {
		if err := s.closeRound(ctx, round); err != nil {
			return report, err
		}
		s.retireSurfaces(ctx, round)
	} else if !errors.Is(err, domain.ErrRoundNotFound) {
		return report, fmt.Errorf("find open round: %w", err)
	}
	s.views.ForgetEvent(event.ID)
	log.Info().Uint("event_id", event.ID).Msg("event closed")

	return s.broadcastEventEnd(ctx, event)
}

// Recover re-seeds countdowns of a round left collecting by a previous
// process. View states restart as Listing.
func (s *RoundService) Recover(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.eventRepo.FindActive(ctx)
	if errors.Is(err, domain.ErrNoActiveEvent) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	round, err := s.roundRepo.FindOpen(ctx, event.ID)
	if errors.Is(err, domain.ErrRoundNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("find open round: %w", err)
	}
	if round.Phase() != domain.PhaseCollecting || s.countdowns.Remaining(round.ListShownAt) == 0 {
		return 0, nil
	}
	surfaces, err := s.messageRepo.FindByRound(ctx, event.ID, round.Number)
	if err != nil {
		return 0, fmt.Errorf("find round messages: %w", err)
	}
	started := 0
	for _, surface := range surfaces {
		key := view.Key{EventID: event.ID, RoundNumber: round.Number, ParticipantID: surface.ParticipantID}
		if err := s.views.Set(key, view.Listing{}); err != nil {
			continue
		}
		if s.countdowns.Start(key, surface, round.ListShownAt) {
			started++
		}
	}
	log.Info().Uint("event_id", event.ID).Int("round", round.Number).Int("countdowns", started).Msg("round runtime recovered")
	return started, nil
}

// admit brings a freshly registered participant into the open round: an
// announcement while mingling, or a live list and the rest of the window
// while collecting.
func (s *RoundService) admit(ctx context.Context, event *entities.Event, participant *entities.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	round, err := s.roundRepo.FindOpen(ctx, event.ID)
	if errors.Is(err, domain.ErrRoundNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find open round: %w", err)
	}

	var msg output.Message
	remaining := 0
	switch round.Phase() {
	case domain.PhaseMingling:
		msg = s.announcement(round)
	case domain.PhaseCollecting:
		remaining = s.countdowns.Remaining(round.ListShownAt)
		msg, err = s.presenter.ListView(ctx, event.ID, round.Number, participant.ID, remaining)
		if err != nil {
			return err
		}
	default:
		return nil
	}

	handle, err := s.notifier.Send(ctx, participant.UserID, msg)
	if err != nil {
		return fmt.Errorf("send round message: %w", errors.Join(domain.ErrDeliveryFailure, err))
	}
	surface := entities.RoundMessage{
		EventID:       event.ID,
		RoundNumber:   round.Number,
		ParticipantID: participant.ID,
		ChatID:        handle.ChatID,
		MessageID:     handle.MessageID,
	}
	if err := s.messageRepo.Create(ctx, &surface); err != nil {
		return fmt.Errorf("create round message: %w", err)
	}

	if round.Phase() == domain.PhaseCollecting {
		key := view.Key{EventID: event.ID, RoundNumber: round.Number, ParticipantID: participant.ID}
		if err := s.views.Set(key, view.Listing{}); err != nil {
			return err
		}
		if remaining > 0 {
			s.countdowns.Start(key, surface, round.ListShownAt)
		}
	}
	log.Info().
		Uint("event_id", event.ID).
		Int("round", round.Number).
		Uint("participant_id", participant.ID).
		Str("phase", round.Phase().String()).
		Int("remaining", remaining).
		Msg("late participant admitted")
	return nil
}
