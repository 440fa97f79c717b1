package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"roundbot/internal/domain"
	"roundbot/internal/domain/entities"
	"roundbot/internal/domain/view"
	"roundbot/internal/ports/input"
	"roundbot/internal/ports/output"
)

var _ input.ParticipantUseCase = (*ParticipantService)(nil)

type ParticipantService struct {
	rounds          *RoundService
	eventRepo       output.EventRepository
	roundRepo       output.RoundRepository
	participantRepo output.ParticipantRepository
	opinionRepo     output.OpinionRepository
	messageRepo     output.RoundMessageRepository
	validator       *FormValidator
}

func NewParticipantService(rounds *RoundService) *ParticipantService {
	return &ParticipantService{
		rounds:          rounds,
		eventRepo:       rounds.eventRepo,
		roundRepo:       rounds.roundRepo,
		participantRepo: rounds.participantRepo,
		opinionRepo:     rounds.opinionRepo,
		messageRepo:     rounds.messageRepo,
		validator:       NewFormValidator(),
	}
}

// Register adds the user to the active event. A user registering while a
// round is running is admitted into it immediately.
func (s *ParticipantService) Register(ctx context.Context, form entities.RegistrationForm) (*entities.Participant, error) {
	if form.IsBot {
		return nil, domain.ErrBotUser
	}
	event, err := s.eventRepo.FindActive(ctx)
	if errors.Is(err, domain.ErrNoActiveEvent) {
		if latest, lerr := s.eventRepo.FindLatest(ctx); lerr == nil && latest.Ended {
			return nil, domain.ErrRegistrationClosed
		}
		return nil, domain.ErrNoActiveEvent
	}
	if err != nil {
		return nil, err
	}

	form = normalizeForm(form)
	if err := s.validator.Validate(form); err != nil {
		return nil, err
	}

	if existing, err := s.participantRepo.FindByEventIDAndUserID(ctx, event.ID, form.UserID); err == nil && existing != nil {
		return existing, domain.ErrDuplicateRegistration
	} else if err != nil && !errors.Is(err, domain.ErrParticipantNotFound) {
		return nil, fmt.Errorf("find participant: %w", err)
	}

	participant := &entities.Participant{
		EventID:     event.ID,
		UserID:      form.UserID,
		DisplayName: form.FullName,
		Instagram:   form.Instagram,
		Telegram:    form.Telegram,
		VK:          form.VK,
	}
	if err := s.participantRepo.Create(ctx, participant); err != nil {
		if errors.Is(err, domain.ErrDuplicateRegistration) {
			log.Debug().Uint("event_id", event.ID).Str("user_id", form.UserID).Msg("concurrent duplicate registration")
			return nil, domain.ErrDuplicateRegistration
		}
		return nil, fmt.Errorf("create participant: %w", err)
	}
	log.Info().Uint("event_id", event.ID).Uint("participant_id", participant.ID).Str("user_id", form.UserID).Msg("participant registered")

	if err := s.rounds.admit(ctx, event, participant); err != nil {
		// Registration stands; the participant simply misses the live message.
		log.Warn().Err(err).Uint("participant_id", participant.ID).Msg("late admission failed")
	}
	return participant, nil
}

func normalizeForm(f entities.RegistrationForm) entities.RegistrationForm {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Instagram = strings.TrimSpace(f.Instagram)
	f.Telegram = strings.TrimSpace(f.Telegram)
	f.VK = strings.TrimSpace(f.VK)
	return f
}

// ParticipantByUser resolves a chat user within an event.
func (s *ParticipantService) ParticipantByUser(ctx context.Context, eventID uint, userID string) (*entities.Participant, error) {
	return s.participantRepo.FindByEventIDAndUserID(ctx, eventID, userID)
}

// Session returns the view key of the user's participation in the open round.
func (s *ParticipantService) Session(ctx context.Context, userID string) (view.Key, error) {
	sess, err := s.resolve(ctx, userID)
	if err != nil {
		return view.Key{}, err
	}
	return sess.key, nil
}

// session is the round context of a participant acting on their live message.
type session struct {
	event       *entities.Event
	round       *entities.Round
	participant *entities.Participant
	surface     *entities.RoundMessage
	key         view.Key
}

func (s *ParticipantService) resolve(ctx context.Context, userID string) (*session, error) {
	event, err := s.eventRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	round, err := s.roundRepo.FindOpen(ctx, event.ID)
	if errors.Is(err, domain.ErrRoundNotFound) {
		return nil, domain.ErrRoundClosed
	}
	if err != nil {
		return nil, fmt.Errorf("find open round: %w", err)
	}
	participant, err := s.participantRepo.FindByEventIDAndUserID(ctx, event.ID, userID)
	if err != nil {
		return nil, err
	}
	surface, err := s.messageRepo.Find(ctx, event.ID, round.Number, participant.ID)
	if err != nil {
		return nil, err
	}
	return &session{
		event:       event,
		round:       round,
		participant: participant,
		surface:     surface,
		key:         view.Key{EventID: event.ID, RoundNumber: round.Number, ParticipantID: participant.ID},
	}, nil
}
