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
)

// ChooseTarget opens a writing session about targetID.
func (s *ParticipantService) ChooseTarget(ctx context.Context, userID string, targetID uint) error {
	sess, err := s.resolve(ctx, userID)
	if err != nil {
		return err
	}
	if sess.round.Phase() != domain.PhaseCollecting {
		return domain.ErrNotCollecting
	}
	if targetID == sess.participant.ID {
		return domain.ErrParticipantNotFound
	}
	target, err := s.participantRepo.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target.EventID != sess.event.ID {
		return domain.ErrParticipantNotFound
	}

	state, err := s.rounds.views.Transition(sess.key, toWriting(target.ID, target.DisplayName))
	if err != nil {
		return err
	}
	s.show(ctx, sess, state)
	return nil
}

// SubmitOpinion records the opinion of authorID about targetID and sends the
// author back to the target list.
func (s *ParticipantService) SubmitOpinion(ctx context.Context, eventID uint, roundNumber int, authorID, targetID uint, text string) error {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return err
	}
	if !event.IsActive() {
		return domain.ErrNoActiveEvent
	}
	round, err := s.roundRepo.FindByNumber(ctx, eventID, roundNumber)
	if err != nil {
		return err
	}
	switch round.Phase() {
	case domain.PhaseClosed:
		return domain.ErrRoundClosed
	case domain.PhaseMingling:
		return domain.ErrNotCollecting
	}

	text = strings.TrimSpace(text)
	key := view.Key{EventID: eventID, RoundNumber: roundNumber, ParticipantID: authorID}
	var writing view.Writing
	_, err = s.rounds.views.Transition(key, func(cur view.State) (view.State, error) {
		w, ok := cur.(view.Writing)
		if !ok || w.TargetID != targetID {
			return nil, domain.ErrNoWritingSession
		}
		if text == "" {
			return nil, domain.ErrEmptyOpinion
		}
		writing = w
		return view.Listing{}, nil
	})
	if err != nil {
		return err
	}

	opinion := &entities.Opinion{
		EventID:     eventID,
		RoundNumber: roundNumber,
		AuthorID:    authorID,
		TargetID:    targetID,
		Text:        text,
	}
	if err := s.opinionRepo.Create(ctx, opinion); err != nil {
		// Give the session back so the author can retry.
		_, _ = s.rounds.views.Transition(key, func(cur view.State) (view.State, error) {
			if _, ok := cur.(view.Listing); ok {
				return writing, nil
			}
			return cur, nil
		})
		return fmt.Errorf("create opinion: %w", err)
	}
	log.Info().
		Uint("event_id", eventID).
		Int("round", roundNumber).
		Uint("author_id", authorID).
		Uint("target_id", targetID).
		Msg("opinion recorded")

	surface, err := s.messageRepo.Find(ctx, eventID, roundNumber, authorID)
	if err != nil {
		log.Warn().Err(err).Stringer("key", key).Msg("no live message to refresh")
		return nil
	}
	s.show(ctx, &session{round: round, surface: surface, key: key}, view.Listing{})
	return nil
}

// CancelWriting drops the writing session and shows the list again.
func (s *ParticipantService) CancelWriting(ctx context.Context, userID string) error {
	sess, err := s.resolve(ctx, userID)
	if err != nil {
		return err
	}
	if sess.round.Phase() != domain.PhaseCollecting {
		return domain.ErrNotCollecting
	}
	state, err := s.rounds.views.Transition(sess.key, toListing)
	if err != nil {
		return err
	}
	s.show(ctx, sess, state)
	return nil
}

// SignalDone ends the round for the participant and stops their countdown.
func (s *ParticipantService) SignalDone(ctx context.Context, userID string) error {
	sess, err := s.resolve(ctx, userID)
	if err != nil {
		return err
	}
	if sess.round.Phase() != domain.PhaseCollecting {
		return domain.ErrNotCollecting
	}
	if _, err := s.rounds.views.Transition(sess.key, toDone); err != nil {
		return err
	}
	s.rounds.countdowns.Cancel(sess.key)
	msg := s.rounds.presenter.Text("round.finished", nil)
	if err := s.rounds.presenter.Show(ctx, *sess.surface, msg); err != nil {
		log.Warn().Err(err).Stringer("key", sess.key).Msg("finished view not delivered")
	}
	log.Info().Stringer("key", sess.key).Msg("participant done")
	return nil
}

// Refresh re-renders the live message with the current remaining time.
func (s *ParticipantService) Refresh(ctx context.Context, userID string) error {
	sess, err := s.resolve(ctx, userID)
	if err != nil {
		return err
	}
	if sess.round.Phase() != domain.PhaseCollecting {
		return domain.ErrNotCollecting
	}
	if s.rounds.views.IsClosed(sess.key.EventID, sess.key.RoundNumber) {
		return domain.ErrRoundClosed
	}
	state := s.rounds.views.Get(sess.key)
	if _, done := state.(view.Done); done {
		return domain.ErrAlreadyDone
	}
	s.show(ctx, sess, state)
	return nil
}

// show renders state on the participant's live message. Delivery failures
// are logged only: the action itself already succeeded.
func (s *ParticipantService) show(ctx context.Context, sess *session, state view.State) {
	remaining := s.rounds.countdowns.Remaining(sess.round.ListShownAt)
	msg, ok, err := s.rounds.presenter.View(ctx, sess.key, state, remaining)
	if err == nil && ok {
		err = s.rounds.presenter.Show(ctx, *sess.surface, msg)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Stringer("key", sess.key).Str("view", view.Name(state)).Msg("live message not refreshed")
	}
}
