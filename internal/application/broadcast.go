package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"roundbot/internal/domain"
	"roundbot/internal/domain/entities"
	"roundbot/internal/ports/output"
)

func (s *RoundService) announcement(round *entities.Round) output.Message {
	return s.presenter.Text("round.announce", map[string]any{"Number": round.Number, "Name": round.Name})
}

// broadcastRoundStart sends the mingling announcement to every participant
// and records the message as their live surface for the round.
func (s *RoundService) broadcastRoundStart(ctx context.Context, round *entities.Round) (domain.DeliveryReport, error) {
	var report domain.DeliveryReport
	participants, err := s.participantRepo.FindByEventID(ctx, round.EventID)
	if err != nil {
		return report, fmt.Errorf("list participants: %w", err)
	}
	msg := s.announcement(round)
	for _, p := range participants {
		err := s.announceTo(ctx, round, p, msg)
		report.Record(err)
		if err != nil {
			log.Warn().
				Err(err).
				Uint("event_id", round.EventID).
				Int("round", round.Number).
				Str("user_id", p.UserID).
				Msg("round announcement not delivered")
		}
	}
	log.Info().
		Uint("event_id", round.EventID).
		Int("round", round.Number).
		Int("delivered", report.Delivered).
		Int("total", report.Total).
		Msg("round announced")
	return report, nil
}

func (s *RoundService) announceTo(ctx context.Context, round *entities.Round, p entities.Participant, msg output.Message) error {
	handle, err := s.notifier.Send(ctx, p.UserID, msg)
	if err != nil {
		return errors.Join(domain.ErrDeliveryFailure, err)
	}
	surface := &entities.RoundMessage{
		EventID:       round.EventID,
		RoundNumber:   round.Number,
		ParticipantID: p.ID,
		ChatID:        handle.ChatID,
		MessageID:     handle.MessageID,
	}
	if err := s.messageRepo.Create(ctx, surface); err != nil {
		return fmt.Errorf("create round message: %w", err)
	}
	return nil
}

func (s *RoundService) broadcastEventEnd(ctx context.Context, event *entities.Event) (domain.DeliveryReport, error) {
	var report domain.DeliveryReport
	participants, err := s.participantRepo.FindByEventID(ctx, event.ID)
	if err != nil {
		return report, fmt.Errorf("list participants: %w", err)
	}
	msg := s.presenter.Text("event.ended", nil)
	for _, p := range participants {
		_, err := s.notifier.Send(ctx, p.UserID, msg)
		report.Record(err)
		if err != nil {
			log.Warn().Err(err).Uint("event_id", event.ID).Str("user_id", p.UserID).Msg("event end notice not delivered")
		}
	}
	return report, nil
}

// RedistributeOpinions sends every participant of the last ended event the
// opinions written about them, shuffled and without authors.
func (s *RoundService) RedistributeOpinions(ctx context.Context) (domain.DeliveryReport, error) {
	var report domain.DeliveryReport
	event, err := s.eventRepo.FindLatest(ctx)
	if err != nil {
		return report, err
	}
	if !event.Ended {
		return report, domain.ErrEventNotEnded
	}
	participants, err := s.participantRepo.FindByEventID(ctx, event.ID)
	if err != nil {
		return report, fmt.Errorf("list participants: %w", err)
	}
	for _, p := range participants {
		err := s.redistributeTo(ctx, event.ID, p)
		report.Record(err)
		if err != nil {
			log.Warn().Err(err).Uint("event_id", event.ID).Str("user_id", p.UserID).Msg("opinions not delivered")
		}
	}
	log.Info().
		Uint("event_id", event.ID).
		Int("delivered", report.Delivered).
		Int("total", report.Total).
		Msg("opinions redistributed")
	return report, nil
}

func (s *RoundService) redistributeTo(ctx context.Context, eventID uint, p entities.Participant) error {
	opinions, err := s.opinionRepo.FindByTarget(ctx, eventID, p.ID)
	if err != nil {
		return fmt.Errorf("find opinions: %w", err)
	}
	groups := groupByRound(opinions)
	for _, g := range groups {
		s.shuffle(g.texts)
	}

	if _, err := s.notifier.Send(ctx, p.UserID, s.opinionDigest(groups)); err != nil {
		return errors.Join(domain.ErrDeliveryFailure, err)
	}
	return nil
}

// roundTexts holds the opinion texts of one round, never their authors.
type roundTexts struct {
	number int
	texts  []string
}

// groupByRound expects opinions ordered by round, as FindByTarget returns them.
func groupByRound(opinions []entities.Opinion) []roundTexts {
	var groups []roundTexts
	for _, o := range opinions {
		if n := len(groups); n == 0 || groups[n-1].number != o.RoundNumber {
			groups = append(groups, roundTexts{number: o.RoundNumber})
		}
		last := &groups[len(groups)-1]
		last.texts = append(last.texts, o.Text)
	}
	return groups
}

// opinionDigest renders one numbered list with a heading per round.
func (s *RoundService) opinionDigest(groups []roundTexts) output.Message {
	if len(groups) == 0 {
		return s.presenter.Text("opinions.none", nil)
	}
	total := 0
	for _, g := range groups {
		total += len(g.texts)
	}
	var b strings.Builder
	b.WriteString(s.translator.T(s.locale, "opinions.intro", map[string]any{"Count": total}))
	n := 0
	for _, g := range groups {
		b.WriteString("\n")
		b.WriteString(s.translator.T(s.locale, "opinions.round", map[string]any{"Number": g.number}))
		for _, t := range g.texts {
			n++
			fmt.Fprintf(&b, "\n%d. %s", n, t)
		}
	}
	return output.Message{Text: b.String()}
}
