package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"roundbot/internal/domain"
	"roundbot/internal/domain/entities"
)

// Status renders the operator panel for the active (or last) event.
func (s *RoundService) Status(ctx context.Context, locale string) (string, error) {
	if locale == "" {
		locale = s.locale
	}
	t := func(key string, data map[string]any) string { return s.translator.T(locale, key, data) }

	event, err := s.eventRepo.FindActive(ctx)
	if errors.Is(err, domain.ErrNoActiveEvent) {
		latest, err := s.eventRepo.FindLatest(ctx)
		if err == nil && latest.Ended {
			return t("admin.status.ended", map[string]any{"EventID": latest.ID}), nil
		}
		if err != nil && !errors.Is(err, domain.ErrEventNotFound) {
			return "", err
		}
		return t("admin.status.none", nil), nil
	}
	if err != nil {
		return "", err
	}

	participants, err := s.participantRepo.FindByEventID(ctx, event.ID)
	if err != nil {
		return "", fmt.Errorf("list participants: %w", err)
	}
	var b strings.Builder
	b.WriteString(t("admin.status.active", map[string]any{
		"EventID":      event.ID,
		"Participants": len(participants),
	}))
	if event.CurrentRound == 0 {
		b.WriteString("\n")
		b.WriteString(t("admin.status.not_started", map[string]any{"Total": event.TotalRounds}))
		return b.String(), nil
	}
	b.WriteString("\n")
	b.WriteString(t("admin.status.round", map[string]any{"Number": event.CurrentRound, "Total": event.TotalRounds}))

	round, err := s.roundRepo.FindOpen(ctx, event.ID)
	if errors.Is(err, domain.ErrRoundNotFound) {
		b.WriteString("\n")
		b.WriteString(t("admin.status.phase_closed", nil))
		return b.String(), nil
	}
	if err != nil {
		return "", fmt.Errorf("find open round: %w", err)
	}
	b.WriteString("\n")
	switch round.Phase() {
	case domain.PhaseCollecting:
		b.WriteString(t("admin.status.phase_collecting", map[string]any{
			"Minutes":    s.countdowns.Remaining(round.ListShownAt),
			"Countdowns": s.countdowns.Len(),
		}))
	default:
		surfaces, err := s.messageRepo.FindByRound(ctx, event.ID, round.Number)
		if err != nil {
			return "", fmt.Errorf("find round messages: %w", err)
		}
		b.WriteString(t("admin.status.phase_mingling", map[string]any{"Announced": len(surfaces)}))
	}
	return b.String(), nil
}

// currentOrLatest returns the active event, falling back to the last one.
func (s *RoundService) currentOrLatest(ctx context.Context) (*entities.Event, error) {
	event, err := s.eventRepo.FindActive(ctx)
	if errors.Is(err, domain.ErrNoActiveEvent) {
		return s.eventRepo.FindLatest(ctx)
	}
	return event, err
}

// ListParticipants lists the participants of the active or last event,
// optionally filtered by a display name substring.
func (s *RoundService) ListParticipants(ctx context.Context, search string) ([]entities.Participant, error) {
	event, err := s.currentOrLatest(ctx)
	if err != nil {
		return nil, err
	}
	if search = strings.TrimSpace(search); search != "" {
		return s.participantRepo.Search(ctx, event.ID, search)
	}
	return s.participantRepo.FindByEventID(ctx, event.ID)
}

// OpinionsAbout returns what was written about a participant, for operators.
func (s *RoundService) OpinionsAbout(ctx context.Context, participantID uint) (*entities.Participant, []entities.Opinion, error) {
	participant, err := s.participantRepo.FindByID(ctx, participantID)
	if err != nil {
		return nil, nil, err
	}
	opinions, err := s.opinionRepo.FindByTarget(ctx, participant.EventID, participant.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("find opinions: %w", err)
	}
	return participant, opinions, nil
}
