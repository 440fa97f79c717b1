package application

import (
	"context"
	"fmt"
	"strconv"

	"roundbot/internal/domain/entities"
	"roundbot/internal/domain/view"
	"roundbot/internal/ports/output"
)

var _ SurfaceRenderer = (*Presenter)(nil)

// Presenter turns view states into messages and pushes them to live surfaces.
type Presenter struct {
	participantRepo output.ParticipantRepository
	opinionRepo     output.OpinionRepository
	notifier        output.Notifier
	translator      output.T
	locale          string
}

func NewPresenter(
	participantRepo output.ParticipantRepository,
	opinionRepo output.OpinionRepository,
	notifier output.Notifier,
	translator output.T,
	locale string,
) *Presenter {
	return &Presenter{
		participantRepo: participantRepo,
		opinionRepo:     opinionRepo,
		notifier:        notifier,
		translator:      translator,
		locale:          locale,
	}
}

func (p *Presenter) t(key string, data map[string]any) string {
	return p.translator.T(p.locale, key, data)
}

// Text renders a plain message without controls.
func (p *Presenter) Text(key string, data map[string]any) output.Message {
	return output.Message{Text: p.t(key, data)}
}

// ListView shows the targets the participant can write about.
func (p *Presenter) ListView(ctx context.Context, eventID uint, roundNumber int, participantID uint, remaining int) (output.Message, error) {
	participants, err := p.participantRepo.FindByEventID(ctx, eventID)
	if err != nil {
		return output.Message{}, fmt.Errorf("list participants: %w", err)
	}
	written, err := p.opinionRepo.FindByAuthorAndRound(ctx, eventID, roundNumber, participantID)
	if err != nil {
		return output.Message{}, fmt.Errorf("list written opinions: %w", err)
	}
	seen := make(map[uint]bool, len(written))
	for _, o := range written {
		seen[o.TargetID] = true
	}

	targets := make([]output.TargetOption, 0, len(participants))
	for _, other := range participants {
		if other.ID == participantID {
			continue
		}
		targets = append(targets, output.TargetOption{
			ParticipantID: other.ID,
			Label:         other.DisplayName,
			Written:       seen[other.ID],
		})
	}

	text := p.t("round.list_timeout", nil)
	if remaining > 0 {
		text = p.t("round.list", map[string]any{"Minutes": remaining})
	}
	return output.Message{
		Text: text,
		Controls: output.Controls{
			Targets: targets,
			Buttons: []output.Button{
				{Action: output.ActionRefresh, Label: p.t("button.refresh", nil)},
				{Action: output.ActionDone, Label: p.t("button.done", nil)},
			},
		},
	}, nil
}

// WritingView prompts for an opinion about the chosen target.
func (p *Presenter) WritingView(w view.Writing, remaining int) output.Message {
	text := p.t("opinion.writing_timeout", map[string]any{"Name": w.TargetName})
	if remaining > 0 {
		text = p.t("opinion.writing", map[string]any{"Name": w.TargetName, "Minutes": remaining})
	}
	ref := strconv.FormatUint(uint64(w.TargetID), 10)
	return output.Message{
		Text: text,
		Controls: output.Controls{
			Buttons: []output.Button{
				{Action: output.ActionWrite, Label: p.t("button.write", nil), Ref: ref},
				{Action: output.ActionCancel, Label: p.t("button.cancel", nil)},
			},
		},
	}
}

// View renders state; ok is false for Done, which has nothing left to show.
func (p *Presenter) View(ctx context.Context, key view.Key, state view.State, remaining int) (msg output.Message, ok bool, err error) {
	switch s := state.(type) {
	case view.Writing:
		return p.WritingView(s, remaining), true, nil
	case view.Idle, view.Listing:
		msg, err = p.ListView(ctx, key.EventID, key.RoundNumber, key.ParticipantID, remaining)
		return msg, err == nil, err
	case view.Done:
		return output.Message{}, false, nil
	default:
		return output.Message{}, false, fmt.Errorf("unknown view state %T", state)
	}
}

// Show edits the live surface in place.
func (p *Presenter) Show(ctx context.Context, surface entities.RoundMessage, msg output.Message) error {
	if err := p.notifier.Edit(ctx, surface.Handle(), msg); err != nil {
		return fmt.Errorf("edit round message: %w", err)
	}
	return nil
}

// RenderTick implements SurfaceRenderer.
func (p *Presenter) RenderTick(ctx context.Context, surface entities.RoundMessage, state view.State, remaining int) error {
	key := view.Key{EventID: surface.EventID, RoundNumber: surface.RoundNumber, ParticipantID: surface.ParticipantID}
	msg, ok, err := p.View(ctx, key, state, remaining)
	if err != nil || !ok {
		return err
	}
	return p.Show(ctx, surface, msg)
}
