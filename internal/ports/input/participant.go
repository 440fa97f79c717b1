package input

import (
	"context"

	"roundbot/internal/domain/entities"
	"roundbot/internal/domain/view"
)

// ParticipantUseCase is the participant-facing control surface.
type ParticipantUseCase interface {
	Register(ctx context.Context, form entities.RegistrationForm) (*entities.Participant, error)
	ChooseTarget(ctx context.Context, userID string, targetID uint) error
	SubmitOpinion(ctx context.Context, eventID uint, roundNumber int, authorID, targetID uint, text string) error
	CancelWriting(ctx context.Context, userID string) error
	SignalDone(ctx context.Context, userID string) error
	Refresh(ctx context.Context, userID string) error
	// Session resolves the user's participation in the open round.
	Session(ctx context.Context, userID string) (view.Key, error)
	ParticipantByUser(ctx context.Context, eventID uint, userID string) (*entities.Participant, error)
}
