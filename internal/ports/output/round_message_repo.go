package output

import (
	"context"

	"roundbot/internal/domain/entities"
)

type RoundMessageRepository interface {
	// Create reports domain.ErrDuplicateRoundMessage when the triple already has a surface.
	Create(ctx context.Context, msg *entities.RoundMessage) error
	Find(ctx context.Context, eventID uint, roundNumber int, participantID uint) (*entities.RoundMessage, error)
	FindByRound(ctx context.Context, eventID uint, roundNumber int) ([]entities.RoundMessage, error)
}
