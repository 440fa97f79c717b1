package output

import (
	"context"

	"roundbot/internal/domain/entities"
)

type OpinionRepository interface {
	Create(ctx context.Context, opinion *entities.Opinion) error
	// FindByTarget returns opinions about targetID ordered by round then insertion.
	FindByTarget(ctx context.Context, eventID, targetID uint) ([]entities.Opinion, error)
	FindByAuthorAndRound(ctx context.Context, eventID uint, roundNumber int, authorID uint) ([]entities.Opinion, error)
}
