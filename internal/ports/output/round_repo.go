package output

import (
	"context"
	"time"

	"roundbot/internal/domain/entities"
)

type RoundRepository interface {
	Create(ctx context.Context, round *entities.Round) error
	// FindOpen returns the round of eventID with no ended-at, or domain.ErrRoundNotFound.
	FindOpen(ctx context.Context, eventID uint) (*entities.Round, error)
	FindByNumber(ctx context.Context, eventID uint, number int) (*entities.Round, error)
	MarkListShown(ctx context.Context, id uint, at time.Time) error
	MarkEnded(ctx context.Context, id uint, at time.Time) error
}
