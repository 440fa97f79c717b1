package output

import (
	"context"

	"roundbot/internal/domain/entities"
)

type EventRepository interface {
	Create(ctx context.Context, event *entities.Event) error
	FindByID(ctx context.Context, id uint) (*entities.Event, error)
	// FindActive returns the started and not ended event, or domain.ErrNoActiveEvent.
	FindActive(ctx context.Context) (*entities.Event, error)
	// FindLatest returns the most recently created event, or domain.ErrEventNotFound.
	FindLatest(ctx context.Context) (*entities.Event, error)
	// EndActive sets the ended flag on every active event.
	EndActive(ctx context.Context) (int64, error)
	Update(ctx context.Context, event *entities.Event) error
}
