package output

import (
	"context"

	"roundbot/internal/domain/entities"
)

type ParticipantRepository interface {
	// Create reports domain.ErrDuplicateRegistration when (event, user) already exists.
	Create(ctx context.Context, participant *entities.Participant) error
	FindByID(ctx context.Context, id uint) (*entities.Participant, error)
	FindByEventIDAndUserID(ctx context.Context, eventID uint, userID string) (*entities.Participant, error)
	// FindByEventID returns participants ordered by display name.
	FindByEventID(ctx context.Context, eventID uint) ([]entities.Participant, error)
	// Search filters FindByEventID by a case-insensitive substring of the display name.
	Search(ctx context.Context, eventID uint, query string) ([]entities.Participant, error)
}
