package input

import (
	"context"

	"roundbot/internal/domain"
	"roundbot/internal/domain/entities"
)

// RoundUseCase is the operator-facing control surface.
type RoundUseCase interface {
	StartEvent(ctx context.Context, roundCount int) (*entities.Event, error)
	OpenRound(ctx context.Context, name string) (*entities.Round, domain.DeliveryReport, error)
	StartFirstRound(ctx context.Context, name string) (*entities.Round, domain.DeliveryReport, error)
	NextRound(ctx context.Context, name string) (*entities.Round, domain.DeliveryReport, error)
	BeginCollecting(ctx context.Context) (*entities.Round, domain.DeliveryReport, error)
	CloseRound(ctx context.Context) (domain.DeliveryReport, error)
	CloseEvent(ctx context.Context) (domain.DeliveryReport, error)
	RedistributeOpinions(ctx context.Context) (domain.DeliveryReport, error)
	Status(ctx context.Context, locale string) (string, error)
	ListParticipants(ctx context.Context, search string) ([]entities.Participant, error)
	OpinionsAbout(ctx context.Context, participantID uint) (*entities.Participant, []entities.Opinion, error)
}
