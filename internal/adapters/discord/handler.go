package discord

import (
	"roundbot/internal/ports/input"
	"roundbot/internal/ports/output"
)

// Handler handles Discord interactions using use cases.
type Handler struct {
	roundUseCase       input.RoundUseCase
	participantUseCase input.ParticipantUseCase
	translator         output.T
	isAdmin            func(userID string) bool
}

// NewHandler creates a Handler.
func NewHandler(
	roundUseCase input.RoundUseCase,
	participantUseCase input.ParticipantUseCase,
	translator output.T,
	isAdmin func(userID string) bool,
) *Handler {
	return &Handler{
		roundUseCase:       roundUseCase,
		participantUseCase: participantUseCase,
		translator:         translator,
		isAdmin:            isAdmin,
	}
}

func (h *Handler) t(locale, key string, data map[string]any) string {
	return h.translator.T(locale, key, data)
}
