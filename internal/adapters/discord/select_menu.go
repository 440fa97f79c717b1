package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	pkgdiscord "roundbot/pkg/discord"
)

// HandleChooseTarget opens a writing session about the selected participant.
func (h *Handler) HandleChooseTarget(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.MessageComponentData()
	if len(data.Values) == 0 {
		return
	}
	targetID, err := pkgdiscord.ParseUint(data.Values[0])
	if err != nil {
		log.Warn().Err(err).Str("value", data.Values[0]).Msg("target selection ignored")
		return
	}
	h.participantAction(s, i, func(ctx context.Context, userID string) error {
		return h.participantUseCase.ChooseTarget(ctx, userID, targetID)
	})
}
