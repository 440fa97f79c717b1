package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	pkgdiscord "roundbot/pkg/discord"
)

// HandleComponent routes buttons and select menus of the live round message.
func (h *Handler) HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.MessageComponentData()
	base, args := pkgdiscord.SplitID(data.CustomID)
	switch base {
	case pkgdiscord.IDTargetSelect:
		h.HandleChooseTarget(s, i)
	case pkgdiscord.IDWrite:
		if len(args) != 1 {
			return
		}
		targetID, err := pkgdiscord.ParseUint(args[0])
		if err != nil {
			log.Warn().Err(err).Str("custom_id", data.CustomID).Msg("write button ignored")
			return
		}
		h.openOpinionModal(s, i, targetID)
	case pkgdiscord.IDRefresh:
		h.participantAction(s, i, h.participantUseCase.Refresh)
	case pkgdiscord.IDDone:
		h.participantAction(s, i, h.participantUseCase.SignalDone)
	case pkgdiscord.IDCancel:
		h.participantAction(s, i, h.participantUseCase.CancelWriting)
	}
}

// participantAction acknowledges the click, then runs action. The service
// edits the live message itself; failures come back as an ephemeral followup.
func (h *Handler) participantAction(s *discordgo.Session, i *discordgo.InteractionCreate, action func(ctx context.Context, userID string) error) {
	user := interactionUser(i)
	if user == nil || !deferUpdate(s, i.Interaction) {
		return
	}
	if err := action(context.Background(), user.ID); err != nil {
		followupEphemeral(s, i.Interaction, h.errorText(i, err))
	}
}
