package discord

import (
	"github.com/bwmarrin/discordgo"

	pkgdiscord "roundbot/pkg/discord"
)

// HandleModalSubmit routes modals by the base of their CustomID.
func (h *Handler) HandleModalSubmit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	base, _ := pkgdiscord.SplitID(data.CustomID)
	switch base {
	case pkgdiscord.IDRegisterModal:
		h.handleRegisterModalSubmit(s, i, data)
	case pkgdiscord.IDOpinionModal:
		h.handleOpinionModalSubmit(s, i, data)
	}
}
