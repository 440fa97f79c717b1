package discord

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"roundbot/internal/domain"
	"roundbot/internal/domain/entities"
	pkgdiscord "roundbot/pkg/discord"
)

const maxOpinionLen = 2000

func (h *Handler) openRegisterModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	loc := locale(i)
	input := func(id, labelKey string, required bool) discordgo.ActionsRow {
		return pkgdiscord.TextInputRow(discordgo.TextInput{
			CustomID:    id,
			Label:       h.t(loc, "register."+labelKey, nil),
			Placeholder: h.t(loc, "register."+labelKey+"_placeholder", nil),
			Style:       discordgo.TextInputShort,
			Required:    required,
			MaxLength:   200,
		})
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: pkgdiscord.IDRegisterModal,
			Title:    h.t(loc, "register.title", nil),
			Components: []discordgo.MessageComponent{
				input(pkgdiscord.FieldFullName, pkgdiscord.FieldFullName, true),
				input(pkgdiscord.FieldInstagram, pkgdiscord.FieldInstagram, false),
				input(pkgdiscord.FieldTelegram, pkgdiscord.FieldTelegram, false),
				input(pkgdiscord.FieldVK, pkgdiscord.FieldVK, false),
			},
		},
	})
	if err != nil {
		log.Warn().Err(err).Msg("register modal not opened")
	}
}

func (h *Handler) handleRegisterModalSubmit(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ModalSubmitInteractionData) {
	user := interactionUser(i)
	if user == nil || !deferEphemeral(s, i.Interaction) {
		return
	}
	values := pkgdiscord.ExtractModalValues(data)
	form := entities.RegistrationForm{
		UserID:    user.ID,
		IsBot:     user.Bot,
		FullName:  values[pkgdiscord.FieldFullName],
		Instagram: values[pkgdiscord.FieldInstagram],
		Telegram:  values[pkgdiscord.FieldTelegram],
		VK:        values[pkgdiscord.FieldVK],
	}

	participant, err := h.participantUseCase.Register(context.Background(), form)
	if errors.Is(err, domain.ErrDuplicateRegistration) && participant != nil {
		editResponse(s, i.Interaction, h.t(locale(i), "register.already", map[string]any{"Name": participant.DisplayName}))
		return
	}
	if err != nil {
		editResponse(s, i.Interaction, h.errorText(i, err))
		return
	}
	editResponse(s, i.Interaction, h.t(locale(i), "register.ok", map[string]any{"Name": participant.DisplayName}))
}

// openOpinionModal asks for the opinion text about targetID. The modal id
// carries the round so a late submit lands in the round it was written for.
func (h *Handler) openOpinionModal(s *discordgo.Session, i *discordgo.InteractionCreate, targetID uint) {
	user := interactionUser(i)
	if user == nil {
		return
	}
	key, err := h.participantUseCase.Session(context.Background(), user.ID)
	if err != nil {
		respondEphemeral(s, i.Interaction, h.errorText(i, err))
		return
	}
	loc := locale(i)
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: pkgdiscord.OpinionModalID(key.EventID, key.RoundNumber, targetID),
			Title:    h.t(loc, "opinion.modal_title", nil),
			Components: []discordgo.MessageComponent{
				pkgdiscord.TextInputRow(discordgo.TextInput{
					CustomID:    pkgdiscord.FieldOpinion,
					Label:       h.t(loc, "opinion.modal_label", nil),
					Placeholder: h.t(loc, "opinion.modal_placeholder", nil),
					Style:       discordgo.TextInputParagraph,
					Required:    true,
					MaxLength:   maxOpinionLen,
				}),
			},
		},
	})
	if err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("opinion modal not opened")
	}
}

func (h *Handler) handleOpinionModalSubmit(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ModalSubmitInteractionData) {
	user := interactionUser(i)
	if user == nil {
		return
	}
	eventID, roundNumber, targetID, err := pkgdiscord.ParseOpinionModalID(data.CustomID)
	if err != nil {
		log.Warn().Err(err).Msg("opinion modal ignored")
		return
	}
	if !deferUpdate(s, i.Interaction) {
		return
	}
	ctx := context.Background()
	author, err := h.participantUseCase.ParticipantByUser(ctx, eventID, user.ID)
	if err != nil {
		followupEphemeral(s, i.Interaction, h.errorText(i, err))
		return
	}
	text := pkgdiscord.ExtractModalValues(data)[pkgdiscord.FieldOpinion]
	if err := h.participantUseCase.SubmitOpinion(ctx, eventID, roundNumber, author.ID, targetID, text); err != nil {
		followupEphemeral(s, i.Interaction, h.errorText(i, err))
		return
	}
	followupEphemeral(s, i.Interaction, h.t(locale(i), "opinion.saved", nil))
}
