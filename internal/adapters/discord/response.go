package discord

import (
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"roundbot/internal/application"
	pkgdiscord "roundbot/pkg/discord"
)

// interactionUser returns the acting user in guilds and in DMs.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func locale(i *discordgo.InteractionCreate) string {
	return string(i.Locale)
}

func respondEphemeral(s *discordgo.Session, i *discordgo.Interaction, content string) {
	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Warn().Err(err).Str("interaction_id", i.ID).Msg("interaction response failed")
	}
}

// deferEphemeral acknowledges a command whose answer comes later through editResponse.
func deferEphemeral(s *discordgo.Session, i *discordgo.Interaction) bool {
	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		log.Warn().Err(err).Str("interaction_id", i.ID).Msg("interaction defer failed")
		return false
	}
	return true
}

// deferUpdate acknowledges a component interaction; the bot edits the
// message itself.
func deferUpdate(s *discordgo.Session, i *discordgo.Interaction) bool {
	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		log.Warn().Err(err).Str("interaction_id", i.ID).Msg("interaction ack failed")
		return false
	}
	return true
}

func editResponse(s *discordgo.Session, i *discordgo.Interaction, content string, embeds ...*discordgo.MessageEmbed) {
	edit := &discordgo.WebhookEdit{Content: &content}
	if len(embeds) > 0 {
		edit.Embeds = &embeds
	}
	if _, err := s.InteractionResponseEdit(i, edit); err != nil {
		log.Warn().Err(err).Str("interaction_id", i.ID).Msg("interaction edit failed")
	}
}

func followupEphemeral(s *discordgo.Session, i *discordgo.Interaction, content string) {
	_, err := s.FollowupMessageCreate(i, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Warn().Err(err).Str("interaction_id", i.ID).Msg("interaction followup failed")
	}
}

// errorText turns an error into text for the user; unexpected errors are logged.
func (h *Handler) errorText(i *discordgo.InteractionCreate, err error) string {
	loc := locale(i)
	var fieldErr *application.FieldError
	if errors.As(err, &fieldErr) {
		return h.t(loc, "error.invalid_registration", map[string]any{
			"Field": h.t(loc, "register."+fieldErr.Field, nil),
		})
	}
	msg := pkgdiscord.DomainErrorMessage(h.translator, loc, err)
	if msg == h.t(loc, "error.unknown", nil) {
		log.Error().Err(err).Str("interaction_id", i.ID).Msg("unexpected interaction error")
	} else {
		log.Debug().Err(err).Str("interaction_id", i.ID).Msg("interaction rejected")
	}
	return msg
}
