package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"roundbot/internal/config"
	"roundbot/internal/ports/input"
	"roundbot/internal/ports/output"
)

// Bot is the Discord adapter.
type Bot struct {
	session *discordgo.Session
	config  *config.Config
	handler *Handler
}

// NewSession creates the discordgo session; it is shared by the Notifier and the Bot.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsDirectMessages
	return s, nil
}

// NewBot wires the use cases into the interaction handlers.
func NewBot(
	cfg *config.Config,
	session *discordgo.Session,
	roundUC input.RoundUseCase,
	participantUC input.ParticipantUseCase,
	translator output.T,
) *Bot {
	bot := &Bot{
		session: session,
		config:  cfg,
		handler: NewHandler(roundUC, participantUC, translator, cfg.IsAdmin),
	}
	bot.setupHandlers()
	return bot
}

func (b *Bot) setupHandlers() {
	b.session.AddHandler(b.handleInteraction)
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("discord ready")
	})
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("interaction_id", i.ID).Msg("interaction handler panicked")
		}
	}()
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handler.HandleCommand(s, i)
	case discordgo.InteractionModalSubmit:
		b.handler.HandleModalSubmit(s, i)
	case discordgo.InteractionMessageComponent:
		b.handler.HandleComponent(s, i)
	}
}

// Start opens the gateway, registers the slash commands and blocks until
// ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	defer b.session.Close()

	appID := b.session.State.User.ID
	if _, err := b.session.ApplicationCommandBulkOverwrite(appID, b.config.GuildID, commands); err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	log.Info().Int("commands", len(commands)).Str("guild_id", b.config.GuildID).Msg("bot online")

	<-ctx.Done()
	log.Info().Msg("bot shutting down")
	return nil
}
