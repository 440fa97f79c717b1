package discord

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"roundbot/internal/domain/entities"
	"roundbot/internal/ports/output"
	pkgdiscord "roundbot/pkg/discord"
)

var _ output.Notifier = (*Notifier)(nil)

// DMSession is the part of *discordgo.Session the notifier needs.
type DMSession interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

// Notifier delivers round messages as direct messages.
type Notifier struct {
	session    DMSession
	translator output.T
	locale     string

	mu       sync.Mutex
	channels map[string]string // user id -> DM channel id
}

func NewNotifier(session DMSession, translator output.T, locale string) *Notifier {
	return &Notifier{
		session:    session,
		translator: translator,
		locale:     locale,
		channels:   make(map[string]string),
	}
}

func (n *Notifier) dmChannel(ctx context.Context, userID string) (string, error) {
	n.mu.Lock()
	id, ok := n.channels[userID]
	n.mu.Unlock()
	if ok {
		return id, nil
	}
	ch, err := n.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("open dm with %s: %w", userID, err)
	}
	n.mu.Lock()
	n.channels[userID] = ch.ID
	n.mu.Unlock()
	return ch.ID, nil
}

func (n *Notifier) components(msg output.Message) []discordgo.MessageComponent {
	placeholder := n.translator.T(n.locale, "round.select_placeholder", nil)
	rows, dropped := pkgdiscord.BuildComponents(msg.Controls, placeholder)
	if dropped > 0 {
		log.Warn().Int("dropped", dropped).Msg("target list does not fit in one message")
	}
	return rows
}

// Send opens (or reuses) the DM channel with recipient and posts msg. Text
// longer than one Discord message is split; the handle points at the last
// part, which carries the controls.
func (n *Notifier) Send(ctx context.Context, recipient string, msg output.Message) (entities.MessageHandle, error) {
	channelID, err := n.dmChannel(ctx, recipient)
	if err != nil {
		return entities.MessageHandle{}, err
	}
	chunks := pkgdiscord.SplitContent(msg.Text, pkgdiscord.MaxContentLen)
	for _, chunk := range chunks[:len(chunks)-1] {
		if _, err := n.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{Content: chunk}, discordgo.WithContext(ctx)); err != nil {
			return entities.MessageHandle{}, fmt.Errorf("send dm: %w", err)
		}
	}
	sent, err := n.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    chunks[len(chunks)-1],
		Components: n.components(msg),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return entities.MessageHandle{}, fmt.Errorf("send dm: %w", err)
	}
	return entities.MessageHandle{ChatID: channelID, MessageID: sent.ID}, nil
}

// Edit replaces text and controls of a sent message. An empty control set
// removes the previous components.
func (n *Notifier) Edit(ctx context.Context, handle entities.MessageHandle, msg output.Message) error {
	content := pkgdiscord.SplitContent(msg.Text, pkgdiscord.MaxContentLen)[0]
	components := n.components(msg)
	_, err := n.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         handle.MessageID,
		Channel:    handle.ChatID,
		Content:    &content,
		Components: &components,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("edit dm %s: %w", handle.MessageID, err)
	}
	return nil
}

func (n *Notifier) Delete(ctx context.Context, handle entities.MessageHandle) error {
	if err := n.session.ChannelMessageDelete(handle.ChatID, handle.MessageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("delete dm %s: %w", handle.MessageID, err)
	}
	return nil
}
