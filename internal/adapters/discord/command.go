package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"roundbot/internal/domain"
	pkgdiscord "roundbot/pkg/discord"
)

const (
	cmdEvent        = "event"
	cmdRound        = "round"
	cmdParticipants = "participants"
	cmdOpinions     = "opinions"
	cmdRegister     = "register"
)

var minRounds = 1.0

// commands are registered at startup. Every command but /register is
// restricted to ADMIN_IDS.
var commands = []*discordgo.ApplicationCommand{
	{
		Name:        cmdEvent,
		Description: "Manage the event",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "start",
				Description: "Start a new event (ends the active one)",
				Options: []*discordgo.ApplicationCommandOption{{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "rounds",
					Description: "Number of rounds",
					Required:    true,
					MinValue:    &minRounds,
				}},
			},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "close", Description: "End the event"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "redistribute", Description: "Send everyone the opinions about them"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "status", Description: "Show the event status"},
		},
	},
	{
		Name:        cmdRound,
		Description: "Manage rounds",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "open",
				Description: "Open the next round",
				Options: []*discordgo.ApplicationCommandOption{{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "name",
					Description: "Round name",
					MaxLength:   100,
				}},
			},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "collect", Description: "Start collecting opinions"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "close", Description: "Close the current round"},
		},
	},
	{
		Name:        cmdParticipants,
		Description: "List participants",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "search",
			Description: "Filter by name",
		}},
	},
	{
		Name:        cmdOpinions,
		Description: "Show the opinions about a participant",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "participant",
			Description: "Participant number from /participants",
			Required:    true,
		}},
	},
	{Name: cmdRegister, Description: "Register for the current event"},
}

func (h *Handler) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	user := interactionUser(i)
	if user == nil {
		return
	}
	if data.Name == cmdRegister {
		h.openRegisterModal(s, i)
		return
	}
	if !h.isAdmin(user.ID) {
		respondEphemeral(s, i.Interaction, h.errorText(i, domain.ErrNotAdmin))
		return
	}
	if !deferEphemeral(s, i.Interaction) {
		return
	}

	ctx := context.Background()
	log.Info().Str("user_id", user.ID).Str("command", commandPath(data)).Msg("admin command")
	text, embed, err := h.runAdminCommand(ctx, i, data)
	if err != nil {
		editResponse(s, i.Interaction, h.errorText(i, err))
		return
	}
	if embed != nil {
		editResponse(s, i.Interaction, text, embed)
		return
	}
	editResponse(s, i.Interaction, text)
}

func commandPath(data discordgo.ApplicationCommandInteractionData) string {
	if len(data.Options) > 0 && data.Options[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		return data.Name + " " + data.Options[0].Name
	}
	return data.Name
}

func (h *Handler) runAdminCommand(ctx context.Context, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) (string, *discordgo.MessageEmbed, error) {
	loc := locale(i)
	switch data.Name {
	case cmdEvent, cmdRound:
		if len(data.Options) == 0 {
			return "", nil, domain.ErrInvalidArgument
		}
		sub := data.Options[0]
		text, err := h.runSubcommand(ctx, loc, data.Name+" "+sub.Name, optionMap(sub.Options))
		return text, nil, err
	case cmdParticipants:
		return h.listParticipants(ctx, loc, optionMap(data.Options))
	case cmdOpinions:
		return h.opinionsAbout(ctx, loc, optionMap(data.Options))
	default:
		return "", nil, domain.ErrInvalidArgument
	}
}

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

func (h *Handler) runSubcommand(ctx context.Context, loc, path string, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) (string, error) {
	delivery := func(r domain.DeliveryReport) map[string]any {
		return map[string]any{"Delivered": r.Delivered, "Total": r.Total}
	}
	switch path {
	case "event start":
		rounds := 0
		if o, ok := opts["rounds"]; ok {
			rounds = int(o.IntValue())
		}
		event, err := h.roundUseCase.StartEvent(ctx, rounds)
		if err != nil {
			return "", err
		}
		return h.t(loc, "admin.event_started", map[string]any{"EventID": event.ID, "Rounds": event.TotalRounds}), nil
	case "event close":
		report, err := h.roundUseCase.CloseEvent(ctx)
		if err != nil {
			return "", err
		}
		return h.t(loc, "admin.event_closed", delivery(report)), nil
	case "event redistribute":
		report, err := h.roundUseCase.RedistributeOpinions(ctx)
		if err != nil {
			return "", err
		}
		return h.t(loc, "admin.redistributed", delivery(report)), nil
	case "event status":
		return h.roundUseCase.Status(ctx, loc)
	case "round open":
		name := ""
		if o, ok := opts["name"]; ok {
			name = o.StringValue()
		}
		round, report, err := h.roundUseCase.OpenRound(ctx, name)
		if err != nil {
			return "", err
		}
		data := delivery(report)
		data["Number"] = round.Number
		data["Name"] = round.Name
		return h.t(loc, "admin.round_opened", data), nil
	case "round collect":
		round, report, err := h.roundUseCase.BeginCollecting(ctx)
		if err != nil {
			return "", err
		}
		data := delivery(report)
		data["Number"] = round.Number
		return h.t(loc, "admin.collecting", data), nil
	case "round close":
		report, err := h.roundUseCase.CloseRound(ctx)
		if err != nil {
			return "", err
		}
		return h.t(loc, "admin.round_closed", delivery(report)), nil
	default:
		return "", fmt.Errorf("unknown command %q: %w", path, domain.ErrInvalidArgument)
	}
}

func (h *Handler) listParticipants(ctx context.Context, loc string, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) (string, *discordgo.MessageEmbed, error) {
	search := ""
	if o, ok := opts["search"]; ok {
		search = o.StringValue()
	}
	participants, err := h.roundUseCase.ListParticipants(ctx, search)
	if err != nil {
		return "", nil, err
	}
	if len(participants) == 0 {
		return h.t(loc, "admin.participants.none", nil), nil, nil
	}
	title := h.t(loc, "admin.participants.title", map[string]any{"Count": len(participants)})
	return "", pkgdiscord.BuildParticipantsEmbed(title, participants), nil
}

func (h *Handler) opinionsAbout(ctx context.Context, loc string, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) (string, *discordgo.MessageEmbed, error) {
	o, ok := opts["participant"]
	if !ok || o.IntValue() <= 0 {
		return "", nil, domain.ErrInvalidArgument
	}
	participant, opinions, err := h.roundUseCase.OpinionsAbout(ctx, uint(o.IntValue()))
	if err != nil {
		return "", nil, err
	}
	if len(opinions) == 0 {
		return h.t(loc, "admin.opinions.none", map[string]any{"Name": participant.DisplayName}), nil, nil
	}
	title := h.t(loc, "admin.opinions.title", map[string]any{"Name": participant.DisplayName, "Count": len(opinions)})
	roundLabel := func(n int) string {
		return h.t(loc, "admin.opinions.round", map[string]any{"Number": n})
	}
	return "", pkgdiscord.BuildOpinionsEmbed(title, roundLabel, opinions), nil
}
