package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"roundbot/internal/domain/entities"
	"roundbot/pkg/tz"
)

const (
	embedColor     = 0x5865F2
	maxEmbedDesc   = 4096
	maxEmbedFields = 25
	maxFieldValue  = 1024
)

// BuildParticipantsEmbed lists participants with their social handles.
func BuildParticipantsEmbed(title string, participants []entities.Participant) *discordgo.MessageEmbed {
	var b strings.Builder
	for _, p := range participants {
		line := fmt.Sprintf("`#%d` **%s** <@%s>", p.ID, p.DisplayName, p.UserID)
		if socials := socialsLine(p); socials != "" {
			line += " · " + socials
		}
		if at := tz.Format(p.CreatedAt); at != "" {
			line += " · " + at
		}
		if b.Len()+len(line)+1 > maxEmbedDesc {
			b.WriteString("\n…")
			break
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(line)
	}
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: b.String(),
		Color:       embedColor,
	}
}

func socialsLine(p entities.Participant) string {
	parts := make([]string, 0, 3)
	if p.Instagram != "" {
		parts = append(parts, "IG "+p.Instagram)
	}
	if p.Telegram != "" {
		parts = append(parts, "TG "+p.Telegram)
	}
	if p.VK != "" {
		parts = append(parts, "VK "+p.VK)
	}
	return strings.Join(parts, ", ")
}

// BuildOpinionsEmbed groups opinions about one participant by round. Authors
// are never shown.
func BuildOpinionsEmbed(title string, roundLabel func(int) string, opinions []entities.Opinion) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{Title: title, Color: embedColor}
	var (
		current = -1
		value   strings.Builder
	)
	flush := func() {
		if current < 0 || len(embed.Fields) >= maxEmbedFields {
			return
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  roundLabel(current),
			Value: truncate(value.String(), maxFieldValue),
		})
	}
	for _, o := range opinions {
		if o.RoundNumber != current {
			flush()
			current = o.RoundNumber
			value.Reset()
		}
		if value.Len() > 0 {
			value.WriteString("\n")
		}
		value.WriteString("• " + o.Text)
	}
	flush()
	return embed
}
