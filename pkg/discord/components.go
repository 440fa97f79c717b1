package discord

import (
	"strconv"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"roundbot/internal/ports/output"
)

const (
	MaxContentLen    = 2000
	maxSelectOptions = 25
	maxActionRows    = 5
	maxLabelLen      = 100
	writtenMark      = "✓ "
)

// BuildComponents renders controls as Discord action rows: one select menu
// per 25 targets, then a single row of buttons. Targets that do not fit in
// the remaining rows are dropped; the second return value counts them.
func BuildComponents(c output.Controls, placeholder string) ([]discordgo.MessageComponent, int) {
	rows := make([]discordgo.MessageComponent, 0, maxActionRows)
	menuRows := maxActionRows
	if len(c.Buttons) > 0 {
		menuRows--
	}

	dropped := 0
	for start, menu := 0, 0; start < len(c.Targets); start, menu = start+maxSelectOptions, menu+1 {
		end := min(start+maxSelectOptions, len(c.Targets))
		if menu >= menuRows {
			dropped += len(c.Targets) - start
			break
		}
		options := make([]discordgo.SelectMenuOption, 0, end-start)
		for _, t := range c.Targets[start:end] {
			label := t.Label
			if t.Written {
				label = writtenMark + label
			}
			options = append(options, discordgo.SelectMenuOption{
				Label: truncate(label, maxLabelLen),
				Value: strconv.FormatUint(uint64(t.ParticipantID), 10),
			})
		}
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				CustomID:    IDTargetSelect + ":" + strconv.Itoa(menu),
				Placeholder: placeholder,
				Options:     options,
			},
		}})
	}

	if len(c.Buttons) > 0 {
		buttons := make([]discordgo.MessageComponent, 0, len(c.Buttons))
		for _, b := range c.Buttons {
			buttons = append(buttons, discordgo.Button{
				Label:    truncate(b.Label, 80),
				Style:    buttonStyle(b.Action),
				CustomID: ButtonID(b),
			})
		}
		rows = append(rows, discordgo.ActionsRow{Components: buttons})
	}
	return rows, dropped
}

func buttonStyle(a output.Action) discordgo.ButtonStyle {
	switch a {
	case output.ActionDone:
		return discordgo.SuccessButton
	case output.ActionWrite:
		return discordgo.PrimaryButton
	case output.ActionCancel:
		return discordgo.DangerButton
	default:
		return discordgo.SecondaryButton
	}
}

// SplitContent cuts text into chunks Discord accepts, preferring line breaks.
func SplitContent(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}
	var chunks []string
	runes := []rune(text)
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
		if len(runes) > 0 && runes[0] == '\n' {
			runes = runes[1:]
		}
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit-1]) + "…"
}
