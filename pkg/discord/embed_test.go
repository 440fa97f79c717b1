package discord

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roundbot/internal/domain/entities"
)

func TestBuildParticipantsEmbed(t *testing.T) {
	embed := BuildParticipantsEmbed("Participants", []entities.Participant{
		{ID: 1, UserID: "100", DisplayName: "Ann Lee", Telegram: "@annlee", CreatedAt: time.Date(2026, 3, 1, 18, 5, 0, 0, time.UTC)},
		{ID: 2, UserID: "200", DisplayName: "Bob Stone"},
	})
	assert.Equal(t, "Participants", embed.Title)
	assert.Contains(t, embed.Description, "**Ann Lee** <@100>")
	assert.Contains(t, embed.Description, "TG @annlee")
	assert.Contains(t, embed.Description, "`#2` **Bob Stone**")
}

func TestBuildOpinionsEmbedGroupsByRound(t *testing.T) {
	label := func(n int) string { return fmt.Sprintf("Round %d", n) }
	embed := BuildOpinionsEmbed("About Bob", label, []entities.Opinion{
		{RoundNumber: 1, AuthorID: 7, Text: "calm"},
		{RoundNumber: 1, AuthorID: 8, Text: "funny"},
		{RoundNumber: 2, AuthorID: 7, Text: "curious"},
	})
	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "Round 1", embed.Fields[0].Name)
	assert.Equal(t, "• calm\n• funny", embed.Fields[0].Value)
	assert.Equal(t, "• curious", embed.Fields[1].Value)

	assert.Empty(t, BuildOpinionsEmbed("About Bob", label, nil).Fields)
}
