package discord

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roundbot/internal/ports/output"
)

func TestButtonID(t *testing.T) {
	assert.Equal(t, IDDone, ButtonID(output.Button{Action: output.ActionDone}))
	assert.Equal(t, IDWrite+":42", ButtonID(output.Button{Action: output.ActionWrite, Ref: "42"}))

	base, args := SplitID(ButtonID(output.Button{Action: output.ActionWrite, Ref: "42"}))
	assert.Equal(t, IDWrite, base)
	assert.Equal(t, []string{"42"}, args)
}

func TestOpinionModalIDRoundTrip(t *testing.T) {
	id := OpinionModalID(3, 2, 17)
	assert.Equal(t, "opinion_modal:3:2:17", id)

	e, r, target, err := ParseOpinionModalID(id)
	require.NoError(t, err)
	assert.Equal(t, uint(3), e)
	assert.Equal(t, 2, r)
	assert.Equal(t, uint(17), target)
}

func TestParseOpinionModalIDRejectsGarbage(t *testing.T) {
	for _, id := range []string{
		"opinion_modal",
		"opinion_modal:1:2",
		"register_modal:1:2:3",
		"opinion_modal:x:2:3",
		"opinion_modal:1:two:3",
		"opinion_modal:1:2:-3",
	} {
		_, _, _, err := ParseOpinionModalID(id)
		assert.Error(t, err, id)
	}
}
