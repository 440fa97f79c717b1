package discord

import (
	"fmt"
	"strconv"
	"strings"

	"roundbot/internal/ports/output"
)

// Component and modal custom ids. Dynamic parts follow a ':' separator.
const (
	IDTargetSelect = "round_target"
	IDRefresh      = "round_refresh"
	IDDone         = "round_done"
	IDWrite        = "round_write"
	IDCancel       = "round_cancel"

	IDRegisterModal = "register_modal"
	IDOpinionModal  = "opinion_modal"

	FieldFullName  = "full_name"
	FieldInstagram = "instagram"
	FieldTelegram  = "telegram"
	FieldVK        = "vk"
	FieldOpinion   = "opinion"
)

// ButtonID returns the custom id of an action button.
func ButtonID(b output.Button) string {
	var base string
	switch b.Action {
	case output.ActionRefresh:
		base = IDRefresh
	case output.ActionDone:
		base = IDDone
	case output.ActionWrite:
		base = IDWrite
	case output.ActionCancel:
		base = IDCancel
	default:
		base = string(b.Action)
	}
	if b.Ref == "" {
		return base
	}
	return base + ":" + b.Ref
}

// SplitID separates the base of a custom id from its arguments.
func SplitID(customID string) (base string, args []string) {
	parts := strings.Split(customID, ":")
	return parts[0], parts[1:]
}

// OpinionModalID encodes the round and target an opinion modal writes about.
func OpinionModalID(eventID uint, roundNumber int, targetID uint) string {
	return fmt.Sprintf("%s:%d:%d:%d", IDOpinionModal, eventID, roundNumber, targetID)
}

// ParseOpinionModalID decodes OpinionModalID.
func ParseOpinionModalID(customID string) (eventID uint, roundNumber int, targetID uint, err error) {
	base, args := SplitID(customID)
	if base != IDOpinionModal || len(args) != 3 {
		return 0, 0, 0, fmt.Errorf("malformed opinion modal id %q", customID)
	}
	e, err := ParseUint(args[0])
	if err != nil {
		return 0, 0, 0, err
	}
	r, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("round number %q: %w", args[1], err)
	}
	t, err := ParseUint(args[2])
	if err != nil {
		return 0, 0, 0, err
	}
	return e, r, t, nil
}

// ParseUint parses a database id carried in a custom id or select value.
func ParseUint(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("id %q: %w", s, err)
	}
	return uint(n), nil
}
