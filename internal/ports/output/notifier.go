package output

import (
	"context"

	"roundbot/internal/domain/entities"
)

// Notifier delivers messages to participants. Failures are returned as
// errors and must never panic.
type Notifier interface {
	Send(ctx context.Context, recipient string, msg Message) (entities.MessageHandle, error)
	Edit(ctx context.Context, handle entities.MessageHandle, msg Message) error
	Delete(ctx context.Context, handle entities.MessageHandle) error
}

// Message is a transport-neutral text with optional controls.
type Message struct {
	Text     string
	Controls Controls
}

// Controls are the interactive elements attached to a message.
type Controls struct {
	Targets []TargetOption
	Buttons []Button
}

func (c Controls) Empty() bool {
	return len(c.Targets) == 0 && len(c.Buttons) == 0
}

// TargetOption is a participant that can be written about.
type TargetOption struct {
	ParticipantID uint
	Label         string
	Written       bool // already written about this round (hint only)
}

// Action is the participant intent bound to a button.
type Action string

const (
	ActionRefresh Action = "refresh"
	ActionDone    Action = "done"
	ActionWrite   Action = "write"
	ActionCancel  Action = "cancel"
)

type Button struct {
	Action Action
	Label  string
	// Ref carries action context, e.g. the target of ActionWrite.
	Ref string
}
