package entities

// RoundMessage points at the single live message a participant sees during a round.
type RoundMessage struct {
	ID            uint
	EventID       uint
	RoundNumber   int
	ParticipantID uint
	ChatID        string
	MessageID     string
}

// Handle returns the notifier address of the live surface.
func (m *RoundMessage) Handle() MessageHandle {
	return MessageHandle{ChatID: m.ChatID, MessageID: m.MessageID}
}

// MessageHandle addresses a message sent by the notifier.
type MessageHandle struct {
	ChatID    string
	MessageID string
}
