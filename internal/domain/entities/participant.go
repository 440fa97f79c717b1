package entities

import "time"

// Participant represents a registered attendee of an event.
type Participant struct {
	ID          uint
	EventID     uint
	UserID      string
	DisplayName string
	Instagram   string
	Telegram    string
	VK          string
	CreatedAt   time.Time
}

// RegistrationForm is what a user submits to join the active event.
type RegistrationForm struct {
	UserID    string `validate:"required"`
	IsBot     bool
	FullName  string `validate:"fullname"`
	Instagram string `validate:"omitempty,max=512,safelink,instagram"`
	Telegram  string `validate:"omitempty,max=512,safelink,telegram"`
	VK        string `validate:"omitempty,max=512,safelink,vk"`
}
