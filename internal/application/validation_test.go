package application

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roundbot/internal/domain"
	"roundbot/internal/domain/entities"
)

func TestFormValidator(t *testing.T) {
	v := NewFormValidator()
	valid := entities.RegistrationForm{UserID: "123", FullName: "Ann Lee"}

	tests := []struct {
		name  string
		edit  func(*entities.RegistrationForm)
		field string
	}{
		{"valid minimal", func(*entities.RegistrationForm) {}, ""},
		{"valid socials", func(f *entities.RegistrationForm) {
			f.Instagram = "https://instagram.com/ann.lee"
			f.Telegram = "t.me/annlee"
			f.VK = "vk.com/id12345"
		}, ""},
		{"handles without urls", func(f *entities.RegistrationForm) {
			f.Instagram = "@ann.lee"
			f.Telegram = "@annlee"
			f.VK = "ann.lee"
		}, ""},
		{"cyrillic name", func(f *entities.RegistrationForm) { f.FullName = "Анна Ли" }, ""},
		{"single word", func(f *entities.RegistrationForm) { f.FullName = "Ann" }, "full_name"},
		{"digits only", func(f *entities.RegistrationForm) { f.FullName = "123 456" }, "full_name"},
		{"markup in name", func(f *entities.RegistrationForm) { f.FullName = "Ann <b>Lee</b>" }, "full_name"},
		{"name too long", func(f *entities.RegistrationForm) { f.FullName = "Ann " + strings.Repeat("x", 200) }, "full_name"},
		{"missing user", func(f *entities.RegistrationForm) { f.UserID = "" }, "user_id"},
		{"short telegram", func(f *entities.RegistrationForm) { f.Telegram = "@ann" }, "telegram"},
		{"foreign instagram host", func(f *entities.RegistrationForm) { f.Instagram = "https://evil.com/ann" }, "instagram"},
		{"newline in vk", func(f *entities.RegistrationForm) { f.VK = "ann\nlee" }, "vk"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := valid
			tt.edit(&form)
			err := v.Validate(form)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidRegistration))
			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}
