package application

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"roundbot/internal/domain"
	"roundbot/internal/domain/entities"
)

const (
	fullNameMinLen = 2
	fullNameMaxLen = 200
)

var (
	instagramPattern = regexp.MustCompile(`(?i)^(https?://)?(www\.)?instagram\.com/[\w.]+$|^@?[\w.]+$`)
	telegramPattern  = regexp.MustCompile(`(?i)^(https?://)?(www\.)?t\.me/\w{5,}$|^@?\w{5,32}$`)
	vkPattern        = regexp.MustCompile(`(?i)^(https?://)?(www\.)?vk\.com/(id\d+|[\w.]+)$|^[\w.]{2,}$`)
)

// FieldError reports which registration field was rejected.
type FieldError struct {
	Field string // full_name, instagram, telegram or vk
	Rule  string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", domain.ErrInvalidRegistration, e.Field, e.Rule)
}

func (e *FieldError) Unwrap() error {
	return domain.ErrInvalidRegistration
}

// FormValidator checks registration forms.
type FormValidator struct {
	v *validator.Validate
}

func NewFormValidator() *FormValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("fullname", validateFullName)
	_ = v.RegisterValidation("safelink", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), "<>\n\r")
	})
	_ = v.RegisterValidation("instagram", matches(instagramPattern))
	_ = v.RegisterValidation("telegram", matches(telegramPattern))
	_ = v.RegisterValidation("vk", matches(vkPattern))
	return &FormValidator{v: v}
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func validateFullName(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	n := len([]rune(s))
	if n < fullNameMinLen || n > fullNameMaxLen {
		return false
	}
	if len(strings.Fields(s)) < 2 {
		return false
	}
	onlyDigits := true
	for _, r := range s {
		if strings.ContainsRune("<>\"'\\;", r) || (unicode.IsControl(r)) {
			return false
		}
		if !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			onlyDigits = false
		}
	}
	return !onlyDigits
}

// Validate returns a *FieldError for the first rejected field.
func (fv *FormValidator) Validate(form entities.RegistrationForm) error {
	err := fv.v.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &FieldError{Field: fieldName(verrs[0].StructField()), Rule: verrs[0].Tag()}
	}
	return fmt.Errorf("validate registration: %w", errors.Join(domain.ErrInvalidRegistration, err))
}

func fieldName(structField string) string {
	switch structField {
	case "FullName":
		return "full_name"
	case "UserID":
		return "user_id"
	default:
		return strings.ToLower(structField)
	}
}
