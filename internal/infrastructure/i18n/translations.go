package i18n

import (
	"embed"
	"fmt"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"roundbot/internal/ports/output"
)

//go:embed active.*.toml
var localeFS embed.FS

var bundleFiles = []string{"active.en.toml", "active.ru.toml"}

var _ output.T = (*Translator)(nil)

// Translator renders bot texts from the embedded bundles. Localizers are
// cached per requested locale.
type Translator struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag

	mu         sync.Mutex
	localizers map[string]*i18n.Localizer
}

// NewTranslator builds a Translator over the embedded bundles. Unknown
// locales fall back to English.
func NewTranslator(defaultLocale string) (*Translator, error) {
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		log.Warn().Str("locale", defaultLocale).Msg("i18n: unknown default locale, using en")
		tag = language.English
	}
	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range bundleFiles {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	return &Translator{
		bundle:          bundle,
		defaultLanguage: tag,
		localizers:      make(map[string]*i18n.Localizer),
	}, nil
}

// T renders key in locale. Missing messages fall back to the default locale,
// then to the key itself.
func (t *Translator) T(locale, key string, data map[string]any) string {
	if key == "" {
		return ""
	}
	msg, err := t.localizer(locale).Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		log.Warn().Err(err).Str("key", key).Str("locale", locale).Msg("i18n: localize failed")
		return key
	}
	return msg
}

func (t *Translator) localizer(locale string) *i18n.Localizer {
	t.mu.Lock()
	defer t.mu.Unlock()
	if l, ok := t.localizers[locale]; ok {
		return l
	}
	l := i18n.NewLocalizer(t.bundle, locale, t.defaultLanguage.String())
	t.localizers[locale] = l
	return l
}

// Languages lists the locales with a loaded bundle.
func (t *Translator) Languages() []string {
	tags := t.bundle.LanguageTags()
	out := make([]string, len(tags))
	for i, tag := range tags {
		out[i] = tag.String()
	}
	return out
}
