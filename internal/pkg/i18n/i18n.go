// Package i18n resolves user-facing labels for the locale carried in a context.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Message ids shared by callers.
const (
	StatusPresent = "status.present"
	StatusAbsent  = "status.absent"
	ErrorInternal = "error.internal"
)

type ctxKey struct{}

// Translator holds the parsed locale bundle and the locale used when a
// context carries none.
type Translator struct {
	bundle        *i18n.Bundle
	defaultLocale string
}

// New loads the embedded locale files. defaultLocale must be one of them.
func New(defaultLocale string) (*Translator, error) {
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("invalid default locale %q: %w", defaultLocale, err)
	}

	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := fs.ReadDir(localeFS, "locales")
	if err != nil {
		return nil, fmt.Errorf("failed to read locales: %w", err)
	}
	// NewBundle already lists tag, so support is decided by the parsed files.
	supported := false
	for _, e := range entries {
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}
		file, err := bundle.ParseMessageFileBytes(data, e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", e.Name(), err)
		}
		if file.Tag == tag {
			supported = true
		}
	}
	if !supported {
		return nil, fmt.Errorf("no locale file for default locale %q", defaultLocale)
	}

	slog.Debug("Locales loaded", "count", len(entries), "default", defaultLocale)
	return &Translator{bundle: bundle, defaultLocale: tag.String()}, nil
}

// WithLocale returns a context carrying locale, an Accept-Language style value.
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, ctxKey{}, locale)
}

// LocaleFromContext returns the locale set by WithLocale, or "".
func LocaleFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKey{}).(string)
	return v
}

// T translates messageID for the context's locale, falling back to the
// default locale. Unknown ids are returned unchanged.
func (t *Translator) T(ctx context.Context, messageID string) string {
	langs := []string{t.defaultLocale}
	if l := LocaleFromContext(ctx); l != "" {
		langs = append([]string{l}, langs...)
	}

	msg, err := i18n.NewLocalizer(t.bundle, langs...).Localize(&i18n.LocalizeConfig{MessageID: messageID})
	if err != nil {
		return messageID
	}
	return msg
}
