package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/i18n"
)

// Locale carries the caller's language preference into the request context.
// A lang query parameter wins over Accept-Language.
func Locale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := r.URL.Query().Get("lang")
		if locale == "" {
			locale = r.Header.Get("Accept-Language")
		}
		if locale != "" {
			r = r.WithContext(i18n.WithLocale(r.Context(), locale))
		}
		next.ServeHTTP(w, r)
	})
}
