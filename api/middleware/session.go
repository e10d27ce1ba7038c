package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/catalogcart/pkg/logger"
)

const SessionHeader = "X-Session-Id"

// SessionOptions controls how the storefront session id travels.
type SessionOptions struct {
	CookieName string
	CookieTTL  time.Duration
	Secure     bool
}

// Session binds a storefront session id to the request. The id comes from the X-Session-Id
// header, then the session cookie; a fresh one is issued when neither carries a valid uuid.
// The id is echoed in the header and refreshed in the cookie on every response.
func Session(opts SessionOptions, logg *logger.Logger) func(http.Handler) http.Handler {
	if opts.CookieName == "" {
		opts.CookieName = "cc_session"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := sessionFromRequest(r, opts.CookieName)
			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			w.Header().Set(SessionHeader, sessionID)
			http.SetCookie(w, &http.Cookie{
				Name:     opts.CookieName,
				Value:    sessionID,
				Path:     "/",
				MaxAge:   int(opts.CookieTTL.Seconds()),
				HttpOnly: true,
				Secure:   opts.Secure,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFromRequest(r *http.Request, cookieName string) string {
	if id, ok := normalizeSessionID(r.Header.Get(SessionHeader)); ok {
		return id
	}
	if c, err := r.Cookie(cookieName); err == nil {
		if id, ok := normalizeSessionID(c.Value); ok {
			return id
		}
	}
	return ""
}

func normalizeSessionID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}
