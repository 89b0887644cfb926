package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmfebriyanto/tokotenan-backend/api/responses"
	pkgerrors "github.com/dmfebriyanto/tokotenan-backend/pkg/errors"
	"github.com/dmfebriyanto/tokotenan-backend/pkg/logger"
)

const sessionIDHeader = "X-Session-Id"

type contextKey string

const sessionIDKey contextKey = "session_id"

// Session requires the anonymous storefront session header on every
// request under the group and attaches it to the context. The storefront
// generates the id client-side; the server treats it as opaque.
func Session(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(sessionIDHeader))
			if sessionID == "" {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, sessionIDHeader+" header is required"))
				return
			}

			ctx := context.WithValue(r.Context(), sessionIDKey, sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithSessionID attaches a session id to the context the way the Session
// middleware does.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// SessionID returns the session id attached by the Session middleware.
func SessionID(ctx context.Context) string {
	if value, ok := ctx.Value(sessionIDKey).(string); ok {
		return value
	}
	return ""
}
