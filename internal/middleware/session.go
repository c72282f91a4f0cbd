package middleware

import (
	"context"
	"net/http"

	"tea-kart/internal/config"
	"tea-kart/internal/session"

	"github.com/rs/zerolog"
)

type sessionKey struct{}

// Session attaches the caller's session to the request context, creating one
// and setting the cookie on the first visit or when the cookie names an
// unknown or expired session.
func Session(mgr *session.Manager, cfg config.SessionConfig, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(cfg.CookieName); err == nil {
				id = c.Value
			}

			sess, created := mgr.Get(r.Context(), id)
			if created || sess.ID.String() != id {
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    sess.ID.String(),
					Path:     "/",
					HttpOnly: true,
					Secure:   cfg.CookieSecure,
					SameSite: http.SameSiteLaxMode,
				})
				logger.Debug().Str("session_id", sess.ID.String()).Msg("session cookie issued")
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// SessionFrom returns the session attached by the Session middleware.
func SessionFrom(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(*session.Session)
	return sess, ok && sess != nil
}
