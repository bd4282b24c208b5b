package middleware

import (
	"net/http"
	"time"

	"abc-retailers/internal/logger"
	"abc-retailers/internal/utils"

	"github.com/google/uuid"
)

const SessionCookie = "cart_session"

// CartSession makes sure every request carries a cart session id. A missing
// or malformed cookie gets a fresh uuid, re-issued with the configured max age.
func CartSession(ttl time.Duration, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sid string
			if c, err := r.Cookie(SessionCookie); err == nil {
				if _, perr := uuid.Parse(c.Value); perr == nil {
					sid = c.Value
				}
			}
			if sid == "" {
				sid = uuid.New().String()
			}

			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    sid,
				Path:     "/",
				MaxAge:   int(ttl.Seconds()),
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := utils.SetSessionID(r.Context(), sid)
			ctx = logger.WithSessionID(ctx, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
