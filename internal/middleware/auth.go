package middleware

import (
	"net/http"

	"github.com/awillits/marginalia/internal/auth"
	"github.com/awillits/marginalia/internal/store"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "marginalia_session"

// RequireAuth validates the session cookie, populates the request's
// AuthContext, and extends the session's sliding expiry. The API is consumed
// by a separate client app, so failures are plain 401s rather than
// redirects.
func RequireAuth(sessionStore *store.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			sess, err := sessionStore.GetByToken(cookie.Value)
			if err != nil || sess == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			// Best-effort; an expired-but-active session self-heals next request.
			sessionStore.Touch(sess.ID)

			ac := auth.AuthContext{
				UserID:    sess.UserID,
				SessionID: sess.ID,
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
