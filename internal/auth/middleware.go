package auth

import (
	"log/slog"
	"net/http"

	"securecheck/internal/session"
)

const CookieName = "token"

// SessionMiddleware attaches a session to every request. A valid token cookie
// authenticates it; anything else leaves it Anonymous.
func SessionMiddleware(svc *Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := session.New()

			if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
				o, err := svc.Resolve(r.Context(), cookie.Value)
				if err != nil {
					logger.WarnContext(r.Context(), "ignoring invalid token", "path", r.URL.Path, "error", err)
				} else {
					sess.Authenticate(o)
				}
			}

			next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), sess)))
		})
	}
}

// SetAuthCookie sets the access token in an HttpOnly cookie
func SetAuthCookie(w http.ResponseWriter, token string, maxAge int, secure bool) {
	sameSite := http.SameSiteStrictMode
	if !secure {
		sameSite = http.SameSiteLaxMode // Allow testing from Postman
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Path:     "/",
		MaxAge:   maxAge,
	})
}
