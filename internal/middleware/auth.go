package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/templui/downloadzone/internal/ctxkeys"
	"github.com/templui/downloadzone/internal/service"
)

// BearerAuth verifies an Authorization bearer token when one is sent and
// adds the session to the context. Invalid or missing tokens leave the
// request anonymous; RequireAdmin and RequireUser decide what that means.
func BearerAuth(sessions *service.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			session, err := sessions.Verify(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctxkeys.WithSession(r.Context(), session)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireAdmin ensures the request carries an admin session
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := ctxkeys.Session(r.Context())
		if session == nil {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		if !session.IsAdmin() {
			writeDetail(w, http.StatusForbidden, "Admin access required")
			return
		}
		next(w, r)
	}
}

// RequireUser ensures the request carries any valid session
func RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.Session(r.Context()) == nil {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next(w, r)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
