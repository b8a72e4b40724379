package middleware

import (
	"context"
	"net/http"

	"qc-console/internal/authz"
	"qc-console/internal/model"
)

// sessionSource is the slice of the session store the middleware needs.
type sessionSource interface {
	User() *model.User
}

type contextKey string

const userContextKey contextKey = "session_user"

type SessionMiddleware struct {
	sessions sessionSource
}

func NewSessionMiddleware(sessions sessionSource) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions}
}

// RequireSession rejects requests while no operator is signed in on this
// station. The identity of the signed-in operator is attached to the context.
func (m *SessionMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := m.sessions.User()
		if user == nil {
			writeDenied(w, "UNAUTHORIZED", "no active session")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles allows only sessions whose role is in the list. It must run
// after RequireSession.
func (m *SessionMiddleware) RequireRoles(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				writeDenied(w, "UNAUTHORIZED", "no active session")
				return
			}

			if !authz.Allowed(user, allowedRoles...) {
				writeDenied(w, "FORBIDDEN", "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	return user, ok
}

func writeDenied(w http.ResponseWriter, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	if code == "FORBIDDEN" {
		w.WriteHeader(http.StatusForbidden)
	} else {
		w.WriteHeader(http.StatusUnauthorized)
	}

	_ = jsonEncode(w, model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
	})
}
