package jwt

import (
	"context"
	"net/http"
	"strings"

	"drawify/internal/pkg/errs"
	"drawify/internal/pkg/logx"
	"drawify/internal/pkg/resp"
)

type contextKey string

// ContextUserIDKey stores the verified user id in a request context.
const ContextUserIDKey contextKey = "auth_user_id"

// TokenFromHeader extracts the token from an Authorization header. Both
// "Bearer <token>" and a bare token are accepted.
func TokenFromHeader(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return header
}

// IdentityExtractorMiddleware verifies the Authorization token when one is
// present and stores its user id in the context. Requests without a valid
// token pass through anonymously; pair with RequireIdentity to reject them.
func IdentityExtractorMiddleware(verify Verifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromHeader(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := verify(token)
			if err != nil {
				logx.Warn("rejected identity token, continuing anonymously", "error", err.Error())
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ContextUserIDKey, userID)))
		})
	}
}

// RequireIdentity responds 401 unless an earlier middleware stored a user id.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserIDFromContext(r) == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserIDFromContext returns the verified user id, or "" for anonymous requests.
func UserIDFromContext(r *http.Request) string {
	userID, _ := r.Context().Value(ContextUserIDKey).(string)
	return userID
}
