package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	h "churchadmin/internal/delivery/http/helpers"
	"churchadmin/internal/domain"
)

type memberKey struct{}

// SetUserID returns a context carrying the authenticated member's user id.
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, memberKey{}, userID)
}

// UserIDFromContext returns the member id stored by RequireAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(memberKey{}).(string)
	return id, ok && id != ""
}

// bearerToken extracts the credentials of an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireAuth admits requests carrying a valid access token and stores the
// member id for handlers. Reset tokens are not access tokens and are refused
// by the verifier. Refusals are 401 with UNAUTHORIZED for a missing or
// malformed header and INVALID_TOKEN for a token that does not verify.
func RequireAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing authorization header")
				return
			}
			token, ok := bearerToken(header)
			if !ok {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "expected a bearer token")
				return
			}
			userID, err := verifier.Verify(token)
			if err != nil {
				logger.DebugContext(r.Context(), "access token refused", "route", r.Pattern, "err", err)
				if errors.Is(err, domain.ErrInvalidToken) {
					h.WriteJSONError(w, http.StatusUnauthorized, domain.ErrInvalidToken.Code, domain.ErrInvalidToken.Message)
					return
				}
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			next(w, r.WithContext(SetUserID(r.Context(), userID)))
		}
	}
}
