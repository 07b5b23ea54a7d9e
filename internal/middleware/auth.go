// Package middleware contains the HTTP middleware stack, most importantly the
// auth gate that guards the account routes.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Miro-wq/phonebook-api/internal/auth"
	"github.com/Miro-wq/phonebook-api/internal/model"
	"github.com/Miro-wq/phonebook-api/internal/repository"
)

type contextKey struct{}

var userContextKey = contextKey{}

// UserFromContext returns the authenticated user attached by Authenticate.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	return user, ok
}

// Authenticate is the auth gate. Checks run cheapest first: header presence,
// then signature and expiry, and only then the single store round-trip. The
// final check binds token validity to the stored session token, so a later
// login or a logout invalidates tokens that are otherwise still
// cryptographically valid.
func Authenticate(jwtAuth auth.JWTAuthenticator, userRepo repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w)
				return
			}

			userID, err := jwtAuth.VerifyToken(token)
			if err != nil {
				unauthorized(w)
				return
			}

			user, err := userRepo.GetUser(r.Context(), userID)
			if err != nil {
				unauthorized(w)
				return
			}

			if user.SessionToken != token {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"message":"Not authorized"}`))
}
