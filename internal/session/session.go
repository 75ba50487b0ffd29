// Package session carries the acting user through request contexts.
//
// The hosted backend owns sign-in and issues HS256 tokens whose subject is the
// user's UUID. This package only reads that subject; it never issues tokens.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type actorKey struct{}

// WithActor returns a copy of ctx that carries id as the current actor.
func WithActor(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, actorKey{}, id)
}

// Actor returns the current actor, or nil for anonymous contexts.
func Actor(ctx context.Context) *uuid.UUID {
	id, ok := ctx.Value(actorKey{}).(uuid.UUID)
	if !ok {
		return nil
	}

	return &id
}

var errNoSubject = errors.New("token has no subject")

// ParseToken verifies an HS256 token and returns its subject as a UUID.
func ParseToken(secret []byte, raw string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return uuid.Nil, fmt.Errorf("parsing token: %w", err)
	}

	if claims.Subject == "" {
		return uuid.Nil, errNoSubject
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parsing subject: %w", err)
	}

	return id, nil
}

// Middleware attaches the bearer token's subject to the request context.
// Requests without a token pass through anonymously; a bad token is rejected.
// With an empty secret every request is anonymous.
func Middleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if len(secret) == 0 || header == "" {
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				http.Error(w, "invalid authorization header", http.StatusUnauthorized)
				return
			}

			id, err := ParseToken(secret, raw)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), id)))
		})
	}
}
