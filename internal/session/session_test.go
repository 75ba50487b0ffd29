package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/barkeep/internal/session"
)

var secret = []byte("test-secret")

func sign(t *testing.T, key []byte, subject string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	s, err := token.SignedString(key)
	require.NoError(t, err)

	return s
}

func TestActor_Anonymous(t *testing.T) {
	assert.Nil(t, session.Actor(context.Background()))
}

func TestActor_RoundTrip(t *testing.T) {
	id := uuid.New()

	got := session.Actor(session.WithActor(context.Background(), id))
	require.NotNil(t, got)
	assert.Equal(t, id, *got)
}

func TestMiddleware(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantActor  *uuid.UUID
	}{
		{name: "NoToken", wantStatus: http.StatusOK},
		{name: "ValidToken", header: "Bearer " + sign(t, secret, id.String()), wantStatus: http.StatusOK, wantActor: &id},
		{name: "WrongSecret", header: "Bearer " + sign(t, []byte("other"), id.String()), wantStatus: http.StatusUnauthorized},
		{name: "NotUUID", header: "Bearer " + sign(t, secret, "cashier"), wantStatus: http.StatusUnauthorized},
		{name: "NotBearer", header: "Basic abc", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotActor *uuid.UUID

			h := session.Middleware(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotActor = session.Actor(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantActor, gotActor)
		})
	}
}
