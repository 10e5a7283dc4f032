package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidateToken(t *testing.T) {
	s := NewService("secret")
	res, err := s.IssueSessionToken("Ada")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.SessionID, "sess_"))

	identity, err := s.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.SessionID, identity.SessionID)
	assert.Equal(t, "Ada", identity.DisplayName)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	res, err := NewService("one").IssueSessionToken("Ada")
	require.NoError(t, err)

	_, err = NewService("two").ValidateToken(res.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	s := NewService("secret")
	res, err := s.IssueSessionToken("Ada")
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	_, err = s.ValidateToken(res.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthMiddleware(t *testing.T) {
	s := NewService("secret")
	res, err := s.IssueSessionToken("Ada")
	require.NoError(t, err)

	var seen *Identity
	h := s.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + res.Token, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/boards/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
	require.NotNil(t, seen)
	assert.Equal(t, res.SessionID, seen.SessionID)
}

func TestTokenHandler(t *testing.T) {
	h := NewHandler(NewService("secret"))

	rec := httptest.NewRecorder()
	h.Token(rec, httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{"displayName":" Ada "}`)))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"displayName":"Ada"`)

	rec = httptest.NewRecorder()
	h.Token(rec, httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Token(rec, httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
