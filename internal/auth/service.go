package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/inamate/whiteboard/backend-go/internal/typeid"
)

var ErrInvalidToken = errors.New("invalid token")

const tokenTTL = 24 * time.Hour

type Service struct {
	jwtSecret []byte
	now       func() time.Time
}

func NewService(jwtSecret string) *Service {
	return &Service{
		jwtSecret: []byte(jwtSecret),
		now:       time.Now,
	}
}

type TokenResult struct {
	Token       string `json:"token"`
	SessionID   string `json:"sessionId"`
	DisplayName string `json:"displayName"`
	ExpiresAt   int64  `json:"expiresAt"`
}

// Identity is what a valid token says about its bearer.
type Identity struct {
	SessionID   string
	DisplayName string
}

// IssueSessionToken creates a new editing session and a token for it.
func (s *Service) IssueSessionToken(displayName string) (*TokenResult, error) {
	sessionID := typeid.NewSessionID()
	expires := s.now().Add(tokenTTL)

	claims := jwt.MapClaims{
		"sub":  sessionID,
		"name": displayName,
		"iat":  s.now().Unix(),
		"exp":  expires.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &TokenResult{
		Token:       signed,
		SessionID:   sessionID,
		DisplayName: displayName,
		ExpiresAt:   expires.Unix(),
	}, nil
}

func (s *Service) ValidateToken(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	sessionID, ok := claims["sub"].(string)
	if !ok || sessionID == "" {
		return nil, fmt.Errorf("token subject: %w", ErrInvalidToken)
	}
	name, _ := claims["name"].(string)

	return &Identity{SessionID: sessionID, DisplayName: name}, nil
}
