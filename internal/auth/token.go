package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/antonD24/ELDI/internal/emergency"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

var ErrInvalidToken = errors.New("invalid device token")

// TokenVerifier проверяет токены устройств (HS256) и выпускает их
type TokenVerifier struct {
	secret []byte
	issuer string
	clock  clockwork.Clock
}

func NewTokenVerifier(secret, issuer string, clock clockwork.Clock) *TokenVerifier {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TokenVerifier{
		secret: []byte(secret),
		issuer: issuer,
		clock:  clock,
	}
}

// Verify возвращает субъект (claim sub) валидного токена
func (v *TokenVerifier) Verify(token string) (string, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return "", fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.clock.Now),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// Issue выпускает токен субъекта со сроком действия ttl
func (v *TokenVerifier) Issue(subjectID string, ttl time.Duration) (string, error) {
	now := v.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subjectID,
		Issuer:    v.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign device token: %w", err)
	}
	return signed, nil
}

// Session - сессия одного устройства: хранит субъекта, подтвержденного токеном
type Session struct {
	verifier *TokenVerifier

	mu        sync.RWMutex
	subjectID string
}

func NewSession(verifier *TokenVerifier) *Session {
	return &Session{verifier: verifier}
}

// SignIn проверяет токен и запоминает субъекта
func (s *Session) SignIn(token string) (string, error) {
	subjectID, err := s.verifier.Verify(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", emergency.ErrAuthentication, err)
	}
	s.mu.Lock()
	s.subjectID = subjectID
	s.mu.Unlock()
	return subjectID, nil
}

// SignOut завершает сессию
func (s *Session) SignOut() {
	s.mu.Lock()
	s.subjectID = ""
	s.mu.Unlock()
}

// CurrentSubject возвращает субъекта сессии или ErrAuthentication
func (s *Session) CurrentSubject(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.subjectID == "" {
		return "", emergency.ErrAuthentication
	}
	return s.subjectID, nil
}
