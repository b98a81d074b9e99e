package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/aitimaad/verify-admin-go/internal/domain"
	"github.com/aitimaad/verify-admin-go/internal/port"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// SessionService is the admin session gate: a single configured credential
// pair, signed JWT sessions with explicit login/logout instead of ambient
// logged-in flags scattered across the UI.
//
// When a bcrypt password hash is configured it takes precedence over the
// plaintext fallback; the fallback compare is constant-time either way.
type SessionService struct {
	adminEmail   string
	adminPass    string
	adminPassH   string // bcrypt hash, optional
	jwtSecret    []byte
	sessionTTL   time.Duration
	revoked      port.Cache[bool] // token ID -> revoked, TTL-bounded by session lifetime
	logger       *zap.Logger
}

// SessionClaims are the JWT claims carried by an admin session token.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// NewSessionService creates the session gate.
func NewSessionService(adminEmail, adminPass, adminPassHash, jwtSecret string, sessionTTL time.Duration, revoked port.Cache[bool], logger *zap.Logger) *SessionService {
	return &SessionService{
		adminEmail: adminEmail,
		adminPass:  adminPass,
		adminPassH: adminPassHash,
		jwtSecret:  []byte(jwtSecret),
		sessionTTL: sessionTTL,
		revoked:    revoked,
		logger:     logger,
	}
}

// Login checks the submitted credentials against the configured admin pair
// and issues a session token. The admin ID is minted per session.
func (s *SessionService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	_, span := tracer.Start(ctx, "SessionService.Login")
	defer span.End()

	if req.Email == "" || req.Password == "" {
		return nil, &domain.ErrValidation{Field: "credentials", Message: "email and password are required"}
	}

	if !s.credentialsMatch(req.Email, req.Password) {
		s.logger.Warn("login: invalid credentials", zap.String("email", req.Email))
		return nil, &domain.ErrUnauthorized{Message: "Invalid credentials. Please try again."}
	}

	adminID := "admin-" + uuid.New().String()
	token, err := s.signSessionToken(adminID)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	s.logger.Info("admin logged in", zap.String("admin_id", adminID))
	return &domain.LoginResponse{
		Token:     token,
		AdminID:   adminID,
		ExpiresIn: int(s.sessionTTL.Seconds()),
	}, nil
}

// Logout revokes the session. The token stays invalid for its remaining
// lifetime; a fresh login mints a new admin ID.
func (s *SessionService) Logout(ctx context.Context, tokenID string) error {
	_, span := tracer.Start(ctx, "SessionService.Logout")
	defer span.End()

	if tokenID == "" {
		return &domain.ErrUnauthorized{}
	}
	s.revoked.Set(tokenID, true)
	s.logger.Info("admin logged out", zap.String("token_id", tokenID))
	return nil
}

// ValidateSessionToken parses and verifies a session token, rejecting
// revoked sessions.
func (s *SessionService) ValidateSessionToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired session"}
	}

	if revoked, ok := s.revoked.Get(claims.ID); ok && revoked {
		return nil, &domain.ErrUnauthorized{Message: "session revoked"}
	}
	return claims, nil
}

func (s *SessionService) credentialsMatch(email, password string) bool {
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.adminEmail)) == 1

	if s.adminPassH != "" {
		return emailOK && bcrypt.CompareHashAndPassword([]byte(s.adminPassH), []byte(password)) == nil
	}
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPass)) == 1
	return emailOK && passOK
}

func (s *SessionService) signSessionToken(adminID string) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   adminID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}
