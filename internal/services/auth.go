package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"happythings/internal/clock"
	"happythings/internal/crypto"
	"happythings/internal/ratelimit"
	"happythings/internal/store"
)

const DefaultSessionTTL = 24 * time.Hour

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type AuthStatus struct {
	Authenticated bool       `json:"authenticated"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
}

type AuthService struct {
	sessions     SessionRepository
	limiter      ratelimit.Limiter
	tokens       *crypto.TokenService
	clock        clock.Clock
	logger       *zap.Logger
	passwordHash []byte
	ttl          time.Duration
}

type AuthOptions struct {
	// PasswordHash is the bcrypt hash of the admin password. Empty, or a nil
	// token service, disables login.
	PasswordHash []byte
	SessionTTL   time.Duration
}

func NewAuthService(sessions SessionRepository, limiter ratelimit.Limiter, tokens *crypto.TokenService, clk clock.Clock, logger *zap.Logger, opts AuthOptions) *AuthService {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		sessions:     sessions,
		limiter:      limiter,
		tokens:       tokens,
		clock:        clk,
		logger:       logger,
		passwordHash: opts.PasswordHash,
		ttl:          opts.SessionTTL,
	}
}

// HashPassword returns the bcrypt hash of a plaintext admin password.
func HashPassword(plain string) ([]byte, error) {
	if plain == "" {
		return nil, nil
	}
	return bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
}

// Login checks the admin password for clientID and opens a session. Locked-out
// clients are rejected before the password is looked at.
func (s *AuthService) Login(ctx context.Context, clientID, password string) (*LoginResult, error) {
	if len(s.passwordHash) == 0 || s.tokens == nil {
		return nil, ErrNotConfigured
	}
	allowed, err := s.limiter.Allow(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("check login limiter: %w", err)
	}
	if !allowed {
		return nil, ErrTooManyAttempts
	}

	if bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) != nil {
		if err := s.limiter.RecordFailure(ctx, clientID); err != nil {
			return nil, fmt.Errorf("record login failure: %w", err)
		}
		return nil, ErrInvalidPassword
	}
	if err := s.limiter.Reset(ctx, clientID); err != nil {
		s.logger.Warn("could not reset login limiter", zap.String("client_id", clientID), zap.Error(err))
	}

	token, err := s.tokens.NewToken()
	if err != nil {
		return nil, err
	}
	expiresAt := s.clock.Now().Add(s.ttl).UTC()
	if err := s.sessions.CreateSession(ctx, s.tokens.Digest(token), expiresAt); err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" || s.tokens == nil {
		return nil
	}
	return s.sessions.DeleteSession(ctx, s.tokens.Digest(token))
}

// CheckAuth never fails: store errors are logged and reported as unauthenticated.
func (s *AuthService) CheckAuth(ctx context.Context, token string) AuthStatus {
	if token == "" || s.tokens == nil {
		return AuthStatus{}
	}
	sess, err := s.sessions.FindSession(ctx, s.tokens.Digest(token))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Error("session lookup failed", zap.Error(err))
		}
		return AuthStatus{}
	}
	if s.clock.Now().After(sess.ExpiresAt) {
		return AuthStatus{}
	}
	expiresAt := sess.ExpiresAt
	return AuthStatus{Authenticated: true, ExpiresAt: &expiresAt}
}

func (s *AuthService) IsAdmin(ctx context.Context, token string) bool {
	return s.CheckAuth(ctx, token).Authenticated
}

// CleanupExpiredSessions removes sessions that expired before now.
func (s *AuthService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpiredSessions(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("expired sessions removed", zap.Int64("count", n))
	}
	return n, nil
}
