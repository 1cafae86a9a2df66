package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/reusemart/reusemart-mobile/internal/domain/session"
	"github.com/reusemart/reusemart-mobile/internal/port/outbound"
)

// AuthService runs the login, guest and logout flows.
type AuthService struct {
	api    outbound.AuthAPI
	store  session.Store
	cache  *session.Cache
	logger *slog.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(api outbound.AuthAPI, store session.Store, cache *session.Cache, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{api: api, store: store, cache: cache, logger: logger}
}

// Login authenticates and persists the session. The cache adopts the token
// only after every key is durable, so a crash between the writes cannot leave
// a token without its role. On a partial write the stored keys are rolled
// back and the error matches session.ErrPartialPersist.
func (s *AuthService) Login(ctx context.Context, email, password string) (session.LoginResult, error) {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return session.LoginResult{}, err
	}

	// A pending Clear must not land after the new keys.
	if err := s.cache.Flush(ctx); err != nil {
		s.logger.Warn("earlier session write failed", "error", err)
	}

	if err := session.Persist(ctx, s.store, res.Session()); err != nil {
		if errors.Is(err, session.ErrPartialPersist) {
			if rbErr := session.Destroy(ctx, s.store); rbErr != nil {
				s.logger.Error("failed to roll back partial login", "error", rbErr)
			}
		}
		return session.LoginResult{}, fmt.Errorf("save login: %w", err)
	}

	s.cache.Prime(res.Token)
	s.logger.Info("logged in", "role", res.Role, "jabatan", res.SubRole)
	return res, nil
}

// LoginAsGuest starts a token-less guest session.
func (s *AuthService) LoginAsGuest(ctx context.Context) error {
	if err := s.cache.Flush(ctx); err != nil {
		s.logger.Warn("earlier session write failed", "error", err)
	}
	if err := session.Persist(ctx, s.store, session.Session{Role: string(session.RoleGuest)}); err != nil {
		return fmt.Errorf("save guest session: %w", err)
	}
	s.cache.Prime("")
	s.logger.Info("browsing as guest")
	return nil
}

// Logout clears the session in memory and waits until the store is empty.
func (s *AuthService) Logout(ctx context.Context) error {
	s.cache.Clear()
	if err := s.cache.Flush(ctx); err != nil {
		return fmt.Errorf("clear stored session: %w", err)
	}
	s.logger.Info("logged out")
	return nil
}

// Current returns the stored session.
func (s *AuthService) Current(ctx context.Context) session.Session {
	return session.Load(ctx, s.store, s.logger)
}
