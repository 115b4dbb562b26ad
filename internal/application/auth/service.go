// Package auth authenticates the shop administrator.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/brewline/storefront/internal/domain/shared"
	infraauth "github.com/brewline/storefront/internal/infrastructure/auth"
	"github.com/brewline/storefront/internal/infrastructure/logger"
	"go.uber.org/zap"
)

var (
	// ErrInvalidCredentials is returned for a wrong username or password
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	// ErrLoginDisabled is returned when no admin password hash is configured
	ErrLoginDisabled = shared.NewDomainError("LOGIN_DISABLED", "Admin login is not configured")
	// ErrInvalidToken is returned for any token that cannot be used
	ErrInvalidToken = shared.NewDomainError("INVALID_TOKEN", "Invalid or expired token")
)

// TokenIssuer creates and checks admin tokens
type TokenIssuer interface {
	GenerateTokenPair(username string) (*infraauth.TokenPair, error)
	ValidateAccessToken(token string) (*infraauth.Claims, error)
	ValidateRefreshToken(token string) (*infraauth.Claims, error)
}

// Admin identifies the single admin account
type Admin struct {
	Username     string
	PasswordHash string
}

// Service implements login, refresh and logout for the admin
type Service struct {
	admin     Admin
	tokens    TokenIssuer
	blacklist infraauth.TokenBlacklist
	logger    *zap.Logger
}

// NewService creates the auth service
func NewService(admin Admin, tokens TokenIssuer, blacklist infraauth.TokenBlacklist, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{admin: admin, tokens: tokens, blacklist: blacklist, logger: log}
}

// Login checks the credentials and issues a token pair
func (s *Service) Login(ctx context.Context, username, password string) (*infraauth.TokenPair, error) {
	log := logger.WithLogger(ctx, s.logger)
	if s.admin.PasswordHash == "" {
		return nil, ErrLoginDisabled
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.admin.Username)) == 1
	// bcrypt runs even for an unknown username
	pwErr := infraauth.CheckPassword(s.admin.PasswordHash, password)
	if pwErr != nil && !errors.Is(pwErr, infraauth.ErrPasswordMismatch) {
		log.Error("Admin password hash is unusable", zap.Error(pwErr))
		return nil, ErrLoginDisabled
	}
	if !userOK || pwErr != nil {
		log.Warn("Admin login failed", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}

	pair, err := s.tokens.GenerateTokenPair(s.admin.Username)
	if err != nil {
		return nil, err
	}
	log.Info("Admin logged in", zap.String("username", username))
	return pair, nil
}

// Authenticate validates an access token and checks it has not been revoked
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*infraauth.Claims, error) {
	claims, err := s.tokens.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, shared.WrapDomainError(ErrInvalidToken.Code, ErrInvalidToken.Message, err)
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Refresh exchanges a refresh token for a new pair. The old refresh token is revoked.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*infraauth.TokenPair, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, shared.WrapDomainError(ErrInvalidToken.Code, ErrInvalidToken.Message, err)
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}
	if claims.Username != s.admin.Username {
		return nil, ErrInvalidToken
	}

	pair, err := s.tokens.GenerateTokenPair(claims.Username)
	if err != nil {
		return nil, err
	}
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		logger.WithLogger(ctx, s.logger).Warn("Failed to revoke used refresh token", zap.Error(err))
	}
	return pair, nil
}

// Logout revokes the access token and, when given, its refresh token
func (s *Service) Logout(ctx context.Context, claims *infraauth.Claims, refreshToken string) error {
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		return err
	}
	if refreshToken == "" {
		return nil
	}
	refresh, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		// an unusable refresh token needs no revocation
		return nil
	}
	return s.blacklist.AddToBlacklist(ctx, refresh.ID, refresh.RemainingTTL())
}

func (s *Service) checkRevoked(ctx context.Context, claims *infraauth.Claims) error {
	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return err
	}
	if revoked {
		return shared.WrapDomainError(ErrInvalidToken.Code, ErrInvalidToken.Message, infraauth.ErrTokenBlacklisted)
	}
	return nil
}
