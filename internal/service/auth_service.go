package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/yourorg/orgvault/internal/domain"
	"github.com/yourorg/orgvault/internal/observability/metrics"
	"github.com/yourorg/orgvault/internal/security/auth"
	"github.com/yourorg/orgvault/internal/security/password"
	"github.com/yourorg/orgvault/internal/security/ratelimit"
)

// AuthService authenticates organization admins and issues bearer tokens.
type AuthService struct {
	directory domain.Directory
	codec     *password.Codec
	tokens    *auth.TokenManager
	limiter   *ratelimit.Limiter
	logger    *slog.Logger
}

// NewAuthService creates a new authentication service. The limiter is
// optional; without one, login attempts are not throttled.
func NewAuthService(
	directory domain.Directory,
	codec *password.Codec,
	tokens *auth.TokenManager,
	limiter *ratelimit.Limiter,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		directory: directory,
		codec:     codec,
		tokens:    tokens,
		limiter:   limiter,
		logger:    logger,
	}
}

// LoginResult is the issued credential plus the identifiers the caller
// needs to address its organization.
type LoginResult struct {
	Token      string `json:"access_token"`
	TokenType  string `json:"token_type"`
	ExpiresIn  int    `json:"expires_in"` // seconds
	AdminID    string `json:"admin_id"`
	TenantID   string `json:"organization_id"`
	TenantName string `json:"organization_name"`
}

// Login verifies the admin's credentials and issues a token bound to the
// admin and its organization. Unknown email and wrong password both come
// back as ErrUnauthorized so responses never reveal which one it was.
func (s *AuthService) Login(ctx context.Context, email, pass string) (*LoginResult, error) {
	if email == "" || pass == "" {
		return nil, domain.ErrUnauthorized
	}
	if s.limiter != nil && !s.limiter.Allow(ctx, email) {
		metrics.ObserveLogin("throttled")
		return nil, domain.ErrTooManyAttempts
	}

	admin, err := s.directory.FindAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAdminNotFound) {
			s.logger.Info("login attempt with unknown email", slog.String("email", email))
			metrics.ObserveLogin("failed")
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	if !s.codec.Verify(pass, admin.PasswordHash) {
		s.logger.Info("login failed with wrong password", slog.String("email", email))
		metrics.ObserveLogin("failed")
		return nil, domain.ErrUnauthorized
	}

	tenant, err := s.directory.FindTenantByName(ctx, admin.OrganizationName)
	if err != nil {
		if errors.Is(err, domain.ErrTenantNotFound) {
			// Admin without an organization is a dangling record; do not
			// issue a token for it.
			s.logger.Warn("admin has no organization", slog.String("email", email))
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	token, err := s.tokens.GenerateToken(admin.ID.Hex(), tenant.ID.Hex(), tenant.Name, admin.Email)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, errors.New("failed to generate token")
	}

	metrics.ObserveLogin("success")
	s.logger.Info("admin logged in",
		slog.String("admin_id", admin.ID.Hex()),
		slog.String("organization", tenant.Name),
	)

	return &LoginResult{
		Token:      token,
		TokenType:  "bearer",
		ExpiresIn:  int(s.tokens.TTL().Seconds()),
		AdminID:    admin.ID.Hex(),
		TenantID:   tenant.ID.Hex(),
		TenantName: tenant.Name,
	}, nil
}

// Authenticate validates a token and re-fetches the admin record, so edits
// and deletions take effect immediately even though issued tokens are not
// revocable. The returned identity carries the admin's current organization
// name, which after a rename differs from the name snapshotted in the token.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.AdminIdentity, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	admin, err := s.directory.FindAdminByID(ctx, claims.AdminID)
	if err != nil {
		if errors.Is(err, domain.ErrAdminNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	return &domain.AdminIdentity{
		AdminID:          admin.ID.Hex(),
		Email:            admin.Email,
		OrganizationID:   admin.OrganizationID,
		OrganizationName: admin.OrganizationName,
	}, nil
}
