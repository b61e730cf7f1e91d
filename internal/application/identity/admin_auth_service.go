package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// AdminAuthService handles back-office authentication
type AdminAuthService struct {
	adminRepo identity.AdminRepository
	sessions  *sessions
	logger    *zap.Logger
}

// NewAdminAuthService creates a new admin authentication service
func NewAdminAuthService(
	adminRepo identity.AdminRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AdminAuthService {
	return &AdminAuthService{
		adminRepo: adminRepo,
		sessions: &sessions{
			subject:   auth.SubjectAdmin,
			jwt:       jwtService,
			blacklist: blacklist,
			logger:    logger,
		},
		logger: logger,
	}
}

func adminIdentity(a *identity.Admin) auth.Identity {
	return auth.Identity{
		Subject:     auth.SubjectAdmin,
		UserID:      a.ID,
		Email:       a.Email,
		Role:        auth.AdminRole(string(a.Role)),
		Permissions: a.Permissions(),
	}
}

// Bootstrap creates the first super admin when no admin exists yet
func (s *AdminAuthService) Bootstrap(ctx context.Context, cfg config.AdminBootstrapConfig) error {
	count, err := s.adminRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		return nil
	}
	if cfg.Email == "" || cfg.Password == "" {
		s.logger.Warn("No admin exists and no bootstrap credentials are configured")
		return nil
	}

	admin, err := identity.NewAdmin(cfg.Name, cfg.Email, cfg.Password, identity.AdminRoleSuperAdmin)
	if err != nil {
		return fmt.Errorf("invalid bootstrap admin: %w", err)
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}
	s.logger.Info("Bootstrap admin created", zap.String("email", admin.Email))
	return nil
}

// Login authenticates an admin
func (s *AdminAuthService) Login(ctx context.Context, input LoginInput) (*AdminAuthResult, error) {
	admin, err := s.adminRepo.FindByEmail(ctx, identity.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Admin login for unknown email")
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if !admin.VerifyPassword(input.Password) {
		s.logger.Warn("Admin login with wrong password", zap.String("admin_id", admin.ID.String()))
		return nil, shared.ErrInvalidCredentials
	}
	if !admin.IsActive() {
		return nil, shared.NewDomainError(shared.CodeAccountInactive, "Account has been disabled")
	}

	admin.RecordLogin(input.IP)
	if err := s.adminRepo.Update(ctx, admin); err != nil {
		return nil, err
	}
	tokens, err := s.sessions.jwt.GenerateTokenPair(adminIdentity(admin))
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	s.logger.Info("Admin logged in", zap.String("admin_id", admin.ID.String()), zap.String("role", string(admin.Role)))
	return &AdminAuthResult{Admin: ToAdminResponse(admin), Tokens: tokens}, nil
}

// Refresh rotates an admin refresh token. Role changes apply to the new pair.
func (s *AdminAuthService) Refresh(ctx context.Context, refreshToken string) (*AdminAuthResult, error) {
	var admin *identity.Admin
	tokens, _, err := s.sessions.rotate(ctx, refreshToken, func(id uuid.UUID) (auth.Identity, error) {
		a, err := s.adminRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return auth.Identity{}, shared.NewDomainError(shared.CodeTokenInvalid, "Invalid token")
			}
			return auth.Identity{}, err
		}
		if !a.IsActive() {
			return auth.Identity{}, shared.NewDomainError(shared.CodeAccountInactive, "Account has been disabled")
		}
		admin = a
		return adminIdentity(a), nil
	})
	if err != nil {
		return nil, err
	}
	return &AdminAuthResult{Admin: ToAdminResponse(admin), Tokens: tokens}, nil
}

// Logout revokes the admin's access token and the optional refresh token
func (s *AdminAuthService) Logout(ctx context.Context, claims *auth.Claims, refreshToken string) error {
	if err := s.sessions.revoke(ctx, claims, refreshToken); err != nil {
		return err
	}
	s.logger.Info("Admin logged out", zap.String("admin_id", claims.UserID))
	return nil
}

// Me returns the authenticated admin
func (s *AdminAuthService) Me(ctx context.Context, adminID uuid.UUID) (*AdminResponse, error) {
	admin, err := s.adminRepo.FindByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	resp := ToAdminResponse(admin)
	return &resp, nil
}
