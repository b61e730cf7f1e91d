package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthService handles customer authentication and profile operations
type AuthService struct {
	userRepo  identity.UserRepository
	sessions  *sessions
	txManager shared.TransactionManager
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewAuthService creates a new customer authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	txManager shared.TransactionManager,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *AuthService {
	if publisher == nil {
		publisher = shared.NoopEventPublisher
	}
	return &AuthService{
		userRepo: userRepo,
		sessions: &sessions{
			subject:   auth.SubjectCustomer,
			jwt:       jwtService,
			blacklist: blacklist,
			logger:    logger,
		},
		txManager: txManager,
		publisher: publisher,
		logger:    logger,
	}
}

func customerIdentity(u *identity.User) auth.Identity {
	return auth.Identity{
		Subject: auth.SubjectCustomer,
		UserID:  u.ID,
		Email:   u.Email,
		Role:    auth.RoleCustomer,
	}
}

// Register creates a customer account and logs it in
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := identity.NormalizeEmail(input.Email)
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewConflictError("Email is already registered")
	}

	user, err := identity.NewUser(input.Name, email, input.Password)
	if err != nil {
		return nil, err
	}
	if input.Phone != "" {
		if err := user.UpdateProfile(nil, &input.Phone, nil); err != nil {
			return nil, err
		}
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.publish(ctx, user)

	tokens, err := s.sessions.jwt.GenerateTokenPair(customerIdentity(user))
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	s.logger.Info("Customer registered", zap.String("user_id", user.ID.String()))
	return &AuthResult{User: ToUserResponse(user), Tokens: tokens}, nil
}

// Login authenticates a customer. Consecutive failures lock the account.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, identity.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login for unknown email")
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := user.CheckCanLogin(); err != nil {
		s.logger.Warn("Login rejected", zap.String("user_id", user.ID.String()), zap.String("status", string(user.Status)))
		return nil, err
	}

	if !user.VerifyPassword(input.Password) {
		locked, err := s.recordLoginFailure(ctx, user.ID)
		if err != nil {
			s.logger.Error("Failed to record login failure", zap.String("user_id", user.ID.String()), zap.Error(err))
			return nil, err
		}
		if locked {
			s.logger.Warn("Account locked after failed logins", zap.String("user_id", user.ID.String()))
			return nil, shared.NewDomainError(shared.CodeAccountLocked, "Account is temporarily locked due to failed login attempts")
		}
		return nil, shared.ErrInvalidCredentials
	}

	user.RecordLoginSuccess(input.IP)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	tokens, err := s.sessions.jwt.GenerateTokenPair(customerIdentity(user))
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	s.logger.Info("Customer logged in", zap.String("user_id", user.ID.String()))
	return &AuthResult{User: ToUserResponse(user), Tokens: tokens}, nil
}

// recordLoginFailure counts a failed password on the locked user row, so
// concurrent failures cannot overwrite each other's count. Reports whether
// the account is locked afterwards.
func (s *AuthService) recordLoginFailure(ctx context.Context, id uuid.UUID) (bool, error) {
	var locked bool
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		user, err := s.userRepo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if user.IsLocked() {
			locked = true
			return nil
		}
		locked = user.RecordLoginFailure()
		return s.userRepo.Update(txCtx, user)
	})
	return locked, err
}

// Refresh rotates a refresh token into a new pair
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	var user *identity.User
	tokens, _, err := s.sessions.rotate(ctx, refreshToken, func(id uuid.UUID) (auth.Identity, error) {
		u, err := s.userRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return auth.Identity{}, shared.NewDomainError(shared.CodeTokenInvalid, "Invalid token")
			}
			return auth.Identity{}, err
		}
		if err := u.CheckCanLogin(); err != nil {
			return auth.Identity{}, err
		}
		user = u
		return customerIdentity(u), nil
	})
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: ToUserResponse(user), Tokens: tokens}, nil
}

// Logout revokes the access token and the optional refresh token
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims, refreshToken string) error {
	if err := s.sessions.revoke(ctx, claims, refreshToken); err != nil {
		return err
	}
	s.logger.Info("Customer logged out", zap.String("user_id", claims.UserID))
	return nil
}

// Me returns the customer's profile
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// UpdateProfile changes name, phone and default address
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	var addr *identity.Address
	if input.Address != nil {
		addr = &identity.Address{
			Line1:      input.Address.Line1,
			Line2:      input.Address.Line2,
			City:       input.Address.City,
			State:      input.Address.State,
			PostalCode: input.Address.PostalCode,
			Country:    input.Address.Country,
		}
	}
	if err := user.UpdateProfile(input.Name, input.Phone, addr); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// ChangePassword changes the password and revokes every existing session.
// The customer logs in again afterwards.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(input.CurrentPassword, input.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	s.logger.Info("Customer changed password", zap.String("user_id", user.ID.String()))
	return s.sessions.revokeAll(ctx, user.ID)
}

func (s *AuthService) publish(ctx context.Context, user *identity.User) {
	if err := shared.PublishPending(ctx, s.publisher, user); err != nil {
		s.logger.Warn("Failed to publish user events", zap.Error(err))
	}
}
