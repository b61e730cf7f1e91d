package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// UserService handles customer management in the back office
type UserService struct {
	userRepo  identity.UserRepository
	sessions  *sessions
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *UserService {
	if publisher == nil {
		publisher = shared.NoopEventPublisher
	}
	return &UserService{
		userRepo: userRepo,
		sessions: &sessions{
			subject:   auth.SubjectCustomer,
			jwt:       jwtService,
			blacklist: blacklist,
			logger:    logger,
		},
		publisher: publisher,
		logger:    logger,
	}
}

// List returns customers matching the query, newest first
func (s *UserService) List(ctx context.Context, q UserListQuery) (*shared.Paginated[UserResponse], error) {
	filter := identity.UserFilter{
		Search:   q.Search,
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if q.Status != "" {
		status := identity.UserStatus(q.Status)
		filter.Status = &status
	}

	users, total, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]UserResponse, len(users))
	for i, u := range users {
		items[i] = ToUserResponse(u)
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Get returns one customer
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// SetStatus enables or disables a customer. Disabling revokes every
// session the customer holds.
func (s *UserService) SetStatus(ctx context.Context, id uuid.UUID, input UpdateUserStatusInput) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := user.SetStatus(identity.UserStatus(input.Status)); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if user.Status == identity.UserStatusInactive {
		if err := s.sessions.revokeAll(ctx, user.ID); err != nil {
			return nil, err
		}
	}
	if err := shared.PublishPending(ctx, s.publisher, user); err != nil {
		s.logger.Warn("Failed to publish user events", zap.Error(err))
	}

	s.logger.Info("Customer status changed",
		zap.String("user_id", user.ID.String()),
		zap.String("status", string(user.Status)))
	resp := ToUserResponse(user)
	return &resp, nil
}

// Delete soft-deletes a customer and revokes their sessions
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Customer deleted", zap.String("user_id", id.String()))
	return s.sessions.revokeAll(ctx, id)
}
