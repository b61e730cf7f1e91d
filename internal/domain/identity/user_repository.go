package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserRepository defines the interface for customer persistence
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	// Delete soft-deletes a user
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	// FindByIDForUpdate loads a user and locks the row for the surrounding
	// transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context, filter UserFilter) ([]*User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
}

// UserFilter contains filter options for querying users
type UserFilter struct {
	// Search matches name or email
	Search   string
	Status   *UserStatus
	Page     int
	PageSize int
}

// AdminRepository defines the interface for admin persistence
type AdminRepository interface {
	Create(ctx context.Context, admin *Admin) error
	Update(ctx context.Context, admin *Admin) error
	FindByID(ctx context.Context, id uuid.UUID) (*Admin, error)
	FindByEmail(ctx context.Context, email string) (*Admin, error)
	Count(ctx context.Context) (int64, error)
}
