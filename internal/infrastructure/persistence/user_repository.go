package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts a user
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	return translate(conn(ctx, r.db).Create(user).Error, "User")
}

// Update writes a user back, guarded by the version it was loaded at
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	result := conn(ctx, r.db).Model(&identity.User{}).
		Where("id = ? AND version = ?", user.ID, user.PersistedVersion()).
		Select("*").Omit("id", "created_at").
		Updates(user)
	if result.Error != nil {
		return translate(result.Error, "User")
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	user.MarkPersisted()
	return nil
}

// Delete soft-deletes a user
func (r *GormUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Delete(&identity.User{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "User")
	}
	return nil
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var user identity.User
	if err := conn(ctx, r.db).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err, "User")
	}
	return &user, nil
}

// FindByIDForUpdate loads a user with SELECT ... FOR UPDATE. It must run
// inside a transaction.
func (r *GormUserRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var user identity.User
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "User")
	}
	return &user, nil
}

// FindByEmail finds a user by normalized email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var user identity.User
	if err := conn(ctx, r.db).First(&user, "email = ?", identity.NormalizeEmail(email)).Error; err != nil {
		return nil, translate(err, "User")
	}
	return &user, nil
}

// FindAll finds users newest first
func (r *GormUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]*identity.User, int64, error) {
	query := conn(ctx, r.db).Model(&identity.User{})
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where("(LOWER(name) LIKE ?"+likeEscape+" OR email LIKE ?"+likeEscape+")", p, p)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []*identity.User
	if err := paginate(query.Order("created_at DESC"), filter.Page, filter.PageSize).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// ExistsByEmail reports whether the email is taken, including by deleted users
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Unscoped().Model(&identity.User{}).
		Where("email = ?", identity.NormalizeEmail(email)).
		Count(&count).Error
	return count > 0, err
}

// CountCreatedBetween counts users registered in [from, to)
func (r *GormUserRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&identity.User{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}

// GormAdminRepository implements AdminRepository using GORM
type GormAdminRepository struct {
	db *gorm.DB
}

// NewGormAdminRepository creates a new GormAdminRepository
func NewGormAdminRepository(db *gorm.DB) *GormAdminRepository {
	return &GormAdminRepository{db: db}
}

// Create inserts an admin
func (r *GormAdminRepository) Create(ctx context.Context, admin *identity.Admin) error {
	return translate(conn(ctx, r.db).Create(admin).Error, "Admin")
}

// Update saves an admin
func (r *GormAdminRepository) Update(ctx context.Context, admin *identity.Admin) error {
	return translate(conn(ctx, r.db).Save(admin).Error, "Admin")
}

// FindByID finds an admin by ID
func (r *GormAdminRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Admin, error) {
	var admin identity.Admin
	if err := conn(ctx, r.db).First(&admin, "id = ?", id).Error; err != nil {
		return nil, translate(err, "Admin")
	}
	return &admin, nil
}

// FindByEmail finds an admin by normalized email
func (r *GormAdminRepository) FindByEmail(ctx context.Context, email string) (*identity.Admin, error) {
	var admin identity.Admin
	if err := conn(ctx, r.db).First(&admin, "email = ?", identity.NormalizeEmail(email)).Error; err != nil {
		return nil, translate(err, "Admin")
	}
	return &admin, nil
}

// Count counts admins
func (r *GormAdminRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&identity.Admin{}).Count(&count).Error
	return count, err
}

var (
	_ identity.UserRepository  = (*GormUserRepository)(nil)
	_ identity.AdminRepository = (*GormAdminRepository)(nil)
)
