package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/marketing"
	"gorm.io/gorm"
)

// GormContactRepository implements ContactRepository using GORM
type GormContactRepository struct {
	db *gorm.DB
}

// NewGormContactRepository creates a new GormContactRepository
func NewGormContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

// Create inserts a contact message
func (r *GormContactRepository) Create(ctx context.Context, contact *marketing.Contact) error {
	return translate(conn(ctx, r.db).Create(contact).Error, "Contact")
}

// Update saves a contact message
func (r *GormContactRepository) Update(ctx context.Context, contact *marketing.Contact) error {
	return translate(conn(ctx, r.db).Save(contact).Error, "Contact")
}

// Delete removes a contact message
func (r *GormContactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Delete(&marketing.Contact{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "Contact")
	}
	return nil
}

// FindByID finds a contact message by ID
func (r *GormContactRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketing.Contact, error) {
	var contact marketing.Contact
	if err := conn(ctx, r.db).First(&contact, "id = ?", id).Error; err != nil {
		return nil, translate(err, "Contact")
	}
	return &contact, nil
}

// FindAll finds contact messages newest first
func (r *GormContactRepository) FindAll(ctx context.Context, filter marketing.ContactFilter) ([]*marketing.Contact, int64, error) {
	query := conn(ctx, r.db).Model(&marketing.Contact{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where("(LOWER(name) LIKE ?"+likeEscape+" OR email LIKE ?"+likeEscape+" OR LOWER(subject) LIKE ?"+likeEscape+")", p, p, p)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var contacts []*marketing.Contact
	if err := paginate(query.Order("created_at DESC"), filter.Page, filter.PageSize).Find(&contacts).Error; err != nil {
		return nil, 0, err
	}
	return contacts, total, nil
}

// GormSubscriberRepository implements SubscriberRepository using GORM
type GormSubscriberRepository struct {
	db *gorm.DB
}

// NewGormSubscriberRepository creates a new GormSubscriberRepository
func NewGormSubscriberRepository(db *gorm.DB) *GormSubscriberRepository {
	return &GormSubscriberRepository{db: db}
}

// Create inserts a subscriber
func (r *GormSubscriberRepository) Create(ctx context.Context, subscriber *marketing.Subscriber) error {
	return translate(conn(ctx, r.db).Create(subscriber).Error, "Subscriber")
}

// Update saves a subscriber
func (r *GormSubscriberRepository) Update(ctx context.Context, subscriber *marketing.Subscriber) error {
	return translate(conn(ctx, r.db).Save(subscriber).Error, "Subscriber")
}

// Delete removes a subscriber
func (r *GormSubscriberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Delete(&marketing.Subscriber{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "Subscriber")
	}
	return nil
}

// FindByID finds a subscriber by ID
func (r *GormSubscriberRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketing.Subscriber, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByEmail finds a subscriber by normalized email
func (r *GormSubscriberRepository) FindByEmail(ctx context.Context, email string) (*marketing.Subscriber, error) {
	return r.findOne(ctx, "email = ?", identity.NormalizeEmail(email))
}

// FindByToken finds a subscriber by unsubscribe token
func (r *GormSubscriberRepository) FindByToken(ctx context.Context, token string) (*marketing.Subscriber, error) {
	return r.findOne(ctx, "unsubscribe_token = ?", token)
}

func (r *GormSubscriberRepository) findOne(ctx context.Context, query string, arg any) (*marketing.Subscriber, error) {
	var subscriber marketing.Subscriber
	if err := conn(ctx, r.db).Where(query, arg).First(&subscriber).Error; err != nil {
		return nil, translate(err, "Subscriber")
	}
	return &subscriber, nil
}

// FindAll finds subscribers newest first
func (r *GormSubscriberRepository) FindAll(ctx context.Context, filter marketing.SubscriberFilter) ([]*marketing.Subscriber, int64, error) {
	query := r.filtered(ctx, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var subscribers []*marketing.Subscriber
	if err := paginate(query.Order("created_at DESC"), filter.Page, filter.PageSize).Find(&subscribers).Error; err != nil {
		return nil, 0, err
	}
	return subscribers, total, nil
}

// Each walks every matching subscriber in primary key batches
func (r *GormSubscriberRepository) Each(ctx context.Context, filter marketing.SubscriberFilter, fn func(*marketing.Subscriber) error) error {
	var batch []*marketing.Subscriber
	result := r.filtered(ctx, filter).
		FindInBatches(&batch, 500, func(tx *gorm.DB, _ int) error {
			for _, s := range batch {
				if err := fn(s); err != nil {
					return err
				}
			}
			return nil
		})
	return result.Error
}

func (r *GormSubscriberRepository) filtered(ctx context.Context, filter marketing.SubscriberFilter) *gorm.DB {
	query := conn(ctx, r.db).Model(&marketing.Subscriber{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("email LIKE ?"+likeEscape, likePattern(filter.Search))
	}
	return query
}

var (
	_ marketing.ContactRepository    = (*GormContactRepository)(nil)
	_ marketing.SubscriberRepository = (*GormSubscriberRepository)(nil)
)
