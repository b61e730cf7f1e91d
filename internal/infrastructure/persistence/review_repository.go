package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReviewRepository implements ReviewRepository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// Create inserts a review
func (r *GormReviewRepository) Create(ctx context.Context, review *catalog.Review) error {
	return translate(conn(ctx, r.db).Create(review).Error, "Review")
}

// Update saves a review
func (r *GormReviewRepository) Update(ctx context.Context, review *catalog.Review) error {
	return translate(conn(ctx, r.db).Save(review).Error, "Review")
}

// Delete soft-deletes a review
func (r *GormReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Delete(&catalog.Review{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "Review")
	}
	return nil
}

// FindByID finds a review by its ID
func (r *GormReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Review, error) {
	var review catalog.Review
	if err := conn(ctx, r.db).First(&review, "id = ?", id).Error; err != nil {
		return nil, translate(err, "Review")
	}
	return &review, nil
}

// FindAll finds reviews newest first
func (r *GormReviewRepository) FindAll(ctx context.Context, filter catalog.ReviewFilter) ([]*catalog.Review, int64, error) {
	query := conn(ctx, r.db).Model(&catalog.Review{})
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var reviews []*catalog.Review
	if err := paginate(query.Order("created_at DESC"), filter.Page, filter.PageSize).Find(&reviews).Error; err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// ExistsByUserAndProduct reports whether the user has a live review of the product
func (r *GormReviewRepository) ExistsByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&catalog.Review{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	return count > 0, err
}

// Summarize computes the rating distribution and average of approved reviews
func (r *GormReviewRepository) Summarize(ctx context.Context, productID uuid.UUID) (*catalog.RatingSummary, error) {
	var rows []struct {
		Rating int
		Total  int
	}
	err := conn(ctx, r.db).Model(&catalog.Review{}).
		Select("rating, COUNT(*) AS total").
		Where("product_id = ? AND status = ?", productID, catalog.ReviewStatusApproved).
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summary := &catalog.RatingSummary{
		Average:      decimal.Zero,
		Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}
	sum := 0
	for _, row := range rows {
		summary.Distribution[row.Rating] = row.Total
		summary.Count += row.Total
		sum += row.Rating * row.Total
	}
	if summary.Count > 0 {
		summary.Average = decimal.NewFromInt(int64(sum)).
			Div(decimal.NewFromInt(int64(summary.Count))).
			Round(2)
	}
	return summary, nil
}

// Ensure GormReviewRepository implements ReviewRepository
var _ catalog.ReviewRepository = (*GormReviewRepository)(nil)
