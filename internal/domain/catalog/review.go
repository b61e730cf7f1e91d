package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ReviewStatus represents the moderation status of a review
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

// IsValid reports whether s is a known status
func (s ReviewStatus) IsValid() bool {
	switch s {
	case ReviewStatusPending, ReviewStatusApproved, ReviewStatusRejected:
		return true
	}
	return false
}

// Review is a customer's rating of a product. A customer reviews a
// product at most once.
type Review struct {
	shared.BaseAggregateRoot
	ProductID        uuid.UUID      `gorm:"type:uuid;not null;index"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index"`
	Rating           int            `gorm:"not null"`
	Title            string         `gorm:"type:varchar(150)"`
	Comment          string         `gorm:"type:text;not null"`
	Status           ReviewStatus   `gorm:"type:varchar(20);not null;default:'pending';index"`
	VerifiedPurchase bool           `gorm:"not null;default:false"`
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (Review) TableName() string {
	return "reviews"
}

// NewReview creates a pending review
func NewReview(productID, userID uuid.UUID, rating int, title, comment string) (*Review, error) {
	r := &Review{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		UserID:            userID,
		Status:            ReviewStatusPending,
	}
	if err := r.Edit(rating, title, comment); err != nil {
		return nil, err
	}
	r.Version = 1
	return r, nil
}

// Edit changes the content. Edited reviews go back to moderation.
func (r *Review) Edit(rating int, title, comment string) error {
	if rating < 1 || rating > 5 {
		return shared.NewValidationError("Rating must be between 1 and 5")
	}
	title = strings.TrimSpace(title)
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return shared.NewValidationError("Comment cannot be empty")
	}
	if len(title) > 150 {
		return shared.NewValidationError("Title cannot exceed 150 characters")
	}
	if len(comment) > 5000 {
		return shared.NewValidationError("Comment cannot exceed 5000 characters")
	}
	r.Rating = rating
	r.Title = title
	r.Comment = comment
	r.Status = ReviewStatusPending
	r.IncrementVersion()
	return nil
}

// Moderate sets the moderation status
func (r *Review) Moderate(status ReviewStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError("Invalid review status: %s", status)
	}
	r.Status = status
	r.IncrementVersion()
	return nil
}

// MarkVerifiedPurchase flags the review as written by a buyer
func (r *Review) MarkVerifiedPurchase() {
	r.VerifiedPurchase = true
}

// IsOwnedBy reports whether userID wrote the review
func (r *Review) IsOwnedBy(userID uuid.UUID) bool {
	return r.UserID == userID
}
