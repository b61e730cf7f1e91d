package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// ReviewService handles product reviews and the product rating they drive
type ReviewService struct {
	reviewRepo  catalog.ReviewRepository
	productRepo catalog.ProductRepository
	orderRepo   trade.OrderRepository
	txManager   shared.TransactionManager
	logger      *zap.Logger
}

// NewReviewService creates a new ReviewService
func NewReviewService(
	reviewRepo catalog.ReviewRepository,
	productRepo catalog.ProductRepository,
	orderRepo trade.OrderRepository,
	txManager shared.TransactionManager,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// ListForProduct returns approved reviews of an active product and its
// rating summary
func (s *ReviewService) ListForProduct(ctx context.Context, productID uuid.UUID, page, pageSize int) (*RatingSummaryResponse, *shared.Paginated[ReviewResponse], error) {
	if _, err := s.activeProduct(ctx, productID); err != nil {
		return nil, nil, err
	}
	summary, err := s.reviewRepo.Summarize(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	approved := catalog.ReviewStatusApproved
	list, err := s.list(ctx, catalog.ReviewFilter{ProductID: &productID, Status: &approved, Page: page, PageSize: pageSize})
	if err != nil {
		return nil, nil, err
	}
	dist := make(map[int]int, 5)
	for r := 1; r <= 5; r++ {
		dist[r] = summary.Distribution[r]
	}
	return &RatingSummaryResponse{Average: summary.Average, Count: summary.Count, Distribution: dist}, list, nil
}

// AdminList returns reviews of every status
func (s *ReviewService) AdminList(ctx context.Context, q ReviewListQuery) (*shared.Paginated[ReviewResponse], error) {
	filter := catalog.ReviewFilter{Page: q.Page, PageSize: q.PageSize}
	if q.Status != "" {
		status := catalog.ReviewStatus(q.Status)
		filter.Status = &status
	}
	if q.ProductID != "" {
		id, err := uuid.Parse(q.ProductID)
		if err != nil {
			return nil, shared.NewValidationError("Invalid product_id")
		}
		filter.ProductID = &id
	}
	return s.list(ctx, filter)
}

func (s *ReviewService) list(ctx context.Context, filter catalog.ReviewFilter) (*shared.Paginated[ReviewResponse], error) {
	filter.Page, filter.PageSize = pageDefaults(filter.Page, filter.PageSize)
	reviews, total, err := s.reviewRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]ReviewResponse, len(reviews))
	for i, r := range reviews {
		items[i] = ToReviewResponse(r)
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Create submits a review. A customer reviews a product once; buyers get
// the verified purchase badge. New reviews wait for moderation.
func (s *ReviewService) Create(ctx context.Context, userID, productID uuid.UUID, input ReviewInput) (*ReviewResponse, error) {
	if _, err := s.activeProduct(ctx, productID); err != nil {
		return nil, err
	}
	exists, err := s.reviewRepo.ExistsByUserAndProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewConflictError("You have already reviewed this product")
	}

	review, err := catalog.NewReview(productID, userID, input.Rating, input.Title, input.Comment)
	if err != nil {
		return nil, err
	}
	purchased, err := s.orderRepo.HasPurchased(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if purchased {
		review.MarkVerifiedPurchase()
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}
	s.logger.Info("Review submitted",
		zap.String("review_id", review.ID.String()),
		zap.String("product_id", productID.String()),
		zap.Bool("verified_purchase", review.VerifiedPurchase))
	resp := ToReviewResponse(review)
	return &resp, nil
}

// Update edits the caller's own review and sends it back to moderation
func (s *ReviewService) Update(ctx context.Context, userID, reviewID uuid.UUID, input ReviewInput) (*ReviewResponse, error) {
	var result *catalog.Review
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		review, err := s.owned(ctx, userID, reviewID)
		if err != nil {
			return err
		}
		wasApproved := review.Status == catalog.ReviewStatusApproved
		if err := review.Edit(input.Rating, input.Title, input.Comment); err != nil {
			return err
		}
		if err := s.reviewRepo.Update(ctx, review); err != nil {
			return err
		}
		if wasApproved {
			if err := s.recalculate(ctx, review.ProductID); err != nil {
				return err
			}
		}
		result = review
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToReviewResponse(result)
	return &resp, nil
}

// Delete removes the caller's own review
func (s *ReviewService) Delete(ctx context.Context, userID, reviewID uuid.UUID) error {
	return s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		review, err := s.owned(ctx, userID, reviewID)
		if err != nil {
			return err
		}
		return s.remove(ctx, review)
	})
}

// Moderate sets the moderation status and refreshes the product rating
func (s *ReviewService) Moderate(ctx context.Context, reviewID uuid.UUID, input ModerateReviewInput) (*ReviewResponse, error) {
	var result *catalog.Review
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		review, err := s.reviewRepo.FindByID(ctx, reviewID)
		if err != nil {
			return err
		}
		if err := review.Moderate(catalog.ReviewStatus(input.Status)); err != nil {
			return err
		}
		if err := s.reviewRepo.Update(ctx, review); err != nil {
			return err
		}
		if err := s.recalculate(ctx, review.ProductID); err != nil {
			return err
		}
		result = review
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Review moderated", zap.String("review_id", reviewID.String()), zap.String("status", input.Status))
	resp := ToReviewResponse(result)
	return &resp, nil
}

// AdminDelete removes any review
func (s *ReviewService) AdminDelete(ctx context.Context, reviewID uuid.UUID) error {
	return s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		review, err := s.reviewRepo.FindByID(ctx, reviewID)
		if err != nil {
			return err
		}
		return s.remove(ctx, review)
	})
}

func (s *ReviewService) remove(ctx context.Context, review *catalog.Review) error {
	if err := s.reviewRepo.Delete(ctx, review.ID); err != nil {
		return err
	}
	if review.Status == catalog.ReviewStatusApproved {
		return s.recalculate(ctx, review.ProductID)
	}
	return nil
}

func (s *ReviewService) owned(ctx context.Context, userID, reviewID uuid.UUID) (*catalog.Review, error) {
	review, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !review.IsOwnedBy(userID) {
		return nil, shared.NewForbiddenError("You can only change your own reviews")
	}
	return review, nil
}

func (s *ReviewService) activeProduct(ctx context.Context, productID uuid.UUID) (*catalog.Product, error) {
	p, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Status != catalog.ProductStatusActive {
		return nil, shared.NewNotFoundError("Product")
	}
	return p, nil
}

// recalculate stores the approved-review average and count on the product
func (s *ReviewService) recalculate(ctx context.Context, productID uuid.UUID) error {
	summary, err := s.reviewRepo.Summarize(ctx, productID)
	if err != nil {
		return err
	}
	return s.productRepo.UpdateRating(ctx, productID, summary.Average, summary.Count)
}
