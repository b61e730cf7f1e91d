package trade

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/shopping"
	"github.com/shopfront/backend/internal/domain/site"
	"github.com/shopfront/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// SettingsProvider returns the current store settings
type SettingsProvider interface {
	Current(ctx context.Context) (*site.Settings, error)
}

// CheckoutService turns a customer's cart into an order
type CheckoutService struct {
	cartRepo    shopping.CartRepository
	productRepo catalog.ProductRepository
	orderRepo   trade.OrderRepository
	userRepo    identity.UserRepository
	settings    SettingsProvider
	payments    PaymentGateway
	txManager   shared.TransactionManager
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewCheckoutService creates a new CheckoutService. payments may be nil when
// card payments are not configured.
func NewCheckoutService(
	cartRepo shopping.CartRepository,
	productRepo catalog.ProductRepository,
	orderRepo trade.OrderRepository,
	userRepo identity.UserRepository,
	settings SettingsProvider,
	payments PaymentGateway,
	txManager shared.TransactionManager,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *CheckoutService {
	if publisher == nil {
		publisher = shared.NoopEventPublisher
	}
	return &CheckoutService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		settings:    settings,
		payments:    payments,
		txManager:   txManager,
		publisher:   publisher,
		logger:      logger,
	}
}

// Checkout places an order for everything in the user's cart. Stock is
// decremented under row locks and the cart is cleared in the same
// transaction. Card orders get a payment intent whose client secret is
// returned to the caller.
func (s *CheckoutService) Checkout(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*CheckoutResponse, error) {
	method := trade.PaymentMethod(input.PaymentMethod)
	if method == trade.PaymentMethodCard && s.payments == nil {
		return nil, shared.NewDomainError(shared.CodePaymentUnavailable, "Card payments are not available")
	}
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	if settings.MaintenanceMode {
		return nil, shared.NewInvalidStateError("The store is not accepting orders right now")
	}

	var (
		order    *trade.Order
		products []*catalog.Product
		intent   *PaymentIntent
	)
	err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		cart, err := s.cartRepo.FindByUser(txCtx, userID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.ErrEmptyCart
			}
			return err
		}
		if cart.IsEmpty() {
			return shared.ErrEmptyCart
		}

		order, err = trade.NewOrder(userID, input.ShippingAddress.toDomain(), method, input.Notes)
		if err != nil {
			return err
		}

		products, err = s.reserveStock(txCtx, cart, order)
		if err != nil {
			return err
		}

		if err := order.Place(pricingFrom(settings)); err != nil {
			return err
		}

		if method == trade.PaymentMethodCard {
			intent, err = s.payments.CreatePaymentIntent(txCtx, s.intentRequest(txCtx, order))
			if err != nil {
				return err
			}
			order.AttachPaymentIntent(intent.ID)
		}

		if err := s.orderRepo.Create(txCtx, order); err != nil {
			return err
		}

		cart.Clear()
		return s.cartRepo.Save(txCtx, cart)
	})
	if err != nil {
		if intent != nil {
			s.voidIntent(ctx, intent.ID)
		}
		return nil, err
	}

	aggs := make([]shared.AggregateRoot, 0, len(products)+1)
	aggs = append(aggs, order)
	for _, p := range products {
		aggs = append(aggs, p)
	}
	if err := shared.PublishPending(ctx, s.publisher, aggs...); err != nil {
		s.logger.Warn("Failed to publish checkout events",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
	}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("payment_method", string(method)),
		zap.String("total", order.Total.StringFixed(2)))

	resp := &CheckoutResponse{Order: ToOrderResponse(order)}
	if intent != nil {
		resp.ClientSecret = intent.ClientSecret
	}
	return resp, nil
}

// reserveStock locks every product in the cart, takes the requested
// quantity off its stock and snapshots it onto the order at the current
// price.
func (s *CheckoutService) reserveStock(ctx context.Context, cart *shopping.Cart, order *trade.Order) ([]*catalog.Product, error) {
	locked, err := s.productRepo.FindByIDsForUpdate(ctx, cart.ProductIDs())
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(locked))
	for _, p := range locked {
		byID[p.ID] = p
	}

	products := make([]*catalog.Product, 0, len(cart.Items))
	for _, line := range cart.Items {
		p, ok := byID[line.ProductID]
		if !ok || p.Status != catalog.ProductStatusActive {
			return nil, shared.NewDomainError(shared.CodeInsufficientStock,
				"A product in your cart is no longer available").WithDetails(map[string]any{"product_id": line.ProductID})
		}
		if err := p.DecreaseStock(line.Quantity); err != nil {
			return nil, err
		}
		if err := s.productRepo.Update(ctx, p); err != nil {
			return nil, err
		}
		if err := order.AddItem(p.ID, p.SKU, p.Name, p.PrimaryImage(), p.Price, line.Quantity); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (s *CheckoutService) intentRequest(ctx context.Context, order *trade.Order) PaymentIntentRequest {
	req := PaymentIntentRequest{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		AmountMinor: order.AmountInMinorUnits(),
		Currency:    order.Currency,
	}
	if s.userRepo != nil {
		if user, err := s.userRepo.FindByID(ctx, order.UserID); err == nil {
			req.Email = user.Email
		}
	}
	return req
}

func (s *CheckoutService) voidIntent(ctx context.Context, intentID string) {
	if err := s.payments.CancelPaymentIntent(ctx, intentID); err != nil {
		s.logger.Error("Failed to cancel payment intent after rollback",
			zap.String("payment_intent_id", intentID),
			zap.Error(err))
	}
}

func pricingFrom(settings *site.Settings) trade.Pricing {
	return trade.Pricing{
		ShippingFee:           settings.ShippingFee,
		FreeShippingThreshold: settings.FreeShippingThreshold,
		TaxRate:               settings.TaxRate,
		Currency:              settings.Currency,
	}
}
