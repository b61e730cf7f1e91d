// Package site serves the storefront settings
package site

import (
	"context"

	"github.com/shopfront/backend/internal/domain/site"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// UpdateSettingsInput is a partial settings update. Nil fields are unchanged.
type UpdateSettingsInput struct {
	StoreName             *string           `json:"store_name" binding:"omitempty,min=1,max=100"`
	SupportEmail          *string           `json:"support_email" binding:"omitempty,email,max=255"`
	SupportPhone          *string           `json:"support_phone" binding:"omitempty,max=30"`
	Currency              *string           `json:"currency" binding:"omitempty,len=3"`
	TaxRate               *decimal.Decimal  `json:"tax_rate"`
	ShippingFee           *decimal.Decimal  `json:"shipping_fee"`
	FreeShippingThreshold *decimal.Decimal  `json:"free_shipping_threshold"`
	MaintenanceMode       *bool             `json:"maintenance_mode"`
	Announcement          *string           `json:"announcement" binding:"omitempty,max=500"`
	Social                *site.SocialLinks `json:"social"`
}

// SettingsService reads and edits the settings row through an optional cache
type SettingsService struct {
	repo   site.SettingsRepository
	cache  site.SettingsCache
	logger *zap.Logger
}

// NewSettingsService creates a new SettingsService. cache may be nil.
func NewSettingsService(repo site.SettingsRepository, cache site.SettingsCache, logger *zap.Logger) *SettingsService {
	return &SettingsService{repo: repo, cache: cache, logger: logger}
}

// Current returns the full settings
func (s *SettingsService) Current(ctx context.Context) (*site.Settings, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx); ok {
			return cached, nil
		}
	}
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, settings)
	}
	return settings, nil
}

// Public returns the visitor-facing subset
func (s *SettingsService) Public(ctx context.Context) (*site.Public, error) {
	settings, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	pub := settings.Public()
	return &pub, nil
}

// Update applies a partial update and drops the cached copy
func (s *SettingsService) Update(ctx context.Context, input UpdateSettingsInput) (*site.Settings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := settings.Apply(site.Patch{
		StoreName:             input.StoreName,
		SupportEmail:          input.SupportEmail,
		SupportPhone:          input.SupportPhone,
		Currency:              input.Currency,
		TaxRate:               input.TaxRate,
		ShippingFee:           input.ShippingFee,
		FreeShippingThreshold: input.FreeShippingThreshold,
		MaintenanceMode:       input.MaintenanceMode,
		Announcement:          input.Announcement,
		Social:                input.Social,
	}); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	s.logger.Info("Site settings updated")
	return settings, nil
}
