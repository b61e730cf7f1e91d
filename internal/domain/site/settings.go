// Package site holds the storefront-wide settings singleton.
package site

import (
	"net/mail"
	"strings"
	"time"

	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SettingsID is the primary key of the only settings row
const SettingsID = 1

// SocialLinks are the storefront's social profiles
type SocialLinks struct {
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	YouTube   string `json:"youtube,omitempty"`
	TikTok    string `json:"tiktok,omitempty"`
}

// Settings is the storefront configuration editable by admins. Exactly one
// row exists.
type Settings struct {
	ID                    int             `gorm:"primaryKey" json:"-"`
	StoreName             string          `gorm:"type:varchar(100);not null" json:"store_name"`
	SupportEmail          string          `gorm:"type:varchar(255)" json:"support_email"`
	SupportPhone          string          `gorm:"type:varchar(30)" json:"support_phone"`
	Currency              string          `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	TaxRate               decimal.Decimal `gorm:"type:decimal(5,4);not null;default:0" json:"tax_rate"`
	ShippingFee           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"shipping_fee"`
	FreeShippingThreshold decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"free_shipping_threshold"`
	MaintenanceMode       bool            `gorm:"not null;default:false" json:"maintenance_mode"`
	Announcement          string          `gorm:"type:varchar(500)" json:"announcement"`
	Social                SocialLinks     `gorm:"type:jsonb;serializer:json" json:"social"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// TableName returns the table name for GORM
func (Settings) TableName() string {
	return "site_settings"
}

// DefaultSettings returns the settings used before an admin edits them
func DefaultSettings() *Settings {
	return &Settings{
		ID:                    SettingsID,
		StoreName:             "Shopfront",
		Currency:              "USD",
		TaxRate:               decimal.Zero,
		ShippingFee:           decimal.Zero,
		FreeShippingThreshold: decimal.Zero,
	}
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	StoreName             *string
	SupportEmail          *string
	SupportPhone          *string
	Currency              *string
	TaxRate               *decimal.Decimal
	ShippingFee           *decimal.Decimal
	FreeShippingThreshold *decimal.Decimal
	MaintenanceMode       *bool
	Announcement          *string
	Social                *SocialLinks
}

// Apply validates and applies a patch
func (s *Settings) Apply(p Patch) error {
	next := *s
	if p.StoreName != nil {
		name := strings.TrimSpace(*p.StoreName)
		if name == "" || len(name) > 100 {
			return shared.NewValidationError("Store name must be between 1 and 100 characters")
		}
		next.StoreName = name
	}
	if p.SupportEmail != nil {
		email := strings.ToLower(strings.TrimSpace(*p.SupportEmail))
		if email != "" {
			if _, err := mail.ParseAddress(email); err != nil {
				return shared.NewValidationError("Invalid support email")
			}
		}
		next.SupportEmail = email
	}
	if p.SupportPhone != nil {
		next.SupportPhone = strings.TrimSpace(*p.SupportPhone)
	}
	if p.Currency != nil {
		cur := strings.ToUpper(strings.TrimSpace(*p.Currency))
		if len(cur) != 3 {
			return shared.NewValidationError("Currency must be a 3-letter ISO code")
		}
		next.Currency = cur
	}
	if p.TaxRate != nil {
		if p.TaxRate.IsNegative() || p.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
			return shared.NewValidationError("Tax rate must be between 0 and 1")
		}
		next.TaxRate = *p.TaxRate
	}
	if p.ShippingFee != nil {
		if p.ShippingFee.IsNegative() {
			return shared.NewValidationError("Shipping fee cannot be negative")
		}
		next.ShippingFee = p.ShippingFee.Round(2)
	}
	if p.FreeShippingThreshold != nil {
		if p.FreeShippingThreshold.IsNegative() {
			return shared.NewValidationError("Free shipping threshold cannot be negative")
		}
		next.FreeShippingThreshold = p.FreeShippingThreshold.Round(2)
	}
	if p.MaintenanceMode != nil {
		next.MaintenanceMode = *p.MaintenanceMode
	}
	if p.Announcement != nil {
		if len(*p.Announcement) > 500 {
			return shared.NewValidationError("Announcement cannot exceed 500 characters")
		}
		next.Announcement = *p.Announcement
	}
	if p.Social != nil {
		next.Social = *p.Social
	}
	*s = next
	return nil
}

// Public is the subset of settings exposed to storefront visitors
type Public struct {
	StoreName             string          `json:"store_name"`
	SupportEmail          string          `json:"support_email"`
	SupportPhone          string          `json:"support_phone"`
	Currency              string          `json:"currency"`
	ShippingFee           decimal.Decimal `json:"shipping_fee"`
	FreeShippingThreshold decimal.Decimal `json:"free_shipping_threshold"`
	MaintenanceMode       bool            `json:"maintenance_mode"`
	Announcement          string          `json:"announcement"`
	Social                SocialLinks     `json:"social"`
}

// Public returns the visitor-facing subset
func (s *Settings) Public() Public {
	return Public{
		StoreName:             s.StoreName,
		SupportEmail:          s.SupportEmail,
		SupportPhone:          s.SupportPhone,
		Currency:              s.Currency,
		ShippingFee:           s.ShippingFee,
		FreeShippingThreshold: s.FreeShippingThreshold,
		MaintenanceMode:       s.MaintenanceMode,
		Announcement:          s.Announcement,
		Social:                s.Social,
	}
}
