package trade

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopfront/backend/internal/domain/shared"
)

// ShippingAddress is the delivery address captured on an order. It is
// stored as a JSON column.
type ShippingAddress struct {
	FullName   string `json:"full_name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

// Normalize trims every field and upper-cases the country code
func (a ShippingAddress) Normalize() ShippingAddress {
	a.FullName = strings.TrimSpace(a.FullName)
	a.Line1 = strings.TrimSpace(a.Line1)
	a.Line2 = strings.TrimSpace(a.Line2)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	a.Country = strings.ToUpper(strings.TrimSpace(a.Country))
	a.Phone = strings.TrimSpace(a.Phone)
	return a
}

// Validate checks required fields
func (a ShippingAddress) Validate() error {
	switch {
	case a.FullName == "":
		return shared.NewValidationError("Shipping full name is required")
	case a.Line1 == "":
		return shared.NewValidationError("Shipping address line is required")
	case a.City == "":
		return shared.NewValidationError("Shipping city is required")
	case a.PostalCode == "":
		return shared.NewValidationError("Shipping postal code is required")
	case a.Country == "":
		return shared.NewValidationError("Shipping country is required")
	case a.Phone == "":
		return shared.NewValidationError("Shipping phone is required")
	}
	return nil
}

// Value implements driver.Valuer
func (a ShippingAddress) Value() (driver.Value, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (a *ShippingAddress) Scan(value any) error {
	if value == nil {
		*a = ShippingAddress{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into ShippingAddress", value)
	}
	if len(data) == 0 {
		*a = ShippingAddress{}
		return nil
	}
	return json.Unmarshal(data, a)
}
