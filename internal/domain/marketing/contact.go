package marketing

import (
	"strings"

	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/shared"
)

// ContactStatus represents the triage state of a contact message
type ContactStatus string

const (
	ContactStatusNew      ContactStatus = "new"
	ContactStatusRead     ContactStatus = "read"
	ContactStatusReplied  ContactStatus = "replied"
	ContactStatusArchived ContactStatus = "archived"
)

// IsValid reports whether s is a known status
func (s ContactStatus) IsValid() bool {
	switch s {
	case ContactStatusNew, ContactStatusRead, ContactStatusReplied, ContactStatusArchived:
		return true
	}
	return false
}

// Contact is a message sent through the storefront contact form
type Contact struct {
	shared.BaseAggregateRoot
	Name    string        `gorm:"type:varchar(100);not null"`
	Email   string        `gorm:"type:varchar(255);not null;index"`
	Subject string        `gorm:"type:varchar(200);not null"`
	Message string        `gorm:"type:text;not null"`
	Status  ContactStatus `gorm:"type:varchar(20);not null;default:'new';index"`
	IP      string        `gorm:"column:ip_address;type:varchar(45)"`
}

// TableName returns the table name for GORM
func (Contact) TableName() string {
	return "contacts"
}

// NewContact validates and creates a new contact message
func NewContact(name, email, subject, message, ip string) (*Contact, error) {
	name = strings.TrimSpace(name)
	subject = strings.TrimSpace(subject)
	message = strings.TrimSpace(message)
	email = identity.NormalizeEmail(email)

	switch {
	case name == "" || len(name) > 100:
		return nil, shared.NewValidationError("Name must be between 1 and 100 characters")
	case subject == "" || len(subject) > 200:
		return nil, shared.NewValidationError("Subject must be between 1 and 200 characters")
	case message == "" || len(message) > 5000:
		return nil, shared.NewValidationError("Message must be between 1 and 5000 characters")
	}
	if err := identity.ValidateEmail(email); err != nil {
		return nil, err
	}

	return &Contact{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             email,
		Subject:           subject,
		Message:           message,
		Status:            ContactStatusNew,
		IP:                ip,
	}, nil
}

// MarkRead moves a new message to read. Other states are left alone.
func (c *Contact) MarkRead() bool {
	if c.Status != ContactStatusNew {
		return false
	}
	c.Status = ContactStatusRead
	c.IncrementVersion()
	return true
}

// SetStatus sets the triage status
func (c *Contact) SetStatus(status ContactStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError("Invalid contact status: %s", status)
	}
	c.Status = status
	c.IncrementVersion()
	return nil
}
