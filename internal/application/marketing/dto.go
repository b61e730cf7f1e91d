// Package marketing serves newsletter subscriptions and contact messages.
package marketing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/marketing"
)

// SubscribeInput subscribes an address to the newsletter
type SubscribeInput struct {
	Email  string `json:"email" binding:"required,email,max=255"`
	Source string `json:"source" binding:"max=50"`
}

// UnsubscribeInput identifies a subscription by email or by the token
// embedded in newsletter links
type UnsubscribeInput struct {
	Email string `json:"email" binding:"omitempty,email"`
	Token string `json:"token" binding:"omitempty,max=64"`
}

// SubscriberListQuery contains admin newsletter filters
type SubscriberListQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=subscribed unsubscribed"`
	Search   string `form:"search" binding:"max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// SubscriberResponse represents a subscriber in API responses
type SubscriberResponse struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	Status         string     `json:"status"`
	Source         string     `json:"source,omitempty"`
	SubscribedAt   time.Time  `json:"subscribed_at"`
	UnsubscribedAt *time.Time `json:"unsubscribed_at,omitempty"`
}

// ToSubscriberResponse converts a domain subscriber to a response
func ToSubscriberResponse(s *marketing.Subscriber) SubscriberResponse {
	return SubscriberResponse{
		ID:             s.ID,
		Email:          s.Email,
		Status:         string(s.Status),
		Source:         s.Source,
		SubscribedAt:   s.SubscribedAt,
		UnsubscribedAt: s.UnsubscribedAt,
	}
}

// ContactInput is a storefront contact form submission
type ContactInput struct {
	Name    string `json:"name" binding:"required,min=1,max=100"`
	Email   string `json:"email" binding:"required,email,max=255"`
	Subject string `json:"subject" binding:"required,min=1,max=200"`
	Message string `json:"message" binding:"required,min=1,max=5000"`
}

// ContactListQuery contains admin contact filters
type ContactListQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=new read replied archived"`
	Search   string `form:"search" binding:"max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// UpdateContactStatusInput changes the triage status of a message
type UpdateContactStatusInput struct {
	Status string `json:"status" binding:"required,oneof=new read replied archived"`
}

// ContactResponse represents a contact message in API responses
type ContactResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToContactResponse converts a domain contact to a response
func ToContactResponse(c *marketing.Contact) ContactResponse {
	return ContactResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Subject:   c.Subject,
		Message:   c.Message,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func pageDefaults(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return page, size
}
