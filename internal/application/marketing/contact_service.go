package marketing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/marketing"
	"github.com/shopfront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ContactService stores and triages contact form messages
type ContactService struct {
	repo   marketing.ContactRepository
	logger *zap.Logger
}

// NewContactService creates a new ContactService
func NewContactService(repo marketing.ContactRepository, logger *zap.Logger) *ContactService {
	return &ContactService{repo: repo, logger: logger}
}

// Submit stores a contact message from the storefront
func (s *ContactService) Submit(ctx context.Context, input ContactInput, clientIP string) (*ContactResponse, error) {
	contact, err := marketing.NewContact(input.Name, input.Email, input.Subject, input.Message, clientIP)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, contact); err != nil {
		return nil, err
	}
	s.logger.Info("Contact message received", zap.String("contact_id", contact.ID.String()))
	resp := ToContactResponse(contact)
	return &resp, nil
}

// List returns contact messages for the admin
func (s *ContactService) List(ctx context.Context, q ContactListQuery) (*shared.Paginated[ContactResponse], error) {
	filter := marketing.ContactFilter{Search: q.Search}
	if q.Status != "" {
		status := marketing.ContactStatus(q.Status)
		filter.Status = &status
	}
	filter.Page, filter.PageSize = pageDefaults(q.Page, q.PageSize)

	contacts, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]ContactResponse, len(contacts))
	for i, c := range contacts {
		items[i] = ToContactResponse(c)
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Get returns a message and marks it read when it was new
func (s *ContactService) Get(ctx context.Context, id uuid.UUID) (*ContactResponse, error) {
	contact, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if contact.MarkRead() {
		if err := s.repo.Update(ctx, contact); err != nil {
			return nil, err
		}
	}
	resp := ToContactResponse(contact)
	return &resp, nil
}

// SetStatus changes the triage status of a message
func (s *ContactService) SetStatus(ctx context.Context, id uuid.UUID, input UpdateContactStatusInput) (*ContactResponse, error) {
	contact, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := contact.SetStatus(marketing.ContactStatus(input.Status)); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, contact); err != nil {
		return nil, err
	}
	resp := ToContactResponse(contact)
	return &resp, nil
}

// Delete removes a message
func (s *ContactService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
