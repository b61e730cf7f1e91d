package marketing

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/marketing"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected domain error, got %v", err)
	assert.Equal(t, code, de.Code)
}

func subscriber(t *testing.T, email string) *marketing.Subscriber {
	t.Helper()
	sub, err := marketing.NewSubscriber(email, "footer")
	require.NoError(t, err)
	return sub
}

func TestNewsletterService_Subscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("new address is created", func(t *testing.T) {
		repo := new(testutil.MockSubscriberRepository)
		svc := NewNewsletterService(repo, zap.NewNop())
		repo.On("FindByEmail", ctx, "ada@example.com").Return(nil, shared.NewNotFoundError("Subscriber"))
		repo.On("Create", ctx, mock.AnythingOfType("*marketing.Subscriber")).Return(nil)

		resp, created, err := svc.Subscribe(ctx, SubscribeInput{Email: "  Ada@Example.com "})

		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "ada@example.com", resp.Email)
		assert.Equal(t, "subscribed", resp.Status)
	})

	t.Run("active address conflicts", func(t *testing.T) {
		repo := new(testutil.MockSubscriberRepository)
		svc := NewNewsletterService(repo, zap.NewNop())
		repo.On("FindByEmail", ctx, "ada@example.com").Return(subscriber(t, "ada@example.com"), nil)

		_, _, err := svc.Subscribe(ctx, SubscribeInput{Email: "ada@example.com"})

		assertCode(t, err, shared.CodeAlreadyExists)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("unsubscribed address is reactivated", func(t *testing.T) {
		repo := new(testutil.MockSubscriberRepository)
		svc := NewNewsletterService(repo, zap.NewNop())
		sub := subscriber(t, "ada@example.com")
		sub.Unsubscribe()
		oldToken := sub.UnsubscribeToken
		repo.On("FindByEmail", ctx, "ada@example.com").Return(sub, nil)
		repo.On("Update", ctx, sub).Return(nil)

		resp, created, err := svc.Subscribe(ctx, SubscribeInput{Email: "ada@example.com"})

		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, "subscribed", resp.Status)
		assert.Nil(t, resp.UnsubscribedAt)
		assert.NotEqual(t, oldToken, sub.UnsubscribeToken)
	})
}

func TestNewsletterService_Unsubscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("by token", func(t *testing.T) {
		repo := new(testutil.MockSubscriberRepository)
		svc := NewNewsletterService(repo, zap.NewNop())
		sub := subscriber(t, "bob@example.com")
		repo.On("FindByToken", ctx, sub.UnsubscribeToken).Return(sub, nil)
		repo.On("Update", ctx, sub).Return(nil)

		resp, err := svc.Unsubscribe(ctx, UnsubscribeInput{Token: sub.UnsubscribeToken})

		require.NoError(t, err)
		assert.Equal(t, "unsubscribed", resp.Status)
	})

	t.Run("unknown email", func(t *testing.T) {
		repo := new(testutil.MockSubscriberRepository)
		svc := NewNewsletterService(repo, zap.NewNop())
		repo.On("FindByEmail", ctx, "nobody@example.com").Return(nil, shared.NewNotFoundError("Subscriber"))

		_, err := svc.Unsubscribe(ctx, UnsubscribeInput{Email: "nobody@example.com"})

		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("needs email or token", func(t *testing.T) {
		svc := NewNewsletterService(new(testutil.MockSubscriberRepository), zap.NewNop())

		_, err := svc.Unsubscribe(ctx, UnsubscribeInput{})

		assertCode(t, err, shared.CodeValidation)
	})
}

func TestNewsletterService_ExportCSV(t *testing.T) {
	ctx := context.Background()
	repo := new(testutil.MockSubscriberRepository)
	svc := NewNewsletterService(repo, zap.NewNop())
	gone := subscriber(t, "gone@example.com")
	gone.Unsubscribe()
	repo.On("Each", ctx, mock.Anything, mock.Anything).
		Return([]*marketing.Subscriber{subscriber(t, "a@example.com"), gone}, nil)

	var buf bytes.Buffer
	n, err := svc.ExportCSV(ctx, &buf, SubscriberListQuery{})

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(ExportColumns, ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "a@example.com,subscribed,footer,"))
	assert.True(t, strings.HasPrefix(lines[2], "gone@example.com,unsubscribed,"))
	assert.False(t, strings.HasSuffix(lines[2], ","))
}

func TestContactService_GetMarksRead(t *testing.T) {
	ctx := context.Background()
	repo := new(testutil.MockContactRepository)
	svc := NewContactService(repo, zap.NewNop())
	contact, err := marketing.NewContact("Ada", "ada@example.com", "Order", "Where is it?", "10.0.0.1")
	require.NoError(t, err)
	repo.On("FindByID", ctx, contact.ID).Return(contact, nil)
	repo.On("Update", ctx, contact).Return(nil).Once()

	resp, err := svc.Get(ctx, contact.ID)
	require.NoError(t, err)
	assert.Equal(t, "read", resp.Status)

	// a second read does not write again
	_, err = svc.Get(ctx, contact.ID)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "Update", 1)
}

func TestContactService_Submit(t *testing.T) {
	ctx := context.Background()
	repo := new(testutil.MockContactRepository)
	svc := NewContactService(repo, zap.NewNop())

	_, err := svc.Submit(ctx, ContactInput{Name: "Ada", Email: "not-an-email", Subject: "Hi", Message: "Hello"}, "")
	assertCode(t, err, shared.CodeValidation)

	repo.On("Create", ctx, mock.MatchedBy(func(c *marketing.Contact) bool {
		return c.IP == "203.0.113.7" && c.Status == marketing.ContactStatusNew
	})).Return(nil)
	resp, err := svc.Submit(ctx, ContactInput{Name: "Ada", Email: "ada@example.com", Subject: "Hi", Message: "Hello"}, "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, "new", resp.Status)
}

func TestContactService_SetStatusMissing(t *testing.T) {
	ctx := context.Background()
	repo := new(testutil.MockContactRepository)
	svc := NewContactService(repo, zap.NewNop())
	id := uuid.New()
	repo.On("FindByID", ctx, id).Return(nil, shared.NewNotFoundError("Contact"))

	_, err := svc.SetStatus(ctx, id, UpdateContactStatusInput{Status: "archived"})

	assert.True(t, errors.Is(err, shared.ErrNotFound))
}
