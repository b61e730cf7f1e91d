package marketing

import (
	"errors"
	"testing"

	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContact(t *testing.T) {
	c, err := NewContact(" Jane ", "Jane@Example.COM", "Order question", "Where is my parcel?", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", c.Name)
	assert.Equal(t, "jane@example.com", c.Email)
	assert.Equal(t, ContactStatusNew, c.Status)

	assert.True(t, c.MarkRead())
	assert.False(t, c.MarkRead())
	require.NoError(t, c.SetStatus(ContactStatusReplied))
	assert.Error(t, c.SetStatus("spam"))

	_, err = NewContact("Jane", "not-an-email", "x", "y", "")
	assert.Error(t, err)
	_, err = NewContact("Jane", "jane@example.com", "", "y", "")
	assert.Error(t, err)
}

func TestSubscriber_Lifecycle(t *testing.T) {
	s, err := NewSubscriber("News@Example.com", "footer")
	require.NoError(t, err)
	assert.Equal(t, "news@example.com", s.Email)
	assert.Len(t, s.UnsubscribeToken, 48)
	assert.True(t, s.IsSubscribed())

	err = s.Resubscribe()
	assert.True(t, errors.Is(err, shared.ErrAlreadyExists))

	token := s.UnsubscribeToken
	s.Unsubscribe()
	assert.False(t, s.IsSubscribed())
	assert.NotNil(t, s.UnsubscribedAt)
	s.Unsubscribe()

	require.NoError(t, s.Resubscribe())
	assert.True(t, s.IsSubscribed())
	assert.Nil(t, s.UnsubscribedAt)
	assert.NotEqual(t, token, s.UnsubscribeToken)
}
