package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := NewConflictError("product with SKU %s already exists", "ABC-1")
	wrapped := fmt.Errorf("create product: %w", err)

	assert.True(t, errors.Is(wrapped, ErrAlreadyExists))
	assert.False(t, errors.Is(wrapped, ErrNotFound))

	var domainErr *DomainError
	assert.True(t, errors.As(wrapped, &domainErr))
	assert.Equal(t, "product with SKU ABC-1 already exists", domainErr.Message)
}

func TestDomainError_WithDetails(t *testing.T) {
	base := NewValidationError("bad row")
	withDetails := base.WithDetails([]string{"row 2"})

	assert.Nil(t, base.Details)
	assert.Equal(t, []string{"row 2"}, withDetails.Details)
	assert.Equal(t, base.Code, withDetails.Code)
}
