package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/shopfront/backend/internal/interfaces/http/dto"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSystemHandler_Health(t *testing.T) {
	ok := func(context.Context) error { return nil }

	t.Run("all checks pass", func(t *testing.T) {
		h := NewSystemHandler("Shopfront API", "1.2.3", map[string]HealthCheck{"database": ok, "redis": ok})
		r := newEngine()
		r.GET("/health", h.Health)

		w := testutil.Do(t, r, testutil.Request{Path: "/health"})

		assert.Equal(t, http.StatusOK, w.Code)
		got := testutil.DecodeData[HealthResponse](t, w)
		assert.Equal(t, "ok", got.Status)
		assert.Equal(t, "1.2.3", got.Version)
		assert.Equal(t, map[string]string{"database": "ok", "redis": "ok"}, got.Checks)
	})

	t.Run("failing dependency", func(t *testing.T) {
		down := func(context.Context) error { return errors.New("connection refused") }
		h := NewSystemHandler("Shopfront API", "1.2.3", map[string]HealthCheck{"database": ok, "redis": down})
		r := newEngine()
		r.GET("/health", h.Health)

		w := testutil.Do(t, r, testutil.Request{Path: "/health"})

		testutil.AssertErrorResponse(t, w, http.StatusServiceUnavailable, dto.CodeServiceUnavailable)
		assert.Contains(t, w.Body.String(), `"redis":"down"`)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}
