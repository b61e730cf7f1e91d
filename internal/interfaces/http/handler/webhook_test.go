package handler

import (
	"net/http"
	"strings"
	"testing"

	tradeapp "github.com/shopfront/backend/internal/application/trade"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/testutil"
	"go.uber.org/zap"
)

func TestWebhookHandler_Stripe(t *testing.T) {
	h := NewWebhookHandler(tradeapp.NewWebhookService(nil, new(testutil.MockOrderRepository), nil, nil, zap.NewNop()))
	r := newEngine()
	r.POST("/webhooks/stripe", h.Stripe)

	t.Run("missing signature", func(t *testing.T) {
		w := testutil.Do(t, r, testutil.Request{
			Method: http.MethodPost, Path: "/webhooks/stripe",
			Body: strings.NewReader(`{"id":"evt_1"}`),
		})
		testutil.AssertErrorResponse(t, w, http.StatusBadRequest, shared.CodeInvalidInput)
	})

	t.Run("payments disabled", func(t *testing.T) {
		w := testutil.Do(t, r, testutil.Request{
			Method: http.MethodPost, Path: "/webhooks/stripe",
			Body:    strings.NewReader(`{"id":"evt_1"}`),
			Headers: map[string]string{"Stripe-Signature": "t=1,v1=abc"},
		})
		testutil.AssertErrorResponse(t, w, http.StatusBadGateway, shared.CodePaymentUnavailable)
	})

	t.Run("oversized payload", func(t *testing.T) {
		w := testutil.Do(t, r, testutil.Request{
			Method: http.MethodPost, Path: "/webhooks/stripe",
			Body:    strings.NewReader(strings.Repeat("x", maxWebhookPayloadSize+1)),
			Headers: map[string]string{"Stripe-Signature": "t=1,v1=abc"},
		})
		testutil.AssertErrorResponse(t, w, http.StatusRequestEntityTooLarge, shared.CodeFileTooLarge)
	})
}
