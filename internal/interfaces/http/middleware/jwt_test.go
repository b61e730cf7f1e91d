package middleware

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService(accessTTL time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  accessTTL,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "shopfront-test",
		MaxRefreshCount:        10,
	})
}

func customerTokens(t *testing.T, svc *auth.JWTService) (*auth.TokenPair, uuid.UUID) {
	t.Helper()
	id := uuid.New()
	pair, err := svc.GenerateTokenPair(auth.Identity{
		Subject: auth.SubjectCustomer, UserID: id, Email: "jane@example.com", Role: auth.RoleCustomer,
	})
	require.NoError(t, err)
	return pair, id
}

func adminTokens(t *testing.T, svc *auth.JWTService, perms ...string) *auth.TokenPair {
	t.Helper()
	pair, err := svc.GenerateTokenPair(auth.Identity{
		Subject: auth.SubjectAdmin, UserID: uuid.New(), Email: "ops@example.com",
		Role: auth.AdminRole("editor"), Permissions: perms,
	})
	require.NoError(t, err)
	return pair
}

func protectedEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		id, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"success": true, "data": id.String()})
	})
	router.GET("/protected", handlers...)
	return router
}

func TestCustomerAuth_BearerAndCookie(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	pair, userID := customerTokens(t, svc)
	router := protectedEngine(CustomerAuth(svc, auth.NewInMemoryTokenBlacklist(), zap.NewNop()))

	w := testutil.Do(t, router, testutil.Request{
		Path:    "/protected",
		Headers: map[string]string{"Authorization": "Bearer " + pair.AccessToken},
	})
	assert.Equal(t, userID.String(), testutil.DecodeData[string](t, w))

	w = testutil.Do(t, router, testutil.Request{
		Path:    "/protected",
		Cookies: []*http.Cookie{{Name: AccessTokenCookie, Value: pair.AccessToken}},
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCustomerAuth_Rejections(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	pair, _ := customerTokens(t, svc)
	router := protectedEngine(CustomerAuth(svc, auth.NewInMemoryTokenBlacklist(), zap.NewNop()))

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing token", "", shared.CodeUnauthorized},
		{"garbage token", "Bearer not-a-jwt", shared.CodeTokenInvalid},
		{"refresh token used as access", "Bearer " + pair.RefreshToken, shared.CodeTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.Request{Path: "/protected"}
			if tt.header != "" {
				req.Headers = map[string]string{"Authorization": tt.header}
			}
			w := testutil.Do(t, router, req)
			testutil.AssertErrorResponse(t, w, http.StatusUnauthorized, tt.code)
		})
	}
}

func TestCustomerAuth_ExpiredToken(t *testing.T) {
	svc := newTestJWTService(-time.Minute)
	pair, _ := customerTokens(t, svc)
	router := protectedEngine(CustomerAuth(svc, auth.NewInMemoryTokenBlacklist(), zap.NewNop()))

	w := testutil.Do(t, router, testutil.Request{
		Path:    "/protected",
		Headers: map[string]string{"Authorization": "Bearer " + pair.AccessToken},
	})

	testutil.AssertErrorResponse(t, w, http.StatusUnauthorized, shared.CodeTokenExpired)
}

func TestCustomerAuth_RevokedToken(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	pair, _ := customerTokens(t, svc)
	blacklist := auth.NewInMemoryTokenBlacklist()
	claims, err := svc.ValidateAccessToken(auth.SubjectCustomer, pair.AccessToken)
	require.NoError(t, err)
	require.NoError(t, blacklist.Revoke(context.Background(), claims.ID, time.Hour))
	router := protectedEngine(CustomerAuth(svc, blacklist, zap.NewNop()))

	w := testutil.Do(t, router, testutil.Request{
		Path:    "/protected",
		Headers: map[string]string{"Authorization": "Bearer " + pair.AccessToken},
	})

	testutil.AssertErrorResponse(t, w, http.StatusUnauthorized, shared.CodeTokenInvalid)
}

func TestAuth_SubjectsDoNotMix(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	customer, _ := customerTokens(t, svc)
	admin := adminTokens(t, svc, "*")
	blacklist := auth.NewInMemoryTokenBlacklist()

	adminRouter := protectedEngine(AdminAuth(svc, blacklist, zap.NewNop()))
	w := testutil.Do(t, adminRouter, testutil.Request{
		Path:    "/protected",
		Headers: map[string]string{"Authorization": "Bearer " + customer.AccessToken},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	customerRouter := protectedEngine(CustomerAuth(svc, blacklist, zap.NewNop()))
	w = testutil.Do(t, customerRouter, testutil.Request{
		Path:    "/protected",
		Headers: map[string]string{"Authorization": "Bearer " + admin.AccessToken},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequirePermission(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	blacklist := auth.NewInMemoryTokenBlacklist()
	router := protectedEngine(AdminAuth(svc, blacklist, zap.NewNop()), RequirePermission("orders:write"))

	editor := adminTokens(t, svc, "catalog:*")
	w := testutil.Do(t, router, testutil.Request{
		Path:    "/protected",
		Headers: map[string]string{"Authorization": "Bearer " + editor.AccessToken},
	})
	testutil.AssertErrorResponse(t, w, http.StatusForbidden, shared.CodeForbidden)

	manager := adminTokens(t, svc, "orders:*")
	w = testutil.Do(t, router, testutil.Request{
		Path:    "/protected",
		Headers: map[string]string{"Authorization": "Bearer " + manager.AccessToken},
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExtractToken_PrefersHeader(t *testing.T) {
	router := gin.New()
	router.GET("/t", func(c *gin.Context) {
		c.String(http.StatusOK, ExtractToken(c, AccessTokenCookie))
	})

	w := testutil.Do(t, router, testutil.Request{
		Path:    "/t",
		Headers: map[string]string{"Authorization": "Bearer from-header"},
		Cookies: []*http.Cookie{{Name: AccessTokenCookie, Value: "from-cookie"}},
	})

	assert.Equal(t, "from-header", w.Body.String())
}
