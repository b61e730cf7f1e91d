package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "shopfront-test",
		MaxRefreshCount:        3,
	})
}

func customerIdentity() Identity {
	return Identity{
		Subject: SubjectCustomer,
		UserID:  uuid.New(),
		Email:   "jane@example.com",
		Role:    RoleCustomer,
	}
}

func adminIdentity() Identity {
	return Identity{
		Subject:     SubjectAdmin,
		UserID:      uuid.New(),
		Email:       "root@shopfront.local",
		Role:        AdminRole("super_admin"),
		Permissions: []string{"*"},
	}
}

func TestNewJWTService_DerivesRefreshSecret(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "abc"})
	assert.Equal(t, []byte("abc:refresh"), svc.refreshSecret)
}

func TestGenerateTokenPair_Customer(t *testing.T) {
	svc := newTestJWTService()
	id := customerIdentity()

	pair, err := svc.GenerateTokenPair(id)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))

	claims, err := svc.ValidateAccessToken(SubjectCustomer, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, id.UserID.String(), claims.UserID)
	assert.Equal(t, id.Email, claims.Email)
	assert.Equal(t, RoleCustomer, claims.Role)
	assert.False(t, claims.IsAdmin())
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateAccessToken_SubjectsAreIsolated(t *testing.T) {
	svc := newTestJWTService()

	customer, err := svc.GenerateTokenPair(customerIdentity())
	require.NoError(t, err)
	admin, err := svc.GenerateTokenPair(adminIdentity())
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(SubjectAdmin, customer.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateAccessToken(SubjectCustomer, admin.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := svc.ValidateAccessToken(SubjectAdmin, admin.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())
	assert.Equal(t, "super_admin", claims.AdminRoleName())
	assert.True(t, claims.HasPermission("products:write"))
}

func TestValidate_RejectsWrongTokenType(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.GenerateTokenPair(customerIdentity())
	require.NoError(t, err)

	// refresh tokens are signed with a different secret
	_, err = svc.ValidateAccessToken(SubjectCustomer, pair.RefreshToken)
	assert.Error(t, err)

	_, err = svc.ValidateRefreshToken(SubjectCustomer, pair.AccessToken)
	assert.Error(t, err)
}

func TestValidate_SharedSecretStillChecksType(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{
		Secret:                 "same-secret-for-both-token-kinds!",
		RefreshSecret:          "same-secret-for-both-token-kinds!",
		AccessTokenExpiration:  time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "shopfront-test",
		MaxRefreshCount:        1,
	})
	pair, err := svc.GenerateTokenPair(customerIdentity())
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(SubjectCustomer, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestValidate_ExpiredToken(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	pair, err := svc.GenerateTokenPair(customerIdentity())
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateAccessToken(SubjectCustomer, pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidate_TamperedAndGarbage(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.GenerateTokenPair(customerIdentity())
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(SubjectCustomer, pair.AccessToken+"x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateAccessToken(SubjectCustomer, "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_RejectsOtherSigningMethod(t *testing.T) {
	svc := newTestJWTService()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "shopfront-test",
			Audience:  jwt.ClaimStrings{"shopfront-test/customer"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID:    uuid.NewString(),
		Role:      RoleCustomer,
		TokenType: TokenTypeAccess,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(SubjectCustomer, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefresh_RotatesAndCountsUp(t *testing.T) {
	svc := newTestJWTService()
	id := customerIdentity()
	pair, err := svc.GenerateTokenPair(id)
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		claims, err := svc.ValidateRefreshToken(SubjectCustomer, pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, i-1, claims.RefreshCount)

		next, err := svc.Refresh(claims, id)
		require.NoError(t, err)
		assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)
		pair = next
	}

	claims, err := svc.ValidateRefreshToken(SubjectCustomer, pair.RefreshToken)
	require.NoError(t, err)
	_, err = svc.Refresh(claims, id)
	assert.ErrorIs(t, err, ErrMaxRefreshExceeded)
}

func TestClaims_RemainingTTL(t *testing.T) {
	c := &Claims{}
	assert.Zero(t, c.RemainingTTL())

	c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	assert.Zero(t, c.RemainingTTL())

	c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	assert.InDelta(t, time.Hour.Seconds(), c.RemainingTTL().Seconds(), 5)
}

func TestClaims_HasPermission(t *testing.T) {
	c := &Claims{Permissions: []string{"catalog:*", "analytics:read"}}
	assert.True(t, c.HasPermission("catalog:write"))
	assert.True(t, c.HasPermission("analytics:read"))
	assert.False(t, c.HasPermission("analytics:write"))
	assert.False(t, c.HasPermission("orders:read"))
}

func TestClaims_IssuedAtMillisecondPrecision(t *testing.T) {
	svc := newTestJWTService()
	issued := time.Date(2026, 4, 1, 12, 0, 0, 750*int(time.Millisecond), time.UTC)
	svc.now = func() time.Time { return issued }

	pair, err := svc.GenerateTokenPair(customerIdentity())
	require.NoError(t, err)
	claims, err := svc.ValidateAccessToken(SubjectCustomer, pair.AccessToken)
	require.NoError(t, err)

	assert.Equal(t, issued.UnixMilli(), claims.IssuedAtTime().UnixMilli())
	assert.Equal(t, issued.Unix(), claims.IssuedAt.Unix())

	legacy := &Claims{RegisteredClaims: jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(issued)}}
	assert.Equal(t, issued.Truncate(time.Second), legacy.IssuedAtTime().UTC())
}
