// Package auth issues and verifies JWTs for customers and admins and tracks
// revoked tokens.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/infrastructure/config"
)

// TokenType represents the type of JWT token
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Subject separates customer and admin tokens. Each subject gets its own
// audience so a token minted for one never validates for the other.
type Subject string

const (
	SubjectCustomer Subject = "customer"
	SubjectAdmin    Subject = "admin"
)

// RoleCustomer is the role claim carried by customer tokens
const RoleCustomer = "customer"

// AdminRole returns the role claim for an admin role, e.g. admin:editor
func AdminRole(role string) string {
	return "admin:" + role
}

// Common errors
var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidTokenType   = errors.New("invalid token type")
	ErrInvalidClaims      = errors.New("invalid token claims")
	ErrMaxRefreshExceeded = errors.New("maximum refresh count exceeded")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

// Claims represents the JWT claims issued by the shop
type Claims struct {
	jwt.RegisteredClaims
	UserID       string    `json:"uid"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	Permissions  []string  `json:"perms,omitempty"`
	TokenType    TokenType `json:"typ"`
	RefreshCount int       `json:"rc,omitempty"`
	// IssuedAtMilli is iat with millisecond precision, compared against
	// revoke-all timestamps
	IssuedAtMilli int64 `json:"iat_ms,omitempty"`
}

// UserUUID parses the user ID claim
func (c *Claims) UserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// IsAdmin reports whether the role claim is an admin role
func (c *Claims) IsAdmin() bool {
	return strings.HasPrefix(c.Role, "admin:")
}

// AdminRoleName returns the admin role without the prefix
func (c *Claims) AdminRoleName() string {
	return strings.TrimPrefix(c.Role, "admin:")
}

// HasPermission reports whether the claims grant permission. "*" grants
// everything and "catalog:*" grants every catalog permission.
func (c *Claims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == "*" || p == permission {
			return true
		}
		if prefix, ok := strings.CutSuffix(p, "*"); ok && strings.HasPrefix(permission, prefix) {
			return true
		}
	}
	return false
}

// RemainingTTL returns the time until expiry, zero when already expired
func (c *Claims) RemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(time.Until(c.ExpiresAt.Time), 0)
}

// IssuedAtTime returns the issued-at time, to the millisecond when the
// token carries it
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAtMilli > 0 {
		return time.UnixMilli(c.IssuedAtMilli)
	}
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// TokenPair represents an access and refresh token pair
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// Identity is what a token pair is minted for
type Identity struct {
	Subject     Subject
	UserID      uuid.UUID
	Email       string
	Role        string
	Permissions []string
}

// JWTService handles JWT token operations
type JWTService struct {
	accessSecret      []byte
	refreshSecret     []byte
	accessExpiration  time.Duration
	refreshExpiration time.Duration
	issuer            string
	maxRefreshCount   int
	now               func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	refreshSecret := []byte(cfg.RefreshSecret)
	if cfg.RefreshSecret == "" {
		refreshSecret = []byte(cfg.Secret + ":refresh")
	}
	return &JWTService{
		accessSecret:      []byte(cfg.Secret),
		refreshSecret:     refreshSecret,
		accessExpiration:  cfg.AccessTokenExpiration,
		refreshExpiration: cfg.RefreshTokenExpiration,
		issuer:            cfg.Issuer,
		maxRefreshCount:   cfg.MaxRefreshCount,
		now:               time.Now,
	}
}

func (s *JWTService) audience(subject Subject) string {
	return s.issuer + "/" + string(subject)
}

// GenerateTokenPair mints a fresh access and refresh token
func (s *JWTService) GenerateTokenPair(id Identity) (*TokenPair, error) {
	return s.issue(id, 0)
}

func (s *JWTService) issue(id Identity, refreshCount int) (*TokenPair, error) {
	now := s.now()
	base := func(ttl time.Duration) jwt.RegisteredClaims {
		return jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   id.UserID.String(),
			Audience:  jwt.ClaimStrings{s.audience(id.Subject)},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		}
	}

	access, err := s.sign(&Claims{
		RegisteredClaims: base(s.accessExpiration),
		UserID:           id.UserID.String(),
		Email:            id.Email,
		Role:             id.Role,
		Permissions:      id.Permissions,
		TokenType:        TokenTypeAccess,
		IssuedAtMilli:    now.UnixMilli(),
	}, s.accessSecret)
	if err != nil {
		return nil, err
	}

	refresh, err := s.sign(&Claims{
		RegisteredClaims: base(s.refreshExpiration),
		UserID:           id.UserID.String(),
		Email:            id.Email,
		Role:             id.Role,
		TokenType:        TokenTypeRefresh,
		RefreshCount:     refreshCount,
		IssuedAtMilli:    now.UnixMilli(),
	}, s.refreshSecret)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:           access,
		RefreshToken:          refresh,
		AccessTokenExpiresAt:  now.Add(s.accessExpiration),
		RefreshTokenExpiresAt: now.Add(s.refreshExpiration),
		TokenType:             "Bearer",
	}, nil
}

func (s *JWTService) sign(claims *Claims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ValidateAccessToken validates an access token for the given subject
func (s *JWTService) ValidateAccessToken(subject Subject, token string) (*Claims, error) {
	return s.validate(token, s.accessSecret, subject, TokenTypeAccess)
}

// ValidateRefreshToken validates a refresh token for the given subject
func (s *JWTService) ValidateRefreshToken(subject Subject, token string) (*Claims, error) {
	return s.validate(token, s.refreshSecret, subject, TokenTypeRefresh)
}

func (s *JWTService) validate(tokenString string, secret []byte, subject Subject, expected TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience(subject)),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.TokenType != expected {
		return nil, ErrInvalidTokenType
	}
	if _, err := claims.UserUUID(); err != nil {
		return nil, ErrInvalidClaims
	}
	if (subject == SubjectAdmin) != claims.IsAdmin() {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

// Refresh validates a refresh token and rotates it into a new pair. id
// carries the current identity so role changes take effect on refresh.
func (s *JWTService) Refresh(claims *Claims, id Identity) (*TokenPair, error) {
	if claims.RefreshCount >= s.maxRefreshCount {
		return nil, ErrMaxRefreshExceeded
	}
	return s.issue(id, claims.RefreshCount+1)
}

// AccessTokenExpiration returns the access token lifetime
func (s *JWTService) AccessTokenExpiration() time.Duration {
	return s.accessExpiration
}

// RefreshTokenExpiration returns the refresh token lifetime
func (s *JWTService) RefreshTokenExpiration() time.Duration {
	return s.refreshExpiration
}
