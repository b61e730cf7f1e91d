package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/application/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/infrastructure/logger"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// Auth cookie names. Customer and admin sessions live side by side.
const (
	AccessTokenCookie       = "access_token"
	RefreshTokenCookie      = "refresh_token"
	AdminAccessTokenCookie  = "admin_access_token"
	AdminRefreshTokenCookie = "admin_refresh_token"
)

// AuthConfig holds configuration for the authentication middleware
type AuthConfig struct {
	// Subject selects customer or admin tokens
	Subject    auth.Subject
	JWTService *auth.JWTService
	// Blacklist is required; a failed lookup rejects the request
	Blacklist auth.TokenBlacklist
	// CookieName is read when no bearer header is sent
	CookieName string
	Logger     *zap.Logger
}

// CustomerAuth accepts only customer access tokens
func CustomerAuth(jwtService *auth.JWTService, blacklist auth.TokenBlacklist, log *zap.Logger) gin.HandlerFunc {
	return Authenticate(AuthConfig{
		Subject:    auth.SubjectCustomer,
		JWTService: jwtService,
		Blacklist:  blacklist,
		CookieName: AccessTokenCookie,
		Logger:     log,
	})
}

// AdminAuth accepts only admin access tokens
func AdminAuth(jwtService *auth.JWTService, blacklist auth.TokenBlacklist, log *zap.Logger) gin.HandlerFunc {
	return Authenticate(AuthConfig{
		Subject:    auth.SubjectAdmin,
		JWTService: jwtService,
		Blacklist:  blacklist,
		CookieName: AdminAccessTokenCookie,
		Logger:     log,
	})
}

// Authenticate validates the access token of cfg.Subject from the
// Authorization header or the auth cookie and stores the claims on the
// context
func Authenticate(cfg AuthConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		token := ExtractToken(c, cfg.CookieName)
		if token == "" {
			abortWithError(c, shared.CodeUnauthorized, "Authentication required")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(cfg.Subject, token)
		if err != nil {
			rejectToken(c, cfg, err)
			return
		}

		if err := checkRevoked(c, cfg.Blacklist, claims); err != nil {
			if errors.Is(err, auth.ErrTokenRevoked) {
				rejectToken(c, cfg, err)
				return
			}
			cfg.Logger.Error("Failed to check token blacklist",
				zap.String("user_id", claims.UserID),
				zap.Error(err))
			abortWithError(c, dto.CodeServiceUnavailable, "Authentication is temporarily unavailable")
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(logger.GinUserIDKey, claims.UserID)
		c.Next()
	}
}

func checkRevoked(c *gin.Context, blacklist auth.TokenBlacklist, claims *auth.Claims) error {
	if blacklist == nil {
		return nil
	}
	ctx := c.Request.Context()
	revoked, err := blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return err
	}
	if !revoked {
		revoked, err = blacklist.IsRevokedForUser(ctx, claims.UserID, claims.IssuedAtTime())
		if err != nil {
			return err
		}
	}
	if revoked {
		return auth.ErrTokenRevoked
	}
	return nil
}

func rejectToken(c *gin.Context, cfg AuthConfig, err error) {
	cfg.Logger.Debug("Rejected access token",
		zap.String("subject", string(cfg.Subject)),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))

	var domainErr *shared.DomainError
	if errors.As(identity.TokenError(err), &domainErr) {
		abortWithError(c, domainErr.Code, domainErr.Message)
		return
	}
	abortWithError(c, shared.CodeTokenInvalid, "Invalid token")
}

// ExtractToken returns the bearer token, falling back to the named cookie
func ExtractToken(c *gin.Context, cookieName string) string {
	if header := c.GetHeader(AuthHeaderKey); strings.HasPrefix(header, BearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	}
	if cookieName == "" {
		return ""
	}
	token, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return token
}

// RequirePermission rejects admins whose role does not grant permission.
// It must run after AdminAuth.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortWithError(c, shared.CodeUnauthorized, "Authentication required")
			return
		}
		if !claims.IsAdmin() || !claims.HasPermission(permission) {
			logger.GetGinLogger(c).Warn("Permission denied",
				zap.String("admin_id", claims.UserID),
				zap.String("role", claims.Role),
				zap.String("permission", permission))
			abortWithError(c, shared.CodeForbidden, "You do not have permission to perform this action")
			return
		}
		c.Next()
	}
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetUserID returns the authenticated user or admin ID
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	claims := GetJWTClaims(c)
	if claims == nil {
		return uuid.Nil, false
	}
	id, err := claims.UserUUID()
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// abortWithError stops the chain with the standard error envelope
func abortWithError(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(dto.GetHTTPStatus(code),
		dto.NewErrorResponseWithRequestID(code, message, c.GetString(logger.GinRequestIDKey)))
}
