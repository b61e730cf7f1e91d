package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/infrastructure/config"
)

// tokenCookies writes an access/refresh pair as HttpOnly cookies
type tokenCookies struct {
	cfg         config.CookieConfig
	accessName  string
	refreshName string
}

func newTokenCookies(cfg config.CookieConfig, accessName, refreshName string) tokenCookies {
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	return tokenCookies{cfg: cfg, accessName: accessName, refreshName: refreshName}
}

func (t tokenCookies) set(c *gin.Context, pair *auth.TokenPair) {
	if pair == nil {
		return
	}
	now := time.Now()
	t.write(c, t.accessName, pair.AccessToken, int(pair.AccessTokenExpiresAt.Sub(now).Seconds()))
	t.write(c, t.refreshName, pair.RefreshToken, int(pair.RefreshTokenExpiresAt.Sub(now).Seconds()))
}

func (t tokenCookies) clear(c *gin.Context) {
	t.write(c, t.accessName, "", -1)
	t.write(c, t.refreshName, "", -1)
}

// refreshToken prefers an explicit body value over the cookie
func (t tokenCookies) refreshToken(c *gin.Context, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	token, _ := c.Cookie(t.refreshName)
	return token
}

func (t tokenCookies) write(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(sameSite(t.cfg.SameSite))
	c.SetCookie(name, value, maxAge, t.cfg.Path, t.cfg.Domain, t.cfg.Secure, true)
}

func sameSite(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
