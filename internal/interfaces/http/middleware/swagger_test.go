package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func swaggerRouter(enabled bool, allowed []string) *gin.Engine {
	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(enabled, allowed), func(c *gin.Context) {
		c.String(http.StatusOK, "docs")
	})
	return router
}

func swaggerRequest(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSwaggerProtection(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, swaggerRequest(swaggerRouter(false, nil), "10.0.0.1:1234").Code)
	open := swaggerRequest(swaggerRouter(true, nil), "10.0.0.1:1234")
	assert.Equal(t, http.StatusOK, open.Code)
	assert.Contains(t, open.Header().Get("Content-Security-Policy"), "script-src 'self'")

	restricted := swaggerRouter(true, []string{"192.168.1.10", "10.0.0.0/8"})
	assert.Equal(t, http.StatusOK, swaggerRequest(restricted, "192.168.1.10:5000").Code)
	assert.Equal(t, http.StatusOK, swaggerRequest(restricted, "10.20.30.40:5000").Code)
	assert.Equal(t, http.StatusForbidden, swaggerRequest(restricted, "172.16.0.1:5000").Code)
}

func TestIsIPAllowed(t *testing.T) {
	_, network, _ := net.ParseCIDR("10.0.0.0/8")
	ips := []net.IP{net.ParseIP("127.0.0.1")}

	assert.True(t, isIPAllowed(net.ParseIP("127.0.0.1"), ips, nil))
	assert.True(t, isIPAllowed(net.ParseIP("10.1.2.3"), nil, []*net.IPNet{network}))
	assert.False(t, isIPAllowed(net.ParseIP("11.0.0.1"), ips, []*net.IPNet{network}))
	assert.False(t, isIPAllowed(nil, ips, nil))
}
