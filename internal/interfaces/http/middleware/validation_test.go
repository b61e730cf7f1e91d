package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupForm struct {
	Email   string `json:"email" binding:"required,email"`
	Name    string `json:"name" binding:"required,min=2"`
	Address struct {
		Country string `json:"country" binding:"required,len=2"`
	} `json:"address"`
}

func bindSignup(t *testing.T, body string) error {
	t.Helper()
	SetupValidator()

	var bindErr error
	router := gin.New()
	router.POST("/signup", func(c *gin.Context) {
		var form signupForm
		bindErr = c.ShouldBindJSON(&form)
		c.Status(http.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(httptest.NewRecorder(), req)
	return bindErr
}

func TestValidationDetails_UsesJSONNames(t *testing.T) {
	err := bindSignup(t, `{"email":"not-an-email","name":"J","address":{"country":"USA"}}`)
	require.Error(t, err)

	details := ValidationDetails(err)

	require.Len(t, details, 3)
	byField := map[string]string{}
	for _, d := range details {
		byField[d.Field] = d.Message
	}
	assert.Equal(t, "Must be a valid email address", byField["email"])
	assert.Equal(t, "Must be at least 2 characters", byField["name"])
	assert.Equal(t, "Must be exactly 2 characters", byField["address.country"])
}

func TestValidationDetails_OtherErrors(t *testing.T) {
	assert.Nil(t, ValidationDetails(errors.New("boom")))

	err := bindSignup(t, `{"email":`)
	require.Error(t, err)
	assert.Nil(t, ValidationDetails(err))
}
