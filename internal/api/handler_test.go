package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"shop-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		kind   service.Kind
		status int
	}{
		{service.KindNotFound, http.StatusNotFound},
		{service.KindForbidden, http.StatusForbidden},
		{service.KindConflict, http.StatusConflict},
		{service.KindInvalidTransition, http.StatusConflict},
		{service.KindOutOfStock, http.StatusBadRequest},
		{service.KindInsufficientStock, http.StatusBadRequest},
		{service.KindEmptyCart, http.StatusBadRequest},
		{service.KindInvalid, http.StatusBadRequest},
		{service.KindVerificationFailed, http.StatusBadRequest},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		respondError(c, service.E(tc.kind, "boom"))
		assert.Equal(t, tc.status, w.Code, tc.kind.String())
		assert.Contains(t, w.Body.String(), tc.kind.String())
	}
}

func TestRespondErrorHidesInternalDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal error")
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestIdentityMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(identityMiddleware())
	router.GET("/whoami", func(c *gin.Context) {
		uid, ok := userID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": uid, "authenticated": ok})
	})

	// Authenticated caller: upstream auth sets the identity headers.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-User-Id", "42")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":42`)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)

	// Anonymous caller gets a session cookie minted for the guest cart.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)

	var minted bool
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookie {
			minted = true
			assert.NotEmpty(t, c.Value)
		}
	}
	assert.True(t, minted, "expected a %s cookie", sessionCookie)
}

func TestRequireUser(t *testing.T) {
	router := gin.New()
	router.Use(identityMiddleware())
	router.GET("/private", requireUser(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("X-User-Id", "42")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	router := gin.New()
	router.Use(identityMiddleware())
	router.GET("/admin", requireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-User-Id", "42")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-User-Id", "42")
	req.Header.Set("X-User-Role", "admin")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
