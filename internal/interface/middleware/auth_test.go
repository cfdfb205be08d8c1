package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/danuarta/identity-service/pkg/helpers"
)

func newAuthRouter(jwt *helpers.JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", Auth(jwt), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxUserIDKey))
	})
	return r
}

func TestAuthMissingToken(t *testing.T) {
	r := newAuthRouter(helpers.NewJWTManager("secret", time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", w.Code)
	}
}

func TestAuthInvalidToken(t *testing.T) {
	r := newAuthRouter(helpers.NewJWTManager("secret", time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "garbage")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", w.Code)
	}
}

func TestAuthExpiredToken(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", -time.Minute)
	token, _, err := jwt.GenerateToken("user-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	r := newAuthRouter(helpers.NewJWTManager("secret", time.Hour))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", w.Code)
	}
}

func TestAuthValidToken(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	token, _, err := jwt.GenerateToken("user-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	r := newAuthRouter(jwt)

	for _, header := range []string{token, "Bearer " + token} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status %d, want 200", w.Code)
		}
		if w.Body.String() != "user-1" {
			t.Fatalf("uid %q, want user-1", w.Body.String())
		}
	}
}
