package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/danuarta/identity-service/internal/application"
	"github.com/danuarta/identity-service/internal/infrastructure/memory"
	"github.com/danuarta/identity-service/internal/interface/middleware"
	"github.com/danuarta/identity-service/pkg/helpers"
	"github.com/danuarta/identity-service/pkg/validation"
)

type fakeVerifier struct {
	sid      string
	approved bool
	err      error
}

func (f *fakeVerifier) StartVerification(context.Context, string) (string, error) {
	return f.sid, f.err
}

func (f *fakeVerifier) CheckVerification(context.Context, string, string) (bool, error) {
	return f.approved, f.err
}

func newTestRouter(v application.OTPVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.Init()

	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	svc := &application.Service{
		Repo:     memory.NewUserRepository(),
		JWT:      jwt,
		Verifier: v,
	}
	logger := logrus.New()
	h := NewIdentityHandler(svc, logger)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/signup/email", h.Signup)
	api.POST("/login/email", h.Login)
	api.POST("/sendOTP", h.SendOTP)
	api.POST("/verifyOTP", h.VerifyOTP)

	auth := api.Group("/")
	auth.Use(middleware.Auth(jwt))
	auth.GET("/profile", h.GetProfile)
	auth.PUT("/profile/name", h.UpdateName)

	return r
}

func doJSON(r *gin.Engine, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var e envelope
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode response: %v (%s)", err, w.Body.String())
	}
	return e
}

func TestSignupLoginFlow(t *testing.T) {
	r := newTestRouter(&fakeVerifier{})

	w := doJSON(r, http.MethodPost, "/api/signup/email", map[string]string{
		"email":            "a@x.com",
		"password":         "p1secret",
		"reenter_password": "p1secret",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("signup status %d: %s", w.Code, w.Body.String())
	}
	signup := decode(t, w)
	uid, _ := signup.Data["user_id"].(string)
	if uid == "" {
		t.Fatalf("signup returned no user_id")
	}

	w = doJSON(r, http.MethodPost, "/api/login/email", map[string]string{
		"email":    "a@x.com",
		"password": "p1secret",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login status %d: %s", w.Code, w.Body.String())
	}
	login := decode(t, w)
	if login.Data["user_id"] != uid {
		t.Fatalf("login user_id %v, want %s", login.Data["user_id"], uid)
	}

	w = doJSON(r, http.MethodPost, "/api/login/email", map[string]string{
		"email":    "a@x.com",
		"password": "wrongpass",
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("wrong password status %d, want 400", w.Code)
	}
}

func TestSignupMismatch(t *testing.T) {
	r := newTestRouter(&fakeVerifier{})

	w := doJSON(r, http.MethodPost, "/api/signup/email", map[string]string{
		"email":            "a@x.com",
		"password":         "p1secret",
		"reenter_password": "p2secret",
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}

func TestResignupUnverifiedAllowed(t *testing.T) {
	r := newTestRouter(&fakeVerifier{})

	w := doJSON(r, http.MethodPost, "/api/signup/email", map[string]string{
		"email":            "a@x.com",
		"password":         "p1secret",
		"reenter_password": "p1secret",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("signup status %d", w.Code)
	}

	w = doJSON(r, http.MethodPost, "/api/signup/email", map[string]string{
		"email":            "a@x.com",
		"password":         "p2secret",
		"reenter_password": "p2secret",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("re-signup unverified status %d, want 201", w.Code)
	}
}

func TestLoginUnknownEmail404(t *testing.T) {
	r := newTestRouter(&fakeVerifier{})

	w := doJSON(r, http.MethodPost, "/api/login/email", map[string]string{
		"email":    "nobody@x.com",
		"password": "whatever1",
	}, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", w.Code)
	}
}

func TestSendOTPValidation(t *testing.T) {
	r := newTestRouter(&fakeVerifier{sid: "VE123"})

	w := doJSON(r, http.MethodPost, "/api/sendOTP", map[string]string{}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing mobile status %d, want 400", w.Code)
	}

	w = doJSON(r, http.MethodPost, "/api/sendOTP", map[string]string{"mobile": "628111222333"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("send status %d: %s", w.Code, w.Body.String())
	}
	e := decode(t, w)
	if e.Data["verification_sid"] != "VE123" {
		t.Fatalf("verification_sid %v, want VE123", e.Data["verification_sid"])
	}
}

func TestVerifyOTP(t *testing.T) {
	r := newTestRouter(&fakeVerifier{approved: true})

	w := doJSON(r, http.MethodPost, "/api/verifyOTP", map[string]string{
		"mobile": "628111222333",
		"otp":    "123456",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("verify status %d: %s", w.Code, w.Body.String())
	}
	e := decode(t, w)
	user, ok := e.Data["user"].(map[string]any)
	if !ok {
		t.Fatalf("response missing user: %s", w.Body.String())
	}
	if user["is_verified"] != true {
		t.Fatalf("user not verified: %v", user)
	}
}

func TestVerifyOTPDenied(t *testing.T) {
	r := newTestRouter(&fakeVerifier{approved: false})

	w := doJSON(r, http.MethodPost, "/api/verifyOTP", map[string]string{
		"mobile": "628111222333",
		"otp":    "000000",
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("denied status %d, want 400", w.Code)
	}
}

func TestProtectedProfile(t *testing.T) {
	r := newTestRouter(&fakeVerifier{})

	w := doJSON(r, http.MethodPost, "/api/signup/email", map[string]string{
		"email":            "a@x.com",
		"password":         "p1secret",
		"reenter_password": "p1secret",
	}, nil)
	token, _ := decode(t, w).Data["token"].(string)
	if token == "" {
		t.Fatalf("no token from signup")
	}

	w = doJSON(r, http.MethodGet, "/api/profile", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token status %d, want 401", w.Code)
	}

	w = doJSON(r, http.MethodGet, "/api/profile", nil, map[string]string{"Authorization": token})
	if w.Code != http.StatusOK {
		t.Fatalf("profile status %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodPut, "/api/profile/name", map[string]string{"name": "Alice"},
		map[string]string{"Authorization": token})
	if w.Code != http.StatusOK {
		t.Fatalf("update name status %d: %s", w.Code, w.Body.String())
	}
	user, _ := decode(t, w).Data["user"].(map[string]any)
	if user["name"] != "Alice" {
		t.Fatalf("name %v, want Alice", user["name"])
	}
}
