package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/danuarta/identity-service/internal/application"
	"github.com/danuarta/identity-service/internal/interface/middleware"
	"github.com/danuarta/identity-service/pkg/response"
	"github.com/danuarta/identity-service/pkg/validation"
)

// IdentityHandler exposes the signup/login/OTP surface over HTTP. Request
// bodies are bound to tagged schemas and validated before they reach the
// service.
type IdentityHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewIdentityHandler(svc *application.Service, logger *logrus.Logger) *IdentityHandler {
	return &IdentityHandler{Svc: svc, Logger: logger}
}

type signupRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ReenterPassword string `json:"reenter_password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type sendOTPRequest struct {
	Mobile string `json:"mobile" binding:"required,mobile"`
}

type verifyOTPRequest struct {
	Mobile string `json:"mobile" binding:"required,mobile"`
	OTP    string `json:"otp" binding:"required"`
}

type updateNameRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// Signup POST /api/signup/email
func (h *IdentityHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Svc.RegisterWithEmail(c.Request.Context(), req.Email, req.Password, req.ReenterPassword)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrPasswordMismatch):
			response.Error[any](c, http.StatusBadRequest, "passwords do not match", nil)
		case errors.Is(err, application.ErrEmailTaken):
			response.Error[any](c, http.StatusBadRequest, "email already exists", nil)
		default:
			h.Logger.WithError(err).Error("signup failed")
			response.Error[any](c, http.StatusInternalServerError, "registration failed", nil)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"token":   res.Token,
		"user_id": res.UserID,
	}, "registration successful")
}

// Login POST /api/login/email
func (h *IdentityHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Svc.LoginWithEmail(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrUserNotFound):
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
		case errors.Is(err, application.ErrInvalidPassword), errors.Is(err, application.ErrNotVerified):
			response.Error[any](c, http.StatusBadRequest, "invalid password", nil)
		default:
			h.Logger.WithError(err).Error("login failed")
			response.Error[any](c, http.StatusInternalServerError, "login failed", nil)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token":   res.Token,
		"user_id": res.UserID,
	}, "login successful")
}

// SendOTP POST /api/sendOTP
func (h *IdentityHandler) SendOTP(c *gin.Context) {
	var req sendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "mobile number is required", validation.ToDetails(err))
		return
	}

	sid, err := h.Svc.SendOTP(c.Request.Context(), req.Mobile)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrMobileRequired):
			response.Error[any](c, http.StatusBadRequest, "mobile number is required", nil)
		case errors.Is(err, application.ErrOTPCooldown):
			response.Error[any](c, http.StatusTooManyRequests, "verification recently sent, try again later", nil)
		default:
			h.Logger.WithError(err).Error("send otp failed")
			response.Error[any](c, http.StatusInternalServerError, "failed to send verification", nil)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"verification_sid": sid}, "OTP sent")
}

// VerifyOTP POST /api/verifyOTP
func (h *IdentityHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "mobile number and OTP are required", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.VerifyOTP(c.Request.Context(), req.Mobile, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrMobileRequired), errors.Is(err, application.ErrCodeRequired):
			response.Error[any](c, http.StatusBadRequest, "mobile number and OTP are required", nil)
		case errors.Is(err, application.ErrInvalidCode):
			response.Error[any](c, http.StatusBadRequest, "invalid OTP", nil)
		default:
			h.Logger.WithError(err).Error("verify otp failed")
			response.Error[any](c, http.StatusInternalServerError, "verification failed", nil)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": u}, "OTP verified successfully")
}

// GetProfile GET /api/profile (protected)
func (h *IdentityHandler) GetProfile(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.GetProfile(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
			return
		}
		h.Logger.WithError(err).Error("get profile failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to load profile", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": u}, "profile")
}

// UpdateName PUT /api/profile/name (protected)
func (h *IdentityHandler) UpdateName(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req updateNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateName(c.Request.Context(), uid, req.Name)
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
			return
		}
		h.Logger.WithError(err).Error("update name failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to update name", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": u}, "name updated")
}
