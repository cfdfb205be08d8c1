package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/danuarta/identity-service/internal/container"
	handlers "github.com/danuarta/identity-service/internal/interface/http"
	"github.com/danuarta/identity-service/internal/interface/middleware"
	"github.com/danuarta/identity-service/pkg/helpers"
)

// IdentityModule wires the identity handlers and auth middleware into routes.
// Public: POST /api/signup/email, /api/login/email, /api/sendOTP, /api/verifyOTP
// Protected: GET /api/profile, PUT /api/profile/name
type IdentityModule struct {
	Handler *handlers.IdentityHandler
	JWT     *helpers.JWTManager
}

func NewIdentityModule(h *handlers.IdentityHandler, jwt *helpers.JWTManager) *IdentityModule {
	return &IdentityModule{Handler: h, JWT: jwt}
}

func (m *IdentityModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	signupLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath())
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIP())
	otpLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath())
	verifyLimiter := middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByIPAndPath())

	rg.POST("/signup/email", signupLimiter, m.Handler.Signup)
	rg.POST("/login/email", loginLimiter, m.Handler.Login)
	rg.POST("/sendOTP", otpLimiter, m.Handler.SendOTP)
	rg.POST("/verifyOTP", verifyLimiter, m.Handler.VerifyOTP)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID()))
	{
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PUT("/profile/name", m.Handler.UpdateName)
	}
}
