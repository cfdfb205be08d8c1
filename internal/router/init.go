package router

import (
	"github.com/danuarta/identity-service/internal/application"
	"github.com/danuarta/identity-service/internal/container"
	pginfra "github.com/danuarta/identity-service/internal/infrastructure/postgres"
	handlers "github.com/danuarta/identity-service/internal/interface/http"
	"github.com/danuarta/identity-service/internal/router/modules"
)

func buildIdentityModule() Module {
	cfg := container.GetConfig()
	repo := pginfra.NewUserRepository(container.GetPGPool())

	svc := &application.Service{
		Repo:            repo,
		JWT:             container.GetJWT(),
		Verifier:        container.GetVerifier(),
		Redis:           container.GetRedis(),
		Logger:          container.GetLogger(),
		Pub:             container.GetRabbitPub(),
		ResendCooldown:  cfg.OTPResendCooldown,
		RequireVerified: cfg.LoginRequireVerified,
	}

	handler := handlers.NewIdentityHandler(svc, container.GetLogger())
	return modules.NewIdentityModule(handler, container.GetJWT())
}

// InitModules initializes all application modules and registers them with the
// router registry. Called once during startup.
func InitModules(r *Registry) {
	r.Add(buildIdentityModule())
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
