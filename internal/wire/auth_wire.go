package wire

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"account-service/internal/adaptor"
	"account-service/pkg/clock"
	"account-service/pkg/middleware"
	"account-service/pkg/utils"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	auth func(http.Handler) http.Handler,
	limiters *limiters,
	config *utils.Config,
	clk clock.Clocker,
	log *zap.Logger,
) {
	loginLimit := middleware.RateLimit(
		limiters.login,
		"login",
		middleware.RateLimitMessage(minutes(config.RateLimit.LoginWindow)),
		clk,
		log,
	)

	// ==================== PUBLIC ROUTES ====================
	r.Post("/api/register", authHandler.Register)
	r.With(loginLimit).Post("/api/login", authHandler.Login)

	// ==================== PROTECTED ROUTES ====================
	r.With(auth).Post("/api/logout", authHandler.Logout)
}
