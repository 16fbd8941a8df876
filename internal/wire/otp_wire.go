package wire

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"account-service/internal/adaptor"
	"account-service/pkg/clock"
	"account-service/pkg/middleware"
	"account-service/pkg/utils"
)

func wireOTP(
	r chi.Router,
	otpHandler *adaptor.OTPHandler,
	limiters *limiters,
	config *utils.Config,
	clk clock.Clocker,
	log *zap.Logger,
) {
	otpLimit := middleware.RateLimit(
		limiters.otp,
		"otp",
		middleware.OTPRateLimitMessage(minutes(config.RateLimit.OTPWindow)),
		clk,
		log,
	)

	r.With(otpLimit).Route("/api/otp", func(r chi.Router) {
		r.Post("/issue", otpHandler.Issue)
		r.Post("/verify", otpHandler.Verify)
	})

	// older clients
	r.With(otpLimit).Post("/api/send-otp", otpHandler.Issue)
	r.With(otpLimit).Post("/api/verify-otp", otpHandler.Verify)
}
