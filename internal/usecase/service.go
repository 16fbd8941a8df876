package usecase

import (
	"go.uber.org/zap"

	"account-service/internal/data/repository"
	"account-service/pkg/utils"
)

type Service struct {
	Auth AuthService
	User UserService
	OTP  OTPService
}

// NewService builds every usecase on top of the shared repositories. queue
// receives outgoing notifications (OTP codes and welcome mails).
func NewService(repo *repository.Repository, queue NotificationQueue, config *utils.Config, log *zap.Logger) *Service {
	return &Service{
		Auth: NewAuthService(repo.User, repo.Session, config, log),
		User: NewUserService(repo.User, repo.Session, queue, log),
		OTP:  NewOTPService(repo.User, repo.OTP, queue, config.OTP, log),
	}
}
