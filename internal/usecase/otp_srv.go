package usecase

import (
	"context"
	"crypto/subtle"
	"fmt"
	"html"

	"go.uber.org/zap"

	"account-service/internal/data/entity"
	"account-service/internal/data/repository"
	"account-service/internal/dto/response"
	"account-service/pkg/apperror"
	"account-service/pkg/clock"
	"account-service/pkg/notifier"
	"account-service/pkg/utils"
)

const (
	MsgOTPSent         = "OTP sent successfully!"
	MsgOTPVerified     = "OTP verified successfully!"
	MsgAccountNotFound = "User not found!"
	MsgNoPendingOTP    = "No OTP found or OTP expired!"
	MsgOTPExpired      = "OTP has expired!"
	MsgOTPMismatch     = "Invalid OTP!"
	MsgOTPRejected     = "Invalid or expired OTP!"
	MsgOTPNotSent      = "OTP was generated but the notification could not be queued"

	otpSubject = "Your Two-Factor Authentication Code"
)

// AccountFinder resolves an identifier to an account. A nil user with a nil
// error means the account does not exist.
type AccountFinder interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}

// NotificationQueue hands a message to asynchronous delivery.
type NotificationQueue interface {
	Enqueue(msg notifier.Message) error
}

// CodeGenerator produces a numeric code of the given length.
type CodeGenerator func(length int) (string, error)

type OTPService interface {
	Issue(ctx context.Context, email string) (*response.IssueOTPResult, error)
	Verify(ctx context.Context, email, code string) error
}

type OTPOption func(*otpService)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(clk clock.Clocker) OTPOption {
	return func(s *otpService) { s.clock = clk }
}

// WithGenerator replaces the crypto/rand code generator.
func WithGenerator(gen CodeGenerator) OTPOption {
	return func(s *otpService) { s.generate = gen }
}

type otpService struct {
	accounts AccountFinder
	store    repository.OTPRepository
	queue    NotificationQueue
	generate CodeGenerator
	clock    clock.Clocker
	config   utils.OTPConfig
	log      *zap.Logger
}

func NewOTPService(
	accounts AccountFinder,
	store repository.OTPRepository,
	queue NotificationQueue,
	config utils.OTPConfig,
	log *zap.Logger,
	opts ...OTPOption,
) OTPService {
	if config.ExpiryMinutes <= 0 {
		config.ExpiryMinutes = 10
	}
	if config.Length <= 0 {
		config.Length = utils.DefaultOTPLength
	}

	s := &otpService{
		accounts: accounts,
		store:    store,
		queue:    queue,
		generate: utils.GenerateOTP,
		clock:    clock.New(),
		config:   config,
		log:      log.With(zap.String("service", "otp")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue stores a fresh code for the account and queues it for delivery.
// A queueing failure does not undo the store write; it comes back as a warning.
func (s *otpService) Issue(ctx context.Context, email string) (*response.IssueOTPResult, error) {
	identifier := utils.NormalizeEmail(email)

	user, err := s.accounts.FindByEmail(ctx, identifier)
	if err != nil {
		s.log.Error("Failed to look up account for OTP", zap.Error(err), zap.String("email", utils.MaskEmail(identifier)))
		return nil, apperror.Internal(err)
	}
	if user == nil {
		s.log.Warn("OTP requested for unknown account", zap.String("email", utils.MaskEmail(identifier)))
		return nil, apperror.New(apperror.KindAccountNotFound, MsgAccountNotFound)
	}

	code, err := s.generate(s.config.Length)
	if err != nil {
		s.log.Error("Failed to generate OTP", zap.Error(err))
		return nil, apperror.Internal(err)
	}

	now := s.clock.Now()
	otp := entity.OTP{
		ID:         utils.GenerateUUID(),
		Identifier: identifier,
		Code:       code,
		IssuedAt:   now,
		ExpiresAt:  now.Add(s.config.TTL()),
	}
	s.store.Put(otp)

	result := &response.IssueOTPResult{ExpiresInMinutes: s.config.ExpiryMinutes}

	msg := notifier.NewMessage(notifier.KindOTP, user.Email, otpSubject, s.otpBody(user.Name, code))
	if err := s.queue.Enqueue(msg); err != nil {
		notifyErr := apperror.Wrap(apperror.KindNotificationFailure, MsgOTPNotSent, err)
		s.log.Warn("OTP notification not queued",
			zap.Error(notifyErr),
			zap.String("otp_id", otp.ID.String()),
		)
		result.Warning = notifyErr.Message
	}

	s.log.Info("OTP issued",
		zap.String("otp_id", otp.ID.String()),
		zap.String("email", utils.MaskEmail(identifier)),
		zap.Time("expires_at", otp.ExpiresAt),
	)

	return result, nil
}

// Verify consumes the pending code for email if code matches it.
func (s *otpService) Verify(ctx context.Context, email, code string) error {
	identifier := utils.NormalizeEmail(email)

	otp, ok := s.store.Get(identifier)
	if !ok {
		return s.reject(apperror.KindNoPendingOTP, MsgNoPendingOTP)
	}

	if otp.IsExpired(s.clock.Now()) {
		s.store.CompareAndDelete(identifier, otp.ID)
		s.log.Info("Expired OTP presented", zap.String("otp_id", otp.ID.String()))
		return s.reject(apperror.KindExpired, MsgOTPExpired)
	}

	if subtle.ConstantTimeCompare([]byte(otp.Code), []byte(code)) != 1 {
		attempts, live := s.store.IncrementAttempts(identifier, otp.ID)
		if live && s.config.MaxAttempts > 0 && attempts >= s.config.MaxAttempts {
			s.store.CompareAndDelete(identifier, otp.ID)
			s.log.Warn("OTP attempt limit reached",
				zap.String("otp_id", otp.ID.String()),
				zap.Int("attempts", attempts),
			)
		}
		return s.reject(apperror.KindMismatch, MsgOTPMismatch)
	}

	if !s.store.CompareAndDelete(identifier, otp.ID) {
		// consumed by a concurrent verify or replaced by a re-issue
		return s.reject(apperror.KindNoPendingOTP, MsgNoPendingOTP)
	}

	s.log.Info("OTP verified", zap.String("otp_id", otp.ID.String()))
	return nil
}

func (s *otpService) reject(kind apperror.Kind, msg string) error {
	if s.config.UniformErrors {
		msg = MsgOTPRejected
	}
	return apperror.New(kind, msg)
}

func (s *otpService) otpBody(name, code string) string {
	return fmt.Sprintf(`<p>Hello %s,</p>
<p>Your OTP for login is:</p>
<h3 style="font-size: 24px; color: #007BFF; text-align: center;">%s</h3>
<p>This OTP is valid for the next %d minutes.</p>`,
		html.EscapeString(name), code, s.config.ExpiryMinutes)
}
