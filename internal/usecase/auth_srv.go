package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"account-service/internal/data/entity"
	"account-service/internal/data/repository"
	"account-service/internal/dto/request"
	"account-service/internal/dto/response"
	"account-service/pkg/apperror"
	"account-service/pkg/utils"
)

const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgAccountDeactivated = "Account is deactivated"
	MsgEmailTaken         = "Sorry, This E-mail is already exists!"
	MsgInvalidSession     = "Invalid or expired session"
)

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest, client request.ClientInfo) (*response.AuthResponse, error)
	Login(ctx context.Context, req *request.LoginRequest, client request.ClientInfo) (*response.AuthResponse, error)
	Logout(ctx context.Context, token string) error
	// Authenticate resolves a bearer token to its active user.
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

type authService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	config   *utils.Config
	log      *zap.Logger
}

func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		users:    users,
		sessions: sessions,
		config:   config,
		log:      log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest, client request.ClientInfo) (*response.AuthResponse, error) {
	// 1. Validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Register validation failed", zap.Any("errors", errs))
		return nil, apperror.New(apperror.KindValidation, utils.FormatValidationErrors(errs))
	}

	email := utils.NormalizeEmail(req.Email)

	// 2. Reject duplicate email
	existingUser, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		s.log.Error("Failed to check email", zap.Error(err), zap.String("email", utils.MaskEmail(email)))
		return nil, apperror.Internal(err)
	}
	if existingUser != nil {
		return nil, apperror.New(apperror.KindConflict, MsgEmailTaken)
	}

	// 3. Hash password
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, apperror.Internal(err)
	}

	// 4. Save user
	now := time.Now()
	user := &entity.User{
		Base: entity.Base{
			ID:        utils.GenerateUUID(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:         req.Name,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         entity.RoleUser,
		IsActive:     true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		s.log.Error("Failed to create user", zap.Error(err), zap.String("email", utils.MaskEmail(email)))
		return nil, apperror.Internal(err)
	}

	// 5. Auto login after register
	session, err := s.createSession(ctx, user.ID, client)
	if err != nil {
		s.log.Warn("Failed to create session after register",
			zap.Error(err), zap.String("user_id", user.ID.String()))
		// the account exists, the client can still log in
	}

	s.log.Info("User registered", zap.String("user_id", user.ID.String()))

	resp := response.AuthToResponse(user, session)
	return &resp, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest, client request.ClientInfo) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Login validation failed", zap.Any("errors", errs))
		return nil, apperror.New(apperror.KindValidation, utils.FormatValidationErrors(errs))
	}

	email := utils.NormalizeEmail(req.Email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		s.log.Error("Failed to find user by email", zap.Error(err))
		return nil, apperror.Internal(err)
	}

	if user == nil {
		s.log.Warn("User not found for login", zap.String("email", utils.MaskEmail(email)))
		return nil, apperror.New(apperror.KindUnauthorized, MsgInvalidCredentials)
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid password", zap.String("user_id", user.ID.String()))
		return nil, apperror.New(apperror.KindUnauthorized, MsgInvalidCredentials)
	}

	if !user.IsActive {
		s.log.Warn("Inactive user tried to login", zap.String("user_id", user.ID.String()))
		return nil, apperror.New(apperror.KindForbidden, MsgAccountDeactivated)
	}

	session, err := s.createSession(ctx, user.ID, client)
	if err != nil {
		s.log.Error("Failed to create session", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, apperror.Internal(err)
	}

	s.log.Info("User logged in", zap.String("user_id", user.ID.String()))

	resp := response.AuthToResponse(user, session)
	return &resp, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	tokenUUID, err := uuid.Parse(token)
	if err != nil {
		s.log.Warn("Invalid token format", zap.Error(err))
		return apperror.New(apperror.KindUnauthorized, MsgInvalidSession)
	}

	if err := s.sessions.Revoke(ctx, tokenUUID); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return apperror.New(apperror.KindUnauthorized, MsgInvalidSession)
		}
		s.log.Error("Failed to revoke session", zap.Error(err))
		return apperror.Internal(err)
	}

	s.log.Info("User logged out")
	return nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	tokenUUID, err := uuid.Parse(token)
	if err != nil {
		return nil, apperror.New(apperror.KindUnauthorized, MsgInvalidSession)
	}

	session, err := s.sessions.FindValidSession(ctx, tokenUUID)
	if err != nil {
		s.log.Error("Failed to validate session", zap.Error(err))
		return nil, apperror.Internal(err)
	}
	if !session.IsActive(time.Now()) {
		return nil, apperror.New(apperror.KindUnauthorized, MsgInvalidSession)
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		s.log.Error("Failed to load session user", zap.Error(err), zap.String("user_id", session.UserID.String()))
		return nil, apperror.Internal(err)
	}
	if user == nil || user.IsDeleted() {
		return nil, apperror.New(apperror.KindUnauthorized, MsgInvalidSession)
	}
	if !user.IsActive {
		return nil, apperror.New(apperror.KindForbidden, MsgAccountDeactivated)
	}

	return user, nil
}

// ==================== HELPER METHODS ====================

func (s *authService) createSession(ctx context.Context, userID uuid.UUID, client request.ClientInfo) (*entity.Session, error) {
	ttl := s.config.Session.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	now := time.Now()
	session := &entity.Session{
		BaseSimple: entity.BaseSimple{
			ID:        utils.GenerateUUID(),
			CreatedAt: now,
		},
		UserID:    userID,
		Token:     utils.GenerateSessionToken(),
		UserAgent: lo.EmptyableToPtr(client.UserAgent),
		IPAddress: lo.EmptyableToPtr(client.IPAddress),
		ExpiresAt: now.Add(ttl),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}
