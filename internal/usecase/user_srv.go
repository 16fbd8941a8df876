package usecase

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"account-service/internal/data/entity"
	"account-service/internal/data/repository"
	"account-service/internal/dto/request"
	"account-service/internal/dto/response"
	"account-service/pkg/apperror"
	"account-service/pkg/notifier"
	"account-service/pkg/utils"
)

const (
	MsgUserNotFound         = "User Not Found."
	MsgUserMissing          = "Sorry, This user does not exist!"
	MsgInvalidUserID        = "Invalid user ID"
	MsgAdminNotAllowed      = "Creating admin users is not allowed."
	MsgWelcomeNotSent       = "User was created but the welcome email could not be queued"
	generatedPasswordLength = 8

	welcomeSubject = "Your registration was successful, and your account is now active."
)

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error)
	GetAllUsers(ctx context.Context, callerID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error)
	CreateUser(ctx context.Context, req *request.CreateUserRequest) (*response.CreateUserResult, error)
	UpdateUser(ctx context.Context, userID string, req *request.UpdateUserRequest) (*response.UserResponse, error)
	DeleteUser(ctx context.Context, userID string) error
}

type userService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	queue    NotificationQueue
	log      *zap.Logger
}

func NewUserService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	queue NotificationQueue,
	log *zap.Logger,
) UserService {
	return &userService{
		users:    users,
		sessions: sessions,
		queue:    queue,
		log:      log.With(zap.String("service", "user")),
	}
}

func (us *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error) {
	user, err := us.users.FindByID(ctx, userID)
	if err != nil {
		us.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, apperror.Internal(err)
	}
	if user == nil {
		return nil, apperror.New(apperror.KindNotFound, MsgUserNotFound)
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

// GetAllUsers lists every live account except the caller's.
func (us *userService) GetAllUsers(ctx context.Context, callerID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	req.Normalize()

	users, err := us.users.FindAll(ctx, callerID, req.Limit(), req.Offset())
	if err != nil {
		us.log.Error("Failed to get all users",
			zap.Error(err),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, apperror.Internal(err)
	}

	total, err := us.users.CountAll(ctx, callerID)
	if err != nil {
		us.log.Error("Failed to count users", zap.Error(err))
		return nil, apperror.Internal(err)
	}

	us.log.Debug("Users retrieved",
		zap.Int("count", len(users)),
		zap.Int64("total", total),
		zap.Int("page", req.Page),
		zap.Int("per_page", req.PerPage),
	)

	return response.NewPaginatedResponse(response.UsersToResponse(users), req.Page, req.PerPage, total), nil
}

// CreateUser provisions an account with a generated password and mails the
// credentials to the new user.
func (us *userService) CreateUser(ctx context.Context, req *request.CreateUserRequest) (*response.CreateUserResult, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.New(apperror.KindValidation, utils.FormatValidationErrors(errs))
	}

	role := entity.RoleUser
	if req.Role != "" {
		role = entity.UserRole(req.Role)
	}
	if role == entity.RoleAdmin {
		return nil, apperror.New(apperror.KindValidation, MsgAdminNotAllowed)
	}

	email := utils.NormalizeEmail(req.Email)

	existing, err := us.users.FindByEmail(ctx, email)
	if err != nil {
		us.log.Error("Failed to check email", zap.Error(err))
		return nil, apperror.Internal(err)
	}
	if existing != nil {
		return nil, apperror.New(apperror.KindConflict, MsgEmailTaken)
	}

	password, err := utils.GeneratePassword(generatedPasswordLength)
	if err != nil {
		us.log.Error("Failed to generate password", zap.Error(err))
		return nil, apperror.Internal(err)
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		us.log.Error("Failed to hash password", zap.Error(err))
		return nil, apperror.Internal(err)
	}

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
		Role:         role,
		IsActive:     true,
	}

	if err := us.users.Create(ctx, user); err != nil {
		us.log.Error("Failed to create user", zap.Error(err))
		return nil, apperror.Internal(err)
	}

	result := &response.CreateUserResult{User: response.UserToResponse(user)}

	msg := notifier.NewMessage(notifier.KindWelcome, user.Email, welcomeSubject, welcomeBody(user, password))
	if err := us.queue.Enqueue(msg); err != nil {
		us.log.Warn("Welcome notification not queued", zap.Error(err), zap.String("user_id", user.ID.String()))
		result.Warning = MsgWelcomeNotSent
	}

	us.log.Info("User created by admin",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)

	return result, nil
}

func (us *userService) UpdateUser(ctx context.Context, userID string, req *request.UpdateUserRequest) (*response.UserResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperror.New(apperror.KindValidation, MsgInvalidUserID)
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.New(apperror.KindValidation, utils.FormatValidationErrors(errs))
	}

	user, err := us.users.FindByID(ctx, id)
	if err != nil {
		us.log.Error("Failed to get user for update", zap.Error(err), zap.String("user_id", userID))
		return nil, apperror.Internal(err)
	}
	if user == nil {
		return nil, apperror.New(apperror.KindNotFound, MsgUserMissing)
	}

	user.Name = req.Name
	if req.Role != "" {
		user.Role = entity.UserRole(req.Role)
	}
	user.UpdatedAt = time.Now()

	if err := us.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.New(apperror.KindNotFound, MsgUserMissing)
		}
		us.log.Error("Failed to update user", zap.Error(err), zap.String("user_id", userID))
		return nil, apperror.Internal(err)
	}

	us.log.Info("User updated", zap.String("user_id", userID))

	resp := response.UserToResponse(user)
	return &resp, nil
}

// DeleteUser soft-deletes the account and revokes its sessions.
func (us *userService) DeleteUser(ctx context.Context, userID string) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return apperror.New(apperror.KindValidation, MsgInvalidUserID)
	}

	if err := us.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.New(apperror.KindNotFound, MsgUserNotFound)
		}
		us.log.Error("Failed to delete user", zap.Error(err), zap.String("user_id", userID))
		return apperror.Internal(err)
	}

	if err := us.sessions.RevokeAllUserSessions(ctx, id); err != nil {
		us.log.Warn("Failed to revoke sessions of deleted user", zap.Error(err), zap.String("user_id", userID))
	}

	us.log.Info("User deleted", zap.String("user_id", userID))
	return nil
}

func welcomeBody(user *entity.User, password string) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<p style="font-size: 18px;">Hello %s,</p>
<p style="font-size: 16px;">Your registration was successful, and your account is now active.</p>
<p style="font-size: 16px;">Here are your login details:</p>
<ul style="list-style: none; padding: 0; font-size: 16px;">
<li><strong>Email:</strong> %s</li>
<li><strong>Password:</strong> %s</li>
</ul>
<p style="font-size: 16px;">Keep this information secure and do not share it with anyone.</p>
</div>`, html.EscapeString(user.Name), html.EscapeString(user.Email), html.EscapeString(password))
}
