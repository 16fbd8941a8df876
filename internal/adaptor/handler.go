package adaptor

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"go.uber.org/zap"

	"account-service/internal/dto/request"
	"account-service/internal/usecase"
	"account-service/pkg/apperror"
	"account-service/pkg/utils"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	Auth *AuthHandler
	User *UserHandler
	OTP  *OTPHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth: NewAuthHandler(service.Auth, log),
		User: NewUserHandler(service.User, log),
		OTP:  NewOTPHandler(service.OTP, log),
	}
}

// Health handles GET /health
func Health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
// It writes the 400 response itself and reports false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}

	if validationErrors := utils.ValidateStruct(dst); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return false
	}

	return true
}

// handleServiceError maps usecase errors to the response envelope. Only
// apperror messages reach the client; anything else becomes a generic 500.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperror.KindInternal {
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	log.Warn(operation+" failed",
		zap.String("kind", string(appErr.Kind)),
		zap.String("reason", appErr.Message),
	)
	utils.ResponseJSON(w, appErr.StatusCode(), false, appErr.Message, nil, nil)
}

func clientInfo(r *http.Request) request.ClientInfo {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return request.ClientInfo{UserAgent: r.UserAgent(), IPAddress: ip}
}
