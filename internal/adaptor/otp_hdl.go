package adaptor

import (
	"net/http"

	"go.uber.org/zap"

	"account-service/internal/dto/request"
	"account-service/internal/usecase"
	"account-service/pkg/utils"
)

type OTPHandler struct {
	service usecase.OTPService
	log     *zap.Logger
}

func NewOTPHandler(service usecase.OTPService, log *zap.Logger) *OTPHandler {
	return &OTPHandler{
		service: service,
		log:     log,
	}
}

// Issue handles POST /api/otp/issue
func (h *OTPHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req request.IssueOTPRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.service.Issue(r.Context(), req.Email)
	if err != nil {
		handleServiceError(w, h.log, err, "issue OTP")
		return
	}

	if result.Warning != "" {
		utils.ResponseSuccessWithWarning(w, usecase.MsgOTPSent, result.Warning)
		return
	}
	utils.ResponseSuccess(w, usecase.MsgOTPSent, nil)
}

// Verify handles POST /api/otp/verify
func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyOTPRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.Verify(r.Context(), req.Email, req.OTP); err != nil {
		handleServiceError(w, h.log, err, "verify OTP")
		return
	}

	utils.ResponseSuccess(w, usecase.MsgOTPVerified, nil)
}
