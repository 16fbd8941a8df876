package request

type IssueOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyOTPRequest carries the code as typed by the user. Length is checked
// by the lifecycle manager, not here, so a wrong length is just a mismatch.
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,numeric,max=12"`
}
