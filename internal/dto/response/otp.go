package response

// IssueOTPResult is what the lifecycle manager reports after storing a code.
// The code itself is never part of it.
type IssueOTPResult struct {
	ExpiresInMinutes int
	Warning          string
}
