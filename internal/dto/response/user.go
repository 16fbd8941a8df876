package response

type CreateUserResult struct {
	User    UserResponse
	Warning string
}
