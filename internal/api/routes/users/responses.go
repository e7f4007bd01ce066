package users

type CreateUserResponse struct {
	Email     string `json:"email"`
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type AvatarResponse struct {
	Avatar string `json:"avatar"`
}
