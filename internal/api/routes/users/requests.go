package users

type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username,ne=me"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,max=128"`
}

// UpdateUserRequest carries the profile fields. PUT requires all of them;
// PATCH applies the ones present.
type UpdateUserRequest struct {
	Email     *string `json:"email" validate:"omitnil,email,max=254"`
	Username  *string `json:"username" validate:"omitnil,max=150,username,ne=me"`
	FirstName *string `json:"first_name" validate:"omitnil,min=1,max=150"`
	LastName  *string `json:"last_name" validate:"omitnil,min=1,max=150"`
}

func (u UpdateUserRequest) complete() bool {
	return u.Email != nil && u.Username != nil && u.FirstName != nil && u.LastName != nil
}

type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" validate:"required,max=128"`
	CurrentPassword string `json:"current_password" validate:"required"`
}

type AvatarRequest struct {
	Avatar string `json:"avatar" validate:"required"`
}
