package model

type CreateUserRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Image    string `json:"image"`
	Role     string `json:"role"`
}

type CreateUserResponse struct {
	ID string `json:"id"`
}

type GetMeRequest struct{}

type GetMeResponse User

type GetUserRequest struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type GetUserResponse User

type GetUsersRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetUsersResponse struct {
	Users []User `json:"users"`
	Total int64  `json:"total"`
}

type UpdateUserRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Image    string `json:"image"`
}

type UpdateUserResponse struct{}

type UpdateUserByAdminRequest struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Image    string `json:"image"`
	Role     string `json:"role"`
}

type UpdateUserByAdminResponse struct{}

type DeleteUserRequest struct {
	ID string `json:"id"`
}

type DeleteUserResponse struct{}
