package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// msgResponse is returned by operations without a resource body.
type msgResponse struct {
	Msg string `json:"msg"`
}

// --- Auth ---

type loginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"        validate:"required"`
	NewPassword string `json:"new_password" validate:"required,max=72"`
}

// --- Users ---

type createUserRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	Username string `json:"username"  validate:"required"`
	Password string `json:"password"  validate:"required,max=72"`
	Roles    string `json:"roles"`
	IsActive *bool  `json:"is_active"`
}

type updateMeRequest struct {
	Username string `json:"username" validate:"omitempty,min=1"`
	Email    string `json:"email"    validate:"omitempty,email"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,max=72"`
}

type userResponse struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	IsActive  bool       `json:"is_active"`
	Roles     string     `json:"roles"`
	TimeAdded *time.Time `json:"time_added,omitempty"`
}

type userListResponse struct {
	Items []userResponse `json:"items"`
	Total int64          `json:"total"`
}

// --- Utils ---

type testEmailQuery struct {
	EmailTo string `query:"email_to" validate:"required,email"`
}
