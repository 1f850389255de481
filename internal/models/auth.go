package models

// LoginRequest is the body of the login call.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token for a new session.
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// RegisterRequest mirrors the server contract, including the capitalized
// SecretQuestion key.
type RegisterRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	FamilySize     int    `json:"familySize"`
	SecretQuestion string `json:"SecretQuestion"`
	Answer         string `json:"answer"`
}

// ForgotPasswordRequest resets a password after checking the secret answer.
type ForgotPasswordRequest struct {
	Email          string `json:"email"`
	NewPassword    string `json:"newPassword"`
	SecretQuestion string `json:"secretQuestion"`
	Answer         string `json:"answer"`
}

// ForgotPasswordResponse reports whether the reset was accepted.
type ForgotPasswordResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
