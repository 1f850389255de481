package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/julianstephens/mealplanner/internal/models"
	"github.com/julianstephens/mealplanner/internal/validation"
)

// ErrNoToken is returned when the login endpoint answers without a token.
var ErrNoToken = errors.New("login response did not include a token")

// AuthClient covers registration, login and password reset.
type AuthClient struct {
	c *Client
}

// Login validates the form, exchanges the credentials for a token and
// starts a session with it.
func (a *AuthClient) Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error) {
	if err := validation.ValidateLogin(req); err != nil {
		return models.LoginResponse{}, err
	}

	var resp models.LoginResponse
	if err := a.c.do(ctx, "login", http.MethodPost, "/User/login", authNone, req, &resp); err != nil {
		return models.LoginResponse{}, err
	}
	if resp.Token == "" {
		return models.LoginResponse{}, ErrNoToken
	}
	if err := a.c.session.Login(resp.Token, resp.Username); err != nil {
		return models.LoginResponse{}, err
	}
	return resp, nil
}

// Logout ends the local session. The API keeps no server-side session.
func (a *AuthClient) Logout() error {
	return a.c.session.Logout()
}

// Register validates the form and creates an account. Nothing is sent when
// validation fails.
func (a *AuthClient) Register(ctx context.Context, req models.RegisterRequest) error {
	if err := validation.ValidateRegister(req); err != nil {
		return err
	}
	return a.c.do(ctx, "register", http.MethodPost, "/User/register", authNone, req, nil)
}

// ForgotPassword resets the password using the secret question. A
// response with Success false is returned without an error so the caller
// can show the server's message.
func (a *AuthClient) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) (models.ForgotPasswordResponse, error) {
	if err := validation.ValidateForgotPassword(req); err != nil {
		return models.ForgotPasswordResponse{}, err
	}
	var resp models.ForgotPasswordResponse
	if err := a.c.do(ctx, "forgot password", http.MethodPost, "/User/forgotpassword", authNone, req, &resp); err != nil {
		return models.ForgotPasswordResponse{}, err
	}
	return resp, nil
}

// ResetMessage picks the message to show for a password reset result.
func ResetMessage(resp models.ForgotPasswordResponse) string {
	if resp.Success {
		return "Password reset successful!"
	}
	if resp.Message != "" {
		return resp.Message
	}
	return "Failed to reset password. Please try again."
}
