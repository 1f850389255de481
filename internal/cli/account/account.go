package account

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/julianstephens/mealplanner/internal/api"
	"github.com/julianstephens/mealplanner/internal/cli"
	"github.com/julianstephens/mealplanner/internal/constants"
	"github.com/julianstephens/mealplanner/internal/models"
	"github.com/julianstephens/mealplanner/internal/session"
	"github.com/julianstephens/mealplanner/internal/validation"
)

// ErrBadCredentials is returned when the API rejects a login.
var ErrBadCredentials = errors.New("invalid email or password")

// LoginCmd signs in and stores the session.
type LoginCmd struct {
	Email    string `short:"e" help:"Account email."`
	Password string `short:"p" help:"Account password." env:"MEALPLANNER_PASSWORD"`
}

func (cmd *LoginCmd) Run(ctx *cli.Context) error {
	if err := ctx.Prompt("Email", "email", &cmd.Email, false); err != nil {
		return err
	}
	if err := ctx.Prompt("Password", "password", &cmd.Password, true); err != nil {
		return err
	}

	req := models.LoginRequest{Email: strings.TrimSpace(cmd.Email), Password: cmd.Password}
	resp, err := ctx.Client.Auth().Login(context.Background(), req)
	if err != nil {
		if api.StatusCode(err) == http.StatusUnauthorized {
			return ErrBadCredentials
		}
		return cli.Fail("login failed", err)
	}

	ctx.Printf("✓ Logged in as %s\n", resp.Username)
	ctx.Printf("  Session stored in %s\n", ctx.Session.StoreName())
	return nil
}

// LogoutCmd clears the stored session.
type LogoutCmd struct{}

func (cmd *LogoutCmd) Run(ctx *cli.Context) error {
	if !ctx.Session.LoggedIn() {
		ctx.Println("Not logged in")
		return nil
	}
	if err := ctx.Client.Auth().Logout(); err != nil {
		return cli.Fail("logout failed", err)
	}
	ctx.Println("✓ Logged out")
	return nil
}

// RegisterCmd creates an account.
type RegisterCmd struct {
	Username   string `short:"u" help:"Display name."`
	Email      string `short:"e" help:"Account email."`
	Password   string `short:"p" help:"Account password." env:"MEALPLANNER_PASSWORD"`
	FamilySize string `short:"f" help:"Number of people you cook for." name:"family-size"`
	Question   string `short:"q" help:"Secret question used for password recovery."`
	Answer     string `short:"a" help:"Answer to the secret question."`
}

func (cmd *RegisterCmd) Run(ctx *cli.Context) error {
	prompts := []struct {
		title, flag string
		value       *string
		secret      bool
	}{
		{"Username", "username", &cmd.Username, false},
		{"Email", "email", &cmd.Email, false},
		{"Password", "password", &cmd.Password, true},
		{"Family size", "family-size", &cmd.FamilySize, false},
	}
	for _, p := range prompts {
		if err := ctx.Prompt(p.title, p.flag, p.value, p.secret); err != nil {
			return err
		}
	}
	if err := ctx.Choose("Secret question", "question", constants.SecretQuestions, &cmd.Question); err != nil {
		return err
	}
	if err := ctx.Prompt("Answer", "answer", &cmd.Answer, false); err != nil {
		return err
	}

	size, err := validation.ParseFamilySize(cmd.FamilySize)
	if err != nil {
		return cli.Fail("register failed", err)
	}
	req := models.RegisterRequest{
		Username:       strings.TrimSpace(cmd.Username),
		Email:          strings.TrimSpace(cmd.Email),
		Password:       cmd.Password,
		FamilySize:     size,
		SecretQuestion: cmd.Question,
		Answer:         cmd.Answer,
	}
	if err := ctx.Client.Auth().Register(context.Background(), req); err != nil {
		return cli.Fail("register failed", err)
	}

	ctx.Println("✓ Registration successful! Please log in.")
	ctx.Printf("  mealplanner login --email %s\n", req.Email)
	return nil
}

// ForgotPasswordCmd resets a password using the secret question.
type ForgotPasswordCmd struct {
	Email       string `short:"e" help:"Account email."`
	NewPassword string `short:"p" help:"New password." name:"new-password" env:"MEALPLANNER_NEW_PASSWORD"`
	Question    string `short:"q" help:"Secret question chosen at registration."`
	Answer      string `short:"a" help:"Answer to the secret question."`
}

func (cmd *ForgotPasswordCmd) Run(ctx *cli.Context) error {
	if err := ctx.Prompt("Email", "email", &cmd.Email, false); err != nil {
		return err
	}
	if err := ctx.Prompt("New password", "new-password", &cmd.NewPassword, true); err != nil {
		return err
	}
	if err := ctx.Choose("Secret question", "question", constants.SecretQuestions, &cmd.Question); err != nil {
		return err
	}
	if err := ctx.Prompt("Answer", "answer", &cmd.Answer, false); err != nil {
		return err
	}

	req := models.ForgotPasswordRequest{
		Email:          strings.TrimSpace(cmd.Email),
		NewPassword:    cmd.NewPassword,
		SecretQuestion: cmd.Question,
		Answer:         cmd.Answer,
	}
	resp, err := ctx.Client.Auth().ForgotPassword(context.Background(), req)
	if err != nil {
		return cli.Fail("password reset failed", err)
	}
	if !resp.Success {
		return errors.New(api.ResetMessage(resp))
	}
	ctx.Printf("✓ %s\n", api.ResetMessage(resp))
	return nil
}

// WhoamiCmd prints the signed in user.
type WhoamiCmd struct{}

func (cmd *WhoamiCmd) Run(ctx *cli.Context) error {
	if !ctx.Session.LoggedIn() {
		ctx.Println("Not logged in")
		return nil
	}

	// Token clears an expired session as a side effect.
	token, err := ctx.Session.Token()
	if err != nil {
		return cli.Fail("session check failed", err)
	}

	ctx.Printf("Logged in as %s\n", ctx.Session.Username())
	ctx.Printf("  Store: %s\n", ctx.Session.StoreName())
	exp, err := session.ExpiresAt(token)
	switch {
	case err != nil:
		ctx.Printf("  Expires: unknown (%v)\n", err)
	case exp.IsZero():
		ctx.Println("  Expires: never")
	default:
		ctx.Printf("  Expires: %s (in %s)\n", exp.Local().Format(time.RFC1123), time.Until(exp).Round(time.Minute))
	}
	return nil
}
