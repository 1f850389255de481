package account

import (
	"context"
	"net/http"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/mealplanner/internal/api"
	"github.com/julianstephens/mealplanner/internal/models"
	"github.com/julianstephens/mealplanner/internal/validation"
)

type fakeAuth struct {
	loginErr  error
	resetResp models.ForgotPasswordResponse
	logins    []models.LoginRequest
	registers []models.RegisterRequest
	resets    []models.ForgotPasswordRequest
	loggedOut bool
}

func (f *fakeAuth) Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error) {
	f.logins = append(f.logins, req)
	if f.loginErr != nil {
		return models.LoginResponse{}, f.loginErr
	}
	return models.LoginResponse{Token: "t", Username: "ada"}, nil
}

func (f *fakeAuth) Register(ctx context.Context, req models.RegisterRequest) error {
	f.registers = append(f.registers, req)
	return nil
}

func (f *fakeAuth) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) (models.ForgotPasswordResponse, error) {
	f.resets = append(f.resets, req)
	return f.resetResp, nil
}

func (f *fakeAuth) Logout() error {
	f.loggedOut = true
	return nil
}

func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// submitAndApply submits the open form and feeds the outcome back.
func submitAndApply(m Model) Model {
	cmd := m.submit()
	for _, msg := range drain(cmd) {
		if _, ok := msg.(tea.KeyMsg); ok {
			continue
		}
		m, _ = m.Update(msg)
	}
	return m
}

func fillRegister(m *Model, familySize string) {
	m.ShowRegister()
	m.register.Username = "ada"
	m.register.Email = "ada@example.com"
	m.register.Password = "secret"
	m.register.FamilySize = familySize
	m.register.Answer = "Rex"
}

func TestRegisterRejectsBadFamilySize(t *testing.T) {
	tests := []struct {
		name string
		size string
		want string
	}{
		{"zero", "0", validation.MsgFamilySizePositive},
		{"negative", "-2", validation.MsgFamilySizePositive},
		{"text", "four", validation.MsgFamilySizePositive},
		{"blank", "", validation.MsgAllFieldsRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAuth{}
			m := New(svc, 80, 24)
			fillRegister(&m, tt.size)

			if cmd := m.submit(); cmd != nil {
				t.Fatal("invalid form should not produce a request")
			}
			if m.FormError() != tt.want {
				t.Errorf("FormError() = %q, want %q", m.FormError(), tt.want)
			}
			if len(svc.registers) != 0 {
				t.Error("Register should not be called")
			}
		})
	}
}

func TestRegisterSuccessPrefillsLogin(t *testing.T) {
	svc := &fakeAuth{}
	m := New(svc, 80, 24)
	fillRegister(&m, "3")

	m = submitAndApply(m)

	if len(svc.registers) != 1 || svc.registers[0].FamilySize != 3 {
		t.Fatalf("registers = %+v", svc.registers)
	}
	if m.Mode() != ModeLogin {
		t.Errorf("Mode() = %v, want ModeLogin", m.Mode())
	}
	if m.login.Email != "ada@example.com" {
		t.Errorf("login email = %q", m.login.Email)
	}
	if m.Success() != "Registration successful! Please log in." {
		t.Errorf("Success() = %q", m.Success())
	}
}

func TestLoginValidation(t *testing.T) {
	svc := &fakeAuth{}
	m := New(svc, 80, 24)
	m.ShowLogin("", "not-an-email")
	m.login.Password = "pw"

	if cmd := m.submit(); cmd != nil {
		t.Fatal("invalid email should not produce a request")
	}
	if m.FormError() != validation.MsgEmailInvalid {
		t.Errorf("FormError() = %q", m.FormError())
	}
	if len(svc.logins) != 0 {
		t.Error("Login should not be called")
	}
}

func TestLoginUnauthorized(t *testing.T) {
	svc := &fakeAuth{loginErr: &api.Error{Op: "login", Status: http.StatusUnauthorized}}
	m := New(svc, 80, 24)
	m.ShowLogin("", "ada@example.com")
	m.login.Password = "wrong"

	m = submitAndApply(m)

	if m.Mode() != ModeLogin {
		t.Fatalf("Mode() = %v, want ModeLogin", m.Mode())
	}
	if m.FormError() != "Invalid email or password." {
		t.Errorf("FormError() = %q", m.FormError())
	}
}

func TestLoginSuccessClosesForm(t *testing.T) {
	svc := &fakeAuth{}
	m := New(svc, 80, 24)
	m.ShowLogin("", "ada@example.com")
	m.login.Password = "pw"

	m = submitAndApply(m)

	if m.Typing() {
		t.Error("form should close after login")
	}
	if m.Success() != "Logged in as ada." {
		t.Errorf("Success() = %q", m.Success())
	}
}

func TestForgotPasswordFailureStaysOpen(t *testing.T) {
	svc := &fakeAuth{resetResp: models.ForgotPasswordResponse{Success: false, Message: "Incorrect answer."}}
	m := New(svc, 80, 24)
	m.ShowForgot()
	m.forgot.Email = "ada@example.com"
	m.forgot.NewPassword = "new"
	m.forgot.Answer = "Fido"

	m = submitAndApply(m)

	if m.Mode() != ModeForgot {
		t.Fatalf("Mode() = %v, want ModeForgot", m.Mode())
	}
	if m.FormError() != "Incorrect answer." {
		t.Errorf("FormError() = %q", m.FormError())
	}
}

func TestForgotPasswordSuccessGoesToLogin(t *testing.T) {
	svc := &fakeAuth{resetResp: models.ForgotPasswordResponse{Success: true}}
	m := New(svc, 80, 24)
	m.ShowForgot()
	m.forgot.Email = "ada@example.com"
	m.forgot.NewPassword = "new"
	m.forgot.Answer = "Rex"

	m = submitAndApply(m)

	if m.Mode() != ModeLogin {
		t.Fatalf("Mode() = %v, want ModeLogin", m.Mode())
	}
	if m.Success() != "Password reset successful!" {
		t.Errorf("Success() = %q", m.Success())
	}
}

func TestLogoutOnlyWhenLoggedIn(t *testing.T) {
	svc := &fakeAuth{}
	m := New(svc, 80, 24)
	o := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("o")}

	m, _ = m.Update(o)
	if svc.loggedOut {
		t.Fatal("logout should be ignored for guests")
	}

	m.SetUser("ada", true)
	m, _ = m.Update(o)
	if !svc.loggedOut {
		t.Error("o should log out")
	}
	if m.Success() != "You have been logged out." {
		t.Errorf("Success() = %q", m.Success())
	}
}
