// Package account holds the login, registration and password reset forms.
package account

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/mealplanner/internal/api"
	"github.com/julianstephens/mealplanner/internal/constants"
	apperrors "github.com/julianstephens/mealplanner/internal/errors"
	"github.com/julianstephens/mealplanner/internal/fetch"
	"github.com/julianstephens/mealplanner/internal/logger"
	"github.com/julianstephens/mealplanner/internal/models"
	"github.com/julianstephens/mealplanner/internal/tui/common"
	"github.com/julianstephens/mealplanner/internal/validation"
)

const submitKey = "account.submit"

// Service is the auth slice of the API client.
type Service interface {
	Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) error
	ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) (models.ForgotPasswordResponse, error)
	Logout() error
}

// Mode is the form the account screen shows.
type Mode int

const (
	ModeMenu Mode = iota
	ModeLogin
	ModeRegister
	ModeForgot
)

// outcome is what a submitted form resolves to.
type outcome struct {
	mode    Mode
	message string
	ok      bool
	email   string
}

type loginData struct {
	Email    string
	Password string
}

type registerData struct {
	Username       string
	Email          string
	Password       string
	FamilySize     string
	SecretQuestion string
	Answer         string
}

type forgotData struct {
	Email          string
	NewPassword    string
	SecretQuestion string
	Answer         string
}

type KeyMap struct {
	Login    key.Binding
	Register key.Binding
	Forgot   key.Binding
	Logout   key.Binding
	Cancel   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Login: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "log in"),
		),
		Register: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "register"),
		),
		Forgot: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "forgot password"),
		),
		Logout: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "log out"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
	}
}

var noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

// Model is the account screen.
type Model struct {
	svc      Service
	username string
	loggedIn bool
	keys     KeyMap

	mode      Mode
	form      *huh.Form
	login     *loginData
	register  *registerData
	forgot    *forgotData
	req       fetch.Request[outcome]
	formError string
	notice    string
	success   string

	width  int
	height int
}

// New returns the account screen in login mode.
func New(svc Service, width, height int) Model {
	return Model{
		svc:    svc,
		keys:   DefaultKeyMap(),
		req:    fetch.New[outcome]("Something went wrong. Please try again."),
		width:  width,
		height: height,
	}
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(min(width, 80))
	}
}

// SetUser updates the signed-in user shown on the screen.
func (m *Model) SetUser(username string, loggedIn bool) {
	m.username = username
	m.loggedIn = loggedIn
	if loggedIn && m.mode == ModeLogin {
		m.closeForm()
	}
}

// Accessors for tests and the root model.
func (m Model) Mode() Mode          { return m.mode }
func (m Model) FormError() string   { return m.formError }
func (m Model) Notice() string      { return m.notice }
func (m Model) Success() string     { return m.success }
func (m Model) Typing() bool        { return m.form != nil }
func (m Model) Submitting() bool    { return m.req.Loading() }
func (m Model) LoggedIn() bool      { return m.loggedIn }
func (m Model) DisplayName() string { return m.username }

// ShowLogin opens the login form with notice above it, prefilling email.
func (m *Model) ShowLogin(notice, email string) tea.Cmd {
	m.notice = notice
	m.success = ""
	m.login = &loginData{Email: email}
	return m.open(ModeLogin, m.newLoginForm())
}

// ShowRegister switches to the registration form.
func (m *Model) ShowRegister() tea.Cmd {
	m.notice, m.success = "", ""
	m.register = &registerData{SecretQuestion: constants.SecretQuestions[0]}
	return m.open(ModeRegister, m.newRegisterForm())
}

// ShowForgot switches to the password reset form.
func (m *Model) ShowForgot() tea.Cmd {
	m.notice, m.success = "", ""
	m.forgot = &forgotData{SecretQuestion: constants.SecretQuestions[0]}
	return m.open(ModeForgot, m.newForgotForm())
}

func (m *Model) open(mode Mode, form *huh.Form) tea.Cmd {
	m.mode = mode
	m.form = form.WithWidth(min(max(m.width, 40), 80))
	m.formError = ""
	return m.form.Init()
}

func (m *Model) closeForm() {
	m.mode = ModeMenu
	m.form = nil
	m.formError = ""
}

func questionOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(constants.SecretQuestions))
	for i, q := range constants.SecretQuestions {
		opts[i] = huh.NewOption(q, q)
	}
	return opts
}

func (m *Model) newLoginForm() *huh.Form {
	d := m.login
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&d.Email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&d.Password),
		),
	).WithTheme(huh.ThemeDracula())
}

func (m *Model) newRegisterForm() *huh.Form {
	d := m.register
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&d.Username),
			huh.NewInput().
				Title("Email").
				Value(&d.Email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&d.Password),
			huh.NewInput().
				Title("Family size").
				Value(&d.FamilySize),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Secret question").
				Options(questionOptions()...).
				Value(&d.SecretQuestion),
			huh.NewInput().
				Title("Answer").
				Value(&d.Answer),
		),
	).WithTheme(huh.ThemeDracula())
}

func (m *Model) newForgotForm() *huh.Form {
	d := m.forgot
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&d.Email),
			huh.NewInput().
				Title("New password").
				EchoMode(huh.EchoModePassword).
				Value(&d.NewPassword),
			huh.NewSelect[string]().
				Title("Secret question").
				Options(questionOptions()...).
				Value(&d.SecretQuestion),
			huh.NewInput().
				Title("Answer").
				Value(&d.Answer),
		),
	).WithTheme(huh.ThemeDracula())
}

// reject keeps the form open with msg and sends nothing.
func (m *Model) reject(msg string) tea.Cmd {
	m.formError = msg
	m.form.State = huh.StateNormal
	return nil
}

func (m *Model) submit() tea.Cmd {
	svc := m.svc
	var fn func(context.Context) (outcome, error)

	switch m.mode {
	case ModeLogin:
		req := models.LoginRequest{Email: strings.TrimSpace(m.login.Email), Password: m.login.Password}
		if err := validation.ValidateLogin(req); err != nil {
			return m.reject(userMessage(err))
		}
		fn = func(ctx context.Context) (outcome, error) {
			resp, err := svc.Login(ctx, req)
			if err != nil {
				return outcome{}, err
			}
			return outcome{mode: ModeLogin, ok: true, message: "Logged in as " + resp.Username + "."}, nil
		}

	case ModeRegister:
		d := m.register
		size, err := validation.ParseFamilySize(d.FamilySize)
		if err != nil && strings.TrimSpace(d.FamilySize) == "" {
			return m.reject(validation.MsgAllFieldsRequired)
		}
		if err != nil {
			return m.reject(userMessage(err))
		}
		req := models.RegisterRequest{
			Username:       strings.TrimSpace(d.Username),
			Email:          strings.TrimSpace(d.Email),
			Password:       d.Password,
			FamilySize:     size,
			SecretQuestion: d.SecretQuestion,
			Answer:         d.Answer,
		}
		if err := validation.ValidateRegister(req); err != nil {
			return m.reject(userMessage(err))
		}
		fn = func(ctx context.Context) (outcome, error) {
			if err := svc.Register(ctx, req); err != nil {
				return outcome{}, err
			}
			return outcome{mode: ModeRegister, ok: true, email: req.Email, message: "Registration successful! Please log in."}, nil
		}

	case ModeForgot:
		d := m.forgot
		req := models.ForgotPasswordRequest{
			Email:          strings.TrimSpace(d.Email),
			NewPassword:    d.NewPassword,
			SecretQuestion: d.SecretQuestion,
			Answer:         d.Answer,
		}
		if err := validation.ValidateForgotPassword(req); err != nil {
			return m.reject(userMessage(err))
		}
		fn = func(ctx context.Context) (outcome, error) {
			resp, err := svc.ForgotPassword(ctx, req)
			if err != nil {
				return outcome{}, err
			}
			return outcome{mode: ModeForgot, ok: resp.Success, email: req.Email, message: api.ResetMessage(resp)}, nil
		}

	default:
		return nil
	}

	m.formError = ""
	return fetch.Cmd(context.Background(), submitKey, m.req.Start(), fn)
}

func userMessage(err error) string {
	return apperrors.UserMessage(err, err.Error())
}

func (m *Model) logout() tea.Cmd {
	if err := m.svc.Logout(); err != nil {
		logger.Error("Failed to log out", "error", err)
		return common.Status("Failed to log out.", true)
	}
	m.notice = ""
	m.success = "You have been logged out."
	return nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if res, ok := msg.(fetch.Result[outcome]); ok {
		if res.Key != submitKey || res.Seq != m.req.Seq() {
			return m, nil
		}
		m.req.Apply(res)
		return m.finish(res)
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Logout) && m.loggedIn:
			return m, m.logout()
		case key.Matches(msg, m.keys.Login) && !m.loggedIn:
			return m, m.ShowLogin("", "")
		case key.Matches(msg, m.keys.Register) && !m.loggedIn:
			return m, m.ShowRegister()
		case key.Matches(msg, m.keys.Forgot) && !m.loggedIn:
			return m, m.ShowForgot()
		}
	}
	return m, nil
}

func (m Model) finish(res fetch.Result[outcome]) (Model, tea.Cmd) {
	if res.Err != nil {
		m.formError = m.req.Message()
		if m.mode == ModeLogin && api.StatusCode(res.Err) == http.StatusUnauthorized {
			m.formError = "Invalid email or password."
		}
		if m.form != nil {
			m.form.State = huh.StateNormal
		}
		return m, nil
	}

	out := res.Value
	switch out.mode {
	case ModeLogin:
		m.closeForm()
		m.notice = ""
		m.success = out.message
		return m, nil
	case ModeRegister:
		cmd := m.ShowLogin("", out.email)
		m.success = out.message
		return m, cmd
	case ModeForgot:
		if !out.ok {
			return m, m.reject(out.message)
		}
		cmd := m.ShowLogin("", out.email)
		m.success = out.message
		return m, cmd
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Cancel) {
		m.closeForm()
		return m, nil
	}
	if m.req.Loading() {
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		cmds = append(cmds, m.submit())
	case huh.StateAborted:
		m.closeForm()
	}
	return m, tea.Batch(cmds...)
}

func (m Model) HelpKeys() []key.Binding {
	if m.form != nil {
		return []key.Binding{m.keys.Cancel}
	}
	if m.loggedIn {
		return []key.Binding{m.keys.Logout}
	}
	return []key.Binding{m.keys.Login, m.keys.Register, m.keys.Forgot}
}

func (m Model) title() string {
	switch m.mode {
	case ModeLogin:
		return "Log In"
	case ModeRegister:
		return "Register"
	case ModeForgot:
		return "Reset Password"
	}
	return "Account"
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(common.TitleStyle.Render(m.title()))
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice) + "\n\n")
	}
	if m.success != "" {
		b.WriteString(common.SuccessStyle.Render(m.success) + "\n\n")
	}

	if m.form != nil {
		b.WriteString(m.form.View())
		if m.req.Loading() {
			b.WriteString("\n" + common.MutedStyle.Render("Submitting..."))
		}
		if m.formError != "" {
			b.WriteString("\n" + common.ErrorStyle.Render(m.formError))
		}
		return b.String()
	}

	if m.loggedIn {
		b.WriteString(fmt.Sprintf("Signed in as %s.\n\n", m.username))
		b.WriteString(common.MutedStyle.Render("Press 'o' to log out."))
		return b.String()
	}
	b.WriteString("You are browsing as a guest.\n\n")
	b.WriteString(common.MutedStyle.Render("Press 'l' to log in, 'n' to register or 'f' to reset your password."))
	return b.String()
}
