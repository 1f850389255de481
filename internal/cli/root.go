package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/mealplanner/internal/api"
	"github.com/julianstephens/mealplanner/internal/config"
	apperrors "github.com/julianstephens/mealplanner/internal/errors"
	"github.com/julianstephens/mealplanner/internal/session"
)

// Context is passed to every command's Run method.
type Context struct {
	Config  *config.Config
	Session *session.Manager
	Client  *api.Client
	// Out receives command output. It defaults to stdout.
	Out io.Writer
	// Interactive allows commands to prompt for missing values.
	Interactive bool
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Printf writes formatted output to Out.
func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

// Println writes a line to Out.
func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.out(), args...)
}

// Prompt asks for value when it is empty. Outside an interactive terminal
// a missing value is an error naming the flag to pass instead.
func (c *Context) Prompt(title, flag string, value *string, secret bool) error {
	if strings.TrimSpace(*value) != "" {
		return nil
	}
	if !c.Interactive {
		return fmt.Errorf("%s is required (use --%s)", strings.ToLower(title), flag)
	}
	input := huh.NewInput().Title(title).Value(value)
	if secret {
		input = input.EchoMode(huh.EchoModePassword)
	}
	if err := huh.NewForm(huh.NewGroup(input)).WithTheme(huh.ThemeDracula()).Run(); err != nil {
		return fmt.Errorf("prompt cancelled: %w", err)
	}
	return nil
}

// Choose asks the user to pick one of options when value is empty.
func (c *Context) Choose(title, flag string, options []string, value *string) error {
	if strings.TrimSpace(*value) != "" {
		return nil
	}
	if !c.Interactive {
		return fmt.Errorf("%s is required (use --%s)", strings.ToLower(title), flag)
	}
	opts := make([]huh.Option[string], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(o, o)
	}
	sel := huh.NewSelect[string]().Title(title).Options(opts...).Value(value)
	if err := huh.NewForm(huh.NewGroup(sel)).WithTheme(huh.ThemeDracula()).Run(); err != nil {
		return fmt.Errorf("prompt cancelled: %w", err)
	}
	return nil
}

type commandError struct {
	msg string
	err error
}

func (e *commandError) Error() string { return e.msg }
func (e *commandError) Unwrap() error { return e.err }

// Fail turns err into the error a command returns. Form and session
// errors keep their user-facing text; anything else is wrapped with what.
func Fail(what string, err error) error {
	if err == nil {
		return nil
	}
	var uf apperrors.UserFacing
	if apperrors.IsSessionInvalid(err) || stderrors.As(err, &uf) {
		return &commandError{msg: apperrors.UserMessage(err, err.Error()), err: err}
	}
	return fmt.Errorf("%s: %w", what, err)
}
