package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/mealplanner/internal/logger"
)

// ErrSessionInvalid is returned when an authenticated call is attempted
// without a usable token. The persisted token has already been removed.
var ErrSessionInvalid = stderrors.New("Token expired or missing")

// SessionExpiredMessage is shown whenever ErrSessionInvalid reaches the user.
const SessionExpiredMessage = "Your session has expired. Please log in again."

// UserFacing is implemented by errors whose message is safe to show as is.
type UserFacing interface {
	error
	UserMessage() string
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// IsSessionInvalid reports whether err means the user has to log in again.
func IsSessionInvalid(err error) bool {
	return stderrors.Is(err, ErrSessionInvalid)
}

// UserMessage maps err onto the message a screen should display. Session
// errors and user-facing errors keep their own text; everything else
// collapses into fallback so transport details stay in the log.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if IsSessionInvalid(err) {
		return SessionExpiredMessage
	}
	var uf UserFacing
	if stderrors.As(err, &uf) {
		return uf.UserMessage()
	}
	return fallback
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
