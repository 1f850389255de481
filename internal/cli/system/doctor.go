package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/mealplanner/internal/cli"
	"github.com/julianstephens/mealplanner/internal/keyring"
	"github.com/julianstephens/mealplanner/internal/sandbox"
	"github.com/julianstephens/mealplanner/internal/session"
)

const pingTimeout = 5 * time.Second

// DoctorCmd checks the configuration, session and API reachability.
type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false

	// Check 1: configuration
	if err := ctx.Config.Validate(); err != nil {
		ctx.Printf("❌ Configuration: FAIL\n")
		ctx.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		ctx.Printf("✓ Configuration: OK\n")
		if f := ctx.Config.EnvFile(); f != "" {
			ctx.Printf("   Loaded %s\n", f)
		}
	}

	// Check 2: API reachable
	if err := checkAPIReachable(ctx); err != nil {
		ctx.Printf("❌ API reachable (%s): FAIL\n", ctx.Client.BaseURL())
		ctx.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		ctx.Printf("✓ API reachable (%s): OK\n", ctx.Client.BaseURL())
	}

	// Check 3: OS keyring (warning only, the session falls back to a file)
	if keyring.IsAvailable() {
		ctx.Printf("✓ OS keyring: OK\n")
	} else {
		ctx.Printf("⚠ OS keyring: WARNING\n")
		ctx.Printf("   Keyring unavailable; session stored in %s\n", ctx.Session.StoreName())
	}

	// Check 4: session
	if !ctx.Session.LoggedIn() {
		ctx.Printf("⊘ Session: SKIPPED (not logged in)\n")
	} else if exp, err := checkSession(ctx); err != nil {
		ctx.Printf("⚠ Session: WARNING\n")
		ctx.Printf("   %v\n", err)
	} else if exp.IsZero() {
		ctx.Printf("✓ Session (%s): OK\n", ctx.Session.Username())
	} else {
		ctx.Printf("✓ Session (%s, expires %s): OK\n", ctx.Session.Username(), exp.Local().Format(time.RFC1123))
	}

	// Check 5: local sandbox
	lock, err := sandbox.CheckLock(sandbox.LockfilePath(ctx.Config.App.ConfigDir))
	switch {
	case err == nil:
		ctx.Printf("✓ Sandbox (pid %d on %s): OK\n", lock.PID, lock.Addr)
	case errors.Is(err, sandbox.ErrNotRunning):
		ctx.Printf("⊘ Sandbox: SKIPPED (not running)\n")
	default:
		ctx.Printf("⚠ Sandbox: WARNING\n")
		ctx.Printf("   %v\n", err)
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

func checkAPIReachable(ctx *cli.Context) error {
	c, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return ctx.Client.Ping(c)
}

// checkSession returns the token expiry, or an error when the stored
// token can no longer be used.
func checkSession(ctx *cli.Context) (time.Time, error) {
	token, err := ctx.Session.Token()
	if err != nil {
		return time.Time{}, fmt.Errorf("session expired or unreadable, log in again")
	}
	return session.ExpiresAt(token)
}
