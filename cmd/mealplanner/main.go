package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"

	"github.com/julianstephens/mealplanner/internal/api"
	"github.com/julianstephens/mealplanner/internal/cli"
	"github.com/julianstephens/mealplanner/internal/cli/account"
	"github.com/julianstephens/mealplanner/internal/cli/pantry"
	"github.com/julianstephens/mealplanner/internal/cli/plans"
	"github.com/julianstephens/mealplanner/internal/cli/recipes"
	"github.com/julianstephens/mealplanner/internal/cli/reports"
	"github.com/julianstephens/mealplanner/internal/cli/system"
	"github.com/julianstephens/mealplanner/internal/config"
	"github.com/julianstephens/mealplanner/internal/constants"
	apperrors "github.com/julianstephens/mealplanner/internal/errors"
	"github.com/julianstephens/mealplanner/internal/logger"
	"github.com/julianstephens/mealplanner/internal/session"
)

var CLI struct {
	Version   kong.VersionFlag
	APIURL    string `help:"Meal planner API base URL." name:"api-url"`
	ConfigDir string `help:"Directory for logs, session file and sandbox data." name:"config-dir"`
	EnvFile   string `help:"Environment file to load." name:"env-file" default:".env"`
	Debug     bool   `help:"Log debug output to stderr."`

	Tui            system.TuiCmd             `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Login          account.LoginCmd          `cmd:"" help:"Log in and store the session."`
	Logout         account.LogoutCmd         `cmd:"" help:"Forget the stored session."`
	Register       account.RegisterCmd       `cmd:"" help:"Create an account."`
	ForgotPassword account.ForgotPasswordCmd `cmd:"" help:"Reset your password with the secret question." name:"forgot-password"`
	Whoami         account.WhoamiCmd         `cmd:"" help:"Show the logged in user."`
	Ingredients    struct {
		List pantry.IngredientsListCmd `cmd:"" help:"List available ingredients." default:"1"`
		Add  pantry.IngredientsAddCmd  `cmd:"" help:"Add an ingredient to the pantry."`
	} `cmd:"" help:"Manage pantry ingredients."`
	FamilySize pantry.FamilySizeCmd `cmd:"" help:"Show your family size." name:"family-size"`
	Recipes    struct {
		Search    recipes.SearchCmd    `cmd:"" help:"Search recipes by ingredient."`
		Recommend recipes.RecommendCmd `cmd:"" help:"Recommend recipes from your pantry."`
	} `cmd:"" help:"Find recipes."`
	Calendar struct {
		Show   plans.CalendarShowCmd   `cmd:"" help:"Show the weekly calendar." default:"1"`
		Assign plans.CalendarAssignCmd `cmd:"" help:"Put a recipe in a meal slot."`
	} `cmd:"" help:"Plan the week."`
	Analytics reports.AnalyticsCmd `cmd:"" help:"Show search and recipe statistics."`
	Dashboard reports.DashboardCmd `cmd:"" help:"Show remaining ingredients for the planned week."`
	Doctor    system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Sandbox   struct {
		Serve   system.SandboxServeCmd   `cmd:"" help:"Run a local copy of the API." default:"1"`
		Seed    system.SandboxSeedCmd    `cmd:"" help:"Load the built-in recipe catalog."`
		Backup  system.SandboxBackupCmd  `cmd:"" help:"Snapshot the SQLite sandbox database."`
		Restore system.SandboxRestoreCmd `cmd:"" help:"Restore the sandbox database from a snapshot."`
	} `cmd:"" help:"Local development API."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Weekly meal planner for the terminal"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.Load(CLI.EnvFile, filepath.Join(constants.DefaultConfigDir, ".env"))
	if err != nil {
		apperrors.Fatalf("failed to load configuration: %v", err)
	}
	if CLI.APIURL != "" {
		cfg.API.BaseURL = CLI.APIURL
	}
	if CLI.ConfigDir != "" {
		cfg.App.ConfigDir = config.ExpandHome(CLI.ConfigDir)
	}
	if CLI.Debug {
		cfg.App.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		apperrors.Fatal(err)
	}

	// The TUI owns the terminal, so it only logs to file.
	quiet := ctx.Command() == "tui"
	if err := logger.Init(logger.Config{Debug: cfg.App.Debug, ConfigDir: cfg.App.ConfigDir, Quiet: quiet}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	sess := session.NewManager(session.NewDefaultStore(cfg.App.ConfigDir))
	appCtx := &cli.Context{
		Config:      cfg,
		Session:     sess,
		Client:      api.New(cfg.API.BaseURL, cfg.API.Timeout, sess),
		Out:         os.Stdout,
		Interactive: isatty.IsTerminal(os.Stdin.Fd()),
	}

	if err := ctx.Run(appCtx); err != nil {
		logger.Debug("Command failed", "command", ctx.Command())
		apperrors.Fatal(err)
	}
}
