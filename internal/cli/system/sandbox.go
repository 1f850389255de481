package system

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/mealplanner/internal/backup"
	"github.com/julianstephens/mealplanner/internal/cli"
	"github.com/julianstephens/mealplanner/internal/config"
	"github.com/julianstephens/mealplanner/internal/logger"
	"github.com/julianstephens/mealplanner/internal/sandbox"
	"github.com/julianstephens/mealplanner/internal/storage/postgres"
)

// SandboxServeCmd runs a local copy of the meal-planner API.
type SandboxServeCmd struct {
	Addr     string   `help:"Listen address. Defaults to MEALPLANNER_SANDBOX_ADDR or 127.0.0.1:5000."`
	Database string   `help:"SQLite path or PostgreSQL connection string." name:"database"`
	Origins  []string `help:"Allowed CORS origins (repeatable). Empty allows any." name:"origin"`
}

func (cmd *SandboxServeCmd) Run(ctx *cli.Context) error {
	cfg := ctx.Config.Sandbox
	addr := firstNonEmpty(cmd.Addr, cfg.Addr)
	database := firstNonEmpty(cmd.Database, cfg.Database)

	if ctx.Config.App.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sandbox.OpenStore(sigCtx, database)
	if err != nil {
		return err
	}
	defer store.Close()

	srv, err := sandbox.New(store, sandbox.Options{
		Secret:       cfg.Secret,
		TokenTTL:     cfg.TokenTTL,
		AllowOrigins: cmd.Origins,
	})
	if err != nil {
		return err
	}

	lockPath := sandbox.LockfilePath(ctx.Config.App.ConfigDir)
	if err := sandbox.WriteLock(lockPath, addr); err != nil {
		return err
	}
	defer func() {
		if err := sandbox.RemoveLock(lockPath); err != nil {
			logger.Warn("Failed to remove sandbox lockfile", "path", lockPath, "error", err)
		}
	}()

	ctx.Printf("Sandbox API listening on http://%s/api (store: %s)\n", addr, store.Name())
	ctx.Println("Press Ctrl+C to stop.")
	if err := srv.Serve(sigCtx, addr); err != nil {
		return fmt.Errorf("sandbox server failed: %w", err)
	}
	ctx.Println("Sandbox stopped")
	return nil
}

// SandboxSeedCmd loads the built-in recipe catalog into the sandbox store.
type SandboxSeedCmd struct {
	Database string `help:"SQLite path or PostgreSQL connection string." name:"database"`
}

func (cmd *SandboxSeedCmd) Run(ctx *cli.Context) error {
	database := firstNonEmpty(cmd.Database, ctx.Config.Sandbox.Database)
	store, err := sandbox.NewStore(database)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		return fmt.Errorf("failed to initialize sandbox store: %w", err)
	}
	n, err := sandbox.Seed(context.Background(), store)
	if err != nil {
		return fmt.Errorf("failed to seed recipes: %w", err)
	}
	ctx.Printf("✓ Seeded %d recipes into %s\n", n, store.Name())
	return nil
}

// SandboxBackupCmd snapshots the SQLite sandbox database, or lists the
// existing snapshots.
type SandboxBackupCmd struct {
	Database string `help:"SQLite database path." name:"database"`
	List     bool   `help:"List snapshots instead of creating one."`
}

func (cmd *SandboxBackupCmd) Run(ctx *cli.Context) error {
	mgr, err := snapshotManager(ctx, cmd.Database)
	if err != nil {
		return err
	}

	if cmd.List {
		snaps, err := mgr.List()
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			ctx.Printf("No snapshots in %s\n", mgr.Dir())
			return nil
		}
		for _, s := range snaps {
			ctx.Printf("  %s  %s  %d bytes\n", s.Taken.Format("2006-01-02 15:04:05"), filepath.Base(s.Path), s.Size)
		}
		return nil
	}

	snap, err := mgr.Create(context.Background())
	if err != nil {
		return err
	}
	ctx.Printf("✓ Snapshot written to %s\n", snap.Path)
	return nil
}

// SandboxRestoreCmd replaces the sandbox database with a snapshot.
type SandboxRestoreCmd struct {
	Snapshot string `arg:"" optional:"" help:"Snapshot file. Defaults to the newest."`
	Database string `help:"SQLite database path." name:"database"`
}

func (cmd *SandboxRestoreCmd) Run(ctx *cli.Context) error {
	if lock, err := sandbox.CheckLock(sandbox.LockfilePath(ctx.Config.App.ConfigDir)); err == nil {
		return fmt.Errorf("stop the sandbox first (running on %s, pid %d)", lock.Addr, lock.PID)
	}
	mgr, err := snapshotManager(ctx, cmd.Database)
	if err != nil {
		return err
	}

	previous, err := mgr.Restore(context.Background(), cmd.Snapshot)
	if err != nil {
		return err
	}
	if previous != "" {
		ctx.Printf("Saved the replaced database as %s\n", filepath.Base(previous))
	}
	ctx.Println("✓ Sandbox database restored")
	return nil
}

func snapshotManager(ctx *cli.Context, database string) (*backup.Manager, error) {
	database = firstNonEmpty(database, ctx.Config.Sandbox.Database)
	if postgres.IsConnString(database) {
		return nil, fmt.Errorf("snapshots only cover SQLite sandboxes; use pg_dump for PostgreSQL")
	}
	return backup.NewManager(config.ExpandHome(database)), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
