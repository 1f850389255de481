// Package clitest runs commands against an in-process sandbox API.
package clitest

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/mealplanner/internal/api"
	"github.com/julianstephens/mealplanner/internal/cli"
	"github.com/julianstephens/mealplanner/internal/config"
	"github.com/julianstephens/mealplanner/internal/constants"
	"github.com/julianstephens/mealplanner/internal/models"
	"github.com/julianstephens/mealplanner/internal/sandbox"
	"github.com/julianstephens/mealplanner/internal/session"
)

const (
	Secret   = "clitest-secret-0123456789"
	Email    = "ada@example.com"
	Password = "hunter22"
	Question = "What is your favorite book?"
	Answer   = "Dune"
)

// Env is a command context wired to a fresh sandbox.
type Env struct {
	Ctx    *cli.Context
	Out    *bytes.Buffer
	Server *httptest.Server
}

// New starts a sandbox for the test and returns a context pointed at it.
func New(t *testing.T) *Env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()

	store, err := sandbox.OpenStore(context.Background(), filepath.Join(dir, "sandbox.db"))
	if err != nil {
		t.Fatalf("failed to open sandbox store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	srv, err := sandbox.New(store, sandbox.Options{Secret: Secret, TokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("failed to create sandbox: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	cfg := &config.Config{
		API: config.APIConfig{BaseURL: ts.URL + "/api", Timeout: 5 * time.Second},
		App: config.AppConfig{ConfigDir: dir},
		Sandbox: config.SandboxConfig{
			Addr:     constants.DefaultSandboxAddr,
			Database: filepath.Join(dir, "seed.db"),
			Secret:   Secret,
			TokenTTL: time.Hour,
		},
	}
	sess := session.NewManager(session.NewFileStore(filepath.Join(dir, constants.SessionFileName)))
	out := &bytes.Buffer{}

	return &Env{
		Ctx: &cli.Context{
			Config:  cfg,
			Session: sess,
			Client:  api.New(cfg.API.BaseURL, cfg.API.Timeout, sess),
			Out:     out,
		},
		Out:    out,
		Server: ts,
	}
}

// Login registers the default user with familySize and logs in.
func (e *Env) Login(t *testing.T, familySize int) {
	t.Helper()
	ctx := context.Background()
	auth := e.Ctx.Client.Auth()
	err := auth.Register(ctx, models.RegisterRequest{
		Username:       "ada",
		Email:          Email,
		Password:       Password,
		FamilySize:     familySize,
		SecretQuestion: Question,
		Answer:         Answer,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := auth.Login(ctx, models.LoginRequest{Email: Email, Password: Password}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	e.Out.Reset()
}
