// Package sandbox is a local implementation of the meal planner REST API
// used for development and end-to-end testing of the client.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/julianstephens/mealplanner/internal/constants"
	"github.com/julianstephens/mealplanner/internal/logger"
	"github.com/julianstephens/mealplanner/internal/storage"
)

// Options configures a sandbox server.
type Options struct {
	Secret   string
	TokenTTL time.Duration
	// AllowOrigins lists CORS origins. Empty allows any origin.
	AllowOrigins []string
}

// Validate rejects short secrets and non-positive token lifetimes.
func (o Options) Validate() error {
	if len(o.Secret) < constants.SandboxMinSecretLength {
		return fmt.Errorf("sandbox secret must be at least %d characters", constants.SandboxMinSecretLength)
	}
	if o.TokenTTL <= 0 {
		return errors.New("sandbox token TTL must be positive")
	}
	return nil
}

// Server serves the meal planner API from a local store.
type Server struct {
	store  storage.Provider
	tokens *TokenIssuer
	engine *gin.Engine
}

// New builds a server over an initialized store.
func New(store storage.Provider, opts Options) (*Server, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	s := &Server{
		store:  store,
		tokens: NewTokenIssuer(opts.Secret, opts.TokenTTL),
	}
	s.engine = s.routes(opts)
	return s, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func (s *Server) routes(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(), cors.New(corsConfig(opts.AllowOrigins)))

	api := r.Group("/api")
	api.GET("/health", s.health)

	user := api.Group("/User")
	user.POST("/login", s.login)
	user.POST("/register", s.register)
	user.POST("/forgotpassword", s.forgotPassword)

	authed := api.Group("", s.RequireUser())
	authed.GET("/familysize", s.familySize)
	authed.GET("/AvailableGrocery", s.listIngredients)
	authed.POST("/AvailableGrocery", s.createIngredient)

	open := api.Group("", s.OptionalUser())
	open.POST("/recipe/recommend", s.recommend)
	open.POST("/recipe/recommendByIngredients", s.recommendByIngredients)
	open.GET("/recipe/aggregateddata", s.aggregatedData)
	open.GET("/recipe/remaining-ingredients", s.remainingIngredients)
	open.GET("/WeeklyCalendar", s.weeklyCalendar)
	open.POST("/WeeklyCalendar", s.saveCalendarSlot)

	return r
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Serve listens on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Sandbox listening", "addr", addr, "store", s.store.Name())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("Sandbox shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "version": constants.Version})
}
