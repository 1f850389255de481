package storage

import (
	"context"
	"errors"

	"github.com/julianstephens/mealplanner/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// User is a sandbox account. Secrets are stored as bcrypt hashes.
type User struct {
	ID             int64
	Username       string
	Email          string
	PasswordHash   string
	FamilySize     int
	SecretQuestion string
	AnswerHash     string
}

// CalendarSlot is one persisted assignment. UserID 0 holds anonymous plans.
type CalendarSlot struct {
	ID        int64
	UserID    int64
	DayOfWeek int
	SlotID    int
	RecipeID  string
}

// Provider is the sandbox's persistence layer.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	Ping(ctx context.Context) error
	Name() string

	// Users
	CreateUser(ctx context.Context, u User) (User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	// Recipes
	UpsertRecipe(ctx context.Context, r models.Recipe) error
	GetRecipe(ctx context.Context, id string) (models.Recipe, error)
	ListRecipes(ctx context.Context) ([]models.Recipe, error)
	CountRecipes(ctx context.Context) (int, error)

	// Pantry
	AddIngredient(ctx context.Context, userID int64, ing models.Ingredient) (models.Ingredient, error)
	ListIngredients(ctx context.Context, userID int64) ([]models.Ingredient, error)

	// Calendar
	UpsertCalendarSlot(ctx context.Context, slot CalendarSlot) (CalendarSlot, error)
	ListCalendarSlots(ctx context.Context, userID int64) ([]CalendarSlot, error)

	// Search statistics
	IncrementSearchCounts(ctx context.Context, ingredients []string) error
	SearchCounts(ctx context.Context) ([]models.IngredientSearchCount, error)
}
