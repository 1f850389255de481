package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/mealplanner/internal/migration"
	"github.com/julianstephens/mealplanner/internal/models"
)

// SQLStore implements the data methods of Provider over database/sql. The
// sqlite and postgres stores embed it and own the connection lifecycle.
type SQLStore struct {
	db      *sql.DB
	dialect migration.Dialect
}

// NewSQLStore wraps an open database using dialect's placeholders.
func NewSQLStore(db *sql.DB, dialect migration.Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// DB returns the underlying connection pool.
func (s *SQLStore) DB() *sql.DB { return s.db }

func (s *SQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// rebind rewrites "?" placeholders for the store's dialect.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != migration.Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *SQLStore) CreateUser(ctx context.Context, u User) (User, error) {
	u.Email = normalizeEmail(u.Email)
	if _, err := s.GetUserByEmail(ctx, u.Email); err == nil {
		return User{}, fmt.Errorf("user %s: %w", u.Email, ErrDuplicate)
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	err := s.db.QueryRowContext(ctx, s.rebind(`
		INSERT INTO users (username, email, password_hash, family_size, secret_question, answer_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		u.Username, u.Email, u.PasswordHash, u.FamilySize, u.SecretQuestion, u.AnswerHash,
		time.Now().UTC().Format(time.RFC3339),
	).Scan(&u.ID)
	if err != nil {
		return User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

const userColumns = `id, username, email, password_hash, family_size, secret_question, answer_hash`

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FamilySize, &u.SecretQuestion, &u.AnswerHash)
	return u, err
}

func (s *SQLStore) GetUser(ctx context.Context, id int64) (User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, s.rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id))
	if err != nil {
		return User{}, notFound(err, "user")
	}
	return u, nil
}

func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, s.rebind(`SELECT `+userColumns+` FROM users WHERE email = ?`), normalizeEmail(email)))
	if err != nil {
		return User{}, notFound(err, "user")
	}
	return u, nil
}

func (s *SQLStore) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`UPDATE users SET password_hash = ? WHERE id = ?`), passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLStore) UpsertRecipe(ctx context.Context, r models.Recipe) error {
	ings := r.Ingredients
	if ings == nil {
		ings = []string{}
	}
	data, err := json.Marshal(ings)
	if err != nil {
		return fmt.Errorf("failed to encode ingredients: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO recipes (id, name, ingredients, image_url, instructions, role)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			ingredients = excluded.ingredients,
			image_url = excluded.image_url,
			instructions = excluded.instructions,
			role = excluded.role`),
		string(r.ID), r.Name, string(data), r.ImageURL, r.Instructions, r.Role,
	)
	if err != nil {
		return fmt.Errorf("failed to save recipe %s: %w", r.ID, err)
	}
	return nil
}

const recipeColumns = `id, name, ingredients, image_url, instructions, role`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecipe(row rowScanner) (models.Recipe, error) {
	var r models.Recipe
	var id, ings string
	if err := row.Scan(&id, &r.Name, &ings, &r.ImageURL, &r.Instructions, &r.Role); err != nil {
		return models.Recipe{}, err
	}
	r.ID = models.ID(id)
	if err := json.Unmarshal([]byte(ings), &r.Ingredients); err != nil {
		return models.Recipe{}, fmt.Errorf("recipe %s has malformed ingredients: %w", id, err)
	}
	return r, nil
}

func (s *SQLStore) GetRecipe(ctx context.Context, id string) (models.Recipe, error) {
	r, err := scanRecipe(s.db.QueryRowContext(ctx, s.rebind(`SELECT `+recipeColumns+` FROM recipes WHERE id = ?`), id))
	if err != nil {
		return models.Recipe{}, notFound(err, "recipe "+id)
	}
	return r, nil
}

func (s *SQLStore) ListRecipes(ctx context.Context) ([]models.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+recipeColumns+` FROM recipes ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipes := []models.Recipe{}
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	return recipes, rows.Err()
}

func (s *SQLStore) CountRecipes(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&n)
	return n, err
}

func (s *SQLStore) AddIngredient(ctx context.Context, userID int64, ing models.Ingredient) (models.Ingredient, error) {
	err := s.db.QueryRowContext(ctx, s.rebind(`
		INSERT INTO ingredients (user_id, name, quantity, measurement)
		VALUES (?, ?, ?, ?)
		RETURNING id`),
		userID, ing.Name, ing.Quantity, ing.Measurement,
	).Scan(&ing.ID)
	if err != nil {
		return models.Ingredient{}, fmt.Errorf("failed to add ingredient: %w", err)
	}
	return ing, nil
}

func (s *SQLStore) ListIngredients(ctx context.Context, userID int64) ([]models.Ingredient, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, name, quantity, measurement
		FROM ingredients WHERE user_id = ? ORDER BY id`), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ings := []models.Ingredient{}
	for rows.Next() {
		var ing models.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.Quantity, &ing.Measurement); err != nil {
			return nil, err
		}
		ings = append(ings, ing)
	}
	return ings, rows.Err()
}

func (s *SQLStore) UpsertCalendarSlot(ctx context.Context, slot CalendarSlot) (CalendarSlot, error) {
	err := s.db.QueryRowContext(ctx, s.rebind(`
		INSERT INTO calendar_slots (user_id, day_of_week, slot_id, recipe_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, day_of_week, slot_id) DO UPDATE SET recipe_id = excluded.recipe_id
		RETURNING id`),
		slot.UserID, slot.DayOfWeek, slot.SlotID, slot.RecipeID,
	).Scan(&slot.ID)
	if err != nil {
		return CalendarSlot{}, fmt.Errorf("failed to save calendar slot: %w", err)
	}
	return slot, nil
}

func (s *SQLStore) ListCalendarSlots(ctx context.Context, userID int64) ([]CalendarSlot, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, user_id, day_of_week, slot_id, recipe_id
		FROM calendar_slots WHERE user_id = ? ORDER BY day_of_week, slot_id`), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := []CalendarSlot{}
	for rows.Next() {
		var c CalendarSlot
		if err := rows.Scan(&c.ID, &c.UserID, &c.DayOfWeek, &c.SlotID, &c.RecipeID); err != nil {
			return nil, err
		}
		slots = append(slots, c)
	}
	return slots, rows.Err()
}

// IncrementSearchCounts bumps the counter of each ingredient in a single
// transaction.
func (s *SQLStore) IncrementSearchCounts(ctx context.Context, ingredients []string) error {
	if len(ingredients) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	query := s.rebind(`
		INSERT INTO ingredient_searches (ingredient, search_count) VALUES (?, 1)
		ON CONFLICT (ingredient) DO UPDATE SET search_count = ingredient_searches.search_count + 1`)
	for _, name := range ingredients {
		if _, err := tx.ExecContext(ctx, query, strings.ToLower(name)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record search for %q: %w", name, err)
		}
	}
	return tx.Commit()
}

func (s *SQLStore) SearchCounts(ctx context.Context) ([]models.IngredientSearchCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ingredient, search_count FROM ingredient_searches
		ORDER BY search_count DESC, ingredient`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []models.IngredientSearchCount{}
	for rows.Next() {
		var c models.IngredientSearchCount
		if err := rows.Scan(&c.Ingredient, &c.SearchCount); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
