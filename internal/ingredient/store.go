package ingredient

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// ExpiringSoonDays is the horizon used by statistics and the default
// expiring-soon listing.
const ExpiringSoonDays = 3

// AddParams carries the fields of a new ingredient. Category, expiry
// and notes are ignored when the add merges into an existing row.
type AddParams struct {
	Name       string
	Quantity   float64
	Unit       string
	Category   string
	ExpiryDate *time.Time
	Notes      string
}

// UpdateParams is a partial patch: only non-nil fields are applied.
type UpdateParams struct {
	Name       *string
	Quantity   *float64
	Unit       *string
	Category   *string
	ExpiryDate *time.Time
	Notes      *string
}

// Filter narrows a List call. Zero values mean "no filter".
type Filter struct {
	Category           string
	ExpiringWithinDays *int
}

// Store defines the interface for ingredient data operations.
type Store interface {
	Add(ctx context.Context, p AddParams) (int64, error)
	Use(ctx context.Context, id int64, quantity float64) (bool, error)
	Update(ctx context.Context, id int64, p UpdateParams) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, f Filter) ([]Ingredient, error)
	Statistics(ctx context.Context) (*Statistics, error)
	UsageHistory(ctx context.Context, limit int) ([]UsageEvent, error)
	AddRecipeHistory(ctx context.Context, recipeName, ingredientsUsed, recipeContent string) (int64, error)
	RecipeHistory(ctx context.Context, limit int) ([]RecipeSuggestion, error)
	SetRecipeLiked(ctx context.Context, id int64, liked bool) (bool, error)
}

// PostgresStore implements the Store interface for PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore connects to the database and creates the tables if
// they do not exist yet.
func NewPostgresStore(dataSourceName string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS ingredients (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		quantity DOUBLE PRECISION NOT NULL,
		unit TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'その他',
		expiry_date DATE,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	if _, err = db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create ingredients table: %w", err)
	}

	schema = `
	CREATE TABLE IF NOT EXISTS usage_history (
		id BIGSERIAL PRIMARY KEY,
		ingredient_id BIGINT NOT NULL,
		action TEXT NOT NULL,
		quantity DOUBLE PRECISION NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	if _, err = db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create usage_history table: %w", err)
	}

	schema = `
	CREATE TABLE IF NOT EXISTS recipe_history (
		id BIGSERIAL PRIMARY KEY,
		recipe_name TEXT NOT NULL,
		ingredients_used TEXT NOT NULL DEFAULT '',
		recipe_content TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		liked BOOLEAN NOT NULL DEFAULT FALSE
	);
	`
	if _, err = db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create recipe_history table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Add inserts an ingredient, or merges the quantity into an existing
// row with the same name and unit. On merge, category, expiry date and
// notes of the existing row are kept as they are. The row mutation and
// the history append commit in one transaction.
func (s *PostgresStore) Add(ctx context.Context, p AddParams) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		id       int64
		quantity float64
	)
	err = tx.QueryRowContext(ctx,
		"SELECT id, quantity FROM ingredients WHERE name = $1 AND unit = $2 FOR UPDATE",
		p.Name, p.Unit,
	).Scan(&id, &quantity)

	switch {
	case err == sql.ErrNoRows:
		err = tx.QueryRowContext(ctx,
			"INSERT INTO ingredients (name, quantity, unit, category, expiry_date, notes) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id",
			p.Name, p.Quantity, p.Unit, p.Category, p.ExpiryDate, p.Notes,
		).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("failed to insert ingredient: %w", err)
		}
	case err != nil:
		return 0, fmt.Errorf("failed to look up ingredient: %w", err)
	default:
		_, err = tx.ExecContext(ctx,
			"UPDATE ingredients SET quantity = quantity + $1, updated_at = NOW() WHERE id = $2",
			p.Quantity, id,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to merge quantity: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO usage_history (ingredient_id, action, quantity) VALUES ($1, $2, $3)",
		id, ActionAdd, p.Quantity,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to append usage history: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return id, nil
}

// Use decrements an ingredient's quantity, clamping at zero. A row that
// reaches exactly zero is deleted. The appended usage event records the
// requested quantity, not the clamped delta. Returns false for an
// unknown id, in which case nothing is written.
func (s *PostgresStore) Use(ctx context.Context, id int64, quantity float64) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current float64
	err = tx.QueryRowContext(ctx,
		"SELECT quantity FROM ingredients WHERE id = $1 FOR UPDATE", id,
	).Scan(&current)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up ingredient: %w", err)
	}

	newQuantity := current - quantity
	if newQuantity <= 0 {
		if _, err = tx.ExecContext(ctx, "DELETE FROM ingredients WHERE id = $1", id); err != nil {
			return false, fmt.Errorf("failed to delete used-up ingredient: %w", err)
		}
	} else {
		_, err = tx.ExecContext(ctx,
			"UPDATE ingredients SET quantity = $1, updated_at = NOW() WHERE id = $2",
			newQuantity, id,
		)
		if err != nil {
			return false, fmt.Errorf("failed to update quantity: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO usage_history (ingredient_id, action, quantity) VALUES ($1, $2, $3)",
		id, ActionUse, quantity,
	)
	if err != nil {
		return false, fmt.Errorf("failed to append usage history: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}
	return true, nil
}

// Update applies a partial patch. Returns false when no fields were
// supplied or the id does not exist.
func (s *PostgresStore) Update(ctx context.Context, id int64, p UpdateParams) (bool, error) {
	var (
		sets []string
		args []interface{}
	)
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Quantity != nil {
		add("quantity", *p.Quantity)
	}
	if p.Unit != nil {
		add("unit", *p.Unit)
	}
	if p.Category != nil {
		add("category", *p.Category)
	}
	if p.ExpiryDate != nil {
		add("expiry_date", *p.ExpiryDate)
	}
	if p.Notes != nil {
		add("notes", *p.Notes)
	}

	if len(sets) == 0 {
		return false, nil
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)
	query := fmt.Sprintf("UPDATE ingredients SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update ingredient: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// Delete removes an ingredient outright.
func (s *PostgresStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM ingredients WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete ingredient: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// List returns ingredients matching all supplied filters, ordered by
// expiry date ascending with missing dates last, then by name.
func (s *PostgresStore) List(ctx context.Context, f Filter) ([]Ingredient, error) {
	query := "SELECT id, name, quantity, unit, category, expiry_date, notes, created_at, updated_at FROM ingredients WHERE 1=1"
	var args []interface{}

	if f.Category != "" {
		args = append(args, f.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if f.ExpiringWithinDays != nil {
		from, to := expiryWindow(*f.ExpiringWithinDays)
		args = append(args, from)
		query += fmt.Sprintf(" AND expiry_date >= $%d", len(args))
		args = append(args, to)
		query += fmt.Sprintf(" AND expiry_date <= $%d", len(args))
	}

	query += " ORDER BY expiry_date ASC NULLS LAST, name ASC"

	var ingredients []Ingredient
	if err := s.db.SelectContext(ctx, &ingredients, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return ingredients, nil
}

// Statistics returns aggregate counts over current inventory.
func (s *PostgresStore) Statistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{CategoryStats: map[string]int{}}

	if err := s.db.GetContext(ctx, &stats.TotalCount, "SELECT COUNT(*) FROM ingredients"); err != nil {
		return nil, fmt.Errorf("failed to count ingredients: %w", err)
	}

	rows, err := s.db.QueryxContext(ctx, "SELECT category, COUNT(*) FROM ingredients GROUP BY category")
	if err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			category string
			count    int
		)
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		stats.CategoryStats[category] = count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	from, to := expiryWindow(ExpiringSoonDays)
	err = s.db.GetContext(ctx, &stats.ExpiringSoon,
		"SELECT COUNT(*) FROM ingredients WHERE expiry_date >= $1 AND expiry_date <= $2",
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count expiring ingredients: %w", err)
	}

	return stats, nil
}

// UsageHistory returns the most recent usage events, newest first.
func (s *PostgresStore) UsageHistory(ctx context.Context, limit int) ([]UsageEvent, error) {
	var events []UsageEvent
	err := s.db.SelectContext(ctx, &events,
		"SELECT id, ingredient_id, action, quantity, timestamp FROM usage_history ORDER BY timestamp DESC, id DESC LIMIT $1",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage history: %w", err)
	}
	return events, nil
}

// AddRecipeHistory appends a suggested recipe to the history log.
func (s *PostgresStore) AddRecipeHistory(ctx context.Context, recipeName, ingredientsUsed, recipeContent string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		"INSERT INTO recipe_history (recipe_name, ingredients_used, recipe_content) VALUES ($1, $2, $3) RETURNING id",
		recipeName, ingredientsUsed, recipeContent,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save recipe history: %w", err)
	}
	return id, nil
}

// RecipeHistory returns the most recent suggestions, newest first.
func (s *PostgresStore) RecipeHistory(ctx context.Context, limit int) ([]RecipeSuggestion, error) {
	var suggestions []RecipeSuggestion
	err := s.db.SelectContext(ctx, &suggestions,
		"SELECT id, recipe_name, ingredients_used, recipe_content, created_at, liked FROM recipe_history ORDER BY created_at DESC, id DESC LIMIT $1",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipe history: %w", err)
	}
	return suggestions, nil
}

// SetRecipeLiked flips the liked flag on a past suggestion.
func (s *PostgresStore) SetRecipeLiked(ctx context.Context, id int64, liked bool) (bool, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE recipe_history SET liked = $1 WHERE id = $2", liked, id)
	if err != nil {
		return false, fmt.Errorf("failed to update recipe history: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// expiryWindow computes the inclusive [today, today+days] date range.
// The day count is bound as computed boundary dates, never interpolated
// into the SQL text.
func expiryWindow(days int) (time.Time, time.Time) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today, today.AddDate(0, 0, days)
}
