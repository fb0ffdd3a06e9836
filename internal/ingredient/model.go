package ingredient

import "time"

// Category labels for ingredients. CategoryOther is the catch-all for
// names no keyword matches.
const (
	CategoryMeat      = "肉"
	CategoryVegetable = "野菜"
	CategoryMushroom  = "きのこ"
	CategoryDairy     = "乳製品"
	CategoryGrain     = "穀物"
	CategorySeasoning = "調味料"
	CategoryProcessed = "加工食品"
	CategoryOther     = "その他"
)

// Ingredient represents one row of current inventory.
type Ingredient struct {
	ID         int64      `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	Quantity   float64    `json:"quantity" db:"quantity"`
	Unit       string     `json:"unit" db:"unit"`
	Category   string     `json:"category" db:"category"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty" db:"expiry_date"`
	Notes      string     `json:"notes,omitempty" db:"notes"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// UsageEvent is an append-only history entry for an add or use action.
// IngredientID is a weak reference: the ingredient row may be deleted
// later, the event survives.
type UsageEvent struct {
	ID           int64     `json:"id" db:"id"`
	IngredientID int64     `json:"ingredient_id" db:"ingredient_id"`
	Action       string    `json:"action" db:"action"`
	Quantity     float64   `json:"quantity" db:"quantity"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
}

// Usage event actions.
const (
	ActionAdd = "add"
	ActionUse = "use"
)

// RecipeSuggestion is an append-only record of a recipe returned by the
// AI service.
type RecipeSuggestion struct {
	ID              int64     `json:"id" db:"id"`
	RecipeName      string    `json:"recipe_name" db:"recipe_name"`
	IngredientsUsed string    `json:"ingredients_used" db:"ingredients_used"`
	RecipeContent   string    `json:"recipe_content" db:"recipe_content"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	Liked           bool      `json:"liked" db:"liked"`
}

// Statistics aggregates counts over current inventory.
type Statistics struct {
	TotalCount    int            `json:"total_count"`
	CategoryStats map[string]int `json:"category_stats"`
	ExpiringSoon  int            `json:"expiring_soon"`
}
