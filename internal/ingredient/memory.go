package ingredient

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store in memory for development and testing.
type MemoryStore struct {
	mu          sync.Mutex
	ingredients map[int64]*Ingredient
	events      []UsageEvent
	recipes     []RecipeSuggestion

	ingredientIDCounter int64
	eventIDCounter      int64
	recipeIDCounter     int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ingredients: make(map[int64]*Ingredient)}
}

var _ Store = (*MemoryStore)(nil)

// Add inserts an ingredient or merges the quantity into the row with
// the same name and unit, mirroring PostgresStore.Add.
func (m *MemoryStore) Add(ctx context.Context, p AddParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ing := range m.ingredients {
		if ing.Name == p.Name && ing.Unit == p.Unit {
			ing.Quantity += p.Quantity
			ing.UpdatedAt = time.Now()
			m.appendEvent(ing.ID, ActionAdd, p.Quantity)
			return ing.ID, nil
		}
	}

	m.ingredientIDCounter++
	now := time.Now()
	ing := &Ingredient{
		ID:         m.ingredientIDCounter,
		Name:       p.Name,
		Quantity:   p.Quantity,
		Unit:       p.Unit,
		Category:   p.Category,
		ExpiryDate: p.ExpiryDate,
		Notes:      p.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	m.ingredients[ing.ID] = ing
	m.appendEvent(ing.ID, ActionAdd, p.Quantity)
	return ing.ID, nil
}

// Use decrements quantity with clamping at zero and deletes rows that
// reach zero, mirroring PostgresStore.Use.
func (m *MemoryStore) Use(ctx context.Context, id int64, quantity float64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ing, ok := m.ingredients[id]
	if !ok {
		return false, nil
	}

	newQuantity := ing.Quantity - quantity
	if newQuantity <= 0 {
		delete(m.ingredients, id)
	} else {
		ing.Quantity = newQuantity
		ing.UpdatedAt = time.Now()
	}
	m.appendEvent(id, ActionUse, quantity)
	return true, nil
}

// Update applies a partial patch.
func (m *MemoryStore) Update(ctx context.Context, id int64, p UpdateParams) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.Name == nil && p.Quantity == nil && p.Unit == nil &&
		p.Category == nil && p.ExpiryDate == nil && p.Notes == nil {
		return false, nil
	}

	ing, ok := m.ingredients[id]
	if !ok {
		return false, nil
	}

	if p.Name != nil {
		ing.Name = *p.Name
	}
	if p.Quantity != nil {
		ing.Quantity = *p.Quantity
	}
	if p.Unit != nil {
		ing.Unit = *p.Unit
	}
	if p.Category != nil {
		ing.Category = *p.Category
	}
	if p.ExpiryDate != nil {
		d := *p.ExpiryDate
		ing.ExpiryDate = &d
	}
	if p.Notes != nil {
		ing.Notes = *p.Notes
	}
	ing.UpdatedAt = time.Now()
	return true, nil
}

// Delete removes an ingredient outright.
func (m *MemoryStore) Delete(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ingredients[id]; !ok {
		return false, nil
	}
	delete(m.ingredients, id)
	return true, nil
}

// List returns matching ingredients ordered by expiry date ascending
// with missing dates last, then by name.
func (m *MemoryStore) List(ctx context.Context, f Filter) ([]Ingredient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var from, to time.Time
	if f.ExpiringWithinDays != nil {
		from, to = expiryWindow(*f.ExpiringWithinDays)
	}

	var out []Ingredient
	for _, ing := range m.ingredients {
		if f.Category != "" && ing.Category != f.Category {
			continue
		}
		if f.ExpiringWithinDays != nil {
			if ing.ExpiryDate == nil {
				continue
			}
			d := dateOnly(*ing.ExpiryDate)
			if d.Before(from) || d.After(to) {
				continue
			}
		}
		out = append(out, *ing)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].ExpiryDate, out[j].ExpiryDate
		switch {
		case a == nil && b == nil:
			return out[i].Name < out[j].Name
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.Before(*b)
		default:
			return out[i].Name < out[j].Name
		}
	})
	return out, nil
}

// Statistics returns aggregate counts over current inventory.
func (m *MemoryStore) Statistics(ctx context.Context) (*Statistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &Statistics{CategoryStats: map[string]int{}}
	from, to := expiryWindow(ExpiringSoonDays)

	for _, ing := range m.ingredients {
		stats.TotalCount++
		stats.CategoryStats[ing.Category]++
		if ing.ExpiryDate != nil {
			d := dateOnly(*ing.ExpiryDate)
			if !d.Before(from) && !d.After(to) {
				stats.ExpiringSoon++
			}
		}
	}
	return stats, nil
}

// UsageHistory returns the most recent usage events, newest first.
func (m *MemoryStore) UsageHistory(ctx context.Context, limit int) ([]UsageEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []UsageEvent
	for i := len(m.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.events[i])
	}
	return out, nil
}

// AddRecipeHistory appends a suggested recipe to the history log.
func (m *MemoryStore) AddRecipeHistory(ctx context.Context, recipeName, ingredientsUsed, recipeContent string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.recipeIDCounter++
	m.recipes = append(m.recipes, RecipeSuggestion{
		ID:              m.recipeIDCounter,
		RecipeName:      recipeName,
		IngredientsUsed: ingredientsUsed,
		RecipeContent:   recipeContent,
		CreatedAt:       time.Now(),
	})
	return m.recipeIDCounter, nil
}

// RecipeHistory returns the most recent suggestions, newest first.
func (m *MemoryStore) RecipeHistory(ctx context.Context, limit int) ([]RecipeSuggestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []RecipeSuggestion
	for i := len(m.recipes) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.recipes[i])
	}
	return out, nil
}

// SetRecipeLiked flips the liked flag on a past suggestion.
func (m *MemoryStore) SetRecipeLiked(ctx context.Context, id int64, liked bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.recipes {
		if m.recipes[i].ID == id {
			m.recipes[i].Liked = liked
			return true, nil
		}
	}
	return false, nil
}

// appendEvent records a usage event. Callers hold the mutex.
func (m *MemoryStore) appendEvent(ingredientID int64, action string, quantity float64) {
	m.eventIDCounter++
	m.events = append(m.events, UsageEvent{
		ID:           m.eventIDCounter,
		IngredientID: ingredientID,
		Action:       action,
		Quantity:     quantity,
		Timestamp:    time.Now(),
	})
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
