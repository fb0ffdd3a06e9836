package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"oshaberi/internal/ingredient"
	"oshaberi/internal/platform/gemini"
)

// suggestFailedMessage is returned when the AI call fails; inventory
// state is already committed at that point and stays intact.
const suggestFailedMessage = "レシピ提案に失敗しました。しばらくしてからもう一度お試しください。"

// missingKeyRecipe is shown when no Gemini API key is configured.
const missingKeyRecipe = `⚠️ Gemini API が未設定です。

以下の手順で設定してください：
1. https://ai.google.dev/ で API キーを取得
2. config.json に gemini_api_key を設定

それまでは、食材を確認して好きなレシピを検索してみてください！`

// Suggester defines the interface for recipe-suggesting AI backends.
type Suggester interface {
	SuggestRecipes(ctx context.Context, ingredientText string) (string, error)
}

// QuotaTracker counts AI calls against the free-tier budget.
type QuotaTracker interface {
	Record() error
	Remaining() gemini.Quota
}

// Handler handles HTTP requests.
type Handler struct {
	Gemini    Suggester // nil when no API key is configured
	LocalLLM  Suggester
	Store     ingredient.Store
	Extractor *ingredient.Extractor
	Quota     QuotaTracker
}

// NewHandler creates a new Handler.
func NewHandler(geminiClient, localLLMClient Suggester, store ingredient.Store, extractor *ingredient.Extractor, quota QuotaTracker) *Handler {
	return &Handler{
		Gemini:    geminiClient,
		LocalLLM:  localLLMClient,
		Store:     store,
		Extractor: extractor,
		Quota:     quota,
	}
}

// ParseIngredients extracts structured ingredient mentions from a
// free-form utterance, typically transcribed speech.
func (h *Handler) ParseIngredients(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %s", err.Error())})
		return
	}

	ingredients := h.Extractor.Extract(req.Text)

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"ingredients": ingredients,
		"debug": gin.H{
			"original_text": req.Text,
			"success_count": len(ingredients),
		},
	})
}

type ingredientPayload struct {
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	Category   string  `json:"category"`
	ExpiryDate string  `json:"expiry_date"`
	Notes      string  `json:"notes"`
}

// AddIngredients registers a batch of ingredients, merging quantities
// into existing rows with the same name and unit.
func (h *Handler) AddIngredients(c *gin.Context) {
	var req struct {
		Ingredients []ingredientPayload `json:"ingredients"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %s", err.Error())})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	addedItems := []gin.H{}
	for _, item := range req.Ingredients {
		category := item.Category
		if category == "" {
			category = ingredient.CategoryOther
		}

		var expiry *time.Time
		if item.ExpiryDate != "" {
			d, err := time.Parse("2006-01-02", item.ExpiryDate)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid expiry_date %q: %s", item.ExpiryDate, err.Error())})
				return
			}
			expiry = &d
		}

		id, err := h.Store.Add(ctx, ingredient.AddParams{
			Name:       item.Name,
			Quantity:   item.Quantity,
			Unit:       item.Unit,
			Category:   category,
			ExpiryDate: expiry,
			Notes:      item.Notes,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("database error: %s", err.Error())})
			return
		}

		addedItems = append(addedItems, gin.H{
			"id":       id,
			"name":     item.Name,
			"quantity": item.Quantity,
			"unit":     item.Unit,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("%d個の食材を追加しました", len(addedItems)),
		"items":   addedItems,
	})
}

// GetIngredients returns current inventory, optionally filtered by
// category or by the expiring-soon window.
func (h *Handler) GetIngredients(c *gin.Context) {
	filter := ingredient.Filter{Category: c.Query("category")}
	if c.Query("expiry_soon") == "true" {
		days := ingredient.ExpiringSoonDays
		filter.ExpiringWithinDays = &days
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	ingredients, err := h.Store.List(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("database error: %s", err.Error())})
		return
	}

	// Only in-stock rows are returned.
	inStock := []ingredient.Ingredient{}
	for _, ing := range ingredients {
		if ing.Quantity > 0 {
			inStock = append(inStock, ing)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "ingredients": inStock})
}

// UseIngredient decrements an ingredient's quantity. Quantity defaults
// to 1; the row is removed once it reaches zero.
func (h *Handler) UseIngredient(c *gin.Context) {
	var req struct {
		IngredientID int64    `json:"ingredient_id"`
		Quantity     *float64 `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %s", err.Error())})
		return
	}
	if req.IngredientID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ingredient_id is required"})
		return
	}

	quantity := 1.0
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	ok, err := h.Store.Use(ctx, req.IngredientID, quantity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("database error: %s", err.Error())})
		return
	}

	message := "食材を使用しました"
	if !ok {
		message = "エラーが発生しました"
	}
	c.JSON(http.StatusOK, gin.H{"success": ok, "message": message})
}

// UpdateIngredient applies a partial patch to an ingredient. Only the
// fields present in the request body are changed.
func (h *Handler) UpdateIngredient(c *gin.Context) {
	var req struct {
		IngredientID int64    `json:"ingredient_id"`
		Name         *string  `json:"name"`
		Quantity     *float64 `json:"quantity"`
		Unit         *string  `json:"unit"`
		Category     *string  `json:"category"`
		ExpiryDate   *string  `json:"expiry_date"`
		Notes        *string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %s", err.Error())})
		return
	}
	if req.IngredientID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ingredient_id is required"})
		return
	}

	params := ingredient.UpdateParams{
		Name:     req.Name,
		Quantity: req.Quantity,
		Unit:     req.Unit,
		Category: req.Category,
		Notes:    req.Notes,
	}
	if req.ExpiryDate != nil {
		d, err := time.Parse("2006-01-02", *req.ExpiryDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid expiry_date %q: %s", *req.ExpiryDate, err.Error())})
			return
		}
		params.ExpiryDate = &d
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	ok, err := h.Store.Update(ctx, req.IngredientID, params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("database error: %s", err.Error())})
		return
	}

	message := "食材を更新しました"
	if !ok {
		message = "エラーが発生しました"
	}
	c.JSON(http.StatusOK, gin.H{"success": ok, "message": message})
}

// DeleteIngredient removes an ingredient outright.
func (h *Handler) DeleteIngredient(c *gin.Context) {
	var req struct {
		IngredientID int64 `json:"ingredient_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %s", err.Error())})
		return
	}
	if req.IngredientID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ingredient_id is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	ok, err := h.Store.Delete(ctx, req.IngredientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("database error: %s", err.Error())})
		return
	}

	message := "食材を削除しました"
	if !ok {
		message = "食材が見つかりません"
	}
	c.JSON(http.StatusOK, gin.H{"success": ok, "message": message})
}

// SuggestRecipe sends the posted ingredient list to Gemini and stores
// the suggestion in the recipe history.
func (h *Handler) SuggestRecipe(c *gin.Context) {
	h.suggest(c, h.Gemini)
}

// SuggestRecipeLocal is the offline fallback against the local LLM.
func (h *Handler) SuggestRecipeLocal(c *gin.Context) {
	h.suggest(c, h.LocalLLM)
}

func (h *Handler) suggest(c *gin.Context, backend Suggester) {
	if err := h.Quota.Record(); err != nil {
		log.Warn().Err(err).Msg("failed to record API usage")
	}

	if backend == nil {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"error":   "Gemini API が設定されていません。config.json に gemini_api_key を設定してください。",
			"recipe":  missingKeyRecipe,
		})
		return
	}

	var req struct {
		Ingredients []ingredientPayload `json:"ingredients"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %s", err.Error())})
		return
	}
	if len(req.Ingredients) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no ingredients provided"})
		return
	}

	ingredientText := formatIngredientText(req.Ingredients)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 45*time.Second)
	defer cancel()

	recipeText, err := backend.SuggestRecipes(ctx, ingredientText)
	if err != nil {
		log.Error().Err(err).Msg("recipe suggestion failed")
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"error":   err.Error(),
			"recipe":  suggestFailedMessage,
		})
		return
	}

	// A failed history write must not lose the suggestion.
	if _, err := h.Store.AddRecipeHistory(ctx, "提案レシピ", ingredientText, recipeText); err != nil {
		log.Warn().Err(err).Msg("failed to save recipe history")
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "recipe": recipeText})
}

// GetStatistics returns aggregate inventory counts.
func (h *Handler) GetStatistics(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	stats, err := h.Store.Statistics(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("database error: %s", err.Error())})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetExpiringSoon returns ingredients whose expiry date falls within the
// requested day window (default 3).
func (h *Handler) GetExpiringSoon(c *gin.Context) {
	days := ingredient.ExpiringSoonDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid days %q", raw)})
			return
		}
		days = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	ingredients, err := h.Store.List(ctx, ingredient.Filter{ExpiringWithinDays: &days})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("database error: %s", err.Error())})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredients": ingredients})
}

// GetQuota reports the locally counted free-tier budget.
func (h *Handler) GetQuota(c *gin.Context) {
	if h.Gemini == nil {
		c.JSON(http.StatusOK, gin.H{
			"daily_remaining":   0,
			"monthly_remaining": 0,
			"message":           "Gemini API が設定されていません",
		})
		return
	}
	c.JSON(http.StatusOK, h.Quota.Remaining())
}

// GetRecipeHistory returns past suggestions, newest first.
func (h *Handler) GetRecipeHistory(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid limit %q", raw)})
			return
		}
		limit = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	recipes, err := h.Store.RecipeHistory(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("database error: %s", err.Error())})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "recipes": recipes})
}

// LikeRecipe flips the liked flag on a past suggestion.
func (h *Handler) LikeRecipe(c *gin.Context) {
	var req struct {
		RecipeID int64 `json:"recipe_id"`
		Liked    *bool `json:"liked"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %s", err.Error())})
		return
	}
	if req.RecipeID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "recipe_id is required"})
		return
	}

	liked := true
	if req.Liked != nil {
		liked = *req.Liked
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	ok, err := h.Store.SetRecipeLiked(ctx, req.RecipeID, liked)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("database error: %s", err.Error())})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "レシピが見つかりません"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetUsageHistory returns the most recent usage events, newest first.
func (h *Handler) GetUsageHistory(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid limit %q", raw)})
			return
		}
		limit = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	events, err := h.Store.UsageHistory(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("database error: %s", err.Error())})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "events": events})
}

// formatIngredientText renders the posted ingredient list as the
// "name quantityunit" text fed to the suggestion prompt.
func formatIngredientText(items []ingredientPayload) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		quantity := strconv.FormatFloat(item.Quantity, 'f', -1, 64)
		parts = append(parts, fmt.Sprintf("%s %s%s", item.Name, quantity, item.Unit))
	}
	return strings.Join(parts, ", ")
}
