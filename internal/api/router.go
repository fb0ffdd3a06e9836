package api

import "github.com/gin-gonic/gin"

// RegisterRoutes wires every API route onto the router.
func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.POST("/api/parse-ingredients", h.ParseIngredients)
	r.POST("/api/add-ingredients", h.AddIngredients)
	r.GET("/api/get-ingredients", h.GetIngredients)
	r.POST("/api/use-ingredient", h.UseIngredient)
	r.POST("/api/update-ingredient", h.UpdateIngredient)
	r.POST("/api/delete-ingredient", h.DeleteIngredient)
	r.POST("/api/suggest-recipe", h.SuggestRecipe)
	r.POST("/api/suggest-recipe-local", h.SuggestRecipeLocal)
	r.GET("/api/get-statistics", h.GetStatistics)
	r.GET("/api/get-expiring-soon", h.GetExpiringSoon)
	r.GET("/api/get-quota", h.GetQuota)
	r.GET("/api/recipe-history", h.GetRecipeHistory)
	r.POST("/api/like-recipe", h.LikeRecipe)
	r.GET("/api/usage-history", h.GetUsageHistory)
}
