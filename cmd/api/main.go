package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"oshaberi/internal/api"
	"oshaberi/internal/ingredient"
	"oshaberi/internal/platform/gemini"
	"oshaberi/internal/platform/localllm"
)

// Config represents the application configuration.
type Config struct {
	GeminiAPIKey string `json:"gemini_api_key"`
	DatabaseURL  string `json:"DATABASE_URL"`
	Port         string `json:"port"`
	UsageFile    string `json:"usage_file"`
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx := context.Background()

	// Read configuration from config.json
	configData, err := os.ReadFile("config.json")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read config.json")
	}

	var config Config
	if err := json.Unmarshal(configData, &config); err != nil {
		log.Fatal().Err(err).Msg("failed to unmarshal config.json")
	}
	if config.Port == "" {
		config.Port = "5001"
	}
	if config.UsageFile == "" {
		config.UsageFile = "api_usage.json"
	}

	// Gemini stays optional: without a key the suggest endpoint answers
	// with setup instructions instead of recipes.
	var geminiClient api.Suggester
	if config.GeminiAPIKey != "" {
		client, err := gemini.NewClient(ctx, config.GeminiAPIKey)
		if err != nil {
			log.Fatal().Err(err).Msg("error creating gemini client")
		}
		geminiClient = client
	} else {
		log.Warn().Msg("no gemini_api_key configured, recipe suggestion disabled")
	}

	localLLMClient := localllm.NewClient()

	dbStore, err := ingredient.NewPostgresStore(config.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating postgres store")
	}

	extractor := ingredient.NewExtractor(ingredient.NewDefaultClassifier())
	quota := gemini.NewUsageTracker(config.UsageFile)

	handler := api.NewHandler(geminiClient, localLLMClient, dbStore, extractor, quota)

	r := gin.New()
	r.Use(api.RequestLogger(), gin.Recovery())

	// Configure CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:8081"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.RegisterRoutes(r, handler)

	log.Info().Str("port", config.Port).Bool("gemini", geminiClient != nil).Msg("starting oshaberi reizoko")
	if err := r.Run(fmt.Sprintf(":%s", config.Port)); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
