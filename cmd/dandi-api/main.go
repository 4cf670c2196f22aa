package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
	"github.com/strahinja/dandi-api/internal/config"
	"github.com/strahinja/dandi-api/internal/database"
	"github.com/strahinja/dandi-api/internal/github"
	"github.com/strahinja/dandi-api/internal/handlers"
	"github.com/strahinja/dandi-api/internal/llm"
	authmw "github.com/strahinja/dandi-api/internal/middleware"
	"github.com/strahinja/dandi-api/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	userService := services.NewUserService(db)
	tokenService := services.NewTokenService(db)
	apiKeyService := services.NewAPIKeyService(db, cfg.DefaultRateLimit)
	validator := services.NewAPIKeyValidator(apiKeyService)
	limiter := services.NewRateLimiter(validator, apiKeyService)
	keyService := services.NewKeyService(apiKeyService, validator, limiter)

	githubClient := github.NewClient()

	summarizer, err := llm.NewGeminiSummarizer(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("Failed to create summarizer: %v", err)
	}
	defer summarizer.Close()

	authHandler := handlers.NewAuthHandler(cfg, userService, tokenService, jwtService)
	userHandler := handlers.NewUserHandler(userService)
	apiKeyHandler := handlers.NewAPIKeyHandler(keyService)
	summarizerHandler := handlers.NewSummarizerHandler(githubClient, summarizer)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "x-api-key"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Get("/:provider/consent", authHandler.GetConsentURL)
	auth.Get("/:provider/callback", authHandler.Callback)
	auth.Post("/exchange", authHandler.ExchangeCode)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)

	// key validation is authorized by possession of the key itself
	api.Post("/api-keys/validate", apiKeyHandler.Validate)
	api.Post("/validate-key", apiKeyHandler.ValidateInfo)

	metered := api.Group("")
	metered.Use(authmw.APIKeyAuth(keyService))
	metered.Post("/github-summarizer", summarizerHandler.Summarize)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Post("/auth/logout-all", authHandler.LogoutAll)

	protected.Get("/users/me", userHandler.GetMe)
	protected.Patch("/users/me", userHandler.UpdateMe)

	protected.Get("/api-keys", apiKeyHandler.List)
	protected.Post("/api-keys", apiKeyHandler.Create)
	protected.Get("/api-keys/:id", apiKeyHandler.Get)
	protected.Put("/api-keys/:id", apiKeyHandler.Update)
	protected.Delete("/api-keys/:id", apiKeyHandler.Delete)
	protected.Post("/api-keys/:id/usage", apiKeyHandler.IncrementUsage)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		for range ticker.C {
			_ = tokenService.CleanupExpired(context.Background())
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("Server starting on %s", addr)
		if err := app.Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}
