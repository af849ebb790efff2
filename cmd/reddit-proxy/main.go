// Command reddit-proxy exposes Reddit user profiles over a small HTTP API.
// It fronts the Reddit client with rate limiting, retries, and optional
// Redis-backed token sharing, so internal consumers never talk to Reddit
// directly.
package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/mkarlsen/reddit-user-client/pkg/auth"
	"github.com/mkarlsen/reddit-user-client/pkg/client"
	"github.com/mkarlsen/reddit-user-client/pkg/logging"
	"github.com/mkarlsen/reddit-user-client/pkg/users"
)

// proxyConfig is read from the environment; a .env file is honored via
// godotenv autoload.
type proxyConfig struct {
	Port      string `validate:"required"`
	UserAgent string `validate:"required"`
	LogLevel  string `validate:"oneof=debug info warn error"`
	LogPretty bool

	// Reddit application credentials. Leave empty for unauthenticated
	// access to the public JSON endpoints.
	ClientID     string
	ClientSecret string
	Username     string
	Password     string

	// RedisURL enables token sharing across proxy instances.
	RedisURL string

	// MaxItems caps how many items a single API call may collect.
	MaxItems int `validate:"min=1,max=10000"`
}

func loadConfig() proxyConfig {
	maxItems, err := strconv.Atoi(getEnv("MAX_ITEMS", "100"))
	if err != nil {
		log.Fatalf("Invalid MAX_ITEMS: %v", err)
	}

	return proxyConfig{
		Port:         getEnv("PORT", "8080"),
		UserAgent:    getEnv("USER_AGENT", "reddit-user-client/0.1.0"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogPretty:    getEnv("LOG_PRETTY", "") == "true",
		ClientID:     getEnv("REDDIT_CLIENT_ID", ""),
		ClientSecret: getEnv("REDDIT_CLIENT_SECRET", ""),
		Username:     getEnv("REDDIT_USERNAME", ""),
		Password:     getEnv("REDDIT_PASSWORD", ""),
		RedisURL:     getEnv("REDIS_URL", ""),
		MaxItems:     maxItems,
	}
}

func main() {
	cfg := loadConfig()
	if err := validator.New().Struct(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})
	logger := logging.NewLogger("reddit-proxy")

	ctx := context.Background()

	// Redis is optional; without it tokens live in process memory.
	var redisClient *redis.Client
	var store auth.Store = auth.NewMemoryStore()
	if cfg.RedisURL != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.RedisURL).Msg("Failed to connect to Redis")
		}
		store = auth.NewRedisStore(redisClient, "")
		logger.Info().Str("addr", cfg.RedisURL).Msg("Connected to Redis")
	}

	var tokenSource auth.TokenSource
	if cfg.ClientID != "" {
		authenticator, err := auth.NewAuthenticator(auth.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Username:     cfg.Username,
			Password:     cfg.Password,
			UserAgent:    cfg.UserAgent,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to create authenticator")
		}
		tokenSource = auth.NewCachedSource(authenticator, store)
		logger.Info().Str("grant", authenticator.GrantType()).Msg("Authenticated mode")
	} else {
		logger.Info().Msg("Unauthenticated mode, using public JSON endpoints")
	}

	clientCfg := client.DefaultConfig(cfg.UserAgent)
	clientCfg.Auth = tokenSource

	api, err := client.New(clientCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Reddit client")
	}

	srv := newServer(users.NewService(api), redisClient, cfg.MaxItems)
	e := newEcho(srv)

	logger.Info().
		Str("port", cfg.Port).
		Str("user_agent", cfg.UserAgent).
		Int("max_items", cfg.MaxItems).
		Msg("Starting reddit proxy")

	if err := e.Start(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

// newEcho assembles the router and middleware stack around the server.
func newEcho(srv *server) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	srv.register(e)
	return e
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
