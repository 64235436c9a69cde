package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/Flash5127/DU81-Proxy/pkg/cache"
	"github.com/Flash5127/DU81-Proxy/pkg/gamepass"
	"github.com/Flash5127/DU81-Proxy/pkg/logging"
	"github.com/Flash5127/DU81-Proxy/pkg/proxy"
	"github.com/Flash5127/DU81-Proxy/pkg/upstream"
)

func main() {
	logger := logging.Setup(logging.Config{
		Level:  getEnv("LOG_LEVEL", "info"),
		Pretty: getEnvBool("LOG_PRETTY", false),
		Output: os.Stderr,
	})

	// Configuration from environment
	port := getEnv("PORT", "8080")
	cacheTTL := time.Duration(getEnvInt("CACHE_TTL_MS", 60000)) * time.Millisecond

	transport := upstream.New(upstream.Config{
		UserAgent:      getEnv("USER_AGENT", ""),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_MS", 10000)) * time.Millisecond,
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		RetryBaseDelay: time.Duration(getEnvInt("RETRY_BASE_DELAY_MS", 400)) * time.Millisecond,
	})

	pager := gamepass.NewPager(transport, gamepass.PagerConfig{
		GamePassesBaseURL: getEnv("GAMEPASSES_BASE_URL", ""),
		InventoryBaseURL:  getEnv("INVENTORY_BASE_URL", ""),
		PageLimit:         getEnvInt("MAX_PAGE_LIMIT", 100),
	})

	// Memory cache by default; shared Redis cache when REDIS_URL is set.
	var store cache.Store = cache.NewMemory(cacheTTL)
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: redisURL})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal().Err(err).Str("addr", redisURL).Msg("Failed to connect to Redis")
		}
		store = cache.NewRedis(redisClient, cacheTTL)
		logger.Info().Str("addr", redisURL).Msg("Using Redis result cache")
	}

	service := proxy.NewService(pager, store)
	handler := proxy.NewHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/users/{userID}/gamepasses", handler.GetGamepasses)
	mux.HandleFunc("GET /gamepasses", handler.GetGamepasses)
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/metrics", promhttp.Handler())

	addr := ":" + port
	logger.Info().
		Str("addr", addr).
		Dur("cache_ttl", cacheTTL).
		Msg("Starting gamepass proxy")

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
