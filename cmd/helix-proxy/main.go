package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/streamkit/helix-client/pkg/helix"
	"github.com/streamkit/helix-client/pkg/logging"
	"github.com/streamkit/helix-client/pkg/transport"
)

func main() {
	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: getEnv("LOG_PRETTY", "") != "",
		Output: os.Stderr,
	})

	clientID := os.Getenv("HELIX_CLIENT_ID")
	if clientID == "" {
		logger.Fatal().Msg("HELIX_CLIENT_ID is required")
	}
	clientSecret := os.Getenv("HELIX_CLIENT_SECRET")
	port := getEnv("PORT", "8080")

	cfg := helix.Config{
		ClientID: clientID,
		Token:    os.Getenv("HELIX_TOKEN"),
		BaseURL:  getEnv("HELIX_BASE_URL", transport.DefaultBaseURL),
	}

	// Optional response cache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: redisURL})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			cancel()
			logger.Fatal().Err(err).Str("redis_url", redisURL).Msg("Failed to connect to Redis")
		}
		cancel()
		cfg.Redis = redisClient
		if ttl := os.Getenv("CACHE_TTL_SECONDS"); ttl != "" {
			seconds, err := strconv.Atoi(ttl)
			if err != nil {
				logger.Fatal().Err(err).Msg("Invalid CACHE_TTL_SECONDS")
			}
			cfg.CacheTTL = time.Duration(seconds) * time.Second
		}
		logger.Info().Str("redis_url", redisURL).Msg("Response cache enabled")
	}

	if rps := os.Getenv("REQUESTS_PER_SECOND"); rps != "" {
		n, err := strconv.Atoi(rps)
		if err != nil {
			logger.Fatal().Err(err).Msg("Invalid REQUESTS_PER_SECOND")
		}
		cfg.RequestsPerSecond = n
	}

	client, err := helix.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Helix client")
	}

	if cfg.Token == "" && clientSecret != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if _, err := client.FetchAppToken(ctx, clientSecret); err != nil {
			cancel()
			logger.Fatal().Err(err).Msg("Failed to acquire app access token")
		}
		cancel()
		logger.Info().Msg("Acquired app access token")
	}

	http.HandleFunc("/health", healthHandler)
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/helix/", proxyHandler(client.Dispatcher()))

	addr := ":" + port
	logger.Info().Str("addr", addr).Msg("Starting Helix proxy server")

	if err := http.ListenAndServe(addr, nil); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// proxyHandler forwards /helix/* through the rate-limited dispatcher.
// Example: /helix/streams?first=5 -> GET /streams?first=5
func proxyHandler(d *transport.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/helix")

		var params []transport.Param
		for key, values := range r.URL.Query() {
			for _, value := range values {
				params = append(params, transport.String(key, value))
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
		defer cancel()

		payload, err := d.Do(ctx, transport.NewRoute(r.Method, path, params...))
		if err != nil {
			var apiErr *transport.APIError
			if errors.As(err, &apiErr) {
				writePayload(w, apiErr.Status, apiErr.IsJSON, apiErr.Body)
				return
			}
			http.Error(w, fmt.Sprintf("helix request failed: %v", err), http.StatusBadGateway)
			return
		}

		writePayload(w, payload.Status, payload.IsJSON, payload.Body)
	}
}

func writePayload(w http.ResponseWriter, status int, isJSON bool, body []byte) {
	if isJSON {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(status)
	w.Write(body)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
