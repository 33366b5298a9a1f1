package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the full environment configuration. Load fails fast on
// missing required values so a misconfigured process never serves
// requests.
type Config struct {
	Port          string
	AllowedOrigin string

	ShopifyStoreURL    string
	ShopifyAccessToken string
	HTTPTimeout        time.Duration

	GCSProjectID       string
	GCSBucket          string
	GCSCredentialsFile string

	// RemoteFanout enables per-customer metafield delivery on broadcast
	// sends in addition to the local feed.
	RemoteFanout bool
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		AllowedOrigin:      getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:5500"),
		ShopifyStoreURL:    os.Getenv("SHOPIFY_STORE_URL"),
		ShopifyAccessToken: os.Getenv("SHOPIFY_ACCESS_TOKEN"),
		GCSProjectID:       os.Getenv("GCS_PROJECT_ID"),
		GCSBucket:          os.Getenv("GCS_BUCKET"),
		GCSCredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		RemoteFanout:       os.Getenv("NOTIFY_REMOTE_FANOUT") == "true",
	}

	if cfg.ShopifyStoreURL == "" {
		return nil, fmt.Errorf("SHOPIFY_STORE_URL is not set")
	}
	if cfg.ShopifyAccessToken == "" {
		return nil, fmt.Errorf("SHOPIFY_ACCESS_TOKEN is not set")
	}

	timeoutSeconds := 30
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid HTTP_TIMEOUT_SECONDS: %q", v)
		}
		timeoutSeconds = n
	}
	cfg.HTTPTimeout = time.Duration(timeoutSeconds) * time.Second

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
