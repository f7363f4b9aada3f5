package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Browser  BrowserConfig
	Extract  ExtractConfig
	Resolver ResolverConfig
	Alert    AlertConfig
	Log      LogConfig
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages is the page pool capacity (max concurrent tabs).
	MaxPages int // default: 4

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// ViewportWidth and ViewportHeight fix the page viewport so the
	// fingerprint looks like an ordinary desktop session.
	ViewportWidth  int // default: 1440
	ViewportHeight int // default: 900
}

// ExtractConfig controls menu extraction behavior.
type ExtractConfig struct {
	// NavigationTimeout bounds page.Navigate for one listing.
	NavigationTimeout time.Duration // default: 25s

	// SelectorTimeout bounds each wait for dynamic menu content.
	SelectorTimeout time.Duration // default: 8s

	// MaxRetries is the retry count for transport-class failures.
	MaxRetries int // default: 3

	// RetryBase is the first backoff delay; subsequent delays double.
	RetryBase time.Duration // default: 1s

	// ScrollPasses is how many viewport scrolls the retry extraction does
	// to trigger lazily loaded menu sections.
	ScrollPasses int // default: 4

	// BlockedResourceTypes lists resource types never downloaded during a
	// scrape. Image stays blocked: src attributes survive in the DOM.
	// default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string
}

// ResolverConfig controls the search provider chain.
type ResolverConfig struct {
	// MarketplaceHost is the delivery platform host listings live on.
	MarketplaceHost string // default: "www.ubereats.com"

	// SerpAPIKey authenticates the paid organic-search API. Empty means
	// the provider reports itself unconfigured and is skipped.
	SerpAPIKey string

	// SerpEndpoint is the organic-search API base URL.
	SerpEndpoint string // default: "https://serpapi.com/search.json"

	// SerpRatePerSecond paces paid API calls across one process.
	SerpRatePerSecond float64 // default: 1

	// HTMLSearchEndpoint is the lightweight HTML search endpoint.
	HTMLSearchEndpoint string // default: "https://html.duckduckgo.com/html/"

	// SearchTimeout bounds each provider's outbound call.
	SearchTimeout time.Duration // default: 12s

	// MaxCandidates caps validated candidates returned per resolution.
	MaxCandidates int // default: 3

	// Region is the two-letter locale segment used when constructing
	// direct listing URL guesses.
	Region string // default: "ca"
}

// AlertConfig controls the observability sink.
type AlertConfig struct {
	// WebhookURL is the alerting-channel endpoint. Empty disables webhook
	// delivery; attempts are then logged locally only.
	WebhookURL string

	// WebhookSecret signs webhook payloads with HMAC-SHA256 when set.
	WebhookSecret string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless:       envBoolOr("ZESTIFYRE_HEADLESS", true),
			MaxPages:       envIntOr("ZESTIFYRE_MAX_PAGES", 4),
			NoSandbox:      envBoolOr("ZESTIFYRE_NO_SANDBOX", false),
			BrowserBin:     os.Getenv("ZESTIFYRE_BROWSER_BIN"),
			ViewportWidth:  envIntOr("ZESTIFYRE_VIEWPORT_W", 1440),
			ViewportHeight: envIntOr("ZESTIFYRE_VIEWPORT_H", 900),
		},
		Extract: ExtractConfig{
			NavigationTimeout: envDurationOr("ZESTIFYRE_NAV_TIMEOUT", 25*time.Second),
			SelectorTimeout:   envDurationOr("ZESTIFYRE_SELECTOR_TIMEOUT", 8*time.Second),
			MaxRetries:        envIntOr("ZESTIFYRE_MAX_RETRIES", 3),
			RetryBase:         envDurationOr("ZESTIFYRE_RETRY_BASE", time.Second),
			ScrollPasses:      envIntOr("ZESTIFYRE_SCROLL_PASSES", 4),
			BlockedResourceTypes: envSliceOr("ZESTIFYRE_BLOCKED_RESOURCES", []string{
				"Image", "Stylesheet", "Font", "Media",
			}),
		},
		Resolver: ResolverConfig{
			MarketplaceHost:    envOr("ZESTIFYRE_MARKETPLACE_HOST", "www.ubereats.com"),
			SerpAPIKey:         os.Getenv("ZESTIFYRE_SERPAPI_KEY"),
			SerpEndpoint:       envOr("ZESTIFYRE_SERP_ENDPOINT", "https://serpapi.com/search.json"),
			SerpRatePerSecond:  envFloatOr("ZESTIFYRE_SERP_RPS", 1.0),
			HTMLSearchEndpoint: envOr("ZESTIFYRE_HTML_SEARCH_ENDPOINT", "https://html.duckduckgo.com/html/"),
			SearchTimeout:      envDurationOr("ZESTIFYRE_SEARCH_TIMEOUT", 12*time.Second),
			MaxCandidates:      envIntOr("ZESTIFYRE_MAX_CANDIDATES", 3),
			Region:             envOr("ZESTIFYRE_REGION", "ca"),
		},
		Alert: AlertConfig{
			WebhookURL:    os.Getenv("ZESTIFYRE_ALERT_WEBHOOK_URL"),
			WebhookSecret: os.Getenv("ZESTIFYRE_ALERT_WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:  envOr("ZESTIFYRE_LOG_LEVEL", "info"),
			Format: envOr("ZESTIFYRE_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
