package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/zestifyre/Zestifyre/alert"
	"github.com/zestifyre/Zestifyre/config"
	"github.com/zestifyre/Zestifyre/models"
	"github.com/zestifyre/Zestifyre/pipeline"
	"github.com/zestifyre/Zestifyre/resolver"
	"github.com/zestifyre/Zestifyre/scraper"
)

func main() {
	fallbackFlag := flag.Bool("fallback", false, "emit a synthetic sample menu when no real menu can be extracted")
	maxItems := flag.Int("max-items", 0, "truncate the menu to at most this many items (0 = unlimited)")
	categories := flag.String("categories", "", "comma-separated category filter (appetizer,main,dessert,drink,side,other)")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: zestifyre [flags] <restaurant name>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	restaurantName := strings.Join(flag.Args(), " ")

	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("zestifyre starting",
		"restaurant", restaurantName,
		"marketplace", cfg.Resolver.MarketplaceHost,
		"maxPages", cfg.Browser.MaxPages,
	)

	// ── 3. Observability sink ───────────────────────────────────────
	var sink alert.Sink = alert.NewLogSink()
	if cfg.Alert.WebhookURL != "" {
		sink = alert.MultiSink{sink, alert.NewWebhookSink(cfg.Alert.WebhookURL, cfg.Alert.WebhookSecret)}
	}

	// ── 4. Initialise scraper (launches browser) ────────────────────
	sc, err := scraper.NewScraper(cfg.Browser, cfg.Extract, sink)
	if err != nil {
		slog.Error("failed to initialise scraper", "error", err)
		os.Exit(1)
	}
	defer sc.Close()

	// ── 5. Search providers in priority order ───────────────────────
	// The rendered-search provider borrows the scraper's browser via a
	// closure so resolver/ never imports scraper/.
	providers := []resolver.Provider{
		resolver.NewSerpProvider(cfg.Resolver.SerpAPIKey, cfg.Resolver.SerpEndpoint,
			cfg.Resolver.MarketplaceHost, cfg.Resolver.SerpRatePerSecond),
		resolver.NewRenderedSearchProvider(cfg.Resolver.MarketplaceHost, sc.FetchHTML),
		resolver.NewHTMLSearchProvider(cfg.Resolver.HTMLSearchEndpoint, cfg.Resolver.MarketplaceHost),
		resolver.NewDirectProvider(cfg.Resolver.MarketplaceHost, cfg.Resolver.Region),
	}
	res := resolver.New(providers, sink, cfg.Resolver.SearchTimeout, cfg.Resolver.MaxCandidates)

	// ── 6. Compose the pipeline ─────────────────────────────────────
	svc := pipeline.New(res, sc, nil)

	// ── 7. Run with cancellation on signal ──────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := &pipeline.Options{
		MaxItems:    *maxItems,
		UseFallback: *fallbackFlag,
	}
	if *categories != "" {
		opts.Categories, err = parseCategories(*categories)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}

	menu, err := svc.ResolveAndExtract(ctx, restaurantName, opts)
	if err != nil {
		slog.Error("pipeline failed", "restaurant", restaurantName, "error", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(menu, "", "  ")
	if err != nil {
		slog.Error("failed to encode menu", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

// parseCategories splits a comma list and validates each entry.
func parseCategories(raw string) ([]models.Category, error) {
	var out []models.Category
	for _, part := range strings.Split(raw, ",") {
		c := models.Category(strings.ToLower(strings.TrimSpace(part)))
		if c == "" {
			continue
		}
		if !c.Valid() {
			return nil, fmt.Errorf("unknown category %q", part)
		}
		out = append(out, c)
	}
	return out, nil
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
