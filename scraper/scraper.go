// Package scraper renders marketplace listing pages in a headless browser
// and extracts structured menus from them. It owns the browser session: a
// page is acquired at the start of a call and released on every exit path.
package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/zestifyre/Zestifyre/alert"
	"github.com/zestifyre/Zestifyre/config"
	"github.com/zestifyre/Zestifyre/models"
)

// Scraper manages the global browser lifecycle and the page pool.
// It is safe for concurrent use.
type Scraper struct {
	browser    *rod.Browser
	pagePool   rod.Pool[rod.Page]
	browserCfg config.BrowserConfig
	extractCfg config.ExtractConfig
	sink       alert.Sink

	// extractFn is the per-attempt extraction; tests stub it to exercise
	// the retry loop without a browser. Nil means extractOnce.
	extractFn func(ctx context.Context, listingURL string) (*models.RestaurantMenu, error)
}

// NewScraper launches a headless browser and initialises the reusable page
// pool. The launcher carries the usual anti-automation flag set so the
// process presents like an ordinary desktop Chrome.
func NewScraper(browserCfg config.BrowserConfig, extractCfg config.ExtractConfig, sink alert.Sink) (*Scraper, error) {
	l := launcher.New().
		Headless(browserCfg.Headless).
		NoSandbox(browserCfg.NoSandbox)

	if browserCfg.BrowserBin != "" {
		l = l.Bin(browserCfg.BrowserBin)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-ipc-flooding-protection"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewPipelineError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewPipelineError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}

	pool := rod.NewPagePool(browserCfg.MaxPages)
	slog.Info("page pool created", "maxPages", browserCfg.MaxPages)

	if sink == nil {
		sink = alert.NewLogSink()
	}

	return &Scraper{
		browser:    browser,
		pagePool:   pool,
		browserCfg: browserCfg,
		extractCfg: extractCfg,
		sink:       sink,
	}, nil
}

// withPage acquires a page from the pool, applies the stealth posture and
// resource blocking, binds ctx, and runs fn. Cleanup is guaranteed on
// every exit path: the page returns to about:blank (using the original
// page reference, so cleanup works even after ctx expires) and goes back
// to the pool.
func (s *Scraper) withPage(ctx context.Context, fn func(p *rod.Page) error) error {
	page, acquireErr := s.pagePool.Get(func() (*rod.Page, error) {
		return s.browser.Page(proto.TargetCreateTarget{})
	})
	if acquireErr != nil {
		return models.NewPipelineError(
			models.ErrCodeBrowserCrash,
			"failed to acquire page from pool",
			acquireErr,
		)
	}

	defer func() {
		if navErr := page.Navigate("about:blank"); navErr != nil {
			slog.Warn("cleanup: failed to navigate to about:blank", "error", navErr)
		}
		s.pagePool.Put(page)
	}()

	// Stealth JS must be installed before any navigation happens.
	if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
	}

	// Fix the viewport so the fingerprint matches a desktop session.
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             s.browserCfg.ViewportWidth,
		Height:            s.browserCfg.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		slog.Warn("viewport override failed", "error", err)
	}

	router := setupHijack(page, s.extractCfg.BlockedResourceTypes)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	return fn(page.Context(ctx))
}

// FetchHTML renders a URL and returns the page HTML after the DOM settles.
// It backs the rendered-search resolver callback.
func (s *Scraper) FetchHTML(ctx context.Context, pageURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.extractCfg.NavigationTimeout)
	defer cancel()

	var html string
	err := s.withPage(ctx, func(p *rod.Page) error {
		if err := p.Navigate(pageURL); err != nil {
			return categorizeError(err, "navigation failed")
		}
		if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
			slog.Debug("WaitDOMStable did not converge, proceeding with current DOM", "error", err)
		}
		humanPause()
		out, err := p.HTML()
		if err != nil {
			return categorizeError(err, "failed to extract page HTML")
		}
		html = out
		return nil
	})
	return html, err
}

// Close drains the page pool and kills the browser process.
// Call this on graceful shutdown to prevent zombie Chrome processes.
func (s *Scraper) Close() {
	slog.Info("scraper shutting down: draining page pool")
	s.pagePool.Cleanup(func(p *rod.Page) {
		_ = p.Close()
	})
	slog.Info("scraper shutting down: closing browser")
	s.browser.MustClose()
	slog.Info("scraper shutdown complete")
}
