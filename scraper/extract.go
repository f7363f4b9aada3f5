package scraper

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/ysmood/gson"

	"github.com/zestifyre/Zestifyre/alert"
	"github.com/zestifyre/Zestifyre/models"
)

// Extract renders the listing and returns its structured menu.
//
// Zero items is NOT an error: the heuristic cascade may legitimately come
// up empty (some listings refuse to render menu content), and the caller
// gets a menu with an empty Items slice. Only transport-class failures
// (navigation, timeout, browser crash) surface as errors, and only after
// the retry budget is spent. Backoff is exponential starting at RetryBase.
func (s *Scraper) Extract(ctx context.Context, listingURL string) (*models.RestaurantMenu, error) {
	extract := s.extractFn
	if extract == nil {
		extract = s.extractOnce
	}

	var lastErr error
	for attempt := 0; attempt <= s.extractCfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(s.extractCfg.RetryBase, attempt-1)
			slog.Info("retrying extraction",
				"url", listingURL,
				"attempt", attempt+1,
				"backoff", delay,
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, categorizeError(ctx.Err(), "extraction canceled during backoff")
			}
		}

		start := time.Now()
		menu, err := extract(ctx, listingURL)
		elapsed := time.Since(start)

		if err == nil {
			s.sink.Record(alert.NewEvent(alert.KindScrape, listingURL, "browser",
				elapsed, len(menu.Items), len(menu.Items) > 0, ""))
			return menu, nil
		}

		s.sink.Record(alert.NewEvent(alert.KindError, listingURL, "browser",
			elapsed, 0, false, err.Error()))

		if !models.IsTransport(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, models.NewPipelineError(
		models.ErrCodeExtractTransport,
		"extraction failed after retries",
		lastErr,
	)
}

// backoffDelay returns base doubled retry times: base, 2*base, 4*base, ...
func backoffDelay(base time.Duration, retry int) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	return base << retry
}

// extractOnce is one pass of the per-attempt state machine:
//
//	Load → WaitForDynamicContent → LocateMenuSection → ExtractItems(sectioned)
//	  → ExtractItems(page-wide, price-anchored) → ScrollAndRetryExtraction
//
// Each fallback stage only runs when the previous one produced nothing.
func (s *Scraper) extractOnce(ctx context.Context, listingURL string) (*models.RestaurantMenu, error) {
	ctx, cancel := context.WithTimeout(ctx, s.extractCfg.NavigationTimeout+s.extractCfg.SelectorTimeout)
	defer cancel()

	var menu *models.RestaurantMenu
	err := s.withPage(ctx, func(p *rod.Page) error {
		if err := p.Navigate(listingURL); err != nil {
			return categorizeError(err, "navigation to listing failed")
		}
		if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
			slog.Debug("WaitDOMStable did not converge, proceeding with current DOM", "error", err)
		}
		humanPause()

		pageHTML, err := p.HTML()
		if err != nil {
			return categorizeError(err, "failed to read page HTML")
		}

		items, method := menuItemsFromHTML(pageHTML)

		if len(items) == 0 {
			// Lazily rendered listings need scrolling to mount the menu.
			s.scrollThrough(p)
			if pageHTML, err = p.HTML(); err != nil {
				return categorizeError(err, "failed to read page HTML after scroll")
			}
			items, method = menuItemsFromHTML(pageHTML)
			if len(items) > 0 {
				method += "+scroll"
			}
		}

		name := restaurantNameFromHTML(pageHTML)
		menu = models.NewRestaurantMenu(name, listingURL, items)

		if len(items) == 0 {
			slog.Info("extraction found no items", "url", listingURL)
		} else {
			slog.Info("menu extracted",
				"url", listingURL,
				"items", len(items),
				"method", method,
			)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return menu, nil
}

// menuItemsFromHTML runs the selector cascade over a rendered HTML
// snapshot: section-scoped first, page-wide price-anchored second. Pure
// with respect to the browser, so it is unit-testable against fixtures.
func menuItemsFromHTML(pageHTML string) ([]models.MenuItem, string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil, ""
	}

	if section, strategy := locateMenuSection(doc); section != nil {
		if items := extractItems(itemNodes(section), 0); len(items) > 0 {
			return items, "section:" + strategy
		}
	}

	if items := extractItems(priceAnchoredNodes(doc), 0); len(items) > 0 {
		return items, "price-anchored"
	}

	return nil, ""
}

// restaurantNameFromHTML takes the page h1, falling back to the title with
// the usual " - Order Online"-style suffixes stripped.
func restaurantNameFromHTML(pageHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return ""
	}
	if h1 := firstLineOf(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	title := firstLineOf(doc.Find("title").First().Text())
	for _, sep := range []string{" | ", " - ", " – "} {
		if idx := strings.Index(title, sep); idx > 0 {
			title = title[:idx]
		}
	}
	return strings.TrimSpace(title)
}

// scrollThrough pages down a few viewports with jittered pauses so lazily
// loaded sections get a chance to mount.
func (s *Scraper) scrollThrough(p *rod.Page) {
	res, err := p.Eval(`() => ({inner: window.innerHeight, total: document.body.scrollHeight})`)
	if err != nil {
		slog.Debug("failed to read page dimensions, skipping scroll", "error", err)
		return
	}
	dims := gson.New(res.Value.Val())
	viewportHeight := dims.Get("inner").Num()
	totalHeight := dims.Get("total").Num()
	if viewportHeight <= 0 {
		return
	}

	passes := s.extractCfg.ScrollPasses
	if passes <= 0 {
		passes = 4
	}
	if needed := int(totalHeight/viewportHeight) + 1; needed < passes {
		passes = needed
	}
	for i := 0; i < passes; i++ {
		if err := p.Mouse.Scroll(0, viewportHeight, 0); err != nil {
			slog.Debug("scroll step failed", "step", i, "error", err)
			return
		}
		scrollPause()
	}
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("post-scroll WaitDOMStable did not converge", "error", err)
	}
}

// categorizeError wraps raw errors into typed PipelineErrors so callers
// can distinguish transport-class failures from everything else.
func categorizeError(err error, msg string) *models.PipelineError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewPipelineError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewPipelineError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewPipelineError(models.ErrCodeNavigation, msg, err)
	}
}
