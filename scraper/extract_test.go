package scraper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zestifyre/Zestifyre/alert"
	"github.com/zestifyre/Zestifyre/config"
	"github.com/zestifyre/Zestifyre/models"
)

type recordingSink struct {
	mu     sync.Mutex
	events []alert.Event
}

func (r *recordingSink) Record(e alert.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingSink) all() []alert.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]alert.Event(nil), r.events...)
}

func testScraper(sink alert.Sink, fn func(ctx context.Context, url string) (*models.RestaurantMenu, error)) *Scraper {
	return &Scraper{
		extractCfg: config.ExtractConfig{
			MaxRetries: 3,
			RetryBase:  5 * time.Millisecond,
		},
		sink:      sink,
		extractFn: fn,
	}
}

func TestBackoffDelay(t *testing.T) {
	base := time.Second
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	for retry, w := range want {
		if got := backoffDelay(base, retry); got != w {
			t.Errorf("backoffDelay(1s, %d) = %v, want %v", retry, got, w)
		}
	}
	if got := backoffDelay(0, 0); got != time.Second {
		t.Errorf("backoffDelay(0, 0) = %v, want 1s", got)
	}
}

func TestExtract_TransportErrorsRetriedThenSucceed(t *testing.T) {
	sink := &recordingSink{}
	calls := 0
	menu := models.NewRestaurantMenu("Test Bistro", "https://example.com/store/x", []models.MenuItem{
		{ID: 1, Name: "Pad Thai", Price: 13.50, Category: models.CategoryMain},
	})
	s := testScraper(sink, func(ctx context.Context, url string) (*models.RestaurantMenu, error) {
		calls++
		if calls < 3 {
			return nil, models.NewPipelineError(models.ErrCodeNavigation, "net::ERR_CONNECTION_RESET", nil)
		}
		return menu, nil
	})

	start := time.Now()
	got, err := s.Extract(context.Background(), "https://example.com/store/x")
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("attempts = %d, want 3", calls)
	}
	if got.RestaurantName != "Test Bistro" {
		t.Errorf("RestaurantName = %q", got.RestaurantName)
	}
	// Two backoff sleeps at base and 2*base.
	if min := 3 * s.extractCfg.RetryBase; elapsed < min {
		t.Errorf("elapsed = %v, want at least %v of backoff", elapsed, min)
	}

	events := sink.all()
	if len(events) != 3 {
		t.Fatalf("sink events = %d, want 3", len(events))
	}
	if events[0].Kind != alert.KindError || events[1].Kind != alert.KindError {
		t.Errorf("first two events should be errors, got %q %q", events[0].Kind, events[1].Kind)
	}
	last := events[2]
	if last.Kind != alert.KindScrape || !last.Success || last.ResultCount != 1 {
		t.Errorf("final event = %+v, want successful scrape with 1 item", last)
	}
}

func TestExtract_RetryBudgetExhausted(t *testing.T) {
	sink := &recordingSink{}
	calls := 0
	s := testScraper(sink, func(ctx context.Context, url string) (*models.RestaurantMenu, error) {
		calls++
		return nil, models.NewPipelineError(models.ErrCodeTimeout, "page load timed out", context.DeadlineExceeded)
	})

	_, err := s.Extract(context.Background(), "https://example.com/store/x")
	if err == nil {
		t.Fatal("expected error after budget exhaustion")
	}
	if calls != 4 {
		t.Errorf("attempts = %d, want 4 (initial plus 3 retries)", calls)
	}
	var perr *models.PipelineError
	if !errors.As(err, &perr) || perr.Code != models.ErrCodeExtractTransport {
		t.Errorf("error = %v, want code %s", err, models.ErrCodeExtractTransport)
	}
}

func TestExtract_NonTransportErrorFailsFast(t *testing.T) {
	sink := &recordingSink{}
	calls := 0
	s := testScraper(sink, func(ctx context.Context, url string) (*models.RestaurantMenu, error) {
		calls++
		return nil, models.NewPipelineError(models.ErrCodeInvalidInput, "malformed listing url", nil)
	})

	_, err := s.Extract(context.Background(), "not-a-url")
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("attempts = %d, want 1", calls)
	}
}

func TestExtract_ZeroItemsIsNotAnError(t *testing.T) {
	sink := &recordingSink{}
	s := testScraper(sink, func(ctx context.Context, url string) (*models.RestaurantMenu, error) {
		return models.NewRestaurantMenu("Quiet Cafe", url, nil), nil
	})

	menu, err := s.Extract(context.Background(), "https://example.com/store/quiet")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(menu.Items) != 0 {
		t.Errorf("items = %d, want 0", len(menu.Items))
	}
	events := sink.all()
	if len(events) != 1 || events[0].Kind != alert.KindScrape || events[0].Success {
		t.Errorf("empty extraction should record an unsuccessful scrape event, got %+v", events)
	}
}

func TestExtract_CanceledDuringBackoff(t *testing.T) {
	sink := &recordingSink{}
	s := testScraper(sink, func(ctx context.Context, url string) (*models.RestaurantMenu, error) {
		return nil, models.NewPipelineError(models.ErrCodeNavigation, "net::ERR_TIMED_OUT", nil)
	})
	s.extractCfg.RetryBase = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := s.Extract(ctx, "https://example.com/store/x")
	if err == nil {
		t.Fatal("expected error")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("cancellation did not interrupt the backoff sleep")
	}
}
