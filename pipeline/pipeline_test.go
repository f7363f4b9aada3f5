package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/zestifyre/Zestifyre/fallback"
	"github.com/zestifyre/Zestifyre/models"
)

type stubResolver struct {
	result models.ResolutionResult
}

func (s *stubResolver) Resolve(ctx context.Context, name string) models.ResolutionResult {
	return s.result
}

type stubExtractor struct {
	// menus and errs are consumed per call, in order.
	menus []*models.RestaurantMenu
	errs  []error
	calls []string
}

func (s *stubExtractor) Extract(ctx context.Context, url string) (*models.RestaurantMenu, error) {
	i := len(s.calls)
	s.calls = append(s.calls, url)
	var menu *models.RestaurantMenu
	var err error
	if i < len(s.menus) {
		menu = s.menus[i]
	}
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return menu, err
}

type stubStore struct {
	saved []*models.RestaurantMenu
	err   error
}

func (s *stubStore) SaveMenu(ctx context.Context, menu *models.RestaurantMenu) error {
	s.saved = append(s.saved, menu)
	return s.err
}

func candidates(urls ...string) models.ResolutionResult {
	var cs []models.SearchCandidate
	for _, u := range urls {
		cs = append(cs, models.SearchCandidate{DisplayName: "Test Bistro", ListingURL: u})
	}
	return models.ResolutionResult{Candidates: cs, Provider: "serp-api"}
}

func bistroMenu() *models.RestaurantMenu {
	return models.NewRestaurantMenu("Test Bistro", "https://www.ubereats.com/ca/store/test-bistro", []models.MenuItem{
		{ID: 1, Name: "Spring Rolls", Price: 5.99, Category: models.CategoryAppetizer},
		{ID: 2, Name: "Pad Thai", Price: 13.50, Category: models.CategoryMain},
		{ID: 3, Name: "Green Curry", Price: 14.00, Category: models.CategoryMain},
		{ID: 4, Name: "Mango Sticky Rice", Price: 7.00, Category: models.CategoryDessert},
		{ID: 5, Name: "Thai Iced Tea", Price: 4.50, Category: models.CategoryDrink},
	})
}

func TestResolveAndExtract_FirstCandidateWins(t *testing.T) {
	ex := &stubExtractor{menus: []*models.RestaurantMenu{bistroMenu()}}
	svc := New(&stubResolver{result: candidates("https://www.ubereats.com/ca/store/test-bistro", "https://www.ubereats.com/ca/store/other")}, ex, nil)

	menu, err := svc.ResolveAndExtract(context.Background(), "Test Bistro", nil)
	if err != nil {
		t.Fatalf("ResolveAndExtract() error = %v", err)
	}
	if len(ex.calls) != 1 {
		t.Errorf("extractor calls = %d, want 1", len(ex.calls))
	}
	if len(menu.Items) != 5 {
		t.Errorf("items = %d, want 5", len(menu.Items))
	}
	wantCats := []models.Category{models.CategoryAppetizer, models.CategoryMain, models.CategoryDessert, models.CategoryDrink}
	if len(menu.Categories) != len(wantCats) {
		t.Fatalf("categories = %v, want %v", menu.Categories, wantCats)
	}
	for i, c := range wantCats {
		if menu.Categories[i] != c {
			t.Errorf("categories[%d] = %s, want %s", i, menu.Categories[i], c)
		}
	}
}

func TestResolveAndExtract_EmptyResolutionIsNotAnError(t *testing.T) {
	ex := &stubExtractor{}
	svc := New(&stubResolver{}, ex, nil)

	menu, err := svc.ResolveAndExtract(context.Background(), "Nonexistent Place", nil)
	if err != nil {
		t.Fatalf("ResolveAndExtract() error = %v", err)
	}
	if len(ex.calls) != 0 {
		t.Errorf("extractor calls = %d, want 0", len(ex.calls))
	}
	if len(menu.Items) != 0 || len(menu.Categories) != 0 {
		t.Errorf("expected empty menu, got %+v", menu)
	}
}

func TestResolveAndExtract_ZeroItemExtractionTriesNextCandidate(t *testing.T) {
	empty := models.NewRestaurantMenu("Test Bistro", "https://www.ubereats.com/ca/store/a", nil)
	ex := &stubExtractor{menus: []*models.RestaurantMenu{empty, bistroMenu()}}
	svc := New(&stubResolver{result: candidates(
		"https://www.ubereats.com/ca/store/a",
		"https://www.ubereats.com/ca/store/b",
	)}, ex, nil)

	menu, err := svc.ResolveAndExtract(context.Background(), "Test Bistro", nil)
	if err != nil {
		t.Fatalf("ResolveAndExtract() error = %v", err)
	}
	if len(ex.calls) != 2 {
		t.Errorf("extractor calls = %d, want 2", len(ex.calls))
	}
	if len(menu.Items) != 5 {
		t.Errorf("items = %d, want 5", len(menu.Items))
	}
}

func TestResolveAndExtract_TransportExhaustionSurfaces(t *testing.T) {
	transportErr := models.NewPipelineError(models.ErrCodeExtractTransport, "extraction failed after retries", nil)
	ex := &stubExtractor{errs: []error{transportErr}}
	svc := New(&stubResolver{result: candidates("https://www.ubereats.com/ca/store/a")}, ex, nil)

	_, err := svc.ResolveAndExtract(context.Background(), "Test Bistro", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var perr *models.PipelineError
	if !errors.As(err, &perr) || perr.Code != models.ErrCodeExtractTransport {
		t.Errorf("error = %v, want code %s", err, models.ErrCodeExtractTransport)
	}
}

func TestResolveAndExtract_FallbackPapersOverFailure(t *testing.T) {
	transportErr := models.NewPipelineError(models.ErrCodeExtractTransport, "extraction failed after retries", nil)
	ex := &stubExtractor{errs: []error{transportErr}}
	svc := New(&stubResolver{result: candidates("https://www.ubereats.com/ca/store/a")}, ex, nil)

	menu, err := svc.ResolveAndExtract(context.Background(), "Test Bistro", &Options{UseFallback: true})
	if err != nil {
		t.Fatalf("ResolveAndExtract() error = %v", err)
	}
	if !fallback.IsSynthetic(menu) {
		t.Error("expected a synthetic fallback menu")
	}
	if len(menu.Items) == 0 {
		t.Error("fallback menu has no items")
	}
}

func TestResolveAndExtract_OptionFiltersRederiveCategories(t *testing.T) {
	ex := &stubExtractor{menus: []*models.RestaurantMenu{bistroMenu()}}
	svc := New(&stubResolver{result: candidates("https://www.ubereats.com/ca/store/a")}, ex, nil)

	menu, err := svc.ResolveAndExtract(context.Background(), "Test Bistro", &Options{
		MaxItems:   5,
		Categories: []models.Category{models.CategoryMain, models.CategoryDessert},
	})
	if err != nil {
		t.Fatalf("ResolveAndExtract() error = %v", err)
	}
	if len(menu.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(menu.Items))
	}
	for _, item := range menu.Items {
		if item.Category != models.CategoryMain && item.Category != models.CategoryDessert {
			t.Errorf("item %q has unexpected category %s", item.Name, item.Category)
		}
	}
	if len(menu.Categories) != 2 {
		t.Errorf("categories = %v, want exactly the surviving two", menu.Categories)
	}
}

func TestResolveAndExtract_MaxItemsTruncates(t *testing.T) {
	ex := &stubExtractor{menus: []*models.RestaurantMenu{bistroMenu()}}
	svc := New(&stubResolver{result: candidates("https://www.ubereats.com/ca/store/a")}, ex, nil)

	menu, err := svc.ResolveAndExtract(context.Background(), "Test Bistro", &Options{MaxItems: 2})
	if err != nil {
		t.Fatalf("ResolveAndExtract() error = %v", err)
	}
	if len(menu.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(menu.Items))
	}
	// The drink and dessert items fell off; the projection must follow.
	for _, c := range menu.Categories {
		if c == models.CategoryDrink || c == models.CategoryDessert {
			t.Errorf("category %s should have been re-derived away", c)
		}
	}
}

func TestResolveAndExtract_MaxCandidatesCapsAttempts(t *testing.T) {
	empty := models.NewRestaurantMenu("Test Bistro", "", nil)
	ex := &stubExtractor{menus: []*models.RestaurantMenu{empty, empty, empty}}
	svc := New(&stubResolver{result: candidates(
		"https://www.ubereats.com/ca/store/a",
		"https://www.ubereats.com/ca/store/b",
		"https://www.ubereats.com/ca/store/c",
	)}, ex, nil)

	_, err := svc.ResolveAndExtract(context.Background(), "Test Bistro", &Options{MaxCandidates: 2})
	if err != nil {
		t.Fatalf("ResolveAndExtract() error = %v", err)
	}
	if len(ex.calls) != 2 {
		t.Errorf("extractor calls = %d, want 2", len(ex.calls))
	}
}

func TestResolveAndExtract_FailingStoreIsNotFatal(t *testing.T) {
	store := &stubStore{err: errors.New("disk full")}
	ex := &stubExtractor{menus: []*models.RestaurantMenu{bistroMenu()}}
	svc := New(&stubResolver{result: candidates("https://www.ubereats.com/ca/store/a")}, ex, store)

	menu, err := svc.ResolveAndExtract(context.Background(), "Test Bistro", nil)
	if err != nil {
		t.Fatalf("ResolveAndExtract() error = %v", err)
	}
	if len(store.saved) != 1 {
		t.Errorf("store saves = %d, want 1", len(store.saved))
	}
	if len(menu.Items) != 5 {
		t.Errorf("items = %d, want 5", len(menu.Items))
	}
}

func TestResolveAndExtract_EmptyNameRejected(t *testing.T) {
	svc := New(&stubResolver{}, &stubExtractor{}, nil)
	_, err := svc.ResolveAndExtract(context.Background(), "   ", nil)
	var perr *models.PipelineError
	if !errors.As(err, &perr) || perr.Code != models.ErrCodeInvalidInput {
		t.Errorf("error = %v, want %s", err, models.ErrCodeInvalidInput)
	}
}
