// Package pipeline composes resolution, extraction and degradation into the
// single entry point callers use: free-text restaurant name in, structured
// menu out.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/zestifyre/Zestifyre/fallback"
	"github.com/zestifyre/Zestifyre/models"
)

// Resolver turns a restaurant name into validated listing candidates.
type Resolver interface {
	Resolve(ctx context.Context, name string) models.ResolutionResult
}

// Extractor renders a listing URL and returns its menu.
type Extractor interface {
	Extract(ctx context.Context, listingURL string) (*models.RestaurantMenu, error)
}

// Store persists a finished menu. Persistence is best-effort: a failing
// store is logged and never fails the pipeline call.
type Store interface {
	SaveMenu(ctx context.Context, menu *models.RestaurantMenu) error
}

// Options narrow a single ResolveAndExtract call. The zero value means no
// narrowing and no fallback.
type Options struct {
	// MaxCandidates caps how many resolved listings are tried before
	// giving up. Zero means try all resolved candidates.
	MaxCandidates int
	// MaxItems truncates the extracted menu. Zero means unlimited.
	MaxItems int
	// Categories keeps only items in the given categories. Empty means
	// all categories.
	Categories []models.Category
	// UseFallback substitutes a synthetic menu when resolution or
	// extraction comes up empty-handed.
	UseFallback bool
}

// Service wires the pipeline stages together.
type Service struct {
	resolver  Resolver
	extractor Extractor
	store     Store
}

// New builds the pipeline service. store may be nil.
func New(resolver Resolver, extractor Extractor, store Store) *Service {
	return &Service{resolver: resolver, extractor: extractor, store: store}
}

// ResolveAndExtract runs the full pipeline for one restaurant name.
//
// Candidates are tried in resolution order; the first extraction that
// yields items wins. A zero-item extraction is not an error, it just moves
// on to the next candidate. When everything comes up empty the caller gets
// an empty menu (or a synthetic one with UseFallback), not an error: only
// an extraction transport failure that survived its retry budget, with no
// fallback to paper over it, surfaces.
func (s *Service) ResolveAndExtract(ctx context.Context, restaurantName string, opts *Options) (*models.RestaurantMenu, error) {
	if opts == nil {
		opts = &Options{}
	}
	restaurantName = strings.TrimSpace(restaurantName)
	if restaurantName == "" {
		return nil, models.NewPipelineError(models.ErrCodeInvalidInput, "restaurant name is empty", nil)
	}

	start := time.Now()
	result := s.resolver.Resolve(ctx, restaurantName)

	candidates := result.Candidates
	if opts.MaxCandidates > 0 && len(candidates) > opts.MaxCandidates {
		candidates = candidates[:opts.MaxCandidates]
	}

	var lastErr error
	var emptyMenu *models.RestaurantMenu
	for _, candidate := range candidates {
		menu, err := s.extractor.Extract(ctx, candidate.ListingURL)
		if err != nil {
			lastErr = err
			slog.Warn("extraction failed, moving to next candidate",
				"restaurant", restaurantName,
				"url", candidate.ListingURL,
				"error", err,
			)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if len(menu.Items) == 0 {
			// Keep the best empty answer around in case no candidate
			// yields items.
			if emptyMenu == nil {
				emptyMenu = menu
			}
			continue
		}
		return s.finish(ctx, restaurantName, applyOptions(menu, opts), start)
	}

	if opts.UseFallback {
		slog.Info("no extractable menu found, using synthetic fallback",
			"restaurant", restaurantName,
			"candidates", len(candidates),
		)
		url := ""
		if len(candidates) > 0 {
			url = candidates[0].ListingURL
		}
		return s.finish(ctx, restaurantName, applyOptions(fallback.SyntheticMenu(restaurantName, url), opts), start)
	}

	if lastErr != nil && emptyMenu == nil {
		return nil, lastErr
	}
	if emptyMenu != nil {
		return s.finish(ctx, restaurantName, emptyMenu, start)
	}
	// Nothing resolved at all. Still not an error.
	return s.finish(ctx, restaurantName, models.NewRestaurantMenu(restaurantName, "", nil), start)
}

// applyOptions filters by category then truncates, re-deriving the
// category list from the surviving items.
func applyOptions(menu *models.RestaurantMenu, opts *Options) *models.RestaurantMenu {
	items := menu.Items
	if len(opts.Categories) > 0 {
		keep := make(map[models.Category]bool, len(opts.Categories))
		for _, c := range opts.Categories {
			keep[c] = true
		}
		filtered := make([]models.MenuItem, 0, len(items))
		for _, item := range items {
			if keep[item.Category] {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}
	if opts.MaxItems > 0 && len(items) > opts.MaxItems {
		items = items[:opts.MaxItems]
	}
	if len(items) == len(menu.Items) {
		return menu
	}
	return menu.WithItems(items)
}

func (s *Service) finish(ctx context.Context, restaurantName string, menu *models.RestaurantMenu, start time.Time) (*models.RestaurantMenu, error) {
	if s.store != nil {
		if err := s.store.SaveMenu(ctx, menu); err != nil {
			slog.Warn("failed to persist menu",
				"restaurant", restaurantName,
				"error", err,
			)
		}
	}
	slog.Info("pipeline finished",
		"restaurant", restaurantName,
		"items", len(menu.Items),
		"categories", len(menu.Categories),
		"synthetic", fallback.IsSynthetic(menu),
		"elapsed", time.Since(start),
	)
	return menu, nil
}
