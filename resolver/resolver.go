package resolver

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/zestifyre/Zestifyre/alert"
	"github.com/zestifyre/Zestifyre/models"
)

// Resolver tries search providers sequentially in priority order and stops
// at the first one producing a validated candidate, bounding cost against
// the paid backends. One Resolver serves one logical request at a time but
// is safe to share: it holds no per-call state.
type Resolver struct {
	providers     []Provider
	sink          alert.Sink
	searchTimeout time.Duration
	maxCandidates int
}

// New builds a Resolver over the given provider chain. Order is the
// priority policy: earlier providers are preferred and later ones are only
// consulted when everything before them came up empty.
func New(providers []Provider, sink alert.Sink, searchTimeout time.Duration, maxCandidates int) *Resolver {
	if sink == nil {
		sink = alert.NewLogSink()
	}
	if searchTimeout <= 0 {
		searchTimeout = 12 * time.Second
	}
	if maxCandidates <= 0 {
		maxCandidates = 3
	}
	return &Resolver{
		providers:     providers,
		sink:          sink,
		searchTimeout: searchTimeout,
		maxCandidates: maxCandidates,
	}
}

// Resolve maps a restaurant name to an ordered, de-duplicated, capped set
// of validated listing candidates. "Not found" is an empty result, never
// an error: provider failures are recorded and the chain advances. Every
// attempt is reported to the sink before the continue/stop decision.
func (r *Resolver) Resolve(ctx context.Context, name string) models.ResolutionResult {
	start := time.Now()

	for _, provider := range r.providers {
		if ctx.Err() != nil {
			slog.Debug("resolution canceled", "name", name, "error", ctx.Err())
			break
		}

		attemptStart := time.Now()
		candidates, err := r.searchOne(ctx, provider, name)
		elapsed := time.Since(attemptStart)

		validated := r.validate(candidates)

		switch {
		case err != nil && errors.Is(err, models.ErrUnconfigured):
			slog.Debug("provider unconfigured, skipping",
				"provider", provider.Name(),
			)
			r.sink.Record(alert.NewEvent(alert.KindSearch, name, provider.Name(),
				elapsed, 0, false, "unconfigured"))
			continue
		case err != nil:
			slog.Warn("provider search failed",
				"provider", provider.Name(),
				"name", name,
				"error", err,
			)
			r.sink.Record(alert.NewEvent(alert.KindSearch, name, provider.Name(),
				elapsed, 0, false, err.Error()))
			continue
		}

		r.sink.Record(alert.NewEvent(alert.KindSearch, name, provider.Name(),
			elapsed, len(validated), len(validated) > 0, ""))

		if len(validated) > 0 {
			slog.Info("restaurant resolved",
				"name", name,
				"provider", provider.Name(),
				"candidates", len(validated),
			)
			return models.ResolutionResult{
				Candidates: validated,
				Provider:   provider.Name(),
				Elapsed:    time.Since(start),
			}
		}
	}

	slog.Info("no candidates found", "name", name)
	return models.ResolutionResult{Elapsed: time.Since(start)}
}

// searchOne runs a single provider under the per-attempt timeout. A
// provider panic is converted to an error so one misbehaving adapter can
// never take the pipeline down.
func (r *Resolver) searchOne(ctx context.Context, provider Provider, name string) (candidates []models.SearchCandidate, err error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.searchTimeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			candidates = nil
			err = models.NewPipelineError(models.ErrCodeAdapterTransport,
				"provider panicked", nil)
			slog.Error("provider panic recovered", "provider", provider.Name(), "panic", rec)
		}
	}()

	return provider.Search(attemptCtx, name)
}

// validate filters candidates through the listing-shape predicate,
// de-duplicates by normalized URL, and caps the result.
func (r *Resolver) validate(candidates []models.SearchCandidate) []models.SearchCandidate {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]models.SearchCandidate, 0, r.maxCandidates)
	for _, c := range candidates {
		if !IsListingURL(c.ListingURL) {
			continue
		}
		key := NormalizeListingURL(c.ListingURL)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
		if len(out) == r.maxCandidates {
			break
		}
	}
	return out
}
