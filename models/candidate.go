package models

import "time"

// SearchCandidate is a provisionally resolved listing URL produced by one
// search provider. Candidates are ephemeral: they live for exactly one
// resolution call and are consumed immediately by extraction.
type SearchCandidate struct {
	// DisplayName is the restaurant name as the provider reported it.
	DisplayName string `json:"display_name"`

	// ListingURL is the marketplace listing URL. Always validator-approved
	// by the time it leaves the resolver.
	ListingURL string `json:"listing_url"`

	// LocationHint is an optional neighbourhood/address fragment.
	LocationHint string `json:"location_hint,omitempty"`

	// RatingHint is an optional rating string as scraped (e.g. "4.7").
	RatingHint string `json:"rating_hint,omitempty"`

	// ETAHint is an optional delivery-estimate string (e.g. "25–40 min").
	ETAHint string `json:"eta_hint,omitempty"`
}

// ResolutionResult is the ordered candidate set produced by one resolver
// call, tagged with the provider that produced it and its elapsed time.
// An empty Candidates slice means "not found": a value, never an error.
type ResolutionResult struct {
	Candidates []SearchCandidate `json:"candidates"`
	Provider   string            `json:"provider,omitempty"`
	Elapsed    time.Duration     `json:"elapsed"`
}

// Empty reports whether resolution produced no candidates.
func (r ResolutionResult) Empty() bool {
	return len(r.Candidates) == 0
}
