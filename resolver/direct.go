package resolver

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/zestifyre/Zestifyre/models"
)

// DirectProvider constructs listing URLs straight from the restaurant name
// by slugifying it into the marketplace's path shape. Last in the chain:
// the guesses pass the shape validator by construction, but only
// extraction can tell whether a guessed listing actually exists.
type DirectProvider struct {
	host   string
	region string
}

// NewDirectProvider builds the heuristic-construction adapter. It needs no
// credentials and is always configured.
func NewDirectProvider(marketplaceHost, region string) *DirectProvider {
	return &DirectProvider{host: marketplaceHost, region: region}
}

func (p *DirectProvider) Name() string { return "direct-url" }

func (p *DirectProvider) Search(_ context.Context, name string) ([]models.SearchCandidate, error) {
	slug := Slugify(name)
	if slug == "" {
		return nil, nil
	}

	paths := []string{
		fmt.Sprintf("/%s/store/%s", p.region, slug),
		fmt.Sprintf("/store/%s", slug),
	}

	// Names carrying an ampersand often appear under an "and" slug too.
	if strings.Contains(strings.ToLower(name), "&") {
		if alt := Slugify(strings.ReplaceAll(name, "&", " and ")); alt != "" && alt != slug {
			paths = append(paths, fmt.Sprintf("/%s/store/%s", p.region, alt))
		}
	}

	candidates := make([]models.SearchCandidate, 0, len(paths))
	for _, path := range paths {
		candidates = append(candidates, models.SearchCandidate{
			DisplayName: name,
			ListingURL:  "https://" + p.host + path,
		})
	}
	return candidates, nil
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases a name and collapses every non-alphanumeric run into
// a single hyphen, matching the marketplace's listing slug convention.
func Slugify(name string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}
