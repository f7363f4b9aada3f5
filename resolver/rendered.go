package resolver

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/zestifyre/Zestifyre/models"
)

// FetchFunc renders a URL in the headless browser and returns the final
// HTML. It is injected from the composition root so this package never
// imports the scraper (same callback shape the browser engine uses
// elsewhere in the codebase).
type FetchFunc func(ctx context.Context, pageURL string) (string, error)

// RenderedSearchProvider drives the marketplace's own search page through
// the browser and harvests listing anchors from the rendered result cards.
// It beats the lightweight strategies on coverage but costs a full render.
type RenderedSearchProvider struct {
	host  string
	fetch FetchFunc
}

// NewRenderedSearchProvider builds the rendered-page adapter. A nil fetch
// callback yields an unconfigured provider (no browser available).
func NewRenderedSearchProvider(marketplaceHost string, fetch FetchFunc) *RenderedSearchProvider {
	return &RenderedSearchProvider{host: marketplaceHost, fetch: fetch}
}

func (p *RenderedSearchProvider) Name() string { return "rendered-search" }

var (
	ratingPattern = regexp.MustCompile(`\b([0-5]\.[0-9])\b`)
	etaPattern    = regexp.MustCompile(`\b(\d{1,3}(?:\s*[–-]\s*\d{1,3})?\s*min)\b`)
)

func (p *RenderedSearchProvider) Search(ctx context.Context, name string) ([]models.SearchCandidate, error) {
	if p.fetch == nil {
		return nil, fmt.Errorf("%s: %w", p.Name(), models.ErrUnconfigured)
	}

	searchURL := fmt.Sprintf("https://%s/search?q=%s", p.host, url.QueryEscape(name))
	html, err := p.fetch(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("%s: render search page: %w", p.Name(), err)
	}

	return p.parseCandidates(html, searchURL)
}

// parseCandidates walks every anchor pointing at a /store/ path and builds
// candidates from the anchor and its card text. Separated from Search so
// the parsing logic is testable against fixture HTML.
func (p *RenderedSearchProvider) parseCandidates(html, baseURL string) ([]models.SearchCandidate, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: parse base url: %w", p.Name(), err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%s: parse search html: %w", p.Name(), err)
	}

	var candidates []models.SearchCandidate
	doc.Find(`a[href*="/store/"]`).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return
		}
		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		absURL := resolved.String()
		if !IsListingURL(absURL) {
			return
		}

		cardText := strings.TrimSpace(s.Text())
		displayName := firstLine(cardText)
		if displayName == "" {
			// Image-only cards sometimes carry the name in the alt text.
			displayName = strings.TrimSpace(s.Find("img").AttrOr("alt", ""))
		}

		candidate := models.SearchCandidate{
			DisplayName: displayName,
			ListingURL:  absURL,
		}
		if m := ratingPattern.FindString(cardText); m != "" {
			candidate.RatingHint = m
		}
		if m := etaPattern.FindString(cardText); m != "" {
			candidate.ETAHint = m
		}
		candidates = append(candidates, candidate)
	})

	return candidates, nil
}

// firstLine returns the first non-empty trimmed line of text.
func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
