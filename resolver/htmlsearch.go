package resolver

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/zestifyre/Zestifyre/models"
)

// HTMLSearchProvider queries a lightweight HTML search endpoint (no JS, no
// API key) with a Chrome-fingerprint TLS client. Free, but the endpoint is
// quick to rate-limit, so it sits below the paid API in priority.
type HTMLSearchProvider struct {
	endpoint string
	host     string
	client   *chromeClient
}

// NewHTMLSearchProvider builds the HTML-endpoint adapter.
func NewHTMLSearchProvider(endpoint, marketplaceHost string) *HTMLSearchProvider {
	return &HTMLSearchProvider{
		endpoint: endpoint,
		host:     marketplaceHost,
		client:   newChromeClient(),
	}
}

func (p *HTMLSearchProvider) Name() string { return "html-search" }

func (p *HTMLSearchProvider) Search(ctx context.Context, name string) ([]models.SearchCandidate, error) {
	if p.endpoint == "" {
		return nil, fmt.Errorf("%s: %w", p.Name(), models.ErrUnconfigured)
	}

	query := fmt.Sprintf("site:%s %s", p.host, name)
	searchURL := p.endpoint + "?q=" + url.QueryEscape(query)

	body, err := p.client.get(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Name(), err)
	}

	return p.parseResults(body)
}

// parseResults extracts result anchors from the endpoint's HTML. Links are
// usually redirect-wrapped (an uddg query parameter carrying the real
// URL); both wrapped and direct forms are handled.
func (p *HTMLSearchProvider) parseResults(body []byte) ([]models.SearchCandidate, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: parse results html: %w", p.Name(), err)
	}

	var candidates []models.SearchCandidate
	doc.Find("a.result__a, a.result-link, h2 a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return
		}
		target := unwrapRedirect(href)
		if !IsListingURL(target) {
			return
		}
		candidates = append(candidates, models.SearchCandidate{
			DisplayName: strings.TrimSpace(s.Text()),
			ListingURL:  target,
		})
	})

	return candidates, nil
}

// unwrapRedirect decodes redirect-wrapped result links. The wrapped form
// carries the destination in the uddg parameter; anything else is
// returned as-is (scheme-relative links get https).
func unwrapRedirect(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if wrapped := u.Query().Get("uddg"); wrapped != "" {
		if decoded, err := url.QueryUnescape(wrapped); err == nil {
			return decoded
		}
		return wrapped
	}
	return href
}
