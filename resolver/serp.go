package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/zestifyre/Zestifyre/models"
)

// SerpProvider queries a paid organic-search API scoped to the marketplace
// host. It is the highest-quality (and most expensive) strategy, so calls
// are paced by a rate limiter and the resolver stops the chain as soon as
// it yields a validated candidate.
type SerpProvider struct {
	apiKey   string
	endpoint string
	host     string
	limiter  *rate.Limiter
	client   *http.Client
}

// NewSerpProvider builds the paid-search adapter. An empty apiKey yields a
// provider that cleanly reports itself unconfigured instead of crashing.
func NewSerpProvider(apiKey, endpoint, marketplaceHost string, perSecond float64) *SerpProvider {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &SerpProvider{
		apiKey:   apiKey,
		endpoint: endpoint,
		host:     marketplaceHost,
		limiter:  rate.NewLimiter(rate.Limit(perSecond), 1),
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *SerpProvider) Name() string { return "serp-api" }

// serpResponse mirrors the subset of the API payload we consume.
type serpResponse struct {
	OrganicResults []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
}

func (p *SerpProvider) Search(ctx context.Context, name string) ([]models.SearchCandidate, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%s: %w", p.Name(), models.ErrUnconfigured)
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: rate wait: %w", p.Name(), err)
	}

	q := url.Values{}
	q.Set("engine", "google")
	q.Set("q", fmt.Sprintf("site:%s %q", p.host, name))
	q.Set("num", "10")
	q.Set("api_key", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", p.Name(), err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", p.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: HTTP %d", p.Name(), resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", p.Name(), err)
	}

	var parsed serpResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", p.Name(), err)
	}

	candidates := make([]models.SearchCandidate, 0, len(parsed.OrganicResults))
	for _, r := range parsed.OrganicResults {
		if !IsListingURL(r.Link) {
			continue
		}
		candidates = append(candidates, models.SearchCandidate{
			DisplayName:  r.Title,
			ListingURL:   r.Link,
			LocationHint: r.Snippet,
		})
	}
	return candidates, nil
}
