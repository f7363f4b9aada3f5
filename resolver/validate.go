package resolver

import (
	"net/url"
	"regexp"
	"strings"
)

// listingPath matches the marketplace listing-path shape: an optional
// two-letter locale prefix, the fixed /store/ segment, then at least one
// identifier segment.
var listingPath = regexp.MustCompile(`^(?:/[a-z]{2})?/store/[^/]+(?:/[^/]+)*/?$`)

// nonListingQueryKeys are query markers that indicate a search, redirect or
// modal page rather than a plain listing.
var nonListingQueryKeys = []string{"q", "search", "mod", "redirectedFrom"}

// IsListingURL reports whether raw points at a marketplace listing page.
// It is a pure predicate: no network, no state, same answer every call.
func IsListingURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host == "" {
		return false
	}
	if !listingPath.MatchString(strings.ToLower(u.Path)) {
		return false
	}
	if u.RawQuery != "" {
		q := u.Query()
		for _, key := range nonListingQueryKeys {
			if q.Has(key) {
				return false
			}
		}
	}
	return true
}

// NormalizeListingURL reduces a listing URL to a canonical form used for
// de-duplication: lowercased scheme and host, path without trailing slash,
// query and fragment dropped.
func NormalizeListingURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	path := strings.TrimSuffix(u.Path, "/")
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host) + path
}
