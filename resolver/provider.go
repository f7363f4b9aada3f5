// Package resolver locates a validated marketplace listing URL for a
// free-text restaurant name by trying a chain of external search
// strategies in priority order.
package resolver

import (
	"context"

	"github.com/zestifyre/Zestifyre/models"
)

// Provider is one external resolution strategy behind a uniform contract.
// Implementations are stateless apart from an optionally reused HTTP
// client, and must honor ctx deadlines on every outbound call.
type Provider interface {
	// Name identifies the provider in attempt records and logs.
	Name() string

	// Search returns zero or more candidate listings for the restaurant
	// name. A missing credential is reported as models.ErrUnconfigured
	// (wrapped or bare); any other error is a transport-class failure.
	Search(ctx context.Context, name string) ([]models.SearchCandidate, error)
}
