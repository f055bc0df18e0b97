// Package indexer defines the indexer client contract and the candidate
// persistence shared by all backends.
package indexer

import (
	"context"
	"errors"

	"github.com/seasonarr/seasonarr/internal/indexer/types"
)

// ErrUnavailable marks a backend that could not be reached or answered with
// an error status. The aggregator catches and logs it per client; it never
// aborts an aggregate search.
var ErrUnavailable = errors.New("indexer unavailable")

// Indexer is a single external search backend. Implementations normalize
// their results into the shared Candidate shape.
type Indexer interface {
	Name() string
	Search(ctx context.Context, query string, isTV bool) ([]types.Candidate, error)
}
