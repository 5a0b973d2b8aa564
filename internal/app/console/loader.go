// internal/app/console/loader.go
package console

import (
	"context"
	"fmt"

	"github.com/dalemusser/ccbportal/internal/domain/models"
	"golang.org/x/sync/errgroup"
)

// Lister fetches one resource list from the backend.
type Lister interface {
	List(ctx context.Context, k models.Kind) ([]models.Record, error)
}

// Loader fetches all ten resource lists in parallel.
type Loader struct {
	api Lister
}

func NewLoader(api Lister) *Loader {
	return &Loader{api: api}
}

// LoadAll fetches every kind concurrently. The first failure cancels the
// remaining requests and is returned as is, so callers can inspect it (for
// example with portalclient.IsUnauthorized). Results are returned only when
// every fetch succeeded.
func (l *Loader) LoadAll(ctx context.Context) (map[models.Kind][]models.Record, error) {
	g, gctx := errgroup.WithContext(ctx)
	results := make([][]models.Record, len(models.Kinds))

	for i, k := range models.Kinds {
		g.Go(func() error {
			list, err := l.api.List(gctx, k)
			if err != nil {
				return err
			}
			results[i] = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[models.Kind][]models.Record, len(models.Kinds))
	for i, k := range models.Kinds {
		out[k] = results[i]
	}
	return out, nil
}

// wrapLoad labels a loader error for logs without hiding its type.
func wrapLoad(err error) error {
	return fmt.Errorf("bulk load: %w", err)
}
