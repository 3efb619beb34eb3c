package store

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/catalogcrawl/internal/model"
)

// Multi saves every result to all of its stores concurrently. A save
// succeeds only when every store succeeds; otherwise the stores that did
// save are rolled back so a failed combination leaves no output behind.
type Multi struct {
	stores []Saver
}

// NewMulti returns a Multi over stores.
func NewMulti(stores ...Saver) *Multi {
	return &Multi{stores: stores}
}

// Len returns the number of stores.
func (m *Multi) Len() int {
	return len(m.stores)
}

// Save implements Saver. The first failure cancels the other saves and is
// returned, joined with any error from rolling back the stores that had
// already saved. Stores that do not implement Deleter are not rolled back.
func (m *Multi) Save(ctx context.Context, runID string, combo model.Combination, result model.CrawlResult) error {
	saved := make([]bool, len(m.stores))

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range m.stores {
		g.Go(func() error {
			if err := s.Save(gctx, runID, combo, result); err != nil {
				return fmt.Errorf("store %d (%T): %w", i, s, err)
			}
			saved[i] = true
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		return nil
	}
	return errors.Join(err, m.rollback(context.WithoutCancel(ctx), runID, combo, saved))
}

// Delete implements Deleter on every store that supports it.
func (m *Multi) Delete(ctx context.Context, runID string, combo model.Combination) error {
	all := make([]bool, len(m.stores))
	for i := range all {
		all[i] = true
	}
	return m.rollback(ctx, runID, combo, all)
}

func (m *Multi) rollback(ctx context.Context, runID string, combo model.Combination, which []bool) error {
	var errs []error
	for i, s := range m.stores {
		if !which[i] {
			continue
		}
		d, ok := s.(Deleter)
		if !ok {
			continue
		}
		if err := d.Delete(ctx, runID, combo); err != nil {
			errs = append(errs, fmt.Errorf("roll back store %d (%T): %w", i, s, err))
		}
	}
	return errors.Join(errs...)
}
