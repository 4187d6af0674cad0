package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Fetcher loads the raw product list from the product service.
type Fetcher interface {
	List(ctx context.Context) ([]RawRecord, error)
}

// ProductStore holds the product list shown by the dashboard.
// The list is replaced wholesale on each successful refresh and kept on failure.
type ProductStore struct {
	fetcher Fetcher
	logger  *slog.Logger

	mu       sync.RWMutex
	list     []Product
	inFlight int
	lastErr  error
	// generation is bumped by Reset; refreshes started before it are discarded.
	generation uint64
}

func NewProductStore(fetcher Fetcher, logger *slog.Logger) *ProductStore {
	return &ProductStore{
		fetcher: fetcher,
		logger:  logger.With("component", "product_store"),
		list:    []Product{},
	}
}

// Refresh fetches and normalizes the product list. The lock is not held
// during the fetch, so overlapping refreshes are allowed and the one that
// finishes last decides the list.
func (s *ProductStore) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.inFlight++
	gen := s.generation
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	raws, err := s.fetcher.List(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to refresh products", "error", err)
		err = fmt.Errorf("refresh products: %w", err)
		s.mu.Lock()
		if s.generation == gen {
			s.lastErr = err
		}
		s.mu.Unlock()
		return err
	}
	products := NormalizeAll(raws)

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		s.logger.DebugContext(ctx, "Dropped refresh started before reset")
		return nil
	}
	s.list = products
	s.lastErr = nil
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "Products refreshed", "count", len(products))
	return nil
}

// Products returns a copy of the current list.
func (s *ProductStore) Products() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, len(s.list))
	copy(out, s.list)
	return out
}

// Loading reports whether a refresh is in progress.
func (s *ProductStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight > 0
}

// LastError returns the error of the most recent refresh, or nil once one has succeeded.
func (s *ProductStore) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Reset empties the list and forgets the last error, e.g. on logout.
// Refreshes still running when Reset is called do not touch the store afterwards.
func (s *ProductStore) Reset() {
	s.mu.Lock()
	s.list = []Product{}
	s.lastErr = nil
	s.generation++
	s.mu.Unlock()
}

// Find returns the product with the given id from the current list.
func (s *ProductStore) Find(id int64) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.list {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
