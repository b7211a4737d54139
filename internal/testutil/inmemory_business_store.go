package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rentstack/rentstack/internal/domain/business"
	ierr "github.com/rentstack/rentstack/internal/errors"
)

// InMemoryBusinessStore is an in-memory implementation of the
// business.Repository interface
type InMemoryBusinessStore struct {
	mu         sync.Mutex
	businesses map[string]*business.Business
}

// NewInMemoryBusinessStore creates a new instance of InMemoryBusinessStore
func NewInMemoryBusinessStore() *InMemoryBusinessStore {
	return &InMemoryBusinessStore{
		businesses: make(map[string]*business.Business),
	}
}

// Seed inserts a business directly, bypassing version checks
func (r *InMemoryBusinessStore) Seed(b *business.Business) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *b
	r.businesses[b.ID] = &cp
}

func (r *InMemoryBusinessStore) Get(ctx context.Context, id string) (*business.Business, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, exists := r.businesses[id]
	if !exists {
		return nil, ierr.NewError("business not found").
			WithHint("Business not found").
			WithReportableDetails(map[string]interface{}{
				"business_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}

	cp := *b
	return &cp, nil
}

func (r *InMemoryBusinessStore) List(ctx context.Context) ([]*business.Business, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*business.Business, 0, len(r.businesses))
	for _, b := range r.businesses {
		cp := *b
		result = append(result, &cp)
	}
	return result, nil
}

func (r *InMemoryBusinessStore) SearchNames(ctx context.Context, query string) ([]*business.Business, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*business.Business, 0)
	for _, b := range r.businesses {
		if strings.Contains(strings.ToLower(b.Name), strings.ToLower(query)) {
			cp := *b
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *InMemoryBusinessStore) Update(ctx context.Context, b *business.Business) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.businesses[b.ID]
	if !exists {
		return ierr.NewError("business not found").
			WithHint("Business not found").
			WithReportableDetails(map[string]interface{}{
				"business_id": b.ID,
			}).
			Mark(ierr.ErrNotFound)
	}

	if current.Version != b.Version {
		return ierr.NewError("business was modified concurrently").
			WithHint("The business changed while this request was in flight. Retry with fresh data.").
			WithReportableDetails(map[string]interface{}{
				"business_id": b.ID,
			}).
			Mark(ierr.ErrVersionConflict)
	}

	cp := *b
	cp.Version++
	cp.UpdatedAt = time.Now().UTC()
	r.businesses[b.ID] = &cp
	return nil
}

// Clear removes all businesses from the store
func (r *InMemoryBusinessStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.businesses = make(map[string]*business.Business)
}
