// Package memory implements the repositories in process memory. It enforces
// the same uniqueness and reference rules as the PostgreSQL schema and is
// used for local development and tests.
package memory

import (
	"strings"
	"sync"

	"github.com/utafrali/storefront-admin/pkg/pagination"
)

// Store holds every in-memory repository. Brands and products share one lock
// because product writes check brand references.
type Store struct {
	Brands   *BrandRepository
	Products *ProductRepository
	Orders   *OrderRepository
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	cat := &catalog{
		brands:   make(map[string]*brandRecord),
		products: make(map[string]*productRecord),
	}
	s := &Store{
		Brands:   &BrandRepository{cat: cat},
		Products: &ProductRepository{cat: cat},
	}
	s.Orders = &OrderRepository{
		products: s.Products,
		orders:   make(map[string]*orderRecord),
	}
	return s
}

type catalog struct {
	mu       sync.RWMutex
	brands   map[string]*brandRecord
	products map[string]*productRecord
}

// window returns the slice bounds for a page of n items.
func window(n, page, perPage int) (int, int) {
	p := pagination.New(page, perPage)
	start := p.Offset()
	if start > n {
		start = n
	}
	end := start + p.PerPage
	if end > n {
		end = n
	}
	return start, end
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
