package store

import (
	"strings"
	"sync"

	"giftem/internal/util"
	"giftem/pkg/domain"
	"golang.org/x/text/cases"
)

// Defaults applied to products created through AddCustom.
const (
	CustomSellerID    = "custom-seller"
	CustomImage       = "custom"
	CustomRating      = 5.0
	CustomReviewCount = 0
)

var customTags = []string{"custom", "new"}

// CustomProduct is the caller-validated input of AddCustom.
type CustomProduct struct {
	Name          string
	Description   string
	Price         float64
	Category      domain.ProductCategory
	OriginalPrice *float64
}

// ProductStore owns the product catalog. Display order is slice order.
type ProductStore struct {
	notifier

	mu          sync.RWMutex
	seed        []domain.Product
	products    []domain.Product
	customAdded bool
}

// NewProductStore builds a store populated from seed. Seed entries without
// an id get one here, and keep it across resets.
func NewProductStore(seed []domain.Product) *ProductStore {
	s := &ProductStore{}
	s.seed = prepareSeed(seed)
	s.products = cloneProducts(s.seed)
	return s
}

func prepareSeed(seed []domain.Product) []domain.Product {
	out := cloneProducts(seed)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = util.NewID()
		}
	}
	return out
}

// All returns every product in display order.
func (s *ProductStore) All() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProducts(s.products)
}

// Len returns the number of products.
func (s *ProductStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// GetByID looks up a product. A missing id is not an error.
func (s *ProductStore) GetByID(id string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return domain.Product{}, false
}

// Search returns products whose name, description or any tag contains
// query, compared with Unicode case folding. An empty query returns all
// products. Order is preserved; there is no ranking.
func (s *ProductStore) Search(query string) []domain.Product {
	if query == "" {
		return s.All()
	}
	fold := cases.Fold()
	needle := fold.String(query)
	contains := func(text string) bool {
		return strings.Contains(fold.String(text), needle)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if contains(p.Name) || contains(p.Description) || containsTag(p.Tags, contains) {
			res = append(res, p.Clone())
		}
	}
	return res
}

func containsTag(tags []string, match func(string) bool) bool {
	for _, tag := range tags {
		if match(tag) {
			return true
		}
	}
	return false
}

// FilterByCategory returns products of the given category in display order.
func (s *ProductStore) FilterByCategory(category domain.ProductCategory) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.Category == category {
			res = append(res, p.Clone())
		}
	}
	return res
}

// AddCustom inserts a new product at the front. The first call after
// construction, ClearAll or ResetToSeed discards the existing products.
// Input is assumed validated by the caller.
func (s *ProductStore) AddCustom(in CustomProduct) domain.Product {
	product := domain.Product{
		ID:          util.NewID(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		ImageURLs:   []string{CustomImage},
		Category:    in.Category,
		SellerID:    CustomSellerID,
		Rating:      CustomRating,
		ReviewCount: CustomReviewCount,
		Tags:        append([]string(nil), customTags...),
	}
	if in.OriginalPrice != nil {
		v := *in.OriginalPrice
		product.OriginalPrice = &v
	}

	s.mu.Lock()
	if !s.customAdded {
		s.products = nil
		s.customAdded = true
	}
	s.products = append([]domain.Product{product}, s.products...)
	s.mu.Unlock()

	s.notify()
	return product.Clone()
}

// Remove deletes the product with id and reports whether it existed.
func (s *ProductStore) Remove(id string) bool {
	s.mu.Lock()
	idx := -1
	for i, p := range s.products {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.products = append(s.products[:idx:idx], s.products[idx+1:]...)
	s.mu.Unlock()

	s.notify()
	return true
}

// ClearAll empties the catalog and re-arms the one-shot wipe.
func (s *ProductStore) ClearAll() {
	s.mu.Lock()
	s.products = nil
	s.customAdded = false
	s.mu.Unlock()
	s.notify()
}

// ResetToSeed restores the seed catalog, discarding custom products.
func (s *ProductStore) ResetToSeed() {
	s.mu.Lock()
	s.customAdded = false
	s.products = cloneProducts(s.seed)
	s.mu.Unlock()
	s.notify()
}

// ReplaceSeed swaps the seed catalog and resets to it.
func (s *ProductStore) ReplaceSeed(seed []domain.Product) {
	prepared := prepareSeed(seed)
	s.mu.Lock()
	s.seed = prepared
	s.customAdded = false
	s.products = cloneProducts(prepared)
	s.mu.Unlock()
	s.notify()
}

func cloneProducts(in []domain.Product) []domain.Product {
	if in == nil {
		return []domain.Product{}
	}
	out := make([]domain.Product, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}
