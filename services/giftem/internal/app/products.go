package app

import (
	"fmt"
	"strings"

	"giftem/pkg/domain"
	"giftem/pkg/store"
)

// NewProduct is the user-entered form for a custom product.
type NewProduct struct {
	Name          string
	Description   string
	Price         float64
	OriginalPrice *float64
	Category      string
}

func (a *App) Products() []domain.Product { return a.products.All() }

func (a *App) SearchProducts(query string) []domain.Product { return a.products.Search(query) }

func (a *App) ProductsByCategory(category domain.ProductCategory) []domain.Product {
	return a.products.FilterByCategory(category)
}

func (a *App) Product(id string) (domain.Product, error) {
	p, ok := a.products.GetByID(id)
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return p, nil
}

// AddCustomProduct validates the form, inserts the product at the front of
// the catalog and rebuilds the feed.
func (a *App) AddCustomProduct(in NewProduct) (domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	desc := strings.TrimSpace(in.Description)
	switch {
	case name == "":
		return domain.Product{}, fmt.Errorf("%w: name required", ErrInvalidProduct)
	case desc == "":
		return domain.Product{}, fmt.Errorf("%w: description required", ErrInvalidProduct)
	case in.Price < 0:
		return domain.Product{}, fmt.Errorf("%w: price must be >= 0", ErrInvalidProduct)
	case in.OriginalPrice != nil && *in.OriginalPrice < 0:
		return domain.Product{}, fmt.Errorf("%w: original price must be >= 0", ErrInvalidProduct)
	}
	category, ok := domain.ParseCategory(strings.TrimSpace(in.Category))
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: unknown category %q", ErrInvalidProduct, in.Category)
	}

	product := a.products.AddCustom(store.CustomProduct{
		Name:          name,
		Description:   desc,
		Price:         in.Price,
		Category:      category,
		OriginalPrice: in.OriginalPrice,
	})
	a.feed.Rebuild()
	a.logger.Info("custom product added", "product_id", product.ID, "category", product.Category)
	return product, nil
}

func (a *App) RemoveProduct(id string) error {
	if !a.products.Remove(id) {
		return ErrProductNotFound
	}
	a.feed.Rebuild()
	a.logger.Info("product removed", "product_id", id)
	return nil
}

func (a *App) ClearProducts() {
	a.products.ClearAll()
	a.feed.Rebuild()
	a.logger.Info("catalog cleared")
}

func (a *App) ResetProducts() {
	a.products.ResetToSeed()
	a.feed.Rebuild()
	a.logger.Info("catalog reset to seed", "products", a.products.Len())
}
