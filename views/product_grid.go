package views

import (
	"html/template"
	"sync"

	"storefront/models"
	"storefront/services"
)

type ProductGrid struct {
	r *Renderer

	mu       sync.RWMutex
	products []models.Product
	html     template.HTML
	err      error
}

type gridProduct struct {
	models.Product
	InCart int
}

func NewProductGrid(r *Renderer, products []models.Product) *ProductGrid {
	return &ProductGrid{r: r, products: products}
}

// Refresh marks every product with the quantity already in the cart.
func (g *ProductGrid) Refresh(cart services.CartReader) {
	inCart := make(map[string]int)
	for _, item := range cart.Items() {
		inCart[item.ID] = item.Quantity
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	rows := make([]gridProduct, 0, len(g.products))
	for _, p := range g.products {
		rows = append(rows, gridProduct{Product: p, InCart: inCart[p.ID]})
	}

	html, err := g.r.render("product_grid", struct{ Products []gridProduct }{rows})
	g.err = err
	if err == nil {
		g.html = html
	}
}

func (g *ProductGrid) HTML() template.HTML {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.html
}

func (g *ProductGrid) Err() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.err
}
