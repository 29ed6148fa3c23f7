package views

import (
	"html/template"
	"sync"

	"storefront/models"
	"storefront/services"
)

// CartPage is the item list, summary and checkout button of /cart.
type CartPage struct {
	r *Renderer

	mu               sync.RWMutex
	html             template.HTML
	checkoutDisabled bool
	err              error
}

type cartPageData struct {
	Items     []models.LineItem
	Empty     bool
	ItemCount int
	Total     int
}

func NewCartPage(r *Renderer) *CartPage {
	return &CartPage{r: r, checkoutDisabled: true}
}

func (p *CartPage) Refresh(cart services.CartReader) {
	data := cartPageData{
		Items:     cart.Items(),
		Empty:     cart.IsEmpty(),
		ItemCount: cart.ItemCount(),
		Total:     cart.Total(),
	}
	html, err := p.r.render("cart_page", data)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.checkoutDisabled = data.Empty
	p.err = err
	if err == nil {
		p.html = html
	}
}

func (p *CartPage) HTML() template.HTML {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.html
}

// CheckoutDisabled is true while the cart is empty.
func (p *CartPage) CheckoutDisabled() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.checkoutDisabled
}

func (p *CartPage) Err() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.err
}
