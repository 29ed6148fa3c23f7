package views

import (
	"errors"
	"html/template"

	"storefront/services"
)

// Page groups the adapters present on one page. Adapters that are nil are
// not on the page and are skipped on refresh.
type Page struct {
	Header *HeaderBadge
	Cart   *CartPage
	Grid   *ProductGrid
}

func (p *Page) Refresh(cart services.CartReader) {
	if p.Header != nil {
		p.Header.Refresh(cart)
	}
	if p.Cart != nil {
		p.Cart.Refresh(cart)
	}
	if p.Grid != nil {
		p.Grid.Refresh(cart)
	}
}

// Attach subscribes the page to store and renders it once with the current
// state. The returned function detaches it.
func (p *Page) Attach(store *services.CartStore) func() {
	detach := store.Subscribe(p.Refresh)
	p.Refresh(store)
	return detach
}

// Body is the main content: the cart page if present, else the grid.
func (p *Page) Body() template.HTML {
	switch {
	case p.Cart != nil:
		return p.Cart.HTML()
	case p.Grid != nil:
		return p.Grid.HTML()
	}
	return ""
}

func (p *Page) HeaderHTML() template.HTML {
	if p.Header == nil {
		return ""
	}
	return p.Header.HTML()
}

// Fragments returns the rendered fragments keyed by view name.
func (p *Page) Fragments() map[string]string {
	out := make(map[string]string)
	if p.Header != nil {
		out["header"] = string(p.Header.HTML())
	}
	if p.Cart != nil {
		out["cart"] = string(p.Cart.HTML())
	}
	if p.Grid != nil {
		out["grid"] = string(p.Grid.HTML())
	}
	return out
}

func (p *Page) Err() error {
	var errs []error
	if p.Header != nil {
		errs = append(errs, p.Header.Err())
	}
	if p.Cart != nil {
		errs = append(errs, p.Cart.Err())
	}
	if p.Grid != nil {
		errs = append(errs, p.Grid.Err())
	}
	return errors.Join(errs...)
}
