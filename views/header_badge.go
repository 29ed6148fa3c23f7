package views

import (
	"html/template"
	"sync"

	"storefront/services"
)

// HeaderBadge is the total and item count shown in the page header.
type HeaderBadge struct {
	r *Renderer

	mu    sync.RWMutex
	html  template.HTML
	total int
	count int
	err   error
}

type headerData struct {
	Total int
	Count int
}

func NewHeaderBadge(r *Renderer) *HeaderBadge {
	return &HeaderBadge{r: r}
}

func (h *HeaderBadge) Refresh(cart services.CartReader) {
	data := headerData{Total: cart.Total(), Count: cart.ItemCount()}
	html, err := h.r.render("header", data)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.total, h.count, h.err = data.Total, data.Count, err
	if err == nil {
		h.html = html
	}
}

func (h *HeaderBadge) HTML() template.HTML {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.html
}

func (h *HeaderBadge) Total() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.total
}

func (h *HeaderBadge) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

func (h *HeaderBadge) Err() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.err
}
