package services

import (
	"slices"
	"sync"

	"storefront/models"
)

// PendingOrders holds orders that reached the submitter while the cleared
// cart that should follow them was never persisted. Entries are keyed by
// visitor and live only in this process.
type PendingOrders struct {
	mu     sync.Mutex
	orders map[string]models.Order
}

func NewPendingOrders() *PendingOrders {
	return &PendingOrders{orders: make(map[string]models.Order)}
}

// match returns the pending order of owner if it was placed for exactly
// these items.
func (p *PendingOrders) match(owner string, items []models.LineItem) (models.Order, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	order, ok := p.orders[owner]
	if !ok || !slices.Equal(order.Items, items) {
		return models.Order{}, false
	}
	return order, true
}

func (p *PendingOrders) put(owner string, order models.Order) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders[owner] = order
}

func (p *PendingOrders) drop(owner string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.orders, owner)
}
