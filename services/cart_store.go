package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/models"
	"storefront/repositories"
)

const (
	CartKey = "cart"

	DefaultImage           = "images/kitten.jpg"
	DefaultAddedFormat     = "%s добавлен в корзину"
	DefaultCheckoutMessage = "Заказ оформлен!"
	DefaultRedirectTo      = "/"
	DefaultRedirectAfter   = 500 * time.Millisecond
)

// CartReader is the read-only side of a cart. Subscribers only ever get
// this, so a view cannot mutate the cart it renders.
type CartReader interface {
	Items() []models.LineItem
	Total() int
	ItemCount() int
	IsEmpty() bool
}

// Subscriber is called after every mutation, once per subscriber, in
// registration order. It must not call back into a mutating operation.
type Subscriber func(CartReader)

// Announcer receives the transient confirmation messages a cart emits.
type Announcer interface {
	Announce(message string)
}

type AnnouncerFunc func(message string)

func (f AnnouncerFunc) Announce(message string) { f(message) }

type CartOption func(*CartStore)

func WithLogger(logger *zap.Logger) CartOption {
	return func(s *CartStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithAnnouncer(a Announcer) CartOption {
	return func(s *CartStore) { s.announcer = a }
}

func WithOrderSubmitter(submitter OrderSubmitter) CartOption {
	return func(s *CartStore) {
		if submitter != nil {
			s.submitter = submitter
		}
	}
}

func WithOwner(visitorID string) CartOption {
	return func(s *CartStore) { s.owner = visitorID }
}

func WithDefaultImage(image string) CartOption {
	return func(s *CartStore) {
		if image != "" {
			s.defaultImage = image
		}
	}
}

// WithAddedMessage sets the confirmation format; it receives the item title.
func WithAddedMessage(format string) CartOption {
	return func(s *CartStore) {
		if format != "" {
			s.addedFormat = format
		}
	}
}

func WithCheckoutRedirect(to string, after time.Duration) CartOption {
	return func(s *CartStore) {
		s.redirectTo = to
		s.redirectAfter = after
	}
}

// WithPendingOrders shares submitted-but-uncleared orders between stores
// of the same visitor.
func WithPendingOrders(p *PendingOrders) CartOption {
	return func(s *CartStore) {
		if p != nil {
			s.pending = p
		}
	}
}

func WithClock(now func() time.Time) CartOption {
	return func(s *CartStore) { s.now = now }
}

// CartStore owns the cart of one page session. Every mutation runs
// read-modify-persist-notify to completion before the next operation on the
// same store starts; the persisted value is written before the in-memory
// value changes, so a failed write leaves the cart as it was.
type CartStore struct {
	kv        repositories.KeyValueStore
	logger    *zap.Logger
	announcer Announcer
	submitter OrderSubmitter
	owner     string
	now       func() time.Time

	defaultImage    string
	addedFormat     string
	checkoutMessage string
	redirectTo      string
	redirectAfter   time.Duration

	opMu    sync.Mutex
	pending *PendingOrders

	mu    sync.RWMutex
	items []models.LineItem

	subMu       sync.Mutex
	subscribers []subscription
	nextSubID   int
}

type subscription struct {
	id int
	fn Subscriber
}

func NewCartStore(kv repositories.KeyValueStore, opts ...CartOption) *CartStore {
	s := &CartStore{
		kv:              kv,
		logger:          zap.NewNop(),
		submitter:       NoopOrderSubmitter{},
		now:             time.Now,
		defaultImage:    DefaultImage,
		addedFormat:     DefaultAddedFormat,
		checkoutMessage: DefaultCheckoutMessage,
		redirectTo:      DefaultRedirectTo,
		redirectAfter:   DefaultRedirectAfter,
		items:           []models.LineItem{},
		pending:         NewPendingOrders(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hydrate loads the persisted cart. It never fails: a missing, unreadable or
// malformed value leaves an empty cart, and invalid entries are dropped.
func (s *CartStore) Hydrate(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	items := s.load(ctx)

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()

	s.notify()
}

func (s *CartStore) load(ctx context.Context) []models.LineItem {
	payload, ok, err := s.kv.Get(ctx, CartKey)
	if err != nil {
		s.logger.Warn("cart read failed, starting empty", zap.Error(err))
		return []models.LineItem{}
	}
	if !ok {
		return []models.LineItem{}
	}

	items, problems := DecodeCart(payload, s.defaultImage)
	for _, p := range problems {
		s.logger.Warn("persisted cart repaired", zap.Error(p))
	}
	return items
}

func (s *CartStore) AddItem(ctx context.Context, id, title string, price int, image string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if image == "" {
		image = s.defaultImage
	}

	err := s.commit(ctx, func(items []models.LineItem) []models.LineItem {
		if i := indexOf(items, id); i >= 0 {
			items[i].Quantity++
			return items
		}
		return append(items, models.LineItem{
			ID:       id,
			Title:    title,
			Price:    price,
			Image:    image,
			Quantity: 1,
		})
	})
	if err != nil {
		return err
	}

	s.logger.Debug("item added", zap.String("id", id), zap.Int("price", price))
	s.announce(fmt.Sprintf(s.addedFormat, title))
	return nil
}

func (s *CartStore) RemoveItem(ctx context.Context, id string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	return s.removeItem(ctx, id)
}

func (s *CartStore) removeItem(ctx context.Context, id string) error {
	return s.commit(ctx, func(items []models.LineItem) []models.LineItem {
		if i := indexOf(items, id); i >= 0 {
			return append(items[:i], items[i+1:]...)
		}
		return items
	})
}

// UpdateQuantity sets an absolute quantity. Zero or less removes the item;
// an id that is not in the cart is never created here.
func (s *CartStore) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	return s.updateQuantity(ctx, id, quantity)
}

func (s *CartStore) updateQuantity(ctx context.Context, id string, quantity int) error {
	if quantity <= 0 {
		return s.removeItem(ctx, id)
	}
	return s.commit(ctx, func(items []models.LineItem) []models.LineItem {
		if i := indexOf(items, id); i >= 0 {
			items[i].Quantity = quantity
		}
		return items
	})
}

// IncrementQuantity and DecrementQuantity do nothing at all when id is not
// in the cart.
func (s *CartStore) IncrementQuantity(ctx context.Context, id string) error {
	return s.step(ctx, id, 1)
}

func (s *CartStore) DecrementQuantity(ctx context.Context, id string) error {
	return s.step(ctx, id, -1)
}

func (s *CartStore) step(ctx context.Context, id string, delta int) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	item, ok := s.find(id)
	if !ok {
		return nil
	}
	return s.updateQuantity(ctx, id, item.Quantity+delta)
}

type CheckoutStatus int

const (
	CheckoutRejected CheckoutStatus = iota
	CheckoutConfirmed
)

func (c CheckoutStatus) String() string {
	if c == CheckoutConfirmed {
		return "confirmed"
	}
	return "rejected"
}

type CheckoutResult struct {
	Status        CheckoutStatus
	Message       string
	RedirectTo    string
	RedirectAfter time.Duration
	Order         *models.Order
}

func (r CheckoutResult) Confirmed() bool {
	return r.Status == CheckoutConfirmed
}

// Checkout rejects an empty cart without side effects. Otherwise the order
// goes to the submitter and, only once that succeeds, the cart is cleared,
// persisted as empty and announced.
//
// The order is submitted before the empty cart is persisted. When that write
// fails the order stays pending for the visitor, and a retry with the same
// items reuses it without submitting again.
func (s *CartStore) Checkout(ctx context.Context) (CheckoutResult, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	items := s.Items()
	if len(items) == 0 {
		return CheckoutResult{Status: CheckoutRejected, Message: ErrMsgCartEmpty}, nil
	}

	order, ok := s.pending.match(s.owner, items)
	if ok {
		s.logger.Info("reusing submitted order", zap.String("order_id", order.ID))
	} else {
		order = models.Order{
			ID:        uuid.NewString(),
			VisitorID: s.owner,
			Items:     items,
			Total:     sumTotal(items),
			ItemCount: sumCount(items),
			PlacedAt:  s.now(),
		}
		if err := s.submitter.Submit(ctx, order); err != nil {
			return CheckoutResult{}, fmt.Errorf("submit order: %w", err)
		}
		s.pending.put(s.owner, order)
	}

	err := s.commit(ctx, func([]models.LineItem) []models.LineItem {
		return []models.LineItem{}
	})
	if err != nil {
		return CheckoutResult{}, err
	}
	s.pending.drop(s.owner)

	s.logger.Info("checkout confirmed",
		zap.String("order_id", order.ID),
		zap.Int("total", order.Total),
		zap.Int("item_count", order.ItemCount),
	)
	s.announce(s.checkoutMessage)

	return CheckoutResult{
		Status:        CheckoutConfirmed,
		Message:       s.checkoutMessage,
		RedirectTo:    s.redirectTo,
		RedirectAfter: s.redirectAfter,
		Order:         &order,
	}, nil
}

// Items returns a copy of the current line items in insertion order.
func (s *CartStore) Items() []models.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *CartStore) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sumTotal(s.items)
}

func (s *CartStore) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sumCount(s.items)
}

func (s *CartStore) IsEmpty() bool {
	return s.Len() == 0
}

func (s *CartStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *CartStore) Snapshot() models.CartSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.LineItem, len(s.items))
	copy(items, s.items)
	return models.CartSnapshot{
		Items:     items,
		Total:     sumTotal(items),
		ItemCount: sumCount(items),
		Empty:     len(items) == 0,
	}
}

// Subscribe registers fn for every later mutation and returns a function
// that removes it again.
func (s *CartStore) Subscribe(fn Subscriber) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.nextSubID++
	id := s.nextSubID
	s.subscribers = append(s.subscribers, subscription{id: id, fn: fn})

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

func (s *CartStore) find(id string) (models.LineItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := indexOf(s.items, id); i >= 0 {
		return s.items[i], true
	}
	return models.LineItem{}, false
}

// commit must be called with opMu held. mutate works on a private copy.
func (s *CartStore) commit(ctx context.Context, mutate func([]models.LineItem) []models.LineItem) error {
	s.mu.Lock()
	draft := make([]models.LineItem, len(s.items))
	copy(draft, s.items)
	next := mutate(draft)

	payload, err := EncodeCart(next)
	if err == nil {
		err = s.kv.Set(ctx, CartKey, payload)
	}
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("persist cart: %w", err)
	}
	s.items = next
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *CartStore) notify() {
	s.subMu.Lock()
	subs := make([]subscription, len(s.subscribers))
	copy(subs, s.subscribers)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(s)
	}
}

func (s *CartStore) announce(message string) {
	if s.announcer != nil {
		s.announcer.Announce(message)
	}
}

func indexOf(items []models.LineItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func sumTotal(items []models.LineItem) int {
	total := 0
	for _, item := range items {
		total += item.Price * item.Quantity
	}
	return total
}

func sumCount(items []models.LineItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}
