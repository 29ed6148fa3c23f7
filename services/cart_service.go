package services

import (
	"context"

	"go.uber.org/zap"

	"storefront/repositories"
)

// CartService opens one CartStore per page session. Stores of the same
// visitor share the persisted cart and nothing else, so the last write wins.
type CartService struct {
	kv            repositories.KeyValueStore
	notifications *NotificationService
	submitter     OrderSubmitter
	pending       *PendingOrders
	logger        *zap.Logger
	opts          []CartOption
}

func NewCartService(kv repositories.KeyValueStore, notifications *NotificationService, submitter OrderSubmitter, logger *zap.Logger, opts ...CartOption) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if submitter == nil {
		submitter = NoopOrderSubmitter{}
	}
	return &CartService{
		kv:            kv,
		notifications: notifications,
		submitter:     submitter,
		pending:       NewPendingOrders(),
		logger:        logger,
		opts:          opts,
	}
}

func VisitorScope(visitorID string) string {
	return "visitor:" + visitorID + ":"
}

// Open builds a hydrated CartStore for visitorID.
func (s *CartService) Open(ctx context.Context, visitorID string) *CartStore {
	opts := []CartOption{
		WithLogger(s.logger.With(zap.String("visitor_id", visitorID))),
		WithOwner(visitorID),
		WithOrderSubmitter(s.submitter),
		WithPendingOrders(s.pending),
	}
	if s.notifications != nil {
		opts = append(opts, WithAnnouncer(s.notifications.Announcer(visitorID)))
	}
	opts = append(opts, s.opts...)

	store := NewCartStore(repositories.NewScopedStore(s.kv, VisitorScope(visitorID)), opts...)
	store.Hydrate(ctx)
	return store
}

func (s *CartService) Ping(ctx context.Context) error {
	return s.kv.Ping(ctx)
}
