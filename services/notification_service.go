package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/models"
)

// NotificationService holds the transient confirmation messages of every
// visitor. A message is shown for ttl, then fades for fade, then is gone.
// The timers never touch cart state.
type NotificationService struct {
	ttl    time.Duration
	fade   time.Duration
	logger *zap.Logger

	mu     sync.Mutex
	queues map[string][]*notificationEntry
	closed bool
}

type notificationEntry struct {
	notification models.Notification
	timer        *time.Timer
}

func NewNotificationService(ttl, fade time.Duration, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		ttl:    ttl,
		fade:   fade,
		logger: logger,
		queues: make(map[string][]*notificationEntry),
	}
}

// Announcer binds the service to one visitor so a CartStore can use it.
func (s *NotificationService) Announcer(scope string) Announcer {
	return AnnouncerFunc(func(message string) {
		s.Announce(scope, message)
	})
}

func (s *NotificationService) Announce(scope, message string) models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := &notificationEntry{
		notification: models.Notification{
			ID:        uuid.NewString(),
			Message:   message,
			CreatedAt: time.Now(),
		},
	}
	if s.closed {
		return entry.notification
	}

	s.queues[scope] = append(s.queues[scope], entry)
	id := entry.notification.ID
	entry.timer = time.AfterFunc(s.ttl, func() { s.startFade(scope, id) })

	s.logger.Debug("notification shown", zap.String("scope", scope), zap.String("message", message))
	return entry.notification
}

func (s *NotificationService) startFade(scope, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.lookup(scope, id)
	if entry == nil || s.closed {
		return
	}
	entry.notification.Fading = true
	entry.timer = time.AfterFunc(s.fade, func() { s.remove(scope, id) })
}

func (s *NotificationService) remove(scope, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.queues[scope]
	for i, entry := range queue {
		if entry.notification.ID == id {
			queue = append(queue[:i], queue[i+1:]...)
			break
		}
	}
	if len(queue) == 0 {
		delete(s.queues, scope)
		return
	}
	s.queues[scope] = queue
}

func (s *NotificationService) lookup(scope, id string) *notificationEntry {
	for _, entry := range s.queues[scope] {
		if entry.notification.ID == id {
			return entry
		}
	}
	return nil
}

// Active lists the visitor's notifications, oldest first.
func (s *NotificationService) Active(scope string) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.queues[scope]
	out := make([]models.Notification, 0, len(queue))
	for _, entry := range queue {
		out = append(out, entry.notification)
	}
	return out
}

func (s *NotificationService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, queue := range s.queues {
		for _, entry := range queue {
			if entry.timer != nil {
				entry.timer.Stop()
			}
		}
	}
	s.queues = make(map[string][]*notificationEntry)
	s.closed = true
}
