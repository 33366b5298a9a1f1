package store

import (
	"sync"
	"time"

	"github.com/yeremiapane/storefront-notify/models"
)

// NotificationStore holds the process-local notification feed. Newest
// entries sit at the head of the slice. The list lives and dies with the
// process; there is no persistence behind it.
type NotificationStore struct {
	mu     sync.Mutex
	items  []models.Notification
	lastID int64
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{items: []models.Notification{}}
}

// Append assigns an ID and inserts the notification at the head of the
// list. IDs are wall-clock derived but bumped so they stay strictly
// increasing even when two inserts land in the same millisecond.
func (s *NotificationStore) Append(n models.Notification) models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := time.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	n.ID = id

	s.items = append([]models.Notification{n}, s.items...)
	return n
}

// ListAll returns a copy of the feed, newest first.
func (s *NotificationStore) ListAll() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Notification, len(s.items))
	copy(out, s.items)
	return out
}

// CountUnread returns how many notifications have not been read yet.
func (s *NotificationStore) CountUnread() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.items {
		if !n.Read {
			count++
		}
	}
	return count
}

// MarkAllRead flips every notification to read. Idempotent.
func (s *NotificationStore) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		s.items[i].Read = true
	}
}

// DeleteByID removes the notification with the given ID. Deleting an
// unknown ID is a no-op, not an error.
func (s *NotificationStore) DeleteByID(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.items {
		if n.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// Clear empties the feed.
func (s *NotificationStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = []models.Notification{}
}
