package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yeremiapane/storefront-notify/models"
)

func TestAppendHeadInsertion(t *testing.T) {
	s := NewNotificationStore()

	first := s.Append(models.NewNotification("A", "first", "", ""))
	second := s.Append(models.NewNotification("B", "second", "", ""))

	list := s.ListAll()
	assert.Len(t, list, 2)
	assert.Equal(t, "B", list[0].Title)
	assert.Equal(t, "A", list[1].Title)
	assert.Greater(t, second.ID, first.ID)
}

func TestAppendAssignsUniqueIDs(t *testing.T) {
	s := NewNotificationStore()

	seen := make(map[int64]bool)
	for i := 0; i < 100; i++ {
		n := s.Append(models.NewNotification("title", "message", "", ""))
		assert.False(t, seen[n.ID], "duplicate id %d", n.ID)
		seen[n.ID] = true
	}
}

func TestCountUnreadAndMarkAllRead(t *testing.T) {
	s := NewNotificationStore()
	s.Append(models.NewNotification("A", "first", "", ""))
	s.Append(models.NewNotification("B", "second", "", ""))

	assert.Equal(t, 2, s.CountUnread())

	s.MarkAllRead()
	assert.Equal(t, 0, s.CountUnread())
	for _, n := range s.ListAll() {
		assert.True(t, n.Read)
	}

	// Idempotent
	s.MarkAllRead()
	assert.Equal(t, 0, s.CountUnread())
}

func TestDeleteByID(t *testing.T) {
	s := NewNotificationStore()
	a := s.Append(models.NewNotification("A", "first", "", ""))
	b := s.Append(models.NewNotification("B", "second", "", ""))

	s.DeleteByID(a.ID)
	list := s.ListAll()
	assert.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	// Unknown id is a no-op
	s.DeleteByID(999999)
	assert.Len(t, s.ListAll(), 1)
}

func TestClear(t *testing.T) {
	s := NewNotificationStore()
	s.Append(models.NewNotification("A", "first", "", ""))
	s.Append(models.NewNotification("B", "second", "", ""))

	s.Clear()
	assert.Empty(t, s.ListAll())
	assert.Equal(t, 0, s.CountUnread())
}

func TestListAllReturnsCopy(t *testing.T) {
	s := NewNotificationStore()
	s.Append(models.NewNotification("A", "first", "", ""))

	list := s.ListAll()
	list[0].Title = "mutated"

	assert.Equal(t, "A", s.ListAll()[0].Title)
}
