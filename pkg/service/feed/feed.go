package feed

import (
	"sync"

	"github.com/teleskin-lab/teleskin/pkg/domain/model"
	"github.com/teleskin-lab/teleskin/pkg/domain/types"
)

// Feed is one portal's in-memory notification queue, newest first.
// It is never persisted: a restart resets every feed to its seed set.
type Feed struct {
	mu    sync.Mutex
	items []*model.Notification
}

// New creates a feed pre-populated with the given seed notifications
func New(seed ...*model.Notification) *Feed {
	f := &Feed{}
	for _, n := range seed {
		f.Enqueue(n)
	}
	return f
}

// Enqueue prepends a notification to the feed
func (f *Feed) Enqueue(n *model.Notification) {
	if n == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	copied := *n
	f.items = append([]*model.Notification{&copied}, f.items...)
}

// List returns all notifications, newest first
func (f *Feed) List() []*model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := make([]*model.Notification, len(f.items))
	for i, n := range f.items {
		copied := *n
		result[i] = &copied
	}
	return result
}

// MarkAllRead sets every notification's read flag
func (f *Feed) MarkAllRead() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, n := range f.items {
		n.Read = true
	}
}

// Delete removes one notification regardless of its read state.
// It reports whether the ID matched an entry.
func (f *Feed) Delete(id types.NotificationID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, n := range f.items {
		if n.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return true
		}
	}
	return false
}

// UnreadCount returns the number of unread notifications
func (f *Feed) UnreadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, n := range f.items {
		if !n.Read {
			count++
		}
	}
	return count
}
