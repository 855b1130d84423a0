// Package activity consumes user and task events, counts them in Prometheus
// and keeps a short per-user activity feed in memory.
package activity

import (
	"sync"
	"time"
)

// FeedSize is the number of entries kept per user.
const FeedSize = 50

// Entry types.
const (
	TypeRegistered    = "user_registered"
	TypeLoggedIn      = "user_logged_in"
	TypeTaskCreated   = "task_created"
	TypeTaskUpdated   = "task_updated"
	TypeTaskCompleted = "task_completed"
	TypeTaskReopened  = "task_reopened"
	TypeTaskDeleted   = "task_deleted"
)

// Entry is a single line in a user's activity feed.
type Entry struct {
	Type    string    `json:"type"`
	TaskID  string    `json:"taskId,omitempty"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Feed stores the most recent entries per user.
type Feed struct {
	mu      sync.RWMutex
	size    int
	entries map[string][]Entry
}

// NewFeed creates a feed keeping at most size entries per user.
func NewFeed(size int) *Feed {
	if size <= 0 {
		size = FeedSize
	}
	return &Feed{
		size:    size,
		entries: make(map[string][]Entry),
	}
}

// Add appends an entry for userID, dropping the oldest when full.
func (f *Feed) Add(userID string, e Entry) {
	if userID == "" {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	list := append(f.entries[userID], e)
	if len(list) > f.size {
		list = list[len(list)-f.size:]
	}
	f.entries[userID] = list
}

// Recent returns up to limit entries for userID, newest first. A limit of
// zero or less returns all of them.
func (f *Feed) Recent(userID string, limit int) []Entry {
	f.mu.RLock()
	defer f.mu.RUnlock()

	list := f.entries[userID]
	if limit <= 0 || limit > len(list) {
		limit = len(list)
	}

	result := make([]Entry, 0, limit)
	for i := len(list) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, list[i])
	}
	return result
}

// Users returns the number of users with at least one entry.
func (f *Feed) Users() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.entries)
}
