package client

import (
	"sync"
	"time"
)

// Entry is one successful upload in the current session.
type Entry struct {
	Name       string
	Size       int64
	URL        string
	UploadedAt time.Time
}

// Session keeps the uploads of a single process run. Nothing is persisted.
type Session struct {
	mu      sync.Mutex
	entries []Entry
}

func NewSession() *Session {
	return &Session{}
}

// Add records a successful upload; the newest entry is last.
func (s *Session) Add(result *UploadResult) Entry {
	entry := Entry{
		Name:       result.Name,
		Size:       result.Size,
		URL:        result.URL,
		UploadedAt: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return entry
}

// Entries returns a copy of the history in upload order.
func (s *Session) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...)
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
