package server

import (
	"sync"
	"time"
)

const ChatSeenTTL = 10 * time.Minute

// seenSet remembers chat line IDs so at-least-once deliveries are processed once
type seenSet struct {
	mu  sync.Mutex
	ids map[string]time.Time
	ttl time.Duration
}

func newSeenSet(ttl time.Duration) *seenSet {
	return &seenSet{ids: make(map[string]time.Time), ttl: ttl}
}

// firstSeen marks id and reports whether it was new
func (s *seenSet) firstSeen(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = time.Now()
	return true
}

// forget drops id so a later retry counts as new
func (s *seenSet) forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ids, id)
}

func (s *seenSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

func (s *seenSet) cleanup(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.ids {
		if now.Sub(t) > s.ttl {
			delete(s.ids, id)
		}
	}
}

func (s *seenSet) run(interval time.Duration, stopCh <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			s.cleanup(now)
		case <-stopCh:
			return
		}
	}
}
