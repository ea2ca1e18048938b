package dataType

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

type window struct {
	second int64
	count  int64
}

type senderWindow struct {
	slots    []window
	lastSeen int64
}

func (w *senderWindow) add(now int64) {
	idx := now % int64(len(w.slots))
	if w.slots[idx].second != now {
		w.slots[idx] = window{second: now}
	}
	w.slots[idx].count++
	w.lastSeen = now
}

func (w *senderWindow) sum(now int64) int64 {
	var total int64
	for _, s := range w.slots {
		if now-s.second < int64(len(w.slots)) {
			total += s.count
		}
	}
	return total
}

type floodShard struct {
	mu      sync.Mutex
	senders map[uint64]*senderWindow
}

// FloodCounter counts chat lines per sender over a sliding window of whole seconds
type FloodCounter struct {
	shards []*floodShard
	span   int64
	limit  int64
	now    func() time.Time
}

func NewFloodCounter(limit int64, span time.Duration, shards int) *FloodCounter {
	if shards <= 0 {
		shards = 16
	}
	seconds := int64(span / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	fc := &FloodCounter{
		shards: make([]*floodShard, shards),
		span:   seconds,
		limit:  limit,
		now:    time.Now,
	}
	for i := range fc.shards {
		fc.shards[i] = &floodShard{senders: make(map[uint64]*senderWindow)}
	}
	return fc
}

func (fc *FloodCounter) shard(h uint64) *floodShard {
	return fc.shards[h%uint64(len(fc.shards))]
}

// Allow records one line from sender and reports whether it is within the limit.
// A non-positive limit disables the check.
func (fc *FloodCounter) Allow(sender string) bool {
	if fc.limit <= 0 {
		return true
	}
	now := fc.now().Unix()
	h := xxhash.Sum64String(sender)
	sh := fc.shard(h)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	w, ok := sh.senders[h]
	if !ok {
		w = &senderWindow{slots: make([]window, fc.span)}
		sh.senders[h] = w
	}
	if w.sum(now) >= fc.limit {
		return false
	}
	w.add(now)
	return true
}

// GC forgets senders idle for longer than the window
func (fc *FloodCounter) GC() {
	now := fc.now().Unix()
	for _, sh := range fc.shards {
		sh.mu.Lock()
		for k, w := range sh.senders {
			if now-w.lastSeen > fc.span {
				delete(sh.senders, k)
			}
		}
		sh.mu.Unlock()
	}
}

func (fc *FloodCounter) Len() int {
	n := 0
	for _, sh := range fc.shards {
		sh.mu.Lock()
		n += len(sh.senders)
		sh.mu.Unlock()
	}
	return n
}
