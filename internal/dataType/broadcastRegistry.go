package dataType

import (
	"sort"
	"sync"
)

type broadcastEntry struct {
	payload string
	seq     int64
}

// BroadcastEntry is a registry record returned by Entries
type BroadcastEntry struct {
	Signature string
	Payload   string
}

// BroadcastRegistry remembers the payload this peer last sent for each signature.
// It is a local cache and is never transmitted.
type BroadcastRegistry struct {
	mu      sync.RWMutex
	entries map[string]broadcastEntry
	seq     int64
}

func NewBroadcastRegistry() *BroadcastRegistry {
	return &BroadcastRegistry{
		entries: make(map[string]broadcastEntry),
	}
}

// Record inserts or overwrites the payload for signature
func (r *BroadcastRegistry) Record(signature, payload string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	r.entries[signature] = broadcastEntry{payload: payload, seq: r.seq}
}

func (r *BroadcastRegistry) Get(signature string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[signature]
	return e.payload, ok
}

func (r *BroadcastRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Entries returns a copy of the registry ordered by the time each signature was last sent
func (r *BroadcastRegistry) Entries() []BroadcastEntry {
	r.mu.RLock()
	type seqEntry struct {
		BroadcastEntry
		seq int64
	}
	tmp := make([]seqEntry, 0, len(r.entries))
	for sig, e := range r.entries {
		tmp = append(tmp, seqEntry{BroadcastEntry{Signature: sig, Payload: e.payload}, e.seq})
	}
	r.mu.RUnlock()

	sort.Slice(tmp, func(i, j int) bool { return tmp[i].seq < tmp[j].seq })

	out := make([]BroadcastEntry, len(tmp))
	for i := range tmp {
		out[i] = tmp[i].BroadcastEntry
	}
	return out
}
