package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"minimap_sync/internal/config"
	"minimap_sync/internal/dataType"
	"minimap_sync/internal/utils"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

const maxChatBody = 64 << 10

type joinRequest struct {
	Address string `json:"address"`
}

// Relay is the distribution point of the chat transport. Every accepted line
// is observed locally and then delivered to each subscribed peer, the sender included.
type Relay struct {
	cfg          *config.MainConfig
	mu           sync.RWMutex
	subscribers  map[string]struct{}
	seen         *seenSet
	flood        *dataType.FloodCounter
	client       *http.Client
	onDistribute func(line string)
	onJoin       func(address string)
	inflight     sync.WaitGroup
	logger       *zap.Logger
}

func NewRelay(cfg *config.MainConfig, logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit, span, err := utils.ParseRate(cfg.FloodLimit)
	if err != nil {
		logger.Warn(fmt.Sprintf("[RELAY] Ignoring flood_limit %q: %v", cfg.FloodLimit, err))
		limit = 0
	}
	return &Relay{
		cfg:         cfg,
		subscribers: make(map[string]struct{}),
		seen:        newSeenSet(ChatSeenTTL),
		flood:       dataType.NewFloodCounter(limit, span, 16),
		client:      &http.Client{Timeout: 5 * time.Second},
		logger:      logger,
	}
}

// OnDistribute sets the observer run for every accepted line before fan-out
func (r *Relay) OnDistribute(fn func(line string)) {
	r.onDistribute = fn
}

// OnJoin sets the callback run after a peer subscribes
func (r *Relay) OnJoin(fn func(address string)) {
	r.onJoin = fn
}

func (r *Relay) Register(mux *http.ServeMux) {
	mux.HandleFunc(r.cfg.WebPath+"/chat", r.HandleChat)
	mux.HandleFunc(r.cfg.WebPath+"/join", r.HandleJoin)
}

// StartCleanup expires remembered line IDs and idle flood windows until stopCh closes
func (r *Relay) StartCleanup(stopCh <-chan struct{}) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			r.seen.cleanup(now)
			r.flood.GC()
		case <-stopCh:
			return
		}
	}
}

// Subscribe adds a peer callback base URL and reports whether it was new
func (r *Relay) Subscribe(address string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subscribers[address]; ok {
		return false
	}
	r.subscribers[address] = struct{}{}
	return true
}

func (r *Relay) Subscribers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.subscribers))
	for addr := range r.subscribers {
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}

// Wait blocks until every delivery started so far has finished
func (r *Relay) Wait() {
	r.inflight.Wait()
}

func (r *Relay) HandleChat(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, maxChatBody))
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := req.Body.Close(); err != nil {
			r.logger.Warn(fmt.Sprintf("[RELAY] Failed to close request body: %v", err))
		}
	}()

	var line dataType.ChatLine
	if err := json.Unmarshal(body, &line); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if line.ID == "" || line.Text == "" {
		http.Error(w, "Missing id or text", http.StatusBadRequest)
		return
	}

	// a retried send is acknowledged again but distributed once
	if r.seen.firstSeen(line.ID) {
		if !r.flood.Allow(strconv.Itoa(line.SenderID)) {
			r.seen.forget(line.ID)
			r.logger.Warn(fmt.Sprintf("[RELAY] Flood limit reached for sender %d, dropping %s", line.SenderID, line.ID))
			http.Error(w, "Too many lines", http.StatusTooManyRequests)
			return
		}
		r.distribute(line)
	} else {
		r.logger.Debug(fmt.Sprintf("[RELAY] Duplicate line %s from %d", line.ID, line.SenderID))
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ACK")); err != nil {
		r.logger.Error(fmt.Sprintf("[ERROR] Failed to write ACK response: %v", err))
	}
}

func (r *Relay) HandleJoin(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var jr joinRequest
	if err := json.NewDecoder(io.LimitReader(req.Body, maxChatBody)).Decode(&jr); err != nil || jr.Address == "" {
		http.Error(w, "Invalid join request", http.StatusBadRequest)
		return
	}

	if r.Subscribe(jr.Address) {
		r.logger.Info(fmt.Sprintf("[RELAY] Peer joined: %s", jr.Address))
		if r.onJoin != nil {
			go r.onJoin(jr.Address)
		}
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ACK")); err != nil {
		r.logger.Error(fmt.Sprintf("[ERROR] Failed to write ACK response: %v", err))
	}
}

func (r *Relay) distribute(line dataType.ChatLine) {
	if r.onDistribute != nil {
		r.onDistribute(line.Text)
	}

	data, err := json.Marshal(line)
	if err != nil {
		r.logger.Error(fmt.Sprintf("[ERROR] Failed to marshal chat line: %v", err))
		return
	}
	for _, addr := range r.Subscribers() {
		r.inflight.Add(1)
		go func(addr string) {
			defer r.inflight.Done()
			r.deliver(addr, data)
		}(addr)
	}
}

func (r *Relay) deliver(address string, data []byte) {
	url := address + r.cfg.WebPath + "/deliver"
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(data))
	if err != nil {
		r.logger.Error(fmt.Sprintf("[ERROR] Failed to create request for peer %s: %v", address, err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn(fmt.Sprintf("[RELAY] Failed to deliver to peer %s: %v", address, err))
		return
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			r.logger.Warn(fmt.Sprintf("[RELAY] Failed to close response body from %s: %v", address, err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		r.logger.Warn(fmt.Sprintf("[RELAY] Peer %s returned status %d", address, resp.StatusCode))
	}
}
