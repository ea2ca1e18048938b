package server

import (
	"bytes"
	"encoding/json"
	"minimap_sync/internal/config"
	"minimap_sync/internal/dataType"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"
)

func testConfig() *config.MainConfig {
	cfg := config.DefaultMainConfig()
	return &cfg
}

func chatRequest(t *testing.T, line dataType.ChatLine) *http.Request {
	t.Helper()
	data, err := json.Marshal(line)
	if err != nil {
		t.Fatal(err)
	}
	return httptest.NewRequest(http.MethodPost, "/minimap/chat", bytes.NewBuffer(data))
}

type collectingPeer struct {
	mu    sync.Mutex
	lines []dataType.ChatLine
}

func (c *collectingPeer) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/minimap/deliver" {
			http.NotFound(w, r)
			return
		}
		var line dataType.ChatLine
		if err := json.NewDecoder(r.Body).Decode(&line); err != nil {
			t.Errorf("bad delivery: %v", err)
		}
		c.mu.Lock()
		c.lines = append(c.lines, line)
		c.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
}

func (c *collectingPeer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

func TestRelay_DistributesToEverySubscriber(t *testing.T) {
	r := NewRelay(testConfig(), zaptest.NewLogger(t))

	var observed []string
	r.OnDistribute(func(line string) { observed = append(observed, line) })

	peers := make([]*collectingPeer, 3)
	for i := range peers {
		peers[i] = &collectingPeer{}
		ts := httptest.NewServer(peers[i].handler(t))
		defer ts.Close()
		r.Subscribe(ts.URL)
	}

	w := httptest.NewRecorder()
	r.HandleChat(w, chatRequest(t, dataType.ChatLine{ID: "a", SenderID: 1, Text: "hello"}))
	r.Wait()

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 OK, got %d", w.Code)
	}
	if len(observed) != 1 || observed[0] != "hello" {
		t.Errorf("Expected distribution hook to see the line once, got %v", observed)
	}
	for i, p := range peers {
		if p.count() != 1 {
			t.Errorf("Peer %d received %d lines, want 1", i, p.count())
		}
	}
}

func TestRelay_DuplicateIDDistributedOnce(t *testing.T) {
	r := NewRelay(testConfig(), zaptest.NewLogger(t))
	count := 0
	r.OnDistribute(func(string) { count++ })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.HandleChat(w, chatRequest(t, dataType.ChatLine{ID: "same", Text: "retry"}))
		if w.Code != http.StatusOK {
			t.Errorf("Attempt %d: expected 200 OK, got %d", i, w.Code)
		}
	}
	if count != 1 {
		t.Errorf("Expected 1 distribution, got %d", count)
	}
}

func TestRelay_RejectsBadRequests(t *testing.T) {
	r := NewRelay(testConfig(), zaptest.NewLogger(t))

	tests := []struct {
		name string
		req  *http.Request
		code int
	}{
		{"wrong method", httptest.NewRequest(http.MethodGet, "/minimap/chat", nil), http.StatusMethodNotAllowed},
		{"bad json", httptest.NewRequest(http.MethodPost, "/minimap/chat", bytes.NewBufferString("{")), http.StatusBadRequest},
		{"missing id", chatRequest(t, dataType.ChatLine{Text: "x"}), http.StatusBadRequest},
		{"missing text", chatRequest(t, dataType.ChatLine{ID: "x"}), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.HandleChat(w, tt.req)
			if w.Code != tt.code {
				t.Errorf("Expected %d, got %d", tt.code, w.Code)
			}
		})
	}
}

func TestRelay_JoinSubscribesOnce(t *testing.T) {
	r := NewRelay(testConfig(), zaptest.NewLogger(t))
	joined := make(chan string, 2)
	r.OnJoin(func(addr string) { joined <- addr })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/minimap/join", bytes.NewBufferString(`{"address":"http://peer:1"}`))
		r.HandleJoin(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200 OK, got %d", w.Code)
		}
	}

	if subs := r.Subscribers(); len(subs) != 1 || subs[0] != "http://peer:1" {
		t.Errorf("Subscribers = %v", subs)
	}
	if got := <-joined; got != "http://peer:1" {
		t.Errorf("OnJoin got %q", got)
	}
	select {
	case extra := <-joined:
		t.Errorf("OnJoin must run once per new peer, got extra %q", extra)
	default:
	}

	w := httptest.NewRecorder()
	r.HandleJoin(w, httptest.NewRequest(http.MethodPost, "/minimap/join", bytes.NewBufferString(`{}`)))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for empty address, got %d", w.Code)
	}
}

func TestRelay_FloodLimitPerSender(t *testing.T) {
	cfg := testConfig()
	cfg.FloodLimit = "2/10s"
	r := NewRelay(cfg, zaptest.NewLogger(t))

	var observed int
	r.OnDistribute(func(string) { observed++ })

	codes := make([]int, 0, 4)
	for _, id := range []string{"a", "b", "c"} {
		w := httptest.NewRecorder()
		r.HandleChat(w, chatRequest(t, dataType.ChatLine{ID: id, SenderID: 7, Text: "spam"}))
		codes = append(codes, w.Code)
	}
	w := httptest.NewRecorder()
	r.HandleChat(w, chatRequest(t, dataType.ChatLine{ID: "d", SenderID: 8, Text: "hi"}))
	codes = append(codes, w.Code)

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests, http.StatusOK}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("Request %d: expected %d, got %d", i, want[i], codes[i])
		}
	}
	if observed != 3 {
		t.Errorf("Expected 3 distributed lines, got %d", observed)
	}
}

func TestRelay_RefusedLineNotAcknowledgedOnRetry(t *testing.T) {
	cfg := testConfig()
	cfg.FloodLimit = "1/10s"
	r := NewRelay(cfg, zaptest.NewLogger(t))

	var observed []string
	r.OnDistribute(func(line string) { observed = append(observed, line) })

	w := httptest.NewRecorder()
	r.HandleChat(w, chatRequest(t, dataType.ChatLine{ID: "a", SenderID: 3, Text: "one"}))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 OK, got %d", w.Code)
	}

	for attempt := 0; attempt < 2; attempt++ {
		w = httptest.NewRecorder()
		r.HandleChat(w, chatRequest(t, dataType.ChatLine{ID: "b", SenderID: 3, Text: "two"}))
		if w.Code != http.StatusTooManyRequests {
			t.Errorf("Attempt %d: expected 429, got %d", attempt, w.Code)
		}
	}
	if r.seen.len() != 1 {
		t.Errorf("Refused line must not be remembered, seen has %d ids", r.seen.len())
	}
	if len(observed) != 1 {
		t.Errorf("Expected one distributed line, got %v", observed)
	}
}
