package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"minimap_sync/internal/config"
	"minimap_sync/internal/dataType"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrFloodLimited is returned when the relay refuses a line for exceeding the sender's flood limit
var ErrFloodLimited = errors.New("relay flood limit reached")

// PeerClient is one participant's end of the chat transport: it posts lines to
// the relay and renders what the relay delivers back.
type PeerClient struct {
	cfg       *config.MainConfig
	relayURL  string
	client    *http.Client
	seen      *seenSet
	retries   int
	onDeliver func(line string)
	logger    *zap.Logger
}

func NewPeerClient(cfg *config.MainConfig, relayURL string, logger *zap.Logger) *PeerClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeerClient{
		cfg:      cfg,
		relayURL: strings.TrimRight(relayURL, "/"),
		client:   &http.Client{Timeout: 5 * time.Second},
		seen:     newSeenSet(ChatSeenTTL),
		retries:  cfg.SendRetries,
		logger:   logger,
	}
}

// OnDeliver sets the local render hook
func (p *PeerClient) OnDeliver(fn func(line string)) {
	p.onDeliver = fn
}

func (p *PeerClient) Register(mux *http.ServeMux) {
	mux.HandleFunc(p.cfg.WebPath+"/deliver", p.HandleDeliver)
}

func (p *PeerClient) StartCleanup(stopCh <-chan struct{}) {
	p.seen.run(time.Minute, stopCh)
}

// Send posts text to the relay. Failed posts are retried with the same ID,
// so the relay may see a line more than once.
func (p *PeerClient) Send(text string) error {
	line := dataType.ChatLine{
		ID:        uuid.New().String(),
		SenderID:  p.cfg.PlayerID,
		Text:      text,
		Timestamp: time.Now().Unix(),
	}
	data, err := json.Marshal(line)
	if err != nil {
		return err
	}

	var errs []error
	for attempt := 0; attempt <= p.retries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
		}
		err := p.post(p.cfg.WebPath+"/chat", data)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrFloodLimited) {
			return fmt.Errorf("send chat line %s: %w", line.ID, err)
		}
		errs = append(errs, err)
		p.logger.Warn(fmt.Sprintf("[PEER] Send attempt %d for %s failed: %v", attempt+1, line.ID, err))
	}
	return fmt.Errorf("send chat line: %w", errors.Join(errs...))
}

// Join subscribes this peer's deliver endpoint at the relay
func (p *PeerClient) Join() error {
	data, err := json.Marshal(joinRequest{Address: p.cfg.CallbackAddress()})
	if err != nil {
		return err
	}
	return p.post(p.cfg.WebPath+"/join", data)
}

func (p *PeerClient) HandleDeliver(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var line dataType.ChatLine
	if err := json.NewDecoder(io.LimitReader(r.Body, maxChatBody)).Decode(&line); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if line.ID == "" {
		http.Error(w, "Missing id", http.StatusBadRequest)
		return
	}

	if p.seen.firstSeen(line.ID) && p.onDeliver != nil {
		p.onDeliver(line.Text)
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ACK")); err != nil {
		p.logger.Error(fmt.Sprintf("[ERROR] Failed to write ACK response: %v", err))
	}
}

func (p *PeerClient) post(path string, data []byte) error {
	req, err := http.NewRequest(http.MethodPost, p.relayURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			p.logger.Warn(fmt.Sprintf("[PEER] Failed to close response body: %v", err))
		}
	}()
	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrFloodLimited
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("relay returned status %d", resp.StatusCode)
	}
	return nil
}
