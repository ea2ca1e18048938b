package server

import (
	"context"
	"errors"
	"fmt"
	"minimap_sync/internal/config"
	"minimap_sync/internal/minimap"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Node is the HTTP side of one participant. In host mode it also runs the relay.
type Node struct {
	cfg     *config.MainConfig
	Relay   *Relay
	Peer    *PeerClient
	session *minimap.Session
	mux     *http.ServeMux
	logger  *zap.Logger
}

// NewNode wires the session hooks to the chat transport
func NewNode(cfg *config.MainConfig, session *minimap.Session, relayLogger, peerLogger *zap.Logger) *Node {
	if peerLogger == nil {
		peerLogger = zap.NewNop()
	}
	n := &Node{
		cfg:     cfg,
		session: session,
		mux:     http.NewServeMux(),
		logger:  peerLogger,
	}

	relayURL := cfg.RelayAddress
	if cfg.Mode == config.ModeHost {
		n.Relay = NewRelay(cfg, relayLogger)
		n.Relay.OnDistribute(session.OnInboundMessage)
		n.Relay.OnJoin(func(address string) {
			if err := session.Resync(); err != nil {
				n.logger.Warn(fmt.Sprintf("[PEER] Resync for %s failed: %v", address, err))
			}
		})
		n.Relay.Register(n.mux)
		n.Relay.Subscribe(cfg.CallbackAddress())
		relayURL = cfg.CallbackAddress()
	}

	n.Peer = NewPeerClient(cfg, relayURL, peerLogger)
	n.Peer.OnDeliver(session.OnInboundMessage)
	n.Peer.Register(n.mux)
	session.SetTransport(n.Peer)

	return n
}

func (n *Node) Handler() http.Handler {
	return n.mux
}

// StartServer serves the node until ctx is cancelled
func StartServer(ctx context.Context, n *Node) error {
	srv := &http.Server{
		Addr:              n.cfg.ListenAddress(),
		Handler:           n.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	stopCh := make(chan struct{})
	defer close(stopCh)
	go n.Peer.StartCleanup(stopCh)
	if n.Relay != nil {
		go n.Relay.StartCleanup(stopCh)
	}

	serverErr := make(chan error, 1)
	go func() {
		n.logger.Info(fmt.Sprintf("HTTP Server listening on %s ...", srv.Addr))
		serverErr <- srv.ListenAndServe()
	}()

	if n.Relay == nil {
		go n.joinRelay(ctx)
	}

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if n.Relay != nil {
			n.Relay.Wait()
		}
		return nil
	}
}

// joinRelay retries until the relay accepts the subscription
func (n *Node) joinRelay(ctx context.Context) {
	backoff := 500 * time.Millisecond
	for {
		err := n.Peer.Join()
		if err == nil {
			n.logger.Info(fmt.Sprintf("[PEER] Joined relay %s", n.cfg.RelayAddress))
			return
		}
		n.logger.Warn(fmt.Sprintf("[PEER] Join failed: %v", err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 10*time.Second {
			backoff *= 2
		}
	}
}
