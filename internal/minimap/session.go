package minimap

import (
	"fmt"
	"minimap_sync/internal/dataType"
	"minimap_sync/internal/reconcile"
	"minimap_sync/internal/settings"
	"minimap_sync/internal/tunnel"
	"minimap_sync/internal/visibility"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

type Options struct {
	PlayerID   int
	ModName    string
	ChannelTag string
	Transport  tunnel.Transport
	Store      *settings.Store
	Status     tunnel.StatusSink
	Logger     *zap.Logger
}

// Session is the per-game wiring of tunnel, reconciler, settings and
// visibility. The host integration calls the On* hooks.
type Session struct {
	mu         sync.Mutex
	channel    *tunnel.Channel
	reconciler *reconcile.Reconciler
	store      *settings.Store
	vis        *visibility.Sync
	hosting    atomic.Bool
	logger     *zap.Logger
}

func NewSession(opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("session requires a settings store")
	}
	tag := opts.ChannelTag
	if tag == "" {
		tag = tunnel.DefaultChannelTag
	}
	codec, err := tunnel.NewCodec(tag)
	if err != nil {
		return nil, err
	}

	rec := reconcile.New(opts.Store, logger.Named("reconcile"))
	ch, err := tunnel.NewChannel(tunnel.ChannelOptions{
		OriginID:   opts.PlayerID,
		ModName:    opts.ModName,
		Codec:      codec,
		Transport:  opts.Transport,
		Handler:    rec,
		StatusSink: opts.Status,
		Logger:     logger.Named("tunnel"),
	})
	if err != nil {
		return nil, err
	}

	return &Session{
		channel:    ch,
		reconciler: rec,
		store:      opts.Store,
		vis:        visibility.NewSync(),
		logger:     logger,
	}, nil
}

func (s *Session) Channel() *tunnel.Channel {
	return s.channel
}

func (s *Session) Reconciler() *reconcile.Reconciler {
	return s.reconciler
}

// SetTransport attaches the chat transport once it exists
func (s *Session) SetTransport(t tunnel.Transport) {
	s.channel.SetTransport(t)
}

func (s *Session) Settings() dataType.MinimapSettings {
	return s.store.Current()
}

func (s *Session) LocalSettings() dataType.MinimapSettings {
	return s.store.Local()
}

func (s *Session) Overridden() bool {
	return s.store.Overridden()
}

func (s *Session) Hosting() bool {
	return s.hosting.Load()
}

// OnOutboundMessage decides whether an outgoing chat line reaches the transport
func (s *Session) OnOutboundMessage(line string) bool {
	return s.channel.OnOutboundMessage(line)
}

// OnInboundMessage observes a delivered chat line. Call it from the
// distribution point and from the local render point.
func (s *Session) OnInboundMessage(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channel.OnInboundMessage(line)
}

// OnTick reconciles object visibility with the effective settings
func (s *Session) OnTick(scene visibility.Scene) {
	cfg := s.store.Current()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vis.Tick(cfg, scene)
}

func (s *Session) Say(text string) error {
	return s.channel.Send(text)
}

func (s *Session) Status(msg string) error {
	return s.channel.SendStatus(msg)
}

// PushOverride announces this peer's local settings to every peer
func (s *Session) PushOverride() error {
	if err := s.broadcastLocal(); err != nil {
		return err
	}
	s.hosting.Store(true)
	return s.Status("Host override enabled")
}

func (s *Session) broadcastLocal() error {
	payload := settings.FormatPayload(s.store.Local())
	return s.channel.Broadcast(dataType.SignatureHostOverrideSettings, payload)
}

// DisableOverride tells every peer to go back to its own configuration
func (s *Session) DisableOverride() error {
	if err := s.channel.Broadcast(dataType.SignatureHostOverrideDisabled, dataType.NullPayload); err != nil {
		return err
	}
	s.hosting.Store(false)
	return s.Status("Host override disabled")
}

// SetLocal saves a local edit. While this peer is pushing an override the
// new settings are broadcast again without a new status line.
func (s *Session) SetLocal(next dataType.MinimapSettings) error {
	if err := s.store.SetLocal(next); err != nil {
		return err
	}
	if s.hosting.Load() {
		return s.broadcastLocal()
	}
	return nil
}

// Resync repeats every announcement this peer has made, for late joiners
func (s *Session) Resync() error {
	if s.channel.Registry().Len() == 0 {
		return nil
	}
	s.logger.Debug("[SESSION] Re-broadcasting recorded announcements")
	return s.channel.Rebroadcast()
}
