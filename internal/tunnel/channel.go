package tunnel

import (
	"errors"
	"fmt"
	"minimap_sync/internal/dataType"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

var ErrNoTransport = errors.New("no chat transport")

// Transport is the host chat broadcast. It delivers every line to all
// participants, the sender included, at least once and in no particular order.
type Transport interface {
	Send(line string) error
}

// FrameHandler receives decoded control frames
type FrameHandler interface {
	Apply(frame dataType.ControlFrame)
}

// StatusSink shows own-mod status lines locally instead of in shared chat
type StatusSink interface {
	Push(text string)
}

// StatusPrefix is the human-readable tag carried by this mod's status lines
func StatusPrefix(modName string) string {
	return "<color=#00ffffff>[" + modName + "]</color> "
}

type ChannelOptions struct {
	OriginID   int
	ModName    string
	Codec      *Codec
	Transport  Transport
	Handler    FrameHandler
	StatusSink StatusSink
	Logger     *zap.Logger
}

// Channel sits at the transport boundary and separates human chat,
// own status lines and tunneled control frames.
type Channel struct {
	originID     int
	statusPrefix string
	codec        *Codec
	transport    Transport
	handler      FrameHandler
	status       StatusSink
	registry     *dataType.BroadcastRegistry
	logger       *zap.Logger

	lastFrame uint64
	hasLast   bool
}

func NewChannel(opts ChannelOptions) (*Channel, error) {
	if opts.Codec == nil {
		return nil, fmt.Errorf("channel requires a codec")
	}
	if opts.ModName == "" {
		return nil, fmt.Errorf("channel requires a mod name")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Channel{
		originID:     opts.OriginID,
		statusPrefix: StatusPrefix(opts.ModName),
		codec:        opts.Codec,
		transport:    opts.Transport,
		handler:      opts.Handler,
		status:       opts.StatusSink,
		registry:     dataType.NewBroadcastRegistry(),
		logger:       logger,
	}, nil
}

func (c *Channel) Registry() *dataType.BroadcastRegistry {
	return c.registry
}

func (c *Channel) SetHandler(h FrameHandler) {
	c.handler = h
}

func (c *Channel) SetTransport(t Transport) {
	c.transport = t
}

// OnOutboundMessage reports whether line may reach the transport.
// Control frames always pass, even when they also carry the status prefix.
func (c *Channel) OnOutboundMessage(line string) bool {
	if strings.Contains(line, c.codec.Tag()) {
		return true
	}
	if strings.HasPrefix(line, c.statusPrefix) {
		if c.status != nil {
			c.status.Push(strings.TrimPrefix(line, c.statusPrefix))
		}
		return false
	}
	return true
}

// Send pushes a human chat line through the outbound filter
func (c *Channel) Send(line string) error {
	if !c.OnOutboundMessage(line) {
		return nil
	}
	return c.send(line)
}

// SendStatus shows an informational line to the local player only
func (c *Channel) SendStatus(msg string) error {
	return c.Send(c.statusPrefix + msg)
}

// Broadcast records payload as the last announcement for signature and sends
// the encoded frame straight to the transport.
func (c *Channel) Broadcast(signature, payload string) error {
	if payload == "" {
		payload = dataType.NullPayload
	}
	wire, err := c.codec.Encode(c.originID, signature, payload)
	if err != nil {
		return fmt.Errorf("broadcast %s: %w", signature, err)
	}
	c.registry.Record(signature, payload)
	c.logger.Debug(fmt.Sprintf("[TUNNEL] Broadcasting %s from %d: %s", signature, c.originID, payload))
	return c.send(wire)
}

// Rebroadcast re-sends every recorded announcement in its original send order
func (c *Channel) Rebroadcast() error {
	var errs []error
	for _, e := range c.registry.Entries() {
		wire, err := c.codec.Encode(c.originID, e.Signature, e.Payload)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := c.send(wire); err != nil {
			errs = append(errs, fmt.Errorf("rebroadcast %s: %w", e.Signature, err))
		}
	}
	return errors.Join(errs...)
}

// OnInboundMessage runs for every chat line seen at the distribution point
// and at the local render point. Lines that are not control frames are ignored.
func (c *Channel) OnInboundMessage(line string) {
	if line == "" {
		return
	}
	frame, ok := c.codec.Decode(line)
	if !ok {
		return
	}

	// the same delivery is usually observed at both interception points.
	// Handlers are idempotent, so skipping the repeat only saves work.
	h := xxhash.Sum64String(line)
	if c.hasLast && c.lastFrame == h {
		c.logger.Debug(fmt.Sprintf("[TUNNEL] Skipping repeated %s from %d", frame.Signature, frame.OriginID))
		return
	}
	c.lastFrame = h
	c.hasLast = true

	if c.handler == nil {
		c.logger.Debug(fmt.Sprintf("[TUNNEL] No handler, dropped %s from %d", frame.Signature, frame.OriginID))
		return
	}
	c.logger.Info(fmt.Sprintf("[TUNNEL] Received %s from %d", frame.Signature, frame.OriginID))
	c.handler.Apply(frame)
}

func (c *Channel) send(line string) error {
	if c.transport == nil {
		return ErrNoTransport
	}
	return c.transport.Send(line)
}
