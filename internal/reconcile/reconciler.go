package reconcile

import (
	"fmt"
	"minimap_sync/internal/dataType"
	"minimap_sync/internal/settings"

	"go.uber.org/zap"
)

// Snapshot is the part of the settings store the reconciler mutates
type Snapshot interface {
	ApplyHostOverride(delta settings.Delta)
	RestoreFromConfig() error
}

// Handler applies one control topic to the snapshot
type Handler func(store Snapshot, frame dataType.ControlFrame) error

// Reconciler maps decoded control frames onto the settings store
type Reconciler struct {
	store    Snapshot
	handlers map[string]Handler
	logger   *zap.Logger
}

func New(store Snapshot, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Reconciler{
		store:    store,
		handlers: make(map[string]Handler),
		logger:   logger,
	}
	r.Register(dataType.SignatureHostOverrideSettings, applyHostOverride)
	r.Register(dataType.SignatureHostOverrideDisabled, restoreFromConfig)
	return r
}

// Register adds or replaces the handler for a signature
func (r *Reconciler) Register(signature string, h Handler) {
	r.handlers[signature] = h
}

func (r *Reconciler) SetStore(store Snapshot) {
	r.store = store
}

// Apply never fails: problems are logged and the frame is dropped
func (r *Reconciler) Apply(frame dataType.ControlFrame) {
	if r.store == nil {
		r.logger.Debug(fmt.Sprintf("[RECONCILE] No settings store, dropped %s from %d", frame.Signature, frame.OriginID))
		return
	}
	h, ok := r.handlers[frame.Signature]
	if !ok {
		r.logger.Debug(fmt.Sprintf("[RECONCILE] Ignoring unknown signature %q from %d", frame.Signature, frame.OriginID))
		return
	}
	if err := h(r.store, frame); err != nil {
		r.logger.Error(fmt.Sprintf("[RECONCILE] %s from %d: %v", frame.Signature, frame.OriginID, err))
		return
	}
	r.logger.Info(fmt.Sprintf("[RECONCILE] Applied %s from %d", frame.Signature, frame.OriginID))
}

func applyHostOverride(store Snapshot, frame dataType.ControlFrame) error {
	delta, err := settings.ParseDelta(frame.Payload)
	// the valid part of a payload is still applied
	store.ApplyHostOverride(delta)
	return err
}

func restoreFromConfig(store Snapshot, _ dataType.ControlFrame) error {
	return store.RestoreFromConfig()
}
