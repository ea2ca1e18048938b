package settings

import (
	"fmt"
	"minimap_sync/internal/dataType"
	"sync"

	"go.uber.org/zap"
)

// Persister loads and saves the local configuration
type Persister interface {
	Load() (dataType.MinimapSettings, error)
	Save(dataType.MinimapSettings) error
}

// Store holds the effective settings and the locally configured ones.
// While a host override is active, local edits are saved but not shown.
type Store struct {
	mu         sync.RWMutex
	local      dataType.MinimapSettings
	effective  dataType.MinimapSettings
	overridden bool
	persist    Persister
	logger     *zap.Logger
}

// NewStore loads the local configuration from p. A nil persister keeps
// settings in memory only.
func NewStore(p Persister, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	local := dataType.DefaultMinimapSettings()
	if p != nil {
		loaded, err := p.Load()
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		local = loaded
	}
	return &Store{
		local:     local,
		effective: local,
		persist:   p,
		logger:    logger,
	}, nil
}

func (s *Store) Current() dataType.MinimapSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.effective
}

func (s *Store) Local() dataType.MinimapSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.local
}

func (s *Store) Overridden() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overridden
}

// ApplyHostOverride writes delta over the effective settings and marks them as host owned
func (s *Store) ApplyHostOverride(delta Delta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.effective = delta.Apply(s.effective)
	s.overridden = true
}

// RestoreFromConfig drops any host override and goes back to the persisted configuration
func (s *Store) RestoreFromConfig() error {
	var (
		loaded dataType.MinimapSettings
		err    error
	)
	if s.persist != nil {
		loaded, err = s.persist.Load()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.persist != nil && err == nil {
		s.local = loaded
	}
	s.effective = s.local
	s.overridden = false
	if err != nil {
		return fmt.Errorf("reload settings: %w", err)
	}
	return nil
}

// SetLocal validates and persists a local edit
func (s *Store) SetLocal(next dataType.MinimapSettings) error {
	if err := Validate(next); err != nil {
		return err
	}
	if s.persist != nil {
		if err := s.persist.Save(next); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.local = next
	if !s.overridden {
		s.effective = next
	} else {
		s.logger.Debug("local settings saved while host override is active")
	}
	return nil
}
