package settings

import (
	"errors"
	"fmt"
	"minimap_sync/internal/dataType"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// YAMLPersister keeps settings in a YAML file. A missing file yields defaults.
type YAMLPersister struct {
	Path string
}

func NewYAMLPersister(path string) *YAMLPersister {
	return &YAMLPersister{Path: path}
}

func (p *YAMLPersister) Load() (dataType.MinimapSettings, error) {
	cfg := dataType.DefaultMinimapSettings()

	data, err := os.ReadFile(p.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read settings file %s: %w", p.Path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return dataType.DefaultMinimapSettings(), fmt.Errorf("failed to parse settings file %s: %w", p.Path, err)
	}
	if err := Validate(cfg); err != nil {
		return dataType.DefaultMinimapSettings(), fmt.Errorf("invalid settings file %s: %w", p.Path, err)
	}
	return cfg, nil
}

func (p *YAMLPersister) Save(s dataType.MinimapSettings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.Path), 0755); err != nil {
		return err
	}
	tmp := p.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, p.Path)
}
