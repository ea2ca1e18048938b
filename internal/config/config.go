package config

import (
	"fmt"
	"os"
	"path/filepath"

	"minimap_sync/internal/utils"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	ModeHost = "host"
	ModePeer = "peer"

	SettingsDriverYAML   = "yaml"
	SettingsDriverSQLite = "sqlite"
)

type MainConfig struct {
	Mode             string `yaml:"mode" validate:"oneof=host peer"`
	Port             string `yaml:"port" validate:"required,numeric"`
	WebPath          string `yaml:"web_path" validate:"required,startswith=/"`
	RelayAddress     string `yaml:"relay_address" validate:"omitempty,url"`
	AdvertiseAddress string `yaml:"advertise_address" validate:"omitempty,url"`
	NodeName         string `yaml:"node_name" validate:"required"`
	PlayerID         int    `yaml:"player_id" validate:"gte=0"`
	ModName          string `yaml:"mod_name" validate:"required,printascii"`
	ChannelTag       string `yaml:"channel_tag" validate:"required,printascii,excludes=/"`
	LogPath          string `yaml:"log_path" validate:"required"`
	SettingsDriver   string `yaml:"settings_driver" validate:"oneof=yaml sqlite"`
	SettingsPath     string `yaml:"settings_path" validate:"required"`
	SendRetries      int    `yaml:"send_retries" validate:"gte=0,lte=10"`
	FloodLimit       string `yaml:"flood_limit"`

	basePath string
}

var validate = validator.New()

func DefaultMainConfig() MainConfig {
	return MainConfig{
		Mode:           ModeHost,
		Port:           "25560",
		WebPath:        "/minimap",
		NodeName:       "Minimap Host",
		PlayerID:       0,
		ModName:        "Minimap",
		ChannelTag:     "Tyzeron.Minimap",
		LogPath:        "log",
		SettingsDriver: SettingsDriverYAML,
		SettingsPath:   "config/minimap_settings.yml",
		SendRetries:    2,
		FloodLimit:     "30/10s",
	}
}

// LoadMainConfig Read the configuration file and return the configuration object.
// Keys missing from the file keep their default values.
func LoadMainConfig(basePath string) (*MainConfig, error) {
	defaultCfg := DefaultMainConfig()

	if basePath == "" {
		exePath, err := os.Executable()
		if err != nil {
			return nil, err
		}
		basePath = filepath.Dir(exePath)
	}
	defaultCfg.basePath = basePath
	configPath := filepath.Join(basePath, "config", "minimap.yml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return &defaultCfg, err
	}

	cfg := defaultCfg
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &defaultCfg, fmt.Errorf("[ERROR] failed to parse config file %s: %w", configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return &defaultCfg, fmt.Errorf("[ERROR] invalid config file %s: %w", configPath, err)
	}

	return &cfg, nil
}

func (c *MainConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Mode == ModePeer && c.RelayAddress == "" {
		return fmt.Errorf("relay_address is required in peer mode")
	}
	if _, _, err := utils.ParseRate(c.FloodLimit); err != nil {
		return fmt.Errorf("flood_limit: %w", err)
	}
	return nil
}

// ResolvePath makes p relative to the config base path
func (c *MainConfig) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || c.basePath == "" {
		return p
	}
	return filepath.Join(c.basePath, p)
}

// ListenAddress returns the address this node's HTTP handlers bind to
func (c *MainConfig) ListenAddress() string {
	return ":" + c.Port
}

// CallbackAddress is the base URL the relay uses to reach this node
func (c *MainConfig) CallbackAddress() string {
	if c.AdvertiseAddress != "" {
		return c.AdvertiseAddress
	}
	return "http://127.0.0.1:" + c.Port
}
