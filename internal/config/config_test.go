package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "config"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(base, "config", "minimap.yml"), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return base
}

func TestLoadMainConfig_MissingFile(t *testing.T) {
	cfg, err := LoadMainConfig(t.TempDir())
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Expected not-exist error, got %v", err)
	}
	if cfg == nil || cfg.Mode != ModeHost || cfg.ChannelTag != "Tyzeron.Minimap" {
		t.Errorf("Expected defaults alongside the error, got %+v", cfg)
	}
}

func TestLoadMainConfig_PartialFileKeepsDefaults(t *testing.T) {
	base := writeConfig(t, "mode: peer\nrelay_address: http://127.0.0.1:25560\nplayer_id: 3\nport: \"25561\"\n")

	cfg, err := LoadMainConfig(base)
	if err != nil {
		t.Fatalf("LoadMainConfig failed: %v", err)
	}
	if cfg.Mode != ModePeer || cfg.PlayerID != 3 || cfg.Port != "25561" {
		t.Errorf("File values not applied: %+v", cfg)
	}
	if cfg.WebPath != "/minimap" || cfg.SettingsDriver != SettingsDriverYAML {
		t.Errorf("Defaults lost: %+v", cfg)
	}
	if got := cfg.ResolvePath("config/x.yml"); got != filepath.Join(base, "config/x.yml") {
		t.Errorf("ResolvePath = %q", got)
	}
	if got := cfg.CallbackAddress(); got != "http://127.0.0.1:25561" {
		t.Errorf("CallbackAddress = %q", got)
	}
}

func TestLoadMainConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad mode", "mode: spectator\n"},
		{"peer without relay", "mode: peer\n"},
		{"tag with slash", "channel_tag: a/b\n"},
		{"bad driver", "settings_driver: postgres\n"},
		{"negative player", "player_id: -1\n"},
		{"web path", "web_path: minimap\n"},
		{"bad flood limit", "flood_limit: lots\n"},
		{"not yaml", "mode: [host\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadMainConfig(writeConfig(t, tt.body)); err == nil {
				t.Errorf("Expected error for %q", tt.body)
			}
		})
	}
}

func TestDefaultMainConfig_Valid(t *testing.T) {
	cfg := DefaultMainConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults should validate: %v", err)
	}
}
