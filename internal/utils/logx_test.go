package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogxManager_WritesPerLevelFiles(t *testing.T) {
	base := t.TempDir()
	m := NewManager(base, true)

	lg := m.Logger("tunnel")
	if m.Logger("tunnel") != lg {
		t.Errorf("Expected the same logger for the same component")
	}
	lg.Info("[TUNNEL] info line")
	lg.Error("[ERROR] error line")
	lg.Debug("debug line")
	m.Close()

	check := func(name, want string) {
		data, err := os.ReadFile(filepath.Join(base, "tunnel", name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if !strings.Contains(string(data), want) {
			t.Errorf("%s = %q, want it to contain %q", name, data, want)
		}
	}
	check("info.log", "info line")
	check("error.log", "error line")
	check("debug.log", "debug line")
}

func TestLogxManager_DebugDisabled(t *testing.T) {
	base := t.TempDir()
	m := NewManager(base, false)
	m.Logger("relay").Debug("hidden")
	m.Close()

	data, err := os.ReadFile(filepath.Join(base, "relay", "debug.log"))
	if err != nil {
		t.Fatalf("read debug.log: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("Expected empty debug log, got %q", data)
	}
}
