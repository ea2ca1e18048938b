package settings

import (
	"minimap_sync/internal/dataType"
	"os"
	"path/filepath"
	"testing"
)

func sampleSettings() dataType.MinimapSettings {
	s := dataType.DefaultMinimapSettings()
	s.ShowLoots = false
	s.ShowDeadPlayers = false
	s.MinimapSize = 420
	s.MinimapZoom = 33
	return s
}

func TestYAMLPersister_RoundTrip(t *testing.T) {
	p := NewYAMLPersister(filepath.Join(t.TempDir(), "nested", "minimap.yml"))
	want := sampleSettings()

	if err := p.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := p.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != want {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

func TestYAMLPersister_MissingFileDefaults(t *testing.T) {
	p := NewYAMLPersister(filepath.Join(t.TempDir(), "absent.yml"))
	got, err := p.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != dataType.DefaultMinimapSettings() {
		t.Errorf("Expected defaults, got %+v", got)
	}
}

func TestYAMLPersister_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minimap.yml")
	if err := os.WriteFile(path, []byte("show_loots: false\n"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := NewYAMLPersister(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := dataType.DefaultMinimapSettings()
	want.ShowLoots = false
	if got != want {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

func TestYAMLPersister_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minimap.yml")
	if err := os.WriteFile(path, []byte("minimap_size: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewYAMLPersister(path).Load(); err == nil {
		t.Errorf("Expected validation error for out of range size")
	}
}

func TestSQLitePersister_RoundTrip(t *testing.T) {
	p, err := OpenSQLitePersister(filepath.Join(t.TempDir(), "settings.sqlite"))
	if err != nil {
		t.Fatalf("OpenSQLitePersister failed: %v", err)
	}
	defer p.Close()

	got, err := p.Load()
	if err != nil {
		t.Fatalf("Load on empty db failed: %v", err)
	}
	if got != dataType.DefaultMinimapSettings() {
		t.Errorf("Expected defaults from empty db, got %+v", got)
	}

	want := sampleSettings()
	if err := p.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	want.ShowEnemies = false
	if err := p.Save(want); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	got, err = p.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != want {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}
