package hud

import (
	"strings"
	"testing"
)

func TestStatusFeed_KeepsMostRecent(t *testing.T) {
	f := NewStatusFeed("Minimap", 2)
	f.Push("one")
	f.Push("two")
	f.Push("three")

	got := f.Lines()
	if len(got) != 2 || got[0] != "two" || got[1] != "three" {
		t.Errorf("Lines = %v, want [two three]", got)
	}
}

func TestStatusFeed_Notify(t *testing.T) {
	f := NewStatusFeed("Minimap", 0)
	var seen []string
	f.OnPush(func(s string) { seen = append(seen, s) })
	f.Push("override enabled")

	if len(seen) != 1 || seen[0] != "override enabled" {
		t.Errorf("Expected notify callback, got %v", seen)
	}
}

func TestStatusFeed_Render(t *testing.T) {
	f := NewStatusFeed("Minimap", 0)
	f.Push("settings restored")

	out := f.Render()
	if !strings.Contains(out, "Minimap") || !strings.Contains(out, "settings restored") {
		t.Errorf("Render output missing content: %q", out)
	}
}
