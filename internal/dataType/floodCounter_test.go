package dataType

import (
	"testing"
	"time"
)

func TestFloodCounter_Limit(t *testing.T) {
	fc := NewFloodCounter(3, 10*time.Second, 4)
	base := time.Unix(1_700_000_000, 0)
	fc.now = func() time.Time { return base }

	for i := 0; i < 3; i++ {
		if !fc.Allow("1") {
			t.Fatalf("Line %d should be allowed", i)
		}
	}
	if fc.Allow("1") {
		t.Errorf("Fourth line within the window should be refused")
	}
	if !fc.Allow("2") {
		t.Errorf("Other senders have their own window")
	}

	fc.now = func() time.Time { return base.Add(10 * time.Second) }
	if !fc.Allow("1") {
		t.Errorf("Expected window to slide")
	}
}

func TestFloodCounter_Disabled(t *testing.T) {
	fc := NewFloodCounter(0, time.Second, 1)
	for i := 0; i < 100; i++ {
		if !fc.Allow("x") {
			t.Fatalf("Disabled counter refused line %d", i)
		}
	}
}

func TestFloodCounter_GC(t *testing.T) {
	fc := NewFloodCounter(5, 2*time.Second, 2)
	base := time.Unix(1_700_000_000, 0)
	fc.now = func() time.Time { return base }
	fc.Allow("a")
	fc.Allow("b")

	fc.now = func() time.Time { return base.Add(5 * time.Second) }
	fc.GC()
	if fc.Len() != 0 {
		t.Errorf("Expected idle senders to be collected, %d left", fc.Len())
	}
}
