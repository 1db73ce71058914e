package supervisor

import (
	"strings"
	"testing"
)

func TestTailBufferKeepsLastBytes(t *testing.T) {
	b := newTailBuffer(8)
	b.Write([]byte("hello "))
	b.Write([]byte("world"))
	if got := b.String(); got != "lo world" {
		t.Errorf("String() = %q, want %q", got, "lo world")
	}

	b.Write([]byte(strings.Repeat("x", 20)))
	if got := b.String(); got != strings.Repeat("x", 8) {
		t.Errorf("String() = %q after oversized write", got)
	}
}

func TestStateString(t *testing.T) {
	if Idle.String() != "idle" || Running.String() != "running" {
		t.Errorf("String() = %q, %q", Idle, Running)
	}
}
