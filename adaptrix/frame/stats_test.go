package frame

import (
	"strings"
	"testing"
	"time"
)

func TestStatsRecordsElapsedTime(t *testing.T) {
	s := NewStats()
	s.Begin("cull")
	time.Sleep(time.Millisecond)
	s.End("cull")

	out := s.String()
	if !strings.Contains(out, "cull") {
		t.Fatalf("expected stats dump to mention 'cull', got %q", out)
	}
}

func TestStatsPreservesInsertionOrder(t *testing.T) {
	s := NewStats()
	s.Begin("resolve")
	s.End("resolve")
	s.Begin("cull")
	s.End("cull")

	out := s.String()
	resolveIdx := strings.Index(out, "resolve")
	cullIdx := strings.Index(out, "cull")
	if resolveIdx == -1 || cullIdx == -1 || resolveIdx > cullIdx {
		t.Errorf("expected 'resolve' to be listed before 'cull' (insertion order), got %q", out)
	}
}

func TestStatsEndWithoutBeginIsNoop(t *testing.T) {
	s := NewStats()
	s.End("never-begun")
	if len(s.order) != 0 {
		t.Error("End without a matching Begin must not add a scope")
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		Idle:      "Idle",
		Recording: "Recording",
		Culling:   "Culling",
		HwRaster:  "HwRaster",
		SwRaster:  "SwRaster",
		Resolve:   "Resolve",
		Present:   "Present",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
