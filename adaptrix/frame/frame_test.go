package frame

import (
	"errors"
	"testing"

	"github.com/lume-adaptrix/adaptrix/adaptrix/aerr"
	"github.com/lume-adaptrix/adaptrix/adaptrix/alog"
)

// TestFailClassifiesDeviceLoss verifies a wgpu device-loss report is
// surfaced as aerr.ErrDeviceLost, the signal the viewer's run loop
// branches on to rebuild all GPU state.
func TestFailClassifiesDeviceLoss(t *testing.T) {
	r := &Runner{Logger: alog.Nop()}

	err := r.fail("submit", errors.New("Device lost: the GPU went away"))
	if !errors.Is(err, aerr.ErrDeviceLost) {
		t.Fatalf("expected a device-loss report to map to ErrDeviceLost, got %v", err)
	}

	err = r.fail("submit", errors.New("validation error: bind group mismatch"))
	if errors.Is(err, aerr.ErrDeviceLost) {
		t.Fatalf("an ordinary frame error must not map to ErrDeviceLost: %v", err)
	}
}
