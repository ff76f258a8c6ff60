package config

import "testing"

func TestBuildConfigDefaults(t *testing.T) {
	c := NewBuildConfig()
	if c.MemoryBudget != 0 {
		t.Errorf("default MemoryBudget = %d, want 0 (unlimited)", c.MemoryBudget)
	}
	if c.Logger == nil {
		t.Fatal("default Logger must not be nil")
	}
}

func TestBuildConfigWithChaining(t *testing.T) {
	c := NewBuildConfig().WithMemoryBudget(1024)
	if c.MemoryBudget != 1024 {
		t.Errorf("MemoryBudget = %d, want 1024", c.MemoryBudget)
	}
}

func TestRuntimeConfigDefaults(t *testing.T) {
	c := NewRuntimeConfig()
	if c.ErrorThresholdPx != 1.0 {
		t.Errorf("default ErrorThresholdPx = %v, want 1.0", c.ErrorThresholdPx)
	}
	if c.SWThresholdPx != 16 {
		t.Errorf("default SWThresholdPx = %v, want 16", c.SWThresholdPx)
	}
	if !c.EnableHZB {
		t.Error("HZB should be enabled by default")
	}
	if c.VisibleClusterCapacity != 1<<16 {
		t.Errorf("default VisibleClusterCapacity = %d, want %d", c.VisibleClusterCapacity, 1<<16)
	}
}

func TestRuntimeConfigChaining(t *testing.T) {
	c := NewRuntimeConfig().
		WithErrorThresholdPx(2).
		WithSWThresholdPx(8).
		WithHZB(false).
		WithVisibleClusterCapacity(100)
	if c.ErrorThresholdPx != 2 || c.SWThresholdPx != 8 || c.EnableHZB || c.VisibleClusterCapacity != 100 {
		t.Errorf("chained builder did not apply all overrides: %+v", c)
	}
}
