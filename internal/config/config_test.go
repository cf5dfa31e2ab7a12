package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "4000" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.TickRateHz != 40 {
		t.Errorf("TickRateHz = %d", cfg.TickRateHz)
	}
	if cfg.MaxTickDelta != 100*time.Millisecond {
		t.Errorf("MaxTickDelta = %v", cfg.MaxTickDelta)
	}
	if cfg.ArtNetEnabled {
		t.Error("Art-Net should default to disabled")
	}
	if cfg.ArtNetPort != 6454 {
		t.Errorf("ArtNetPort = %d", cfg.ArtNetPort)
	}
	if !cfg.IsDevelopment() {
		t.Error("default env should be development")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("TICK_RATE", "60")
	t.Setenv("ARTNET_ENABLED", "true")
	t.Setenv("MAX_TICK_DELTA_MS", "50")

	cfg := Load()

	if cfg.Port != "9000" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Error("env should be production")
	}
	if cfg.TickRateHz != 60 {
		t.Errorf("TickRateHz = %d", cfg.TickRateHz)
	}
	if !cfg.ArtNetEnabled {
		t.Error("ARTNET_ENABLED should enable output")
	}
	if cfg.MaxTickDelta != 50*time.Millisecond {
		t.Errorf("MaxTickDelta = %v", cfg.MaxTickDelta)
	}
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("TICK_RATE", "not-a-number")

	cfg := Load()
	if cfg.TickRateHz != 40 {
		t.Errorf("TickRateHz = %d, want default 40", cfg.TickRateHz)
	}
}
