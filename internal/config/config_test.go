package config

import (
	"math"
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	cfg, err := New()
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if cfg.DetectionURL != "ws://localhost:8000/api/v1/document/ws" {
		t.Errorf("DetectionURL = %q", cfg.DetectionURL)
	}
	if cfg.ScreenWidth != 1080 || cfg.ScreenHeight != 1920 {
		t.Errorf("Screen = %dx%d, want 1080x1920", cfg.ScreenWidth, cfg.ScreenHeight)
	}
	if cfg.DetectionInterval != DefaultDetectionInterval {
		t.Errorf("DetectionInterval = %v", cfg.DetectionInterval)
	}
	if cfg.SteadyDelay != DefaultSteadyDelay {
		t.Errorf("SteadyDelay = %v", cfg.SteadyDelay)
	}
	if cfg.ImageQuality != DefaultImageQuality || cfg.ImageScale != DefaultImageScale {
		t.Errorf("quality/scale = %v/%v", cfg.ImageQuality, cfg.ImageScale)
	}
}

func TestNewEnvOverrides(t *testing.T) {
	t.Setenv("DETECTION_WS_URL", "wss://detect.example.com/ws")
	t.Setenv("SCREEN_WIDTH", "720")
	t.Setenv("DETECTION_INTERVAL_MS", "150")
	t.Setenv("IMAGE_QUALITY", "0.5")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if cfg.DetectionURL != "wss://detect.example.com/ws" {
		t.Errorf("DetectionURL = %q", cfg.DetectionURL)
	}
	if cfg.ScreenWidth != 720 {
		t.Errorf("ScreenWidth = %d, want 720", cfg.ScreenWidth)
	}
	if cfg.DetectionInterval != 150*time.Millisecond {
		t.Errorf("DetectionInterval = %v, want 150ms", cfg.DetectionInterval)
	}
	if cfg.ImageQuality != 0.5 {
		t.Errorf("ImageQuality = %v, want 0.5", cfg.ImageQuality)
	}
}

func TestNewMalformedEnvFallsBack(t *testing.T) {
	t.Setenv("SCREEN_WIDTH", "a lot")
	t.Setenv("DETECTION_INTERVAL_MS", "-5")
	t.Setenv("IMAGE_SCALE", "wide")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if cfg.ScreenWidth != 1080 {
		t.Errorf("ScreenWidth = %d, want default 1080", cfg.ScreenWidth)
	}
	if cfg.DetectionInterval != DefaultDetectionInterval {
		t.Errorf("DetectionInterval = %v, want default", cfg.DetectionInterval)
	}
	if cfg.ImageScale != DefaultImageScale {
		t.Errorf("ImageScale = %v, want default", cfg.ImageScale)
	}
}

func TestNewRejectsOutOfRangeQuality(t *testing.T) {
	t.Setenv("IMAGE_QUALITY", "0.1")

	if _, err := New(); err == nil {
		t.Error("Expected validation error for quality below 0.3")
	}
}

func TestTargetRectGeometry(t *testing.T) {
	target := TargetRect(1080, 1920)

	if got := target.Width(); math.Abs(got-1080*0.85) > 0.001 {
		t.Errorf("Width = %v, want 85%% of screen width", got)
	}

	aspect := target.Width() / target.Height()
	if math.Abs(aspect-1.586) > 0.001 {
		t.Errorf("Aspect = %v, want 1.586", aspect)
	}

	center := (target.Left + target.Right) / 2
	if math.Abs(center-540) > 0.001 {
		t.Errorf("Horizontal center = %v, want 540", center)
	}

	if target.Top <= 0 || target.Bottom >= 1920 {
		t.Errorf("Target %+v not inside the screen", target)
	}
}
