package config

import (
	"os"
	"strconv"
	"time"

	"DocuCapture/internal/entity"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultDetectionInterval = 100 * time.Millisecond
	DefaultSteadyDelay       = 3000 * time.Millisecond
	DefaultImageQuality      = 0.9
	DefaultImageScale        = 1.0

	// ID-1 card aspect ratio, used to derive the on-screen guide box.
	cardAspectRatio = 1.586
	targetWidthFrac = 0.85
)

type Config struct {
	DetectionURL      string `validate:"required,url"`
	LivenessURL       string `validate:"omitempty,url"`
	UploadURL         string `validate:"omitempty,url"`
	ScreenWidth       int    `validate:"required,gt=0"`
	ScreenHeight      int    `validate:"required,gt=0"`
	SteadyDelay       time.Duration
	DetectionInterval time.Duration
	ImageQuality      float64 `validate:"gte=0.3,lte=0.95"`
	ImageScale        float64 `validate:"gte=0.4,lte=1.0"`
	CaptureDir        string  `validate:"required"`
}

func New() (*Config, error) {
	cfg := &Config{
		DetectionURL:      envOr("DETECTION_WS_URL", "ws://localhost:8000/api/v1/document/ws"),
		LivenessURL:       os.Getenv("LIVENESS_API_URL"),
		UploadURL:         os.Getenv("DOCUMENT_UPLOAD_URL"),
		ScreenWidth:       envIntOr("SCREEN_WIDTH", 1080),
		ScreenHeight:      envIntOr("SCREEN_HEIGHT", 1920),
		SteadyDelay:       envMillisOr("STEADY_DELAY_MS", DefaultSteadyDelay),
		DetectionInterval: envMillisOr("DETECTION_INTERVAL_MS", DefaultDetectionInterval),
		ImageQuality:      envFloatOr("IMAGE_QUALITY", DefaultImageQuality),
		ImageScale:        envFloatOr("IMAGE_SCALE", DefaultImageScale),
		CaptureDir:        envOr("CAPTURE_DIR", "./storage/captures"),
	}

	if err := NewValidator().Struct(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func NewValidator() *validator.Validate {
	return validator.New()
}

// TargetRect derives the fixed on-screen guide box from screen dimensions:
// a horizontally centered ID-1 card shape in the upper-middle of the screen.
// It is computed once per capture session.
func TargetRect(screenWidth, screenHeight int) entity.Rect {
	w := float64(screenWidth) * targetWidthFrac
	h := w / cardAspectRatio

	left := (float64(screenWidth) - w) / 2
	top := (float64(screenHeight) - h) * 0.4

	return entity.Rect{
		Left:   left,
		Top:    top,
		Right:  left + w,
		Bottom: top + h,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloatOr(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envMillisOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
