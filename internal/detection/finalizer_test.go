package detection

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"DocuCapture/internal/camera"
	"DocuCapture/internal/entity"
	"DocuCapture/pkg/utils"

	"github.com/sirupsen/logrus"
)

func TestCaptureRectIdentitySpaces(t *testing.T) {
	// preview == screen == image: the chain reduces to padding
	target := entity.Rect{Left: 100, Top: 200, Right: 500, Bottom: 400}
	rect := captureRect(target, 1000, 1000, 1000, 1000, 1000, 1000)

	want := image.Rect(90, 190, 510, 410)
	if rect != want {
		t.Errorf("captureRect = %v, want %v", rect, want)
	}
}

func TestCaptureRectScalesWithImageResolution(t *testing.T) {
	// image is twice the preview resolution
	target := entity.Rect{Left: 100, Top: 200, Right: 500, Bottom: 400}
	rect := captureRect(target, 1000, 1000, 1000, 1000, 2000, 2000)

	want := image.Rect(190, 390, 1010, 810)
	if rect != want {
		t.Errorf("captureRect = %v, want %v", rect, want)
	}
}

func TestCaptureRectCorrectsCenterCrop(t *testing.T) {
	// preview 1000x1000 scaled to fill a 1000-high, 800-wide screen leaves
	// 100px of preview hidden on each side
	target := entity.Rect{Left: 0, Top: 0, Right: 800, Bottom: 1000}
	rect := captureRect(target, 800, 1000, 1000, 1000, 1000, 1000)

	want := image.Rect(90, 0, 910, 1000)
	if rect != want {
		t.Errorf("captureRect = %v, want %v", rect, want)
	}
}

func TestCaptureRectClampsToImageBounds(t *testing.T) {
	target := entity.Rect{Left: 0, Top: 0, Right: 1000, Bottom: 1000}
	rect := captureRect(target, 1000, 1000, 1000, 1000, 1000, 1000)

	bounds := image.Rect(0, 0, 1000, 1000)
	if !rect.In(bounds) {
		t.Errorf("captureRect %v exceeds image bounds %v", rect, bounds)
	}
}

func TestFinalizeProducesCroppedFile(t *testing.T) {
	dir := t.TempDir()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	cam := camera.NewTestPattern(600, 800)
	target := entity.Rect{Left: 100, Top: 300, Right: 500, Bottom: 550}

	finalizer := newCaptureFinalizer(logger, cam, utils.New(), target, 600, 800, dir)

	result, err := finalizer.Finalize(entity.DocumentFront)
	if err != nil {
		t.Fatalf("Finalize returned error: %v", err)
	}

	if result.Side != entity.DocumentFront {
		t.Errorf("Side = %s, want front", result.Side)
	}
	if filepath.Ext(result.Path) != ".png" {
		t.Errorf("Expected a png file, got %s", result.Path)
	}

	info, err := os.Stat(result.Path)
	if err != nil {
		t.Fatalf("Capture file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("Capture file is empty")
	}

	if result.Width <= 0 || result.Height <= 0 {
		t.Errorf("Capture dimensions %dx%d invalid", result.Width, result.Height)
	}
}
