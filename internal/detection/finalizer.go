package detection

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"DocuCapture/internal/camera"
	"DocuCapture/internal/entity"
	"DocuCapture/pkg/utils"

	"github.com/sirupsen/logrus"
)

const captureMargin = 10

// captureFinalizer produces the single precisely-cropped document image for
// a capture request. Any failing step abandons the attempt; the caller (or
// the next auto-capture window) retries.
type captureFinalizer struct {
	log    *logrus.Logger
	camera camera.Camera
	utils  utils.IUtils

	target       entity.Rect
	screenWidth  int
	screenHeight int
	captureDir   string
}

func newCaptureFinalizer(
	logger *logrus.Logger,
	cam camera.Camera,
	u utils.IUtils,
	target entity.Rect,
	screenWidth, screenHeight int,
	captureDir string,
) *captureFinalizer {
	return &captureFinalizer{
		log:          logger,
		camera:       cam,
		utils:        u,
		target:       target,
		screenWidth:  screenWidth,
		screenHeight: screenHeight,
		captureDir:   captureDir,
	}
}

func (f *captureFinalizer) Finalize(side entity.DocumentSide) (*entity.CaptureResult, error) {
	if err := f.camera.SetFlash(false); err != nil {
		return nil, fmt.Errorf("disable flash: %w", err)
	}

	frame, err := f.camera.TakePicture()
	if err != nil {
		return nil, fmt.Errorf("take picture: %w", err)
	}

	img, err := camera.ToRGBA(frame)
	if err != nil {
		return nil, fmt.Errorf("convert picture: %w", err)
	}

	previewW, previewH := f.camera.PreviewSize()
	crop := captureRect(f.target, f.screenWidth, f.screenHeight, previewW, previewH, frame.Width, frame.Height)
	if crop.Empty() {
		return nil, fmt.Errorf("capture rect outside image bounds")
	}

	data, err := camera.EncodePNG(camera.Crop(img, crop))
	if err != nil {
		return nil, fmt.Errorf("encode capture: %w", err)
	}

	id, err := f.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		return nil, fmt.Errorf("name capture: %w", err)
	}

	if err := os.MkdirAll(f.captureDir, 0o755); err != nil {
		return nil, fmt.Errorf("create capture dir: %w", err)
	}

	path := filepath.Join(f.captureDir, id+".png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("persist capture: %w", err)
	}

	f.log.WithFields(logrus.Fields{
		"path": path,
		"side": side.String(),
	}).Info("Document capture finished")

	return &entity.CaptureResult{
		ID:     id,
		Path:   path,
		Width:  crop.Dx(),
		Height: crop.Dy(),
		Side:   side,
	}, nil
}

// captureRect maps the on-screen target rectangle into captured-image pixel
// coordinates. The preview is scaled to fill the screen height; when the
// scaled preview is wider than the screen, the overflow is center-cropped,
// so screen X coordinates sit xOffset pixels into the scaled preview.
func captureRect(target entity.Rect, screenW, screenH, previewW, previewH, imageW, imageH int) image.Rectangle {
	scale := float64(screenH) / float64(previewH)
	xOffset := (float64(previewW)*scale - float64(screenW)) / 2

	// screen → preview space
	left := (target.Left + xOffset) / scale
	right := (target.Right + xOffset) / scale
	top := target.Top / scale
	bottom := target.Bottom / scale

	// preview → captured image space
	rx := float64(imageW) / float64(previewW)
	ry := float64(imageH) / float64(previewH)

	rect := image.Rect(
		int(left*rx)-captureMargin,
		int(top*ry)-captureMargin,
		int(right*rx)+captureMargin,
		int(bottom*ry)+captureMargin,
	)

	return rect.Intersect(image.Rect(0, 0, imageW, imageH))
}
