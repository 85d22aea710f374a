package camera

import (
	"errors"
	"sync"
	"time"
)

const previewFrameInterval = 33 * time.Millisecond

// TestPattern is a synthetic frame source: a light background with a darker
// card-shaped rectangle near the center. It backs the demo harness and
// tests, where no real device camera exists.
type TestPattern struct {
	previewWidth  int
	previewHeight int

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	flash   bool
}

func NewTestPattern(previewWidth, previewHeight int) *TestPattern {
	return &TestPattern{
		previewWidth:  previewWidth,
		previewHeight: previewHeight,
	}
}

func (t *TestPattern) StartPreview() (<-chan Frame, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return nil, errors.New("preview already running")
	}
	t.running = true
	t.stop = make(chan struct{})

	frames := make(chan Frame, 1)
	go t.run(frames, t.stop)

	return frames, nil
}

func (t *TestPattern) run(frames chan<- Frame, stop <-chan struct{}) {
	ticker := time.NewTicker(previewFrameInterval)
	defer ticker.Stop()
	defer close(frames)

	for {
		select {
		case <-ticker.C:
			select {
			case frames <- t.render(t.previewWidth, t.previewHeight):
			default:
			}
		case <-stop:
			return
		}
	}
}

func (t *TestPattern) StopPreview() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return nil
	}
	t.running = false
	close(t.stop)

	return nil
}

func (t *TestPattern) TakePicture() (Frame, error) {
	w, h := t.PictureSize()
	return t.render(w, h), nil
}

func (t *TestPattern) SetFlash(on bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.flash = on
	return nil
}

func (t *TestPattern) PreviewSize() (int, int) {
	return t.previewWidth, t.previewHeight
}

func (t *TestPattern) PictureSize() (int, int) {
	return t.previewWidth * 2, t.previewHeight * 2
}

func (t *TestPattern) render(w, h int) Frame {
	pix := make([]byte, w*h*4)

	cardLeft, cardRight := w/8, w*7/8
	cardTop, cardBottom := h*2/5, h*3/5

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var lum byte = 0xe0
			if x >= cardLeft && x < cardRight && y >= cardTop && y < cardBottom {
				lum = 0x50
			}
			off := (y*w + x) * 4
			pix[off] = lum
			pix[off+1] = lum
			pix[off+2] = lum
			pix[off+3] = 0xff
		}
	}

	return Frame{
		Format: FormatRGBA32,
		Width:  w,
		Height: h,
		Planes: [][]byte{pix},
	}
}
