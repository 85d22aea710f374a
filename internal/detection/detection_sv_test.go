package detection

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"DocuCapture/internal/camera"
	"DocuCapture/internal/entity"
	"DocuCapture/pkg/utils"
	websocketPkg "DocuCapture/pkg/websocket"

	"github.com/sirupsen/logrus"
)

// fakeChannel satisfies websocketPkg.IChannel without a network. Each
// submitted frame is answered through the reply function.
type fakeChannel struct {
	mu       sync.Mutex
	statusCh chan websocketPkg.Status
	msgCh    chan map[string]interface{}
	errCh    chan string
	status   websocketPkg.Status
	sent     int
	reply    func(payload []byte) map[string]interface{}
}

func newFakeChannel(reply func(payload []byte) map[string]interface{}) *fakeChannel {
	return &fakeChannel{
		statusCh: make(chan websocketPkg.Status, 8),
		msgCh:    make(chan map[string]interface{}, 8),
		errCh:    make(chan string, 8),
		reply:    reply,
	}
}

func (f *fakeChannel) Connect() {
	f.mu.Lock()
	f.status = websocketPkg.StatusConnected
	f.mu.Unlock()
	f.statusCh <- websocketPkg.StatusConnected
}

func (f *fakeChannel) Disconnect() {
	f.mu.Lock()
	f.status = websocketPkg.StatusDisconnected
	f.mu.Unlock()
}

func (f *fakeChannel) Send(payload []byte) {
	f.mu.Lock()
	f.sent++
	reply := f.reply
	f.mu.Unlock()

	if reply == nil {
		return
	}
	select {
	case f.msgCh <- reply(payload):
	default:
	}
}

func (f *fakeChannel) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent
}

func (f *fakeChannel) Status() <-chan websocketPkg.Status      { return f.statusCh }
func (f *fakeChannel) Messages() <-chan map[string]interface{} { return f.msgCh }
func (f *fakeChannel) Diagnostics() <-chan string              { return f.errCh }

func (f *fakeChannel) CurrentStatus() websocketPkg.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func testOptions(t *testing.T) Options {
	t.Helper()
	return Options{
		Target:            entity.Rect{Left: 100, Top: 300, Right: 500, Bottom: 550},
		ScreenWidth:       600,
		ScreenHeight:      800,
		Side:              entity.DocumentFront,
		CaptureDir:        t.TempDir(),
		SteadyDelay:       3 * time.Second,
		DetectionInterval: 20 * time.Millisecond,
		ImageQuality:      0.9,
		ImageScale:        1.0,
		OwnsChannel:       true,
	}
}

// detectedReply answers every frame with a confident detection whose box
// lands exactly on the target once mapped back to screen coordinates.
func detectedReply(target entity.Rect) func([]byte) map[string]interface{} {
	cropTop := camera.CropOffsetY(target)
	return func([]byte) map[string]interface{} {
		return map[string]interface{}{
			"success": true,
			"checks": map[string]interface{}{
				"brightness": "pass",
				"darkness":   "pass",
				"blur":       "pass",
				"glare":      "pass",
			},
			"bbox": []interface{}{
				target.Left,
				target.Top - cropTop,
				target.Right,
				target.Bottom - cropTop,
			},
		}
	}
}

func TestServiceReportsHoldSteadyOnGoodDetection(t *testing.T) {
	opts := testOptions(t)
	channel := newFakeChannel(detectedReply(opts.Target))
	cam := camera.NewTestPattern(opts.ScreenWidth, opts.ScreenHeight)

	service := NewDetectionService(quietLogger(), channel, cam, utils.New(), opts)
	if err := service.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer service.Stop()

	deadline := time.After(3 * time.Second)
	for {
		select {
		case event, ok := <-service.Feedback():
			if !ok {
				t.Fatal("Feedback channel closed before success event")
			}
			if event.State == entity.FeedbackSuccess {
				if event.Message != MsgHoldSteady {
					t.Errorf("Message = %q, want %q", event.Message, MsgHoldSteady)
				}
				if event.Result.BBox == nil {
					t.Error("Success event is missing the screen-space box")
				}
				return
			}
		case <-deadline:
			t.Fatal("No success feedback within deadline")
		}
	}
}

func TestServiceManualCapture(t *testing.T) {
	opts := testOptions(t)
	channel := newFakeChannel(nil)
	cam := camera.NewTestPattern(opts.ScreenWidth, opts.ScreenHeight)

	service := NewDetectionService(quietLogger(), channel, cam, utils.New(), opts)
	if err := service.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer service.Stop()

	service.TriggerCapture()

	select {
	case result := <-service.Captures():
		if result.Side != entity.DocumentFront {
			t.Errorf("Side = %s, want front", result.Side)
		}
		if _, err := os.Stat(result.Path); err != nil {
			t.Errorf("Capture file missing: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("No capture result within deadline")
	}
}

func TestServiceSubmitsFramesOnceConnected(t *testing.T) {
	opts := testOptions(t)
	channel := newFakeChannel(detectedReply(opts.Target))
	cam := camera.NewTestPattern(opts.ScreenWidth, opts.ScreenHeight)

	service := NewDetectionService(quietLogger(), channel, cam, utils.New(), opts)
	if err := service.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer service.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for channel.sentCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("No frame submitted within deadline")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestServiceStartTwiceFails(t *testing.T) {
	opts := testOptions(t)
	channel := newFakeChannel(nil)
	cam := camera.NewTestPattern(opts.ScreenWidth, opts.ScreenHeight)

	service := NewDetectionService(quietLogger(), channel, cam, utils.New(), opts)
	if err := service.Start(context.Background()); err != nil {
		t.Fatalf("First Start returned error: %v", err)
	}
	defer service.Stop()

	if err := service.Start(context.Background()); err != ErrAlreadyStarted {
		t.Errorf("Second Start = %v, want ErrAlreadyStarted", err)
	}
}

func TestServiceStopClosesStreams(t *testing.T) {
	opts := testOptions(t)
	channel := newFakeChannel(nil)
	cam := camera.NewTestPattern(opts.ScreenWidth, opts.ScreenHeight)

	service := NewDetectionService(quietLogger(), channel, cam, utils.New(), opts)
	if err := service.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	service.Stop()
	service.Stop()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-service.Feedback():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("Feedback channel not closed after Stop")
		}
	}
}
