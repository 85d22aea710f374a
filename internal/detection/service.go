package detection

import (
	"sync"
	"time"

	"DocuCapture/internal/camera"
	"DocuCapture/internal/entity"
	"DocuCapture/pkg/utils"
	websocketPkg "DocuCapture/pkg/websocket"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type IDetectionService interface {
	Start(ctx context.Context) error
	Stop()
	TriggerCapture()
	Feedback() <-chan entity.FeedbackEvent
	Captures() <-chan entity.CaptureResult
}

// Options carries the per-session configuration. The target rectangle and
// screen size are fixed for the life of the session.
type Options struct {
	Target       entity.Rect
	ScreenWidth  int
	ScreenHeight int
	Side         entity.DocumentSide
	CaptureDir   string

	SteadyDelay       time.Duration
	DetectionInterval time.Duration
	ImageQuality      float64
	ImageScale        float64

	// OwnsChannel marks this service as the channel's lifecycle owner. A
	// service borrowing a shared channel (front/back reuse) must leave
	// connect/disconnect to whoever created it.
	OwnsChannel bool
}

type detectionService struct {
	log     *logrus.Logger
	channel websocketPkg.IChannel
	camera  camera.Camera
	opts    Options

	adaptive  *adaptiveController
	interp    *interpreter
	steady    *steadyTracker
	emitter   *feedbackEmitter
	finalizer *captureFinalizer

	mu         sync.Mutex
	started    bool
	lastFrame  *camera.Frame
	lastGood   bool
	pending    bool
	sentAt     time.Time
	connecting bool
	connected  bool

	retune     chan struct{}
	triggerCh  chan struct{}
	captureCh  chan entity.CaptureResult
	stopFrames func() error
	done       chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

func NewDetectionService(
	logger *logrus.Logger,
	channel websocketPkg.IChannel,
	cam camera.Camera,
	u utils.IUtils,
	opts Options,
) IDetectionService {
	if opts.SteadyDelay <= 0 {
		opts.SteadyDelay = 3000 * time.Millisecond
	}
	if opts.DetectionInterval <= 0 {
		opts.DetectionInterval = 100 * time.Millisecond
	}
	if opts.ImageQuality <= 0 {
		opts.ImageQuality = 0.9
	}
	if opts.ImageScale <= 0 {
		opts.ImageScale = 1.0
	}

	return &detectionService{
		log:     logger,
		channel: channel,
		camera:  cam,
		opts:    opts,

		adaptive:  newAdaptiveController(opts.DetectionInterval, opts.ImageQuality, opts.ImageScale),
		interp:    newInterpreter(opts.Target),
		steady:    newSteadyTracker(opts.SteadyDelay),
		emitter:   newFeedbackEmitter(debounceWindow),
		finalizer: newCaptureFinalizer(logger, cam, u, opts.Target, opts.ScreenWidth, opts.ScreenHeight, opts.CaptureDir),

		retune:    make(chan struct{}, 1),
		triggerCh: make(chan struct{}, 1),
		captureCh: make(chan entity.CaptureResult, 4),
		done:      make(chan struct{}),
	}
}

func (s *detectionService) Feedback() <-chan entity.FeedbackEvent {
	return s.emitter.Events()
}

func (s *detectionService) Captures() <-chan entity.CaptureResult {
	return s.captureCh
}

// TriggerCapture requests a manual capture. Concurrent requests collapse
// into one.
func (s *detectionService) TriggerCapture() {
	select {
	case s.triggerCh <- struct{}{}:
	default:
	}
}
