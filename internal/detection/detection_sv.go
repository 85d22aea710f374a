package detection

import (
	"errors"
	"time"

	"DocuCapture/internal/camera"
	"DocuCapture/internal/entity"
	websocketPkg "DocuCapture/pkg/websocket"

	"golang.org/x/net/context"
)

const (
	adaptiveTickInterval = 2 * time.Second
	watchdogTickInterval = 1 * time.Second
)

var ErrAlreadyStarted = errors.New("detection service already started")

// Start opens the camera preview, connects the channel when owned, and runs
// the detection loops until Stop or ctx cancellation.
func (s *detectionService) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.mu.Unlock()

	frames, err := s.camera.StartPreview()
	if err != nil {
		return err
	}
	s.stopFrames = s.camera.StopPreview

	if s.opts.OwnsChannel {
		s.channel.Connect()
	}

	s.wg.Add(6)
	go s.frameLoop(ctx, frames)
	go s.detectLoop(ctx)
	go s.messageLoop(ctx)
	go s.statusLoop(ctx)
	go s.watchdogLoop(ctx)
	go s.captureLoop(ctx)

	return nil
}

// Stop tears the session down: loops are cancelled, the preview stopped, an
// owned channel disconnected and the emitter streams closed. It is
// idempotent and no event is delivered after it returns.
func (s *detectionService) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.wg.Wait()

		if s.stopFrames != nil {
			if err := s.stopFrames(); err != nil {
				s.log.Warnf("Stopping camera preview: %v", err)
			}
		}

		if s.opts.OwnsChannel {
			s.channel.Disconnect()
		}

		s.emitter.Close()
		close(s.captureCh)
	})
}

// frameLoop retains the most recent preview frame for the next detection
// tick. Frames arrive faster than they are consumed; older ones are simply
// superseded.
func (s *detectionService) frameLoop(ctx context.Context, frames <-chan camera.Frame) {
	defer s.wg.Done()

	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				return
			}
			s.mu.Lock()
			s.lastFrame = &frame
			s.mu.Unlock()
		case <-ctx.Done():
			return
		case <-s.done:
			return
		}
	}
}

// detectLoop paces frame submission at the adaptive interval. An interval
// change reported by the adaptive controller restarts the timer.
func (s *detectionService) detectLoop(ctx context.Context) {
	defer s.wg.Done()

	timer := time.NewTimer(s.adaptive.Interval())
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			s.submitFrame()
			timer.Reset(s.adaptive.Interval())
		case <-s.retune:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(s.adaptive.Interval())
		case <-ctx.Done():
			return
		case <-s.done:
			return
		}
	}
}

// submitFrame sends the latest frame to the detection service. At most one
// request is in flight; while a response is pending the tick is skipped.
func (s *detectionService) submitFrame() {
	s.mu.Lock()
	if s.pending || !s.connected || s.lastFrame == nil {
		s.mu.Unlock()
		return
	}
	frame := *s.lastFrame
	s.mu.Unlock()

	started := time.Now()
	payload, err := s.encodeFrame(frame)
	if err != nil {
		s.log.Debugf("Skipping detection tick: %v", err)
		return
	}
	s.adaptive.RecordProcessing(time.Since(started))

	s.mu.Lock()
	s.pending = true
	s.sentAt = time.Now()
	s.mu.Unlock()

	s.channel.Send(payload)
}

// encodeFrame converts, crops to the detection window, applies the adaptive
// scale and encodes at the adaptive quality.
func (s *detectionService) encodeFrame(frame camera.Frame) ([]byte, error) {
	img, err := camera.ToRGBA(frame)
	if err != nil {
		return nil, err
	}

	window := camera.DetectionWindow(s.opts.Target, frame.Width, frame.Height)
	cropped := camera.Crop(img, window)
	scaled := camera.Scale(cropped, s.adaptive.Scale())

	return camera.EncodeJPEG(scaled, s.adaptive.Quality())
}

// messageLoop consumes detection results, records performance samples,
// publishes feedback and runs the adaptive evaluation cadence.
func (s *detectionService) messageLoop(ctx context.Context) {
	defer s.wg.Done()

	adaptiveTicker := time.NewTicker(adaptiveTickInterval)
	defer adaptiveTicker.Stop()

	for {
		select {
		case msg := <-s.channel.Messages():
			s.handleMessage(msg)
		case diag := <-s.channel.Diagnostics():
			s.log.Debugf("Detection diagnostics: %s", diag)
		case <-adaptiveTicker.C:
			if s.adaptive.Evaluate() {
				s.log.WithFields(map[string]interface{}{
					"interval": s.adaptive.Interval().String(),
					"quality":  s.adaptive.Quality(),
					"scale":    s.adaptive.Scale(),
				}).Debug("Adaptive parameters retuned")
				select {
				case s.retune <- struct{}{}:
				default:
				}
			}
		case <-ctx.Done():
			return
		case <-s.done:
			return
		}
	}
}

func (s *detectionService) handleMessage(msg map[string]interface{}) {
	now := time.Now()

	s.mu.Lock()
	if s.pending {
		s.adaptive.RecordNetwork(now.Sub(s.sentAt))
		s.pending = false
	}
	s.mu.Unlock()

	result := parseMessage(msg)
	event := s.interp.Feedback(result)
	good := event.State == entity.FeedbackSuccess

	s.mu.Lock()
	s.lastGood = good
	event.Connecting = s.connecting
	event.Connected = s.connected
	s.mu.Unlock()

	s.steady.Observe(good, now)
	s.emitter.Publish(event)
}

// statusLoop mirrors transport state into feedback so the UI can show
// connection progress, and clears the in-flight gate on any drop.
func (s *detectionService) statusLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case status := <-s.channel.Status():
			s.handleStatus(status)
		case <-ctx.Done():
			return
		case <-s.done:
			return
		}
	}
}

func (s *detectionService) handleStatus(status websocketPkg.Status) {
	s.mu.Lock()
	s.connecting = status == websocketPkg.StatusConnecting
	s.connected = status == websocketPkg.StatusConnected
	if !s.connected {
		s.pending = false
	}
	connecting, connected := s.connecting, s.connected
	s.mu.Unlock()

	switch status {
	case websocketPkg.StatusConnecting:
		s.emitter.Publish(entity.FeedbackEvent{
			Message:    MsgConnecting,
			Connecting: connecting,
			State:      entity.FeedbackInfo,
		})
	case websocketPkg.StatusConnected:
		s.emitter.Publish(entity.FeedbackEvent{
			Message:   MsgFitInBox,
			Connected: connected,
			State:     entity.FeedbackInfo,
		})
	case websocketPkg.StatusError:
		s.emitter.Publish(entity.FeedbackEvent{
			Message: MsgConnectionLost,
			State:   entity.FeedbackError,
		})
	}
}

// watchdogLoop drives auto-capture on its own cadence, deliberately
// independent of the network round trip: capture fires off the last known
// state even when no new message has arrived yet.
func (s *detectionService) watchdogLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(watchdogTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			good := s.lastGood
			s.mu.Unlock()

			if good && s.steady.ShouldCapture(time.Now()) {
				s.log.Info("Steady state held, triggering automatic capture")
				s.TriggerCapture()
			}
		case <-ctx.Done():
			return
		case <-s.done:
			return
		}
	}
}

// captureLoop serializes capture requests, manual and automatic alike. A
// failed attempt is logged and dropped; the session keeps running.
func (s *detectionService) captureLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-s.triggerCh:
			result, err := s.finalizer.Finalize(s.opts.Side)
			if err != nil {
				s.log.Warnf("Capture attempt dropped: %v", err)
				continue
			}
			select {
			case s.captureCh <- *result:
			case <-s.done:
				return
			}
		case <-ctx.Done():
			return
		case <-s.done:
			return
		}
	}
}
