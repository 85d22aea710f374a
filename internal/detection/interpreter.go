package detection

import (
	"math"

	"DocuCapture/internal/camera"
	"DocuCapture/internal/entity"
)

const (
	overlapThreshold  = 0.5
	coverageThreshold = 0.5
	minWidthRatio     = 0.4
	maxWidthRatio     = 2.0
	centerTolerance   = 40.0
)

// interpreter turns raw detection messages into actionable feedback. The
// service reports boxes in the cropped frame's coordinate space; the
// interpreter maps them back to screen space before classifying position.
type interpreter struct {
	target  entity.Rect
	cropTop float64
}

func newInterpreter(target entity.Rect) *interpreter {
	return &interpreter{
		target:  target,
		cropTop: camera.CropOffsetY(target),
	}
}

func parseMessage(msg map[string]interface{}) entity.DetectionResult {
	success, _ := msg["success"].(bool)
	result := entity.DetectionResult{Success: success}
	if !success {
		return result
	}

	if checks, ok := msg["checks"].(map[string]interface{}); ok {
		result.Checks = entity.QualityChecks{
			Brightness: checkResult(checks["brightness"]),
			Darkness:   checkResult(checks["darkness"]),
			Blur:       checkResult(checks["blur"]),
			Glare:      checkResult(checks["glare"]),
		}
	}

	if raw, ok := msg["bbox"].([]interface{}); ok && len(raw) == 4 {
		coords := make([]float64, 0, 4)
		for _, v := range raw {
			f, ok := v.(float64)
			if !ok {
				break
			}
			coords = append(coords, f)
		}
		if len(coords) == 4 {
			result.BBox = &entity.Rect{
				Left:   coords[0],
				Top:    coords[1],
				Right:  coords[2],
				Bottom: coords[3],
			}
		}
	}

	return result
}

func checkResult(v interface{}) entity.CheckResult {
	s, _ := v.(string)
	switch s {
	case "pass":
		return entity.CheckPass
	case "fail":
		return entity.CheckFail
	default:
		return entity.CheckNone
	}
}

// toScreen maps a box from cropped-frame coordinates back to screen
// coordinates. Horizontal offset is zero because the crop spans the full
// frame width.
func (it *interpreter) toScreen(box entity.Rect) entity.Rect {
	return box.Offset(0, it.cropTop)
}

// Feedback computes the guidance event for one parsed result. The returned
// event carries the box in screen space.
func (it *interpreter) Feedback(result entity.DetectionResult) entity.FeedbackEvent {
	if !result.Success || result.BBox == nil {
		return entity.FeedbackEvent{
			Message: MsgFitInBox,
			Result:  result,
			State:   entity.FeedbackInfo,
		}
	}

	box := it.toScreen(*result.BBox)
	result.BBox = &box

	if !it.positionGood(box) {
		return entity.FeedbackEvent{
			Message: it.directionHint(box),
			Result:  result,
			State:   entity.FeedbackInfo,
		}
	}

	if !result.Checks.AllPass() {
		return entity.FeedbackEvent{
			Message: MsgAdjustQuality,
			Result:  result,
			State:   entity.FeedbackError,
		}
	}

	return entity.FeedbackEvent{
		Message: MsgHoldSteady,
		Result:  result,
		State:   entity.FeedbackSuccess,
	}
}

func (it *interpreter) positionGood(box entity.Rect) bool {
	boxArea := box.Area()
	if boxArea <= 0 {
		return false
	}

	interArea := box.Intersect(it.target).Area()
	overlap := interArea / boxArea
	coverage := interArea / it.target.Area()
	widthRatio := box.Width() / it.target.Width()

	return (overlap >= overlapThreshold || coverage >= coverageThreshold) &&
		widthRatio >= minWidthRatio && widthRatio <= maxWidthRatio
}

// directionHint picks one directional message by the dominant center offset.
// A box centered within tolerance but still not positioned well (wrong size)
// falls back to the default message.
func (it *interpreter) directionHint(box entity.Rect) string {
	dx := box.CenterX() - it.target.CenterX()
	dy := box.CenterY() - it.target.CenterY()

	if math.Abs(dx) <= centerTolerance && math.Abs(dy) <= centerTolerance {
		return MsgFitInBox
	}

	if math.Abs(dy) >= math.Abs(dx) {
		if dy > 0 {
			return MsgMoveUp
		}
		return MsgMoveDown
	}

	if dx > 0 {
		return MsgMoveLeft
	}
	return MsgMoveRight
}
