package entity

type FeedbackState uint8

const (
	FeedbackInfo FeedbackState = iota
	FeedbackError
	FeedbackSuccess
)

var feedbackStateMap = map[FeedbackState]string{
	FeedbackInfo:    "info",
	FeedbackError:   "error",
	FeedbackSuccess: "success",
}

func (s FeedbackState) String() string {
	return feedbackStateMap[s]
}

// FeedbackEvent is one positioning-guidance update published to the UI
// layer. Events are immutable values; the emitter may drop all but the
// latest event inside its debounce window.
type FeedbackEvent struct {
	Message    string
	Result     DetectionResult
	Connecting bool
	Connected  bool
	State      FeedbackState
}
