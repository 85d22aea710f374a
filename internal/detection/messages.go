package detection

// User-facing guidance messages. Localization happens in the host app; these
// are the stable message identities the UI maps to its own copy.
const (
	MsgFitInBox      = "Place the document inside the frame"
	MsgHoldSteady    = "Hold steady"
	MsgAdjustQuality = "Good position, adjust the lighting"

	MsgMoveUp    = "Move the document up"
	MsgMoveDown  = "Move the document down"
	MsgMoveLeft  = "Move the document left"
	MsgMoveRight = "Move the document right"

	MsgConnecting     = "Connecting to detection service"
	MsgConnectionLost = "Connection lost, retrying"
)
