package camera

// PixelFormat identifies the platform-native frame encoding. Two families
// are supported: planar luma/chroma (YUV420) and packed 32-bit RGBA.
type PixelFormat uint8

const (
	FormatYUV420 PixelFormat = iota
	FormatRGBA32
)

var pixelFormatMap = map[PixelFormat]string{
	FormatYUV420: "yuv420",
	FormatRGBA32: "rgba32",
}

func (f PixelFormat) String() string {
	return pixelFormatMap[f]
}

// Frame is one raw camera frame. YUV420 frames carry three planes (Y, then
// quarter-size U and V); RGBA32 frames carry a single packed plane.
type Frame struct {
	Format PixelFormat
	Width  int
	Height int
	Planes [][]byte
}

// Camera is the device abstraction owned exclusively by one capture
// session. The preview stream delivers silent continuous frames; TakePicture
// produces a discrete full-resolution shot.
type Camera interface {
	StartPreview() (<-chan Frame, error)
	StopPreview() error
	TakePicture() (Frame, error)
	SetFlash(on bool) error
	PreviewSize() (width, height int)
	PictureSize() (width, height int)
}
