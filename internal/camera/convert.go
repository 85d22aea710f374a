package camera

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"DocuCapture/internal/entity"

	"golang.org/x/image/draw"
)

var ErrUnsupportedFormat = errors.New("unsupported pixel format")

const cropPaddingRatio = 0.25

// ToRGBA converts a raw frame into a standard RGBA bitmap.
func ToRGBA(f Frame) (*image.RGBA, error) {
	switch f.Format {
	case FormatRGBA32:
		return rgbaFromPacked(f)
	case FormatYUV420:
		return rgbaFromYUV420(f)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func rgbaFromPacked(f Frame) (*image.RGBA, error) {
	if len(f.Planes) != 1 {
		return nil, fmt.Errorf("rgba32 frame: expected 1 plane, got %d", len(f.Planes))
	}
	if len(f.Planes[0]) < f.Width*f.Height*4 {
		return nil, fmt.Errorf("rgba32 frame: plane too short for %dx%d", f.Width, f.Height)
	}

	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	copy(img.Pix, f.Planes[0][:f.Width*f.Height*4])
	return img, nil
}

func rgbaFromYUV420(f Frame) (*image.RGBA, error) {
	if len(f.Planes) != 3 {
		return nil, fmt.Errorf("yuv420 frame: expected 3 planes, got %d", len(f.Planes))
	}

	w, h := f.Width, f.Height
	cw, ch := (w+1)/2, (h+1)/2
	yPlane, uPlane, vPlane := f.Planes[0], f.Planes[1], f.Planes[2]

	if len(yPlane) < w*h || len(uPlane) < cw*ch || len(vPlane) < cw*ch {
		return nil, fmt.Errorf("yuv420 frame: planes too short for %dx%d", w, h)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			luma := float64(yPlane[y*w+x])
			u := float64(uPlane[(y/2)*cw+(x/2)]) - 128
			v := float64(vPlane[(y/2)*cw+(x/2)]) - 128

			r := clampByte(luma + 1.402*v)
			g := clampByte(luma - 0.344136*u - 0.714136*v)
			b := clampByte(luma + 1.772*u)

			off := img.PixOffset(x, y)
			img.Pix[off] = r
			img.Pix[off+1] = g
			img.Pix[off+2] = b
			img.Pix[off+3] = 0xff
		}
	}

	return img, nil
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Scale resizes an image by the given factor using bilinear interpolation.
// Factors at or above 1 return the input unchanged.
func Scale(img *image.RGBA, factor float64) *image.RGBA {
	if factor >= 1 {
		return img
	}

	b := img.Bounds()
	w := int(float64(b.Dx()) * factor)
	h := int(float64(b.Dy()) * factor)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// DetectionWindow is the region sent to the detection service: the full
// frame width, and the target rectangle's height expanded by 25% above and
// below, clamped to the frame.
func DetectionWindow(target entity.Rect, frameWidth, frameHeight int) image.Rectangle {
	pad := target.Height() * cropPaddingRatio
	top := int(target.Top - pad)
	bottom := int(target.Bottom + pad)

	return image.Rect(0, top, frameWidth, bottom).Intersect(image.Rect(0, 0, frameWidth, frameHeight))
}

// CropOffsetY is the vertical offset removed by DetectionWindow; the
// interpreter adds it back when mapping detected boxes to screen space.
func CropOffsetY(target entity.Rect) float64 {
	return target.Top - target.Height()*cropPaddingRatio
}

func Crop(img *image.RGBA, r image.Rectangle) *image.RGBA {
	return img.SubImage(r.Intersect(img.Bounds())).(*image.RGBA)
}

// EncodeJPEG encodes at a quality factor in (0, 1], the knob the adaptive
// controller tunes for transmitted frames.
func EncodeJPEG(img image.Image, quality float64) ([]byte, error) {
	q := int(quality * 100)
	if q < 1 {
		q = 1
	}
	if q > 100 {
		q = 100
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodePNG is the canonical lossless encoding used for finished captures.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
