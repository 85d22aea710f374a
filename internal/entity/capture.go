package entity

type DocumentSide uint8

const (
	DocumentFront DocumentSide = iota
	DocumentBack
)

var documentSideMap = map[DocumentSide]string{
	DocumentFront: "front",
	DocumentBack:  "back",
}

func (s DocumentSide) String() string {
	return documentSideMap[s]
}

// CaptureResult references one finished, cropped document image on disk.
type CaptureResult struct {
	ID     string
	Path   string
	Width  int
	Height int
	Side   DocumentSide
}
