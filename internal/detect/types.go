package detect

import (
	"image"

	"gocv.io/x/gocv"
)

// Face represents a detected face region within one frame
type Face struct {
	Box        BoundingBox
	Confidence float64
	Crop       gocv.Mat // RGB crop, owned by the caller
}

// Release frees the crop Mat
func (f *Face) Release() {
	if !f.Crop.Empty() {
		f.Crop.Close()
	}
}

// Candidate is a raw detector emission before resolution against the frame.
// Coordinates are fractional (0..1 nominally, but detectors over/undershoot).
type Candidate struct {
	Box        RelativeBox
	Confidence float64
}

// RelativeBox is a fractional bounding box as emitted by a detector
type RelativeBox struct {
	XMin   float64 `json:"x_min"`
	YMin   float64 `json:"y_min"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// BoundingBox represents face coordinates in the image
type BoundingBox struct {
	XMin int `json:"x_min"`
	YMin int `json:"y_min"`
	XMax int `json:"x_max"`
	YMax int `json:"y_max"`
}

// ResolveBox converts a relative box to absolute pixel coordinates for a frame
// of the given dimensions. Both the origin and the far edge are clamped so a
// detector that over- or undershoots never yields an out-of-bounds or
// negative-size region. Returns false if the clamped region is degenerate.
func ResolveBox(rel RelativeBox, frameWidth, frameHeight int) (BoundingBox, bool) {
	x1 := max(0, int(rel.XMin*float64(frameWidth)))
	y1 := max(0, int(rel.YMin*float64(frameHeight)))
	x2 := min(frameWidth, x1+int(rel.Width*float64(frameWidth)))
	y2 := min(frameHeight, y1+int(rel.Height*float64(frameHeight)))

	if x2 <= x1 || y2 <= y1 {
		return BoundingBox{}, false
	}
	return BoundingBox{XMin: x1, YMin: y1, XMax: x2, YMax: y2}, true
}

// Width returns the bounding box width
func (b BoundingBox) Width() int {
	return b.XMax - b.XMin
}

// Height returns the bounding box height
func (b BoundingBox) Height() int {
	return b.YMax - b.YMin
}

// Area returns the area of the bounding box
func (b BoundingBox) Area() int {
	return b.Width() * b.Height()
}

// Rect converts the box to an image.Rectangle
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.XMin, b.YMin, b.XMax, b.YMax)
}

// IoU calculates Intersection over Union with another bounding box
func (b BoundingBox) IoU(other BoundingBox) float64 {
	xMin := max(b.XMin, other.XMin)
	yMin := max(b.YMin, other.YMin)
	xMax := min(b.XMax, other.XMax)
	yMax := min(b.YMax, other.YMax)

	// No intersection
	if xMin >= xMax || yMin >= yMax {
		return 0.0
	}

	intersection := (xMax - xMin) * (yMax - yMin)
	union := b.Area() + other.Area() - intersection

	if union == 0 {
		return 0.0
	}

	return float64(intersection) / float64(union)
}
