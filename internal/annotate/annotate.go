package annotate

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/smegmarip/deepfake-sentinel/internal/detect"
)

// ScoredFace pairs a face box with its classifier verdict for drawing
type ScoredFace struct {
	Box      detect.BoundingBox
	FakeProb float64
}

// FakeThreshold splits the verdict colors and labels
const FakeThreshold = 0.5

const boxThickness = 3

var (
	colorFake = color.NRGBA{R: 220, G: 53, B: 69, A: 255}
	colorReal = color.NRGBA{R: 40, G: 167, B: 69, A: 255}
	colorText = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// Render draws verdict boxes and labels for each scored face onto a copy of
// the frame. The input image is never modified; scoring and display never
// alias the same buffer.
func Render(frame image.Image, faces []ScoredFace) *image.NRGBA {
	out := imaging.Clone(frame)

	for _, f := range faces {
		c := colorReal
		label := fmt.Sprintf("REAL %.1f%%", (1-f.FakeProb)*100)
		if f.FakeProb > FakeThreshold {
			c = colorFake
			label = fmt.Sprintf("FAKE %.1f%%", f.FakeProb*100)
		}

		drawBox(out, f.Box.Rect(), c, boxThickness)
		drawLabel(out, f.Box, label, c)
	}

	return out
}

// drawBox draws a hollow rectangle of the given border thickness, clamped to
// the image bounds
func drawBox(img *image.NRGBA, r image.Rectangle, c color.NRGBA, thickness int) {
	bounds := img.Bounds()
	for t := 0; t < thickness; t++ {
		edge := r.Inset(-t)
		top := image.Rect(edge.Min.X, edge.Min.Y, edge.Max.X, edge.Min.Y+1)
		bottom := image.Rect(edge.Min.X, edge.Max.Y-1, edge.Max.X, edge.Max.Y)
		left := image.Rect(edge.Min.X, edge.Min.Y, edge.Min.X+1, edge.Max.Y)
		right := image.Rect(edge.Max.X-1, edge.Min.Y, edge.Max.X, edge.Max.Y)
		for _, line := range []image.Rectangle{top, bottom, left, right} {
			draw.Draw(img, line.Intersect(bounds), &image.Uniform{c}, image.Point{}, draw.Src)
		}
	}
}

// drawLabel renders the verdict text on a filled banner just above the box
// (below its top edge when the box touches the frame top)
func drawLabel(img *image.NRGBA, box detect.BoundingBox, label string, c color.NRGBA) {
	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, label).Ceil()
	bannerHeight := face.Metrics().Height.Ceil() + 6

	bannerTop := box.YMin - bannerHeight
	if bannerTop < img.Bounds().Min.Y {
		bannerTop = box.YMin
	}

	banner := image.Rect(box.XMin, bannerTop, box.XMin+textWidth+8, bannerTop+bannerHeight)
	draw.Draw(img, banner.Intersect(img.Bounds()), &image.Uniform{c}, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{colorText},
		Face: face,
		Dot: fixed.P(
			box.XMin+4,
			bannerTop+bannerHeight-4,
		),
	}
	d.DrawString(label)
}
