package detect_test

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smegmarip/deepfake-sentinel/internal/detect"
)

func TestResolveBox(t *testing.T) {
	tests := []struct {
		name     string
		rel      detect.RelativeBox
		width    int
		height   int
		expected detect.BoundingBox
		ok       bool
	}{
		{
			name:     "centered box",
			rel:      detect.RelativeBox{XMin: 0.25, YMin: 0.25, Width: 0.5, Height: 0.5},
			width:    100,
			height:   100,
			expected: detect.BoundingBox{XMin: 25, YMin: 25, XMax: 75, YMax: 75},
			ok:       true,
		},
		{
			name:     "negative origin clamps to zero",
			rel:      detect.RelativeBox{XMin: -0.1, YMin: -0.2, Width: 0.5, Height: 0.5},
			width:    100,
			height:   100,
			expected: detect.BoundingBox{XMin: 0, YMin: 0, XMax: 50, YMax: 50},
			ok:       true,
		},
		{
			name:     "overshoot clamps to frame edge",
			rel:      detect.RelativeBox{XMin: 0.8, YMin: 0.8, Width: 0.5, Height: 0.5},
			width:    100,
			height:   100,
			expected: detect.BoundingBox{XMin: 80, YMin: 80, XMax: 100, YMax: 100},
			ok:       true,
		},
		{
			name:   "zero width is degenerate",
			rel:    detect.RelativeBox{XMin: 0.5, YMin: 0.5, Width: 0, Height: 0.2},
			width:  100,
			height: 100,
			ok:     false,
		},
		{
			name:   "box entirely past the edge is degenerate",
			rel:    detect.RelativeBox{XMin: 1.2, YMin: 0.1, Width: 0.3, Height: 0.3},
			width:  100,
			height: 100,
			ok:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box, ok := detect.ResolveBox(tt.rel, tt.width, tt.height)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, box)
			}
		})
	}
}

func TestBoundingBox_Geometry(t *testing.T) {
	box := detect.BoundingBox{XMin: 10, YMin: 20, XMax: 50, YMax: 100}

	assert.Equal(t, 40, box.Width())
	assert.Equal(t, 80, box.Height())
	assert.Equal(t, 3200, box.Area())
	assert.Equal(t, image.Rect(10, 20, 50, 100), box.Rect())
}

func TestBoundingBox_IoU(t *testing.T) {
	a := detect.BoundingBox{XMin: 0, YMin: 0, XMax: 100, YMax: 100}

	tests := []struct {
		name     string
		other    detect.BoundingBox
		expected float64
	}{
		{"identical", a, 1.0},
		{"disjoint", detect.BoundingBox{XMin: 200, YMin: 200, XMax: 300, YMax: 300}, 0.0},
		{"touching edge", detect.BoundingBox{XMin: 100, YMin: 0, XMax: 200, YMax: 100}, 0.0},
		// Intersection 50x100 = 5000, union 20000 - 5000 = 15000
		{"half overlap", detect.BoundingBox{XMin: 50, YMin: 0, XMax: 150, YMax: 100}, 5000.0 / 15000.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, a.IoU(tt.other), 1e-9)
		})
	}
}
