package images

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestIoU_Correctness validates the IoU implementation against known test cases
func TestIoU_Correctness(t *testing.T) {
	tests := []struct {
		name     string
		r1       Rect
		r2       Rect
		expected float32
		epsilon  float32
	}{
		{
			name:     "Identical rectangles",
			r1:       Rect{0.1, 0.1, 0.6, 0.6},
			r2:       Rect{0.1, 0.1, 0.6, 0.6},
			expected: 1.0,
			epsilon:  1e-6,
		},
		{
			name:     "No overlap",
			r1:       Rect{0, 0, 0.25, 0.25},
			r2:       Rect{0.5, 0.5, 0.75, 0.75},
			expected: 0.0,
			epsilon:  1e-6,
		},
		{
			name:     "Touching edges",
			r1:       Rect{0, 0, 0.5, 0.5},
			r2:       Rect{0.5, 0, 1, 0.5},
			expected: 0.0,
			epsilon:  1e-6,
		},
		{
			name:     "Half overlap",
			r1:       Rect{0, 0, 0.5, 0.5},
			r2:       Rect{0.25, 0.25, 0.75, 0.75},
			expected: 0.142857, // 0.0625 / (0.25 + 0.25 - 0.0625)
			epsilon:  1e-4,
		},
		{
			name:     "One inside other",
			r1:       Rect{0, 0, 0.5, 0.5},
			r2:       Rect{0.125, 0.125, 0.375, 0.375},
			expected: 0.25,
			epsilon:  1e-4,
		},
		{
			name:     "Zero area box",
			r1:       Rect{0.2, 0.2, 0.2, 0.2},
			r2:       Rect{0.2, 0.2, 0.2, 0.2},
			expected: 0.0,
			epsilon:  0,
		},
		{
			name:     "Inverted box",
			r1:       Rect{0.6, 0.6, 0.1, 0.1},
			r2:       Rect{0.1, 0.1, 0.6, 0.6},
			expected: 0.0,
			epsilon:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateIoU(tt.r1, tt.r2)
			assert.InDelta(t, tt.expected, result, float64(tt.epsilon))

			// IoU(A, B) must equal IoU(B, A).
			reverse := CalculateIoU(tt.r2, tt.r1)
			assert.Equal(t, result, reverse, "IoU not symmetric")

			assert.GreaterOrEqual(t, result, float32(0))
			assert.LessOrEqual(t, result, float32(1))
		})
	}
}

func TestIoU_SelfIsOne(t *testing.T) {
	boxes := []Rect{
		RectFromXYWH(0, 0, 1, 1),
		RectFromXYWH(0.3, 0.7, 0.01, 0.02),
		RectFromXYWH(-0.2, -0.1, 0.4, 0.3),
		RectFromXYWH(0.123456, 0.654321, 0.333333, 0.111111),
	}
	for _, b := range boxes {
		assert.Equal(t, float32(1), CalculateIoU(b, b), "box %+v", b)
	}
}

func TestRect_Geometry(t *testing.T) {
	r := RectFromXYWH(0.25, 0.5, 0.5, 0.25)

	assert.Equal(t, float32(0.5), r.Width())
	assert.Equal(t, float32(0.25), r.Height())
	assert.Equal(t, float32(0.125), r.Area())
	assert.False(t, r.Empty())

	assert.True(t, RectFromXYWH(0.1, 0.1, 0, 0.5).Empty())
	assert.True(t, RectFromXYWH(0.1, 0.1, -0.2, 0.5).Empty())
}

func TestRect_ToImageRectangle(t *testing.T) {
	tests := []struct {
		name     string
		rect     Rect
		w, h     int
		expected image.Rectangle
	}{
		{
			name:     "quarter box on VGA",
			rect:     Rect{X1: 0.25, Y1: 0.25, X2: 0.75, Y2: 0.5},
			w:        640,
			h:        480,
			expected: image.Rect(160, 120, 480, 240),
		},
		{
			name:     "full frame",
			rect:     Rect{X1: 0, Y1: 0, X2: 1, Y2: 1},
			w:        128,
			h:        128,
			expected: image.Rect(0, 0, 128, 128),
		},
		{
			name:     "inverted corners are canonicalized",
			rect:     Rect{X1: 0.5, Y1: 0.5, X2: 0.25, Y2: 0.25},
			w:        100,
			h:        100,
			expected: image.Rect(25, 25, 50, 50),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.rect.ToImageRectangle(tt.w, tt.h))
		})
	}
}
