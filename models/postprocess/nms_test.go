package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-blazeface/images"
)

func det(score, x, y, w, h float32) Detection {
	return Detection{Score: score, XMin: x, YMin: y, Width: w, Height: h}
}

func TestApplyGreedyNMS(t *testing.T) {
	tests := []struct {
		name       string
		detections []Detection
		threshold  float32
		expected   []Detection
	}{
		{
			name:       "empty",
			detections: nil,
			threshold:  0.5,
			expected:   []Detection{},
		},
		{
			name:       "single",
			detections: []Detection{det(0.7, 0.1, 0.1, 0.2, 0.2)},
			threshold:  0.5,
			expected:   []Detection{det(0.7, 0.1, 0.1, 0.2, 0.2)},
		},
		{
			name: "duplicate keeps the higher score",
			detections: []Detection{
				det(0.7, 0.1, 0.1, 0.2, 0.2),
				det(0.9, 0.11, 0.1, 0.2, 0.2),
			},
			threshold: 0.5,
			expected:  []Detection{det(0.9, 0.11, 0.1, 0.2, 0.2)},
		},
		{
			name: "disjoint boxes sorted by score",
			detections: []Detection{
				det(0.7, 0.0, 0.0, 0.2, 0.2),
				det(0.8, 0.5, 0.5, 0.2, 0.2),
				det(0.75, 0.0, 0.5, 0.2, 0.2),
			},
			threshold: 0.5,
			expected: []Detection{
				det(0.8, 0.5, 0.5, 0.2, 0.2),
				det(0.75, 0.0, 0.5, 0.2, 0.2),
				det(0.7, 0.0, 0.0, 0.2, 0.2),
			},
		},
		{
			name: "chain suppresses only against the kept box",
			// B overlaps A and C, but A and C do not overlap each other.
			detections: []Detection{
				det(0.9, 0.0, 0.0, 0.4, 0.4),
				det(0.8, 0.1, 0.0, 0.4, 0.4),
				det(0.7, 0.3, 0.0, 0.4, 0.4),
			},
			threshold: 0.5,
			expected: []Detection{
				det(0.9, 0.0, 0.0, 0.4, 0.4),
				det(0.7, 0.3, 0.0, 0.4, 0.4),
			},
		},
		{
			name: "ties keep input order",
			detections: []Detection{
				det(0.8, 0.0, 0.0, 0.2, 0.2),
				det(0.8, 0.6, 0.6, 0.2, 0.2),
			},
			threshold: 0.5,
			expected: []Detection{
				det(0.8, 0.0, 0.0, 0.2, 0.2),
				det(0.8, 0.6, 0.6, 0.2, 0.2),
			},
		},
		{
			name: "threshold is inclusive",
			// Intersection 0.5 * 1, union 1.5 * 1, IoU exactly 1/3.
			detections: []Detection{
				det(0.9, 0.0, 0.0, 1.0, 1.0),
				det(0.8, 0.5, 0.0, 1.0, 1.0),
			},
			threshold: images.CalculateIoU(images.Rect{X2: 1, Y2: 1}, images.Rect{X1: 0.5, X2: 1.5, Y2: 1}),
			expected:  []Detection{det(0.9, 0.0, 0.0, 1.0, 1.0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyGreedyNMS(tt.detections, tt.threshold)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestApplyGreedyNMS_Idempotent(t *testing.T) {
	input := []Detection{
		det(0.91, 0.10, 0.10, 0.30, 0.30),
		det(0.88, 0.12, 0.11, 0.30, 0.30),
		det(0.86, 0.50, 0.50, 0.20, 0.20),
		det(0.84, 0.55, 0.52, 0.20, 0.20),
		det(0.83, 0.05, 0.60, 0.25, 0.25),
		det(0.72, 0.30, 0.20, 0.30, 0.30),
		det(0.70, 0.80, 0.05, 0.10, 0.10),
	}

	once := ApplyGreedyNMS(input, 0.5)
	twice := ApplyGreedyNMS(once, 0.5)

	assert.Equal(t, once, twice)
	for i := range once {
		for j := i + 1; j < len(once); j++ {
			assert.Less(t, images.CalculateIoU(once[i].Rect(), once[j].Rect()), float32(0.5))
		}
	}
}

func TestApplyGreedyNMS_InputUntouched(t *testing.T) {
	input := []Detection{
		det(0.5, 0.1, 0.1, 0.2, 0.2),
		det(0.9, 0.6, 0.6, 0.2, 0.2),
	}
	snapshot := append([]Detection(nil), input...)

	_ = ApplyGreedyNMS(input, 0.5)
	assert.Equal(t, snapshot, input)
}

func TestApplyNMS_Dispatch(t *testing.T) {
	input := []Detection{
		{Score: 0.9, XMin: 0.10, YMin: 0.10, Width: 0.2, Height: 0.2, KeyPoints: []KeyPoint{{X: 0.2, Y: 0.2}}},
		{Score: 0.9, XMin: 0.12, YMin: 0.10, Width: 0.2, Height: 0.2, KeyPoints: []KeyPoint{{X: 0.24, Y: 0.2}}},
	}

	greedy := ApplyNMS(input, NMSConfig{IoUThreshold: 0.5})
	weighted := ApplyNMS(input, NMSConfig{IoUThreshold: 0.5, Weighted: true})

	require.Len(t, greedy, 1)
	require.Len(t, weighted, 1)
	assert.Equal(t, input[0], greedy[0])
	assert.InDelta(t, 0.11, weighted[0].XMin, 1e-6)
	assert.InDelta(t, 0.22, weighted[0].KeyPoints[0].X, 1e-6)
}

func TestApplyWeightedNMS(t *testing.T) {
	input := []Detection{
		{Score: 0.6, XMin: 0.2, YMin: 0.0, Width: 0.4, Height: 0.4, KeyPoints: []KeyPoint{{X: 0.4, Y: 0.2}}},
		{Score: 0.9, XMin: 0.0, YMin: 0.0, Width: 0.4, Height: 0.4, KeyPoints: []KeyPoint{{X: 0.1, Y: 0.2}}},
		{Score: 0.8, XMin: 0.7, YMin: 0.7, Width: 0.2, Height: 0.2, KeyPoints: []KeyPoint{{X: 0.8, Y: 0.8}}},
	}

	// The 0.6 box overlaps the 0.9 box with IoU 1/3.
	got := ApplyWeightedNMS(input, 0.3)
	require.Len(t, got, 2)
	assert.Len(t, ApplyGreedyNMS(input, 0.3), 2)

	blended := got[0]
	assert.Equal(t, float32(0.9), blended.Score)
	// x1 = (0.9*0 + 0.6*0.2) / 1.5, x2 = (0.9*0.4 + 0.6*0.6) / 1.5
	assert.InDelta(t, 0.08, blended.XMin, 1e-6)
	assert.InDelta(t, 0.4, blended.Width, 1e-6)
	assert.InDelta(t, 0.0, blended.YMin, 1e-6)
	assert.InDelta(t, 0.4, blended.Height, 1e-6)
	assert.InDelta(t, (0.9*0.1+0.6*0.4)/1.5, blended.KeyPoints[0].X, 1e-6)
	assert.InDelta(t, 0.2, blended.KeyPoints[0].Y, 1e-6)

	assert.Equal(t, input[2], got[1])

	// Blending must not alias the caller's keypoints.
	got[1].KeyPoints[0].X = 0
	assert.Equal(t, float32(0.8), input[2].KeyPoints[0].X)
}

func TestApplyWeightedNMS_NoOverlapMatchesGreedy(t *testing.T) {
	input := []Detection{
		det(0.7, 0.0, 0.0, 0.2, 0.2),
		det(0.8, 0.5, 0.5, 0.2, 0.2),
	}
	assert.Equal(t, ApplyGreedyNMS(input, 0.5), ApplyWeightedNMS(input, 0.5))
}
