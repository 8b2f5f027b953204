package postprocess

import (
	"gonum.org/v1/gonum/floats"
)

// ApplyWeightedNMS performs greedy suppression and then blends every kept
// detection with the candidates it suppressed.
//
// The kept box corners and keypoints become the score-weighted mean over
// the kept candidate and its suppressed members. The kept score is the
// candidate's own score, so output order and count match ApplyGreedyNMS.
//
// Arguments:
//   - detections: Candidate detections in any order.
//   - iouThreshold: IoU at or above which overlapping boxes are suppressed.
//
// Returns:
//   - Blended detections in descending score order.
func ApplyWeightedNMS(detections []Detection, iouThreshold float32) []Detection {
	filtered := make([]Detection, 0, len(detections))
	suppress(detections, iouThreshold, func(best Detection, group []Detection) {
		if len(group) == 0 {
			filtered = append(filtered, cloneDetection(best))
			return
		}
		filtered = append(filtered, blend(best, group))
	})
	return filtered
}

// blend computes the score-weighted mean of best and group in corner form.
func blend(best Detection, group []Detection) Detection {
	acc := make([]float64, coordLen(best))
	vec := make([]float64, len(acc))
	total := 0.0

	for _, d := range append([]Detection{best}, group...) {
		if len(d.KeyPoints) != len(best.KeyPoints) {
			continue
		}
		flatten(d, vec)
		w := float64(d.Score)
		floats.AddScaled(acc, w, vec)
		total += w
	}

	if total <= 0 {
		return cloneDetection(best)
	}
	floats.Scale(1/total, acc)

	out := Detection{
		Score:     best.Score,
		XMin:      float32(acc[0]),
		YMin:      float32(acc[1]),
		Width:     float32(acc[2] - acc[0]),
		Height:    float32(acc[3] - acc[1]),
		KeyPoints: make([]KeyPoint, len(best.KeyPoints)),
	}
	for k := range out.KeyPoints {
		out.KeyPoints[k] = KeyPoint{X: float32(acc[4+2*k]), Y: float32(acc[5+2*k])}
	}
	return out
}

func coordLen(d Detection) int {
	return 4 + 2*len(d.KeyPoints)
}

// flatten writes x1, y1, x2, y2 followed by keypoint pairs into dst.
func flatten(d Detection, dst []float64) {
	dst[0] = float64(d.XMin)
	dst[1] = float64(d.YMin)
	dst[2] = float64(d.XMin + d.Width)
	dst[3] = float64(d.YMin + d.Height)
	for k, kp := range d.KeyPoints {
		dst[4+2*k] = float64(kp.X)
		dst[5+2*k] = float64(kp.Y)
	}
}

func cloneDetection(d Detection) Detection {
	if d.KeyPoints != nil {
		d.KeyPoints = append([]KeyPoint(nil), d.KeyPoints...)
	}
	return d
}
