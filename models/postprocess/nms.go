// Package postprocess - provides Non-Maximum Suppression for detection results.
package postprocess

import (
	"sort"

	"github.com/nvr-ai/go-blazeface/images"
)

// DefaultIoUThreshold is the overlap at which two candidates are treated as
// the same object.
const DefaultIoUThreshold float32 = 0.5

// NMSConfig defines parameters for Non-Maximum Suppression.
type NMSConfig struct {
	// IoUThreshold is the inclusive overlap at which a candidate is suppressed.
	IoUThreshold float32 `json:"iou_threshold" yaml:"iou_threshold"`
	// Weighted replaces each kept box with the score-weighted mean of the
	// boxes it suppressed. The suppression set is unchanged.
	Weighted bool `json:"weighted" yaml:"weighted"`
}

// DefaultNMSConfig returns greedy suppression at DefaultIoUThreshold.
func DefaultNMSConfig() NMSConfig {
	return NMSConfig{IoUThreshold: DefaultIoUThreshold}
}

// ApplyNMS filters overlapping detections using Non-Maximum Suppression.
//
// Arguments:
//   - detections: Candidate detections in any order. The slice is not modified.
//   - config: NMS configuration. Weighted selects ApplyWeightedNMS.
//
// Returns:
//   - Detections in descending score order. An empty input yields an empty,
//     non-nil slice.
func ApplyNMS(detections []Detection, config NMSConfig) []Detection {
	if config.Weighted {
		return ApplyWeightedNMS(detections, config.IoUThreshold)
	}
	return ApplyGreedyNMS(detections, config.IoUThreshold)
}

// ApplyGreedyNMS performs standard greedy Non-Maximum Suppression.
//
// The highest-scoring remaining candidate is kept and every remaining
// candidate whose IoU with it is at least iouThreshold is dropped, until no
// candidates remain.
//
// Arguments:
//   - detections: Candidate detections in any order.
//   - iouThreshold: IoU at or above which overlapping boxes are suppressed.
//
// Returns:
//   - Filtered slice of detections in descending score order.
func ApplyGreedyNMS(detections []Detection, iouThreshold float32) []Detection {
	filtered := make([]Detection, 0, len(detections))
	suppress(detections, iouThreshold, func(best Detection, _ []Detection) {
		filtered = append(filtered, best)
	})
	return filtered
}

// suppress runs the greedy selection loop shared by both NMS variants. keep
// is called once per surviving detection with the members it suppressed.
func suppress(detections []Detection, iouThreshold float32, keep func(best Detection, group []Detection)) {
	n := len(detections)
	if n == 0 {
		return
	}

	order := sortedByScore(detections)
	rects := make([]images.Rect, n)
	for i, idx := range order {
		rects[i] = detections[idx].Rect()
	}

	used := make([]bool, n)
	group := make([]Detection, 0, n)

	for i := 0; i < n; i++ {
		if used[i] {
			continue
		}
		used[i] = true
		group = group[:0]

		for j := i + 1; j < n; j++ {
			if used[j] {
				continue
			}
			if images.CalculateIoU(rects[i], rects[j]) >= iouThreshold {
				used[j] = true
				group = append(group, detections[order[j]])
			}
		}

		keep(detections[order[i]], group)
	}
}

// sortedByScore returns detection indices ordered by descending score. Ties
// keep their input order.
func sortedByScore(detections []Detection) []int {
	order := make([]int, len(detections))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return detections[order[a]].Score > detections[order[b]].Score
	})
	return order
}
