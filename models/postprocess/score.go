package postprocess

import "github.com/chewxy/math32"

// DefaultScoreClip bounds raw logits before exponentiation. exp(80) still
// fits in a float32.
const DefaultScoreClip float32 = 80

// Sigmoid maps a raw classification logit to a probability in [0, 1].
//
// The logit is clamped to [-clip, clip] first so that math32.Exp never
// overflows. A non-positive clip falls back to DefaultScoreClip.
//
// Arguments:
//   - logit: The raw network output.
//   - clip: The symmetric clamp applied to logit.
//
// Returns:
//   - float32: 1 / (1 + exp(-logit)).
func Sigmoid(logit, clip float32) float32 {
	if clip <= 0 || math32.IsNaN(clip) {
		clip = DefaultScoreClip
	}
	if math32.IsNaN(logit) {
		return 0
	}
	logit = math32.Max(-clip, math32.Min(clip, logit))
	return 1 / (1 + math32.Exp(-logit))
}

// PassesThreshold reports whether score meets the inclusive lower bound.
func PassesThreshold(score, threshold float32) bool {
	return score >= threshold
}

// FilterByScore returns the detections whose score is at least threshold.
//
// Input order is preserved and the input slice is not modified.
//
// Arguments:
//   - detections: Candidate detections in decode order.
//   - threshold: The inclusive minimum score.
//
// Returns:
//   - []Detection: A new slice holding the retained detections.
func FilterByScore(detections []Detection, threshold float32) []Detection {
	kept := make([]Detection, 0, len(detections))
	for _, d := range detections {
		if PassesThreshold(d.Score, threshold) {
			kept = append(kept, d)
		}
	}
	return kept
}
