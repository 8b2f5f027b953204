package blazeface

import (
	"github.com/nvr-ai/go-blazeface/models/postprocess"
)

// Decoder converts anchors and regression vectors into detections.
type Decoder struct {
	width, height float32
	keypoints     int
	clip          float32
}

// NewDecoder returns a Decoder for the geometry in cfg.
func NewDecoder(cfg Config) Decoder {
	return Decoder{
		width:     float32(cfg.InputWidth),
		height:    float32(cfg.InputHeight),
		keypoints: cfg.KeypointCount,
		clip:      cfg.ScoreClippingThreshold,
	}
}

// Score returns the sigmoid probability of a raw logit.
func (d Decoder) Score(logit float32) float32 {
	return postprocess.Sigmoid(logit, d.clip)
}

// Calibrate decodes one anchor against its regression vector.
//
// The network regresses in input pixels relative to the anchor:
//
//	x_center = anchor.x + reg[0] / width  * anchor.w
//	y_center = anchor.y + reg[1] / height * anchor.h
//	w        = reg[2] / width  * anchor.w
//	h        = reg[3] / height * anchor.h
//	kp[j]    = anchor + (reg[4+2j], reg[5+2j]) / (width, height)
//
// The center form is converted to corner form before returning.
//
// Arguments:
//   - anchor: The anchor paired with this regression vector.
//   - regression: At least 4 + 2*keypoints values.
//   - logit: The raw classification value.
//
// Returns:
//   - postprocess.Detection: The decoded detection.
//   - bool: False when the box has non-positive width or height.
func (d Decoder) Calibrate(anchor Anchor, regression []float32, logit float32) (postprocess.Detection, bool) {
	xCenter := anchor.XCenter + regression[0]/d.width*anchor.W
	yCenter := anchor.YCenter + regression[1]/d.height*anchor.H
	w := regression[2] / d.width * anchor.W
	h := regression[3] / d.height * anchor.H

	if !(w > 0) || !(h > 0) {
		return postprocess.Detection{}, false
	}

	det := postprocess.Detection{
		Score:     d.Score(logit),
		XMin:      xCenter - w/2,
		YMin:      yCenter - h/2,
		Width:     w,
		Height:    h,
		KeyPoints: make([]postprocess.KeyPoint, d.keypoints),
	}
	for j := range det.KeyPoints {
		det.KeyPoints[j] = postprocess.KeyPoint{
			X: anchor.XCenter + regression[4+2*j]/d.width,
			Y: anchor.YCenter + regression[4+2*j+1]/d.height,
		}
	}
	return det, true
}
