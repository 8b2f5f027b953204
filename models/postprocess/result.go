// Package postprocess - Post-processing stages shared by single-shot detectors.
package postprocess

import "github.com/nvr-ai/go-blazeface/images"

// KeyPoint is a landmark in normalized input-image coordinates.
type KeyPoint struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Detection represents a single corner-form detection result.
type Detection struct {
	// Score is the sigmoid of the classification logit, in [0, 1].
	Score float32 `json:"score"`
	// XMin and YMin are the top-left corner, normalized to the input image.
	XMin float32 `json:"x_min"`
	YMin float32 `json:"y_min"`
	// Width and Height are normalized to the input image.
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
	// KeyPoints holds the decoded landmarks in model order.
	KeyPoints []KeyPoint `json:"keypoints"`
}

// Rect returns the detection box as an images.Rect.
func (d Detection) Rect() images.Rect {
	return images.RectFromXYWH(d.XMin, d.YMin, d.Width, d.Height)
}

// Valid reports whether the box has positive area.
func (d Detection) Valid() bool {
	return d.Width > 0 && d.Height > 0
}
