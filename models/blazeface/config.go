// Package blazeface - Post-processing engine for BlazeFace-style single-shot
// multi-box detectors.
//
// The network emits one regression vector (box offsets plus keypoint
// offsets) and one classification logit per anchor. A Detector turns that
// flat output into scored, de-duplicated corner-form detections.
package blazeface

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-blazeface/models/postprocess"
)

// AnchorLayer describes one output scale of the network.
type AnchorLayer struct {
	// Stride is the feature map stride in input pixels.
	Stride int `json:"stride" yaml:"stride"`
	// AnchorsPerCell is the number of anchors emitted for every grid cell.
	AnchorsPerCell int `json:"anchors_per_cell" yaml:"anchors_per_cell"`
}

// Config holds the model geometry and post-processing thresholds. It is
// copied into the Detector at construction and never mutated afterwards.
type Config struct {
	// InputWidth and InputHeight are the model input dimensions in pixels.
	InputWidth  int `json:"input_width" yaml:"input_width"`
	InputHeight int `json:"input_height" yaml:"input_height"`

	// BoxCount is the number of anchors the model predicts for.
	BoxCount int `json:"box_count" yaml:"box_count"`

	// KeypointCount is the number of (x, y) landmarks per box.
	KeypointCount int `json:"keypoint_count" yaml:"keypoint_count"`

	// Layers lists the anchor scales in network output order.
	Layers []AnchorLayer `json:"layers" yaml:"layers"`

	// MinScoreThreshold is the inclusive minimum sigmoid score.
	MinScoreThreshold float32 `json:"min_score_threshold" yaml:"min_score_threshold"`

	// ScoreClippingThreshold clamps raw logits before the sigmoid.
	ScoreClippingThreshold float32 `json:"score_clipping_threshold" yaml:"score_clipping_threshold"`

	// MaxDetections caps the result after suppression. Zero means unlimited.
	MaxDetections int `json:"max_detections" yaml:"max_detections"`

	// NMS controls suppression of overlapping candidates.
	NMS postprocess.NMSConfig `json:"nms" yaml:"nms"`
}

// FaceFrontConfig returns the configuration of the 128x128 front-camera
// face model: 896 anchors over strides 8 and 16 with 6 facial keypoints.
//
// Returns:
//   - Config: The face detection configuration.
//
// @example
// cfg := FaceFrontConfig()
// cfg.MinScoreThreshold = 0.75
// detector, err := NewDetector(cfg)
func FaceFrontConfig() Config {
	return Config{
		InputWidth:    128,
		InputHeight:   128,
		BoxCount:      896,
		KeypointCount: 6,
		Layers: []AnchorLayer{
			{Stride: 8, AnchorsPerCell: 2},
			{Stride: 16, AnchorsPerCell: 6},
		},
		MinScoreThreshold:      0.68,
		ScoreClippingThreshold: postprocess.DefaultScoreClip,
		NMS:                    postprocess.DefaultNMSConfig(),
	}
}

// PalmConfig returns the configuration of the 128x128 palm model, which
// shares the face anchor grid but regresses 7 hand keypoints.
func PalmConfig() Config {
	cfg := FaceFrontConfig()
	cfg.KeypointCount = 7
	cfg.MinScoreThreshold = 0.8
	return cfg
}

// DefaultConfig returns FaceFrontConfig.
func DefaultConfig() Config {
	return FaceFrontConfig()
}

// CoordCount returns the regression values per anchor: 4 box values plus 2
// per keypoint.
func (c Config) CoordCount() int {
	return 4 + 2*c.KeypointCount
}

// OutputSize returns the expected flat output length, BoxCount*(CoordCount+1).
func (c Config) OutputSize() int {
	return c.BoxCount * (c.CoordCount() + 1)
}

// Validate reports the first invalid field wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.InputWidth <= 0 || c.InputHeight <= 0:
		return errors.Wrapf(ErrInvalidConfig, "input size %dx%d", c.InputWidth, c.InputHeight)
	case c.BoxCount <= 0:
		return errors.Wrapf(ErrInvalidConfig, "box count %d", c.BoxCount)
	case c.KeypointCount < 0:
		return errors.Wrapf(ErrInvalidConfig, "keypoint count %d", c.KeypointCount)
	case len(c.Layers) == 0:
		return errors.Wrap(ErrInvalidConfig, "no anchor layers")
	case !inUnitRange(c.MinScoreThreshold):
		return errors.Wrapf(ErrInvalidConfig, "min score threshold %v", c.MinScoreThreshold)
	case !(c.NMS.IoUThreshold > 0) || c.NMS.IoUThreshold > 1:
		return errors.Wrapf(ErrInvalidConfig, "nms iou threshold %v", c.NMS.IoUThreshold)
	case !(c.ScoreClippingThreshold > 0):
		return errors.Wrapf(ErrInvalidConfig, "score clipping threshold %v", c.ScoreClippingThreshold)
	case c.MaxDetections < 0:
		return errors.Wrapf(ErrInvalidConfig, "max detections %d", c.MaxDetections)
	}

	for i, l := range c.Layers {
		if l.Stride <= 0 || l.AnchorsPerCell <= 0 {
			return errors.Wrapf(ErrInvalidConfig, "layer %d: stride %d, anchors per cell %d",
				i, l.Stride, l.AnchorsPerCell)
		}
	}
	return nil
}

func inUnitRange(v float32) bool {
	return v >= 0 && v <= 1
}
