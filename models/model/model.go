// Package model - Names and load arguments for the supported detector models.
package model

import "github.com/nvr-ai/go-blazeface/models/postprocess"

// Family is the family of models.
type Family string

const (
	// ModelFamilyFace is the face detector family.
	ModelFamilyFace Family = "face"
	// ModelFamilyHand is the hand (palm) detector family.
	ModelFamilyHand Family = "hand"
)

// Name is the unique identifier of a model.
type Name string

const (
	// ModelNameFaceFront is the 128x128 front-camera face detector.
	ModelNameFaceFront Name = "face_detection_front"
	// ModelNamePalm is the 128x128 palm detector.
	ModelNamePalm Name = "palm_detection"
)

// Family returns the family a model name belongs to, or "" when unknown.
func (n Name) Family() Family {
	switch n {
	case ModelNameFaceFront:
		return ModelFamilyFace
	case ModelNamePalm:
		return ModelFamilyHand
	default:
		return ""
	}
}

// NewModelArgs is the arguments for creating a new detector. Nil overrides
// keep the preset value of the named model.
type NewModelArgs struct {
	Name Name   `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`

	MinScoreThreshold *float32     `json:"min_score_threshold,omitempty" yaml:"min_score_threshold,omitempty"`
	MaxDetections     *int         `json:"max_detections,omitempty" yaml:"max_detections,omitempty"`
	NMS               *NMSOverride `json:"nms,omitempty" yaml:"nms,omitempty"`
}

// NMSOverride changes individual suppression settings. Nil fields keep
// the preset value.
type NMSOverride struct {
	IoUThreshold *float32 `json:"iou_threshold,omitempty" yaml:"iou_threshold,omitempty"`
	Weighted     *bool    `json:"weighted,omitempty" yaml:"weighted,omitempty"`
}

// Apply returns cfg with the non-nil fields of o set. A nil override
// returns cfg unchanged.
func (o *NMSOverride) Apply(cfg postprocess.NMSConfig) postprocess.NMSConfig {
	if o == nil {
		return cfg
	}
	if o.IoUThreshold != nil {
		cfg.IoUThreshold = *o.IoUThreshold
	}
	if o.Weighted != nil {
		cfg.Weighted = *o.Weighted
	}
	return cfg
}
