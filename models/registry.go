// Package models - registry for models.
package models

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-blazeface/models/blazeface"
	"github.com/nvr-ai/go-blazeface/models/model"
)

// ErrUnknownModel is returned for model names without a preset.
var ErrUnknownModel = errors.New("models: unknown model")

// Names lists the registered model names.
func Names() []model.Name {
	return []model.Name{model.ModelNameFaceFront, model.ModelNamePalm}
}

// NewConfig resolves the preset for args.Name and applies the overrides in
// args.
//
// Arguments:
//   - args: The model name and optional threshold overrides.
//
// Returns:
//   - blazeface.Config: The resolved configuration.
//   - error: ErrUnknownModel when the name has no preset.
func NewConfig(args model.NewModelArgs) (blazeface.Config, error) {
	var cfg blazeface.Config
	switch args.Name {
	case model.ModelNameFaceFront, "":
		cfg = blazeface.FaceFrontConfig()
	case model.ModelNamePalm:
		cfg = blazeface.PalmConfig()
	default:
		return blazeface.Config{}, errors.Wrapf(ErrUnknownModel, "%q", args.Name)
	}

	if args.MinScoreThreshold != nil {
		cfg.MinScoreThreshold = *args.MinScoreThreshold
	}
	if args.MaxDetections != nil {
		cfg.MaxDetections = *args.MaxDetections
	}
	cfg.NMS = args.NMS.Apply(cfg.NMS)
	return cfg, nil
}

// NewDetector creates a detector for the named model.
//
// This factory is the primary entry point for detector creation: it routes
// the name to its preset, applies overrides and validates the result.
//
// Arguments:
//   - args: Configuration parameters specifying the model and overrides.
//   - opts: Detector options such as blazeface.WithLogger.
//
// Returns:
//   - *blazeface.Detector: A ready detector.
//   - error: ErrUnknownModel, or a configuration error from blazeface.
//
// Example:
//
// ```go
//
//	detector, err := NewDetector(model.NewModelArgs{Name: model.ModelNamePalm})
//	if err != nil {
//	    log.Fatalf("Failed to create palm detector: %v", err)
//	}
//
// ```
func NewDetector(args model.NewModelArgs, opts ...blazeface.Option) (*blazeface.Detector, error) {
	cfg, err := NewConfig(args)
	if err != nil {
		return nil, err
	}
	d, err := blazeface.NewDetector(cfg, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "model %s", args.Name)
	}
	return d, nil
}
