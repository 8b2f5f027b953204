package blazeface

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-blazeface/models/postprocess"
)

// Detector runs anchor decoding, score filtering and suppression over the
// raw output of a single-shot detector.
//
// The anchor table is generated once by NewDetector and only read
// afterwards, so a Detector is safe for concurrent use.
type Detector struct {
	cfg     Config
	anchors []Anchor
	decoder Decoder
	logger  *zap.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// TensorData is satisfied by tensors exposing a flat float32 view, such as
// onnxruntime_go's *Tensor[float32].
type TensorData interface {
	GetData() []float32
}

// NewDetector validates cfg and generates the anchor table.
//
// Arguments:
//   - cfg: The model geometry and thresholds. It is copied.
//   - opts: Optional settings such as WithLogger.
//
// Returns:
//   - *Detector: The ready detector.
//   - error: ErrInvalidConfig or ErrAnchorCount.
//
// @example
// detector, err := NewDetector(FaceFrontConfig(), WithLogger(logger))
//
//	if err != nil {
//	    return err
//	}
//
// detections, err := detector.Detect(output)
func NewDetector(cfg Config, opts ...Option) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Layers = append([]AnchorLayer(nil), cfg.Layers...)

	anchors, err := GenerateAnchors(cfg.InputWidth, cfg.InputHeight, cfg.Layers)
	if err != nil {
		return nil, errors.Wrap(err, "generating anchors")
	}
	if len(anchors) != cfg.BoxCount {
		return nil, errors.Wrapf(ErrAnchorCount, "layers produce %d anchors, model declares %d",
			len(anchors), cfg.BoxCount)
	}

	d := &Detector{
		cfg:     cfg,
		anchors: anchors,
		decoder: NewDecoder(cfg),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.logger.Debug("anchors generated",
		zap.Int("anchors", len(anchors)),
		zap.Int("coords", cfg.CoordCount()),
		zap.Int("input_width", cfg.InputWidth),
		zap.Int("input_height", cfg.InputHeight),
	)

	return d, nil
}

// Config returns a copy of the detector configuration.
func (d *Detector) Config() Config {
	cfg := d.cfg
	cfg.Layers = append([]AnchorLayer(nil), d.cfg.Layers...)
	return cfg
}

// Anchors returns a copy of the anchor table.
func (d *Detector) Anchors() []Anchor {
	return append([]Anchor(nil), d.anchors...)
}

// Detect decodes a flat output tensor of BoxCount*CoordCount regression
// values followed by BoxCount classification logits.
//
// Arguments:
//   - output: The flat network output. It is not modified.
//
// Returns:
//   - []postprocess.Detection: Detections in descending score order. Empty,
//     not nil, when nothing passes.
//   - error: ErrInputSize when len(output) != OutputSize().
func (d *Detector) Detect(output []float32) ([]postprocess.Detection, error) {
	if len(output) != d.cfg.OutputSize() {
		return nil, errors.Wrapf(ErrInputSize, "got %d values, want %d", len(output), d.cfg.OutputSize())
	}
	split := d.cfg.BoxCount * d.cfg.CoordCount()
	return d.detect(output[:split], output[split:]), nil
}

// DetectOutputs decodes the two separate model outputs: regressors shaped
// [1, BoxCount, CoordCount] and classificators shaped [1, BoxCount, 1].
func (d *Detector) DetectOutputs(regressors, classificators TensorData) ([]postprocess.Detection, error) {
	if regressors == nil || classificators == nil {
		return nil, errors.Wrap(ErrInputSize, "nil output tensor")
	}
	return d.DetectSplit(regressors.GetData(), classificators.GetData())
}

// DetectSplit is DetectOutputs over plain slices.
func (d *Detector) DetectSplit(regressors, logits []float32) ([]postprocess.Detection, error) {
	if want := d.cfg.BoxCount * d.cfg.CoordCount(); len(regressors) != want {
		return nil, errors.Wrapf(ErrInputSize, "regressors: got %d values, want %d", len(regressors), want)
	}
	if len(logits) != d.cfg.BoxCount {
		return nil, errors.Wrapf(ErrInputSize, "classificators: got %d values, want %d", len(logits), d.cfg.BoxCount)
	}
	return d.detect(regressors, logits), nil
}

func (d *Detector) detect(regressors, logits []float32) []postprocess.Detection {
	coords := d.cfg.CoordCount()
	candidates := make([]postprocess.Detection, 0, 16)
	degenerate := 0

	for i, anchor := range d.anchors {
		if !postprocess.PassesThreshold(d.decoder.Score(logits[i]), d.cfg.MinScoreThreshold) {
			continue
		}
		det, ok := d.decoder.Calibrate(anchor, regressors[i*coords:(i+1)*coords], logits[i])
		if !ok {
			degenerate++
			continue
		}
		candidates = append(candidates, det)
	}

	kept := postprocess.ApplyNMS(candidates, d.cfg.NMS)
	if d.cfg.MaxDetections > 0 && len(kept) > d.cfg.MaxDetections {
		kept = kept[:d.cfg.MaxDetections]
	}

	if ce := d.logger.Check(zap.DebugLevel, "detect"); ce != nil {
		ce.Write(
			zap.Int("candidates", len(candidates)),
			zap.Int("degenerate", degenerate),
			zap.Int("kept", len(kept)),
		)
	}

	return kept
}
