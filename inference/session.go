// Package inference - ONNX Runtime session that feeds a BlazeFace detector.
//
// The session owns the fixed-size input and output tensors. Callers fill
// Input() with a preprocessed image and call Detect.
package inference

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-blazeface/models/blazeface"
	"github.com/nvr-ai/go-blazeface/models/model"
	"github.com/nvr-ai/go-blazeface/models/postprocess"
)

// Config names the model file and its tensors.
type Config struct {
	// ModelPath is the path to the .onnx file.
	ModelPath string `json:"model_path" yaml:"model_path"`
	// SharedLibPath overrides GetSharedLibPath.
	SharedLibPath string `json:"shared_lib_path" yaml:"shared_lib_path"`
	// InputName is the image input tensor.
	InputName string `json:"input_name" yaml:"input_name"`
	// RegressorsName and ClassificatorsName are the two output tensors.
	RegressorsName     string `json:"regressors_name" yaml:"regressors_name"`
	ClassificatorsName string `json:"classificators_name" yaml:"classificators_name"`
	// ChannelsFirst selects an NCHW input. False binds NHWC.
	ChannelsFirst bool `json:"channels_first" yaml:"channels_first"`
	// IntraOpThreads parallelizes within graph nodes. Zero uses the default.
	IntraOpThreads int `json:"intra_op_threads" yaml:"intra_op_threads"`
	// Provider selects the execution provider. Empty means CPU.
	Provider Provider `json:"provider" yaml:"provider"`
	// DeviceID is passed to GPU providers.
	DeviceID int `json:"device_id" yaml:"device_id"`
}

// DefaultConfig returns the tensor names and NCHW input layout used by the
// exported BlazeFace ONNX models.
func DefaultConfig() Config {
	return Config{
		InputName:          "input",
		RegressorsName:     "regressors",
		ClassificatorsName: "classificators",
		ChannelsFirst:      true,
	}
}

// ConfigFromArgs returns DefaultConfig with ModelPath taken from args.Path.
func ConfigFromArgs(args model.NewModelArgs) Config {
	cfg := DefaultConfig()
	cfg.ModelPath = args.Path
	return cfg
}

// InputShape returns the image tensor shape for a detector geometry.
func (c Config) InputShape(d blazeface.Config) ort.Shape {
	if c.ChannelsFirst {
		return ort.NewShape(1, 3, int64(d.InputHeight), int64(d.InputWidth))
	}
	return ort.NewShape(1, int64(d.InputHeight), int64(d.InputWidth), 3)
}

// OutputShapes returns the regressors and classificators shapes.
func OutputShapes(d blazeface.Config) (regressors, classificators ort.Shape) {
	return ort.NewShape(1, int64(d.BoxCount), int64(d.CoordCount())),
		ort.NewShape(1, int64(d.BoxCount), 1)
}

// Session runs the model and post-processes its outputs.
type Session struct {
	session        *ort.AdvancedSession
	input          *ort.Tensor[float32]
	regressors     *ort.Tensor[float32]
	classificators *ort.Tensor[float32]
	detector       *blazeface.Detector
	logger         *zap.Logger
	mu             sync.Mutex
}

var initOnce sync.Once

// initEnvironment loads the ONNX Runtime library once per process.
func initEnvironment(libPath string) error {
	var err error
	initOnce.Do(func() {
		if ort.IsInitialized() {
			return
		}
		ort.SetSharedLibraryPath(libPath)
		err = ort.InitializeEnvironment()
	})
	if err == nil && !ort.IsInitialized() {
		err = errors.New("onnxruntime environment not initialized")
	}
	return err
}

// NewSession creates an ONNX Runtime session bound to detector's geometry.
//
// Arguments:
//   - cfg: The model and tensor names.
//   - detector: The detector that decodes the outputs.
//   - logger: Logger for session lifecycle events. Nil disables logging.
//
// Returns:
//   - *Session: The session.
//   - error: An error if the library, model or tensors cannot be set up.
func NewSession(cfg Config, detector *blazeface.Detector, logger *zap.Logger) (*Session, error) {
	if detector == nil {
		return nil, errors.New("inference: nil detector")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	libPath := cfg.SharedLibPath
	if libPath == "" {
		libPath = GetSharedLibPath()
	}
	if _, err := os.Stat(libPath); err != nil {
		return nil, errors.Wrapf(err, "onnxruntime library not found at %q", libPath)
	}
	if err := initEnvironment(libPath); err != nil {
		return nil, errors.Wrap(err, "initializing onnxruntime environment")
	}

	dcfg := detector.Config()
	s := &Session{detector: detector, logger: logger}

	var err error
	if s.input, err = ort.NewEmptyTensor[float32](cfg.InputShape(dcfg)); err != nil {
		return nil, errors.Wrap(err, "creating input tensor")
	}
	regShape, clsShape := OutputShapes(dcfg)
	if s.regressors, err = ort.NewEmptyTensor[float32](regShape); err != nil {
		s.Close()
		return nil, errors.Wrap(err, "creating regressors tensor")
	}
	if s.classificators, err = ort.NewEmptyTensor[float32](clsShape); err != nil {
		s.Close()
		return nil, errors.Wrap(err, "creating classificators tensor")
	}

	if _, err := ParseProvider(string(cfg.Provider)); err != nil {
		s.Close()
		return nil, err
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		s.Close()
		return nil, errors.Wrap(err, "creating session options")
	}
	defer options.Destroy()

	if cfg.IntraOpThreads > 0 {
		if err := options.SetIntraOpNumThreads(cfg.IntraOpThreads); err != nil {
			s.Close()
			return nil, errors.Wrap(err, "setting intra-op threads")
		}
	}

	if err := applyProvider(options, cfg); err != nil {
		s.Close()
		return nil, err
	}

	s.session, err = ort.NewAdvancedSession(
		cfg.ModelPath,
		[]string{cfg.InputName},
		[]string{cfg.RegressorsName, cfg.ClassificatorsName},
		[]ort.Value{s.input},
		[]ort.Value{s.regressors, s.classificators},
		options,
	)
	if err != nil {
		s.Close()
		return nil, errors.Wrapf(err, "creating session for %s", cfg.ModelPath)
	}

	logger.Info("onnx session ready",
		zap.String("model", cfg.ModelPath),
		zap.String("provider", string(cfg.Provider)),
		zap.Int64s("input_shape", cfg.InputShape(dcfg)),
	)
	return s, nil
}

// Input returns the input tensor buffer. Fill it with a normalized image
// laid out per Config.ChannelsFirst before calling Detect.
func (s *Session) Input() []float32 {
	return s.input.GetData()
}

// Detect runs the model on the current input and decodes its outputs.
//
// Arguments:
//   - ctx: Checked for cancellation before the model runs.
//
// Returns:
//   - []postprocess.Detection: Detections in descending score order.
//   - error: An error if the context is done or the run fails.
func (s *Session) Detect(ctx context.Context) ([]postprocess.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, errors.New("inference: session closed")
	}

	start := time.Now()
	if err := s.session.Run(); err != nil {
		return nil, errors.Wrap(err, "running session")
	}
	ran := time.Since(start)

	dets, err := s.detector.DetectOutputs(s.regressors, s.classificators)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("inference",
		zap.Duration("run", ran),
		zap.Duration("total", time.Since(start)),
		zap.Int("detections", len(dets)),
	)
	return dets, nil
}

// Close releases the session and its tensors.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if s.session != nil {
		keep(s.session.Destroy())
		s.session = nil
	}
	for _, t := range []**ort.Tensor[float32]{&s.input, &s.regressors, &s.classificators} {
		if *t != nil {
			keep((*t).Destroy())
			*t = nil
		}
	}
	return firstErr
}
