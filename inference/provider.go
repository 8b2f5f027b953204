package inference

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// Provider names an ONNX Runtime execution provider.
type Provider string

const (
	// ProviderCPU uses the default CPU provider.
	ProviderCPU Provider = "cpu"
	// ProviderCUDA uses NVIDIA CUDA.
	ProviderCUDA Provider = "cuda"
	// ProviderCoreML uses Apple CoreML.
	ProviderCoreML Provider = "coreml"
	// ProviderOpenVINO uses Intel OpenVINO.
	ProviderOpenVINO Provider = "openvino"
)

// ErrUnknownProvider is returned for an unrecognized provider name.
var ErrUnknownProvider = errors.New("unknown execution provider")

// ParseProvider maps a case-insensitive name to a Provider. An empty name
// selects ProviderCPU.
func ParseProvider(name string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(name)))
	switch p {
	case "":
		return ProviderCPU, nil
	case ProviderCPU, ProviderCUDA, ProviderCoreML, ProviderOpenVINO:
		return p, nil
	default:
		return "", errors.Wrapf(ErrUnknownProvider, "%q", name)
	}
}

// applyProvider appends the configured execution provider to options.
func applyProvider(options *ort.SessionOptions, cfg Config) error {
	provider, err := ParseProvider(string(cfg.Provider))
	if err != nil {
		return err
	}

	switch provider {
	case ProviderCPU:
		return nil
	case ProviderCoreML:
		return errors.Wrap(options.AppendExecutionProviderCoreML(0), "enabling CoreML")
	case ProviderOpenVINO:
		return errors.Wrap(options.AppendExecutionProviderOpenVINO(map[string]string{
			"device_type": "CPU",
		}), "enabling OpenVINO")
	case ProviderCUDA:
		cuda, err := ort.NewCUDAProviderOptions()
		if err != nil {
			return errors.Wrap(err, "creating CUDA options")
		}
		defer cuda.Destroy()
		if err := cuda.Update(map[string]string{
			"device_id": strconv.Itoa(cfg.DeviceID),
		}); err != nil {
			return errors.Wrap(err, "updating CUDA options")
		}
		return errors.Wrap(options.AppendExecutionProviderCUDA(cuda), "enabling CUDA")
	}
	return nil
}
