package blazeface

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-blazeface/models/postprocess"
)

// DetectTensors decodes gorgonia tensors holding the regressors and
// classificators outputs. Any shape with the right total size is accepted,
// so [1, N, C], [N, C] and a flat [N*C] all work.
func (d *Detector) DetectTensors(regressors, classificators tensor.Tensor) ([]postprocess.Detection, error) {
	reg, err := Float32s(regressors)
	if err != nil {
		return nil, errors.Wrap(err, "regressors")
	}
	cls, err := Float32s(classificators)
	if err != nil {
		return nil, errors.Wrap(err, "classificators")
	}
	return d.DetectSplit(reg, cls)
}

// Float32s returns the row-major float32 contents of t, materializing views.
func Float32s(t tensor.Tensor) ([]float32, error) {
	if t == nil {
		return nil, errors.Wrap(ErrInputSize, "nil tensor")
	}
	if t.Dtype() != tensor.Float32 {
		return nil, errors.Wrapf(ErrInputSize, "dtype %v, want float32", t.Dtype())
	}
	if v, ok := t.(tensor.View); ok && v.IsView() {
		t = v.Materialize()
	}

	switch data := t.Data().(type) {
	case []float32:
		return data, nil
	case float32:
		return []float32{data}, nil
	default:
		return nil, errors.Wrapf(ErrInputSize, "unsupported backing %T", data)
	}
}
