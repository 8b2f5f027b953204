package blazeface

import "github.com/pkg/errors"

var (
	// ErrInvalidConfig is returned when a Config field is out of range.
	ErrInvalidConfig = errors.New("blazeface: invalid config")
	// ErrAnchorCount is returned when the anchor layers do not produce
	// exactly BoxCount anchors.
	ErrAnchorCount = errors.New("blazeface: anchor count mismatch")
	// ErrInputSize is returned when an output tensor has the wrong length.
	ErrInputSize = errors.New("blazeface: unexpected output tensor size")
)
