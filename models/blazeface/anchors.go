package blazeface

import (
	"github.com/pkg/errors"
)

// Anchor is a reference box in normalized input coordinates.
type Anchor struct {
	XCenter float32 `json:"x_center"`
	YCenter float32 `json:"y_center"`
	W       float32 `json:"w"`
	H       float32 `json:"h"`
}

// AnchorCount returns how many anchors the layers produce for an input of
// the given size, without generating them.
func AnchorCount(width, height int, layers []AnchorLayer) int {
	n := 0
	for _, l := range layers {
		if l.Stride <= 0 || l.AnchorsPerCell <= 0 {
			continue
		}
		n += ceilDiv(width, l.Stride) * ceilDiv(height, l.Stride) * l.AnchorsPerCell
	}
	return n
}

// GenerateAnchors builds the anchor table for an input of the given size.
//
// Anchors are emitted layer by layer, cells in row-major order, and
// AnchorsPerCell copies per cell. This is the order the network writes its
// regression vectors in, so anchor i pairs with regression vector i. Every
// anchor has unit width and height.
//
// Arguments:
//   - width: The model input width in pixels.
//   - height: The model input height in pixels.
//   - layers: The anchor scales in network output order.
//
// Returns:
//   - []Anchor: The ordered anchor table.
//   - error: ErrInvalidConfig when the size or a layer is non-positive.
//
// @example
// anchors, err := GenerateAnchors(128, 128, FaceFrontConfig().Layers)
// // len(anchors) == 896; anchors[0] == Anchor{0.03125, 0.03125, 1, 1}
func GenerateAnchors(width, height int, layers []AnchorLayer) ([]Anchor, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "input size %dx%d", width, height)
	}

	anchors := make([]Anchor, 0, AnchorCount(width, height, layers))
	w, h := float32(width), float32(height)

	for i, l := range layers {
		if l.Stride <= 0 || l.AnchorsPerCell <= 0 {
			return nil, errors.Wrapf(ErrInvalidConfig, "layer %d: stride %d, anchors per cell %d",
				i, l.Stride, l.AnchorsPerCell)
		}

		rows := ceilDiv(height, l.Stride)
		cols := ceilDiv(width, l.Stride)
		stride := float32(l.Stride)

		for row := 0; row < rows; row++ {
			yCenter := (float32(row) + 0.5) * stride / h
			for col := 0; col < cols; col++ {
				xCenter := (float32(col) + 0.5) * stride / w
				for k := 0; k < l.AnchorsPerCell; k++ {
					anchors = append(anchors, Anchor{
						XCenter: xCenter,
						YCenter: yCenter,
						W:       1,
						H:       1,
					})
				}
			}
		}
	}

	return anchors, nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
