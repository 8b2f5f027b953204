// Package images - Normalized box geometry shared by the post-processing stages.
package images

import (
	"image"
	"math"

	"github.com/chewxy/math32"
)

// Rect is a corner-form box in normalized image coordinates.
type Rect struct {
	// X1,Y1 is the top-left corner and X2,Y2 the bottom-right.
	X1, Y1, X2, Y2 float32
}

// RectFromXYWH builds a Rect from a top-left corner and a size.
func RectFromXYWH(x, y, w, h float32) Rect {
	return Rect{X1: x, Y1: y, X2: x + w, Y2: y + h}
}

// Width returns the horizontal extent of the box.
func (r Rect) Width() float32 {
	return r.X2 - r.X1
}

// Height returns the vertical extent of the box.
func (r Rect) Height() float32 {
	return r.Y2 - r.Y1
}

// Area returns the box area, or 0 when either side is non-positive.
func (r Rect) Area() float32 {
	w, h := r.Width(), r.Height()
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Empty reports whether the box encloses no area.
func (r Rect) Empty() bool {
	return r.Area() == 0
}

// ToImageRectangle scales the normalized box onto an image of the given
// pixel size.
//
// Arguments:
//   - width: The target image width in pixels.
//   - height: The target image height in pixels.
//
// Returns:
//   - image.Rectangle: The canonical pixel rectangle.
//
// @example
// r := Rect{X1: 0.25, Y1: 0.25, X2: 0.75, Y2: 0.5}
// px := r.ToImageRectangle(640, 480) // (160,120)-(480,240)
func (r Rect) ToImageRectangle(width, height int) image.Rectangle {
	w, h := float64(width), float64(height)
	return image.Rect(
		int(math.Round(float64(r.X1)*w)),
		int(math.Round(float64(r.Y1)*h)),
		int(math.Round(float64(r.X2)*w)),
		int(math.Round(float64(r.Y2)*h)),
	).Canon()
}

// CalculateIoU measures how much two boxes overlap as the ratio of their
// intersection area to their union area.
//
//	IoU = Area of Intersection / Area of Union
//
//	- 1.0 means the boxes are identical.
//	- 0.0 means the boxes do not overlap, or touch only along an edge.
//
// The intersection corner is the maximum of the two top-left corners and the
// minimum of the two bottom-right corners. The union follows from
// inclusion-exclusion:
//
//	Area(Union) = Area(A) + Area(B) - Area(Intersection)
//
// Boxes without area contribute 0 and a zero union yields 0, so the result
// is never NaN.
//
// Arguments:
//   - r: The first box.
//   - o: The other box to compare against.
//
// Returns:
//   - float32: A value between 0.0 and 1.0 representing the IoU score.
//
// Example Usage:
// ```go
//
//	a := Rect{X1: 0, Y1: 0, X2: 0.5, Y2: 0.5}
//	b := Rect{X1: 0.25, Y1: 0.25, X2: 0.75, Y2: 0.75}
//
//	iou := CalculateIoU(a, b) // 0.0625 / (0.25 + 0.25 - 0.0625) = 0.142857
//
// ```
func CalculateIoU(r, o Rect) float32 {
	ix1 := math32.Max(r.X1, o.X1)
	iy1 := math32.Max(r.Y1, o.Y1)
	ix2 := math32.Min(r.X2, o.X2)
	iy2 := math32.Min(r.Y2, o.Y2)

	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0.0
	}
	interArea := interW * interH

	unionArea := r.Area() + o.Area() - interArea
	if unionArea <= 0 {
		return 0.0
	}

	// Rounding can push a near-identical pair a hair past 1.
	return math32.Min(interArea/unionArea, 1.0)
}
