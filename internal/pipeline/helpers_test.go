package pipeline

import "math"

// fixedTransform ignores its input and returns the same coefficients
type fixedTransform []complex128

func (f fixedTransform) Coefficients(dst []complex128, src []float64) ([]complex128, error) {
	return append(dst[:0], f...), nil
}

func nan() float64 { return math.NaN() }
func inf() float64 { return math.Inf(1) }
