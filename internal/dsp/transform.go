package dsp

import (
	"fmt"

	"github.com/argusdusty/gofft"
	dspfft "github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Transform names accepted by TransformByName
const (
	TransformGonum    = "gonum"
	TransformGofft    = "gofft"
	TransformGoDSP    = "godsp"
	TransformGoertzel = "goertzel"
)

// TransformByName resolves a configured transform backend.
func TransformByName(name string) (Transform, error) {
	switch name {
	case TransformGonum, "":
		return &GonumTransform{}, nil
	case TransformGofft:
		return GofftTransform{}, nil
	case TransformGoDSP:
		return GoDSPTransform{}, nil
	case TransformGoertzel:
		return GoertzelTransform{}, nil
	default:
		return nil, fmt.Errorf("unknown transform %q", name)
	}
}

// GonumTransform uses gonum's real FFT, which handles any length.
// The plan is rebuilt only when the length changes. Not safe for concurrent use.
type GonumTransform struct {
	fft *fourier.FFT
}

func (g *GonumTransform) Coefficients(dst []complex128, src []float64) ([]complex128, error) {
	n := len(src)
	if n == 0 {
		return nil, ErrTransformSize
	}
	if g.fft == nil {
		g.fft = fourier.NewFFT(n)
	} else if g.fft.Len() != n {
		g.fft.Reset(n)
	}
	return g.fft.Coefficients(fitCoefficients(dst, n), src), nil
}

// GofftTransform uses the radix-2 gofft package and only accepts power-of-two lengths.
type GofftTransform struct{}

func (GofftTransform) Coefficients(dst []complex128, src []float64) ([]complex128, error) {
	n := len(src)
	if n == 0 || n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: gofft needs a power of two, got %d", ErrTransformSize, n)
	}
	x := gofft.Float64ToComplex128Array(src)
	if err := gofft.FFT(x); err != nil {
		return nil, err
	}
	return append(dst[:0], x[:n/2+1]...), nil
}

// GoDSPTransform uses go-dsp, which falls back to Bluestein for awkward lengths.
type GoDSPTransform struct{}

func (GoDSPTransform) Coefficients(dst []complex128, src []float64) ([]complex128, error) {
	n := len(src)
	if n == 0 {
		return nil, ErrTransformSize
	}
	x := dspfft.FFTReal(src)
	return append(dst[:0], x[:n/2+1]...), nil
}

func fitCoefficients(dst []complex128, n int) []complex128 {
	want := n/2 + 1
	if cap(dst) < want {
		return make([]complex128, want)
	}
	return dst[:want]
}
