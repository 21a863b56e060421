package dsp

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	// ErrTransformRequired indicates a SpectrumAdapter needs a Transform
	ErrTransformRequired = errors.New("transform is required")
	// ErrEmptyBuffer indicates there are no samples to analyze
	ErrEmptyBuffer = errors.New("sample buffer is empty")
	// ErrTransformSize indicates the transform cannot handle the buffer length
	ErrTransformSize = errors.New("transform does not support this length")
	// ErrCoefficientCount indicates a transform returned the wrong number of bins
	ErrCoefficientCount = errors.New("transform returned wrong number of coefficients")
)

// Transform is a real-to-complex forward DFT, X[k] = Σ x[n]·e^(-2πikn/N).
// Coefficients must return exactly len(src)/2+1 values, reusing dst when it
// has room, and must not modify src.
type Transform interface {
	Coefficients(dst []complex128, src []float64) ([]complex128, error)
}

// FrequencyBin is one transform output slot. Bin k nominally represents
// k * SampleRate / N Hz.
type FrequencyBin struct {
	Index int
	Real  float64
	Imag  float64
}

// Level is the detection heuristic: the larger raw component, not the true magnitude.
func (b FrequencyBin) Level() float64 {
	return math.Max(math.Abs(b.Real), math.Abs(b.Imag))
}

// Spectrum is the analysis of one N-sample buffer.
type Spectrum struct {
	N    int
	Bins []FrequencyBin
}

// NewSpectrum wraps directly supplied bins for an n-sample buffer.
func NewSpectrum(n int, bins []FrequencyBin) *Spectrum {
	return &Spectrum{N: n, Bins: bins}
}

// MaxIndex is the highest valid bin index, N/2.
func (s *Spectrum) MaxIndex() int {
	return s.N / 2
}

// Bin returns bin k when 0 <= k <= N/2. Out-of-range queries report false.
func (s *Spectrum) Bin(k int) (FrequencyBin, bool) {
	if k < 0 || k > s.MaxIndex() || k >= len(s.Bins) {
		return FrequencyBin{}, false
	}
	return s.Bins[k], true
}

// Peak returns the bin with the most negative imaginary component.
func (s *Spectrum) Peak() FrequencyBin {
	if len(s.Bins) == 0 {
		return FrequencyBin{}
	}
	peak := s.Bins[0]
	for _, b := range s.Bins[1:] {
		if b.Imag < peak.Imag {
			peak = b
		}
	}
	return peak
}

// SpectrumAdapter converts sample buffers into frequency bins through a Transform.
// It keeps a coefficient scratch slice between calls; results never depend on it.
type SpectrumAdapter struct {
	transform Transform
	scratch   []complex128
}

// NewSpectrumAdapter creates an adapter around the given transform.
func NewSpectrumAdapter(t Transform) (*SpectrumAdapter, error) {
	if t == nil {
		return nil, ErrTransformRequired
	}
	return &SpectrumAdapter{transform: t}, nil
}

// Analyze returns the N/2+1 bins of buf. buf is neither modified nor retained.
func (a *SpectrumAdapter) Analyze(buf SampleBuffer) (*Spectrum, error) {
	n := len(buf)
	if n == 0 {
		return nil, ErrEmptyBuffer
	}

	coeffs, err := a.transform.Coefficients(a.scratch, slices.Clone(buf))
	if err != nil {
		return nil, fmt.Errorf("transform %d samples: %w", n, err)
	}
	if len(coeffs) != n/2+1 {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrCoefficientCount, len(coeffs), n/2+1)
	}
	a.scratch = coeffs

	bins := make([]FrequencyBin, len(coeffs))
	for k, c := range coeffs {
		bins[k] = FrequencyBin{Index: k, Real: real(c), Imag: imag(c)}
	}
	return &Spectrum{N: n, Bins: bins}, nil
}
