// internal/dsp/goertzel.go
package dsp

import (
	"errors"
	"math"
)

var (
	// ErrInvalidBlockSize indicates block size must be positive
	ErrInvalidBlockSize = errors.New("block size must be positive")
	// ErrInvalidBin indicates the bin index must lie in 0..BlockSize/2
	ErrInvalidBin = errors.New("bin index must be between 0 and block size / 2")
	// ErrInsufficientSamples indicates not enough samples for the configured block size
	ErrInsufficientSamples = errors.New("insufficient samples for block size")
)

// Goertzel evaluates a single DFT bin with a second-order recurrence.
// Cheaper than a full FFT when only a few bins are needed, and it serves as
// an independent reference for the FFT backends.
type Goertzel struct {
	blockSize   int
	coefficient float64 // Pre-computed: 2 * cos(ω)
	sine        float64 // Pre-computed: sin(ω)
	cosine      float64 // Pre-computed: cos(ω)
}

// NewGoertzel creates an evaluator for bin k of a blockSize-sample transform.
func NewGoertzel(k, blockSize int) (*Goertzel, error) {
	if blockSize <= 0 {
		return nil, ErrInvalidBlockSize
	}
	if k < 0 || k > blockSize/2 {
		return nil, ErrInvalidBin
	}

	// ω = 2πk / N
	omega := 2.0 * math.Pi * float64(k) / float64(blockSize)
	cosine := math.Cos(omega)

	return &Goertzel{
		blockSize:   blockSize,
		coefficient: 2.0 * cosine,
		sine:        math.Sin(omega),
		cosine:      cosine,
	}, nil
}

// Bin returns the unnormalized complex DFT value X[k] for the first BlockSize samples.
func (g *Goertzel) Bin(samples []float64) (complex128, error) {
	if len(samples) < g.blockSize {
		return 0, ErrInsufficientSamples
	}

	var s0, s1, s2 float64
	coeff := g.coefficient
	for i := 0; i < g.blockSize; i++ {
		s0 = samples[i] + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}

	// One zero-input step folds the e^(jωN) phase away:
	// X[k] = (s1·cos ω - s2) + j(s1·sin ω)
	return complex(s1*g.cosine-s2, s1*g.sine), nil
}

// GoertzelTransform computes every bin with its own Goertzel pass. O(N²);
// meant for tests and for cross-checking the FFT backends.
type GoertzelTransform struct{}

func (GoertzelTransform) Coefficients(dst []complex128, src []float64) ([]complex128, error) {
	n := len(src)
	if n == 0 {
		return nil, ErrTransformSize
	}

	out := fitCoefficients(dst, n)
	for k := range out {
		g, err := NewGoertzel(k, n)
		if err != nil {
			return nil, err
		}
		if out[k], err = g.Bin(src); err != nil {
			return nil, err
		}
	}
	return out, nil
}
