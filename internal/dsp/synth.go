// Package dsp synthesizes tone buffers and turns them into frequency bins.
// Everything here runs at the fixed SampleRate.
package dsp

import (
	"errors"
	"math"
)

const (
	// SampleRate is the only supported rate in Hz
	SampleRate = 8000
	// Amplitude scales each sine to half of the 16-bit signed range
	Amplitude = math.MaxInt16 / 2.0
	// MaxDuration caps a synthesized buffer at one hour of samples
	MaxDuration = 3600
)

var (
	// ErrInvalidDuration indicates duration must be positive and at most MaxDuration
	ErrInvalidDuration = errors.New("duration must be positive and at most one hour")
	// ErrInvalidFrequency indicates a tone frequency must be finite and non-negative
	ErrInvalidFrequency = errors.New("frequency must be finite and non-negative")
)

// SampleBuffer is a headerless run of mono samples at SampleRate.
type SampleBuffer []float64

// Duration returns the buffer length in seconds.
func (b SampleBuffer) Duration() float64 {
	return float64(len(b)) / SampleRate
}

// SampleCount returns ceil(seconds * SampleRate).
func SampleCount(seconds float64) int {
	return int(math.Ceil(seconds * SampleRate))
}

// ValidDuration reports whether seconds lies in (0, MaxDuration].
func ValidDuration(seconds float64) bool {
	return seconds > 0 && seconds <= MaxDuration
}

// Synthesize produces seconds worth of samples holding the sum of two sines.
// A zero frequency contributes nothing, so high=0 yields a single tone.
func Synthesize(seconds, low, high float64) (SampleBuffer, error) {
	if !ValidDuration(seconds) {
		return nil, ErrInvalidDuration
	}
	if !validFrequency(low) || !validFrequency(high) {
		return nil, ErrInvalidFrequency
	}

	n := SampleCount(seconds)
	buf := make(SampleBuffer, n)

	// sample i = sin(i * 2π * f / rate)
	stepLow := 2 * math.Pi * (low / SampleRate)
	stepHigh := 2 * math.Pi * (high / SampleRate)
	for i := range buf {
		a := math.Sin(float64(i) * stepLow)
		b := math.Sin(float64(i) * stepHigh)
		buf[i] = (a + b) * Amplitude
	}

	return buf, nil
}

// SynthesizeTone produces a single sine at freq.
func SynthesizeTone(seconds, freq float64) (SampleBuffer, error) {
	return Synthesize(seconds, freq, 0)
}

func validFrequency(f float64) bool {
	return f >= 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}
