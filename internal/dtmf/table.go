// Package dtmf maps keypad digits to dual-tone frequency pairs and back.
package dtmf

import (
	"errors"
	"fmt"

	"github.com/ColonelBlimp/sndgrep/internal/dsp"
)

// NoDigit is returned by Decode when no table entry is present
const NoDigit = -1

// ErrInvalidDigit indicates the digit is not on the keypad table
var ErrInvalidDigit = errors.New("dtmf digit must be between 0 and 9")

// Entry is one keypad digit and its (low, high) frequency pair in Hz.
type Entry struct {
	Digit int
	Low   float64
	High  float64
}

// table order is the decode tie-break priority.
// https://en.wikipedia.org/wiki/Dual-tone_multi-frequency_signaling
var table = [...]Entry{
	{0, 941, 1336},
	{1, 697, 1209},
	{2, 697, 1336},
	{3, 697, 1477},
	{4, 770, 1209},
	{5, 770, 1336},
	{6, 770, 1477},
	{7, 852, 1209},
	{8, 852, 1336},
	{9, 852, 1477},
}

// Table returns a copy of the keypad table in priority order.
func Table() [len(table)]Entry {
	return table
}

// Lookup returns the table entry for digit.
func Lookup(digit int) (Entry, error) {
	if digit < 0 || digit >= len(table) {
		return Entry{}, fmt.Errorf("%w: got %d", ErrInvalidDigit, digit)
	}
	return table[digit], nil
}

// Encode synthesizes seconds of the dual tone for digit.
func Encode(seconds float64, digit int) (dsp.SampleBuffer, error) {
	e, err := Lookup(digit)
	if err != nil {
		return nil, err
	}
	return dsp.Synthesize(seconds, e.Low, e.High)
}
