package dtmf

import (
	"fmt"
	"io"

	"github.com/ColonelBlimp/sndgrep/internal/dsp"
)

// Decoder finds the first keypad digit whose two tones are both present.
type Decoder struct {
	mapBin    dsp.BinMapper
	threshold float64
}

// NewDecoder creates a decoder with the given bin mapping and detection threshold.
func NewDecoder(mapper dsp.BinMapper, threshold float64) (*Decoder, error) {
	if mapper == nil {
		return nil, dsp.ErrBinMapperRequired
	}
	if !(threshold > 0) {
		return nil, dsp.ErrInvalidThreshold
	}
	return &Decoder{mapBin: mapper, threshold: threshold}, nil
}

// Decode walks the table in digit order and returns the first digit whose
// low and high bins both exceed the threshold, or NoDigit.
func (d *Decoder) Decode(spec *dsp.Spectrum) int {
	for _, e := range table {
		if d.present(e.Low, spec) && d.present(e.High, spec) {
			return e.Digit
		}
	}
	return NoDigit
}

func (d *Decoder) present(freq float64, spec *dsp.Spectrum) bool {
	bin, ok := spec.Bin(d.mapBin(freq, spec.N))
	return ok && bin.Level() > d.threshold
}

// Dump writes the raw bin values at every table frequency, one line per digit.
// Out-of-range bins print as zero.
func (d *Decoder) Dump(w io.Writer, spec *dsp.Spectrum) error {
	for _, e := range table {
		lo, _ := spec.Bin(d.mapBin(e.Low, spec.N))
		hi, _ := spec.Bin(d.mapBin(e.High, spec.N))
		_, err := fmt.Fprintf(w, "Tone %d (%.02fHz, %.02fHz): Found (%.02f, %.02f :: %.02f, %.02f)\n",
			e.Digit, e.Low, e.High, lo.Real, lo.Imag, hi.Real, hi.Imag)
		if err != nil {
			return err
		}
	}
	return nil
}
