package pipeline

import (
	"fmt"
	"io"

	"github.com/ColonelBlimp/sndgrep/internal/dsp"
	"github.com/ColonelBlimp/sndgrep/internal/dtmf"
)

// AnalysisResult is the outcome of one analyze cycle. It lives for one cycle only.
type AnalysisResult struct {
	Found    bool
	Tone     dsp.Match // tone search
	Digit    int       // DTMF search; dtmf.NoDigit when nothing decoded
	Spectrum *dsp.Spectrum
}

// Summary totals an unbounded search.
type Summary struct {
	Chunks int
	Found  int
}

func writeToneReport(w io.Writer, m dsp.Match, maxIndex int) error {
	var err error
	switch {
	case !m.Found():
		_, err = fmt.Fprintf(w, "tone %g: out of range (bins 0..%d)\n", m.Query, maxIndex)
	case m.Detected:
		_, err = fmt.Fprintf(w, "tone %g: found (bin %d: %.02f, %.02f)\n", m.Query, m.Bin.Index, m.Bin.Real, m.Bin.Imag)
	default:
		_, err = fmt.Fprintf(w, "tone %g: not found\n", m.Query)
	}
	return err
}

func writeDigitReport(w io.Writer, q Query, digit int) error {
	var err error
	switch {
	case q.HasDigit && digit != q.Digit:
		_, err = fmt.Fprintf(w, "digit %d: not found\n", q.Digit)
	case digit == dtmf.NoDigit:
		_, err = fmt.Fprintln(w, "no digit found")
	default:
		_, err = fmt.Fprintf(w, "digit %d: found\n", digit)
	}
	return err
}

func writeSummary(w io.Writer, s Summary) error {
	_, err := fmt.Fprintf(w, "chunks: %d, found: %d\n", s.Chunks, s.Found)
	return err
}
