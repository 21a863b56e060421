package pcm

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ColonelBlimp/sndgrep/internal/dsp"
)

const wavBitDepth = 16

var (
	// ErrInvalidWAV indicates the input is not a readable WAV file
	ErrInvalidWAV = errors.New("invalid WAV file")
	// ErrUnsupportedWAV indicates the WAV is not mono at the fixed sample rate
	ErrUnsupportedWAV = errors.New("unsupported WAV layout")
)

// EncodeWAV renders samples as a 16-bit mono PCM WAV at dsp.SampleRate.
// Samples are rounded and clamped to the int16 range.
func EncodeWAV(samples []float64) ([]byte, error) {
	ws := &writeSeeker{}

	intBuf := &audio.IntBuffer{
		Data: make([]int, len(samples)),
		Format: &audio.Format{
			SampleRate:  dsp.SampleRate,
			NumChannels: 1,
		},
		SourceBitDepth: wavBitDepth,
	}
	for i, s := range samples {
		intBuf.Data[i] = int(clamp16(s))
	}

	enc := wav.NewEncoder(ws, dsp.SampleRate, wavBitDepth, 1, 1)
	if err := enc.Write(intBuf); err != nil {
		return nil, fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close wav encoder: %w", err)
	}

	return ws.buf, nil
}

// WriteWAV encodes samples and writes the WAV file to w.
func WriteWAV(w io.Writer, samples []float64) error {
	data, err := EncodeWAV(samples)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return nil
}

// DecodeWAV parses a mono WAV at dsp.SampleRate into samples on the 16-bit scale.
func DecodeWAV(data []byte) (dsp.SampleBuffer, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, ErrInvalidWAV
	}

	pcmBuf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	if dec.NumChans != 1 || dec.SampleRate != dsp.SampleRate {
		return nil, fmt.Errorf("%w: %d channels at %d Hz, want mono at %d Hz",
			ErrUnsupportedWAV, dec.NumChans, dec.SampleRate, dsp.SampleRate)
	}

	// Rescale other bit depths onto the 16-bit amplitude range
	scale := math.Pow(2, float64(wavBitDepth)-float64(dec.BitDepth))
	samples := make(dsp.SampleBuffer, len(pcmBuf.Data))
	for i, v := range pcmBuf.Data {
		samples[i] = float64(v) * scale
	}
	return samples, nil
}

// ReadWAV reads a whole WAV stream from r.
func ReadWAV(r io.Reader) (dsp.SampleBuffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	return DecodeWAV(data)
}

func clamp16(s float64) int16 {
	v := math.Round(s)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// writeSeeker is an in-memory io.WriteSeeker so WAV headers can be patched
// before the bytes go to a non-seekable sink such as stdout.
type writeSeeker struct {
	buf []byte
	pos int
}

func (ws *writeSeeker) Write(p []byte) (int, error) {
	end := ws.pos + len(p)
	if end > len(ws.buf) {
		ws.buf = append(ws.buf, make([]byte, end-len(ws.buf))...)
	}
	copy(ws.buf[ws.pos:], p)
	ws.pos = end
	return len(p), nil
}

func (ws *writeSeeker) Seek(offset int64, whence int) (int64, error) {
	var newPos int
	switch whence {
	case io.SeekStart:
		newPos = int(offset)
	case io.SeekCurrent:
		newPos = ws.pos + int(offset)
	case io.SeekEnd:
		newPos = len(ws.buf) + int(offset)
	default:
		return 0, fmt.Errorf("invalid whence: %d", whence)
	}
	if newPos < 0 || newPos > len(ws.buf) {
		return 0, fmt.Errorf("seek position %d out of bounds [0, %d]", newPos, len(ws.buf))
	}
	ws.pos = newPos
	return int64(ws.pos), nil
}
