// Package pcm reads and writes sample buffers: headerless little-endian
// float64 (the native format) and 16-bit mono WAV.
package pcm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ColonelBlimp/sndgrep/internal/dsp"
)

// BytesPerSample is the size of one raw float64 sample
const BytesPerSample = 8

var (
	// ErrShortRead indicates the input ended part way through a sample
	ErrShortRead = errors.New("short read: input is not a whole number of samples")
	// ErrInvalidChunkSize indicates a chunk must hold at least one sample
	ErrInvalidChunkSize = errors.New("chunk size must be positive")
)

// SamplesIn returns how many samples a byte length holds, rounding up like the
// size calculation does, so a partial trailing sample still counts.
func SamplesIn(size int64) int {
	return int(math.Ceil(float64(size) / BytesPerSample))
}

// EncodeRaw serializes samples as little-endian float64.
func EncodeRaw(samples []float64) []byte {
	out := make([]byte, len(samples)*BytesPerSample)
	for i, s := range samples {
		binary.LittleEndian.PutUint64(out[i*BytesPerSample:], math.Float64bits(s))
	}
	return out
}

// DecodeRaw parses little-endian float64 samples. A trailing fragment is ErrShortRead.
func DecodeRaw(data []byte) (dsp.SampleBuffer, error) {
	if len(data)%BytesPerSample != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrShortRead, len(data)%BytesPerSample)
	}
	buf := make(dsp.SampleBuffer, len(data)/BytesPerSample)
	for i := range buf {
		buf[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*BytesPerSample:]))
	}
	return buf, nil
}

// WriteRaw writes samples to w in one call.
func WriteRaw(w io.Writer, samples []float64) error {
	if _, err := w.Write(EncodeRaw(samples)); err != nil {
		return fmt.Errorf("write samples: %w", err)
	}
	return nil
}

// ReadRaw reads exactly n samples from r.
func ReadRaw(r io.Reader, n int) (dsp.SampleBuffer, error) {
	data := make([]byte, n*BytesPerSample)
	got, err := io.ReadFull(r, data)
	if err != nil {
		return nil, fmt.Errorf("%w: read %d of %d bytes", ErrShortRead, got, len(data))
	}
	return DecodeRaw(data)
}

// ChunkReader splits an unbounded raw stream into fixed-size sample chunks.
// Not safe for concurrent use.
type ChunkReader struct {
	r        io.Reader
	data     []byte
	done     bool
	trailing int
}

// NewChunkReader creates a reader yielding chunks of the given number of samples.
func NewChunkReader(r io.Reader, samples int) (*ChunkReader, error) {
	if samples <= 0 {
		return nil, ErrInvalidChunkSize
	}
	return &ChunkReader{r: r, data: make([]byte, samples*BytesPerSample)}, nil
}

// Next returns the next chunk. The final chunk may be shorter than the
// configured size; a fragment under one sample at end of stream is dropped
// and reported by Trailing. Returns io.EOF once the stream is exhausted.
func (c *ChunkReader) Next() (dsp.SampleBuffer, error) {
	if c.done {
		return nil, io.EOF
	}

	got, err := io.ReadFull(c.r, c.data)
	switch {
	case err == nil:
		return DecodeRaw(c.data)
	case errors.Is(err, io.EOF):
		c.done = true
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		c.done = true
		whole := got - got%BytesPerSample
		c.trailing = got - whole
		if whole == 0 {
			return nil, io.EOF
		}
		return DecodeRaw(c.data[:whole])
	default:
		c.done = true
		return nil, fmt.Errorf("read chunk: %w", err)
	}
}

// Trailing reports how many bytes of an incomplete final sample were dropped.
func (c *ChunkReader) Trailing() int {
	return c.trailing
}
