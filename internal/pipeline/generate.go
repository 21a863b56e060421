package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/ColonelBlimp/sndgrep/internal/dsp"
	"github.com/ColonelBlimp/sndgrep/internal/dtmf"
	"github.com/ColonelBlimp/sndgrep/internal/pcm"
)

// Player plays a generated buffer; audio.Player satisfies it.
type Player interface {
	Play(ctx context.Context, samples []float64) error
}

// GenerateRequest describes one tone to synthesize.
type GenerateRequest struct {
	Seconds float64
	// Tone is a frequency in Hz, or a digit when DTMF is set
	Tone float64
	DTMF bool
}

// GenerateConfig wires a Generator.
type GenerateConfig struct {
	Format string
	Out    io.Writer
	// Player is optional; nil skips playback
	Player Player
	Logger *slog.Logger
}

// Generator synthesizes a buffer, writes it to a sink and optionally plays it.
type Generator struct {
	format string
	out    io.Writer
	player Player
	logger *slog.Logger
}

// NewGenerator validates cfg and builds a Generator.
func NewGenerator(cfg GenerateConfig) (*Generator, error) {
	if cfg.Out == nil {
		return nil, invalidArgument(ErrWriterRequired)
	}
	format, err := checkFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	return &Generator{
		format: format,
		out:    cfg.Out,
		player: cfg.Player,
		logger: loggerOrDiscard(cfg.Logger),
	}, nil
}

// Generate runs one synthesize cycle and returns the buffer it wrote.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (dsp.SampleBuffer, error) {
	buf, err := Synthesize(req)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("synthesized", "samples", len(buf), "seconds", buf.Duration(), "dtmf", req.DTMF, "tone", req.Tone)

	if g.format == FormatWAV {
		err = pcm.WriteWAV(g.out, buf)
	} else {
		err = pcm.WriteRaw(g.out, buf)
	}
	if err != nil {
		return nil, ioError(err)
	}

	if g.player != nil {
		if err := g.player.Play(ctx, buf); err != nil {
			return nil, ioError(fmt.Errorf("playback: %w", err))
		}
	}
	return buf, nil
}

// Synthesize turns a request into samples, resolving DTMF digits through the table.
func Synthesize(req GenerateRequest) (dsp.SampleBuffer, error) {
	var (
		buf dsp.SampleBuffer
		err error
	)
	if req.DTMF {
		digit, derr := digitOf(req.Tone)
		if derr != nil {
			return nil, invalidArgument(derr)
		}
		buf, err = dtmf.Encode(req.Seconds, digit)
	} else {
		buf, err = dsp.SynthesizeTone(req.Seconds, req.Tone)
	}
	if err != nil {
		return nil, invalidArgument(err)
	}
	return buf, nil
}

func digitOf(v float64) (int, error) {
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("%w: got %v", dtmf.ErrInvalidDigit, v)
	}
	if _, err := dtmf.Lookup(int(v)); err != nil {
		return 0, err
	}
	return int(v), nil
}
