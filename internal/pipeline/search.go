package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/ColonelBlimp/sndgrep/internal/dsp"
	"github.com/ColonelBlimp/sndgrep/internal/dtmf"
	"github.com/ColonelBlimp/sndgrep/internal/pcm"
)

// Sample file formats
const (
	FormatRaw = "raw"
	FormatWAV = "wav"
)

// Query says what a search looks for.
type Query struct {
	DTMF      bool
	Frequency float64
	Digit     int
	HasDigit  bool
}

// ToneQuery searches for a single frequency.
func ToneQuery(freq float64) (Query, error) {
	if math.IsNaN(freq) || math.IsInf(freq, 0) {
		return Query{}, invalidArgument(fmt.Errorf("tone must be a finite number, got %v", freq))
	}
	return Query{Frequency: freq}, nil
}

// DigitQuery searches for one specific DTMF digit.
func DigitQuery(digit int) (Query, error) {
	if _, err := dtmf.Lookup(digit); err != nil {
		return Query{}, invalidArgument(err)
	}
	return Query{DTMF: true, Digit: digit, HasDigit: true}, nil
}

// AnyDigitQuery reports whichever DTMF digit is present.
func AnyDigitQuery() Query {
	return Query{DTMF: true, Digit: dtmf.NoDigit}
}

// SearchConfig wires a Searcher.
type SearchConfig struct {
	Transform dsp.Transform
	Mapper    dsp.BinMapper
	Threshold float64
	Query     Query
	Format    string
	Verbose   bool
	Out       io.Writer
	Logger    *slog.Logger
}

// Searcher runs analyze→match/decode→report cycles. Not safe for concurrent use.
type Searcher struct {
	adapter *dsp.SpectrumAdapter
	matcher *dsp.ToneMatcher
	decoder *dtmf.Decoder
	query   Query
	format  string
	verbose bool
	out     io.Writer
	logger  *slog.Logger
}

// NewSearcher validates cfg and builds a Searcher.
func NewSearcher(cfg SearchConfig) (*Searcher, error) {
	if cfg.Out == nil {
		return nil, invalidArgument(ErrWriterRequired)
	}
	adapter, err := dsp.NewSpectrumAdapter(cfg.Transform)
	if err != nil {
		return nil, invalidArgument(err)
	}
	matcher, err := dsp.NewToneMatcher(cfg.Mapper, cfg.Threshold)
	if err != nil {
		return nil, invalidArgument(err)
	}
	decoder, err := dtmf.NewDecoder(cfg.Mapper, cfg.Threshold)
	if err != nil {
		return nil, invalidArgument(err)
	}
	format, err := checkFormat(cfg.Format)
	if err != nil {
		return nil, err
	}

	return &Searcher{
		adapter: adapter,
		matcher: matcher,
		decoder: decoder,
		query:   cfg.Query,
		format:  format,
		verbose: cfg.Verbose,
		out:     cfg.Out,
		logger:  loggerOrDiscard(cfg.Logger),
	}, nil
}

// Search consumes src and reports every cycle. Unbounded sources also get a
// closing summary line. A negative result is not an error.
func (s *Searcher) Search(src Source) (Summary, error) {
	if s.format == FormatWAV {
		buf, err := pcm.ReadWAV(src.Reader)
		if err != nil {
			return Summary{}, ioError(fmt.Errorf("%s: %w", src.Name, err))
		}
		return s.single(src, buf)
	}
	if src.Finite {
		n := pcm.SamplesIn(src.Size)
		if n == 0 {
			return Summary{}, ioError(fmt.Errorf("%s: %w", src.Name, ErrEmptyInput))
		}
		buf, err := pcm.ReadRaw(src.Reader, n)
		if err != nil {
			return Summary{}, ioError(fmt.Errorf("error extracting data from %s: %w", src.Name, err))
		}
		return s.single(src, buf)
	}
	return s.stream(src)
}

func (s *Searcher) single(src Source, buf dsp.SampleBuffer) (Summary, error) {
	s.logger.Debug("analyzing source", "source", src.Name, "samples", len(buf), "seconds", buf.Duration())
	res, err := s.Cycle(buf)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{Chunks: 1}
	if res.Found {
		sum.Found = 1
	}
	return sum, nil
}

func (s *Searcher) stream(src Source) (Summary, error) {
	chunks, err := pcm.NewChunkReader(src.Reader, dsp.SampleRate)
	if err != nil {
		return Summary{}, invalidArgument(err)
	}

	var sum Summary
	for {
		buf, err := chunks.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sum, ioError(fmt.Errorf("error extracting data from %s: %w", src.Name, err))
		}

		res, err := s.Cycle(buf)
		if err != nil {
			return sum, err
		}
		sum.Chunks++
		if res.Found {
			sum.Found++
		}
		s.logger.Debug("chunk analyzed", "chunk", sum.Chunks, "samples", len(buf), "found", res.Found)
	}

	if n := chunks.Trailing(); n > 0 {
		s.logger.Debug("dropped incomplete trailing sample", "bytes", n)
	}
	if err := writeSummary(s.out, sum); err != nil {
		return sum, ioError(err)
	}
	return sum, nil
}

// Cycle analyzes one buffer, reports it, and returns the result.
func (s *Searcher) Cycle(buf dsp.SampleBuffer) (AnalysisResult, error) {
	res, err := s.Analyze(buf)
	if err != nil {
		return res, err
	}

	if s.verbose {
		if err := s.decoder.Dump(s.out, res.Spectrum); err != nil {
			return res, ioError(err)
		}
		if _, err := fmt.Fprintf(s.out, "Peak: %d\n", res.Spectrum.Peak().Index); err != nil {
			return res, ioError(err)
		}
	}

	if s.query.DTMF {
		err = writeDigitReport(s.out, s.query, res.Digit)
	} else {
		err = writeToneReport(s.out, res.Tone, res.Spectrum.MaxIndex())
	}
	if err != nil {
		return res, ioError(err)
	}
	return res, nil
}

// Analyze runs the transform and the matcher or decoder without reporting.
func (s *Searcher) Analyze(buf dsp.SampleBuffer) (AnalysisResult, error) {
	spec, err := s.adapter.Analyze(buf)
	if err != nil {
		if errors.Is(err, dsp.ErrEmptyBuffer) {
			return AnalysisResult{}, ioError(err)
		}
		return AnalysisResult{}, invalidArgument(err)
	}

	res := AnalysisResult{Spectrum: spec, Digit: dtmf.NoDigit}
	if s.query.DTMF {
		res.Digit = s.decoder.Decode(spec)
		res.Found = res.Digit != dtmf.NoDigit && (!s.query.HasDigit || res.Digit == s.query.Digit)
	} else {
		res.Tone = s.matcher.Match(s.query.Frequency, spec)
		res.Found = res.Tone.Detected
	}
	return res, nil
}

func checkFormat(format string) (string, error) {
	switch format {
	case FormatRaw, "":
		return FormatRaw, nil
	case FormatWAV:
		return FormatWAV, nil
	default:
		return "", invalidArgument(fmt.Errorf("unknown format %q", format))
	}
}

func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}
