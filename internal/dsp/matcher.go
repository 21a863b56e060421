package dsp

import "errors"

// DefaultThreshold is the detection level in raw transform units
const DefaultThreshold = 1.0

var (
	// ErrInvalidThreshold indicates threshold must be positive
	ErrInvalidThreshold = errors.New("threshold must be positive")
	// ErrBinMapperRequired indicates a BinMapper is required
	ErrBinMapperRequired = errors.New("bin mapper is required")
)

// MatchStatus is the outcome of a bin lookup.
type MatchStatus int

const (
	// OutOfRange means the query mapped outside 0..N/2
	OutOfRange MatchStatus = iota
	// Found means the query mapped to an existing bin
	Found
)

func (s MatchStatus) String() string {
	if s == Found {
		return "found"
	}
	return "out of range"
}

// Match is the answer to "is frequency F present?".
type Match struct {
	Query  float64
	Status MatchStatus
	Bin    FrequencyBin
	// Detected is Found plus the bin level exceeding the threshold
	Detected bool
}

// Found reports whether the query landed on a bin.
func (m Match) Found() bool {
	return m.Status == Found
}

// ToneMatcher looks queried frequencies up in a Spectrum.
type ToneMatcher struct {
	mapBin    BinMapper
	threshold float64
}

// NewToneMatcher creates a matcher with the given bin mapping and threshold.
func NewToneMatcher(mapper BinMapper, threshold float64) (*ToneMatcher, error) {
	if mapper == nil {
		return nil, ErrBinMapperRequired
	}
	if !(threshold > 0) {
		return nil, ErrInvalidThreshold
	}
	return &ToneMatcher{mapBin: mapper, threshold: threshold}, nil
}

// Match maps freq to a bin of spec. Out of range is a normal negative result;
// negative frequencies are always out of range.
func (m *ToneMatcher) Match(freq float64, spec *Spectrum) Match {
	result := Match{Query: freq, Status: OutOfRange}
	if freq < 0 {
		return result
	}
	bin, ok := spec.Bin(m.mapBin(freq, spec.N))
	if !ok {
		return result
	}
	result.Status = Found
	result.Bin = bin
	result.Detected = bin.Level() > m.threshold
	return result
}
