package dsp

import (
	"fmt"
	"math"
)

// Bin mapping names accepted by BinMapperByName
const (
	MappingDirect = "direct"
	MappingScaled = "scaled"
)

// BinMapper converts a queried frequency into a bin index for an n-sample transform.
type BinMapper func(freq float64, n int) int

// DirectBin uses the frequency value itself as the bin index, rounded down.
// Only correct when SampleRate/n == 1, i.e. one-second buffers.
func DirectBin(freq float64, n int) int {
	return int(math.Floor(freq))
}

// ScaledBin converts through bin = freq * n / SampleRate, rounded to the nearest bin.
func ScaledBin(freq float64, n int) int {
	return int(math.Round(freq * float64(n) / SampleRate))
}

// BinMapperByName resolves a configured mapping name.
func BinMapperByName(name string) (BinMapper, error) {
	switch name {
	case MappingDirect, "":
		return DirectBin, nil
	case MappingScaled:
		return ScaledBin, nil
	default:
		return nil, fmt.Errorf("unknown bin mapping %q (want %s or %s)", name, MappingDirect, MappingScaled)
	}
}
