// internal/audio/playback.go
package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/gen2brain/malgo"
)

var (
	ErrNotInitialized = errors.New("audio playback not initialized")
	ErrAlreadyPlaying = errors.New("audio playback already running")
)

// fullScale maps the 16-bit sample scale onto malgo's -1.0..1.0 float range
const fullScale = math.MaxInt16 + 1

// Config holds audio playback configuration
type Config struct {
	DeviceIndex int    // -1 for default device
	SampleRate  uint32 // always 8000 for generated tones
}

// DefaultConfig returns the default output device at 8 kHz
func DefaultConfig() Config {
	return Config{
		DeviceIndex: -1,
		SampleRate:  8000,
	}
}

// Player plays sample buffers on an output device
type Player struct {
	config  Config
	ctx     *malgo.AllocatedContext
	playing bool
	mu      sync.Mutex
}

// New creates a new audio playback instance
func New(cfg Config) *Player {
	return &Player{config: cfg}
}

// Init initializes the audio backend
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("init audio context: %w", err)
	}
	p.ctx = ctx
	return nil
}

func (p *Player) listDevices() ([]malgo.DeviceInfo, error) {
	if p.ctx == nil {
		return nil, ErrNotInitialized
	}
	infos, err := p.ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}
	return infos, nil
}

// Play blocks until samples have been handed to the device or ctx is done.
// Samples are on the 16-bit scale used by the synthesizer.
func (p *Player) Play(ctx context.Context, samples []float64) error {
	p.mu.Lock()
	if p.playing {
		p.mu.Unlock()
		return ErrAlreadyPlaying
	}
	if p.ctx == nil {
		p.mu.Unlock()
		return ErrNotInitialized
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.SampleRate = p.config.SampleRate
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = 1

	if p.config.DeviceIndex >= 0 {
		devices, err := p.listDevices()
		if err != nil {
			p.mu.Unlock()
			return err
		}
		if p.config.DeviceIndex >= len(devices) {
			p.mu.Unlock()
			return fmt.Errorf("device index %d out of range, available: %s",
				p.config.DeviceIndex, describeDevices(devices))
		}
		deviceConfig.Playback.DeviceID = devices[p.config.DeviceIndex].ID.Pointer()
	}
	p.playing = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.playing = false
		p.mu.Unlock()
	}()

	src := newFrameSource(samples)
	done := make(chan struct{})
	var once sync.Once

	// Callback runs on the audio thread; it only copies bytes
	onSendFrames := func(outputSamples, inputSamples []byte, frameCount uint32) {
		if src.fill(outputSamples) {
			once.Do(func() { close(done) })
		}
	}

	device, err := malgo.InitDevice(p.ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onSendFrames,
	})
	if err != nil {
		return fmt.Errorf("init device: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return fmt.Errorf("start device: %w", err)
	}

	select {
	case <-done:
	case <-ctx.Done():
	}
	_ = device.Stop()
	return ctx.Err()
}

// Close releases all audio resources
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx != nil {
		if err := p.ctx.Uninit(); err != nil {
			return fmt.Errorf("uninit context: %w", err)
		}
		p.ctx.Free()
		p.ctx = nil
	}
	return nil
}

// describeDevices names each device with its index, e.g. "0: Speakers, 1: HDMI"
func describeDevices(devices []malgo.DeviceInfo) string {
	if len(devices) == 0 {
		return "none"
	}
	names := make([]string, len(devices))
	for i, d := range devices {
		names[i] = fmt.Sprintf("%d: %s", i, d.Name())
	}
	return strings.Join(names, ", ")
}

// frameSource hands out little-endian float32 bytes to the device callback
type frameSource struct {
	mu   sync.Mutex
	data []byte
	pos  int
}

func newFrameSource(samples []float64) *frameSource {
	return &frameSource{data: float64ToFloat32Bytes(samples)}
}

// fill copies the next chunk into out, zero-padding once the data runs out.
// Returns true on the first call that has nothing left to copy: the device
// asking again means the period holding the last samples has been consumed.
func (f *frameSource) fill(out []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := copy(out, f.data[f.pos:])
	f.pos += n
	clear(out[n:])
	return n == 0 && f.pos >= len(f.data)
}

// float64ToFloat32Bytes converts 16-bit scale samples to normalized float32 bytes
func float64ToFloat32Bytes(samples []float64) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		v := float32(s / fullScale)
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}
