package cmd

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ColonelBlimp/sndgrep/internal/dsp"
	"github.com/ColonelBlimp/sndgrep/internal/pcm"
	"github.com/ColonelBlimp/sndgrep/internal/pipeline"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// setupTestHome isolates viper and the config search path in a temp dir
func setupTestHome(t *testing.T) string {
	t.Helper()
	viper.Reset()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	return home
}

func writeConfig(t *testing.T, home, content string) {
	t.Helper()
	dir := filepath.Join(home, ".config", "sndgrep")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

// resetFlags undoes values left behind by an earlier Execute on the shared commands
func resetFlags() {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(reset)
	}
	rootCmd.Flags().VisitAll(reset)
	rootCmd.PersistentFlags().VisitAll(reset)
}

func execute(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var out, errOut bytes.Buffer
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCmd_HasExpectedFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()

	tests := []struct {
		name         string
		shorthand    string
		defaultValue string
	}{
		{"debug", "D", "false"},
		{"threshold", "", "1"},
		{"bin-mapping", "", "direct"},
		{"transform", "", "gonum"},
		{"format", "f", "raw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := flags.Lookup(tt.name)
			if flag == nil {
				t.Fatalf("flag %q not found", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("flag %q shorthand = %q, want %q", tt.name, flag.Shorthand, tt.shorthand)
			}
			if flag.DefValue != tt.defaultValue {
				t.Errorf("flag %q default = %q, want %q", tt.name, flag.DefValue, tt.defaultValue)
			}
			if flag.Usage == "" {
				t.Errorf("flag %q has no description", tt.name)
			}
		})
	}
}

func TestSubcommands_HaveExpectedFlags(t *testing.T) {
	tests := []struct {
		cmd       string
		flag      string
		shorthand string
	}{
		{"generate", "tone", "t"},
		{"generate", "duration", "d"},
		{"generate", "dtmf", "k"},
		{"generate", "play", "p"},
		{"generate", "device", ""},
		{"search", "tone", "t"},
		{"search", "dtmf", "k"},
		{"search", "verbose", "v"},
	}

	for _, tt := range tests {
		t.Run(tt.cmd+"/"+tt.flag, func(t *testing.T) {
			c, _, err := rootCmd.Find([]string{tt.cmd})
			if err != nil {
				t.Fatalf("Find(%q) error = %v", tt.cmd, err)
			}
			flag := c.Flags().Lookup(tt.flag)
			if flag == nil {
				t.Fatalf("flag %q not found on %s", tt.flag, tt.cmd)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("flag %q shorthand = %q, want %q", tt.flag, flag.Shorthand, tt.shorthand)
			}
		})
	}
}

func TestRootCmd_Properties(t *testing.T) {
	if rootCmd.Use != "sndgrep" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "sndgrep")
	}
	if rootCmd.Short == "" {
		t.Error("rootCmd.Short is empty")
	}
	if rootCmd.Long == "" {
		t.Error("rootCmd.Long is empty")
	}
}

func TestRootCmd_HelpOutput(t *testing.T) {
	setupTestHome(t)

	out, err := execute(t, nil, "--help")
	if err != nil {
		t.Fatalf("Execute() with --help error = %v", err)
	}
	for _, want := range []string{"sndgrep", "generate", "search", "--threshold", "--bin-mapping"} {
		if !strings.Contains(out, want) {
			t.Errorf("help output should contain %q", want)
		}
	}
}

func TestInitConfig_CreatesDefault(t *testing.T) {
	home := setupTestHome(t)

	initConfig()

	if _, err := os.Stat(filepath.Join(home, ".config", "sndgrep", "config.yaml")); err != nil {
		t.Errorf("default config not created: %v", err)
	}
	if viper.GetFloat64("threshold") != dsp.DefaultThreshold {
		t.Errorf("threshold = %v, want %v", viper.GetFloat64("threshold"), dsp.DefaultThreshold)
	}
}

func TestInitConfig_ReadsFile(t *testing.T) {
	home := setupTestHome(t)
	writeConfig(t, home, "threshold: 250\nbin_mapping: scaled\n")

	resetFlags()
	initConfig()

	if viper.GetFloat64("threshold") != 250 {
		t.Errorf("threshold = %v, want 250", viper.GetFloat64("threshold"))
	}
	if viper.GetString("bin_mapping") != "scaled" {
		t.Errorf("bin_mapping = %q, want scaled", viper.GetString("bin_mapping"))
	}
}

func TestGenerate_ToStdout(t *testing.T) {
	setupTestHome(t)

	out, err := execute(t, nil, "generate", "--tone", "440", "--duration", "0.5")
	if err != nil {
		t.Fatalf("generate error = %v", err)
	}
	if len(out) != 4000*pcm.BytesPerSample {
		t.Errorf("wrote %d bytes, want %d", len(out), 4000*pcm.BytesPerSample)
	}
}

func TestGenerate_InvalidDuration(t *testing.T) {
	home := setupTestHome(t)
	path := filepath.Join(home, "never.raw")

	for _, d := range []string{"0", "-1", "1e300"} {
		t.Run(d, func(t *testing.T) {
			_, err := execute(t, nil, "generate", "--tone", "440", "--duration", d, path)
			if !errors.Is(err, pipeline.ErrInvalidArgument) {
				t.Fatalf("error = %v, want ErrInvalidArgument", err)
			}
			if !errors.Is(err, dsp.ErrInvalidDuration) {
				t.Errorf("error = %v, want ErrInvalidDuration", err)
			}
			if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
				t.Error("output file created for invalid duration")
			}
		})
	}
}

func TestGenerate_InvalidDurationWithPlaybackSkipsDevice(t *testing.T) {
	setupTestHome(t)

	// Device failures would surface as ErrIO; validation must win first
	_, err := execute(t, nil, "generate", "--play", "--device", "99", "-t", "440", "-d", "0")
	if !errors.Is(err, pipeline.ErrInvalidArgument) {
		t.Fatalf("error = %v, want ErrInvalidArgument", err)
	}
	if errors.Is(err, pipeline.ErrIO) {
		t.Errorf("error = %v, device was opened before validation", err)
	}
}

func TestGenerate_InvalidDigit(t *testing.T) {
	setupTestHome(t)

	_, err := execute(t, nil, "generate", "--dtmf", "--tone", "12", "--duration", "1")
	if !errors.Is(err, pipeline.ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrInvalidArgument", err)
	}
}

func TestGenerate_MissingRequiredFlags(t *testing.T) {
	setupTestHome(t)

	if _, err := execute(t, nil, "generate", "--tone", "440"); err == nil {
		t.Error("expected error without --duration")
	}
}

func TestGenerateSearch_ToneRoundTrip(t *testing.T) {
	home := setupTestHome(t)
	path := filepath.Join(home, "a440.raw")

	if _, err := execute(t, nil, "generate", "-t", "440", "-d", "1", path); err != nil {
		t.Fatalf("generate error = %v", err)
	}

	out, err := execute(t, nil, "search", "--tone", "440", path)
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	if !strings.HasPrefix(out, "tone 440: found (bin 440: ") {
		t.Errorf("search output = %q", out)
	}

	out, err = execute(t, nil, "search", "--tone", "1000", path)
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	if out != "tone 1000: not found\n" {
		t.Errorf("search output = %q, want not found", out)
	}
}

func TestGenerateSearch_DTMFRoundTrip(t *testing.T) {
	home := setupTestHome(t)

	for digit := 0; digit <= 9; digit++ {
		d := string(rune('0' + digit))
		path := filepath.Join(home, d+".raw")
		if _, err := execute(t, nil, "generate", "--dtmf", "--tone", d, "--duration", "1", path); err != nil {
			t.Fatalf("generate %s error = %v", d, err)
		}

		out, err := execute(t, nil, "search", "--dtmf", path)
		if err != nil {
			t.Fatalf("search %s error = %v", d, err)
		}
		if want := "digit " + d + ": found\n"; out != want {
			t.Errorf("search output = %q, want %q", out, want)
		}
	}
}

func TestSearch_RequestedDigitMismatch(t *testing.T) {
	home := setupTestHome(t)
	path := filepath.Join(home, "4.raw")

	if _, err := execute(t, nil, "generate", "--dtmf", "-t", "4", "-d", "1", path); err != nil {
		t.Fatalf("generate error = %v", err)
	}
	out, err := execute(t, nil, "search", "--dtmf", "--tone", "8", path)
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	if out != "digit 8: not found\n" {
		t.Errorf("search output = %q", out)
	}
}

func TestSearch_ScaledMappingLongFile(t *testing.T) {
	home := setupTestHome(t)
	path := filepath.Join(home, "long.raw")

	if _, err := execute(t, nil, "generate", "--dtmf", "-t", "6", "-d", "2", path); err != nil {
		t.Fatalf("generate error = %v", err)
	}
	out, err := execute(t, nil, "search", "--bin-mapping", "scaled", "--dtmf", path)
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	if out != "digit 6: found\n" {
		t.Errorf("search output = %q", out)
	}
}

func TestSearch_Stdin(t *testing.T) {
	setupTestHome(t)

	samples, err := dsp.SynthesizeTone(2, 697)
	if err != nil {
		t.Fatalf("SynthesizeTone() error = %v", err)
	}
	var in bytes.Buffer
	if err := pcm.WriteRaw(&in, samples); err != nil {
		t.Fatalf("WriteRaw() error = %v", err)
	}

	out, err := execute(t, &in, "search", "--tone", "697")
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %q", len(lines), out)
	}
	if lines[2] != "chunks: 2, found: 2" {
		t.Errorf("summary = %q", lines[2])
	}
}

func TestSearch_EmptyStdin(t *testing.T) {
	setupTestHome(t)

	out, err := execute(t, strings.NewReader(""), "search", "--dtmf")
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	if out != "chunks: 0, found: 0\n" {
		t.Errorf("search output = %q", out)
	}
}

func TestSearch_WAVRoundTrip(t *testing.T) {
	home := setupTestHome(t)
	path := filepath.Join(home, "tone.wav")

	if _, err := execute(t, nil, "generate", "--format", "wav", "-t", "1209", "-d", "1", path); err != nil {
		t.Fatalf("generate error = %v", err)
	}
	// 16-bit quantization noise sits far above the raw default threshold
	out, err := execute(t, nil, "search", "-f", "wav", "--threshold", "1000", "--tone", "1209", path)
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	if !strings.HasPrefix(out, "tone 1209: found") {
		t.Errorf("search output = %q", out)
	}
}

func TestSearch_Errors(t *testing.T) {
	home := setupTestHome(t)
	empty := filepath.Join(home, "empty.raw")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}
	odd := filepath.Join(home, "odd.raw")
	if err := os.WriteFile(odd, make([]byte, 12), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"no query", []string{"search"}, pipeline.ErrInvalidArgument},
		{"fractional digit", []string{"search", "--dtmf", "-t", "2.5"}, pipeline.ErrInvalidArgument},
		{"bad transform", []string{"search", "--transform", "nope", "-t", "440"}, pipeline.ErrInvalidArgument},
		{"missing file", []string{"search", "-t", "440", filepath.Join(home, "missing.raw")}, pipeline.ErrIO},
		{"empty file", []string{"search", "-t", "440", empty}, pipeline.ErrIO},
		{"partial sample", []string{"search", "-t", "440", odd}, pipeline.ErrIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, nil, tt.args...)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSearch_InvalidConfig(t *testing.T) {
	home := setupTestHome(t)
	writeConfig(t, home, "threshold: -1\n")

	_, err := execute(t, nil, "search", "--tone", "440")
	if !errors.Is(err, pipeline.ErrInvalidArgument) {
		t.Fatalf("error = %v, want ErrInvalidArgument", err)
	}
	if !strings.Contains(err.Error(), "invalid config") {
		t.Errorf("error = %v, want config error", err)
	}
}

func TestSearch_VerboseDump(t *testing.T) {
	home := setupTestHome(t)
	path := filepath.Join(home, "9.raw")

	if _, err := execute(t, nil, "generate", "--dtmf", "-t", "9", "-d", "1", path); err != nil {
		t.Fatalf("generate error = %v", err)
	}
	out, err := execute(t, nil, "search", "--dtmf", "-v", path)
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	if !strings.Contains(out, "Tone 9 (852.00Hz, 1477.00Hz): Found") {
		t.Errorf("verbose output missing dump: %q", out)
	}
	if !strings.HasSuffix(out, "digit 9: found\n") {
		t.Errorf("verbose output missing report: %q", out)
	}
}

func TestExitClass(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{pipeline.ErrInvalidArgument, "invalid argument"},
		{pipeline.ErrIO, "i/o"},
		{errors.New("x"), "other"},
	}
	for _, tt := range tests {
		if got := exitClass(tt.err); got != tt.want {
			t.Errorf("exitClass(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
