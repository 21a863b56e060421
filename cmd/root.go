// cmd/root.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/ColonelBlimp/sndgrep/internal/config"
	"github.com/ColonelBlimp/sndgrep/internal/dsp"
	"github.com/ColonelBlimp/sndgrep/internal/pipeline"
	"github.com/ColonelBlimp/sndgrep/internal/recovery"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "sndgrep",
	Short: "Generate or search for tones and DTMF digits in raw audio",
	Long: `sndgrep synthesizes single tones and DTMF keypad digits as headerless
8 kHz float64 sample files, and searches such files or streams for them.

A file argument is read whole; without one, search reads stdin one second
at a time and generate writes to stdout.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command and exits 1 on any error
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer recovery.HandlePanicFunc(stop)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", config.AppName, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags (override config file)
	rootCmd.PersistentFlags().BoolP("debug", "D", false, "enable debug logging on stderr")
	rootCmd.PersistentFlags().Float64("threshold", dsp.DefaultThreshold, "detection threshold in raw transform units")
	rootCmd.PersistentFlags().String("bin-mapping", dsp.MappingDirect, "frequency to bin conversion: direct or scaled")
	rootCmd.PersistentFlags().String("transform", dsp.TransformGonum, "FFT backend: gonum, gofft, godsp or goertzel")
	rootCmd.PersistentFlags().StringP("format", "f", "raw", "sample file format: raw or wav")

	rootCmd.AddCommand(generateCmd, searchCmd)
}

// bindFlags ties flags to config keys. Runs on every initConfig so a
// viper.Reset between executions keeps the bindings.
func bindFlags() {
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("threshold", rootCmd.PersistentFlags().Lookup("threshold"))
	viper.BindPFlag("bin_mapping", rootCmd.PersistentFlags().Lookup("bin-mapping"))
	viper.BindPFlag("transform", rootCmd.PersistentFlags().Lookup("transform"))
	viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	viper.BindPFlag("playback", generateCmd.Flags().Lookup("play"))
	viper.BindPFlag("device_index", generateCmd.Flags().Lookup("device"))
	viper.BindPFlag("verbose", searchCmd.Flags().Lookup("verbose"))
}

func initConfig() {
	bindFlags()
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger writes diagnostics to w; debug lowers the level to Debug
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// exitClass names the error class for debug logging
func exitClass(err error) string {
	switch {
	case errors.Is(err, pipeline.ErrInvalidArgument):
		return "invalid argument"
	case errors.Is(err, pipeline.ErrIO):
		return "i/o"
	default:
		return "other"
	}
}
