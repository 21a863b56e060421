package cmd

import (
	"context"
	"fmt"

	"github.com/ColonelBlimp/sndgrep/internal/audio"
	"github.com/ColonelBlimp/sndgrep/internal/config"
	"github.com/ColonelBlimp/sndgrep/internal/pipeline"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [file]",
	Short: "Synthesize a tone or DTMF digit",
	Long: `Synthesize --duration seconds of a --tone (Hz), or with --dtmf the dual
tone for keypad digit --tone, and write it to file or stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().Float64P("tone", "t", 0, "tone frequency in Hz, or digit 0-9 with --dtmf")
	generateCmd.Flags().Float64P("duration", "d", 0, "duration in seconds, greater than 0 and at most 3600")
	generateCmd.Flags().BoolP("dtmf", "k", false, "treat --tone as a DTMF keypad digit")
	generateCmd.Flags().BoolP("play", "p", false, "also play the tone on the output device")
	generateCmd.Flags().Int("device", -1, "playback device index (-1 for default)")
	_ = generateCmd.MarkFlagRequired("tone")
	_ = generateCmd.MarkFlagRequired("duration")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	settings, err := config.Get()
	if err != nil {
		return fmt.Errorf("%w: %w", pipeline.ErrInvalidArgument, err)
	}
	logger := newLogger(cmd.ErrOrStderr(), settings.Debug)

	flags := cmd.Flags()
	tone, _ := flags.GetFloat64("tone")
	seconds, _ := flags.GetFloat64("duration")
	isDTMF, _ := flags.GetBool("dtmf")
	req := pipeline.GenerateRequest{Seconds: seconds, Tone: tone, DTMF: isDTMF}

	var player pipeline.Player
	if settings.Playback {
		cfg := audio.DefaultConfig()
		cfg.DeviceIndex = settings.DeviceIndex
		p := &devicePlayer{Player: audio.New(cfg)}
		defer p.Close()
		player = p
	}

	var path string
	if len(args) == 1 {
		path = args[0]
	}
	// The file is only created once valid samples are written
	out, closeOut := pipeline.OpenSink(path, cmd.OutOrStdout())

	gen, err := pipeline.NewGenerator(pipeline.GenerateConfig{
		Format: settings.Format,
		Out:    out,
		Player: player,
		Logger: logger,
	})
	if err != nil {
		_ = closeOut()
		return err
	}

	_, genErr := gen.Generate(cmd.Context(), req)
	closeErr := closeOut()
	if genErr != nil {
		logger.Debug("generate failed", "class", exitClass(genErr))
		return genErr
	}
	if closeErr != nil {
		return fmt.Errorf("%w: close %s: %w", pipeline.ErrIO, path, closeErr)
	}
	return nil
}

// devicePlayer opens the audio backend on first Play, so a request that
// fails validation never touches the output device.
type devicePlayer struct {
	*audio.Player
	ready bool
}

func (d *devicePlayer) Play(ctx context.Context, samples []float64) error {
	if !d.ready {
		if err := d.Init(); err != nil {
			return err
		}
		d.ready = true
	}
	return d.Player.Play(ctx, samples)
}
