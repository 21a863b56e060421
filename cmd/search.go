package cmd

import (
	"fmt"
	"math"

	"github.com/ColonelBlimp/sndgrep/internal/config"
	"github.com/ColonelBlimp/sndgrep/internal/dsp"
	"github.com/ColonelBlimp/sndgrep/internal/pipeline"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [file]",
	Short: "Search samples for a tone or DTMF digit",
	Long: `Search file, or stdin one second at a time, for --tone (used as a bin
index under the configured bin mapping). With --dtmf, report the decoded
keypad digit; --tone then optionally names the digit wanted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Float64P("tone", "t", 0, "tone frequency to look for, or digit 0-9 with --dtmf")
	searchCmd.Flags().BoolP("dtmf", "k", false, "decode DTMF keypad digits")
	searchCmd.Flags().BoolP("verbose", "v", false, "dump the bins at every DTMF frequency")
}

func runSearch(cmd *cobra.Command, args []string) error {
	settings, err := config.Get()
	if err != nil {
		return fmt.Errorf("%w: %w", pipeline.ErrInvalidArgument, err)
	}
	logger := newLogger(cmd.ErrOrStderr(), settings.Debug)

	query, err := searchQuery(cmd)
	if err != nil {
		return err
	}
	transform, err := dsp.TransformByName(settings.Transform)
	if err != nil {
		return fmt.Errorf("%w: %w", pipeline.ErrInvalidArgument, err)
	}
	mapper, err := dsp.BinMapperByName(settings.BinMapping)
	if err != nil {
		return fmt.Errorf("%w: %w", pipeline.ErrInvalidArgument, err)
	}

	searcher, err := pipeline.NewSearcher(pipeline.SearchConfig{
		Transform: transform,
		Mapper:    mapper,
		Threshold: settings.Threshold,
		Query:     query,
		Format:    settings.Format,
		Verbose:   settings.Verbose,
		Out:       cmd.OutOrStdout(),
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	var path string
	if len(args) == 1 {
		path = args[0]
	}
	src, closeSrc, err := pipeline.OpenSource(path, cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer closeSrc()

	sum, err := searcher.Search(src)
	if err != nil {
		logger.Debug("search failed", "class", exitClass(err), "chunks", sum.Chunks)
		return err
	}
	logger.Debug("search complete", "chunks", sum.Chunks, "found", sum.Found)
	return nil
}

func searchQuery(cmd *cobra.Command) (pipeline.Query, error) {
	flags := cmd.Flags()
	tone, _ := flags.GetFloat64("tone")
	isDTMF, _ := flags.GetBool("dtmf")

	if !isDTMF {
		if !flags.Changed("tone") {
			return pipeline.Query{}, fmt.Errorf("%w: --tone is required unless --dtmf is set", pipeline.ErrInvalidArgument)
		}
		return pipeline.ToneQuery(tone)
	}
	if !flags.Changed("tone") {
		return pipeline.AnyDigitQuery(), nil
	}
	if tone != math.Trunc(tone) {
		return pipeline.Query{}, fmt.Errorf("%w: digit must be a whole number, got %v", pipeline.ErrInvalidArgument, tone)
	}
	return pipeline.DigitQuery(int(tone))
}
