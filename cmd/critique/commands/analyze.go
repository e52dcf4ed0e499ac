package commands

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rahul24/CritiqueForTeams/pkg/cli"
	"github.com/rahul24/CritiqueForTeams/pkg/critique"
)

var analyzeFeatures string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.wav>...",
	Short: "Label WAVE clips as non-negative or negative",
	Long: `Label one or more WAVE clips.

Clips are processed one after another. The first clip that cannot be
decoded stops the run with an error.

Examples:
  critique analyze call.wav
  critique analyze -m s3://models/emotion.msgpack a.wav b.wav --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat()
		if err != nil {
			return err
		}
		a, err := newAnalyzer(cmd)
		if err != nil {
			return err
		}

		p := newPrinter(cmd)
		results := make([]*critique.Result, 0, len(args))
		for _, path := range args {
			res, err := a.Analyze(path)
			if err != nil {
				return err
			}
			if format == cli.FormatText {
				printResult(p, res)
				continue
			}
			results = append(results, res)
		}
		if format == cli.FormatText {
			return nil
		}
		return writeResult(cmd, results, format)
	},
}

// printResult writes one "label<TAB>path" line, followed by the recorded
// emotion for RAVDESS-named clips.
func printResult(p *cli.Printer, res *critique.Result) {
	line := p.Styles.Label(res.Label) + "\t" + res.Path
	if res.Expected != nil {
		mark := p.Styles.Bad.Render("✗")
		if res.Matches() {
			mark = p.Styles.Good.Render("✓")
		}
		line += fmt.Sprintf("\t%s expected %s (%s)", mark, res.Expected, res.Emotion)
	}
	fmt.Fprintln(p.Out, line)

	p.Verbosef("%s: code=%d features=%d", res.Path, res.Code, res.Features.Len())
	if len(res.Scores) > 0 {
		names := slices.Sorted(maps.Keys(res.Scores))
		parts := make([]string, len(names))
		for i, name := range names {
			parts[i] = fmt.Sprintf("%s=%.3f", name, res.Scores[name])
		}
		p.Verbosef("%s: scores %s", res.Path, strings.Join(parts, " "))
	}
}

// newAnalyzer builds the pipeline from the selected profile and flags.
func newAnalyzer(cmd *cobra.Command) (*critique.Analyzer, error) {
	prof, err := getProfile()
	if err != nil {
		return nil, err
	}
	opts, err := prof.Options()
	if err != nil {
		return nil, err
	}
	if analyzeFeatures != "" {
		if opts.Flags, err = parseFeatureFlags(analyzeFeatures); err != nil {
			return nil, err
		}
	}
	opts.Logger = slog.Default()

	loc, err := modelLocation(prof)
	if err != nil {
		return nil, err
	}
	newPrinter(cmd).Verbosef("profile %q, model %s, features %s", prof.Name, loc, opts.Flags)
	return critique.Load(cmd.Context(), loc, prof.S3ClientFunc(), opts)
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFeatures, "features", "", "comma-separated features: mfcc, chroma, mel, all (default from profile)")
	rootCmd.AddCommand(analyzeCmd)
}
