package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rahul24/CritiqueForTeams/pkg/audio/features"
	"github.com/rahul24/CritiqueForTeams/pkg/cli"
)

var featuresList string

var featuresCmd = &cobra.Command{
	Use:   "features <file.wav>",
	Short: "Print the feature vector of a clip",
	Long: `Extract and print the feature vector of a WAVE clip without
classifying it. The text format prints one line per sub-vector.

Examples:
  critique features call.wav
  critique features call.wav --features mfcc --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat()
		if err != nil {
			return err
		}
		prof, err := getProfile()
		if err != nil {
			return err
		}
		flags := features.AllFlags()
		if prof.Flags != nil {
			flags = *prof.Flags
		}
		if featuresList != "" {
			if flags, err = parseFeatureFlags(featuresList); err != nil {
				return err
			}
		}

		ext, err := features.New(prof.Features)
		if err != nil {
			return err
		}
		vec, err := ext.ExtractFile(args[0], flags)
		if err != nil {
			return err
		}

		if format != cli.FormatText {
			return writeResult(cmd, vec, format)
		}
		st := newPrinter(cmd).Styles
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %d values\n", st.Title.Render(args[0]), vec.Len())
		for _, seg := range vec.Segments {
			vals := make([]string, 0, seg.Len)
			for _, v := range vec.Segment(seg.Kind) {
				vals = append(vals, strconv.FormatFloat(v, 'g', 6, 64))
			}
			label := fmt.Sprintf("%s[%d:%d]", seg.Kind, seg.Offset, seg.Offset+seg.Len)
			fmt.Fprintf(out, "%s %s\n", st.Key.Render(label), strings.Join(vals, " "))
		}
		return nil
	},
}

func init() {
	featuresCmd.Flags().StringVar(&featuresList, "features", "", "comma-separated features: mfcc, chroma, mel, all (default from profile)")
	rootCmd.AddCommand(featuresCmd)
}
