package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rahul24/CritiqueForTeams/pkg/audio/tone"
	"github.com/rahul24/CritiqueForTeams/pkg/audio/wav"
)

var (
	synthRate     int
	synthMillis   int
	synthChannels int
	synthFloat    bool
)

var synthCmd = &cobra.Command{
	Use:   "synth <out.wav>",
	Short: "Write a rising test tone",
	Long: `Write a deterministic A3 to A5 sweep as a WAVE file. Useful for
checking an installation end to end.

Example:
  critique synth tone.wav && critique analyze tone.wav`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if synthRate <= 0 || synthMillis <= 0 || synthChannels <= 0 {
			return fmt.Errorf("rate, duration and channels must be positive")
		}
		clip := tone.Rising(synthRate, synthMillis)
		if synthChannels > 1 {
			clip = tone.Duplicate(clip.Samples, synthChannels, synthRate)
		}
		enc := wav.PCM16
		if synthFloat {
			enc = wav.Float32
		}

		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		if err := wav.Encode(f, clip, enc); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		newPrinter(cmd).Success("wrote %s (%d Hz, %d ch, %d ms)", args[0], synthRate, synthChannels, synthMillis)
		return nil
	},
}

func init() {
	synthCmd.Flags().IntVar(&synthRate, "rate", 22050, "sample rate in Hz")
	synthCmd.Flags().IntVar(&synthMillis, "ms", 3000, "duration in milliseconds")
	synthCmd.Flags().IntVar(&synthChannels, "channels", 1, "number of identical channels")
	synthCmd.Flags().BoolVar(&synthFloat, "float", false, "write 32-bit float samples instead of 16-bit PCM")
	rootCmd.AddCommand(synthCmd)
}
