package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rahul24/CritiqueForTeams/pkg/audio/features"
	"github.com/rahul24/CritiqueForTeams/pkg/cli"
)

var (
	// Global flags
	cfgFile      string
	profileName  string
	modelFlag    string
	formatOutput string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "critique",
	Short: "Speech emotion critique for call recordings",
	Long: `critique - label short speech clips as non-negative or negative.

Each clip is reduced to a fixed-length acoustic feature vector (MFCC,
chroma and mel-spectrogram means) and scored by a frozen multilayer
perceptron.

Configuration is stored in ~/.critique/config.yaml and holds named
profiles, similar to kubectl contexts. A profile names the classifier
artifact (a local path or s3:// URI) and optional feature settings.

Examples:
  # Point a profile at a model and make it current
  critique config set-model prod s3://models/emotion.msgpack

  # Label clips
  critique analyze call-01.wav call-02.wav

  # Use an explicit model and JSON output
  critique analyze -m ./emotion.json --format json call.wav`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.critique/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile to use (default is the current profile)")
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "classifier artifact path or s3:// URI (overrides the profile)")
	rootCmd.PersistentFlags().StringVar(&formatOutput, "format", "text", "output format: text, yaml, json, raw")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initLogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// getConfig loads the configuration file.
func getConfig() (*cli.Config, error) {
	return cli.LoadConfig(cfgFile)
}

// getProfile returns the profile selected by --profile, the current
// profile, or an empty profile when none is configured and none was asked
// for.
func getProfile() (*cli.Profile, error) {
	cfg, err := getConfig()
	if err != nil {
		return nil, err
	}
	if profileName == "" && cfg.CurrentProfile == "" {
		return &cli.Profile{Name: "default"}, nil
	}
	return cfg.Profile(profileName)
}

// modelLocation resolves the classifier artifact from --model or the
// profile.
func modelLocation(p *cli.Profile) (string, error) {
	if modelFlag != "" {
		return modelFlag, nil
	}
	if p.Model != "" {
		return p.Model, nil
	}
	return "", errors.New("no model configured: pass --model or run 'critique config set-model <profile> <location>'")
}

func outputFormat() (cli.OutputFormat, error) {
	return cli.ParseOutputFormat(formatOutput)
}

func newPrinter(cmd *cobra.Command) *cli.Printer {
	return &cli.Printer{
		Out:     cmd.OutOrStdout(),
		Err:     cmd.ErrOrStderr(),
		Styles:  cli.NewStyles(cli.DefaultTheme),
		Verbose: verbose,
	}
}

// writeResult prints result in a structured format to the command's
// output.
func writeResult(cmd *cobra.Command, result any, format cli.OutputFormat) error {
	return cli.Output(result, cli.OutputOptions{Format: format, Writer: cmd.OutOrStdout()})
}

// parseFeatureFlags parses a comma-separated feature list such as
// "mfcc,chroma". "all" enables everything.
func parseFeatureFlags(s string) (features.Flags, error) {
	var f features.Flags
	for _, part := range strings.Split(s, ",") {
		switch strings.TrimSpace(strings.ToLower(part)) {
		case "all":
			f = features.AllFlags()
		case string(features.KindMFCC):
			f.MFCC = true
		case string(features.KindChroma):
			f.Chroma = true
		case string(features.KindMel):
			f.Mel = true
		case "", "none":
		default:
			return features.Flags{}, fmt.Errorf("unknown feature %q (want mfcc, chroma, mel or all)", part)
		}
	}
	return f, nil
}
