package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rahul24/CritiqueForTeams/pkg/cli"
	"github.com/rahul24/CritiqueForTeams/pkg/storage"
)

var (
	setFeatures    string
	setS3Region    string
	setS3Endpoint  string
	setS3PathStyle bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration profiles",
	Long: `Manage configuration profiles stored in ~/.critique/config.yaml.

S3 credentials are read from AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY
unless a profile sets them explicitly.`,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		format, err := outputFormat()
		if err != nil {
			return err
		}
		names := cfg.ProfileNames()
		if format != cli.FormatText {
			return writeResult(cmd, names, format)
		}

		p := newPrinter(cmd)
		if len(names) == 0 {
			p.Info("no profiles configured in %s", cfg.Path())
			return nil
		}
		for _, name := range names {
			marker := "  "
			if name == cfg.CurrentProfile {
				marker = p.Styles.Good.Render("* ")
			}
			model := cfg.Profiles[name].Model
			if model == "" {
				model = p.Styles.Dim.Render("(no model)")
			}
			fmt.Fprintf(p.Out, "%s%s\t%s\n", marker, name, model)
		}
		return nil
	},
}

var configUseCmd = &cobra.Command{
	Use:   "use <profile>",
	Short: "Make a profile current",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if err := cfg.UseProfile(args[0]); err != nil {
			return err
		}
		newPrinter(cmd).Success("switched to profile %q", args[0])
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show [profile]",
	Short: "Show a profile with secrets masked",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		name := profileName
		if len(args) > 0 {
			name = args[0]
		}
		prof, err := cfg.Profile(name)
		if err != nil {
			return err
		}
		format, err := outputFormat()
		if err != nil {
			return err
		}
		if format == cli.FormatText {
			format = cli.FormatYAML
		}

		shown := *prof
		if prof.S3 != nil {
			s3 := *prof.S3
			s3.AccessKeyID = cli.MaskSecret(s3.AccessKeyID)
			s3.SecretAccessKey = cli.MaskSecret(s3.SecretAccessKey)
			shown.S3 = &s3
		}
		return writeResult(cmd, &shown, format)
	},
}

var configSetModelCmd = &cobra.Command{
	Use:   "set-model <profile> <location>",
	Short: "Create or update a profile's classifier artifact",
	Long: `Create or update a profile. The location is a local path or an
s3:// URI. The first profile created becomes current.

Examples:
  critique config set-model local ./emotion.json
  critique config set-model prod s3://models/emotion.msgpack --s3-region eu-west-1
  critique config set-model minio s3://models/emotion.msgpack --s3-endpoint http://localhost:9000 --s3-path-style`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := storage.ParseLocation(args[1]); err != nil {
			return err
		}
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		prof, ok := cfg.Profiles[args[0]]
		if !ok {
			prof = &cli.Profile{}
		}
		prof.Model = args[1]

		if cmd.Flags().Changed("features") {
			flags, err := parseFeatureFlags(setFeatures)
			if err != nil {
				return err
			}
			prof.Flags = &flags
		}
		if setS3Region != "" || setS3Endpoint != "" || setS3PathStyle {
			if prof.S3 == nil {
				prof.S3 = &storage.S3Config{}
			}
			if setS3Region != "" {
				prof.S3.Region = setS3Region
			}
			if setS3Endpoint != "" {
				prof.S3.Endpoint = setS3Endpoint
			}
			if setS3PathStyle {
				prof.S3.PathStyle = true
			}
		}

		if err := cfg.SetProfile(args[0], prof); err != nil {
			return err
		}
		newPrinter(cmd).Success("profile %q uses %s", args[0], args[1])
		return nil
	},
}

var configDeleteCmd = &cobra.Command{
	Use:   "delete <profile>",
	Short: "Delete a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if err := cfg.DeleteProfile(args[0]); err != nil {
			return err
		}
		newPrinter(cmd).Success("deleted profile %q", args[0])
		return nil
	},
}

func init() {
	configSetModelCmd.Flags().StringVar(&setFeatures, "features", "", "comma-separated features: mfcc, chroma, mel, all")
	configSetModelCmd.Flags().StringVar(&setS3Region, "s3-region", "", "S3 region")
	configSetModelCmd.Flags().StringVar(&setS3Endpoint, "s3-endpoint", "", "S3-compatible endpoint URL")
	configSetModelCmd.Flags().BoolVar(&setS3PathStyle, "s3-path-style", false, "use path-style bucket addressing")

	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configUseCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetModelCmd)
	configCmd.AddCommand(configDeleteCmd)
	rootCmd.AddCommand(configCmd)
}
