package commands

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rahul24/CritiqueForTeams/pkg/cli"
	"github.com/rahul24/CritiqueForTeams/pkg/critique"
	"github.com/rahul24/CritiqueForTeams/pkg/mlp"
	"github.com/rahul24/CritiqueForTeams/pkg/storage"
)

var modelConvertTo string

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Inspect and convert classifier artifacts",
	Long: `Inspect and convert classifier artifacts.

An artifact location is a local path or an s3:// URI. The encoding
follows the extension: .json, .yaml/.yml, anything else is msgpack.`,
}

var modelInspectCmd = &cobra.Command{
	Use:   "inspect [location]",
	Short: "Show the layout of a classifier artifact",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat()
		if err != nil {
			return err
		}
		prof, loc, err := artifactLocation(args)
		if err != nil {
			return err
		}
		art, size, err := readArtifact(cmd, prof, loc)
		if err != nil {
			return err
		}

		info := describeArtifact(loc, art, size)
		if format != cli.FormatText {
			return writeResult(cmd, info, format)
		}
		st := newPrinter(cmd).Styles
		out := cmd.OutOrStdout()
		const w = 12
		fmt.Fprintln(out, st.Title.Render(info.Location))
		fmt.Fprintln(out, st.KeyValue("Name", info.Name, w))
		fmt.Fprintln(out, st.KeyValue("Format", string(info.Format), w))
		fmt.Fprintln(out, st.KeyValue("Size", cli.FormatBytes(info.Size), w))
		fmt.Fprintln(out, st.KeyValue("Classes", joinInts(info.Classes, ", "), w))
		fmt.Fprintln(out, st.KeyValue("Shape", joinInts(info.Shape, " -> "), w))
		fmt.Fprintln(out, st.KeyValue("Hidden", info.Hidden, w))
		fmt.Fprintln(out, st.KeyValue("Output", info.Output, w))
		fmt.Fprintln(out, st.KeyValue("Features", info.Features, w))
		fmt.Fprintln(out, st.KeyValue("Input dim", fmt.Sprint(info.InputDim), w))
		return nil
	},
}

var modelCheckCmd = &cobra.Command{
	Use:   "check [location]",
	Short: "Check an artifact against the profile's feature layout and labels",
	Long: `Check that the feature vector configured by the profile has the
width of the artifact's input layer and that every class code of the
artifact has a label.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prof, loc, err := artifactLocation(args)
		if err != nil {
			return err
		}
		art, _, err := readArtifact(cmd, prof, loc)
		if err != nil {
			return err
		}
		model, err := mlp.New(art)
		if err != nil {
			return err
		}
		opts, err := prof.Options()
		if err != nil {
			return err
		}
		opts.Classifier = model
		a, err := critique.New(opts)
		if err != nil {
			return fmt.Errorf("%s: %w", loc, err)
		}

		p := newPrinter(cmd)
		p.Success("%s: %d features (%s) match the input layer", loc, a.Extractor().Len(a.Flags()), a.Flags())
		codes := model.Classes()
		slices.Sort(codes)
		for _, code := range codes {
			l, _ := opts.Labels.Lookup(code)
			fmt.Fprintf(p.Out, "  %d -> %s\n", code, p.Styles.Label(l))
		}
		return nil
	},
}

var modelConvertCmd = &cobra.Command{
	Use:   "convert <src> <dst>",
	Short: "Re-encode a classifier artifact",
	Long: `Re-encode a classifier artifact. The destination format follows
the destination extension unless --to is given.

Examples:
  critique model convert emotion.json emotion.msgpack
  critique model convert emotion.msgpack s3://models/emotion.yaml`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		prof, err := getProfile()
		if err != nil {
			return err
		}
		art, _, err := readArtifact(cmd, prof, args[0])
		if err != nil {
			return err
		}

		dst, err := storage.ParseLocation(args[1])
		if err != nil {
			return err
		}
		format := mlp.FormatFor(dst.Key)
		if modelConvertTo != "" {
			if format, err = mlp.ParseFormat(modelConvertTo); err != nil {
				return err
			}
		}
		data, err := encodeVerified(cmd, art, format)
		if err != nil {
			return err
		}

		fs, name, err := storage.Resolve(dst, prof.S3ClientFunc())
		if err != nil {
			return err
		}
		if err := storage.WriteFile(cmd.Context(), fs, name, data); err != nil {
			return err
		}
		newPrinter(cmd).Success("wrote %s (%s, %s)", dst, format, cli.FormatBytes(int64(len(data))))
		return nil
	},
}

// encodeVerified encodes art and decodes it back through an in-memory
// store before anything reaches the destination.
func encodeVerified(cmd *cobra.Command, art *mlp.Artifact, format mlp.Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := mlp.Encode(&buf, art, format); err != nil {
		return nil, err
	}
	mem := storage.NewMemory()
	name := "artifact." + string(format)
	if err := storage.WriteFile(cmd.Context(), mem, name, buf.Bytes()); err != nil {
		return nil, err
	}
	back, err := mlp.LoadArtifact(cmd.Context(), mem, name)
	if err != nil {
		return nil, fmt.Errorf("converted artifact does not decode: %w", err)
	}
	if !slices.Equal(back.Shape(), art.Shape()) || !slices.Equal(back.Classes, art.Classes) {
		return nil, fmt.Errorf("converted artifact changed shape: %v -> %v", art.Shape(), back.Shape())
	}
	return buf.Bytes(), nil
}

// artifactInfo is the structured output of model inspect.
type artifactInfo struct {
	Location string     `json:"location" yaml:"location"`
	Name     string     `json:"name,omitempty" yaml:"name,omitempty"`
	Format   mlp.Format `json:"format" yaml:"format"`
	Size     int64      `json:"size" yaml:"size"`
	Classes  []int      `json:"classes" yaml:"classes"`
	Shape    []int      `json:"shape" yaml:"shape"`
	Hidden   string     `json:"hidden_activation" yaml:"hidden_activation"`
	Output   string     `json:"output_activation" yaml:"output_activation"`
	Features string     `json:"features" yaml:"features"`
	InputDim int        `json:"input_dim" yaml:"input_dim"`
}

func describeArtifact(loc string, a *mlp.Artifact, size int64) artifactInfo {
	info := artifactInfo{
		Location: loc,
		Name:     a.Name,
		Format:   mlp.FormatFor(loc),
		Size:     size,
		Classes:  a.Classes,
		Shape:    a.Shape(),
		Hidden:   string(a.HiddenActivation),
		Output:   string(a.OutputActivation),
		Features: "unspecified",
		InputDim: a.InputDim(),
	}
	if info.Hidden == "" {
		info.Hidden = "default"
	}
	if info.Output == "" {
		info.Output = "default"
	}
	if a.Features != nil {
		info.Features = a.Features.String()
	}
	return info
}

// artifactLocation picks the artifact from the argument, --model or the
// profile, in that order.
func artifactLocation(args []string) (*cli.Profile, string, error) {
	prof, err := getProfile()
	if err != nil {
		return nil, "", err
	}
	if len(args) > 0 {
		return prof, args[0], nil
	}
	loc, err := modelLocation(prof)
	return prof, loc, err
}

// readArtifact reads and decodes the artifact at location, returning its
// encoded size.
func readArtifact(cmd *cobra.Command, prof *cli.Profile, location string) (*mlp.Artifact, int64, error) {
	loc, err := storage.ParseLocation(location)
	if err != nil {
		return nil, 0, err
	}
	fs, name, err := storage.Resolve(loc, prof.S3ClientFunc())
	if err != nil {
		return nil, 0, err
	}
	data, err := storage.ReadFile(cmd.Context(), fs, name, mlp.MaxArtifactSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %w", mlp.ErrModelLoad, location, err)
	}
	art, err := mlp.Decode(data, mlp.FormatFor(name))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %w", mlp.ErrModelLoad, location, err)
	}
	return art, int64(len(data)), nil
}

func joinInts(xs []int, sep string) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, sep)
}

func init() {
	modelConvertCmd.Flags().StringVar(&modelConvertTo, "to", "", "destination format: msgpack, json, yaml (default from extension)")

	modelCmd.AddCommand(modelInspectCmd)
	modelCmd.AddCommand(modelCheckCmd)
	modelCmd.AddCommand(modelConvertCmd)
	rootCmd.AddCommand(modelCmd)
}
