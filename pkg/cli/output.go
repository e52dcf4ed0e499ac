package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
)

// OutputFormat selects how results are written.
type OutputFormat string

const (
	// FormatText writes styled, human-readable lines (default).
	FormatText OutputFormat = "text"
	// FormatYAML writes YAML.
	FormatYAML OutputFormat = "yaml"
	// FormatJSON writes indented JSON.
	FormatJSON OutputFormat = "json"
	// FormatRaw writes strings and bytes as-is and anything else as YAML.
	FormatRaw OutputFormat = "raw"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case "", FormatText:
		return FormatText, nil
	case FormatYAML, FormatJSON, FormatRaw:
		return f, nil
	}
	return "", fmt.Errorf("unsupported output format: %s", s)
}

// OutputOptions configures Output.
type OutputOptions struct {
	// Format is yaml, json or raw. Text is rendered as YAML here; callers
	// handle text themselves.
	Format OutputFormat

	// File is the output file path (empty for Writer or stdout).
	File string

	// Writer overrides stdout when File is empty.
	Writer io.Writer
}

// Output writes result in the configured format.
func Output(result any, opts OutputOptions) error {
	var w io.Writer = os.Stdout
	switch {
	case opts.File != "":
		f, err := os.Create(opts.File)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	case opts.Writer != nil:
		w = opts.Writer
	}

	switch opts.Format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case FormatYAML, FormatText, "":
		return writeYAML(w, result)
	case FormatRaw:
		switch v := result.(type) {
		case []byte:
			_, err := w.Write(v)
			return err
		case string:
			_, err := io.WriteString(w, v)
			return err
		}
		return writeYAML(w, result)
	}
	return fmt.Errorf("unsupported output format: %s", opts.Format)
}

func writeYAML(w io.Writer, result any) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// Printer writes status messages. Out receives results and Err receives
// diagnostics.
type Printer struct {
	Out     io.Writer
	Err     io.Writer
	Styles  Styles
	Verbose bool
}

// NewPrinter returns a Printer on stdout and stderr with the default
// styles.
func NewPrinter(verbose bool) *Printer {
	return &Printer{Out: os.Stdout, Err: os.Stderr, Styles: NewStyles(DefaultTheme), Verbose: verbose}
}

// Success prints a message with a check mark.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.Out, p.Styles.Good.Render("✓")+" "+fmt.Sprintf(format, args...))
}

// Info prints an informational message.
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintln(p.Out, p.Styles.Dim.Render("ℹ")+" "+fmt.Sprintf(format, args...))
}

// Warning prints a warning to Err.
func (p *Printer) Warning(format string, args ...any) {
	fmt.Fprintln(p.Err, p.Styles.Warn.Render("⚠")+" "+fmt.Sprintf(format, args...))
}

// Error prints an error to Err.
func (p *Printer) Error(format string, args ...any) {
	fmt.Fprintln(p.Err, p.Styles.Bad.Render("Error:")+" "+fmt.Sprintf(format, args...))
}

// Verbosef prints to Err when Verbose is set.
func (p *Printer) Verbosef(format string, args ...any) {
	if p.Verbose {
		fmt.Fprintln(p.Err, p.Styles.Dim.Render("[verbose] "+fmt.Sprintf(format, args...)))
	}
}

// FormatSeconds renders a duration in seconds as 850ms, 3.2s or 1m05.0s.
func FormatSeconds(secs float64) string {
	switch {
	case secs < 1:
		return fmt.Sprintf("%dms", int(secs*1000+0.5))
	case secs < 60:
		return fmt.Sprintf("%.1fs", secs)
	}
	mins := int(secs / 60)
	return fmt.Sprintf("%dm%04.1fs", mins, secs-float64(mins*60))
}

// FormatBytes renders a byte count with a binary unit.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 2; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMG"[exp])
}
