package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/rahul24/CritiqueForTeams/pkg/audio/features"
	"github.com/rahul24/CritiqueForTeams/pkg/critique"
	"github.com/rahul24/CritiqueForTeams/pkg/emotion"
	"github.com/rahul24/CritiqueForTeams/pkg/storage"
)

const (
	// DefaultBaseDir is the configuration directory under the home directory.
	DefaultBaseDir = ".critique"
	// DefaultConfigFile is the configuration file name.
	DefaultConfigFile = "config.yaml"
)

// ErrNoProfile is returned when no profile is selected or the named one
// does not exist.
var ErrNoProfile = errors.New("cli: profile not found")

// Config is the on-disk configuration.
type Config struct {
	// CurrentProfile names the profile used when none is given.
	CurrentProfile string `yaml:"current_profile,omitempty"`

	// Profiles maps profile names to settings.
	Profiles map[string]*Profile `yaml:"profiles,omitempty"`

	path string
}

// Profile is one named set of analysis settings.
type Profile struct {
	Name string `yaml:"-" json:"-"`

	// Model is a local path or s3:// URI of the classifier artifact.
	Model string `yaml:"model,omitempty" json:"model,omitempty"`

	// Features overrides the spectral analysis settings.
	Features features.Config `yaml:"features,omitempty" json:"features,omitzero"`

	// Flags overrides the sub-vector selection. Nil enables all.
	Flags *features.Flags `yaml:"flags,omitempty" json:"flags,omitempty"`

	// Labels overrides the class code table, e.g. {0: non-negative}.
	Labels map[int]string `yaml:"labels,omitempty" json:"labels,omitempty"`

	// S3 configures access to s3:// models.
	S3 *storage.S3Config `yaml:"s3,omitempty" json:"s3,omitempty"`
}

// LoadConfig reads the configuration at path, or ~/.critique/config.yaml
// when path is empty. A missing file yields an empty configuration that
// is written on the first Save.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		p, err := NewPaths()
		if err != nil {
			return nil, fmt.Errorf("cli: %w", err)
		}
		path = p.ConfigFile()
	}

	cfg := &Config{Profiles: make(map[string]*Profile), path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("cli: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cli: parse config %s: %w", path, err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]*Profile)
	}
	for name, p := range cfg.Profiles {
		if p == nil {
			p = &Profile{}
			cfg.Profiles[name] = p
		}
		p.Name = name
	}
	cfg.path = path
	return cfg, nil
}

// Save writes the configuration, creating its directory if needed. The
// file may hold credentials and is written with mode 0600.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("cli: marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("cli: create config directory: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("cli: write config: %w", err)
	}
	return nil
}

// Path returns the config file path.
func (c *Config) Path() string {
	return c.path
}

// SetProfile adds or replaces a profile and saves.
func (c *Config) SetProfile(name string, p *Profile) error {
	if name == "" {
		return errors.New("cli: profile name is required")
	}
	p.Name = name
	c.Profiles[name] = p
	if c.CurrentProfile == "" {
		c.CurrentProfile = name
	}
	return c.Save()
}

// DeleteProfile removes a profile and saves.
func (c *Config) DeleteProfile(name string) error {
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNoProfile, name)
	}
	delete(c.Profiles, name)
	if c.CurrentProfile == name {
		c.CurrentProfile = ""
	}
	return c.Save()
}

// UseProfile makes name the current profile and saves.
func (c *Config) UseProfile(name string) error {
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNoProfile, name)
	}
	c.CurrentProfile = name
	return c.Save()
}

// Profile returns the named profile, or the current one when name is
// empty.
func (c *Config) Profile(name string) (*Profile, error) {
	if name == "" {
		name = c.CurrentProfile
	}
	if name == "" {
		return nil, fmt.Errorf("%w: no current profile set", ErrNoProfile)
	}
	p, ok := c.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoProfile, name)
	}
	return p, nil
}

// ProfileNames returns the profile names in sorted order.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LabelTable returns the profile's label table, or the default table when
// the profile has none.
func (p *Profile) LabelTable() (emotion.Table, error) {
	if len(p.Labels) == 0 {
		return emotion.DefaultTable(), nil
	}
	t := make(emotion.Table, len(p.Labels))
	for code, name := range p.Labels {
		l, err := emotion.ParseLabel(name)
		if err != nil {
			return nil, fmt.Errorf("cli: profile %q: %w", p.Name, err)
		}
		t[code] = l
	}
	return t, nil
}

// Options converts the profile into pipeline options. The classifier is
// left unset.
func (p *Profile) Options() (critique.Options, error) {
	opts := critique.DefaultOptions()
	opts.Features = p.Features
	if p.Flags != nil {
		opts.Flags = *p.Flags
	}
	labels, err := p.LabelTable()
	if err != nil {
		return critique.Options{}, err
	}
	opts.Labels = labels
	return opts, nil
}

// S3ClientFunc returns a constructor for S3 clients using the profile's
// S3 settings, suitable for mlp.LoadLocation and critique.Load.
func (p *Profile) S3ClientFunc() func(bucket string) (storage.S3Client, error) {
	return func(string) (storage.S3Client, error) {
		var cfg storage.S3Config
		if p.S3 != nil {
			cfg = *p.S3
		}
		return storage.NewS3Client(cfg)
	}
}

// MaskSecret masks a credential for display.
func MaskSecret(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-8) + s[len(s)-4:]
}
