package cli

import (
	"os"
	"path/filepath"
)

// Paths locates critique's files under the user's home directory.
type Paths struct {
	HomeDir string
}

// NewPaths returns Paths for the current user.
func NewPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{HomeDir: home}, nil
}

// BaseDir returns ~/.critique.
func (p *Paths) BaseDir() string {
	return filepath.Join(p.HomeDir, DefaultBaseDir)
}

// ConfigFile returns ~/.critique/config.yaml.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.BaseDir(), DefaultConfigFile)
}

// ModelsDir returns ~/.critique/models, the default home of converted
// artifacts.
func (p *Paths) ModelsDir() string {
	return filepath.Join(p.BaseDir(), "models")
}

// ModelPath returns a path inside ModelsDir.
func (p *Paths) ModelPath(name string) string {
	return filepath.Join(p.ModelsDir(), name)
}
