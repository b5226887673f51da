package component

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultManifestFilename is the default component manifest path.
const DefaultManifestFilename = "component.yaml"

var (
	// errNameRequired is returned for a manifest without a component name.
	errNameRequired = errors.New("component name must be provided")
	// errVersionRequired is returned for a manifest without a version.
	errVersionRequired = errors.New("component version must be provided")
)

// Depends lists the external tools the component relies on. The entries are
// informational; resolution is the package manager's job, not ours.
type Depends struct {
	// Build are the tools required while the hooks run.
	Build []string `yaml:"build,omitempty"`
	// Runtime are the tools required on the installed system.
	Runtime []string `yaml:"runtime,omitempty"`
}

// Manifest is the declarative metadata of a managed component. Stable marks
// a version that has been through a revision bump; fresh development
// versions start out unstable.
type Manifest struct {
	Name        string  `yaml:"name"`
	Version     string  `yaml:"version"`
	Description string  `yaml:"description,omitempty"`
	Stable      bool    `yaml:"stable,omitempty"`
	Depends     Depends `yaml:"depends"`
}

// LoadManifest reads and validates a component manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		path = DefaultManifestFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(contents, &manifest); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}

	if err := manifest.Validate(); err != nil {
		return nil, err
	}

	return &manifest, nil
}

// Validate checks the manifest for required fields.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return errNameRequired
	}

	if m.Version == "" {
		return errVersionRequired
	}

	return nil
}
