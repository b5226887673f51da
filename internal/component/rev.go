package component

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// manifestFileMode is the mode of a written manifest. Unlike the settings
// file it carries no secrets and is meant to be read by everyone.
const manifestFileMode os.FileMode = 0o644

// NextRevision returns the version with its revision suffix bumped. A
// version without a "-rN" suffix gets "-r1" appended, "X.Y.Z-rN" becomes
// "X.Y.Z-r(N+1)".
func NextRevision(version string) (string, error) {
	if version == "" {
		return "", errVersionRequired
	}

	base, revision := splitRevision(version)

	return fmt.Sprintf("%s-r%d", base, revision+1), nil
}

// splitRevision splits a version into its base and revision number. A
// missing or malformed revision suffix counts as revision 0 of the whole
// version string.
func splitRevision(version string) (string, int) {
	idx := strings.LastIndex(version, "-r")
	if idx < 0 {
		return version, 0
	}

	revision, err := strconv.Atoi(version[idx+2:])
	if err != nil || revision < 0 {
		return version, 0
	}

	return version[:idx], revision
}

// Rev bumps the manifest to the next revision and marks it stable. It
// returns the new version. The manifest file is not touched; use
// [SaveManifest] to persist the result.
func (m *Manifest) Rev() (string, error) {
	next, err := NextRevision(m.Version)
	if err != nil {
		return "", err
	}

	m.Version = next
	m.Stable = true

	return next, nil
}

// SaveManifest writes the manifest to the provided path.
func SaveManifest(path string, m *Manifest) error {
	if path == "" {
		path = DefaultManifestFilename
	}

	if err := m.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, manifestFileMode); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}
