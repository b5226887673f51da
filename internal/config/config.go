package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Generator holds the settings for the external initramfs generator
// invocation. Every flag of the fixed invocation is represented so behavior
// can be adjusted without touching code.
type Generator struct {
	// Binary is the generator executable, resolved inside the build root.
	Binary string `yaml:"binary"`
	// Force regenerates the image even if one already exists.
	Force bool `yaml:"force"`
	// NoKernel excludes kernel modules from the image.
	NoKernel bool `yaml:"no_kernel"`
	// NoFsck skips filesystem check binaries.
	NoFsck bool `yaml:"no_fsck"`
	// AddFstab includes the target's fstab in the image.
	AddFstab bool `yaml:"add_fstab"`
	// NoCompress leaves the cpio stream uncompressed.
	NoCompress bool `yaml:"no_compress"`
	// ExtraArgs are appended verbatim before the output path.
	ExtraArgs []string `yaml:"extra_args,omitempty"`
}

// Config holds every path and flag of the component lifecycle. The values
// below used to be inline literals in the packaging recipe; they are lifted
// here so the hooks can be pointed at scratch directories in tests.
type Config struct {
	// ComponentName identifies the managed component in logs and manifests.
	ComponentName string `yaml:"component"`
	// ModuleSource is the directory tree of boot module scripts shipped with
	// the package.
	ModuleSource string `yaml:"module_source"`
	// ModuleDir is the initramfs builder's module directory the source tree
	// is installed into.
	ModuleDir string `yaml:"module_dir"`
	// BuildRoot is the target root the generator runs against.
	BuildRoot string `yaml:"build_root"`
	// TempArchive is the generator output path as seen inside the build root.
	TempArchive string `yaml:"temp_archive"`
	// ArtifactDir is the final installation directory for the image.
	ArtifactDir string `yaml:"artifact_dir"`
	// ArtifactName is the final image file name.
	ArtifactName string `yaml:"artifact_name"`
	// Generator configures the initramfs generator invocation.
	Generator Generator `yaml:"generator"`
}

const (
	// DefaultFilename is the default configuration file path.
	DefaultFilename = "bootsmith.yaml"

	// ArtifactMode is the permission mode of the published image.
	ArtifactMode os.FileMode = 0o644

	// configFileMode restricts the written configuration file.
	configFileMode os.FileMode = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errPathRequired is returned when a required path field is empty.
	errPathRequired = errors.New("path must be provided")
	// errPathNotAbsolute is returned for fields that must hold absolute paths.
	errPathNotAbsolute = errors.New("path must be absolute")
)

// Default returns the configuration with the values the packaging recipe
// shipped with.
func Default() *Config {
	return &Config{
		ComponentName: "bootenv",
		ModuleSource:  "modules.d/90bootenv",
		ModuleDir:     "/usr/lib/dracut/modules.d",
		BuildRoot:     "/",
		TempArchive:   "/var/tmp/initramfs.img",
		ArtifactDir:   "/usr/share/bootsmith",
		ArtifactName:  "initramfs.img",
		Generator: Generator{
			Binary:     "dracut",
			Force:      true,
			NoKernel:   true,
			NoFsck:     true,
			AddFstab:   true,
			NoCompress: true,
		},
	}
}

// Load reads the configuration from the provided path and validates it.
// Fields absent from the file keep their default values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, configFileMode); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// Validate checks the configuration for required fields and path shape.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	required := map[string]string{
		"module_source": cfg.ModuleSource,
		"module_dir":    cfg.ModuleDir,
		"build_root":    cfg.BuildRoot,
		"temp_archive":  cfg.TempArchive,
		"artifact_dir":  cfg.ArtifactDir,
		"artifact_name": cfg.ArtifactName,
	}
	for field, value := range required {
		if value == "" {
			return fmt.Errorf("%s: %w", field, errPathRequired)
		}
	}

	// TempArchive is resolved inside the build root and must not depend on
	// the generator's working directory.
	absolute := map[string]string{
		"build_root":   cfg.BuildRoot,
		"temp_archive": cfg.TempArchive,
		"artifact_dir": cfg.ArtifactDir,
	}
	for field, value := range absolute {
		if !filepath.IsAbs(value) {
			return fmt.Errorf("%s %q: %w", field, value, errPathNotAbsolute)
		}
	}

	if cfg.Generator.Binary == "" {
		return fmt.Errorf("generator binary: %w", errPathRequired)
	}

	return nil
}

// TempArchiveHostPath returns the generator output path as seen from the
// host, outside the build root.
func (c *Config) TempArchiveHostPath() string {
	return filepath.Join(c.BuildRoot, c.TempArchive)
}

// ArtifactPath returns the final image path.
func (c *Config) ArtifactPath() string {
	return filepath.Join(c.ArtifactDir, c.ArtifactName)
}
