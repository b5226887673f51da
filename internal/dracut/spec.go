package dracut

import "bootsmith/internal/config"

// fstabFile is the fstab included in the image when requested.
const fstabFile = "/etc/fstab"

// Spec describes a single generator invocation.
type Spec struct {
	// Binary is the generator executable, resolved inside the build root.
	Binary string
	// Force regenerates the image even if the output file exists.
	Force bool
	// NoKernel excludes kernel modules from the image.
	NoKernel bool
	// NoFsck skips filesystem check binaries.
	NoFsck bool
	// AddFstab includes the target's fstab in the image.
	AddFstab bool
	// NoCompress leaves the cpio stream uncompressed.
	NoCompress bool
	// ExtraArgs are appended verbatim before the output path.
	ExtraArgs []string
	// Output is the image path as seen inside the build root.
	Output string
}

// NewSpec builds a [Spec] from generator settings and the output path.
func NewSpec(cfg config.Generator, output string) Spec {
	return Spec{
		Binary:     cfg.Binary,
		Force:      cfg.Force,
		NoKernel:   cfg.NoKernel,
		NoFsck:     cfg.NoFsck,
		AddFstab:   cfg.AddFstab,
		NoCompress: cfg.NoCompress,
		ExtraArgs:  cfg.ExtraArgs,
		Output:     output,
	}
}

// Args returns the command line arguments for the invocation, without the
// binary itself. The output path is the last argument, as the generator
// expects it.
func (s Spec) Args() []string {
	var args []string

	if s.Force {
		args = append(args, "--force")
	}

	if s.NoKernel {
		args = append(args, "--no-kernel")
	}

	if s.NoFsck {
		args = append(args, "--nofscks")
	}

	if s.AddFstab {
		args = append(args, "--add-fstab", fstabFile)
	}

	if s.NoCompress {
		args = append(args, "--no-compress")
	}

	args = append(args, s.ExtraArgs...)

	return append(args, s.Output)
}
