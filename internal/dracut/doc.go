// Package dracut invokes the external initramfs generator. It only builds
// the command line and runs the tool inside the build root; the archive
// format and contents are entirely owned by the tool itself.
package dracut
