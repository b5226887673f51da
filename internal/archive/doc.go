// Package archive inspects generated boot images. The generator runs with
// compression disabled, so the artifact is a plain newc cpio stream that can
// be walked header by header.
package archive
