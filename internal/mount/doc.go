// Package mount establishes the pseudo filesystems an initramfs generator
// needs inside a build root and releases them again. Acquisition is scoped:
// a [Session] unmounts in reverse order even when the enclosed work fails.
package mount
