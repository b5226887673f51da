// Package cli defines the bootsmith command tree: the install and postinst
// lifecycle hooks, artifact inspection and version information.
package cli
