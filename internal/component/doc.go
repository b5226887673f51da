// Package component implements the lifecycle of a boot environment
// component: declarative metadata, the install hook that places the module
// scripts, and the post-install hook that regenerates and publishes the boot
// image.
package component
