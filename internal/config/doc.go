// Package config defines the YAML configuration shared by the lifecycle
// hooks. Defaults match the shipped packaging recipe; every path and
// generator flag can be overridden from a file.
package config
