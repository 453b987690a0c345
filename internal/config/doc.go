// Package config provides the configuration of a waveload run: defaults,
// validation, the YAML profile file, and XDG directory locations.
package config
