// Package config builds the effective vine configuration.
//
// Later layers win over earlier ones:
//
//	defaults < user vine.toml < project vine.toml < VINE_* environment < flags
//
// The user file is ~/.vine/vine.toml, falling back to vine/vine.toml under
// the platform config directory (%APPDATA%, ~/Library/Application Support or
// $XDG_CONFIG_HOME, which defaults to ~/.config). The project file is
// vine.toml or .vine.toml in the working directory.
//
// LoadWithSources also records which layer supplied each key, for
// `vine config`.
package config
