// Package config reads the optional bilitui config file at
// ~/.config/bilitui/config.toml. Every field has a sensible default; a
// missing file is never an error. The config directory doubles as the home
// of the credentials file.
package config
