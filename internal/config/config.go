package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the few tunables bilitui reads at startup.
type Config struct {
	ConfigDir   string // resolved, not from the file
	MpvPath     string
	PollSeconds int
	LogFile     string
}

const (
	defaultConfigDir   = "~/.config/bilitui"
	defaultMpvPath     = "mpv"
	defaultPollSeconds = 2
	defaultLogFile     = "~/.local/state/bilitui/bilitui.log"
)

// Load locates and parses the config file, falling back to defaults when
// missing. An absent file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	dir, err := expandPath(defaultConfigDir)
	if err != nil {
		return Config{}, err
	}

	resolved, err := resolvePath(path, dir)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		ConfigDir:   dir,
		MpvPath:     defaultMpvPath,
		PollSeconds: defaultPollSeconds,
		LogFile:     mustExpand(defaultLogFile),
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Mpv         string `toml:"mpv"`
		PollSeconds int    `toml:"poll_seconds"`
		LogFile     string `toml:"log_file"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if mpv := strings.TrimSpace(raw.Mpv); mpv != "" {
		cfg.MpvPath = mustExpand(mpv)
	}
	if raw.PollSeconds > 0 {
		cfg.PollSeconds = raw.PollSeconds
	}
	if logFile := strings.TrimSpace(raw.LogFile); logFile != "" {
		cfg.LogFile = mustExpand(logFile)
	}

	return cfg, nil
}

func resolvePath(path, configDir string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return filepath.Join(configDir, "config.toml"), nil
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
