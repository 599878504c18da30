// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/Thermoquad/pedalsync/pkg/pedal"
)

// Config holds the connection defaults read from the pedalsync config file.
// Command-line flags override every field.
type Config struct {
	Port            string
	Profile         string
	Baud            int
	URL             string
	Username        string
	RetryInterval   time.Duration
	SyncTimeout     time.Duration
	ConnectAttempts uint
}

// Link profiles
const (
	ProfileUSB       = "usb"
	ProfileBluetooth = "bt"
)

const (
	defaultConfigPath      = "~/.config/pedalsync/config.toml"
	defaultProfile         = ProfileUSB
	defaultConnectAttempts = 5
)

// Default returns the configuration used when no file exists
func Default() Config {
	return Config{
		Profile:         defaultProfile,
		Baud:            pedal.BaudUSB,
		RetryInterval:   pedal.DefaultRetryInterval,
		SyncTimeout:     pedal.DefaultSyncTimeout,
		ConnectAttempts: defaultConnectAttempts,
	}
}

// Load locates and parses the config file, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

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
		Port            string `toml:"port"`
		Profile         string `toml:"profile"`
		Baud            int    `toml:"baud"`
		URL             string `toml:"url"`
		Username        string `toml:"username"`
		RetryInterval   string `toml:"retry_interval"`
		SyncTimeout     string `toml:"sync_timeout"`
		ConnectAttempts int    `toml:"connect_attempts"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.Port = strings.TrimSpace(raw.Port)
	cfg.URL = strings.TrimSpace(raw.URL)
	cfg.Username = strings.TrimSpace(raw.Username)

	if profile := strings.ToLower(strings.TrimSpace(raw.Profile)); profile != "" {
		baud, err := ProfileBaud(profile)
		if err != nil {
			return Config{}, err
		}
		cfg.Profile = profile
		cfg.Baud = baud
	}
	if raw.Baud > 0 {
		cfg.Baud = raw.Baud
	}

	if cfg.RetryInterval, err = parseDuration("retry_interval", raw.RetryInterval, cfg.RetryInterval); err != nil {
		return Config{}, err
	}
	// The timeout follows the retry interval unless set explicitly
	cfg.SyncTimeout = 5 * cfg.RetryInterval
	if cfg.SyncTimeout, err = parseDuration("sync_timeout", raw.SyncTimeout, cfg.SyncTimeout); err != nil {
		return Config{}, err
	}
	if cfg.SyncTimeout < cfg.RetryInterval {
		return Config{}, fmt.Errorf("sync_timeout %s is shorter than retry_interval %s", cfg.SyncTimeout, cfg.RetryInterval)
	}

	if raw.ConnectAttempts > 0 {
		cfg.ConnectAttempts = uint(raw.ConnectAttempts)
	}

	return cfg, nil
}

// ProfileBaud returns the link speed of a profile: the USB MIDI serial
// bridge runs at the MIDI rate, the Bluetooth module at 9600.
func ProfileBaud(profile string) (int, error) {
	switch profile {
	case ProfileUSB:
		return pedal.BaudUSB, nil
	case ProfileBluetooth:
		return pedal.BaudBluetooth, nil
	}
	return 0, fmt.Errorf("unknown profile %q (want %s or %s)", profile, ProfileUSB, ProfileBluetooth)
}

func parseDuration(key, value string, fallback time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse config: %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("parse config: %s must be positive", key)
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
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
