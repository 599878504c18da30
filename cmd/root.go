// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/pedalsync/internal/config"
	"github.com/Thermoquad/pedalsync/pkg/pedal"
)

var (
	// Serial connection flags
	portName string
	baudRate int
	profile  string

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	configPath string
	verbose    bool
	emulate    bool

	// settings is the merge of the config file and the flags above,
	// resolved before any subcommand runs
	settings = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "pedalsync",
	Short: "Configure a MIDI footswitch controller",
	Long: `pedalsync - A CLI tool for reading and editing the configuration of a
multi-footswitch MIDI pedal controller.

The controller speaks a line-based text protocol over its USB serial port,
a Bluetooth serial module or a WebSocket serial bridge. pedalsync loads the
full configuration (banks, footswitch slots, global slots), edits it and
backs it up.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--profile usb|bt] [--baud 31250]
  WebSocket: --url ws://host/path [--username user]
  Emulator:  --emulate

Defaults for every connection flag can be kept in
~/.config/pedalsync/config.toml (see --config).

For WebSocket authentication, the password is read from the PEDALSYNC_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 0, "Baud rate (serial only, overrides --profile)")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "Link profile: usb (31250 baud) or bt (9600 baud)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/pedalsync/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every line sent and received to stderr")
	rootCmd.PersistentFlags().BoolVar(&emulate, "emulate", false, "Talk to a built-in emulated controller instead of hardware")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func loadSettings(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	resolved, err := mergeFlags(cfg, cmd)
	if err != nil {
		return err
	}
	settings = resolved
	return nil
}

// mergeFlags applies the flags the user actually set on top of cfg
func mergeFlags(cfg config.Config, cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()

	if flags.Changed("port") {
		cfg.Port = portName
	}
	if flags.Changed("profile") {
		p := strings.ToLower(strings.TrimSpace(profile))
		baud, err := config.ProfileBaud(p)
		if err != nil {
			return cfg, err
		}
		cfg.Profile = p
		cfg.Baud = baud
	}
	if flags.Changed("baud") {
		if baudRate <= 0 {
			return cfg, fmt.Errorf("invalid baud rate %d", baudRate)
		}
		cfg.Baud = baudRate
	}
	if flags.Changed("url") {
		cfg.URL = wsURL
	}
	if flags.Changed("username") {
		cfg.Username = wsUsername
	}
	return cfg, nil
}

// sessionLogger returns the logger handed to pedal sessions
func sessionLogger() *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// sessionConfig builds the session settings shared by every command
func sessionConfig(hooks pedal.Hooks) pedal.SessionConfig {
	return pedal.SessionConfig{
		RetryInterval: settings.RetryInterval,
		SyncTimeout:   settings.SyncTimeout,
		Logger:        sessionLogger(),
		Hooks:         hooks,
	}
}
