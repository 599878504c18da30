// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// pedalsync - MIDI Footswitch Controller Configuration Tool
//
// A CLI tool for loading, editing, backing up and restoring the
// configuration of a multi-footswitch MIDI controller over serial,
// Bluetooth serial or a WebSocket serial bridge.

package main

import (
	"os"

	"github.com/Thermoquad/pedalsync/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
