// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads pedalsync's connection defaults.
//
// The file lives at ~/.config/pedalsync/config.toml unless --config names
// another path. A missing file is not an error; defaults are used. Every
// field is optional:
//
//	port = "/dev/ttyUSB0"
//	profile = "bt"            # usb (31250 baud) or bt (9600 baud)
//	baud = 9600               # overrides the profile's speed
//	url = "ws://bridge.local/serial"
//	username = "admin"
//	retry_interval = "2s"     # GETALL resend interval during a load
//	sync_timeout = "10s"      # defaults to 5 x retry_interval
//	connect_attempts = 5
//
// The WebSocket bridge password is never read from the file; see
// PEDALSYNC_PASSWORD.
package config
