// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pedal

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
	toml "github.com/pelletier/go-toml/v2"
)

// Config is a complete controller configuration, as cached by a Store or
// read from a backup file.
type Config struct {
	Device      string         `toml:"device,omitempty" cbor:"1,keyasint,omitempty"`
	ActiveBanks int            `toml:"active_banks" cbor:"2,keyasint"`
	Banks       []BankConfig   `toml:"banks" cbor:"3,keyasint"`
	Globals     []GlobalConfig `toml:"globals" cbor:"4,keyasint"`
}

// BankConfig is one bank and the slots the controller reported for it
type BankConfig struct {
	Index int          `toml:"index" cbor:"1,keyasint"`
	Name  string       `toml:"name" cbor:"2,keyasint"`
	Slots []SlotConfig `toml:"slots" cbor:"3,keyasint"`
}

// SlotConfig places a Slot at a footswitch position
type SlotConfig struct {
	Position int  `toml:"position" cbor:"1,keyasint"`
	Slot     Slot `toml:"slot" cbor:"2,keyasint"`
}

// GlobalConfig places a GlobalSlot at a global id
type GlobalConfig struct {
	ID   int        `toml:"id" cbor:"1,keyasint"`
	Slot GlobalSlot `toml:"slot" cbor:"2,keyasint"`
}

// Format selects a backup encoding
type Format int

// Backup formats
const (
	FormatTOML Format = iota
	FormatCBOR
)

// FormatForPath picks the backup format from a file extension. Anything
// other than .cbor is TOML.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".cbor") {
		return FormatCBOR
	}
	return FormatTOML
}

// MarshalConfig encodes cfg in the given format
func MarshalConfig(cfg Config, format Format) ([]byte, error) {
	switch format {
	case FormatCBOR:
		data, err := cbor.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to encode CBOR backup: %w", err)
		}
		return data, nil
	case FormatTOML:
		data, err := toml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to encode TOML backup: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("unknown backup format: %d", format)
}

// UnmarshalConfig decodes a backup and checks that it describes a
// configuration the controller can hold.
func UnmarshalConfig(data []byte, format Format) (Config, error) {
	var cfg Config
	switch format {
	case FormatCBOR:
		if err := cbor.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to decode CBOR backup: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to decode TOML backup: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("unknown backup format: %d", format)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks bank contiguity and every slot's action fields
func (c Config) Validate() error {
	if c.ActiveBanks < 1 {
		return fmt.Errorf("backup has no banks")
	}
	if c.ActiveBanks > MaxBanks {
		return fmt.Errorf("backup has %d banks (max %d)", c.ActiveBanks, MaxBanks)
	}
	if len(c.Banks) != c.ActiveBanks {
		return fmt.Errorf("backup lists %d banks, active_banks is %d", len(c.Banks), c.ActiveBanks)
	}
	for i, bank := range c.Banks {
		if bank.Index != i {
			return fmt.Errorf("bank %d has index %d (banks must be contiguous)", i, bank.Index)
		}
		for _, sc := range bank.Slots {
			if sc.Position < 0 || sc.Position >= SlotsPerBank {
				return fmt.Errorf("bank %d: slot position %d out of range", i, sc.Position)
			}
			if errs := ValidateSlot(sc.Slot); len(errs) > 0 {
				return fmt.Errorf("bank %d slot %d: %w", i, sc.Position, &errs[0])
			}
		}
	}
	for _, gc := range c.Globals {
		if gc.ID < 0 || gc.ID >= GlobalSlotCount {
			return fmt.Errorf("global id %d out of range", gc.ID)
		}
		if errs := ValidateGlobal(gc.Slot); len(errs) > 0 {
			return fmt.Errorf("global %d: %w", gc.ID, &errs[0])
		}
	}
	return nil
}
