// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pedal

import (
	"errors"
	"fmt"
)

var (
	// ErrSyncTimeout is returned when END:CONFIG did not arrive in time
	ErrSyncTimeout = errors.New("timed out waiting for configuration")

	// ErrSyncBusy is returned when a load is already in flight
	ErrSyncBusy = errors.New("configuration load already in progress")

	// ErrNoBanks is returned for bank operations before any bank is known
	ErrNoBanks = errors.New("no banks loaded")

	// ErrAckTimeout is returned when the controller did not acknowledge a command
	ErrAckTimeout = errors.New("timed out waiting for acknowledgement")

	// ErrDeviceRejected matches every *DeviceError with errors.Is
	ErrDeviceRejected = errors.New("controller rejected command")
)

// DeviceError is an ERR:<code> reply from the controller
type DeviceError struct {
	Code string
}

// Error implements the error interface
func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", ErrDeviceRejected, e.Code, DescribeDeviceError(e.Code))
}

// Unwrap returns ErrDeviceRejected
func (e *DeviceError) Unwrap() error {
	return ErrDeviceRejected
}

// DescribeDeviceError returns a user-facing text for an ERR: subtype
func DescribeDeviceError(code string) string {
	switch code {
	case ErrMaxBanks:
		return "bank limit reached"
	case ErrMinBanks:
		return "cannot delete the last bank"
	case ErrSaveFail:
		return "slot save failed"
	case ErrSaveGlobalFail:
		return "global slot save failed"
	case ErrBufferOverflow:
		return "command too long for the controller's buffer"
	}
	return "unknown error"
}

// DescribeAck returns a user-facing text for an OK: subtype
func DescribeAck(code string) string {
	switch code {
	case AckSaved:
		return "slot saved"
	case AckSavedGlobal:
		return "global slot saved"
	case AckBankRenamed:
		return "bank renamed"
	case AckBankAdded:
		return "bank added, reloading"
	case AckBankRemoved:
		return "bank removed, reloading"
	case AckResetDone:
		return "factory defaults restored"
	}
	return "ok"
}
