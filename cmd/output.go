// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/Thermoquad/pedalsync/pkg/pedal"
)

var (
	green  = color.New(color.FgGreen).SprintfFunc()
	red    = color.New(color.FgRed).SprintfFunc()
	yellow = color.New(color.FgYellow).SprintfFunc()
	cyan   = color.New(color.FgCyan).SprintfFunc()
)

// printNotice writes a session notice to stderr, colored by level
func printNotice(n pedal.Notice) {
	fmt.Fprintln(os.Stderr, formatNotice(n))
}

func formatNotice(n pedal.Notice) string {
	ts := n.Time.Format("15:04:05")
	switch n.Level {
	case pedal.NoticeSuccess:
		return fmt.Sprintf("%s %s %s", ts, green("ok"), n.Text)
	case pedal.NoticeError:
		return fmt.Sprintf("%s %s %s", ts, red("error"), n.Text)
	default:
		return fmt.Sprintf("%s %s %s", ts, cyan("info"), n.Text)
	}
}

func printSuccess(format string, args ...any) {
	fmt.Println(green(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(os.Stderr, yellow(format, args...))
}
