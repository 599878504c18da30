// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.bug.st/serial/enumerator"
	"golang.org/x/term"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports",
	Long: `List the serial ports of this machine, with USB vendor and product ids
where the system reports them.

When a command needs a connection and neither --port nor --url is given,
pedalsync offers the same list as an interactive picker.`,
	Args: cobra.NoArgs,
	RunE: runPorts,
}

func init() {
	rootCmd.AddCommand(portsCmd)
}

func runPorts(cmd *cobra.Command, args []string) error {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return fmt.Errorf("failed to list serial ports: %w", err)
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found")
		return nil
	}

	for _, port := range ports {
		fmt.Println(port.Name)
		if port.IsUSB {
			fmt.Printf("   USB ID      %s:%s\n", port.VID, port.PID)
			if port.SerialNumber != "" {
				fmt.Printf("   USB serial  %s\n", port.SerialNumber)
			}
			if port.Product != "" {
				fmt.Printf("   Product     %s\n", port.Product)
			}
		}
	}
	return nil
}

// portLabel renders a port for the picker
func portLabel(port *enumerator.PortDetails) string {
	if port.IsUSB && port.Product != "" {
		return fmt.Sprintf("%s (%s)", port.Name, port.Product)
	}
	if port.IsUSB {
		return fmt.Sprintf("%s (USB %s:%s)", port.Name, port.VID, port.PID)
	}
	return port.Name
}

// choosePort asks the user to pick a serial port when none is configured.
// Without a terminal it fails the way OpenConnection does.
func choosePort() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errNoTarget
	}

	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return fmt.Errorf("failed to list serial ports: %w", err)
	}
	if len(ports) == 0 {
		return errors.Join(errNoTarget, errors.New("no serial ports found"))
	}

	labels := make([]string, len(ports))
	for i, port := range ports {
		labels[i] = portLabel(port)
	}

	prompt := promptui.Select{
		Label: "Controller port",
		Items: labels,
	}
	idx, _, err := prompt.Run()
	if err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}

	settings.Port = ports[idx].Name
	return nil
}
