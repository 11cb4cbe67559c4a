/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"

	hc05 "github.com/allbin/go-hc05"
	"github.com/spf13/cobra"
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset <port>",
	Short: "USB-reset a hung serial adapter",
	Long: `Perform a USB-level reset of the adapter behind a serial port.

Cheap CH340/CP210x adapters sometimes wedge in a state where the port opens
but the module never answers; a bus reset usually recovers them without
replugging. Requires the usbreset utility (usbutils package) and permissions
to reset USB devices (typically root/sudo).

Example usage:
  hc05ctl reset /dev/ttyUSB0
  hc05ctl reset --serial FT123456`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		serialNumber, _ := cmd.Flags().GetString("serial")

		var err error
		switch {
		case serialNumber != "":
			fmt.Printf("Resetting USB device with serial %s...\n", serialNumber)
			err = hc05.ResetUSBDeviceBySerial(serialNumber)
		case len(args) == 1:
			fmt.Printf("Resetting USB device behind %s...\n", args[0])
			err = hc05.ResetUSBDevice(args[0])
		default:
			fmt.Fprintln(os.Stderr, "Error: provide a port path or --serial")
			os.Exit(exitError)
		}

		if err != nil {
			switch {
			case errors.Is(err, hc05.ErrUSBResetNotAvailable):
				fmt.Fprintln(os.Stderr, "Error: usbreset utility not found (install usbutils)")
			case errors.Is(err, hc05.ErrUSBInfoNotAvailable):
				fmt.Fprintln(os.Stderr, "Error: device is not USB or exposes no USB metadata")
			default:
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			os.Exit(exitError)
		}

		fmt.Println(successStyle.Render("Reset complete; device re-enumerated"))
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().StringP("serial", "s", "", "Reset the adapter with this USB serial number")
}
