/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	hc05 "github.com/allbin/go-hc05"
	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <port>",
	Short: "Show metadata for a serial port",
	Long: `Show the enumerated metadata for a single serial port: its description and,
for USB adapters, vendor/product IDs and serial number.

Example usage:
  hc05ctl info /dev/ttyUSB0`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		port, found := hc05.FindPort(args[0])
		if !found {
			fmt.Fprintf(os.Stderr, "Error: %s is not an enumerable serial port\n", args[0])
			os.Exit(exitError)
		}

		fmt.Printf("Port:         %s\n", port.Path)
		fmt.Printf("Description:  %s\n", port.Description)
		if port.IsUSB {
			fmt.Printf("VID:PID:      %s\n", strings.ToUpper(port.VendorID+":"+port.ProductID))
			if port.SerialNumber != "" {
				fmt.Printf("Serial:       %s\n", port.SerialNumber)
			}
		} else {
			fmt.Println(dimStyle.Render("Not a USB device; no USB metadata available"))
		}
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
