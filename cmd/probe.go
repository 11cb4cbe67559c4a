/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// probeCmd represents the probe command
var probeCmd = &cobra.Command{
	Use:   "probe <port>",
	Short: "Find the baud rate a module answers AT commands at",
	Long: `Try each candidate baud rate in order until the module answers an AT probe
coherently.

Every attempt's raw bytes are shown, including for the winning rate: garbled
or partial responses are common at wrong rates and say a lot about what is on
the other end of the wire. When no candidate works you are asked whether to
retry the whole sweep or give up.

Exit status: 0 when a rate is confirmed, 2 when you abort, 3 when the device
stays unreachable.

Example usage:
  hc05ctl probe /dev/ttyUSB0
  hc05ctl probe /dev/ttyUSB0 --candidates 9600,38400,115200`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		session := openConfirmedSession(args[0])
		defer session.Close()

		fmt.Printf("Module on %s is in AT mode at %d baud\n", session.Path(), session.BaudRate())
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
