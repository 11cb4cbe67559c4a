/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	hc05 "github.com/allbin/go-hc05"
	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"
)

const (
	columnKeyPort   = "port"
	columnKeyDesc   = "description"
	columnKeyVIDPID = "vidpid"
	columnKeySerial = "serial"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available serial ports",
	Long: `List the serial ports a module could be attached to.

USB serial adapters report their product string, vendor/product IDs and serial
number, which is usually enough to pick out the HC-05 breakout among other
devices. Enumeration problems are reported as a diagnostic and yield an empty
listing rather than an error exit.`,
	Run: func(cmd *cobra.Command, args []string) {
		ports, err := hc05.ListPorts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: port enumeration failed: %v\n", err)
		}

		usbOnly, _ := cmd.Flags().GetBool("usb")
		if usbOnly {
			ports = filterUSB(ports)
		}

		if len(ports) == 0 {
			fmt.Println("No serial ports found")
			return
		}

		tableFormat, _ := cmd.Flags().GetBool("table")
		if tableFormat {
			renderPortTable(ports)
		} else {
			for _, p := range ports {
				fmt.Println(p.Label())
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
	listCmd.Flags().BoolP("usb", "u", false, "Only show USB serial adapters")
}

func filterUSB(ports []hc05.Port) []hc05.Port {
	var filtered []hc05.Port
	for _, p := range ports {
		if p.IsUSB {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// renderPortTable renders the port list as a styled static table
func renderPortTable(ports []hc05.Port) {
	columns := []table.Column{
		table.NewColumn(columnKeyPort, "Port", 18),
		table.NewColumn(columnKeyDesc, "Description", 30),
		table.NewColumn(columnKeyVIDPID, "VID:PID", 11),
		table.NewColumn(columnKeySerial, "Serial", 16),
	}

	rows := make([]table.Row, 0, len(ports))
	for _, p := range ports {
		vidpid := ""
		if p.VendorID != "" && p.ProductID != "" {
			vidpid = strings.ToUpper(p.VendorID + ":" + p.ProductID)
		}
		rows = append(rows, table.NewRow(table.RowData{
			columnKeyPort:   p.Path,
			columnKeyDesc:   p.Description,
			columnKeyVIDPID: vidpid,
			columnKeySerial: p.SerialNumber,
		}))
	}

	t := table.New(columns).
		WithRows(rows).
		BorderRounded()

	fmt.Println(t.View())
}
