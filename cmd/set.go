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

// setCmd represents the set command
var setCmd = &cobra.Command{
	Use:   "set <port> <field> <value>",
	Short: "Write one configuration field on a module",
	Long: `Probe the module, write one configuration field, and verify the write by
reading the field back.

The value is validated against the field's domain before the port is even
opened; an out-of-domain value is rejected without a single byte reaching the
wire.

Fields and domains:
  name   Bluetooth device name, up to 32 characters
  pin    pairing PIN, exactly 4 digits
  uart   data-mode UART as baud,stop,parity (e.g. 9600,0,0)
  role   0=slave, 1=master, 2=slave-loop
  cmode  0=bound address, 1=any, 2=slave-loop

Example usage:
  hc05ctl set /dev/ttyUSB0 name workshop-07
  hc05ctl set /dev/ttyUSB0 uart 115200,0,0`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		portPath, fieldName, value := args[0], args[1], args[2]

		field, ok := hc05.FieldByName(fieldName)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: unknown field %q (known: %v)\n", fieldName, hc05.Fields())
			os.Exit(exitError)
		}

		// Operator input error surfaces immediately; no device contact.
		if err := hc05.Validate(field, value); err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", errorStyle.Render("Error: "+err.Error()))
			os.Exit(exitError)
		}

		session := openConfirmedSession(portPath)
		defer session.Close()

		policy := stepPolicy()
		result := policy.Run(fmt.Sprintf("set %s", field), func() error {
			return session.Set(field, value)
		})

		switch result.Outcome {
		case hc05.OutcomeSkipped:
			fmt.Println(warnStyle.Render(fmt.Sprintf("set %s skipped; module unchanged", field)))
			os.Exit(exitOperatorAborted)
		case hc05.OutcomeFailed:
			var verr *hc05.ValidationError
			if errors.As(result.Err, &verr) {
				fmt.Fprintf(os.Stderr, "%s\n", errorStyle.Render("Error: "+result.Err.Error()))
				os.Exit(exitError)
			}
			fmt.Fprintf(os.Stderr, "%s\n", errorStyle.Render(fmt.Sprintf("Error: set %s: %v", field, result.Err)))
			os.Exit(exitDeviceUnreachable)
		}

		verify(session, field, value)
	},
}

func init() {
	rootCmd.AddCommand(setCmd)
}

// verify reads the field back and compares. Verification is best-effort: the
// write was acknowledged, so a skipped or failed read-back is reported but
// does not unwind anything.
func verify(session *hc05.Session, field hc05.Field, want string) {
	var got string
	result := stepPolicy().Run(fmt.Sprintf("verify %s", field), func() error {
		var err error
		got, err = session.Query(field)
		return err
	})

	switch {
	case result.Outcome != hc05.OutcomeSuccess:
		fmt.Println(warnStyle.Render(fmt.Sprintf("%s written and acknowledged, but read-back %s", field, result.Outcome)))
	case got == want:
		fmt.Println(successStyle.Render(fmt.Sprintf("%s = %s (verified)", field, got)))
	default:
		// Some firmware normalizes values (e.g. uart spacing), so show
		// both rather than calling it a failure.
		fmt.Println(warnStyle.Render(fmt.Sprintf("%s written; module reports %q (sent %q)", field, got, want)))
	}
}
