/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	hc05 "github.com/allbin/go-hc05"
	"github.com/spf13/cobra"
)

// queryCmd represents the query command
var queryCmd = &cobra.Command{
	Use:   "query <port> [field]",
	Short: "Read a module's configuration",
	Long: `Probe the module and read its persistent configuration.

With no field argument every known field is read: name, pin, uart, role and
cmode. Each read is retried up to the configured attempt budget; a field you
choose to skip is listed as skipped, never silently defaulted.

Example usage:
  hc05ctl query /dev/ttyUSB0
  hc05ctl query /dev/ttyUSB0 pin`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		fields := hc05.Fields()
		if len(args) == 2 {
			field, ok := hc05.FieldByName(args[1])
			if !ok {
				fmt.Fprintf(os.Stderr, "Error: unknown field %q (known: %v)\n", args[1], hc05.Fields())
				os.Exit(exitError)
			}
			fields = []hc05.Field{field}
		}

		session := openConfirmedSession(args[0])
		defer session.Close()

		config, results := queryFields(session, fields)

		anyFailed := false
		for i, f := range fields {
			if value, ok := config.Value(f); ok {
				fmt.Printf("  %-6s %s\n", f, value)
				continue
			}
			fmt.Printf("  %-6s %s\n", f, outcomeLabel(results[i]))
			if results[i].Outcome == hc05.OutcomeFailed {
				anyFailed = true
			}
		}

		if anyFailed {
			os.Exit(exitDeviceUnreachable)
		}
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
}

// queryFields reads each field under the retry policy, collecting observed
// values and a per-field outcome. Skipped fields stay absent from the config.
func queryFields(session *hc05.Session, fields []hc05.Field) (*hc05.ModuleConfig, []hc05.StepResult) {
	policy := stepPolicy()
	config := hc05.NewModuleConfig()
	results := make([]hc05.StepResult, 0, len(fields))

	for _, f := range fields {
		field := f
		var value string
		result := policy.Run(fmt.Sprintf("query %s", field), func() error {
			var err error
			value, err = session.Query(field)
			return err
		})
		if result.Outcome == hc05.OutcomeSuccess {
			config.Set(field, value)
		}
		results = append(results, result)
	}

	return config, results
}
