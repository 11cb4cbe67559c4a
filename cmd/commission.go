/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/allbin/go-hc05/internal/tui/models"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// commissionCmd represents the commission command
var commissionCmd = &cobra.Command{
	Use:   "commission",
	Short: "Interactive wizard for configuring HC-05 modules",
	Long: `Walk through commissioning one or more HC-05 modules: pick a port,
find the baud rate the module answers at, read its configuration, edit the
fields and write them back with read-back verification.

The wizard keeps the values applied to the previous module as defaults for the
next one, so configuring a batch of identical modules only needs the values
typed once. When no candidate rate gets an answer the wizard offers a manual
baud rate entry before giving up.

Exit status:
  0  commissioning completed
  2  aborted by the operator
  3  module unreachable`,
	Run: func(cmd *cobra.Command, args []string) {
		settings := models.Settings{
			Candidates:   viper.GetIntSlice("candidates"),
			MaxAttempts:  viper.GetInt("attempts"),
			ProbeTimeout: viper.GetDuration("probe-timeout"),
			SettleDelay:  viper.GetDuration("settle-delay"),
		}

		model := models.NewCommissionModel(settings)
		p := tea.NewProgram(model, tea.WithAltScreen())
		final, err := p.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitError)
		}

		if m, ok := final.(*models.CommissionModel); ok {
			os.Exit(m.ExitCode())
		}
	},
}

func init() {
	rootCmd.AddCommand(commissionCmd)
}
