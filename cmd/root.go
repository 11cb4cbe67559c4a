/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"time"

	hc05 "github.com/allbin/go-hc05"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit codes reported by commands that talk to a module
const (
	exitCompleted         = 0
	exitError             = 1
	exitOperatorAborted   = 2
	exitDeviceUnreachable = 3
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hc05ctl",
	Short: "Discover, probe and configure HC-05 Bluetooth serial modules",
	Long: `hc05ctl commissions HC-05 Bluetooth serial modules over their AT command
interface.

The HC-05 only accepts AT commands at one baud rate, and which rate that is
depends on how the module was booted and what was written to it before. hc05ctl
finds the working rate by trial, confirms AT mode, and then queries or rewrites
the module's persistent settings (name, pairing PIN, UART parameters, role,
connect mode) with every value checked against its valid domain before it is
sent.

Each protocol step is retried a bounded number of times; when retries run out
you decide whether to try again or skip the step and continue.

Example usage:
  hc05ctl list --table
  hc05ctl probe /dev/ttyUSB0
  hc05ctl query /dev/ttyUSB0
  hc05ctl set /dev/ttyUSB0 pin 4321
  hc05ctl commission`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(exitError)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.hc05ctl.yaml)")
	rootCmd.PersistentFlags().IntSlice("candidates", hc05.DefaultCandidates, "candidate baud rates, tried in order")
	rootCmd.PersistentFlags().Int("attempts", hc05.DefaultMaxAttempts, "attempts per protocol step before asking retry/skip")
	rootCmd.PersistentFlags().Duration("probe-timeout", time.Second, "response window per probe attempt")
	rootCmd.PersistentFlags().Duration("settle-delay", time.Second, "wait after opening a port before the first probe")

	_ = viper.BindPFlag("candidates", rootCmd.PersistentFlags().Lookup("candidates"))
	_ = viper.BindPFlag("attempts", rootCmd.PersistentFlags().Lookup("attempts"))
	_ = viper.BindPFlag("probe-timeout", rootCmd.PersistentFlags().Lookup("probe-timeout"))
	_ = viper.BindPFlag("settle-delay", rootCmd.PersistentFlags().Lookup("settle-delay"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".hc05ctl" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".hc05ctl")
	}

	viper.SetEnvPrefix("HC05CTL")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
