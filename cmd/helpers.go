/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	hc05 "github.com/allbin/go-hc05"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Faint(true)
)

// newProber builds a prober from the persistent flags / config file.
func newProber() *hc05.Prober {
	p := hc05.NewProber()
	if candidates := viper.GetIntSlice("candidates"); len(candidates) > 0 {
		p.Candidates = candidates
	}
	if d := viper.GetDuration("probe-timeout"); d > 0 {
		p.ProbeTimeout = d
	}
	p.SettleDelay = viper.GetDuration("settle-delay")
	return p
}

// stepPolicy wraps protocol steps with the configured attempt budget and an
// interactive retry/skip prompt.
func stepPolicy() hc05.Policy {
	return hc05.Policy{
		MaxAttempts: viper.GetInt("attempts"),
		Resolver:    promptResolver(),
	}
}

// promptResolver asks the operator on stderr whether an exhausted step should
// be retried or skipped.
func promptResolver() hc05.ResolverFunc {
	reader := bufio.NewReader(os.Stdin)
	return func(ctx hc05.StepContext) hc05.Resolution {
		fmt.Fprintf(os.Stderr, "%s\n",
			warnStyle.Render(fmt.Sprintf("%s failed after %d attempt(s): %v", ctx.Step, ctx.Attempts, ctx.LastErr)))
		for {
			fmt.Fprint(os.Stderr, "[r]etry / [s]kip? ")
			line, err := reader.ReadString('\n')
			if err != nil {
				// Stdin gone: skipping is the only answer that lets
				// the flow record an outcome and move on.
				return hc05.ResolutionSkip
			}
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "r", "retry", "":
				return hc05.ResolutionRetry
			case "s", "skip":
				return hc05.ResolutionSkip
			}
		}
	}
}

// renderReport prints one line per probe attempt, raw bytes included. Partial
// and garbled responses are worth seeing, so even successful runs show every
// attempt.
func renderReport(report *hc05.Report) {
	for _, a := range report.Attempts {
		switch {
		case a.Err != nil:
			fmt.Printf("  %6d baud: %s\n", a.BaudRate, errorStyle.Render(a.Err.Error()))
		case len(a.Raw) == 0:
			fmt.Printf("  %6d baud: %s\n", a.BaudRate, dimStyle.Render("no response"))
		default:
			fmt.Printf("  %6d baud: %-11s %s\n", a.BaudRate, a.Outcome,
				dimStyle.Render(fmt.Sprintf("%d bytes: % X | %q", len(a.Raw), a.Raw, printableASCII(a.Raw))))
		}
	}
}

// printableASCII renders response bytes with dots for anything non-printable
func printableASCII(data []byte) string {
	var b strings.Builder
	for _, c := range data {
		if c >= 32 && c <= 126 {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

// openConfirmedSession probes a port under the retry policy and returns a
// session in AT mode. It exits the process when the operator gives up or the
// device stays unreachable.
func openConfirmedSession(portPath string) *hc05.Session {
	prober := newProber()

	var session *hc05.Session
	policy := hc05.Policy{MaxAttempts: 1, Resolver: promptResolver()}
	result := policy.Run("baud probe on "+portPath, func() error {
		var report *hc05.Report
		var err error
		session, report, err = prober.Probe(portPath)
		renderReport(report)
		return err
	})

	switch result.Outcome {
	case hc05.OutcomeSuccess:
		fmt.Println(successStyle.Render(fmt.Sprintf("AT mode confirmed at %d baud", session.BaudRate())))
		return session
	case hc05.OutcomeSkipped:
		fmt.Fprintln(os.Stderr, warnStyle.Render("Probe skipped by operator"))
		os.Exit(exitOperatorAborted)
	default:
		fmt.Fprintf(os.Stderr, "%s\n", errorStyle.Render(fmt.Sprintf("Error: %v", result.Err)))
		os.Exit(exitDeviceUnreachable)
	}
	return nil
}

// outcomeLabel renders a step outcome for result listings.
func outcomeLabel(result hc05.StepResult) string {
	switch result.Outcome {
	case hc05.OutcomeSuccess:
		return successStyle.Render("ok")
	case hc05.OutcomeSkipped:
		return warnStyle.Render("skipped")
	default:
		return errorStyle.Render("failed")
	}
}
