package components

import (
	"fmt"
	"strings"

	hc05 "github.com/allbin/go-hc05"
	"github.com/allbin/go-hc05/internal/tui/colors"
	"github.com/allbin/go-hc05/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// StatusBar is the single-line footer showing where the wizard is: which
// port, the confirmed baud rate, session state, and the current step.
type StatusBar struct {
	width    int
	portPath string
	baudRate int
	state    hc05.SessionState
	step     string
}

func NewStatusBar(width int) *StatusBar {
	return &StatusBar{width: width, state: hc05.StateDisconnected}
}

func (s *StatusBar) SetWidth(width int) { s.width = width }

func (s *StatusBar) SetPort(path string) { s.portPath = path }

func (s *StatusBar) SetBaudRate(rate int) { s.baudRate = rate }

func (s *StatusBar) SetState(st hc05.SessionState) { s.state = st }

func (s *StatusBar) SetStep(step string) { s.step = step }

var (
	barStyle = lipgloss.NewStyle().
			Background(colors.Surface0).
			Foreground(colors.Text).
			Padding(0, 1)

	barLabelStyle = lipgloss.NewStyle().
			Background(colors.Surface0).
			Foreground(colors.Subtext0)
)

func (s *StatusBar) View() string {
	var segments []string

	if s.portPath != "" {
		segments = append(segments, barLabelStyle.Render("port ")+s.portPath)
	} else {
		segments = append(segments, barLabelStyle.Render("no port selected"))
	}

	if s.baudRate > 0 {
		segments = append(segments, barLabelStyle.Render("baud ")+fmt.Sprintf("%d", s.baudRate))
	}

	segments = append(segments,
		styles.SessionStateStyle(s.state).Background(colors.Surface0).Render(s.state.String()))

	if s.step != "" {
		segments = append(segments, barLabelStyle.Render("step ")+s.step)
	}

	line := strings.Join(segments, barLabelStyle.Render(" │ "))
	return barStyle.Width(s.width).Render(line)
}
