package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/allbin/go-hc05/internal/tui/colors"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// TranscriptEntry is one line of the protocol transcript: a transmitted
// command, a raw response window, or a note about the flow.
type TranscriptEntry struct {
	Timestamp time.Time
	IsTX      bool
	Data      []byte
	Note      string
}

// Transcript shows the raw wire exchange in a scrolling viewport. Operators
// debugging a half-synced module want the exact bytes, hex and ASCII both.
type Transcript struct {
	viewport viewport.Model
	lines    []string
}

func NewTranscript(width, height int) *Transcript {
	return &Transcript{viewport: viewport.New(width, height)}
}

func (t *Transcript) SetSize(width, height int) {
	t.viewport.Width = width
	t.viewport.Height = height
	t.refresh()
}

// AddTX records bytes sent to the module.
func (t *Transcript) AddTX(data []byte) {
	t.add(TranscriptEntry{Timestamp: time.Now(), IsTX: true, Data: data})
}

// AddRX records a response window's raw bytes. Empty data is shown as a
// timeout marker so silence is visible in the log too.
func (t *Transcript) AddRX(data []byte) {
	t.add(TranscriptEntry{Timestamp: time.Now(), Data: data})
}

// AddNote records a flow annotation (probe attempt results, step outcomes).
func (t *Transcript) AddNote(note string) {
	t.add(TranscriptEntry{Timestamp: time.Now(), Note: note})
}

func (t *Transcript) add(entry TranscriptEntry) {
	t.lines = append(t.lines, formatEntry(entry))
	t.refresh()
}

func (t *Transcript) refresh() {
	t.viewport.SetContent(strings.Join(t.lines, "\n"))
	t.viewport.GotoBottom()
}

func (t *Transcript) Clear() {
	t.lines = nil
	t.viewport.SetContent("")
}

func (t *Transcript) View() string {
	return t.viewport.View()
}

var (
	timestampStyle = lipgloss.NewStyle().Foreground(colors.Subtext0)
	txStyle        = lipgloss.NewStyle().Foreground(colors.Peach).Bold(true)
	rxStyle        = lipgloss.NewStyle().Foreground(colors.Sky).Bold(true)
	noteStyle      = lipgloss.NewStyle().Foreground(colors.Subtext1)
)

func formatEntry(entry TranscriptEntry) string {
	timestamp := timestampStyle.Render(fmt.Sprintf("[%s]", entry.Timestamp.Format("15:04:05.000")))

	if entry.Note != "" {
		return fmt.Sprintf("%s %s", timestamp, noteStyle.Render(entry.Note))
	}

	var indicator string
	if entry.IsTX {
		indicator = txStyle.Render("↗ TX")
	} else {
		indicator = rxStyle.Render("↙ RX")
	}

	if !entry.IsTX && len(entry.Data) == 0 {
		return fmt.Sprintf("%s %s %s", timestamp, indicator, noteStyle.Render("(timeout, no bytes)"))
	}

	return fmt.Sprintf("%s %s HEX: % X  ASCII: %s", timestamp, indicator, entry.Data, printable(entry.Data))
}

// printable replaces non-printable bytes with dots so wrong-rate garbage
// cannot smear control sequences over the terminal
func printable(data []byte) string {
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
