package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	hc05 "github.com/allbin/go-hc05"
	"github.com/allbin/go-hc05/internal/tui/components"
	"github.com/allbin/go-hc05/internal/tui/keys"
	"github.com/allbin/go-hc05/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// phase is where the wizard currently is. The flow per module is
// port select → probe → query → review, with edit/apply loops off review and
// a manual-baud detour when the probe exhausts its candidates.
type phase int

const (
	phasePortSelect phase = iota
	phaseProbing
	phaseProbeFailed
	phaseManualBaud
	phaseQuerying
	phaseReview
	phaseEditing
	phaseApplying
)

// Messages pushed by background workers through the events channel.
type (
	portsLoadedMsg struct {
		ports []hc05.Port
		err   error
	}
	wireMsg struct {
		tx   bool
		data []byte
	}
	probeDoneMsg struct {
		session *hc05.Session
		report  *hc05.Report
		err     error
	}
	stepDoneMsg struct {
		result hc05.StepResult
		value  string
	}
	queryDoneMsg struct {
		config  *hc05.ModuleConfig
		results []hc05.StepResult
	}
	applyDoneMsg struct {
		config  *hc05.ModuleConfig
		results []hc05.StepResult
	}
	resolutionRequestMsg struct {
		ctx hc05.StepContext
	}
)

// Settings carries the operator-tunable knobs from flags and config file.
type Settings struct {
	Candidates   []int
	MaxAttempts  int
	ProbeTimeout time.Duration
	SettleDelay  time.Duration
}

// CommissionModel is the interactive commissioning wizard. Protocol work runs
// in background goroutines that report through the events channel; the model
// itself only reacts to messages, so all state mutation happens in Update.
type CommissionModel struct {
	settings Settings
	keys     keys.CommissionKeys
	help     help.Model

	transcript *components.Transcript
	statusBar  *components.StatusBar
	form       *components.FieldForm
	baudInput  textinput.Model

	phase   phase
	ports   []hc05.Port
	cursor  int
	session *hc05.Session
	config  *hc05.ModuleConfig

	// lastApplied seeds the edit form for the next module so a batch of
	// identical modules only needs the values typed once.
	lastApplied *hc05.ModuleConfig

	// events carries worker messages into Update. Buffered so wire traces
	// fired under the channel lock never stall on the UI.
	events chan tea.Msg

	// answers feeds operator retry/skip decisions back to a worker blocked
	// in its resolver.
	answers chan hc05.Resolution
	prompt  *hc05.StepContext

	width  int
	height int
	status string

	unreachable bool
	aborted     bool
}

func NewCommissionModel(settings Settings) *CommissionModel {
	baudInput := textinput.New()
	baudInput.Placeholder = "e.g. 57600"
	baudInput.CharLimit = 8
	baudInput.Width = 12

	return &CommissionModel{
		settings:   settings,
		keys:       keys.NewCommissionKeys(),
		help:       help.New(),
		transcript: components.NewTranscript(80, 10),
		statusBar:  components.NewStatusBar(80),
		form:       components.NewFieldForm(),
		baudInput:  baudInput,
		phase:      phasePortSelect,
		events:     make(chan tea.Msg, 64),
		answers:    make(chan hc05.Resolution),
	}
}

// ExitCode maps how the wizard ended onto the process exit status.
func (m *CommissionModel) ExitCode() int {
	switch {
	case m.unreachable:
		return 3
	case m.aborted:
		return 2
	default:
		return 0
	}
}

func (m *CommissionModel) Init() tea.Cmd {
	return tea.Batch(m.loadPorts, m.waitForEvent)
}

// waitForEvent relays one worker message into the bubbletea loop. Update
// re-issues it after every event so the pipe stays open.
func (m *CommissionModel) waitForEvent() tea.Msg {
	return <-m.events
}

func (m *CommissionModel) loadPorts() tea.Msg {
	ports, err := hc05.ListPorts()
	return portsLoadedMsg{ports: ports, err: err}
}

// trace is installed on every channel so the transcript shows the raw wire
// exchange. It runs on worker goroutines.
func (m *CommissionModel) trace(tx bool, data []byte) {
	copied := append([]byte(nil), data...)
	m.events <- wireMsg{tx: tx, data: copied}
}

func (m *CommissionModel) stepPolicy() hc05.Policy {
	return hc05.Policy{
		MaxAttempts: m.settings.MaxAttempts,
		Resolver: hc05.ResolverFunc(func(ctx hc05.StepContext) hc05.Resolution {
			m.events <- resolutionRequestMsg{ctx: ctx}
			return <-m.answers
		}),
	}
}

func (m *CommissionModel) newProber(candidates []int) *hc05.Prober {
	p := hc05.NewProber()
	p.Candidates = candidates
	if m.settings.ProbeTimeout > 0 {
		p.ProbeTimeout = m.settings.ProbeTimeout
	}
	p.SettleDelay = m.settings.SettleDelay
	p.Trace = m.trace
	return p
}

// startProbe launches the baud probe worker for the selected port.
func (m *CommissionModel) startProbe(path string, candidates []int) {
	m.phase = phaseProbing
	m.statusBar.SetPort(path)
	m.statusBar.SetStep("probing")
	m.statusBar.SetState(hc05.StateDisconnected)
	m.status = fmt.Sprintf("Probing %s...", path)

	prober := m.newProber(candidates)
	go func() {
		session, report, err := prober.Probe(path)
		m.events <- probeDoneMsg{session: session, report: report, err: err}
	}()
}

// startQuery launches the worker that reads every field under the retry
// policy. Skipped fields stay absent in the resulting configuration.
func (m *CommissionModel) startQuery() {
	m.phase = phaseQuerying
	m.statusBar.SetStep("querying")
	m.status = "Reading module configuration..."

	session := m.session
	policy := m.stepPolicy()
	go func() {
		config := hc05.NewModuleConfig()
		var results []hc05.StepResult
		for _, field := range hc05.Fields() {
			f := field
			var value string
			result := policy.Run("query "+f.String(), func() error {
				v, err := session.Query(f)
				if err != nil {
					return err
				}
				value = v
				return nil
			})
			if result.Outcome == hc05.OutcomeSuccess {
				config.Set(f, value)
			}
			results = append(results, result)
			m.events <- stepDoneMsg{result: result, value: value}
		}
		m.events <- queryDoneMsg{config: config, results: results}
	}()
}

// startApply launches the worker that writes the edited values and verifies
// each by reading it back.
func (m *CommissionModel) startApply(desired *hc05.ModuleConfig) {
	m.phase = phaseApplying
	m.statusBar.SetStep("applying")
	m.status = "Writing configuration..."

	session := m.session
	current := m.config
	policy := m.stepPolicy()
	go func() {
		applied := hc05.NewModuleConfig()
		for _, f := range current.Present() {
			if v, ok := current.Value(f); ok {
				applied.Set(f, v)
			}
		}

		var results []hc05.StepResult
		for _, field := range desired.Present() {
			f := field
			value, _ := desired.Value(f)
			if have, ok := current.Value(f); ok && have == value {
				continue
			}
			result := policy.Run("set "+f.String(), func() error {
				if err := session.Set(f, value); err != nil {
					return err
				}
				// Read-back verification; the firmware may normalize
				// the stored value.
				stored, err := session.Query(f)
				if err != nil {
					return err
				}
				value = stored
				return nil
			})
			if result.Outcome == hc05.OutcomeSuccess {
				applied.Set(f, value)
			}
			results = append(results, result)
			m.events <- stepDoneMsg{result: result, value: value}
		}
		m.events <- applyDoneMsg{config: applied, results: results}
	}()
}

// closeSession drops the current session, if any.
func (m *CommissionModel) closeSession() {
	if m.session != nil {
		_ = m.session.Close()
		m.session = nil
	}
	m.statusBar.SetState(hc05.StateDisconnected)
	m.statusBar.SetBaudRate(0)
}

// resetForNextModule returns the wizard to port selection with the transcript
// cleared, keeping lastApplied for the next edit pass.
func (m *CommissionModel) resetForNextModule() tea.Cmd {
	m.closeSession()
	m.config = nil
	m.transcript.Clear()
	m.phase = phasePortSelect
	m.statusBar.SetPort("")
	m.statusBar.SetStep("select port")
	m.status = "Select a port for the next module"
	return m.loadPorts
}

func (m *CommissionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.SetWidth(msg.Width)
		m.help.Width = msg.Width
		transcriptHeight := msg.Height - 12
		if transcriptHeight < 3 {
			transcriptHeight = 3
		}
		m.transcript.SetSize(msg.Width-2, transcriptHeight)
		return m, nil

	case portsLoadedMsg:
		if msg.err != nil {
			m.status = styles.ErrorStyle.Render(fmt.Sprintf("Port enumeration failed: %v", msg.err))
			return m, nil
		}
		m.ports = msg.ports
		if m.cursor >= len(m.ports) {
			m.cursor = 0
		}
		if len(m.ports) == 0 {
			m.status = "No serial ports found (press enter to rescan)"
		} else {
			m.status = "Select the port the module is connected to"
		}
		return m, nil

	case wireMsg:
		if msg.tx {
			m.transcript.AddTX(msg.data)
		} else {
			m.transcript.AddRX(msg.data)
		}
		return m, m.waitForEvent

	case resolutionRequestMsg:
		ctx := msg.ctx
		m.prompt = &ctx
		m.status = styles.StatusWorkingStyle.Render(
			fmt.Sprintf("%s failed after %d attempt(s): %v — [r]etry / [s]kip", ctx.Step, ctx.Attempts, ctx.LastErr))
		return m, m.waitForEvent

	case probeDoneMsg:
		return m.handleProbeDone(msg)

	case stepDoneMsg:
		label := styles.OutcomeStyle(msg.result.Outcome).Render(msg.result.Outcome.String())
		note := fmt.Sprintf("%s: %s", msg.result.Step, label)
		if msg.result.Outcome == hc05.OutcomeSuccess && msg.value != "" {
			note = fmt.Sprintf("%s: %s (%s)", msg.result.Step, label, msg.value)
		}
		m.transcript.AddNote(note)
		return m, m.waitForEvent

	case queryDoneMsg:
		m.config = msg.config
		m.phase = phaseReview
		m.statusBar.SetStep("review")
		m.status = "Review configuration — [e]dit, [n]ext module, [q]uit"
		return m, m.waitForEvent

	case applyDoneMsg:
		m.config = msg.config
		m.lastApplied = cloneConfig(m.form.Values())
		m.phase = phaseReview
		m.statusBar.SetStep("review")
		if anyFailed(msg.results) {
			m.status = styles.ErrorStyle.Render("Some settings were not applied — review below")
		} else {
			m.status = styles.StatusOKStyle.Render("Configuration applied and verified")
		}
		return m, m.waitForEvent

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.phase == phaseEditing {
		return m, m.form.Update(msg)
	}
	if m.phase == phaseManualBaud {
		var cmd tea.Cmd
		m.baudInput, cmd = m.baudInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *CommissionModel) handleProbeDone(msg probeDoneMsg) (tea.Model, tea.Cmd) {
	for _, a := range msg.report.Attempts {
		switch {
		case a.Err != nil:
			m.transcript.AddNote(fmt.Sprintf("probe %d baud: %v", a.BaudRate, a.Err))
		default:
			m.transcript.AddNote(fmt.Sprintf("probe %d baud: %s", a.BaudRate, a.Outcome))
		}
	}

	if msg.err != nil {
		m.phase = phaseProbeFailed
		m.statusBar.SetStep("probe failed")
		if errors.Is(msg.err, hc05.ErrProbeExhausted) {
			m.status = styles.ErrorStyle.Render("No rate answered — [r]etry, [m]anual baud, [q]uit")
		} else {
			m.status = styles.ErrorStyle.Render(fmt.Sprintf("%v — [r]etry, [m]anual baud, [q]uit", msg.err))
		}
		return m, m.waitForEvent
	}

	m.session = msg.session
	m.statusBar.SetBaudRate(msg.session.BaudRate())
	m.statusBar.SetState(msg.session.State())
	m.transcript.AddNote(fmt.Sprintf("AT mode confirmed at %d baud", msg.report.BaudRate))
	m.startQuery()
	return m, m.waitForEvent
}

func (m *CommissionModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keymap := m.keys

	// A pending retry/skip prompt takes over the r/s keys regardless of
	// phase; the worker is blocked until it gets an answer.
	if m.prompt != nil {
		switch {
		case matches(msg, keymap.Retry):
			m.prompt = nil
			m.status = "Retrying..."
			m.answers <- hc05.ResolutionRetry
			return m, nil
		case matches(msg, keymap.Skip):
			m.prompt = nil
			m.status = "Skipped"
			m.answers <- hc05.ResolutionSkip
			return m, nil
		case matches(msg, keymap.Quit):
			return m.quit()
		}
		return m, nil
	}

	if matches(msg, keymap.Help) {
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	switch m.phase {
	case phasePortSelect:
		switch {
		case matches(msg, keymap.Quit):
			return m.quit()
		case matches(msg, keymap.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case matches(msg, keymap.Down):
			if m.cursor < len(m.ports)-1 {
				m.cursor++
			}
		case matches(msg, keymap.Enter):
			if len(m.ports) == 0 {
				return m, m.loadPorts
			}
			m.startProbe(m.ports[m.cursor].Path, m.settings.Candidates)
		}
		return m, nil

	case phaseProbeFailed:
		switch {
		case matches(msg, keymap.Retry):
			m.startProbe(m.statusBarPort(), m.settings.Candidates)
		case matches(msg, keymap.Manual):
			m.phase = phaseManualBaud
			m.baudInput.SetValue("")
			m.baudInput.Focus()
			m.status = fmt.Sprintf("Enter a baud rate to try (supported: %s)", supportedRatesList())
		case matches(msg, keymap.Quit):
			m.unreachable = true
			return m.quit()
		}
		return m, nil

	case phaseManualBaud:
		if msg.Type == tea.KeyEnter {
			rate, err := strconv.Atoi(strings.TrimSpace(m.baudInput.Value()))
			if err != nil || !isSupported(rate) {
				m.status = styles.ErrorStyle.Render(
					fmt.Sprintf("Unsupported rate %q (supported: %s)", m.baudInput.Value(), supportedRatesList()))
				return m, nil
			}
			m.baudInput.Blur()
			m.startProbe(m.statusBarPort(), []int{rate})
			return m, nil
		}
		if matches(msg, keymap.Quit) && msg.Type == tea.KeyCtrlC {
			m.unreachable = true
			return m.quit()
		}
		var cmd tea.Cmd
		m.baudInput, cmd = m.baudInput.Update(msg)
		return m, cmd

	case phaseReview:
		switch {
		case matches(msg, keymap.Edit):
			m.phase = phaseEditing
			m.statusBar.SetStep("editing")
			m.form.Start(m.editSeed())
			m.status = "Enter the desired value for each field"
		case matches(msg, keymap.Next):
			return m, m.resetForNextModule()
		case matches(msg, keymap.Quit):
			return m.quit()
		}
		return m, nil

	case phaseEditing:
		if matches(msg, keymap.Quit) && msg.Type == tea.KeyCtrlC {
			return m.quit()
		}
		cmd := m.form.Update(msg)
		if m.form.Done() {
			m.startApply(m.form.Values())
		}
		return m, cmd

	default:
		// Probe, query and apply phases only take prompt keys and quit.
		if matches(msg, keymap.Quit) {
			m.aborted = true
			return m.quit()
		}
		return m, nil
	}
}

// editSeed picks the values the edit form starts from: the last module's
// applied values when commissioning a batch, otherwise what this module
// reported.
func (m *CommissionModel) editSeed() *hc05.ModuleConfig {
	if m.lastApplied != nil && m.lastApplied.Len() > 0 {
		return m.lastApplied
	}
	if m.config != nil {
		return m.config
	}
	return hc05.NewModuleConfig()
}

func (m *CommissionModel) statusBarPort() string {
	if m.session != nil {
		return m.session.Path()
	}
	if len(m.ports) > 0 && m.cursor < len(m.ports) {
		return m.ports[m.cursor].Path
	}
	return ""
}

func (m *CommissionModel) quit() (tea.Model, tea.Cmd) {
	m.closeSession()
	return m, tea.Quit
}

func (m *CommissionModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("HC-05 Commissioning"))
	b.WriteString("\n\n")

	switch m.phase {
	case phasePortSelect:
		b.WriteString(m.viewPortSelect())
	case phaseManualBaud:
		b.WriteString(styles.InputStyle.Render(m.baudInput.View()))
		b.WriteString("\n")
	case phaseEditing:
		b.WriteString(m.form.View())
		b.WriteString("\n")
	case phaseReview:
		b.WriteString(m.viewReview())
	}

	b.WriteString("\n")
	b.WriteString(styles.ContentBorderStyle.Width(m.width).Render(m.transcript.View()))
	b.WriteString("\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(m.statusBar.View())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m *CommissionModel) viewPortSelect() string {
	if len(m.ports) == 0 {
		return styles.DimStyle.Render("No ports detected") + "\n"
	}
	var b strings.Builder
	for i, port := range m.ports {
		line := port.Label()
		if i == m.cursor {
			b.WriteString(styles.SelectedStyle.Render(" " + line + " "))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *CommissionModel) viewReview() string {
	if m.config == nil {
		return ""
	}
	var b strings.Builder
	for _, field := range hc05.Fields() {
		name := fmt.Sprintf("%-6s", field.String())
		if value, ok := m.config.Value(field); ok {
			b.WriteString(fmt.Sprintf("  %s %s\n", styles.InfoStyle.Render(name), value))
		} else {
			b.WriteString(fmt.Sprintf("  %s %s\n", styles.InfoStyle.Render(name), styles.StatusSkippedStyle.Render("skipped")))
		}
	}
	return b.String()
}

func matches(msg tea.KeyMsg, binding key.Binding) bool {
	return key.Matches(msg, binding)
}

func anyFailed(results []hc05.StepResult) bool {
	for _, r := range results {
		if r.Outcome != hc05.OutcomeSuccess {
			return true
		}
	}
	return false
}

func cloneConfig(src *hc05.ModuleConfig) *hc05.ModuleConfig {
	dst := hc05.NewModuleConfig()
	for _, f := range src.Present() {
		if v, ok := src.Value(f); ok {
			dst.Set(f, v)
		}
	}
	return dst
}

func isSupported(rate int) bool {
	for _, r := range hc05.SupportedBaudRates() {
		if r == rate {
			return true
		}
	}
	return false
}

func supportedRatesList() string {
	rates := hc05.SupportedBaudRates()
	parts := make([]string, len(rates))
	for i, r := range rates {
		parts[i] = strconv.Itoa(r)
	}
	return strings.Join(parts, ", ")
}
