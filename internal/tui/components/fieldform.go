package components

import (
	"fmt"
	"strings"

	hc05 "github.com/allbin/go-hc05"
	"github.com/allbin/go-hc05/internal/tui/styles"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// FieldForm walks the operator through every module field in order. Each
// field is pre-filled with the value read from the module (or the factory
// default when the read was skipped); pressing enter validates and moves on,
// an empty input keeps the pre-filled value.
type FieldForm struct {
	input      textinput.Model
	fields     []hc05.Field
	index      int
	values     *hc05.ModuleConfig
	validation string
	done       bool
}

func NewFieldForm() *FieldForm {
	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 40
	return &FieldForm{input: ti}
}

// Start begins a pass over all fields, seeding from current module values.
func (f *FieldForm) Start(current *hc05.ModuleConfig) {
	f.fields = hc05.Fields()
	f.index = 0
	f.values = hc05.NewModuleConfig()
	f.validation = ""
	f.done = false
	for _, field := range f.fields {
		if v, ok := current.Value(field); ok {
			f.values.Set(field, v)
		}
	}
	f.seed()
	f.input.Focus()
}

func (f *FieldForm) seed() {
	f.input.SetValue(f.seedValue(f.fields[f.index]))
	f.input.CursorEnd()
}

func (f *FieldForm) seedValue(field hc05.Field) string {
	if v, ok := f.values.Value(field); ok {
		return v
	}
	return hc05.Default(field)
}

// Done reports whether every field has been accepted.
func (f *FieldForm) Done() bool { return f.done }

// Values returns the accepted configuration. Only meaningful once Done.
func (f *FieldForm) Values() *hc05.ModuleConfig { return f.values }

func (f *FieldForm) Update(msg tea.Msg) tea.Cmd {
	if f.done {
		return nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter {
		field := f.fields[f.index]
		value := strings.TrimSpace(f.input.Value())
		if value == "" {
			value = f.seedValue(field)
		}
		if err := hc05.Validate(field, value); err != nil {
			f.validation = err.Error()
			return nil
		}
		f.values.Set(field, value)
		f.validation = ""
		f.index++
		if f.index >= len(f.fields) {
			f.done = true
			f.input.Blur()
			return nil
		}
		f.seed()
		return nil
	}

	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return cmd
}

func (f *FieldForm) View() string {
	if f.done {
		return ""
	}

	field := f.fields[f.index]
	var b strings.Builder

	b.WriteString(styles.InfoStyle.Render(fmt.Sprintf("%s (%d/%d)", field.String(), f.index+1, len(f.fields))))
	b.WriteString("\n")
	b.WriteString(styles.DimStyle.Render(hc05.Describe(field)))
	b.WriteString("\n")
	b.WriteString(styles.DimStyle.Render(fmt.Sprintf("enter keeps %q", f.seedValue(field))))
	b.WriteString("\n\n")
	b.WriteString(styles.InputStyle.Render(f.input.View()))

	if f.validation != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorStyle.Render(f.validation))
	}

	return b.String()
}
