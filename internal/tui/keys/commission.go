package keys

import "github.com/charmbracelet/bubbles/key"

// CommissionKeys are the bindings for the commissioning wizard
type CommissionKeys struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Edit   key.Binding
	Retry  key.Binding
	Skip   key.Binding
	Next   key.Binding
	Manual key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func NewCommissionKeys() CommissionKeys {
	return CommissionKeys{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select/confirm"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit configuration"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry step"),
		),
		Skip: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "skip step"),
		),
		Next: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next module"),
		),
		Manual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "manual baud rate"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
	}
}

func (k CommissionKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.Edit, k.Next, k.Help, k.Quit}
}

func (k CommissionKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter, k.Edit},
		{k.Retry, k.Skip, k.Manual, k.Next},
		{k.Help, k.Quit},
	}
}
