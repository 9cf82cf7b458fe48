package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Submit       key.Binding
	Focus        key.Binding
	Back         key.Binding
	Chat         key.Binding
	Send         key.Binding
	Requirements key.Binding
	Plan         key.Binding
	Code         key.Binding
	PrevTab      key.Binding
	NextTab      key.Binding
	Prototype    key.Binding
	Preview      key.Binding
	Open         key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "submit brief"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab", "b"),
			key.WithHelp("tab", "edit brief"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Chat: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "chat"),
		),
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Requirements: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "requirements"),
		),
		Plan: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "plan"),
		),
		Code: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "code"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev file"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next file"),
		),
		Prototype: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "generate prototype"),
		),
		Preview: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "toggle preview"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open in browser"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Submit, k.Chat, k.Prototype, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Focus, k.Submit, k.Back},
		{k.Requirements, k.Plan, k.Code, k.PrevTab, k.NextTab},
		{k.Prototype, k.Preview, k.Open},
		{k.Chat, k.Send, k.Help, k.Quit},
	}
}
