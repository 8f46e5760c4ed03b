package ui

import "github.com/charmbracelet/lipgloss"

type Styles struct {
	Base        lipgloss.Style
	Status      lipgloss.Style
	Title       lipgloss.Style
	Help        lipgloss.Style
	Error       lipgloss.Style
	CardTitle   lipgloss.Style
	CardMeta    lipgloss.Style
	Selected    lipgloss.Style
	Pane        lipgloss.Style
	Placeholder lipgloss.Style
	Button      lipgloss.Style
	ButtonDel   lipgloss.Style
	PopupBox    lipgloss.Style
	PopupTitle  lipgloss.Style
	AuthBox     lipgloss.Style
}

func NewStyles(dark bool) Styles {
	s := Styles{}
	if dark {
		s.Base = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
		s.Status = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
		s.Title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
		s.Help = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
		s.CardMeta = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
		s.Selected = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
		s.Pane = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
		s.Placeholder = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241"))
		s.PopupBox = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("60")).Padding(1, 2)
		s.PopupTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
		s.AuthBox = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("60")).Padding(1, 3)
	} else {
		s.Base = lipgloss.NewStyle()
		s.Status = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		s.Title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("27"))
		s.Help = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		s.CardMeta = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		s.Selected = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("27"))
		s.Pane = lipgloss.NewStyle()
		s.Placeholder = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("8"))
		s.PopupBox = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("12")).Padding(1, 2)
		s.PopupTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("27"))
		s.AuthBox = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("12")).Padding(1, 3)
	}
	s.CardTitle = lipgloss.NewStyle().Bold(true)
	s.Error = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	s.Button = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	s.ButtonDel = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	return s
}
