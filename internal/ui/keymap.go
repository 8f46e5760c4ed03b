package ui

import tea "github.com/charmbracelet/bubbletea"

type KeyMap struct {
	Open        tea.Key
	Search      tea.Key
	Filter      tea.Key
	ClearFilter tea.Key
	Upload      tea.Key
	Download    tea.Key
	Delete      tea.Key
	Refresh     tea.Key
	Export      tea.Key
	Explain     tea.Key
	Copy        tea.Key
	FocusInput  tea.Key
	Top         tea.Key
	Bottom      tea.Key
	AppLogs     tea.Key
	Logout      tea.Key
	Help        tea.Key
	Quit        tea.Key
	Confirm     tea.Key
	Decline     tea.Key
	ToggleAuth  tea.Key
	Submit      tea.Key
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Open:        tea.Key{Type: tea.KeyEnter},
		Search:      tea.Key{Type: tea.KeyRunes, Runes: []rune{'/'}},
		Filter:      tea.Key{Type: tea.KeyRunes, Runes: []rune{'f'}},
		ClearFilter: tea.Key{Type: tea.KeyRunes, Runes: []rune{'F'}},
		Upload:      tea.Key{Type: tea.KeyRunes, Runes: []rune{'u'}},
		Download:    tea.Key{Type: tea.KeyRunes, Runes: []rune{'d'}},
		Delete:      tea.Key{Type: tea.KeyRunes, Runes: []rune{'x'}},
		Refresh:     tea.Key{Type: tea.KeyRunes, Runes: []rune{'r'}},
		Export:      tea.Key{Type: tea.KeyRunes, Runes: []rune{'e'}},
		Explain:     tea.Key{Type: tea.KeyRunes, Runes: []rune{'i'}},
		Copy:        tea.Key{Type: tea.KeyRunes, Runes: []rune{'c'}},
		FocusInput:  tea.Key{Type: tea.KeyTab},
		Top:         tea.Key{Type: tea.KeyRunes, Runes: []rune{'g'}},
		Bottom:      tea.Key{Type: tea.KeyRunes, Runes: []rune{'G'}},
		AppLogs:     tea.Key{Type: tea.KeyRunes, Runes: []rune{'L'}},
		Logout:      tea.Key{Type: tea.KeyRunes, Runes: []rune{'O'}},
		Help:        tea.Key{Type: tea.KeyRunes, Runes: []rune{'?'}},
		Quit:        tea.Key{Type: tea.KeyRunes, Runes: []rune{'q'}},
		Confirm:     tea.Key{Type: tea.KeyRunes, Runes: []rune{'y'}},
		Decline:     tea.Key{Type: tea.KeyRunes, Runes: []rune{'n'}},
		ToggleAuth:  tea.Key{Type: tea.KeyCtrlR},
		Submit:      tea.Key{Type: tea.KeyCtrlS},
	}
}

func keyMatches(msg tea.KeyMsg, k tea.Key) bool {
	if k.Type != tea.KeyRunes {
		return msg.Type == k.Type
	}
	if len(k.Runes) > 0 {
		return msg.String() == string(k.Runes)
	}
	return false
}
