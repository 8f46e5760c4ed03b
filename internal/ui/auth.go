package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"filedesk/internal/util/logx"
)

func newAuthInputs() (textinput.Model, textinput.Model) {
	u := textinput.New()
	u.Prompt = "username: "
	u.CharLimit = 128
	p := textinput.New()
	p.Prompt = "password: "
	p.CharLimit = 256
	p.EchoMode = textinput.EchoPassword
	p.EchoCharacter = '•'
	return u, p
}

// enterAuth switches to the auth screen with an optional notice.
func (m *Model) enterAuth(notice string) tea.Cmd {
	m.screen = screenAuth
	m.authBusy = false
	m.authMsg = notice
	m.password.SetValue("")
	m.authFocus = 0
	m.password.Blur()
	return m.username.Focus()
}

func (m *Model) authInputs() []*textinput.Model {
	return []*textinput.Model{&m.username, &m.password}
}

func (m *Model) updateAuth(msg tea.KeyMsg) tea.Cmd {
	if m.authBusy {
		return nil
	}
	switch {
	case msg.Type == tea.KeyCtrlC:
		return tea.Quit
	case keyMatches(msg, m.keymap.ToggleAuth):
		if m.authMode == authLogin {
			m.authMode = authRegister
		} else {
			m.authMode = authLogin
		}
		m.authMsg = ""
		return nil
	case msg.Type == tea.KeyTab, msg.Type == tea.KeyShiftTab, msg.Type == tea.KeyUp, msg.Type == tea.KeyDown:
		ins := m.authInputs()
		ins[m.authFocus].Blur()
		m.authFocus = (m.authFocus + 1) % len(ins)
		return ins[m.authFocus].Focus()
	case msg.Type == tea.KeyEnter:
		if m.authFocus == 0 {
			m.username.Blur()
			m.authFocus = 1
			return m.password.Focus()
		}
		return m.submitAuth()
	}
	var cmd tea.Cmd
	in := m.authInputs()[m.authFocus]
	*in, cmd = in.Update(msg)
	return cmd
}

func (m *Model) submitAuth() tea.Cmd {
	user := strings.TrimSpace(m.username.Value())
	pass := m.password.Value()
	if user == "" || pass == "" {
		m.authMsg = "username and password are required"
		return nil
	}
	m.authBusy = true
	m.authMsg = ""
	m.busy++
	if m.authMode == authRegister {
		return tea.Batch(m.registerCmd(user, pass), m.spin.Tick)
	}
	return tea.Batch(m.loginCmd(user, pass), m.spin.Tick)
}

func (m *Model) onAuthDone(msg authDoneMsg) tea.Cmd {
	if m.busy > 0 {
		m.busy--
	}
	m.authBusy = false
	if msg.err != nil {
		d := describeErr(msg.err)
		logx.Warnf("ui: %s failed: %s", authVerb(msg.mode), d)
		m.authMsg = d
		m.password.SetValue("")
		return nil
	}
	if msg.mode == authRegister {
		m.authMode = authLogin
		m.password.SetValue("")
		m.authMsg = "registered " + msg.user.Username + ", please log in"
		return nil
	}
	logx.Infof("ui: logged in as %s", msg.user.Username)
	m.password.SetValue("")
	m.username.Blur()
	m.password.Blur()
	m.screen = screenCatalog
	m.lastMsg = "logged in as " + msg.user.Username
	return m.fetchCatalogCmd()
}

func authVerb(mode authMode) string {
	if mode == authRegister {
		return "register"
	}
	return "login"
}

func (m *Model) renderAuth() string {
	st := m.styles
	heading := "Log in"
	toggle := "[ctrl+r]=create an account"
	if m.authMode == authRegister {
		heading = "Register"
		toggle = "[ctrl+r]=back to log in"
	}
	lines := []string{
		st.Title.Render("filedesk") + "  " + st.Status.Render(m.cfg.BaseURL),
		"",
		st.PopupTitle.Render(heading),
		m.username.View(),
		m.password.View(),
		"",
	}
	switch {
	case m.authBusy:
		lines = append(lines, m.spin.View()+" "+authVerb(m.authMode)+"…")
	case m.authMsg != "":
		lines = append(lines, st.Error.Render(m.authMsg))
	default:
		lines = append(lines, "")
	}
	lines = append(lines, st.Help.Render("[enter]=next/submit  [tab]=switch field  "+toggle+"  [ctrl+c]=quit"))
	box := st.AuthBox.Render(strings.Join(lines, "\n"))
	if m.termWidth <= 0 || m.termHeight <= 0 {
		return box
	}
	return lipgloss.Place(m.termWidth, m.termHeight, lipgloss.Center, lipgloss.Center, box)
}
