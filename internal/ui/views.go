package ui

import (
	"encoding/base64"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m *Model) View() string {
	var v string
	switch m.screen {
	case screenChecking:
		v = m.renderChecking()
	case screenAuth:
		v = m.renderAuth()
	default:
		v = m.renderMain()
	}
	if m.modalActive {
		v = overlay(m.styles.Status.Render(stripANSI(v)), m.renderModal())
	}
	return v
}

func (m *Model) renderChecking() string {
	msg := m.spin.View() + " checking session…"
	if m.termWidth <= 0 || m.termHeight <= 0 {
		return msg
	}
	return lipgloss.Place(m.termWidth, m.termHeight, lipgloss.Center, lipgloss.Center, msg)
}

func (m *Model) renderMain() string {
	st := m.styles
	title := st.Title.Render("filedesk")
	who := m.cfg.BaseURL
	header := title + "  " + st.Status.Render(who)

	var searchLine string
	switch m.inlineMode {
	case inlineSearch:
		searchLine = m.search.View()
	case inlineFilter:
		searchLine = m.exprInput.View() + st.Help.Render("  [Enter]=apply [Esc]=cancel")
	default:
		parts := []string{}
		if m.query != "" {
			parts = append(parts, fmt.Sprintf("search: %q", m.query))
		}
		if m.expr != nil && m.expr.String() != "" {
			parts = append(parts, "filter: "+m.expr.String())
		}
		if len(parts) == 0 {
			searchLine = st.Help.Render("[/]=search [f]=filter")
		} else {
			searchLine = st.Help.Render(strings.Join(parts, "  ") + "  [F]=clear filter")
		}
	}

	busy := ""
	if m.busy > 0 || m.loading {
		busy = " " + m.spin.View()
	}
	pos := 0
	if len(m.view) > 0 {
		pos = m.cursor + 1
	}
	hint := "  [?]=help [u]=upload [enter]=open [d]=download [x]=delete [q]=quit"
	status := fmt.Sprintf("file:%d/%d total:%d%s  %s%s", pos, len(m.view), len(m.all), hint, m.lastMsg, busy)
	if m.termWidth > 0 {
		status = truncateRunes(status, m.termWidth)
	}
	return strings.Join([]string{header, searchLine, m.list.View(), st.Status.Render(status)}, "\n")
}

func overlay(base, overlay string) string {
	bLines := strings.Split(base, "\n")
	oLines := strings.Split(overlay, "\n")
	maxLen := len(bLines)
	if len(oLines) > maxLen {
		maxLen = len(oLines)
	}
	for len(bLines) < maxLen {
		bLines = append(bLines, "")
	}
	for len(oLines) < maxLen {
		oLines = append(oLines, "")
	}
	out := make([]string, maxLen)
	for i := 0; i < maxLen; i++ {
		// whitespace-only overlay lines are transparent
		if strings.TrimSpace(oLines[i]) != "" {
			out[i] = oLines[i]
		} else {
			out[i] = bLines[i]
		}
	}
	return strings.Join(out, "\n")
}

// copyToClipboard tries to copy text using OSC52 (works in many terminals).
func copyToClipboard(s string) {
	s = stripANSI(s)
	enc := base64.StdEncoding.EncodeToString([]byte(s))
	payload := fmt.Sprintf("\x1b]52;c;%s\x07", enc)
	// write to /dev/tty to avoid clobbering the app's stdout buffer
	if f, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0); err == nil {
		defer f.Close()
		_, _ = f.WriteString(payload)
		return
	}
	fmt.Fprint(os.Stdout, payload)
}

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

func stripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

func truncateRunes(s string, w int) string {
	if w <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= w {
		return s
	}
	if w == 1 {
		return "…"
	}
	return string(rs[:w-1]) + "…"
}
