package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"filedesk/internal/analysis"
	"filedesk/internal/catalog"
	"filedesk/internal/model"
	"filedesk/internal/util/logx"
)

// fileModal is the detail view of one record. It owns its input and every
// result addressed to it carries its id.
type fileModal struct {
	id             int
	record         model.FileRecord
	previewLoading bool
	preview        model.AnalysisResult
	columns        textinput.Model
	analyzeSeq     int
	analyzing      bool
	result         *model.AnalysisResult
	explaining     bool
	explain        string
}

type uploadForm struct {
	id     int
	inputs []textinput.Model
	focus  int
	busy   bool
	err    string
}

// closeModal tears down whatever modal is open. Results that arrive later
// for it no longer find a target and are dropped.
func (m *Model) closeModal() {
	if m.file != nil {
		m.file.columns.Blur()
		logx.Debugf("ui: modal %d closed", m.file.id)
	}
	m.modalActive = false
	m.modalKind = modalNone
	m.modalTitle = ""
	m.modalBody = ""
	m.file = nil
	m.confirm = nil
	m.upload = nil
}

func (m *Model) openModal(kind modalKind, title string) {
	if m.modalActive {
		m.closeModal()
	}
	m.modalSeq++
	m.modalActive = true
	m.modalKind = kind
	m.modalTitle = title
}

func (m *Model) openFileModal(rec model.FileRecord) tea.Cmd {
	m.openModal(modalFile, rec.DisplayTitle())
	fm := &fileModal{id: m.modalSeq, record: rec}
	m.file = fm
	var cmd tea.Cmd
	if rec.FileType == model.FileTypeCSV {
		fm.columns = textinput.New()
		fm.columns.Placeholder = "e.g. 1,3 or price,qty (empty = all)"
		fm.columns.Prompt = "columns: "
		fm.columns.CharLimit = 256
		fm.previewLoading = true
		cmd = m.modalAnalysisCmd(fm.id, 0, rec.Filename, "", true)
	}
	m.resizeModal()
	return cmd
}

func (m *Model) onModalAnalysis(msg modalAnalysisMsg) {
	fm := m.file
	if fm == nil || fm.id != msg.modalID {
		return
	}
	if msg.preview {
		fm.previewLoading = false
		fm.preview = msg.result
	} else {
		if msg.seq != fm.analyzeSeq {
			return
		}
		fm.analyzing = false
		res := msg.result
		fm.result = &res
	}
	m.refreshFileModal()
}

func (m *Model) analyze() tea.Cmd {
	fm := m.file
	if fm == nil || fm.record.FileType != model.FileTypeCSV {
		return nil
	}
	fm.analyzeSeq++
	fm.analyzing = true
	fm.explain = ""
	cols := strings.TrimSpace(fm.columns.Value())
	m.refreshFileModal()
	return m.modalAnalysisCmd(fm.id, fm.analyzeSeq, fm.record.Filename, cols, false)
}

func (m *Model) explain() tea.Cmd {
	fm := m.file
	if fm == nil || fm.result == nil || fm.explaining {
		return nil
	}
	if m.cfg.Offline || !m.svc.AI.Enabled() {
		m.lastMsg = "explain unavailable (offline or OPENAI_API_KEY not set)"
		return nil
	}
	fm.explaining = true
	m.busy++
	m.refreshFileModal()
	return tea.Batch(m.explainCmd(fm.id, fm.record, *fm.result), m.spin.Tick)
}

func (m *Model) onExplain(msg explainDoneMsg) {
	if m.busy > 0 {
		m.busy--
	}
	fm := m.file
	if fm == nil || fm.id != msg.modalID {
		return
	}
	fm.explaining = false
	if msg.err != nil {
		logx.Warnf("ui: explain failed: %v", msg.err)
		fm.explain = "explanation failed: " + msg.err.Error()
	} else {
		fm.explain = msg.text
	}
	m.refreshFileModal()
}

func (m *Model) fileModalBody() string {
	fm := m.file
	st := m.styles
	r := fm.record
	desc := r.Description
	if strings.TrimSpace(desc) == "" {
		desc = noDescription
	}
	var b strings.Builder
	fmt.Fprintf(&b, "file: %s\ntype: %s\ndescription: %s\n", r.Filename, r.FileType, desc)
	switch r.FileType {
	case model.FileTypePhoto:
		b.WriteString("\n")
		b.WriteString(st.PopupTitle.Render("image"))
		b.WriteString("\n" + m.svc.Catalog.DownloadURL(r.Filename) + "\n")
	case model.FileTypeCSV:
		b.WriteString("\n")
		b.WriteString(st.PopupTitle.Render("preview"))
		b.WriteString("\n")
		switch {
		case fm.previewLoading:
			b.WriteString(st.Placeholder.Render(loadingPreview))
		case fm.preview.Unavailable:
			b.WriteString(st.Placeholder.Render("preview " + model.PlaceholderPreview))
		default:
			b.WriteString(fm.preview.Preview)
			fmt.Fprintf(&b, "\n(%d columns)", fm.preview.ColumnsTotal)
		}
		b.WriteString("\n\n")
		b.WriteString(st.PopupTitle.Render("analysis"))
		b.WriteString("\n")
		switch {
		case fm.analyzing:
			b.WriteString(st.Placeholder.Render("loading analysis…"))
		case fm.result != nil:
			b.WriteString(analysis.FormatTable(*fm.result))
		default:
			b.WriteString(st.Help.Render("pick columns and press enter"))
		}
		if fm.explaining || fm.explain != "" {
			b.WriteString("\n\n")
			b.WriteString(st.PopupTitle.Render("explanation"))
			b.WriteString("\n")
			if fm.explaining {
				b.WriteString(st.Placeholder.Render("asking OpenAI…"))
			} else {
				b.WriteString(fm.explain)
			}
		}
	}
	return b.String()
}

func (m *Model) refreshFileModal() {
	if m.file == nil {
		return
	}
	m.modalBody = m.fileModalBody()
	m.modalVP.SetContent(m.modalBody)
}

func (m *Model) updateFileModal(msg tea.KeyMsg) tea.Cmd {
	fm := m.file
	if fm.columns.Focused() {
		switch msg.Type {
		case tea.KeyEsc, tea.KeyTab:
			fm.columns.Blur()
			return nil
		case tea.KeyEnter:
			return m.analyze()
		}
		var cmd tea.Cmd
		fm.columns, cmd = fm.columns.Update(msg)
		return cmd
	}
	switch {
	case msg.Type == tea.KeyEsc:
		m.closeModal()
		return nil
	case keyMatches(msg, m.keymap.FocusInput), keyMatches(msg, tea.Key{Type: tea.KeyRunes, Runes: []rune{'a'}}):
		if fm.record.FileType == model.FileTypeCSV {
			return fm.columns.Focus()
		}
	case msg.Type == tea.KeyEnter:
		return m.analyze()
	case keyMatches(msg, m.keymap.Explain):
		return m.explain()
	case keyMatches(msg, m.keymap.Copy):
		copyToClipboard(m.modalBody)
		m.lastMsg = "copied"
	case keyMatches(msg, m.keymap.Download):
		return m.startDownload(fm.record)
	default:
		var cmd tea.Cmd
		m.modalVP, cmd = m.modalVP.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) openConfirmDelete(rec model.FileRecord) {
	m.openModal(modalConfirmDelete, "Delete file")
	r := rec
	m.confirm = &r
	m.modalBody = fmt.Sprintf("Delete %q (%s)?\n\nThis cannot be undone.", rec.DisplayTitle(), rec.Filename)
	m.resizeModal()
}

func (m *Model) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	switch {
	case keyMatches(msg, m.keymap.Confirm):
		target := m.confirm.Filename
		m.closeModal()
		m.busy++
		m.lastMsg = "deleting " + target + "…"
		return tea.Batch(m.deleteCmd(target), m.spin.Tick)
	case keyMatches(msg, m.keymap.Decline), msg.Type == tea.KeyEsc:
		m.closeModal()
		m.lastMsg = "delete cancelled"
	}
	return nil
}

func (m *Model) openUploadForm() tea.Cmd {
	m.openModal(modalUpload, "Upload file")
	labels := []struct{ prompt, placeholder string }{
		{"file:        ", "path to a local file"},
		{"title:       ", "defaults to the file name"},
		{"description: ", "optional"},
	}
	f := &uploadForm{id: m.modalSeq}
	for _, l := range labels {
		ti := textinput.New()
		ti.Prompt = l.prompt
		ti.Placeholder = l.placeholder
		ti.CharLimit = 1024
		f.inputs = append(f.inputs, ti)
	}
	m.upload = f
	m.resizeModal()
	return f.inputs[0].Focus()
}

func (m *Model) updateUploadForm(msg tea.KeyMsg) tea.Cmd {
	f := m.upload
	if f.busy {
		if msg.Type == tea.KeyEsc {
			m.closeModal()
		}
		return nil
	}
	switch msg.Type {
	case tea.KeyEsc:
		m.closeModal()
		return nil
	case tea.KeyTab, tea.KeyDown:
		return f.move(1)
	case tea.KeyShiftTab, tea.KeyUp:
		return f.move(-1)
	case tea.KeyEnter:
		if f.focus < len(f.inputs)-1 {
			return f.move(1)
		}
		return m.submitUpload()
	case tea.KeyCtrlS:
		return m.submitUpload()
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *uploadForm) move(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}

func (m *Model) submitUpload() tea.Cmd {
	f := m.upload
	req := catalog.UploadRequest{
		Path:        f.inputs[0].Value(),
		Title:       f.inputs[1].Value(),
		Description: f.inputs[2].Value(),
	}
	f.busy = true
	f.err = ""
	m.busy++
	return tea.Batch(m.uploadCmd(f.id, req), m.spin.Tick)
}

func (m *Model) uploadFormView() string {
	f := m.upload
	lines := make([]string, 0, len(f.inputs)+3)
	for _, in := range f.inputs {
		lines = append(lines, in.View())
	}
	lines = append(lines, "")
	switch {
	case f.busy:
		lines = append(lines, m.styles.Placeholder.Render("uploading…"))
	case f.err != "":
		lines = append(lines, m.styles.Error.Render(f.err))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) openHelpModal() {
	m.openModal(modalHelp, "Help")
	m.helpItems = m.buildHelpItems()
	m.helpSel = 0
	m.modalBody = m.renderHelp()
	m.resizeModal()
}

func (m *Model) openAppLogsModal() {
	m.openModal(modalLogs, "Application Logs")
	m.modalBody = logx.Dump()
	m.resizeModal()
	m.modalVP.GotoBottom()
}

func (m *Model) resizeModal() {
	w := m.termWidth - 6
	h := m.termHeight - 6
	if w < 20 {
		w = 20
	}
	if h < 5 {
		h = 5
	}
	// room for title, optional input line and hint line
	vh := h - 6
	if vh < 3 {
		vh = 3
	}
	m.modalVP = viewport.New(w-6, vh)
	if m.file != nil {
		m.file.columns.Width = w - 20
		m.modalBody = m.fileModalBody()
	}
	m.modalVP.SetContent(m.modalBody)
}

func (m *Model) renderModal() string {
	content := ""
	switch m.modalKind {
	case modalHelp:
		m.modalVP.SetContent(m.renderHelp())
		content = m.modalVP.View() + "\n[esc]=close  [enter]=run"
	case modalFile:
		hint := "[esc]=close  [d]=download  [c]=copy  [↑/↓]=scroll"
		if m.file.record.FileType == model.FileTypeCSV {
			hint = "[tab]=columns  [enter]=analyze  [i]=explain  " + hint
			content = m.file.columns.View() + "\n" + m.modalVP.View() + "\n" + hint
		} else {
			content = m.modalVP.View() + "\n" + hint
		}
	case modalConfirmDelete:
		content = m.modalBody + "\n\n[y]=delete  [n/esc]=cancel"
	case modalUpload:
		content = m.uploadFormView() + "\n[tab]=next field  [enter]=next/submit  [ctrl+s]=submit  [esc]=cancel"
	default:
		content = m.modalVP.View() + "\n[esc/enter]=close  [c]=copy"
	}
	boxW := m.termWidth - 6
	if boxW < 20 {
		boxW = 20
	}
	title := m.styles.PopupTitle.Render(m.modalTitle)
	body := m.styles.PopupBox.Width(boxW).Render(title + "\n" + content)
	return lipgloss.Place(m.termWidth, m.termHeight, lipgloss.Center, lipgloss.Center, body)
}

func (m *Model) renderHelp() string {
	if len(m.helpItems) == 0 {
		m.helpItems = m.buildHelpItems()
	}
	if m.helpSel < 0 {
		m.helpSel = 0
	}
	if m.helpSel >= len(m.helpItems) {
		m.helpSel = len(m.helpItems) - 1
	}
	lines := []string{"Shortcuts:"}
	currentGroup := ""
	lineIndexOfSel := 0
	for i, it := range m.helpItems {
		if it.group != currentGroup {
			currentGroup = it.group
			lines = append(lines, "", currentGroup+":")
		}
		prefix := "  "
		if i == m.helpSel {
			prefix = "> "
			lineIndexOfSel = len(lines)
		}
		lines = append(lines, fmt.Sprintf("%s[%s] %s", prefix, keyLabel(it.key), it.text))
	}
	// Keep selection visible
	if m.modalVP.Height > 0 {
		top := m.modalVP.YOffset
		bottom := top + m.modalVP.Height - 1
		if lineIndexOfSel <= top {
			m.modalVP.SetYOffset(lineIndexOfSel - 1)
		} else if lineIndexOfSel >= bottom {
			m.modalVP.SetYOffset(lineIndexOfSel - m.modalVP.Height + 2)
		}
	}
	return m.styles.Help.Render(strings.Join(lines, "\n"))
}

func (m *Model) buildHelpItems() []helpItem {
	km := m.keymap
	return []helpItem{
		{group: "Navigation", text: "Previous file", key: tea.Key{Type: tea.KeyUp}},
		{group: "Navigation", text: "Next file", key: tea.Key{Type: tea.KeyDown}},
		{group: "Navigation", text: "First file", key: km.Top},
		{group: "Navigation", text: "Last file", key: km.Bottom},

		{group: "Search", text: "Search title or filename", key: km.Search},
		{group: "Search", text: "Filter expression", key: km.Filter},
		{group: "Search", text: "Clear filter", key: km.ClearFilter},

		{group: "Files", text: "Open details", key: km.Open},
		{group: "Files", text: "Upload", key: km.Upload},
		{group: "Files", text: "Download", key: km.Download},
		{group: "Files", text: "Delete", key: km.Delete},
		{group: "Files", text: "Refresh", key: km.Refresh},
		{group: "Files", text: "Export view", key: km.Export},

		{group: "Control", text: "Application logs", key: km.AppLogs},
		{group: "Control", text: "Log out", key: km.Logout},
		{group: "Control", text: "Help", key: km.Help},
		{group: "Control", text: "Quit", key: km.Quit},
	}
}

func (m *Model) updateHelpModal(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeModal()
	case tea.KeyUp:
		if m.helpSel > 0 {
			m.helpSel--
		}
	case tea.KeyDown:
		if m.helpSel < len(m.helpItems)-1 {
			m.helpSel++
		}
	case tea.KeyEnter:
		if m.helpSel >= 0 && m.helpSel < len(m.helpItems) {
			k := m.helpItems[m.helpSel].key
			m.closeModal()
			return keyCmd(k)
		}
	}
	return nil
}
