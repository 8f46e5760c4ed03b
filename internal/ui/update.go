package ui

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"filedesk/internal/api"
	"filedesk/internal/catalog"
	"filedesk/internal/export"
	"filedesk/internal/util/logx"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth, m.termHeight = msg.Width, msg.Height
		// header, search line and status bar
		h := msg.Height - 3
		if h < 1 {
			h = 1
		}
		m.list.Width = msg.Width
		m.list.Height = h
		m.search.Width = msg.Width - 12
		m.exprInput.Width = msg.Width - 40
		m.relayout()
		if m.modalActive {
			m.resizeModal()
		}
		return m, nil
	case tea.MouseMsg:
		return m, m.handleMouse(msg)
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case spinner.TickMsg:
		if m.busy == 0 && !m.loading && !m.authBusy && m.screen != screenChecking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case searchTickMsg:
		return m, m.onSearchTick(msg)

	case sessionCheckedMsg:
		if !msg.ok {
			return m, m.enterAuth("please log in")
		}
		m.screen = screenCatalog
		return m, m.fetchCatalogCmd()
	case authDoneMsg:
		return m, m.onAuthDone(msg)
	case loggedOutMsg:
		if m.busy > 0 {
			m.busy--
		}
		m.resetCatalog()
		return m, m.enterAuth("logged out")

	case catalogLoadedMsg:
		m.loading = false
		if msg.err != nil {
			if sessionRejected(msg.err) {
				logx.Warnf("ui: session rejected while loading catalog")
				m.busy++
				m.lastMsg = "session expired"
				return m, m.logoutCmd()
			}
			m.loadErr = msg.err
			m.all = nil
			m.lastMsg = loadErrorText + ": " + describeErr(msg.err)
		} else {
			m.loadErr = nil
			m.all = msg.records
		}
		return m, m.renderCatalog()
	case rowAnalysisMsg:
		m.onRowAnalysis(msg)
		return m, nil
	case modalAnalysisMsg:
		m.onModalAnalysis(msg)
		return m, nil
	case explainDoneMsg:
		m.onExplain(msg)
		return m, nil

	case deleteDoneMsg:
		if m.busy > 0 {
			m.busy--
		}
		if msg.err != nil {
			m.lastMsg = "delete failed: " + describeErr(msg.err)
			return m, nil
		}
		m.lastMsg = "deleted " + msg.filename
		// the catalog is refreshed only once the backend confirmed the delete
		return m, m.fetchCatalogCmd()
	case uploadDoneMsg:
		if m.busy > 0 {
			m.busy--
		}
		// the form that sent it may have been closed or replaced since
		own := m.upload != nil && m.upload.id == msg.formID
		if msg.err != nil {
			text := "upload failed"
			if errors.Is(msg.err, catalog.ErrNoFileSelected) {
				text = describeErr(msg.err)
			}
			logx.Errorf("ui: upload failed: %v", msg.err)
			if own {
				m.upload.busy = false
				m.upload.err = text
			} else {
				m.lastMsg = text
			}
			return m, nil
		}
		if own {
			m.closeModal()
		}
		m.lastMsg = fmt.Sprintf("uploaded %s (%s)", msg.record.Filename, humanize.Bytes(uint64(msg.size)))
		return m, m.fetchCatalogCmd()
	case downloadDoneMsg:
		if m.busy > 0 {
			m.busy--
		}
		if msg.err != nil {
			m.lastMsg = "download failed: " + describeErr(msg.err)
			return m, nil
		}
		m.lastMsg = fmt.Sprintf("saved %s (%s)", msg.path, humanize.Bytes(uint64(msg.size)))
		return m, nil
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	// clicks outside an open modal are ignored; it closes only on esc
	if m.screen != screenCatalog || m.modalActive {
		return nil
	}
	switch msg.Type {
	case tea.MouseLeft:
		return m.handleClick(msg.X, msg.Y)
	case tea.MouseWheelUp:
		m.list.LineUp(3)
	case tea.MouseWheelDown:
		m.list.LineDown(3)
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit
	}
	switch m.screen {
	case screenChecking:
		if keyMatches(msg, m.keymap.Quit) {
			return tea.Quit
		}
		return nil
	case screenAuth:
		return m.updateAuth(msg)
	}

	if m.modalActive {
		switch m.modalKind {
		case modalFile:
			return m.updateFileModal(msg)
		case modalConfirmDelete:
			return m.updateConfirm(msg)
		case modalUpload:
			return m.updateUploadForm(msg)
		case modalHelp:
			return m.updateHelpModal(msg)
		default:
			switch {
			case msg.Type == tea.KeyEsc, msg.Type == tea.KeyEnter:
				m.closeModal()
			case keyMatches(msg, m.keymap.Copy):
				copyToClipboard(m.modalBody)
				m.lastMsg = "copied to clipboard"
			default:
				var cmd tea.Cmd
				m.modalVP, cmd = m.modalVP.Update(msg)
				return cmd
			}
			return nil
		}
	}

	switch m.inlineMode {
	case inlineSearch:
		return m.updateSearchInput(msg)
	case inlineFilter:
		return m.updateFilterInput(msg)
	}

	switch {
	case keyMatches(msg, m.keymap.Quit):
		return tea.Quit
	case keyMatches(msg, m.keymap.Help):
		m.openHelpModal()
	case keyMatches(msg, m.keymap.Search):
		return m.startSearch()
	case keyMatches(msg, m.keymap.Filter):
		return m.startFilter()
	case keyMatches(msg, m.keymap.ClearFilter):
		return m.clearFilter()
	case keyMatches(msg, m.keymap.Upload):
		return m.openUploadForm()
	case keyMatches(msg, m.keymap.Refresh):
		m.lastMsg = "refreshing…"
		return m.fetchCatalogCmd()
	case keyMatches(msg, m.keymap.Export):
		m.exportView()
	case keyMatches(msg, m.keymap.AppLogs):
		m.openAppLogsModal()
	case keyMatches(msg, m.keymap.Logout):
		m.busy++
		return tea.Batch(m.logoutCmd(), m.spin.Tick)
	case keyMatches(msg, m.keymap.Top):
		m.moveCursor(-len(m.view))
	case keyMatches(msg, m.keymap.Bottom):
		m.moveCursor(len(m.view))
	case msg.Type == tea.KeyUp, msg.String() == "k":
		m.moveCursor(-1)
	case msg.Type == tea.KeyDown, msg.String() == "j":
		m.moveCursor(1)
	case msg.Type == tea.KeyPgUp:
		m.moveCursor(-5)
	case msg.Type == tea.KeyPgDown:
		m.moveCursor(5)
	case keyMatches(msg, m.keymap.Open):
		if rec, ok := m.selected(); ok {
			return m.openFileModal(rec)
		}
	case keyMatches(msg, m.keymap.Download):
		if rec, ok := m.selected(); ok {
			return m.startDownload(rec)
		}
	case keyMatches(msg, m.keymap.Delete):
		if rec, ok := m.selected(); ok {
			m.openConfirmDelete(rec)
		}
	}
	return nil
}

func (m *Model) exportView() {
	if m.cfg.ExportFormat == "" || m.cfg.ExportOut == "" {
		m.lastMsg = "use --export and --out to export"
		logx.Warnf("export: missing --export/--out flags")
		return
	}
	if err := export.Write(m.cfg.ExportFormat, m.cfg.ExportOut, m.view, m.svc.Catalog.DownloadURL); err != nil {
		m.lastMsg = "export failed: " + err.Error()
		logx.Errorf("export: %v", err)
		return
	}
	m.lastMsg = fmt.Sprintf("exported %d files to %s (%s)", len(m.view), m.cfg.ExportOut, m.cfg.ExportFormat)
	logx.Infof("export: wrote %d records to %s (%s)", len(m.view), m.cfg.ExportOut, m.cfg.ExportFormat)
}

// resetCatalog drops everything derived from the signed-in session.
func (m *Model) resetCatalog() {
	m.closeModal()
	m.inlineMode = inlineNone
	m.search.Blur()
	m.search.SetValue("")
	m.query = ""
	m.debounce.cancel()
	m.all = nil
	m.view = nil
	m.rows = map[string]*rowState{}
	m.renderGen++
	m.zones = nil
	m.cursor = 0
	m.loading = false
	m.loadErr = nil
	m.list.SetContent("")
}

func sessionRejected(err error) bool {
	var se *api.StatusError
	return errors.As(err, &se) && (se.Status == http.StatusUnauthorized || se.Status == http.StatusForbidden)
}
