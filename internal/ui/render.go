package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"filedesk/internal/catalog"
	"filedesk/internal/model"
)

const (
	emptyCatalogText = "no files found"
	loadErrorText    = "error loading files"
	noDescription    = "none"
	loadingPreview   = "loading preview…"
	previewMaxLines  = 5
	// rows above the list: title bar and search line
	listTop = 2
)

type zoneKind int

const (
	zoneCard zoneKind = iota
	zoneDownload
	zoneDelete
)

// zone is a clickable rectangle in list content coordinates, end-exclusive.
type zone struct {
	kind   zoneKind
	index  int
	x0, x1 int
	y0, y1 int
}

func (z zone) contains(x, y int) bool {
	return x >= z.x0 && x < z.x1 && y >= z.y0 && y < z.y1
}

// hitTest resolves a click. Button zones win over the card that holds them,
// so a click on a button never reaches the card.
func hitTest(zones []zone, x, y int) (zone, bool) {
	for _, z := range zones {
		if z.kind != zoneCard && z.contains(x, y) {
			return z, true
		}
	}
	for _, z := range zones {
		if z.kind == zoneCard && z.contains(x, y) {
			return z, true
		}
	}
	return zone{}, false
}

// renderCatalog is one full render pass: derive the view, tear down every
// row and issue a fresh analysis request for each CSV row.
func (m *Model) renderCatalog() tea.Cmd {
	m.renderGen++
	m.renderPasses++
	m.view = catalog.Filter(catalog.Where(m.all, m.expr), m.query)
	m.rows = make(map[string]*rowState, len(m.view))
	var cmds []tea.Cmd
	for _, r := range m.view {
		if r.FileType != model.FileTypeCSV {
			continue
		}
		m.rows[r.Filename] = &rowState{loading: true}
		cmds = append(cmds, m.rowAnalysisCmd(m.renderGen, r.Filename))
	}
	if m.cursor >= len(m.view) {
		m.cursor = len(m.view) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.relayout()
	return tea.Batch(cmds...)
}

// onRowAnalysis fills a row's pane in place, provided the row still exists
// in the current render pass.
func (m *Model) onRowAnalysis(msg rowAnalysisMsg) {
	if msg.gen != m.renderGen {
		return
	}
	rs, ok := m.rows[msg.filename]
	if !ok {
		return
	}
	rs.loading = false
	rs.result = msg.result
	m.relayout()
}

func (m *Model) relayout() {
	width := m.list.Width
	if width <= 0 {
		width = 80
	}
	lines, zones := m.layoutCatalog(width)
	m.zones = zones
	m.list.SetContent(strings.Join(lines, "\n"))
	m.ensureCursorVisible()
}

func (m *Model) layoutCatalog(width int) ([]string, []zone) {
	st := m.styles
	if m.loadErr != nil && len(m.all) == 0 {
		return []string{st.Error.Render(loadErrorText)}, nil
	}
	if len(m.view) == 0 {
		if m.loading {
			return []string{st.Placeholder.Render("loading…")}, nil
		}
		return []string{st.Placeholder.Render(emptyCatalogText)}, nil
	}
	var lines []string
	var zones []zone
	inner := width - 4
	if inner < 10 {
		inner = 10
	}
	for i, r := range m.view {
		y0 := len(lines)
		marker := "  "
		title := st.CardTitle.Render(truncateRunes(r.DisplayTitle(), inner))
		if i == m.cursor {
			marker = st.Selected.Render("▸ ")
			title = st.Selected.Render(truncateRunes(r.DisplayTitle(), inner))
		}
		lines = append(lines, marker+title)
		desc := r.Description
		if strings.TrimSpace(desc) == "" {
			desc = noDescription
		}
		meta := fmt.Sprintf("type: %s · file: %s · description: %s", r.FileType, r.Filename, desc)
		lines = append(lines, "  "+st.CardMeta.Render(truncateRunes(meta, inner)))
		for _, pl := range m.paneLines(r, inner) {
			lines = append(lines, "  "+st.Help.Render("│ ")+pl)
		}
		dl := st.Button.Render("[ download ]")
		del := st.ButtonDel.Render("[ delete ]")
		by := len(lines)
		dx0 := 2
		dx1 := dx0 + lipgloss.Width(dl)
		rx0 := dx1 + 2
		rx1 := rx0 + lipgloss.Width(del)
		lines = append(lines, "  "+dl+"  "+del)
		zones = append(zones,
			zone{kind: zoneCard, index: i, x0: 0, x1: width, y0: y0, y1: len(lines)},
			zone{kind: zoneDownload, index: i, x0: dx0, x1: dx1, y0: by, y1: by + 1},
			zone{kind: zoneDelete, index: i, x0: rx0, x1: rx1, y0: by, y1: by + 1},
		)
		lines = append(lines, "")
	}
	return lines, zones
}

// paneLines is the preview pane of a card: CSV preview, image reference or nothing.
func (m *Model) paneLines(r model.FileRecord, width int) []string {
	st := m.styles
	switch r.FileType {
	case model.FileTypeCSV:
		rs, ok := m.rows[r.Filename]
		if !ok || rs.loading {
			return []string{st.Placeholder.Render(loadingPreview)}
		}
		if rs.result.Unavailable {
			return []string{st.Placeholder.Render("preview " + model.PlaceholderPreview)}
		}
		pv := strings.Split(strings.TrimRight(rs.result.Preview, "\n"), "\n")
		if len(pv) > previewMaxLines {
			pv = pv[:previewMaxLines]
		}
		out := make([]string, 0, len(pv))
		for _, l := range pv {
			out = append(out, st.Pane.Render(truncateRunes(l, width-2)))
		}
		return out
	case model.FileTypePhoto:
		return []string{st.Pane.Render(truncateRunes("image: "+m.svc.Catalog.DownloadURL(r.Filename), width-2))}
	default:
		return nil
	}
}

func (m *Model) cardZone(i int) (zone, bool) {
	for _, z := range m.zones {
		if z.kind == zoneCard && z.index == i {
			return z, true
		}
	}
	return zone{}, false
}

func (m *Model) ensureCursorVisible() {
	z, ok := m.cardZone(m.cursor)
	if !ok || m.list.Height <= 0 {
		return
	}
	if z.y0 < m.list.YOffset {
		m.list.SetYOffset(z.y0)
	} else if z.y1 > m.list.YOffset+m.list.Height {
		m.list.SetYOffset(z.y1 - m.list.Height)
	}
}

func (m *Model) moveCursor(delta int) {
	if len(m.view) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.view) {
		m.cursor = len(m.view) - 1
	}
	m.relayout()
}

func (m *Model) selected() (model.FileRecord, bool) {
	if m.cursor < 0 || m.cursor >= len(m.view) {
		return model.FileRecord{}, false
	}
	return m.view[m.cursor], true
}

// handleClick maps a left click on the list to an action.
func (m *Model) handleClick(x, y int) tea.Cmd {
	if y < listTop || y >= listTop+m.list.Height {
		return nil
	}
	z, ok := hitTest(m.zones, x, y-listTop+m.list.YOffset)
	if !ok || z.index >= len(m.view) {
		return nil
	}
	m.cursor = z.index
	rec := m.view[z.index]
	switch z.kind {
	case zoneDownload:
		m.relayout()
		return m.startDownload(rec)
	case zoneDelete:
		m.relayout()
		m.openConfirmDelete(rec)
		return nil
	default:
		m.relayout()
		return m.openFileModal(rec)
	}
}

func (m *Model) startDownload(rec model.FileRecord) tea.Cmd {
	m.busy++
	m.lastMsg = "downloading " + rec.Filename + "…"
	return tea.Batch(m.downloadCmd(rec.Filename), m.spin.Tick)
}
