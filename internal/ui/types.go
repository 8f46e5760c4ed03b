package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"filedesk/internal/catalog"
	"filedesk/internal/config"
	"filedesk/internal/model"
)

type screen int

const (
	screenChecking screen = iota
	screenAuth
	screenCatalog
)

type authMode int

const (
	authLogin authMode = iota
	authRegister
)

type modalKind int

const (
	modalNone modalKind = iota
	modalFile
	modalConfirmDelete
	modalUpload
	modalHelp
	modalLogs
)

type inlineMode int

const (
	inlineNone inlineMode = iota
	inlineSearch
	inlineFilter
)

// rowState is the per-row analysis pane of one render pass.
type rowState struct {
	loading bool
	result  model.AnalysisResult
}

type Model struct {
	ctx context.Context
	cfg *config.Config
	svc Services

	screen screen

	// Auth screen
	authMode  authMode
	username  textinput.Model
	password  textinput.Model
	authFocus int
	authBusy  bool
	authMsg   string

	// Catalog: all is authoritative, view is derived on every render pass
	all          []model.FileRecord
	view         []model.FileRecord
	loading      bool
	loadErr      error
	expr         *catalog.Expr
	rows         map[string]*rowState
	renderGen    int
	renderPasses int
	cursor       int
	list         viewport.Model
	zones        []zone

	// Search / filter input
	search     textinput.Model
	exprInput  textinput.Model
	query      string
	debounce   debouncer
	inlineMode inlineMode

	// Modal popup; at most one at a time
	modalActive bool
	modalKind   modalKind
	modalVP     viewport.Model
	modalTitle  string
	modalBody   string
	modalSeq    int
	file        *fileModal
	confirm     *model.FileRecord
	upload      *uploadForm

	// Help menu state
	helpItems []helpItem
	helpSel   int

	// UI
	styles     Styles
	keymap     KeyMap
	spin       spinner.Model
	termWidth  int
	termHeight int
	busy       int
	lastMsg    string
}

type helpItem struct {
	group string
	text  string
	key   tea.Key
}

func keyCmd(k tea.Key) tea.Cmd {
	return func() tea.Msg {
		if k.Type == tea.KeyRunes {
			return tea.KeyMsg{Type: k.Type, Runes: k.Runes}
		}
		return tea.KeyMsg{Type: k.Type}
	}
}

func keyLabel(k tea.Key) string {
	switch k.Type {
	case tea.KeyRunes:
		if len(k.Runes) == 1 {
			r := k.Runes[0]
			if r == ' ' {
				return "space"
			}
			return string(r)
		}
		return strings.ToLower(string(k.Runes))
	case tea.KeyEnter:
		return "enter"
	case tea.KeyEsc:
		return "esc"
	case tea.KeyTab:
		return "tab"
	case tea.KeyShiftTab:
		return "shift-tab"
	case tea.KeyUp:
		return "up"
	case tea.KeyDown:
		return "down"
	case tea.KeyPgUp:
		return "pgup"
	case tea.KeyPgDown:
		return "pgdown"
	default:
		return strings.ToLower(k.String())
	}
}
