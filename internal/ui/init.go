package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"filedesk/internal/ai"
	"filedesk/internal/analysis"
	"filedesk/internal/api"
	"filedesk/internal/auth"
	"filedesk/internal/catalog"
	"filedesk/internal/config"
	"filedesk/internal/credential"
	"filedesk/internal/util/logx"
)

// Services bundles the gateways the UI drives. They share one api.Client and
// therefore one credential store and transport.
type Services struct {
	Auth     *auth.Gateway
	Catalog  *catalog.Service
	Analysis *analysis.Service
	AI       *ai.OpenAIClient
}

func NewServices(cfg *config.Config) (Services, error) {
	var store credential.Store
	if cfg.Ephemeral {
		store = credential.NewMemoryStore("")
	} else {
		fs, err := credential.NewFileStore(cfg.CredentialDir, cfg.BaseURL)
		if err != nil {
			return Services{}, err
		}
		store = fs
	}
	client := api.NewClient(cfg.BaseURL, cfg.AuthTransport, store, cfg.RequestTimeout)
	svc := Services{
		Auth:     auth.NewGateway(client, store),
		Catalog:  catalog.NewService(client),
		Analysis: analysis.NewService(client),
	}
	if !cfg.Offline {
		svc.AI = ai.NewOpenAIClient(cfg.OpenAIKey(), cfg.OpenAIBase, cfg.OpenAIModel, time.Duration(cfg.OpenAITimeoutSec)*time.Second)
	}
	return svc, nil
}

func newModel(ctx context.Context, cfg *config.Config, svc Services) *Model {
	m := &Model{
		ctx:       ctx,
		cfg:       cfg,
		svc:       svc,
		screen:    screenChecking,
		styles:    NewStyles(cfg.Theme != config.ThemeLight),
		keymap:    DefaultKeyMap(),
		search:    textinput.New(),
		exprInput: textinput.New(),
		spin:      spinner.New(),
		debounce:  debouncer{delay: cfg.SearchDebounce},
		rows:      map[string]*rowState{},
	}
	m.spin.Spinner = spinner.Dot
	m.search.Placeholder = "title or filename"
	m.search.Prompt = "search: "
	m.search.CharLimit = 256
	m.exprInput.Placeholder = `e.g. filetype == "csv" && ext != "tsv"`
	m.exprInput.Prompt = "filter: "
	m.exprInput.CharLimit = 512
	m.username, m.password = newAuthInputs()
	m.list = viewport.New(80, 20)
	m.modalVP = viewport.New(60, 10)
	return m
}

func Run(ctx context.Context, cfg *config.Config) error {
	svc, err := NewServices(cfg)
	if err != nil {
		return err
	}
	m := newModel(ctx, cfg, svc)
	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}
	if cfg.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, opts...)
	_, err = p.Run()
	if err != nil {
		logx.Errorf("ui: program exited: %v", err)
	}
	return err
}

// Init validates the stored credential; nothing else is issued until it resolves.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.validateCmd(), m.spin.Tick)
}
