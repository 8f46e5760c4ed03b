package ui

import (
	"errors"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"filedesk/internal/api"
	"filedesk/internal/auth"
	"filedesk/internal/catalog"
	"filedesk/internal/model"
	"filedesk/internal/util/logx"
)

type sessionCheckedMsg struct{ ok bool }

type authDoneMsg struct {
	mode authMode
	user auth.UserSummary
	err  error
}

type loggedOutMsg struct{}

type catalogLoadedMsg struct {
	records []model.FileRecord
	err     error
}

// rowAnalysisMsg is addressed to one row of one render pass.
type rowAnalysisMsg struct {
	gen      int
	filename string
	result   model.AnalysisResult
}

// modalAnalysisMsg is addressed to one modal instance and one analyze request.
type modalAnalysisMsg struct {
	modalID int
	seq     int
	preview bool
	result  model.AnalysisResult
}

type explainDoneMsg struct {
	modalID int
	text    string
	err     error
}

type deleteDoneMsg struct {
	filename string
	err      error
}

// uploadDoneMsg is addressed to the upload form that sent it.
type uploadDoneMsg struct {
	formID int
	record model.FileRecord
	size   int64
	err    error
}

type downloadDoneMsg struct {
	filename string
	path     string
	size     int64
	err      error
}

func (m *Model) validateCmd() tea.Cmd {
	ctx, gw := m.ctx, m.svc.Auth
	return func() tea.Msg {
		return sessionCheckedMsg{ok: gw.ValidateSession(ctx)}
	}
}

func (m *Model) loginCmd(username, password string) tea.Cmd {
	ctx, gw := m.ctx, m.svc.Auth
	return func() tea.Msg {
		_, err := gw.Login(ctx, username, password)
		return authDoneMsg{mode: authLogin, user: auth.UserSummary{Username: username}, err: err}
	}
}

func (m *Model) registerCmd(username, password string) tea.Cmd {
	ctx, gw := m.ctx, m.svc.Auth
	return func() tea.Msg {
		u, err := gw.Register(ctx, username, password)
		return authDoneMsg{mode: authRegister, user: u, err: err}
	}
}

func (m *Model) logoutCmd() tea.Cmd {
	ctx, gw := m.ctx, m.svc.Auth
	return func() tea.Msg {
		gw.Logout(ctx)
		return loggedOutMsg{}
	}
}

func (m *Model) fetchCatalogCmd() tea.Cmd {
	ctx, svc := m.ctx, m.svc.Catalog
	m.loading = true
	return func() tea.Msg {
		recs, err := svc.FetchAll(ctx)
		return catalogLoadedMsg{records: recs, err: err}
	}
}

func (m *Model) rowAnalysisCmd(gen int, filename string) tea.Cmd {
	ctx, svc := m.ctx, m.svc.Analysis
	return func() tea.Msg {
		return rowAnalysisMsg{gen: gen, filename: filename, result: svc.Fetch(ctx, filename, "")}
	}
}

func (m *Model) modalAnalysisCmd(modalID, seq int, filename, columns string, preview bool) tea.Cmd {
	ctx, svc := m.ctx, m.svc.Analysis
	return func() tea.Msg {
		return modalAnalysisMsg{modalID: modalID, seq: seq, preview: preview, result: svc.Fetch(ctx, filename, columns)}
	}
}

func (m *Model) explainCmd(modalID int, rec model.FileRecord, res model.AnalysisResult) tea.Cmd {
	ctx, cli := m.ctx, m.svc.AI
	return func() tea.Msg {
		text, err := cli.ExplainAnalysis(ctx, rec, res)
		return explainDoneMsg{modalID: modalID, text: text, err: err}
	}
}

func (m *Model) deleteCmd(filename string) tea.Cmd {
	ctx, svc := m.ctx, m.svc.Catalog
	return func() tea.Msg {
		return deleteDoneMsg{filename: filename, err: svc.Delete(ctx, filename)}
	}
}

func (m *Model) uploadCmd(formID int, req catalog.UploadRequest) tea.Cmd {
	ctx, svc := m.ctx, m.svc.Catalog
	return func() tea.Msg {
		var size int64
		if fi, err := os.Stat(strings.TrimSpace(req.Path)); err == nil {
			size = fi.Size()
		}
		rec, err := svc.Upload(ctx, req)
		return uploadDoneMsg{formID: formID, record: rec, size: size, err: err}
	}
}

func (m *Model) downloadCmd(filename string) tea.Cmd {
	ctx, svc, dir := m.ctx, m.svc.Catalog, m.cfg.DownloadDir
	return func() tea.Msg {
		p, n, err := svc.Download(ctx, filename, dir)
		return downloadDoneMsg{filename: filename, path: p, size: n, err: err}
	}
}

// describeErr turns a gateway error into a short user-facing line.
func describeErr(err error) string {
	var rej *auth.RejectedError
	var del *catalog.DeleteRejectedError
	var se *api.StatusError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &rej):
		return rej.Detail
	case errors.As(err, &del):
		return del.Detail
	case errors.Is(err, catalog.ErrNoFileSelected):
		return "choose a file first"
	case api.IsNetwork(err):
		return "backend unreachable"
	case errors.As(err, &se):
		return se.Detail
	default:
		logx.Debugf("ui: unclassified error: %v", err)
		return err.Error()
	}
}
