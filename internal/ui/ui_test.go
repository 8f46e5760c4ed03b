package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"filedesk/internal/analysis"
	"filedesk/internal/api"
	"filedesk/internal/auth"
	"filedesk/internal/catalog"
	"filedesk/internal/config"
	"filedesk/internal/credential"
	"filedesk/internal/devbackend"
	"filedesk/internal/model"
)

// recorder counts requests per "METHOD /path" before handing them to the backend.
type recorder struct {
	mu   sync.Mutex
	hits map[string]int
	next http.Handler
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	r.hits[req.Method+" "+req.URL.Path]++
	r.mu.Unlock()
	r.next.ServeHTTP(w, req)
}

func (r *recorder) count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hits[key]
}

func (r *recorder) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, v := range r.hits {
		n += v
	}
	return n
}

type harness struct {
	m     *Model
	rec   *recorder
	store *devbackend.Store
	creds credential.Store
}

// newHarness wires a model to an in-process backend. A non-empty token is
// pre-stored as the credential.
func newHarness(t *testing.T, withSession bool) harness {
	t.Helper()
	store := devbackend.NewStore()
	rec := &recorder{hits: map[string]int{}, next: devbackend.New(store, devbackend.Options{RequireSession: true}).Handler()}
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)

	token := ""
	if withSession {
		if err := store.Register("alice", "pw"); err != nil {
			t.Fatalf("register: %v", err)
		}
		tok, err := store.Login("alice", "pw")
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		token = tok
	}
	cfg := &config.Config{
		BaseURL:        srv.URL,
		AuthTransport:  config.TransportQuery,
		RequestTimeout: 5 * time.Second,
		SearchDebounce: time.Millisecond,
		Theme:          config.ThemeDark,
		Offline:        true,
		DownloadDir:    t.TempDir(),
	}
	creds := credential.NewMemoryStore(token)
	client := api.NewClient(cfg.BaseURL, cfg.AuthTransport, creds, cfg.RequestTimeout)
	svc := Services{
		Auth:     auth.NewGateway(client, creds),
		Catalog:  catalog.NewService(client),
		Analysis: analysis.NewService(client),
	}
	m := newModel(context.Background(), cfg, svc)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return harness{m: m, rec: rec, store: store, creds: creds}
}

func seedFiles(s *devbackend.Store) {
	s.Put(model.FileRecord{Filename: "a.csv", Title: "A", FileType: model.FileTypeCSV}, []byte("x,y\n1,2\n3,4\n"))
	s.Put(model.FileRecord{Filename: "b.png", Title: "B", FileType: model.FileTypePhoto}, []byte("png"))
}

// exec runs a command tree and returns the leaf messages. Spinner ticks are dropped.
func exec(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, exec(c)...)
		}
		return out
	case spinner.TickMsg:
		return nil
	default:
		return []tea.Msg{msg}
	}
}

// settle feeds every resulting message back into Update until nothing is left.
func settle(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	queue := exec(cmd)
	for i := 0; len(queue) > 0; i++ {
		if i > 200 {
			t.Fatalf("update loop did not settle")
		}
		msg := queue[0]
		queue = queue[1:]
		_, next := m.Update(msg)
		queue = append(queue, exec(next)...)
	}
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func press(m *Model, k tea.KeyMsg) tea.Cmd {
	_, cmd := m.Update(k)
	return cmd
}

// loadCatalog runs the startup path: validate, then fetch and render.
func loadCatalog(t *testing.T, h harness) {
	t.Helper()
	settle(t, h.m, h.m.validateCmd())
	if h.m.screen != screenCatalog {
		t.Fatalf("screen: %v", h.m.screen)
	}
}

func TestInitWithoutCredentialMakesNoRequest(t *testing.T) {
	h := newHarness(t, false)
	msgs := exec(h.m.validateCmd())
	if len(msgs) != 1 {
		t.Fatalf("msgs: %v", msgs)
	}
	sc, ok := msgs[0].(sessionCheckedMsg)
	if !ok || sc.ok {
		t.Fatalf("expected failed session check, got %#v", msgs[0])
	}
	if n := h.rec.total(); n != 0 {
		t.Fatalf("expected no requests, got %d", n)
	}
	h.m.Update(sc)
	if h.m.screen != screenAuth {
		t.Fatalf("screen: %v", h.m.screen)
	}
	if h.rec.count("GET /api/data/files") != 0 {
		t.Fatalf("catalog fetched before login")
	}
}

func TestValidSessionLoadsCatalog(t *testing.T) {
	h := newHarness(t, true)
	seedFiles(h.store)
	loadCatalog(t, h)
	if len(h.m.all) != 2 || len(h.m.view) != 2 {
		t.Fatalf("catalog: %v / %v", h.m.all, h.m.view)
	}
	rs := h.m.rows["a.csv"]
	if rs == nil || rs.loading || rs.result.Unavailable {
		t.Fatalf("row state: %#v", rs)
	}
	if _, ok := h.m.rows["b.png"]; ok {
		t.Fatalf("photo rows must not request analysis")
	}
	if h.rec.count("GET /api/processing/analyze/a.csv") != 1 {
		t.Fatalf("analyze hits: %v", h.rec.hits)
	}
	v := h.m.View()
	if !strings.Contains(v, "[ download ]") || !strings.Contains(v, "image: ") {
		t.Fatalf("view missing card parts:\n%s", v)
	}
}

func TestLoginThenCatalog(t *testing.T) {
	h := newHarness(t, false)
	if err := h.store.Register("bob", "pw"); err != nil {
		t.Fatal(err)
	}
	seedFiles(h.store)
	h.m.screen = screenAuth
	settle(t, h.m, h.m.loginCmd("bob", "pw"))
	if h.m.screen != screenCatalog || len(h.m.all) != 2 {
		t.Fatalf("screen=%v all=%v", h.m.screen, h.m.all)
	}
}

func TestLoginRejectedShowsDetail(t *testing.T) {
	h := newHarness(t, false)
	h.m.screen = screenAuth
	settle(t, h.m, h.m.loginCmd("nobody", "pw"))
	if h.m.screen != screenAuth {
		t.Fatalf("screen: %v", h.m.screen)
	}
	if h.m.authMsg != "Invalid credentials" {
		t.Fatalf("authMsg: %q", h.m.authMsg)
	}
	if _, ok := h.creds.Load(); ok {
		t.Fatalf("credential stored after rejected login")
	}
}

func TestEmptyCatalog(t *testing.T) {
	h := newHarness(t, true)
	loadCatalog(t, h)
	if !strings.Contains(h.m.View(), emptyCatalogText) {
		t.Fatalf("view:\n%s", h.m.View())
	}
}

func TestDeclinedDeleteSendsNothing(t *testing.T) {
	h := newHarness(t, true)
	seedFiles(h.store)
	loadCatalog(t, h)
	before := append([]model.FileRecord(nil), h.m.view...)

	press(h.m, runes("x"))
	if h.m.modalKind != modalConfirmDelete {
		t.Fatalf("modal: %v", h.m.modalKind)
	}
	if cmd := press(h.m, runes("n")); cmd != nil {
		settle(t, h.m, cmd)
	}
	if h.m.modalActive {
		t.Fatalf("confirm modal still open")
	}
	if n := h.rec.count("DELETE /api/data/files/a.csv"); n != 0 {
		t.Fatalf("delete sent %d times", n)
	}
	if len(h.m.view) != len(before) || h.m.view[0].Filename != before[0].Filename {
		t.Fatalf("view changed: %v", h.m.view)
	}
}

func TestConfirmedDeleteRefreshes(t *testing.T) {
	h := newHarness(t, true)
	seedFiles(h.store)
	loadCatalog(t, h)
	fetches := h.rec.count("GET /api/data/files")

	press(h.m, runes("x"))
	settle(t, h.m, press(h.m, runes("y")))
	if h.rec.count("DELETE /api/data/files/a.csv") != 1 {
		t.Fatalf("hits: %v", h.rec.hits)
	}
	if h.rec.count("GET /api/data/files") != fetches+1 {
		t.Fatalf("catalog not refetched after delete")
	}
	if len(h.m.all) != 1 || h.m.all[0].Filename != "b.png" {
		t.Fatalf("all: %v", h.m.all)
	}
}

func TestSearchDebounceRendersOnce(t *testing.T) {
	h := newHarness(t, true)
	seedFiles(h.store)
	loadCatalog(t, h)
	m := h.m
	m.startSearch()
	passes := m.renderPasses
	tag0 := m.debounce.tag
	for _, r := range "abcde" {
		press(m, runes(string(r)))
	}
	if m.renderPasses != passes {
		t.Fatalf("rendered while typing")
	}
	// ticks arrive in order once the quiet period elapses
	for i := 1; i <= 5; i++ {
		m.Update(searchTickMsg{tag: tag0 + i})
	}
	if got := m.renderPasses - passes; got != 1 {
		t.Fatalf("render passes: %d", got)
	}
	if m.query != "abcde" {
		t.Fatalf("query: %q", m.query)
	}
}

func TestSearchEnterAppliesImmediately(t *testing.T) {
	h := newHarness(t, true)
	seedFiles(h.store)
	loadCatalog(t, h)
	m := h.m
	m.startSearch()
	passes := m.renderPasses
	press(m, runes("A"))
	pending := m.debounce.tag
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.renderPasses != passes+1 {
		t.Fatalf("enter did not render")
	}
	if m.query != "a" || len(m.view) != 1 || m.view[0].Filename != "a.csv" {
		t.Fatalf("query=%q view=%v", m.query, m.view)
	}
	m.Update(searchTickMsg{tag: pending})
	if m.renderPasses != passes+1 {
		t.Fatalf("cancelled tick still rendered")
	}
}

func TestStaleRowAnalysisDiscarded(t *testing.T) {
	h := newHarness(t, true)
	seedFiles(h.store)
	loadCatalog(t, h)
	m := h.m
	old := m.renderGen
	m.renderCatalog()
	m.Update(rowAnalysisMsg{gen: old, filename: "a.csv", result: model.AnalysisResult{Preview: "stale"}})
	if rs := m.rows["a.csv"]; !rs.loading {
		t.Fatalf("stale result applied: %#v", rs)
	}
	m.Update(rowAnalysisMsg{gen: m.renderGen, filename: "gone.csv", result: model.AnalysisResult{Preview: "x"}})
	if _, ok := m.rows["gone.csv"]; ok {
		t.Fatalf("result created a row")
	}
	m.Update(rowAnalysisMsg{gen: m.renderGen, filename: "a.csv", result: model.AnalysisResult{Preview: "fresh"}})
	if rs := m.rows["a.csv"]; rs.loading || rs.result.Preview != "fresh" {
		t.Fatalf("current result not applied: %#v", rs)
	}
}

func TestRowResultsLandOnTheirOwnRows(t *testing.T) {
	h := newHarness(t, true)
	seedFiles(h.store)
	h.store.Put(model.FileRecord{Filename: "c.csv", Title: "C", FileType: model.FileTypeCSV}, []byte("z\n9\n"))
	loadCatalog(t, h)
	m := h.m
	m.renderCatalog()
	gen := m.renderGen
	// the second row answers first
	m.Update(rowAnalysisMsg{gen: gen, filename: "c.csv", result: model.AnalysisResult{Filename: "c.csv", Preview: "z\n9"}})
	if rs := m.rows["a.csv"]; !rs.loading {
		t.Fatalf("a.csv filled by another row's result: %#v", rs)
	}
	m.Update(rowAnalysisMsg{gen: gen, filename: "a.csv", result: model.AnalysisResult{Filename: "a.csv", Preview: "x,y\n1,2"}})
	if rs := m.rows["a.csv"]; rs.loading || rs.result.Preview != "x,y\n1,2" {
		t.Fatalf("a.csv: %#v", rs)
	}
	if rs := m.rows["c.csv"]; rs.loading || rs.result.Preview != "z\n9" {
		t.Fatalf("c.csv: %#v", rs)
	}
	v := m.View()
	if !strings.Contains(v, "x,y") || !strings.Contains(v, "z") {
		t.Fatalf("panes missing from view:\n%s", v)
	}
}

func TestOpeningModalReplacesPrevious(t *testing.T) {
	h := newHarness(t, true)
	seedFiles(h.store)
	loadCatalog(t, h)
	m := h.m
	first := m.openFileModal(m.view[0])
	firstID := m.file.id
	m.openFileModal(m.view[1])
	if m.file.record.Filename != "b.png" || m.file.id == firstID {
		t.Fatalf("modal not replaced: %#v", m.file)
	}
	// the preview for the first modal arrives late and is dropped
	settle(t, m, first)
	if m.file.record.Filename != "b.png" || m.file.previewLoading {
		t.Fatalf("late preview leaked into new modal")
	}
}

func TestSupersededAnalyzeDiscarded(t *testing.T) {
	h := newHarness(t, true)
	seedFiles(h.store)
	loadCatalog(t, h)
	m := h.m
	settle(t, m, m.openFileModal(m.view[0]))
	if m.file.previewLoading || m.file.preview.ColumnsTotal != 2 {
		t.Fatalf("preview: %#v", m.file.preview)
	}
	m.file.columns.SetValue("x")
	firstCmd := m.analyze()
	m.file.columns.SetValue("y")
	settle(t, m, m.analyze())
	want := m.file.result
	if want == nil || want.ColumnsSelected != "y" {
		t.Fatalf("result: %#v", want)
	}
	settle(t, m, firstCmd)
	if m.file.result.ColumnsSelected != "y" {
		t.Fatalf("superseded analyze overwrote result: %#v", m.file.result)
	}

	late := m.analyze()
	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.modalActive {
		t.Fatalf("esc did not close modal")
	}
	settle(t, m, late)
	if m.file != nil || m.modalActive {
		t.Fatalf("result reopened a closed modal")
	}
}

func TestHitTestButtonsWin(t *testing.T) {
	zones := []zone{
		{kind: zoneCard, index: 0, x0: 0, x1: 80, y0: 0, y1: 5},
		{kind: zoneDownload, index: 0, x0: 2, x1: 14, y0: 3, y1: 4},
		{kind: zoneDelete, index: 0, x0: 16, x1: 26, y0: 3, y1: 4},
	}
	if z, ok := hitTest(zones, 5, 3); !ok || z.kind != zoneDownload {
		t.Fatalf("download: %#v", z)
	}
	if z, ok := hitTest(zones, 20, 3); !ok || z.kind != zoneDelete {
		t.Fatalf("delete: %#v", z)
	}
	if z, ok := hitTest(zones, 40, 3); !ok || z.kind != zoneCard {
		t.Fatalf("card: %#v", z)
	}
	if _, ok := hitTest(zones, 40, 9); ok {
		t.Fatalf("hit outside every zone")
	}
}

func TestClickDeleteButtonOpensConfirmOnly(t *testing.T) {
	h := newHarness(t, true)
	seedFiles(h.store)
	loadCatalog(t, h)
	m := h.m
	var del zone
	for _, z := range m.zones {
		if z.kind == zoneDelete && z.index == 0 {
			del = z
		}
	}
	m.Update(tea.MouseMsg{Type: tea.MouseLeft, X: del.x0, Y: del.y0 + listTop - m.list.YOffset})
	if m.modalKind != modalConfirmDelete || m.file != nil {
		t.Fatalf("modal=%v file=%v", m.modalKind, m.file)
	}
	// outside clicks do not close it
	m.Update(tea.MouseMsg{Type: tea.MouseLeft, X: 0, Y: 0})
	if !m.modalActive {
		t.Fatalf("outside click closed the modal")
	}
}

func TestClickCardOpensModal(t *testing.T) {
	h := newHarness(t, true)
	seedFiles(h.store)
	loadCatalog(t, h)
	m := h.m
	card, ok := m.cardZone(1)
	if !ok {
		t.Fatalf("no zone for card 1")
	}
	m.Update(tea.MouseMsg{Type: tea.MouseLeft, X: 1, Y: card.y0 + listTop - m.list.YOffset})
	if m.modalKind != modalFile || m.file.record.Filename != "b.png" {
		t.Fatalf("modal=%v file=%v", m.modalKind, m.file)
	}
}

func TestUploadWithoutFile(t *testing.T) {
	h := newHarness(t, true)
	loadCatalog(t, h)
	m := h.m
	m.openUploadForm()
	settle(t, m, m.submitUpload())
	if h.rec.count("POST /api/data/upload") != 0 {
		t.Fatalf("upload sent without a file")
	}
	if m.upload == nil || m.upload.err != "choose a file first" {
		t.Fatalf("upload form: %#v", m.upload)
	}
}

func TestLogoutReturnsToAuth(t *testing.T) {
	h := newHarness(t, true)
	seedFiles(h.store)
	loadCatalog(t, h)
	m := h.m
	msgs := exec(m.logoutCmd())
	for _, msg := range msgs {
		m.Update(msg)
	}
	if m.screen != screenAuth || len(m.all) != 0 {
		t.Fatalf("screen=%v all=%v", m.screen, m.all)
	}
	if _, ok := h.creds.Load(); ok {
		t.Fatalf("credential survived logout")
	}
}

func TestUploadResultForClosedFormLeavesNewFormAlone(t *testing.T) {
	h := newHarness(t, true)
	loadCatalog(t, h)
	m := h.m
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	m.openUploadForm()
	m.upload.inputs[0].SetValue(path)
	sent := m.submitUpload()
	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.modalActive {
		t.Fatalf("esc did not close the busy form")
	}
	m.openUploadForm()
	fresh := m.upload

	settle(t, m, sent)
	if !m.modalActive || m.modalKind != modalUpload || m.upload != fresh {
		t.Fatalf("new form torn down: active=%v kind=%v", m.modalActive, m.modalKind)
	}
	if fresh.busy || fresh.err != "" {
		t.Fatalf("new form touched: %#v", fresh)
	}
	if len(m.all) != 1 || m.all[0].Filename != "notes.txt" {
		t.Fatalf("catalog not refreshed after upload: %v", m.all)
	}
}

func TestUploadFailureForClosedFormGoesToStatus(t *testing.T) {
	h := newHarness(t, true)
	loadCatalog(t, h)
	m := h.m
	m.openUploadForm()
	sent := m.submitUpload()
	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	m.openUploadForm()
	fresh := m.upload

	settle(t, m, sent)
	if m.upload != fresh || fresh.err != "" || fresh.busy {
		t.Fatalf("new form touched: %#v", m.upload)
	}
	if m.lastMsg != "choose a file first" {
		t.Fatalf("lastMsg: %q", m.lastMsg)
	}
}
