package catalog

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/Knetic/govaluate"

	"filedesk/internal/model"
)

// Filter keeps the records whose title or filename contains query,
// ignoring case. An empty query keeps everything. The input is never
// modified and the result is always a fresh slice in input order.
func Filter(records []model.FileRecord, query string) []model.FileRecord {
	q := strings.ToLower(query)
	out := make([]model.FileRecord, 0, len(records))
	for _, r := range records {
		if q == "" || strings.Contains(strings.ToLower(r.Title), q) || strings.Contains(strings.ToLower(r.Filename), q) {
			out = append(out, r)
		}
	}
	return out
}

// NormalizeQuery is applied to raw search input before Filter.
func NormalizeQuery(raw string) string { return strings.ToLower(strings.TrimSpace(raw)) }

// Expr is a compiled boolean expression over a record's fields, e.g.
// `filetype == "csv" && description != ""`.
type Expr struct {
	src  string
	expr *govaluate.EvaluableExpression
}

func CompileExpr(src string) (*Expr, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return &Expr{}, nil
	}
	e, err := govaluate.NewEvaluableExpression(src)
	if err != nil {
		return nil, err
	}
	return &Expr{src: src, expr: e}, nil
}

func (e *Expr) String() string { return e.src }

func (e *Expr) Match(r model.FileRecord) bool {
	if e == nil || e.expr == nil {
		return true
	}
	params := map[string]any{
		"filename":    r.Filename,
		"title":       r.DisplayTitle(),
		"description": r.Description,
		"filetype":    string(r.FileType),
		"ext":         strings.TrimPrefix(strings.ToLower(extOf(r.Filename)), "."),
	}
	result, err := e.expr.Evaluate(params)
	if err != nil {
		return false
	}
	b, ok := result.(bool)
	return ok && b
}

// Where keeps the records matching e.
func Where(records []model.FileRecord, e *Expr) []model.FileRecord {
	out := make([]model.FileRecord, 0, len(records))
	for _, r := range records {
		if e.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

func extOf(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i:]
	}
	return ""
}

func decodeRecord(r io.Reader, rec *model.FileRecord) error {
	var got model.FileRecord
	if err := json.NewDecoder(r).Decode(&got); err != nil {
		return err
	}
	if got.Filename != "" {
		rec.Filename = got.Filename
	}
	if got.Title != "" {
		rec.Title = got.Title
	}
	if got.Description != "" {
		rec.Description = got.Description
	}
	if got.FileType != "" {
		rec.FileType = got.FileType
	}
	return nil
}
