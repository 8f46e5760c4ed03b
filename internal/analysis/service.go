// Package analysis fetches per-file tabular statistics computed by the
// processing backend.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"filedesk/internal/api"
	"filedesk/internal/model"
	"filedesk/internal/util/logx"
)

type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service { return &Service{client: client} }

// Fetch asks the backend to analyze filename. columns is passed through
// verbatim when non-empty; the backend owns its syntax and validation.
// Fetch never fails: any error yields model.PlaceholderAnalysis.
// Results are not cached.
func (s *Service) Fetch(ctx context.Context, filename, columns string) model.AnalysisResult {
	res, err := s.fetch(ctx, filename, columns)
	if err != nil {
		logx.Warnf("analysis: %s (columns=%q): %v", filename, columns, err)
		return model.PlaceholderAnalysis(filename)
	}
	return res
}

func (s *Service) fetch(ctx context.Context, filename, columns string) (model.AnalysisResult, error) {
	q := url.Values{}
	if columns != "" {
		q.Set("columns", columns)
	}
	resp, err := s.client.Send(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/api/processing/analyze/" + api.Segment(filename),
		Query:  q,
	})
	if err != nil {
		return model.AnalysisResult{}, err
	}
	defer resp.Body.Close()
	if !api.OK(resp) {
		return model.AnalysisResult{}, api.ReadStatusError(resp)
	}
	var out model.AnalysisResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return model.AnalysisResult{}, fmt.Errorf("decode analysis: %w", err)
	}
	if out.Filename == "" {
		out.Filename = filename
	}
	return out, nil
}
