package model

import (
	"encoding/json"
	"strings"
)

type FileType string

const (
	FileTypeCSV   FileType = "csv"
	FileTypePhoto FileType = "photo"
	FileTypeOther FileType = "other"
)

// Normalize maps anything the backend may send onto the three known types.
func (t FileType) Normalize() FileType {
	switch FileType(strings.ToLower(strings.TrimSpace(string(t)))) {
	case FileTypeCSV:
		return FileTypeCSV
	case FileTypePhoto:
		return FileTypePhoto
	default:
		return FileTypeOther
	}
}

// FileTypeFor classifies a filename the same way the data backend does.
func FileTypeFor(name string) FileType {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return FileTypeCSV
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"), strings.HasSuffix(lower, ".png"):
		return FileTypePhoto
	default:
		return FileTypeOther
	}
}

func (t *FileType) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil {
		*t = FileTypeOther
		return nil
	}
	*t = FileType(*s).Normalize()
	return nil
}

// FileRecord is one catalog entry. Filename is the unique key.
type FileRecord struct {
	Filename    string   `json:"filename"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	FileType    FileType `json:"filetype"`
}

// DisplayTitle falls back to the filename when the backend stored no title.
func (r FileRecord) DisplayTitle() string {
	if strings.TrimSpace(r.Title) == "" {
		return r.Filename
	}
	return r.Title
}

type ColumnStat struct {
	Column  string  `json:"column"`
	Sum     float64 `json:"sum"`
	Average float64 `json:"average"`
	Max     float64 `json:"max"`
}

// AnalysisResult is produced by the backend per (filename, column selection).
type AnalysisResult struct {
	Filename        string       `json:"filename"`
	Preview         string       `json:"preview"`
	ColumnsTotal    int          `json:"columns_total"`
	ColumnsSelected string       `json:"-"`
	PerColumn       []ColumnStat `json:"analysis"`
	Unavailable     bool         `json:"-"`
}

func (a *AnalysisResult) UnmarshalJSON(b []byte) error {
	type plain AnalysisResult
	var aux struct {
		plain
		ColumnsSelected json.RawMessage `json:"columns_selected"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*a = AnalysisResult(aux.plain)
	a.ColumnsSelected = decodeSelection(aux.ColumnsSelected)
	return nil
}

// columns_selected arrives as a string, a list or null depending on the backend version.
func decodeSelection(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []any
	if err := json.Unmarshal(raw, &list); err == nil {
		parts := make([]string, 0, len(list))
		for _, v := range list {
			b, _ := json.Marshal(v)
			parts = append(parts, strings.Trim(string(b), `"`))
		}
		return strings.Join(parts, ",")
	}
	return ""
}

// PlaceholderPreview is shown whenever an analysis could not be obtained.
const PlaceholderPreview = "unavailable"

func PlaceholderAnalysis(filename string) AnalysisResult {
	return AnalysisResult{Filename: filename, Preview: PlaceholderPreview, Unavailable: true}
}
