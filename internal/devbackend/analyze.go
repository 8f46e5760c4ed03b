package devbackend

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"filedesk/internal/model"
)

const previewLines = 5

// Analyze computes sum, average and max for the numeric columns of a CSV
// body. columns selects by 1-based index or header name, comma separated;
// empty selects every column.
func Analyze(filename string, data []byte, columns string) (model.AnalysisResult, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return model.AnalysisResult{}, errors.New("empty file")
		}
		return model.AnalysisResult{}, fmt.Errorf("invalid csv: %w", err)
	}
	idx, err := selectColumns(header, columns)
	if err != nil {
		return model.AnalysisResult{}, err
	}

	type acc struct {
		sum, max float64
		n        int
		numeric  bool
	}
	accs := make([]acc, len(idx))
	for i := range accs {
		accs[i].numeric = true
	}
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return model.AnalysisResult{}, fmt.Errorf("invalid csv: %w", err)
		}
		for i, c := range idx {
			if c >= len(row) || !accs[i].numeric {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[c]), 64)
			if err != nil {
				accs[i].numeric = false
				continue
			}
			if accs[i].n == 0 || v > accs[i].max {
				accs[i].max = v
			}
			accs[i].sum += v
			accs[i].n++
		}
	}

	res := model.AnalysisResult{
		Filename:        filename,
		Preview:         preview(data),
		ColumnsTotal:    len(header),
		ColumnsSelected: columns,
		PerColumn:       []model.ColumnStat{},
	}
	for i, c := range idx {
		a := accs[i]
		if !a.numeric || a.n == 0 {
			continue
		}
		res.PerColumn = append(res.PerColumn, model.ColumnStat{
			Column:  header[c],
			Sum:     a.sum,
			Average: a.sum / float64(a.n),
			Max:     a.max,
		})
	}
	return res, nil
}

func selectColumns(header []string, columns string) ([]int, error) {
	if strings.TrimSpace(columns) == "" {
		out := make([]int, len(header))
		for i := range header {
			out[i] = i
		}
		return out, nil
	}
	var out []int
	for _, part := range strings.Split(columns, ",") {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		if n, err := strconv.Atoi(p); err == nil {
			if n < 1 || n > len(header) {
				return nil, fmt.Errorf("column index %d out of range", n)
			}
			out = append(out, n-1)
			continue
		}
		found := false
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), p) {
				out = append(out, i)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown column %q", p)
		}
	}
	return out, nil
}

func preview(data []byte) string {
	lines := strings.SplitN(string(data), "\n", previewLines+1)
	if len(lines) > previewLines {
		lines = lines[:previewLines]
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\r\n")
}
