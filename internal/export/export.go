package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"filedesk/internal/model"
)

var header = []string{"filename", "title", "description", "filetype", "url"}

// URLFunc maps a filename to its direct download reference.
type URLFunc func(filename string) string

func ToCSV(path string, records []model.FileRecord, url URLFunc) error {
	if len(records) == 0 {
		return errors.New("no records")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		if err := w.Write([]string{r.Filename, r.DisplayTitle(), r.Description, string(r.FileType), url(r.Filename)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

type row struct {
	model.FileRecord
	URL string `json:"url"`
}

func ToNDJSON(path string, records []model.FileRecord, url URLFunc) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	bw := bufio.NewWriter(f)
	for _, r := range records {
		b, err := json.Marshal(row{FileRecord: r, URL: url(r.Filename)})
		if err != nil {
			return err
		}
		if _, err := bw.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Write dispatches on format (csv or json).
func Write(format, path string, records []model.FileRecord, url URLFunc) error {
	switch strings.ToLower(format) {
	case "csv":
		return ToCSV(path, records, url)
	case "json", "ndjson":
		return ToNDJSON(path, records, url)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
