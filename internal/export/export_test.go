package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"filedesk/internal/model"
)

func url(name string) string { return "http://h/api/data/download/" + name }

var recs = []model.FileRecord{
	{Filename: "a.csv", Title: "A", Description: "first", FileType: model.FileTypeCSV},
	{Filename: "b.png", FileType: model.FileTypePhoto},
}

func TestToCSV(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.csv")
	if err := Write("CSV", p, recs, url); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, _ := os.Open(p)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[0][0] != "filename" {
		t.Fatalf("rows = %v", rows)
	}
	if rows[2][1] != "b.png" || rows[2][4] != "http://h/api/data/download/b.png" {
		t.Fatalf("row = %v", rows[2])
	}
	if err := ToCSV(p, nil, url); err == nil {
		t.Fatal("expected error for empty export")
	}
}

func TestToNDJSON(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.json")
	if err := Write("json", p, recs, url); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, _ := os.Open(p)
	defer f.Close()
	sc := bufio.NewScanner(f)
	n := 0
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("line %d: %v", n, err)
		}
		if m["filename"] != recs[n].Filename || m["url"] == "" {
			t.Fatalf("line %d = %v", n, m)
		}
		n++
	}
	if n != 2 {
		t.Fatalf("lines = %d", n)
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	if err := Write("xml", filepath.Join(t.TempDir(), "x"), recs, url); err == nil {
		t.Fatal("expected error")
	}
}
