package devbackend

import (
	"math/rand"
	"strings"
	"testing"
)

func TestAnalyzeAllColumns(t *testing.T) {
	data := []byte("name,a,b\nx,1,2.5\ny,3,0.5\n")
	res, err := Analyze("t.csv", data, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.ColumnsTotal != 3 {
		t.Fatalf("columns total = %d", res.ColumnsTotal)
	}
	if len(res.PerColumn) != 2 {
		t.Fatalf("numeric columns = %+v", res.PerColumn)
	}
	a := res.PerColumn[0]
	if a.Column != "a" || a.Sum != 4 || a.Average != 2 || a.Max != 3 {
		t.Fatalf("a = %+v", a)
	}
	if !strings.HasPrefix(res.Preview, "name,a,b") {
		t.Fatalf("preview = %q", res.Preview)
	}
}

func TestAnalyzeSelection(t *testing.T) {
	data := []byte("a,b,c\n1,2,3\n4,5,6\n")
	res, err := Analyze("t.csv", data, "3, a")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.PerColumn) != 2 || res.PerColumn[0].Column != "c" || res.PerColumn[1].Column != "a" {
		t.Fatalf("selection = %+v", res.PerColumn)
	}
	if res.ColumnsSelected != "3, a" {
		t.Fatalf("selected = %q", res.ColumnsSelected)
	}
	for _, bad := range []string{"0", "4", "zzz"} {
		if _, err := Analyze("t.csv", data, bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	if _, err := Analyze("e.csv", nil, ""); err == nil {
		t.Fatal("expected empty file error")
	}
}

func TestPreviewLimited(t *testing.T) {
	data := []byte(strings.Repeat("1,2\n", 20))
	if got := strings.Count(preview(data), "\n"); got != previewLines-1 {
		t.Fatalf("preview lines = %d", got+1)
	}
}

func TestSeed(t *testing.T) {
	s := NewStore()
	Seed(s, rand.New(rand.NewSource(1)))
	list := s.List()
	if len(list) != 4 {
		t.Fatalf("seeded %d files", len(list))
	}
	for _, r := range list {
		_, data, err := s.Get(r.Filename)
		if err != nil || len(data) == 0 {
			t.Fatalf("%s: %v", r.Filename, err)
		}
		if r.FileType == "csv" {
			if _, err := Analyze(r.Filename, data, ""); err != nil {
				t.Fatalf("%s does not analyze: %v", r.Filename, err)
			}
		}
	}
}
