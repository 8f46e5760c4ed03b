package devbackend

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"strings"
	"time"

	"filedesk/internal/model"
)

var (
	regions  = []string{"north", "south", "east", "west"}
	products = []string{"widget", "gadget", "gizmo", "doohickey"}
	sensors  = []string{"t-101", "t-102", "h-201", "p-301"}
)

// Seed fills store with a few sample files: two CSVs, a photo and a note.
func Seed(store *Store, rng *rand.Rand) {
	store.Put(model.FileRecord{Filename: "sales.csv", Title: "Quarterly sales", Description: "units and revenue per region", FileType: model.FileTypeCSV}, genSales(rng, 40))
	store.Put(model.FileRecord{Filename: "sensors.csv", Title: "Sensor readings", FileType: model.FileTypeCSV}, genSensors(rng, 60))
	store.Put(model.FileRecord{Filename: "badge.png", Title: "Team badge", Description: "generated image", FileType: model.FileTypePhoto}, genBadge(rng))
	store.Put(model.FileRecord{Filename: "notes.txt", Title: "Release notes", FileType: model.FileTypeOther}, []byte("first release of the dataset\n"))
}

func genSales(rng *rand.Rand, n int) []byte {
	var b strings.Builder
	b.WriteString("region,product,units,revenue\n")
	for i := 0; i < n; i++ {
		units := 1 + rng.Intn(250)
		price := 2.5 + rng.Float64()*20
		fmt.Fprintf(&b, "%s,%s,%d,%.2f\n", pick(rng, regions), pick(rng, products), units, float64(units)*price)
	}
	return []byte(b.String())
}

func genSensors(rng *rand.Rand, n int) []byte {
	var b strings.Builder
	b.WriteString("ts,sensor,value,battery\n")
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		t = t.Add(time.Duration(30+rng.Intn(90)) * time.Second)
		fmt.Fprintf(&b, "%s,%s,%.3f,%d\n", t.Format(time.RFC3339), pick(rng, sensors), 15+rng.NormFloat64()*4, 20+rng.Intn(80))
	}
	return []byte(b.String())
}

func genBadge(rng *rand.Rand) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	c := color.RGBA{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)), 255}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if (x/4+y/4)%2 == 0 {
				img.Set(x, y, c)
			}
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func pick(rng *rand.Rand, items []string) string { return items[rng.Intn(len(items))] }
