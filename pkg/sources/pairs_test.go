package sources

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCSV = `city1,country1,lat1,lng1,city2,country2,lat2,lng2
Rome,Italy,41.893,12.482,Paris,France,48.857,2.352
Kyoto,Japan,35.011,135.768,Florence,Italy,43.769,11.256
Nowhere,Atlantis,,,Paris,France,48.857,2.352
Bad,Data,abc,12.0,Paris,France,48.857,2.352
Inf,Data,+Inf,12.0,Paris,France,48.857,2.352
`

func TestParsePairs(t *testing.T) {
	records, dropped, err := parsePairs(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parsePairs error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 valid records, got %d", len(records))
	}
	if dropped != 3 {
		t.Errorf("Expected 3 dropped rows, got %d", dropped)
	}
	r := records[0]
	if r.City1 != "Rome" || r.Country2 != "France" || r.Lat1 != 41.893 || r.Lng2 != 2.352 {
		t.Errorf("First record parsed wrong: %+v", r)
	}
}

func TestParsePairsHeaderOrder(t *testing.T) {
	// Columns are resolved by name, not position.
	csv := "lat1,lng1,city1,country1,city2,country2,lat2,lng2\n" +
		"41.893,12.482,Rome,Italy,Paris,France,48.857,2.352\n"
	records, dropped, err := parsePairs(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parsePairs error: %v", err)
	}
	if len(records) != 1 || dropped != 0 {
		t.Fatalf("Got %d records, %d dropped", len(records), dropped)
	}
	if records[0].City1 != "Rome" || records[0].Lat1 != 41.893 {
		t.Errorf("Reordered header parsed wrong: %+v", records[0])
	}
}

func TestParsePairsMissingColumn(t *testing.T) {
	csv := "city1,country1,lat1,lng1\nRome,Italy,41.893,12.482\n"
	if _, _, err := parsePairs(strings.NewReader(csv)); err == nil {
		t.Error("Expected an error for a missing column")
	}
}

func TestLoadPairsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "twin_cities.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	records, dropped, err := LoadPairs(path)
	if err != nil {
		t.Fatalf("LoadPairs error: %v", err)
	}
	if len(records) != 2 || dropped != 3 {
		t.Errorf("LoadPairs = %d records, %d dropped; want 2, 3", len(records), dropped)
	}
}

func TestPairCacheRoundTrip(t *testing.T) {
	cache, err := OpenPairCache(t.TempDir())
	if err != nil {
		t.Fatalf("OpenPairCache error: %v", err)
	}
	defer cache.Close()

	if _, _, ok := cache.Get("missing"); ok {
		t.Error("Get on an empty cache must miss")
	}

	records, dropped, err := parsePairs(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	if err := cache.Put("twin_cities.csv", records, dropped); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	got, gotDropped, ok := cache.Get("twin_cities.csv")
	if !ok {
		t.Fatal("Get after Put must hit")
	}
	if len(got) != len(records) || gotDropped != dropped {
		t.Errorf("Round trip = %d records, %d dropped; want %d, %d", len(got), gotDropped, len(records), dropped)
	}
	if got[0].City1 != "Rome" {
		t.Errorf("Round-tripped record corrupted: %+v", got[0])
	}
}
