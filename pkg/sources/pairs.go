// Package sources is the boundary to the external datasets: the geocoded
// twin-city pair table produced by the acquisition pipeline and the world
// boundary polygons. Everything past this package sees validated records
// only.
package sources

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/hekman/twin-cities-map/pkg/mapengine"
	"github.com/hekman/twin-cities-map/pkg/utils"
)

var pairColumns = []string{"city1", "country1", "lat1", "lng1", "city2", "country2", "lat2", "lng2"}

// LoadPairs reads the pair CSV from a local path or URL. Rows with missing
// or non-numeric coordinates are dropped and counted, never surfaced as
// errors; the visualization treats them as a normal filtered-out case.
func LoadPairs(source string) (records []mapengine.PairRecord, dropped int, err error) {
	r, err := openSource(source)
	if err != nil {
		return nil, 0, err
	}
	defer r.Close()
	return parsePairs(r)
}

func openSource(source string) (io.ReadCloser, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return utils.GetCachedReader(source, "[pairs]")
	}
	return os.Open(source)
}

func parsePairs(r io.Reader) ([]mapengine.PairRecord, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("reading header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range pairColumns {
		if _, ok := col[name]; !ok {
			return nil, 0, fmt.Errorf("missing column %q", name)
		}
	}

	var records []mapengine.PairRecord
	dropped := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			dropped++
			continue
		}
		rec, ok := parseRow(row, col)
		if !ok {
			dropped++
			continue
		}
		records = append(records, rec)
	}
	return records, dropped, nil
}

func parseRow(row []string, col map[string]int) (mapengine.PairRecord, bool) {
	field := func(name string) (string, bool) {
		i := col[name]
		if i >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[i]), true
	}
	coord := func(name string) (float64, bool) {
		s, ok := field(name)
		if !ok || s == "" {
			return 0, false
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}

	city1, ok1 := field("city1")
	country1, ok2 := field("country1")
	city2, ok3 := field("city2")
	country2, ok4 := field("country2")
	lat1, ok5 := coord("lat1")
	lng1, ok6 := coord("lng1")
	lat2, ok7 := coord("lat2")
	lng2, ok8 := coord("lng2")
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6 && ok7 && ok8) {
		return mapengine.PairRecord{}, false
	}
	return mapengine.PairRecord{
		City1: city1, Country1: country1, Lat1: lat1, Lng1: lng1,
		City2: city2, Country2: country2, Lat2: lat2, Lng2: lng2,
	}, true
}
