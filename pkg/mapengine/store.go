// Package mapengine implements the interactive twin-city world map: the
// pair store, projection, node dedup, path aggregation, label placement,
// the interaction state machine and the ebiten renderer that composes them.
package mapengine

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// PairRecord is one geocoded twin-city relationship. Records are immutable
// once loaded; rows with missing or non-finite coordinates never get this far
// (they are dropped by the loader and only counted).
type PairRecord struct {
	City1    string
	Country1 string
	Lat1     float64
	Lng1     float64
	City2    string
	Country2 string
	Lat2     float64
	Lng2     float64
}

// PairStore holds the loaded dataset and answers raw and search-filtered
// views over it. The haystack for each row is precomputed once so that
// repeated filtering only pays for the match itself.
type PairStore struct {
	records   []PairRecord
	haystacks [][]byte
	dropped   int
}

func NewPairStore(records []PairRecord, dropped int) *PairStore {
	hs := make([][]byte, len(records))
	for i, r := range records {
		hs[i] = []byte(strings.ToLower(r.City1 + "|" + r.Country1 + "|" + r.City2 + "|" + r.Country2))
	}
	return &PairStore{records: records, haystacks: hs, dropped: dropped}
}

// Records returns the unfiltered dataset.
func (s *PairStore) Records() []PairRecord { return s.records }

// DroppedRows reports how many rows the loader discarded for missing or
// unparseable coordinates. Diagnostic only; it never affects rendering.
func (s *PairStore) DroppedRows() int { return s.dropped }

// Filter returns the records whose city or country fields contain term,
// case-insensitively. An empty term returns the full set unchanged.
func (s *PairStore) Filter(term string) []PairRecord {
	if term == "" {
		return s.records
	}
	m := ahocorasick.NewStringMatcher([]string{strings.ToLower(term)})
	var out []PairRecord
	for i := range s.records {
		if len(m.Match(s.haystacks[i])) > 0 {
			out = append(out, s.records[i])
		}
	}
	return out
}
