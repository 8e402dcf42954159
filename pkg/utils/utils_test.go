package utils

import "testing"

func TestCacheFileName(t *testing.T) {
	tests := []struct {
		url, prefix string
		want        string
	}{
		{"https://example.com/data/twin_cities.csv", "[pairs]", "pairs_twin_cities.csv"},
		{"https://example.com/countries.geo.json", "[boundaries]", "boundaries_countries.geo.json"},
		{"https://example.com/countries.geo.json", "", "countries.geo.json"},
		{"https://example.com/a/b/file.json", "[two words]", "two_words_file.json"},
	}
	for _, tt := range tests {
		if got := CacheFileName(tt.url, tt.prefix); got != tt.want {
			t.Errorf("CacheFileName(%q, %q) = %q, want %q", tt.url, tt.prefix, got, tt.want)
		}
	}
}
