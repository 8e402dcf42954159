package sources

const (
	// DefaultPairsPath is where the acquisition pipeline drops its output.
	DefaultPairsPath = "data/twin_cities.csv"

	// WorldBoundariesURL serves the country polygon GeoJSON drawn as the
	// map background.
	WorldBoundariesURL = "https://raw.githubusercontent.com/johan/world.geo.json/master/countries.geo.json"
)
