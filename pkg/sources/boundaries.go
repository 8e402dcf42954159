package sources

import (
	"fmt"
	"io"

	geojson "github.com/paulmach/go.geojson"

	"github.com/hekman/twin-cities-map/pkg/utils"
)

// FetchBoundaries downloads and parses the world country polygons. The
// download goes through the local cache. Callers treat failure as non-fatal:
// the map renders without country shapes.
func FetchBoundaries(url string) (*geojson.FeatureCollection, error) {
	r, err := utils.GetCachedReader(url, "[boundaries]")
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing boundary geojson: %w", err)
	}
	return fc, nil
}
