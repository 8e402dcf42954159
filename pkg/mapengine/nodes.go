package mapengine

import "strconv"

// CityNode is a deduplicated city endpoint. Identity is the exact coordinate
// pair: two records that reference the same (lat, lng) are the same node even
// if their name spellings differ.
type CityNode struct {
	Name        string
	Country     string
	Lat         float64
	Lng         float64
	Connections int
}

// CoordKey serializes a coordinate pair into the composite identity key used
// for node dedup and selection comparison.
func CoordKey(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
}

// Key returns the node's coordinate identity key.
func (n *CityNode) Key() string { return CoordKey(n.Lat, n.Lng) }

// BuildNodes deduplicates the endpoints of pairs into city nodes, counting
// connections for both endpoints of every record. A self-loop (both endpoints
// on the same coordinate) increments that single node twice. Iteration order
// of the result is not specified.
func BuildNodes(pairs []PairRecord) map[string]*CityNode {
	nodes := make(map[string]*CityNode, len(pairs))
	for _, p := range pairs {
		a := resolveNode(nodes, p.City1, p.Country1, p.Lat1, p.Lng1)
		b := resolveNode(nodes, p.City2, p.Country2, p.Lat2, p.Lng2)
		a.Connections++
		b.Connections++
	}
	return nodes
}

func resolveNode(nodes map[string]*CityNode, name, country string, lat, lng float64) *CityNode {
	key := CoordKey(lat, lng)
	n, ok := nodes[key]
	if !ok {
		n = &CityNode{Name: name, Country: country, Lat: lat, Lng: lng}
		nodes[key] = n
	}
	return n
}
