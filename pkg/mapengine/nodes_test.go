package mapengine

import "testing"

func pairFixture() []PairRecord {
	return []PairRecord{
		{City1: "A", Country1: "X", Lat1: 10, Lng1: 10, City2: "B", Country2: "Y", Lat2: 20, Lng2: 20},
		{City1: "A", Country1: "X", Lat1: 10, Lng1: 10, City2: "C", Country2: "Z", Lat2: 30, Lng2: 30},
	}
}

func TestBuildNodesCounts(t *testing.T) {
	nodes := BuildNodes(pairFixture())

	if len(nodes) != 3 {
		t.Fatalf("Expected 3 nodes, got %d", len(nodes))
	}
	tests := []struct {
		key  string
		name string
		want int
	}{
		{CoordKey(10, 10), "A", 2},
		{CoordKey(20, 20), "B", 1},
		{CoordKey(30, 30), "C", 1},
	}
	for _, tt := range tests {
		n, ok := nodes[tt.key]
		if !ok {
			t.Errorf("Missing node for key %s", tt.key)
			continue
		}
		if n.Name != tt.name || n.Connections != tt.want {
			t.Errorf("Node %s = {%s, %d}; want {%s, %d}", tt.key, n.Name, n.Connections, tt.name, tt.want)
		}
	}
}

func TestBuildNodesConnectionSum(t *testing.T) {
	pairs := append(pairFixture(),
		// Self-loop: both endpoints on the same coordinate.
		PairRecord{City1: "D", Country1: "W", Lat1: 40, Lng1: 40, City2: "D", Country2: "W", Lat2: 40, Lng2: 40},
	)
	nodes := BuildNodes(pairs)

	sum := 0
	for _, n := range nodes {
		sum += n.Connections
	}
	if want := 2 * len(pairs); sum != want {
		t.Errorf("Sum of connection counts = %d; want %d", sum, want)
	}
	if n := nodes[CoordKey(40, 40)]; n == nil || n.Connections != 2 {
		t.Errorf("Self-loop node should have 2 connections, got %+v", n)
	}
}

func TestCoordKeyIdentity(t *testing.T) {
	if CoordKey(10.5, -3.25) != CoordKey(10.5, -3.25) {
		t.Error("Identical coordinates must yield identical keys")
	}
	if CoordKey(10, 20) == CoordKey(20, 10) {
		t.Error("Swapped coordinates must not collide")
	}
}
