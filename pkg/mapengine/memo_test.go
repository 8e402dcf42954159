package mapengine

import (
	"testing"
	"time"
)

func TestMemoRecomputesOnlyOnKeyChange(t *testing.T) {
	var m memo[int]
	computes := 0
	compute := func() int {
		computes++
		return computes
	}

	if v := m.get("a", compute); v != 1 {
		t.Errorf("First get = %d; want 1", v)
	}
	if v := m.get("a", compute); v != 1 {
		t.Errorf("Cached get = %d; want 1", v)
	}
	if computes != 1 {
		t.Errorf("Compute ran %d times for one key; want 1", computes)
	}
	if v := m.get("b", compute); v != 2 {
		t.Errorf("Get after key change = %d; want 2", v)
	}
	m.invalidate()
	if v := m.get("b", compute); v != 3 {
		t.Errorf("Get after invalidate = %d; want 3", v)
	}
}

// The derived artifacts must be reused across state changes that are not
// among their declared inputs: zooming and hovering must not rebuild the
// filtered set or the node map.
func TestDerivedStateReusedAcrossUnrelatedChanges(t *testing.T) {
	e := NewEngine(1920, 1080, 300.0)
	e.SetDataset(pairFixture(), 0)

	filtered := e.filteredPairs()
	nodes := e.nodeSet()
	agg := e.baseAggregate()

	e.ctrl.Wheel(1)
	e.ctrl.PointerDown(0, 0)
	e.ctrl.PointerMove(50, 50)
	e.ctrl.PointerUp()
	e.ctrl.SetHover(testNode("B", 20, 20), nil)

	if &e.filteredPairs()[0] != &filtered[0] {
		t.Error("Filtered pairs rebuilt by a view/hover change")
	}
	if len(e.nodeSet()) != len(nodes) || e.nodeSet()[CoordKey(10, 10)] != nodes[CoordKey(10, 10)] {
		t.Error("Node set rebuilt by a view/hover change")
	}
	if e.baseAggregate() != agg {
		t.Error("Base aggregate rebuilt by a view/hover change")
	}

	// A committed search term is a declared input: now it must recompute.
	now := time.Now()
	e.ctrl.SetSearchInput("Y", now)
	e.ctrl.TickDebounce(now.Add(SearchDebounceDelay))
	if len(e.filteredPairs()) != 1 {
		t.Errorf("Filter on committed term returned %d pairs; want 1", len(e.filteredPairs()))
	}
	if e.baseAggregate() == agg {
		t.Error("Base aggregate must rebuild when the filtered set changes")
	}
}

func TestSelectionScenario(t *testing.T) {
	e := NewEngine(1920, 1080, 300.0)
	e.SetDataset(pairFixture(), 0)

	a := e.nodeSet()[CoordKey(10, 10)]
	if a == nil {
		t.Fatal("Node A missing")
	}
	e.ctrl.ClickCity(a, PairsTouching(e.filteredPairs(), a))

	sel := e.ctrl.Sel
	if sel == nil || len(sel.Pairs) != 2 {
		t.Fatalf("Selecting A must yield 2 pairs, got %+v", sel)
	}
	rects := e.labelRects()
	if len(rects) != 3 {
		t.Fatalf("Expected labels for A, B, C; got %d", len(rects))
	}
	if rects[0].Text != "A" {
		t.Errorf("First label must be the selected city, got %q", rects[0].Text)
	}
	names := map[string]bool{}
	for _, r := range rects {
		names[r.Text] = true
	}
	for _, want := range []string{"A", "B", "C"} {
		if !names[want] {
			t.Errorf("Missing label for %q", want)
		}
	}
}

func TestSearchScenario(t *testing.T) {
	e := NewEngine(1920, 1080, 300.0)
	e.SetDataset(pairFixture(), 0)

	now := time.Now()
	e.ctrl.SetSearchInput("zz", now)
	e.ctrl.TickDebounce(now.Add(SearchDebounceDelay))

	if len(e.filteredPairs()) != 0 {
		t.Errorf("Non-matching search must yield an empty set, got %d", len(e.filteredPairs()))
	}
	if len(e.visibleNodes()) != 0 {
		t.Errorf("Non-matching search must render no markers, got %d", len(e.visibleNodes()))
	}
	if e.baseAggregate().Len() != 0 {
		t.Errorf("Non-matching search must render no edges, got %d", e.baseAggregate().Len())
	}
}

func TestVisibleNodesConnectionThreshold(t *testing.T) {
	e := NewEngine(1920, 1080, 300.0)
	e.SetDataset(pairFixture(), 0)

	// A has 2 connections, B and C have 1: none reach the threshold of 3.
	if got := len(e.visibleNodes()); got != 0 {
		t.Errorf("Without a search, low-degree markers must hide; got %d", got)
	}

	// An active search shows every matched city regardless of degree.
	now := time.Now()
	e.ctrl.SetSearchInput("X", now)
	e.ctrl.TickDebounce(now.Add(SearchDebounceDelay))
	if got := len(e.visibleNodes()); got != 3 {
		t.Errorf("Search must show all matched cities; got %d, want 3", got)
	}
}
