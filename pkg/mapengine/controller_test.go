package mapengine

import (
	"testing"
	"time"
)

func testNode(name string, lat, lng float64) *CityNode {
	return &CityNode{Name: name, Lat: lat, Lng: lng}
}

func TestZoomClamp(t *testing.T) {
	c := NewController()
	for i := 0; i < 100; i++ {
		c.Wheel(1)
	}
	if c.View.Zoom != ZoomMax {
		t.Errorf("Zoom after 100 wheel-ups = %f; want %f", c.View.Zoom, ZoomMax)
	}
	for i := 0; i < 300; i++ {
		c.Wheel(-1)
	}
	if c.View.Zoom != ZoomMin {
		t.Errorf("Zoom after 300 wheel-downs = %f; want %f", c.View.Zoom, ZoomMin)
	}
	for i := 0; i < 50; i++ {
		c.ZoomIn()
	}
	if c.View.Zoom != ZoomMax {
		t.Errorf("Zoom after 50 button zoom-ins = %f; want %f", c.View.Zoom, ZoomMax)
	}
}

func TestResetView(t *testing.T) {
	c := NewController()
	c.Wheel(1)
	c.PointerDown(100, 100)
	c.PointerMove(150, 160)
	c.PointerUp()
	c.ResetView()
	if c.View.Zoom != 1 || c.View.PanX != 0 || c.View.PanY != 0 {
		t.Errorf("ResetView left %+v", c.View)
	}
}

func TestClickTogglesSelection(t *testing.T) {
	c := NewController()
	a := testNode("A", 10, 10)
	b := testNode("B", 20, 20)
	pairs := pairFixture()

	c.ClickCity(a, pairs)
	if c.Sel == nil || c.Sel.City != a || len(c.Sel.Pairs) != 2 {
		t.Fatalf("Selecting A failed: %+v", c.Sel)
	}
	c.ClickCity(a, pairs)
	if c.Sel != nil {
		t.Error("Clicking the selected city must clear the selection")
	}
	c.ClickCity(a, pairs)
	c.ClickCity(b, pairs[:1])
	if c.Sel == nil || c.Sel.City != b {
		t.Errorf("Clicking another city must switch selection, got %+v", c.Sel)
	}
	c.ClickBackground()
	if c.Sel != nil {
		t.Error("Background click must clear selection")
	}
}

func TestDragSuppressesClick(t *testing.T) {
	c := NewController()
	a := testNode("A", 10, 10)

	// Down, move past the 3-unit threshold, up: not a click.
	c.PointerDown(100, 100)
	c.PointerMove(110, 110)
	c.PointerUp()
	c.ClickCity(a, nil)
	if c.Sel != nil {
		t.Error("Drag release must not toggle selection")
	}
	if !c.WasDrag() {
		t.Error("Drag flag must survive until the next turn")
	}
	c.BeginTurn()
	if c.WasDrag() {
		t.Error("Drag flag must clear at the start of the next turn")
	}

	// Down and up with no threshold-exceeding move: a clean click.
	c.BeginTurn()
	c.PointerDown(100, 100)
	c.PointerMove(101, 101)
	c.PointerUp()
	c.ClickCity(a, nil)
	if c.Sel == nil {
		t.Error("Clean click must toggle selection")
	}
}

func TestDragUpdatesPan(t *testing.T) {
	c := NewController()
	c.PointerDown(100, 100)
	c.PointerMove(101, 100)
	if c.View.PanX != 0 || c.View.PanY != 0 {
		t.Error("Pan must not move before the drag threshold")
	}
	c.PointerMove(150, 130)
	if c.View.PanX != 50 || c.View.PanY != 30 {
		t.Errorf("Pan = (%f, %f); want (50, 30)", c.View.PanX, c.View.PanY)
	}
	c.PointerUp()
}

func TestViewportScaleAppliesPerAxis(t *testing.T) {
	c := NewController()
	c.SetViewportScale(2, 0.5)
	c.PointerDown(0, 0)
	c.PointerMove(10, 10)
	if c.View.PanX != 20 || c.View.PanY != 5 {
		t.Errorf("Scaled pan = (%f, %f); want (20, 5)", c.View.PanX, c.View.PanY)
	}
}

func TestSearchDebounce(t *testing.T) {
	c := NewController()
	t0 := time.Now()

	c.SetSearchInput("x", t0)
	if c.Search.Raw != "x" || c.Search.Debounced != "" {
		t.Fatalf("Raw term must update immediately, debounced must lag: %+v", c.Search)
	}
	if c.TickDebounce(t0.Add(100 * time.Millisecond)) {
		t.Error("Debounce fired before its deadline")
	}

	// A second edit restarts the delay.
	c.SetSearchInput("xy", t0.Add(200*time.Millisecond))
	if c.TickDebounce(t0.Add(400 * time.Millisecond)) {
		t.Error("Debounce fired before the restarted deadline")
	}
	if !c.TickDebounce(t0.Add(600 * time.Millisecond)) {
		t.Fatal("Debounce did not fire after the idle delay")
	}
	if c.Search.Debounced != "xy" {
		t.Errorf("Debounced = %q; want %q", c.Search.Debounced, "xy")
	}
	if c.TickDebounce(t0.Add(700 * time.Millisecond)) {
		t.Error("Debounce fired twice for one keystroke burst")
	}
}

func TestSearchClearsSelection(t *testing.T) {
	c := NewController()
	c.ClickCity(testNode("A", 10, 10), nil)
	c.SetSearchInput("berlin", time.Now())
	if c.Sel != nil {
		t.Error("A non-empty search term must clear the selection")
	}
}

func TestCloseCancelsDebounce(t *testing.T) {
	c := NewController()
	t0 := time.Now()
	c.SetSearchInput("x", t0)
	if !c.DebouncePending() {
		t.Fatal("Expected a pending debounce")
	}
	c.Close()
	if c.DebouncePending() {
		t.Error("Close must cancel the pending debounce")
	}
	if c.TickDebounce(t0.Add(time.Second)) {
		t.Error("Cancelled debounce must never fire")
	}
}

func TestHoverIndependentOfSelection(t *testing.T) {
	c := NewController()
	a := testNode("A", 10, 10)
	b := testNode("B", 20, 20)

	c.ClickCity(a, nil)
	c.SetHover(b, nil)
	if c.Sel == nil || c.Hover == nil {
		t.Fatal("Selection and hover must coexist")
	}
	c.ClearHover()
	if c.Sel == nil {
		t.Error("Clearing hover must not clear selection")
	}
	if c.Hover != nil {
		t.Error("Hover not cleared")
	}
}
