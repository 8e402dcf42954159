package mapengine

import (
	"strconv"
	"time"
)

const (
	ZoomMin = 0.5
	ZoomMax = 20.0

	wheelZoomInFactor   = 1.18
	wheelZoomOutFactor  = 0.85
	buttonZoomInFactor  = 1.4
	buttonZoomOutFactor = 0.7

	dragThreshold = 3.0

	// SearchDebounceDelay is how long the raw search term must sit idle
	// before it is committed to the debounced term that drives filtering.
	SearchDebounceDelay = 300 * time.Millisecond
)

// ViewTransform is the user-controlled zoom/pan applied after projection.
type ViewTransform struct {
	Zoom       float64
	PanX, PanY float64
}

// Apply transforms a projected point into screen space.
func (v ViewTransform) Apply(x, y float64) (float64, float64) {
	return x*v.Zoom + v.PanX, y*v.Zoom + v.PanY
}

// Selection is a selected or hovered city together with the pairs touching
// it, in dataset order.
type Selection struct {
	City  *CityNode
	Pairs []PairRecord
}

// SearchState tracks the raw input-box term and the debounced term. Only the
// debounced term filters the dataset; the raw term drives the input display.
type SearchState struct {
	Raw       string
	Debounced string
}

// debounceTimer is a single-slot cancellable schedule. Restarting replaces
// any outstanding deadline, so a keystroke burst yields at most one commit.
type debounceTimer struct {
	pending  bool
	deadline time.Time
}

func (t *debounceTimer) restart(deadline time.Time) {
	t.pending = true
	t.deadline = deadline
}

func (t *debounceTimer) cancel() { t.pending = false }

func (t *debounceTimer) fire(now time.Time) bool {
	if t.pending && !now.Before(t.deadline) {
		t.pending = false
		return true
	}
	return false
}

// Controller owns all interactive state: view transform, selection, hover,
// search and the drag gesture machine. Every mutation goes through a named
// transition; nothing else writes these fields.
type Controller struct {
	View   ViewTransform
	Sel    *Selection
	Hover  *Selection
	Search SearchState

	dragging         bool
	wasDrag          bool
	clearDragPending bool
	startX, startY   float64
	originPanX       float64
	originPanY       float64
	scaleX, scaleY   float64

	deb debounceTimer

	viewRev   uint64
	selRev    uint64
	hoverRev  uint64
	searchRev uint64
}

func NewController() *Controller {
	return &Controller{
		View:   ViewTransform{Zoom: 1},
		scaleX: 1,
		scaleY: 1,
	}
}

// SetViewportScale sets the per-axis ratio of internal canvas units to the
// pointer coordinate units the caller reports. The ebiten engine wires 1:1
// because cursor positions already arrive in logical canvas units.
func (c *Controller) SetViewportScale(sx, sy float64) {
	c.scaleX, c.scaleY = sx, sy
}

// BeginTurn starts a new event-processing turn. The drag flag is cleared
// here rather than in PointerUp so that click handlers running in the same
// turn as the release still observe it.
func (c *Controller) BeginTurn() {
	if c.clearDragPending {
		c.wasDrag = false
		c.clearDragPending = false
	}
}

// Wheel zooms by the scroll direction; pan is unchanged.
func (c *Controller) Wheel(dy float64) {
	if dy == 0 {
		return
	}
	f := wheelZoomOutFactor
	if dy > 0 {
		f = wheelZoomInFactor
	}
	c.setZoom(c.View.Zoom * f)
}

func (c *Controller) ZoomIn()  { c.setZoom(c.View.Zoom * buttonZoomInFactor) }
func (c *Controller) ZoomOut() { c.setZoom(c.View.Zoom * buttonZoomOutFactor) }

// ResetView restores zoom 1 and origin pan.
func (c *Controller) ResetView() {
	c.View = ViewTransform{Zoom: 1}
	c.viewRev++
}

func (c *Controller) setZoom(z float64) {
	if z < ZoomMin {
		z = ZoomMin
	}
	if z > ZoomMax {
		z = ZoomMax
	}
	if z != c.View.Zoom {
		c.View.Zoom = z
		c.viewRev++
	}
}

// PointerDown begins a drag candidate: the gesture only becomes a real drag
// once it moves past the threshold.
func (c *Controller) PointerDown(x, y float64) {
	c.dragging = true
	c.wasDrag = false
	c.clearDragPending = false
	c.startX, c.startY = x, y
	c.originPanX, c.originPanY = c.View.PanX, c.View.PanY
}

// PointerMove updates the drag. Displacement is scaled from pointer units to
// internal canvas units per axis; once it exceeds the threshold the gesture
// is a drag for good and the pan tracks the pointer continuously.
func (c *Controller) PointerMove(x, y float64) {
	if !c.dragging {
		return
	}
	dx := (x - c.startX) * c.scaleX
	dy := (y - c.startY) * c.scaleY
	if !c.wasDrag {
		if dx*dx+dy*dy <= dragThreshold*dragThreshold {
			return
		}
		c.wasDrag = true
	}
	c.View.PanX = c.originPanX + dx
	c.View.PanY = c.originPanY + dy
	c.viewRev++
}

// PointerUp ends the gesture. The drag flag survives until the next turn so
// a release over a marker is not misread as a click-to-select.
func (c *Controller) PointerUp() {
	c.dragging = false
	if c.wasDrag {
		c.clearDragPending = true
	}
}

// Dragging reports whether a pointer gesture is in progress.
func (c *Controller) Dragging() bool { return c.dragging }

// WasDrag reports whether the current or just-finished gesture moved past
// the drag threshold.
func (c *Controller) WasDrag() bool { return c.wasDrag }

// ClickCity toggles selection of a city. Ignored entirely when the gesture
// was a drag. touching must be the pairs that reference the city, in
// dataset order.
func (c *Controller) ClickCity(node *CityNode, touching []PairRecord) {
	if c.wasDrag {
		return
	}
	if c.Sel != nil && c.Sel.City.Key() == node.Key() {
		c.Sel = nil
	} else {
		c.Sel = &Selection{City: node, Pairs: touching}
	}
	c.selRev++
}

// ClickBackground clears the selection unless the gesture was a drag.
func (c *Controller) ClickBackground() {
	if c.wasDrag {
		return
	}
	if c.Sel != nil {
		c.Sel = nil
		c.selRev++
	}
}

// SetHover sets the hover target; independent of selection.
func (c *Controller) SetHover(node *CityNode, touching []PairRecord) {
	if node == nil {
		c.ClearHover()
		return
	}
	if c.Hover != nil && c.Hover.City.Key() == node.Key() {
		return
	}
	c.Hover = &Selection{City: node, Pairs: touching}
	c.hoverRev++
}

func (c *Controller) ClearHover() {
	if c.Hover != nil {
		c.Hover = nil
		c.hoverRev++
	}
}

// SetSearchInput records an edit to the raw term. Every edit restarts the
// debounce delay. A non-empty term clears the current selection immediately;
// filtering itself waits for the debounce commit.
func (c *Controller) SetSearchInput(term string, now time.Time) {
	if term == c.Search.Raw {
		return
	}
	c.Search.Raw = term
	if term != "" && c.Sel != nil {
		c.Sel = nil
		c.selRev++
	}
	c.deb.restart(now.Add(SearchDebounceDelay))
}

// TickDebounce fires the pending debounce if its deadline has passed,
// committing the raw term to the debounced term. Reports whether the
// debounced term changed.
func (c *Controller) TickDebounce(now time.Time) bool {
	if !c.deb.fire(now) {
		return false
	}
	if c.Search.Debounced == c.Search.Raw {
		return false
	}
	c.Search.Debounced = c.Search.Raw
	c.searchRev++
	return true
}

// DebouncePending reports whether a commit is still scheduled.
func (c *Controller) DebouncePending() bool { return c.deb.pending }

// Close cancels any outstanding debounce so nothing fires after shutdown.
func (c *Controller) Close() { c.deb.cancel() }

// SelKey identifies the current selection for cache keys.
func (c *Controller) SelKey() string {
	if c.Sel == nil {
		return "-"
	}
	return c.Sel.City.Key()
}

// HoverKey identifies the current hover target for cache keys.
func (c *Controller) HoverKey() string {
	if c.Hover == nil {
		return "-"
	}
	return c.Hover.City.Key()
}

// ViewKey identifies the current view transform revision for cache keys.
func (c *Controller) ViewKey() string {
	return strconv.FormatUint(c.viewRev, 10)
}
