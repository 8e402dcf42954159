package mapengine

import (
	"bytes"
	"sort"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	geojson "github.com/paulmach/go.geojson"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// Only markers with at least this many connections are shown when no search
// is active; a search shows every matched city regardless.
const minMarkerConnections = 3

type uiRect struct {
	x, y, w, h float64
}

func (r uiRect) contains(px, py float64) bool {
	return px >= r.x && px < r.x+r.w && py >= r.y && py < r.y+r.h
}

// Engine is the ebiten game: it owns the dataset, the interaction
// controller and every derived artifact. All derived state is memoized
// against the identity of its inputs and recomputes only when those change.
type Engine struct {
	Width, Height int

	proj  *Projection
	ctrl  *Controller
	store *PairStore

	bg          *ebiten.Image
	totalCities int

	fontSource *text.GoTextFaceSource
	monoSource *text.GoTextFaceSource
	whiteSub   *ebiten.Image

	zoomInBtn  uiRect
	zoomOutBtn uiRect
	resetBtn   uiRect
	searchBox  uiRect

	filteredMemo memo[[]PairRecord]
	nodesMemo    memo[map[string]*CityNode]
	visibleMemo  memo[[]*CityNode]
	twinKeysMemo memo[map[string]bool]
	baseAggMemo  memo[*PathAggregate]
	selAggMemo   memo[*PathAggregate]
	hovAggMemo   memo[*PathAggregate]
	labelsMemo   memo[[]LabelRect]
	baseMeshMemo memo[*strokeMesh]
	selMeshMemo  memo[*strokeMesh]
	hovMeshMemo  memo[*strokeMesh]
}

func NewEngine(width, height int, scale float64) *Engine {
	reg, _ := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	mono, _ := text.NewGoTextFaceSource(bytes.NewReader(gomono.TTF))

	e := &Engine{
		Width:      width,
		Height:     height,
		proj:       NewProjection(width, height, scale),
		ctrl:       NewController(),
		store:      NewPairStore(nil, 0),
		fontSource: reg,
		monoSource: mono,
	}
	// Cursor positions arrive in logical canvas units already.
	e.ctrl.SetViewportScale(1, 1)

	const btn, pad = 36.0, 8.0
	e.zoomInBtn = uiRect{x: 20, y: 20, w: btn, h: btn}
	e.zoomOutBtn = uiRect{x: 20, y: 20 + btn + pad, w: btn, h: btn}
	e.resetBtn = uiRect{x: 20, y: 20 + 2*(btn+pad), w: btn, h: btn}
	e.searchBox = uiRect{x: float64(width) - 340, y: 20, w: 320, h: 40}
	return e
}

// SetDataset installs the loaded pair records. The total-cities statistic is
// computed from the unfiltered set here, independently of any later filter.
func (e *Engine) SetDataset(records []PairRecord, dropped int) {
	e.store = NewPairStore(records, dropped)
	e.totalCities = len(BuildNodes(records))
	e.invalidateDerived()
}

// SetBoundaries rasterizes the country polygons into the background layer.
// A nil collection renders a plain background; boundary availability never
// blocks the viewer.
func (e *Engine) SetBoundaries(fc *geojson.FeatureCollection) {
	e.bg = RenderBoundaries(fc, e.proj, e.Width, e.Height)
}

func (e *Engine) invalidateDerived() {
	e.filteredMemo.invalidate()
	e.nodesMemo.invalidate()
	e.visibleMemo.invalidate()
	e.twinKeysMemo.invalidate()
	e.baseAggMemo.invalidate()
	e.selAggMemo.invalidate()
	e.hovAggMemo.invalidate()
	e.labelsMemo.invalidate()
	e.baseMeshMemo.invalidate()
	e.selMeshMemo.invalidate()
	e.hovMeshMemo.invalidate()
}

// Close cancels the pending debounce; call after the game loop returns.
func (e *Engine) Close() { e.ctrl.Close() }

func (e *Engine) Layout(outsideWidth, outsideHeight int) (int, int) {
	return e.Width, e.Height
}

func (e *Engine) Update() error {
	now := time.Now()
	c := e.ctrl
	c.BeginTurn()

	if _, wy := ebiten.Wheel(); wy != 0 {
		c.Wheel(wy)
	}

	mx, my := ebiten.CursorPosition()
	fx, fy := float64(mx), float64(my)

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) ||
		inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonMiddle) {
		c.PointerDown(fx, fy)
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) ||
		ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle) {
		c.PointerMove(fx, fy)
	}

	leftUp := inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)
	if leftUp || inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonMiddle) {
		c.PointerUp()
		if leftUp {
			e.handleClick(fx, fy)
		}
	}

	e.handleSearchInput(now)
	c.TickDebounce(now)

	if !c.Dragging() {
		if n := e.markerAt(fx, fy); n != nil {
			c.SetHover(n, PairsTouching(e.filteredPairs(), n))
		} else {
			c.ClearHover()
		}
	}
	return nil
}

func (e *Engine) handleClick(fx, fy float64) {
	c := e.ctrl
	if c.WasDrag() {
		return
	}
	switch {
	case e.zoomInBtn.contains(fx, fy):
		c.ZoomIn()
	case e.zoomOutBtn.contains(fx, fy):
		c.ZoomOut()
	case e.resetBtn.contains(fx, fy):
		c.ResetView()
	default:
		if n := e.markerAt(fx, fy); n != nil {
			c.ClickCity(n, PairsTouching(e.filteredPairs(), n))
		} else {
			c.ClickBackground()
		}
	}
}

func (e *Engine) handleSearchInput(now time.Time) {
	c := e.ctrl
	raw := c.Search.Raw
	for _, r := range ebiten.AppendInputChars(nil) {
		if r >= ' ' {
			raw += string(r)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) && raw != "" {
		rs := []rune(raw)
		raw = string(rs[:len(rs)-1])
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		raw = ""
	}
	if raw != c.Search.Raw {
		c.SetSearchInput(raw, now)
	}
}

// markerAt returns the visible city marker under the cursor, preferring the
// closest center when markers overlap.
func (e *Engine) markerAt(fx, fy float64) *CityNode {
	var best *CityNode
	bestDist := 0.0
	for _, n := range e.visibleNodes() {
		sx, sy, ok := e.nodeScreenPos(n)
		if !ok {
			continue
		}
		r := float64(e.markerRadius(n)) + 2
		if r < 6 {
			r = 6
		}
		dx, dy := fx-sx, fy-sy
		d := dx*dx + dy*dy
		if d <= r*r && (best == nil || d < bestDist) {
			best = n
			bestDist = d
		}
	}
	return best
}

func (e *Engine) nodeScreenPos(n *CityNode) (float64, float64, bool) {
	x, y, ok := e.proj.Project(n.Lng, n.Lat)
	if !ok {
		return 0, 0, false
	}
	sx, sy := e.ctrl.View.Apply(x, y)
	return sx, sy, true
}

// Derived views. Each is keyed by the identity of its declared inputs only.

func (e *Engine) filteredPairs() []PairRecord {
	term := e.ctrl.Search.Debounced
	return e.filteredMemo.get(term, func() []PairRecord {
		return e.store.Filter(term)
	})
}

func (e *Engine) nodeSet() map[string]*CityNode {
	term := e.ctrl.Search.Debounced
	return e.nodesMemo.get(term, func() map[string]*CityNode {
		return BuildNodes(e.filteredPairs())
	})
}

func (e *Engine) visibleNodes() []*CityNode {
	term := e.ctrl.Search.Debounced
	return e.visibleMemo.get(term, func() []*CityNode {
		nodes := e.nodeSet()
		out := make([]*CityNode, 0, len(nodes))
		for _, n := range nodes {
			if term == "" && n.Connections < minMarkerConnections {
				continue
			}
			out = append(out, n)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
		return out
	})
}

// twinKeys is the selected city and its direct twins; everything else dims.
func (e *Engine) twinKeys() map[string]bool {
	c := e.ctrl
	return e.twinKeysMemo.get(c.SelKey(), func() map[string]bool {
		if c.Sel == nil {
			return nil
		}
		keys := map[string]bool{c.Sel.City.Key(): true}
		for _, p := range c.Sel.Pairs {
			keys[CoordKey(p.Lat1, p.Lng1)] = true
			keys[CoordKey(p.Lat2, p.Lng2)] = true
		}
		return keys
	})
}

func (e *Engine) baseAggregate() *PathAggregate {
	term := e.ctrl.Search.Debounced
	return e.baseAggMemo.get(term, func() *PathAggregate {
		return AggregatePath(e.filteredPairs(), e.proj)
	})
}

func (e *Engine) selAggregate() *PathAggregate {
	c := e.ctrl
	return e.selAggMemo.get(c.Search.Debounced+"|"+c.SelKey(), func() *PathAggregate {
		if c.Sel == nil {
			return AggregatePath(nil, e.proj)
		}
		return AggregatePath(c.Sel.Pairs, e.proj)
	})
}

func (e *Engine) hovAggregate() *PathAggregate {
	c := e.ctrl
	return e.hovAggMemo.get(c.Search.Debounced+"|"+c.HoverKey(), func() *PathAggregate {
		if c.Hover == nil {
			return AggregatePath(nil, e.proj)
		}
		return AggregatePath(c.Hover.Pairs, e.proj)
	})
}

// labelRects places labels for whichever mode is active: a selection
// suppresses search labels entirely.
func (e *Engine) labelRects() []LabelRect {
	c := e.ctrl
	var key string
	switch {
	case c.Sel != nil:
		key = "sel|" + c.SelKey() + "|" + c.Search.Debounced + "|" + c.ViewKey()
	case c.Search.Debounced != "":
		key = "search|" + c.Search.Debounced + "|" + c.ViewKey()
	default:
		key = "none"
	}
	return e.labelsMemo.get(key, func() []LabelRect {
		return PlaceLabels(e.labelAnchors())
	})
}

func (e *Engine) labelAnchors() []LabelAnchor {
	c := e.ctrl
	if c.Sel != nil {
		return e.selectionAnchors(c.Sel)
	}
	if c.Search.Debounced != "" {
		return e.searchAnchors()
	}
	return nil
}

// selectionAnchors yields the selected city first (it keeps its preferred
// placement) and then its twins in dataset order.
func (e *Engine) selectionAnchors(sel *Selection) []LabelAnchor {
	selKey := sel.City.Key()
	anchors := make([]LabelAnchor, 0, len(sel.Pairs)+1)
	if sx, sy, ok := e.nodeScreenPos(sel.City); ok {
		anchors = append(anchors, LabelAnchor{X: sx, Y: sy, Text: sel.City.Name})
	}
	seen := map[string]bool{selKey: true}
	for _, p := range sel.Pairs {
		for _, end := range [2]struct {
			name     string
			lat, lng float64
		}{
			{p.City1, p.Lat1, p.Lng1},
			{p.City2, p.Lat2, p.Lng2},
		} {
			key := CoordKey(end.lat, end.lng)
			if seen[key] {
				continue
			}
			seen[key] = true
			x, y, ok := e.proj.Project(end.lng, end.lat)
			if !ok {
				continue
			}
			sx, sy := e.ctrl.View.Apply(x, y)
			anchors = append(anchors, LabelAnchor{X: sx, Y: sy, Text: end.name})
		}
	}
	return anchors
}

// searchAnchors yields every matched city in dataset order of first
// appearance.
func (e *Engine) searchAnchors() []LabelAnchor {
	var anchors []LabelAnchor
	seen := make(map[string]bool)
	for _, p := range e.filteredPairs() {
		for _, end := range [2]struct {
			name     string
			lat, lng float64
		}{
			{p.City1, p.Lat1, p.Lng1},
			{p.City2, p.Lat2, p.Lng2},
		} {
			key := CoordKey(end.lat, end.lng)
			if seen[key] {
				continue
			}
			seen[key] = true
			x, y, ok := e.proj.Project(end.lng, end.lat)
			if !ok {
				continue
			}
			sx, sy := e.ctrl.View.Apply(x, y)
			anchors = append(anchors, LabelAnchor{X: sx, Y: sy, Text: end.name})
		}
	}
	return anchors
}
