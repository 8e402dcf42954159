package mapengine

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/biter777/countries"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	colorOcean   = color.RGBA{8, 10, 15, 255}
	colorLand    = color.RGBA{26, 29, 35, 255}
	colorOutline = color.RGBA{36, 42, 53, 255}

	ColorEdge      = color.RGBA{96, 149, 255, 255}
	ColorSelection = color.RGBA{255, 196, 64, 255}
	ColorHover     = color.RGBA{64, 255, 196, 255}
	ColorMarker    = color.RGBA{255, 120, 80, 255}
	ColorText      = color.RGBA{230, 234, 240, 255}
)

const (
	baseEdgeAlpha = 0.16
	selEdgeAlpha  = 0.85
	hovEdgeAlpha  = 1.0
	dimAlpha      = 0.25
)

// strokeMesh is one aggregate layer triangulated once for its current
// geometry and view transform, then drawn with a single DrawTriangles call.
type strokeMesh struct {
	vs []ebiten.Vertex
	is []uint16
}

func (e *Engine) buildMesh(agg *PathAggregate, width float32, clr color.RGBA, alpha float32) *strokeMesh {
	if agg.Len() == 0 {
		return &strokeMesh{}
	}
	var p vector.Path
	v := e.ctrl.View
	for _, s := range agg.segs {
		x1, y1 := v.Apply(s.X1, s.Y1)
		x2, y2 := v.Apply(s.X2, s.Y2)
		p.MoveTo(float32(x1), float32(y1))
		p.LineTo(float32(x2), float32(y2))
	}
	op := &vector.StrokeOptions{}
	op.Width = width
	vs, is := p.AppendVerticesAndIndicesForStroke(nil, nil, op)
	r := float32(clr.R) / 255 * alpha
	g := float32(clr.G) / 255 * alpha
	b := float32(clr.B) / 255 * alpha
	for i := range vs {
		vs[i].SrcX = 1
		vs[i].SrcY = 1
		vs[i].ColorR = r
		vs[i].ColorG = g
		vs[i].ColorB = b
		vs[i].ColorA = alpha
	}
	return &strokeMesh{vs: vs, is: is}
}

func (e *Engine) Draw(screen *ebiten.Image) {
	if e.whiteSub == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		e.whiteSub = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}

	c := e.ctrl
	v := c.View

	screen.Fill(colorOcean)
	if e.bg != nil {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(v.Zoom, v.Zoom)
		op.GeoM.Translate(v.PanX, v.PanY)
		screen.DrawImage(e.bg, op)
	}

	// Fixed z-order: base, selection, hover. Hover is drawn last so it wins
	// visually when both touch the same edges.
	base := e.baseMeshMemo.get(c.Search.Debounced+"|"+c.ViewKey(), func() *strokeMesh {
		return e.buildMesh(e.baseAggregate(), 1.0, ColorEdge, baseEdgeAlpha)
	})
	sel := e.selMeshMemo.get(c.Search.Debounced+"|"+c.SelKey()+"|"+c.ViewKey(), func() *strokeMesh {
		return e.buildMesh(e.selAggregate(), 1.6, ColorSelection, selEdgeAlpha)
	})
	hov := e.hovMeshMemo.get(c.Search.Debounced+"|"+c.HoverKey()+"|"+c.ViewKey(), func() *strokeMesh {
		return e.buildMesh(e.hovAggregate(), 1.8, ColorHover, hovEdgeAlpha)
	})
	e.drawMesh(screen, base)
	e.drawMesh(screen, sel)
	e.drawMesh(screen, hov)

	e.drawMarkers(screen)
	e.drawLabels(screen)
	e.drawHUD(screen)
}

func (e *Engine) drawMesh(screen *ebiten.Image, m *strokeMesh) {
	if len(m.is) == 0 {
		return
	}
	op := &ebiten.DrawTrianglesOptions{}
	op.AntiAlias = true
	screen.DrawTriangles(m.vs, m.is, e.whiteSub, op)
}

func (e *Engine) markerRadius(n *CityNode) float32 {
	r := 2.5 + math.Sqrt(float64(n.Connections))
	if r > 9 {
		r = 9
	}
	return float32(r)
}

// drawMarkers renders the visible city dots. When a selection exists,
// markers outside the selected city's network dim hard; that contrast is how
// the network reads against the rest of the dataset.
func (e *Engine) drawMarkers(screen *ebiten.Image) {
	c := e.ctrl
	twins := e.twinKeys()
	selKey, hovKey := c.SelKey(), c.HoverKey()

	var onTop []*CityNode
	for _, n := range e.visibleNodes() {
		key := n.Key()
		if key == selKey || key == hovKey {
			onTop = append(onTop, n)
			continue
		}
		e.drawMarker(screen, n, twins)
	}
	for _, n := range onTop {
		e.drawMarker(screen, n, twins)
	}
}

func (e *Engine) drawMarker(screen *ebiten.Image, n *CityNode, twins map[string]bool) {
	sx, sy, ok := e.nodeScreenPos(n)
	if !ok {
		return
	}
	c := e.ctrl
	key := n.Key()
	r := e.markerRadius(n)
	clr := ColorMarker

	switch {
	case c.Sel != nil && key == c.SelKey():
		clr = ColorSelection
		r += 2
	case c.Hover != nil && key == c.HoverKey():
		clr = ColorHover
		r += 1
	case c.Sel != nil && !twins[key]:
		clr = scaleColor(ColorMarker, dimAlpha)
	}

	vector.DrawFilledCircle(screen, float32(sx), float32(sy), r, clr, true)
	if c.Sel != nil && key == c.SelKey() {
		vector.StrokeCircle(screen, float32(sx), float32(sy), r+3, 1.5, ColorSelection, true)
	}
}

func (e *Engine) drawLabels(screen *ebiten.Image) {
	rects := e.labelRects()
	if len(rects) == 0 {
		return
	}
	selectionMode := e.ctrl.Sel != nil
	for _, r := range rects {
		vector.DrawFilledRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), color.RGBA{0, 0, 0, 140}, false)

		size := 12.0
		clr := ColorText
		if selectionMode && r.Anchor == 0 {
			size = 13
			clr = ColorSelection
		}
		face := &text.GoTextFace{Source: e.fontSource, Size: size}
		top := &text.DrawOptions{}
		top.GeoM.Translate(r.X+labelPadX/2, r.Y+(r.H-size)/2)
		top.ColorScale.ScaleWithColor(clr)
		text.Draw(screen, r.Text, face, top)
	}
}

func (e *Engine) drawHUD(screen *ebiten.Image) {
	e.drawZoomControls(screen)
	e.drawSearchBox(screen)
	e.drawStats(screen)
	e.drawSelectionPanel(screen)
}

func (e *Engine) drawZoomControls(screen *ebiten.Image) {
	face := &text.GoTextFace{Source: e.monoSource, Size: 20}
	for _, b := range []struct {
		r     uiRect
		label string
	}{
		{e.zoomInBtn, "+"},
		{e.zoomOutBtn, "-"},
		{e.resetBtn, "o"},
	} {
		vector.DrawFilledRect(screen, float32(b.r.x), float32(b.r.y), float32(b.r.w), float32(b.r.h), color.RGBA{0, 0, 0, 120}, false)
		vector.StrokeRect(screen, float32(b.r.x), float32(b.r.y), float32(b.r.w), float32(b.r.h), 1, colorOutline, false)
		top := &text.DrawOptions{}
		top.GeoM.Translate(b.r.x+b.r.w/2-6, b.r.y+b.r.h/2-12)
		top.ColorScale.ScaleWithColor(ColorText)
		text.Draw(screen, b.label, face, top)
	}
}

func (e *Engine) drawSearchBox(screen *ebiten.Image) {
	b := e.searchBox
	vector.DrawFilledRect(screen, float32(b.x), float32(b.y), float32(b.w), float32(b.h), color.RGBA{0, 0, 0, 120}, false)
	vector.StrokeRect(screen, float32(b.x), float32(b.y), float32(b.w), float32(b.h), 1, colorOutline, false)

	face := &text.GoTextFace{Source: e.fontSource, Size: 15}
	top := &text.DrawOptions{}
	top.GeoM.Translate(b.x+10, b.y+(b.h-15)/2)
	raw := e.ctrl.Search.Raw
	if raw == "" {
		top.ColorScale.Scale(1, 1, 1, 0.35)
		text.Draw(screen, "search city or country", face, top)
		return
	}
	top.ColorScale.ScaleWithColor(ColorText)
	text.Draw(screen, raw+"_", face, top)
}

func (e *Engine) drawStats(screen *ebiten.Image) {
	face := &text.GoTextFace{Source: e.monoSource, Size: 14}
	filtered := e.filteredPairs()
	line := fmt.Sprintf("CITIES %d   PAIRS %d   SHOWN %d", e.totalCities, len(e.store.Records()), len(filtered))
	if d := e.store.DroppedRows(); d > 0 {
		line += fmt.Sprintf("   DROPPED %d", d)
	}
	top := &text.DrawOptions{}
	top.GeoM.Translate(20, float64(e.Height)-34)
	top.ColorScale.Scale(1, 1, 1, 0.7)
	text.Draw(screen, line, face, top)
}

func (e *Engine) drawSelectionPanel(screen *ebiten.Image) {
	sel := e.ctrl.Sel
	if sel == nil {
		return
	}
	name := countryDisplayName(sel.City.Country)
	lines := []string{
		sel.City.Name,
		name,
		fmt.Sprintf("%d twin cities", len(sel.Pairs)),
	}

	w, h := 260.0, 26.0*float64(len(lines))+20
	x, y := float64(e.Width)-w-20, float64(e.Height)-h-20
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), color.RGBA{0, 0, 0, 160}, false)
	vector.StrokeRect(screen, float32(x), float32(y), float32(w), float32(h), 1, colorOutline, false)
	vector.DrawFilledRect(screen, float32(x), float32(y), 4, float32(h), ColorSelection, false)

	for i, line := range lines {
		size := 15.0
		clr := ColorText
		if i == 0 {
			size = 18
			clr = ColorSelection
		}
		face := &text.GoTextFace{Source: e.fontSource, Size: size}
		top := &text.DrawOptions{}
		top.GeoM.Translate(x+14, y+10+26*float64(i))
		top.ColorScale.ScaleWithColor(clr)
		text.Draw(screen, line, face, top)
	}
}

// countryDisplayName resolves a dataset country string to its canonical
// name, falling back to the raw value for entries the lookup can't place.
func countryDisplayName(raw string) string {
	cc := countries.ByName(raw)
	if cc == countries.Unknown {
		return raw
	}
	name := cc.String()
	if idx := strings.Index(name, " ("); idx != -1 {
		name = name[:idx]
	}
	return name
}

func scaleColor(c color.RGBA, a float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * a),
		G: uint8(float64(c.G) * a),
		B: uint8(float64(c.B) * a),
		A: uint8(float64(c.A) * a),
	}
}
