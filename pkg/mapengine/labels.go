package mapengine

const (
	labelCharWidth = 7.0
	labelPadX      = 10.0
	labelHeight    = 16.0
	labelMargin    = 2.0
	labelOffset    = 8.0
)

// LabelAnchor is a node position a label wants to sit next to.
type LabelAnchor struct {
	X, Y float64
	Text string
}

// LabelRect is a placed, collision-free label box. Anchor is the index of
// the anchor it belongs to in the input order.
type LabelRect struct {
	X, Y, W, H float64
	Text       string
	Anchor     int
}

// labelWidth is a deterministic function of the text length only, so
// placement stays identical across passes without measuring glyphs.
func labelWidth(text string) float64 {
	return float64(len([]rune(text)))*labelCharWidth + labelPadX
}

// PlaceLabels lays out one label per anchor such that no two rectangles
// overlap. Greedy in input order: earlier anchors keep their preferred spot,
// later ones yield. Each placement tries eight fixed candidate offsets and
// falls back to scanning straight down in label-height steps; the placed set
// is finite so the scan always terminates below the lowest occupied slot.
// Labels from different passes (selection vs. search) are never checked
// against each other; the two modes are mutually exclusive on screen.
func PlaceLabels(anchors []LabelAnchor) []LabelRect {
	placed := make([]LabelRect, 0, len(anchors))
	for i, a := range anchors {
		r := placeOne(a, labelWidth(a.Text), placed)
		r.Text = a.Text
		r.Anchor = i
		placed = append(placed, r)
	}
	return placed
}

func placeOne(a LabelAnchor, w float64, placed []LabelRect) LabelRect {
	h := labelHeight
	candidates := [8]LabelRect{
		// Tier 1: right-above, right-below, left-above, left-below.
		{X: a.X + labelOffset, Y: a.Y - labelOffset - h, W: w, H: h},
		{X: a.X + labelOffset, Y: a.Y + labelOffset, W: w, H: h},
		{X: a.X - labelOffset - w, Y: a.Y - labelOffset - h, W: w, H: h},
		{X: a.X - labelOffset - w, Y: a.Y + labelOffset, W: w, H: h},
		// Tier 2: the same four pushed one label height further out.
		{X: a.X + labelOffset, Y: a.Y - labelOffset - 2*h, W: w, H: h},
		{X: a.X + labelOffset, Y: a.Y + labelOffset + h, W: w, H: h},
		{X: a.X - labelOffset - w, Y: a.Y - labelOffset - 2*h, W: w, H: h},
		{X: a.X - labelOffset - w, Y: a.Y + labelOffset + h, W: w, H: h},
	}
	for _, c := range candidates {
		if !overlapsAny(c, placed) {
			return c
		}
	}
	// Downward scan fallback.
	step := h + labelMargin
	for y := a.Y + labelOffset; ; y += step {
		c := LabelRect{X: a.X + labelOffset, Y: y, W: w, H: h}
		if !overlapsAny(c, placed) {
			return c
		}
	}
}

func overlapsAny(r LabelRect, placed []LabelRect) bool {
	for i := range placed {
		if rectsOverlap(r, placed[i]) {
			return true
		}
	}
	return false
}

// rectsOverlap is an axis-aligned overlap test with the placement margin
// applied on every side.
func rectsOverlap(a, b LabelRect) bool {
	return a.X < b.X+b.W+labelMargin &&
		b.X < a.X+a.W+labelMargin &&
		a.Y < b.Y+b.H+labelMargin &&
		b.Y < a.Y+a.H+labelMargin
}
