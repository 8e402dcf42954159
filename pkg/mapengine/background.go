package mapengine

import (
	"image"
	"image/color"
	"image/draw"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	geojson "github.com/paulmach/go.geojson"
)

// RenderBoundaries rasterizes the country polygons once into a single
// background image. Passing a nil collection (for example when the boundary
// fetch failed) yields a plain ocean-colored canvas; the map stays usable
// without country shapes.
func RenderBoundaries(fc *geojson.FeatureCollection, proj *Projection, width, height int) *ebiten.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{colorOcean}, image.Point{}, draw.Src)
	if fc != nil {
		for _, f := range fc.Features {
			if f.Geometry == nil {
				continue
			}
			if f.Geometry.IsPolygon() {
				rasterizePolygon(img, proj, f.Geometry.Polygon, width, height)
			} else if f.Geometry.IsMultiPolygon() {
				for _, poly := range f.Geometry.MultiPolygon {
					rasterizePolygon(img, proj, poly, width, height)
				}
			}
		}
	}
	return ebiten.NewImageFromImage(img)
}

func rasterizePolygon(img *image.RGBA, proj *Projection, rings [][][]float64, width, height int) {
	fillRings(img, proj, rings, colorLand, width, height)
	for _, ring := range rings {
		strokeRing(img, proj, ring, colorOutline, width, height)
	}
}

// fillRings scanline-fills a polygon (outer ring plus holes) after
// projecting every vertex. GeoJSON ring coordinates are [lng, lat].
func fillRings(img *image.RGBA, proj *Projection, rings [][][]float64, c color.RGBA, width, height int) {
	if len(rings) == 0 {
		return
	}
	type point struct{ x, y float64 }
	projected := make([][]point, 0, len(rings))
	minY, maxY := float64(height), 0.0
	for _, ring := range rings {
		pts := make([]point, 0, len(ring))
		for _, v := range ring {
			x, y, ok := proj.Project(v[0], v[1])
			if !ok {
				continue
			}
			pts = append(pts, point{x, y})
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
		if len(pts) >= 3 {
			projected = append(projected, pts)
		}
	}
	for y := int(minY); y <= int(maxY); y++ {
		if y < 0 || y >= height {
			continue
		}
		var crossings []int
		fy := float64(y)
		for _, ring := range projected {
			for i := 0; i < len(ring); i++ {
				j := (i + 1) % len(ring)
				if (ring[i].y < fy && ring[j].y >= fy) || (ring[j].y < fy && ring[i].y >= fy) {
					cx := ring[i].x + (fy-ring[i].y)/(ring[j].y-ring[i].y)*(ring[j].x-ring[i].x)
					crossings = append(crossings, int(cx))
				}
			}
		}
		sort.Ints(crossings)
		for i := 0; i+1 < len(crossings); i += 2 {
			xs, xe := crossings[i], crossings[i+1]
			if xs < 0 {
				xs = 0
			}
			if xe >= width {
				xe = width - 1
			}
			for x := xs; x < xe; x++ {
				off := y*img.Stride + x*4
				img.Pix[off], img.Pix[off+1], img.Pix[off+2], img.Pix[off+3] = c.R, c.G, c.B, 255
			}
		}
	}
}

func strokeRing(img *image.RGBA, proj *Projection, ring [][]float64, c color.RGBA, width, height int) {
	for i := 0; i < len(ring)-1; i++ {
		x1, y1, ok1 := proj.Project(ring[i][0], ring[i][1])
		x2, y2, ok2 := proj.Project(ring[i+1][0], ring[i+1][1])
		if !ok1 || !ok2 {
			continue
		}
		plotLine(img, int(x1), int(y1), int(x2), int(y2), c, width, height)
	}
}

// plotLine is a plain Bresenham into the CPU image; it runs only during the
// one-time background build so clarity beats cleverness here.
func plotLine(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA, width, height int) {
	dx, dy := abs(x2-x1), abs(y2-y1)
	sx, sy := -1, -1
	if x1 < x2 {
		sx = 1
	}
	if y1 < y2 {
		sy = 1
	}
	err := dx - dy
	for {
		if x1 >= 0 && x1 < width && y1 >= 0 && y1 < height {
			off := y1*img.Stride + x1*4
			img.Pix[off], img.Pix[off+1], img.Pix[off+2], img.Pix[off+3] = c.R, c.G, c.B, 255
		}
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
