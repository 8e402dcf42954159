package mapengine

import "math"

// Projection maps geographic coordinates onto the internal canvas with a
// Mollweide (equal-area) projection. Scale, center and translation are fixed
// at construction; the interactive view transform is applied after
// projection and never changes these parameters.
type Projection struct {
	width  int
	height int
	scale  float64
}

func NewProjection(width, height int, scale float64) *Projection {
	return &Projection{width: width, height: height, scale: scale}
}

// Project maps (longitude, latitude) in decimal degrees to planar canvas
// coordinates. ok is false for non-finite input or coordinates outside the
// projection domain; callers must skip such points entirely.
func (p *Projection) Project(lng, lat float64) (x, y float64, ok bool) {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return 0, 0, false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return 0, 0, false
	}

	// The auxiliary angle is undefined exactly at the poles; pull in slightly
	// so the Newton iteration stays stable.
	if lat > 89.5 {
		lat = 89.5
	}
	if lat < -89.5 {
		lat = -89.5
	}

	latRad, lngRad := lat*math.Pi/180, lng*math.Pi/180
	theta := latRad
	for i := 0; i < 10; i++ {
		denom := 2 + 2*math.Cos(2*theta)
		if math.Abs(denom) < 1e-9 {
			break
		}
		delta := (2*theta + math.Sin(2*theta) - math.Pi*math.Sin(latRad)) / denom
		theta -= delta
		if math.Abs(delta) < 1e-7 {
			break
		}
	}

	r := p.scale
	x = (float64(p.width) / 2) + r*(2*math.Sqrt2/math.Pi)*lngRad*math.Cos(theta)
	y = (float64(p.height) / 2) - r*math.Sqrt2*math.Sin(theta)
	return x, y, true
}
