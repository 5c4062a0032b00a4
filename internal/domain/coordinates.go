package domain

// Immutable planar coordinates. For geographic instances X is the longitude
// and Y the latitude.
type Coordinates struct {
	X float64
	Y float64
}

// Return coordinates as [x, y] ([lon, lat]) for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.X, c.Y} }

// Centroid returns the arithmetic mean of the given points, or the zero value
// when pts is empty.
func Centroid(pts []Coordinates) Coordinates {
	if len(pts) == 0 {
		return Coordinates{}
	}

	var sx, sy float64
	for _, p := range pts {
		sx += p.X
		sy += p.Y
	}

	n := float64(len(pts))
	return Coordinates{X: sx / n, Y: sy / n}
}
