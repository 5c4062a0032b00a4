package localsearch

import "math"

const sectorUnits = 1 << 16

// circleSector is an arc of the circle around the depot, measured in
// 1/65536ths of a full turn and running clockwise from start to end.
type circleSector struct {
	start int
	end   int
}

func positiveMod(i int) int {
	return ((i % sectorUnits) + sectorUnits) % sectorUnits
}

// polarAngle maps the direction from (x0, y0) to (x, y) onto the sector scale.
func polarAngle(x0, y0, x, y float64) int {
	return positiveMod(int(32768 * math.Atan2(y-y0, x-x0) / math.Pi))
}

func degreesToSector(deg int) int {
	return deg * sectorUnits / 360
}

func newSector(angle int) circleSector {
	return circleSector{start: angle, end: angle}
}

func (s circleSector) enclosed(angle int) bool {
	return positiveMod(angle-s.start) <= positiveMod(s.end-s.start)
}

// extend grows the sector by the smaller of the two arcs needed to cover angle.
func (s *circleSector) extend(angle int) {
	if s.enclosed(angle) {
		return
	}
	if positiveMod(angle-s.end) <= positiveMod(s.start-angle) {
		s.end = angle
	} else {
		s.start = angle
	}
}

func sectorsOverlap(a, b circleSector, tolerance int) bool {
	return positiveMod(b.start-a.start) <= positiveMod(a.end-a.start)+tolerance ||
		positiveMod(a.start-b.start) <= positiveMod(b.end-b.start)+tolerance
}
