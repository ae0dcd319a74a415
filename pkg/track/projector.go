package track

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"sprintrace/pkg/helper"
)

const (
	// SearchWindow is how many samples either side of the hint the coherent search scans.
	SearchWindow = 220
	// lostFactor times the half width is the distance beyond which the windowed result is
	// distrusted and every sample is scanned.
	lostFactor = 7
)

// Projection maps a world position onto the nearest track sample.
type Projection struct {
	Index   int
	Center  mgl64.Vec3
	Tangent mgl64.Vec3
	// Lateral is positive on the normal side, normal = (-tz, 0, tx).
	Lateral  float64
	Progress float64
}

// Project finds the nearest sample around hint, falling back to a full scan when the
// vehicle is too far from the windowed best match (spawn, reset or teleport).
func (t *Track) Project(position mgl64.Vec3, hint int) Projection {
	n := len(t.samples)
	hint = helper.ClampI(hint, 0, n-1)

	from := helper.ClampI(hint-SearchWindow, 0, n-1)
	to := helper.ClampI(hint+SearchWindow, 0, n-1)
	best, bestDistSq := t.nearest(position, from, to, hint, math.Inf(1))

	lost := t.halfWidth * lostFactor
	if bestDistSq > lost*lost {
		best, _ = t.nearest(position, 0, n-1, best, bestDistSq)
	}

	center := t.samples[best]
	tangent := t.tangents[best]
	offset := mgl64.Vec3{position.X() - center.X(), 0, position.Z() - center.Z()}
	along := offset.Dot(tangent)

	return Projection{
		Index:    best,
		Center:   center,
		Tangent:  tangent,
		Lateral:  offset.Dot(Normal(tangent)),
		Progress: helper.ClampF(t.cumulative[best]+along, 0, t.totalLength),
	}
}

func (t *Track) nearest(position mgl64.Vec3, from, to, best int, bestDistSq float64) (int, float64) {
	for i := from; i <= to; i++ {
		p := t.samples[i]
		dx := position.X() - p.X()
		dz := position.Z() - p.Z()
		distSq := dx*dx + dz*dz
		if distSq < bestDistSq {
			bestDistSq = distSq
			best = i
		}
	}
	return best, bestDistSq
}
