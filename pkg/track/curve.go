package track

import "github.com/go-gl/mathgl/mgl64"

// cubicPoly holds the coefficients of one hermite segment for a single axis.
type cubicPoly struct {
	c0, c1, c2, c3 float64
}

// initCatmullRom sets up the segment between x1 and x2 using x0 and x3 as neighbours.
// Tension scales the tangents: lower values give tighter corners.
func initCatmullRom(x0, x1, x2, x3, tension float64) cubicPoly {
	t0 := tension * (x2 - x0)
	t1 := tension * (x3 - x1)
	return cubicPoly{
		c0: x1,
		c1: t0,
		c2: -3*x1 + 3*x2 - 2*t0 - t1,
		c3: 2*x1 - 2*x2 + t0 + t1,
	}
}

func (p cubicPoly) calc(t float64) float64 {
	t2 := t * t
	return p.c0 + p.c1*t + p.c2*t2 + p.c3*t2*t
}

// catmullRom is an open interpolating curve through every control point.
type catmullRom struct {
	points  []mgl64.Vec3
	tension float64
}

// pointAt evaluates the curve at parameter u in [0, 1], uniform in control point index.
func (c catmullRom) pointAt(u float64) mgl64.Vec3 {
	l := len(c.points)
	p := float64(l-1) * u
	intPoint := int(p)
	weight := p - float64(intPoint)
	if intPoint >= l-1 {
		intPoint = l - 2
		weight = 1
	}

	var p0, p3 mgl64.Vec3
	if intPoint > 0 {
		p0 = c.points[intPoint-1]
	} else {
		// extrapolate before the first point
		p0 = c.points[0].Sub(c.points[1]).Add(c.points[0])
	}
	p1 := c.points[intPoint]
	p2 := c.points[intPoint+1]
	if intPoint+2 < l {
		p3 = c.points[intPoint+2]
	} else {
		p3 = c.points[l-1].Sub(c.points[l-2]).Add(c.points[l-1])
	}

	px := initCatmullRom(p0.X(), p1.X(), p2.X(), p3.X(), c.tension)
	pz := initCatmullRom(p0.Z(), p1.Z(), p2.Z(), p3.Z(), c.tension)
	return mgl64.Vec3{px.calc(weight), 0, pz.calc(weight)}
}

// sample returns divisions+1 points at uniform parameter steps.
func (c catmullRom) sample(divisions int) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, 0, divisions+1)
	for i := 0; i <= divisions; i++ {
		out = append(out, c.pointAt(float64(i)/float64(divisions)))
	}
	return out
}
