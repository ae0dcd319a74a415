// Package track turns a designer route into an immutable sampled centreline that can be
// queried by arc length or by world position.
package track

import (
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"sprintrace/pkg/helper"
)

const (
	degenerateTangentSq = 0.000001
	minSegmentLength    = 0.0001
)

// ErrTooFewControlPoints is returned by Build when the route has fewer than two points.
var ErrTooFewControlPoints = errors.New("track needs at least 2 control points")

var defaultTangent = mgl64.Vec3{0, 0, 1}

type Config struct {
	ControlPoints []mgl64.Vec3
	// Divisions is the number of curve steps; the track holds Divisions+1 samples.
	Divisions int
	Tension   float64
	HalfWidth float64
	// CheckpointFractions are positions along the total length in (0, 1), in race order.
	CheckpointFractions []float64
	StartIndex          int
	// FinishIndex of zero or less selects the last sample.
	FinishIndex int
}

// ID fingerprints every field that shapes the built track, so files derived from one
// config are never mistaken for another's.
func (cfg Config) ID() string {
	return helper.ToID(fmt.Sprintf("%v|%d|%g|%g|%v|%d|%d",
		cfg.ControlPoints, cfg.Divisions, cfg.Tension, cfg.HalfWidth,
		cfg.CheckpointFractions, cfg.StartIndex, cfg.FinishIndex))
}

// Pose is a point on (or beside) the centreline at a given arc length.
type Pose struct {
	Index    int
	Center   mgl64.Vec3
	Tangent  mgl64.Vec3
	Yaw      float64
	Position mgl64.Vec3
}

type Track struct {
	samples     []mgl64.Vec3
	tangents    []mgl64.Vec3
	cumulative  []float64
	totalLength float64
	halfWidth   float64
	startIndex  int
	finishIndex int
	checkpoints []int
}

// Build fits the curve, samples it and derives tangents, arc lengths and checkpoints.
func Build(cfg Config) (*Track, error) {
	if len(cfg.ControlPoints) < 2 {
		return nil, errors.Wrapf(ErrTooFewControlPoints, "got %d", len(cfg.ControlPoints))
	}
	if cfg.Divisions < 1 {
		return nil, errors.Errorf("divisions must be positive, got %d", cfg.Divisions)
	}
	if cfg.HalfWidth <= 0 {
		return nil, errors.Errorf("half width must be positive, got %f", cfg.HalfWidth)
	}

	curve := catmullRom{points: flatten(cfg.ControlPoints), tension: cfg.Tension}
	samples := curve.sample(cfg.Divisions)
	n := len(samples)

	tangents := make([]mgl64.Vec3, n)
	cumulative := make([]float64, n)
	degenerate := 0
	for i := range samples {
		prev := samples[helper.ClampI(i-1, 0, n-1)]
		next := samples[helper.ClampI(i+1, 0, n-1)]
		d := next.Sub(prev)
		if d.Dot(d) < degenerateTangentSq {
			tangents[i] = defaultTangent
			degenerate++
		} else {
			tangents[i] = d.Normalize()
		}
		if i > 0 {
			cumulative[i] = cumulative[i-1] + samples[i].Sub(samples[i-1]).Len()
		}
	}
	if degenerate > 0 {
		log.Printf("track: %d degenerate tangents replaced with default direction\n", degenerate)
	}

	t := &Track{
		samples:     samples,
		tangents:    tangents,
		cumulative:  cumulative,
		totalLength: cumulative[n-1],
		halfWidth:   cfg.HalfWidth,
		startIndex:  cfg.StartIndex,
		finishIndex: cfg.FinishIndex,
	}
	if t.finishIndex <= 0 {
		t.finishIndex = n - 1
	}
	if t.startIndex < 0 || t.startIndex >= t.finishIndex || t.finishIndex > n-1 {
		return nil, errors.Errorf("invalid start/finish indices %d/%d for %d samples", t.startIndex, t.finishIndex, n)
	}
	t.checkpoints = checkpointIndices(cumulative, t.totalLength, cfg.CheckpointFractions)

	return t, nil
}

// flatten drops the vertical component so the curve lives in the XZ plane.
func flatten(points []mgl64.Vec3) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(points))
	for i, p := range points {
		out[i] = mgl64.Vec3{p.X(), 0, p.Z()}
	}
	return out
}

func checkpointIndices(cumulative []float64, totalLength float64, fractions []float64) []int {
	indices := []int{}
	for _, f := range fractions {
		idx := FindIndexAtDistance(cumulative, totalLength*f)
		if len(indices) > 0 && idx <= indices[len(indices)-1] {
			continue
		}
		indices = append(indices, idx)
	}
	return indices
}

// FindIndexAtDistance returns the first index whose cumulative length is >= target,
// clamped to the last index.
func FindIndexAtDistance(cumulative []float64, target float64) int {
	if len(cumulative) == 0 {
		return 0
	}
	idx := sort.Search(len(cumulative), func(i int) bool {
		return cumulative[i] >= target
	})
	return helper.ClampI(idx, 0, len(cumulative)-1)
}

func (t *Track) Len() int {
	return len(t.samples)
}

func (t *Track) Sample(i int) mgl64.Vec3 {
	return t.samples[i]
}

func (t *Track) Tangent(i int) mgl64.Vec3 {
	return t.tangents[i]
}

func (t *Track) Cumulative(i int) float64 {
	return t.cumulative[i]
}

func (t *Track) TotalLength() float64 {
	return t.totalLength
}

func (t *Track) HalfWidth() float64 {
	return t.halfWidth
}

func (t *Track) StartIndex() int {
	return t.startIndex
}

func (t *Track) FinishIndex() int {
	return t.finishIndex
}

// StartDistance is the arc length of the start line.
func (t *Track) StartDistance() float64 {
	return t.cumulative[t.startIndex]
}

// FinishDistance is the arc length of the finish line.
func (t *Track) FinishDistance() float64 {
	return t.cumulative[t.finishIndex]
}

// CheckpointIndices returns a copy of the checkpoint sample indices.
func (t *Track) CheckpointIndices() []int {
	out := make([]int, len(t.checkpoints))
	copy(out, t.checkpoints)
	return out
}

// CheckpointDistances returns the arc length of each checkpoint in race order.
func (t *Track) CheckpointDistances() []float64 {
	out := make([]float64, len(t.checkpoints))
	for i, idx := range t.checkpoints {
		out[i] = t.cumulative[idx]
	}
	return out
}

// Samples returns the sampled centreline. Callers must not modify it.
func (t *Track) Samples() []mgl64.Vec3 {
	return t.samples
}

// IndexAtDistance is FindIndexAtDistance over this track.
func (t *Track) IndexAtDistance(distance float64) int {
	return FindIndexAtDistance(t.cumulative, distance)
}

// YawOf converts a planar direction into a heading, forward = (sin yaw, 0, cos yaw).
func YawOf(dir mgl64.Vec3) float64 {
	return math.Atan2(dir.X(), dir.Z())
}

func (t *Track) StartYaw() float64 {
	return YawOf(t.tangents[t.startIndex])
}

// PoseAt interpolates the centreline at distance and offsets it along the normal by lateral.
func (t *Track) PoseAt(distance, lateral float64) Pose {
	d := helper.ClampF(distance, 0, t.totalLength)
	upper := t.IndexAtDistance(d)
	lower := helper.ClampI(upper-1, 0, len(t.samples)-1)

	startDist := t.cumulative[lower]
	segment := math.Max(minSegmentLength, t.cumulative[upper]-startDist)
	s := helper.ClampF((d-startDist)/segment, 0, 1)

	center := lerpVec(t.samples[lower], t.samples[upper], s)
	tangent := lerpVec(t.tangents[lower], t.tangents[upper], s)
	if tangent.Dot(tangent) < degenerateTangentSq {
		tangent = t.tangents[upper]
	} else {
		tangent = tangent.Normalize()
	}

	return Pose{
		Index:    upper,
		Center:   center,
		Tangent:  tangent,
		Yaw:      YawOf(tangent),
		Position: center.Add(Normal(tangent).Mul(lateral)),
	}
}

// Normal rotates a planar tangent by 90 degrees: (-tz, 0, tx).
func Normal(tangent mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{-tangent.Z(), 0, tangent.X()}
}

func lerpVec(a, b mgl64.Vec3, s float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(s))
}
