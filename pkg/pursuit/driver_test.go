package pursuit

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprintrace/pkg/model"
	"sprintrace/pkg/physics"
	"sprintrace/pkg/track"
)

const dt = 1.0 / 60.0

func straightTrack(t *testing.T) *track.Track {
	t.Helper()
	tr, err := track.Build(track.Config{
		ControlPoints: []mgl64.Vec3{{0, 0, 0}, {1000, 0, 0}},
		Divisions:     1000,
		Tension:       track.DefaultTension,
		HalfWidth:     6,
	})
	require.NoError(t, err)
	return tr
}

func newDriver(tr *track.Track, pace float64) (*Driver, *physics.World) {
	start := tr.PoseAt(tr.StartDistance()+7, 0)
	world := physics.NewWorld()
	world.Add(model.Opponent, start.Position, start.Yaw, true)
	return NewDriver(tr, model.Opponent, start.Yaw, 0.5, pace), world
}

func TestFirstStepEasesTowardPaceSpeed(t *testing.T) {
	tr := straightTrack(t)
	d, world := newDriver(tr, 0.95)

	assert.Equal(t, 0.0, d.ProgressMeters())
	d.Update(dt, world)

	want := 48 * 0.95 * (1 - math.Exp(-2.6*dt))
	assert.InDelta(t, want, d.Speed(), 1e-9)
	assert.InDelta(t, want*dt, d.ProgressMeters(), 1e-9)
	assert.InDelta(t, want*3.6, d.SpeedKmh(), 1e-9)

	body, ok := world.Body(model.Opponent)
	require.True(t, ok)
	assert.InDelta(t, 0.5, body.Position.Y(), 1e-12)
	assert.InDelta(t, 0.0, body.Position.Z(), 1e-9)
	assert.InDelta(t, want, body.Velocity.X(), 1e-9)
	assert.Equal(t, mgl64.Vec3{}, body.AngularVelocity)
}

func TestStraightRunToFinish(t *testing.T) {
	tr := straightTrack(t)
	d, world := newDriver(tr, 0.92)
	maxSpeed := 48 * 0.92

	prev := d.ProgressMeters()
	ticks := 0
	for ; ticks < 60*60 && d.ProgressMeters() < tr.TotalLength(); ticks++ {
		d.Update(dt, world)
		require.GreaterOrEqual(t, d.ProgressMeters(), prev)
		require.LessOrEqual(t, d.ProgressMeters(), tr.TotalLength())
		require.LessOrEqual(t, d.Speed(), maxSpeed+1e-9)
		prev = d.ProgressMeters()
	}
	assert.Equal(t, tr.TotalLength(), d.ProgressMeters())
	assert.Less(t, ticks, 60*40)
	assert.InDelta(t, tr.StartYaw(), d.Yaw(), 1e-9)

	// parked at the end of the route
	d.Update(dt, world)
	assert.Equal(t, tr.TotalLength(), d.ProgressMeters())
	assert.InDelta(t, 1000.0, world.ReadPose(model.Opponent).Position.X(), 1e-6)
}

func TestFollowsDefaultCircuit(t *testing.T) {
	tr, err := track.Build(track.DefaultConfig())
	require.NoError(t, err)
	d, world := newDriver(tr, 0.99)

	hint := tr.StartIndex()
	for i := 0; i < 60*600 && d.ProgressMeters() < tr.TotalLength(); i++ {
		d.Update(dt, world)
		p := tr.Project(world.ReadPose(model.Opponent).Position, hint)
		hint = p.Index
		require.Less(t, math.Abs(p.Lateral), tr.HalfWidth()-track.EdgeMargin, "tick %d", i)
		require.LessOrEqual(t, d.Speed(), 48*0.99+1e-9)
	}
	assert.Equal(t, tr.TotalLength(), d.ProgressMeters())
}

func TestPaceScalesSpeed(t *testing.T) {
	tr := straightTrack(t)
	slow, slowWorld := newDriver(tr, PaceMin)
	fast, fastWorld := newDriver(tr, PaceMin+PaceSpread)

	for i := 0; i < 300; i++ {
		slow.Update(dt, slowWorld)
		fast.Update(dt, fastWorld)
	}
	assert.Greater(t, fast.ProgressMeters(), slow.ProgressMeters())
	assert.Equal(t, PaceMin, slow.Pace())
	assert.Equal(t, model.Opponent, fast.ID())
}
