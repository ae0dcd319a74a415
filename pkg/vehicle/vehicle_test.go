package vehicle

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprintrace/pkg/helper"
	"sprintrace/pkg/model"
	"sprintrace/pkg/physics"
	"sprintrace/pkg/track"
)

const (
	dt         = 1.0 / 60.0
	rideHeight = 0.5
)

type rig struct {
	track *track.Track
	world *physics.World
	car   *Controller
}

func newRig(t *testing.T) *rig {
	t.Helper()
	tr, err := track.Build(track.Config{
		ControlPoints: []mgl64.Vec3{{0, 0, 0}, {1000, 0, 0}},
		Divisions:     1000,
		Tension:       track.DefaultTension,
		HalfWidth:     6,
	})
	require.NoError(t, err)

	spawn := mgl64.Vec3{0, rideHeight, 0}
	world := physics.NewWorld()
	world.Add(model.Player, spawn, tr.StartYaw(), false)
	return &rig{
		track: tr,
		world: world,
		car:   NewController(tr, model.Player, spawn, tr.StartYaw(), rideHeight),
	}
}

func (r *rig) step(in model.Controls, ticks int) {
	for i := 0; i < ticks; i++ {
		r.world.Integrate(dt)
		r.car.Update(dt, in, r.world)
	}
}

// teleport moves the body to x along the straight with the given lateral offset, keeping it still.
func (r *rig) teleport(x, lateral float64) {
	r.world.WritePose(model.Player, model.NewPoseUpdate(mgl64.Vec3{x, rideHeight, lateral}, r.car.Yaw(), mgl64.Vec3{}))
}

func TestLimitsFor(t *testing.T) {
	l := LimitsFor(1, true)
	assert.InDelta(t, 55/3.6, l.MaxForward, 1e-9)
	assert.Equal(t, 13.0, l.MaxReverse)

	l = LimitsFor(1, false)
	assert.InDelta(t, 55/3.6*0.6, l.MaxForward, 1e-9)
	assert.Equal(t, 8.0, l.MaxReverse)

	// off-track top speed is capped regardless of gear
	l = LimitsFor(5, false)
	assert.Equal(t, 22.0, l.MaxForward)

	assert.Equal(t, LimitsFor(1, true), LimitsFor(0, true))
	assert.Equal(t, LimitsFor(MaxGear, true), LimitsFor(9, true))
}

func TestFullThrottleFirstGear(t *testing.T) {
	r := newRig(t)
	r.step(model.Controls{Throttle: 1}, 300)

	assert.Equal(t, 1, r.car.Gear())
	assert.InDelta(t, 55/3.6, r.car.Speed(), 1e-9)
	assert.InDelta(t, 55.0, r.car.SpeedKmh(), 1e-9)
	assert.InDelta(t, 72.4, r.car.ProgressMeters(), 0.5)
	assert.True(t, r.car.OnTrack())

	body, ok := r.world.Body(model.Player)
	require.True(t, ok)
	assert.InDelta(t, rideHeight, body.Position.Y(), 1e-12)
	assert.InDelta(t, 55/3.6, body.Velocity.Len(), 1e-9)
	assert.InDelta(t, 1.0, body.Velocity.Normalize().X(), 1e-9)
	assert.Equal(t, mgl64.Vec3{}, body.AngularVelocity)
}

func TestSpeedStaysWithinGearLimitsOnTrack(t *testing.T) {
	r := newRig(t)
	inputs := []model.Controls{
		{Throttle: 1},
		{Throttle: 1, ShiftUp: true},
		{Throttle: 1},
		{Throttle: 0, Brake: true},
		{Throttle: -1},
		{Throttle: 1, Steer: 0.2},
	}
	for _, in := range inputs {
		for i := 0; i < 40; i++ {
			r.step(in, 1)
			if !r.car.OnTrack() {
				continue
			}
			l := LimitsFor(r.car.Gear(), true)
			require.LessOrEqual(t, r.car.Speed(), l.MaxForward+1e-9)
			require.GreaterOrEqual(t, r.car.Speed(), -l.MaxReverse-1e-9)
		}
	}
}

func TestShiftUpIsCapped(t *testing.T) {
	r := newRig(t)

	for want := 2; want <= MaxGear; want++ {
		r.step(model.Controls{Throttle: 1, ShiftUp: true}, 1)
		assert.Equal(t, want, r.car.Gear())
	}
	r.step(model.Controls{Throttle: 1, ShiftUp: true}, 3)
	assert.Equal(t, MaxGear, r.car.Gear())

	r.step(model.Controls{Throttle: 1}, 10)
	assert.Equal(t, MaxGear, r.car.Gear())
}

func TestDownshiftDropsSeveralGearsAtOnce(t *testing.T) {
	r := newRig(t)
	r.step(model.Controls{Throttle: 1, ShiftUp: true}, 4)
	require.Equal(t, MaxGear, r.car.Gear())
	require.Less(t, r.car.SpeedKmh(), GearMaxSpeedKmh[0]*0.88)

	r.step(model.Controls{}, 1)
	assert.Equal(t, 1, r.car.Gear())
}

func TestNoDownshiftWhileAccelerating(t *testing.T) {
	r := newRig(t)
	r.step(model.Controls{Throttle: 1}, 30)
	r.step(model.Controls{Throttle: 1, ShiftUp: true}, 1)
	r.step(model.Controls{Throttle: 1}, 30)
	assert.Equal(t, 2, r.car.Gear())

	// braking below the first-gear threshold shifts back down
	r.step(model.Controls{Brake: true}, 60)
	assert.Equal(t, 1, r.car.Gear())
}

func TestReverseIsCapped(t *testing.T) {
	r := newRig(t)
	r.teleport(500, 0)
	r.step(model.Controls{Throttle: -1}, 120)
	assert.InDelta(t, -13.0, r.car.Speed(), 1e-9)
	assert.InDelta(t, 13*3.6, r.car.SpeedKmh(), 1e-9)
}

func TestCoastingAndBraking(t *testing.T) {
	r := newRig(t)
	r.step(model.Controls{Throttle: 1}, 20)
	before := r.car.Speed()

	r.step(model.Controls{}, 1)
	assert.InDelta(t, before-7.5*dt, r.car.Speed(), 1e-9)

	before = r.car.Speed()
	r.step(model.Controls{Brake: true}, 1)
	assert.InDelta(t, before-(7.5+23)*dt, r.car.Speed(), 1e-9)

	r.step(model.Controls{Brake: true}, 120)
	assert.Equal(t, 0.0, r.car.Speed())
}

func TestSteeringRightTurnsClockwise(t *testing.T) {
	r := newRig(t)
	r.step(model.Controls{Throttle: 1}, 30)
	start := r.car.Yaw()

	r.step(model.Controls{Throttle: 1, Steer: 1}, 10)
	assert.Less(t, r.car.Yaw(), start)
}

func TestNoSteeringWhenStopped(t *testing.T) {
	r := newRig(t)
	start := r.car.Yaw()
	r.step(model.Controls{Steer: -1}, 30)
	assert.InDelta(t, start, r.car.Yaw(), 1e-12)
}

func TestOnTrackBand(t *testing.T) {
	r := newRig(t)

	r.teleport(300, 3)
	r.step(model.Controls{}, 1)
	assert.True(t, r.car.OnTrack())
	assert.InDelta(t, 3.0, r.car.Projection().Lateral, 1e-9)

	r.teleport(300, -5.2)
	r.step(model.Controls{}, 1)
	assert.False(t, r.car.OnTrack())
	// inside the curb so the body is left alone
	assert.InDelta(t, -5.2, r.world.ReadPose(model.Player).Position.Z(), 1e-9)
}

func TestCurbContainment(t *testing.T) {
	r := newRig(t)
	r.step(model.Controls{Throttle: 1}, 10)
	speed := r.car.Speed()

	x := r.world.ReadPose(model.Player).Position.X()
	r.teleport(x, 5.9)
	r.step(model.Controls{Throttle: 1}, 1)

	assert.False(t, r.car.OnTrack())
	assert.InDelta(t, (speed+15*dt)*0.62, r.car.Speed(), 1e-9)
	assert.InDelta(t, 6-0.32, r.world.ReadPose(model.Player).Position.Z(), 1e-9)
}

func TestResetWhenFarOffTrack(t *testing.T) {
	r := newRig(t)
	r.step(model.Controls{Throttle: 1, ShiftUp: true}, 2)
	r.step(model.Controls{Throttle: 1}, 60)
	require.Equal(t, 3, r.car.Gear())

	r.teleport(200, 16)
	r.step(model.Controls{Throttle: 1}, 1)

	assert.Equal(t, 0.0, r.car.Speed())
	assert.Equal(t, 1, r.car.Gear())
	assert.InDelta(t, r.track.StartYaw(), r.car.Yaw(), 1e-12)

	body, ok := r.world.Body(model.Player)
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec3{0, rideHeight, 0}, body.Position)
	assert.Equal(t, mgl64.Vec3{}, body.Velocity)
}

func TestControlsAreNormalized(t *testing.T) {
	a := newRig(t)
	b := newRig(t)
	a.step(model.Controls{Throttle: 7, Steer: 4}, 60)
	b.step(model.Controls{Throttle: 1, Steer: 1}, 60)

	assert.Equal(t, b.car.Speed(), a.car.Speed())
	assert.Equal(t, b.car.Yaw(), a.car.Yaw())
	assert.Equal(t, helper.ToKmh(a.car.Speed()), a.car.SpeedKmh())
}
