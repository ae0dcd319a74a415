// Package pursuit drives the opponent along the centreline by chasing a point ahead of
// its own progress. The opponent is kinematic: its pose is written, never simulated.
package pursuit

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"sprintrace/pkg/helper"
	"sprintrace/pkg/model"
	"sprintrace/pkg/track"
)

const (
	baseLookahead    = 32.0
	lookaheadGain    = 1.45
	yawRateClamp     = 1.05
	yawRateGain      = 1.9
	curvaturePenalty = 18.0
	maxPaceSpeed     = 48.0
	floorSpeed       = 20.0
	easeRate         = 2.6
	alignClamp       = 0.6
	alignGain        = 1.4

	// PaceMin and PaceSpread bound the per-race pace factor: PaceMin + rand*PaceSpread.
	PaceMin    = 0.92
	PaceSpread = 0.07
)

type Driver struct {
	track      *track.Track
	id         model.VehicleID
	rideHeight float64
	pace       float64

	speed    float64
	yaw      float64
	progress float64
}

// NewDriver starts the driver at the start line's arc length regardless of where its body
// was spawned; the first Update moves the body onto its progress.
func NewDriver(t *track.Track, id model.VehicleID, yaw, rideHeight, pace float64) *Driver {
	return &Driver{
		track:      t,
		id:         id,
		rideHeight: rideHeight,
		pace:       pace,
		yaw:        yaw,
		progress:   t.StartDistance(),
	}
}

// Update advances one fixed step and writes the resulting pose.
func (d *Driver) Update(dt float64, poses model.PoseSource) {
	total := d.track.TotalLength()

	target := math.Min(total, d.progress+baseLookahead+d.speed*lookaheadGain)
	targetYaw := track.YawOf(d.track.Tangent(d.track.IndexAtDistance(target)))
	yawErr := helper.NormalizeAngle(targetYaw - d.yaw)
	d.yaw += helper.ClampF(yawErr, -yawRateClamp, yawRateClamp) * yawRateGain * dt

	maxSpeed := maxPaceSpeed * d.pace
	targetSpeed := helper.ClampF(maxSpeed-math.Abs(yawErr)*curvaturePenalty, floorSpeed, maxSpeed)
	d.speed = helper.Lerp(d.speed, targetSpeed, 1-math.Exp(-easeRate*dt))

	d.progress = math.Min(total, d.progress+d.speed*dt)

	pose := d.track.PoseAt(d.progress, 0)
	d.yaw += helper.ClampF(helper.NormalizeAngle(pose.Yaw-d.yaw), -alignClamp, alignClamp) * alignGain * dt

	position := mgl64.Vec3{pose.Center.X(), d.rideHeight, pose.Center.Z()}
	poses.WritePose(d.id, model.NewPoseUpdate(position, d.yaw, pose.Tangent.Mul(d.speed)))
}

func (d *Driver) ProgressMeters() float64 {
	return d.progress
}

func (d *Driver) SpeedKmh() float64 {
	return helper.ToKmh(d.speed)
}

func (d *Driver) Speed() float64 {
	return d.speed
}

func (d *Driver) Yaw() float64 {
	return d.yaw
}

func (d *Driver) Pace() float64 {
	return d.pace
}

func (d *Driver) ID() model.VehicleID {
	return d.id
}
