// Package vehicle integrates the player car: gears, throttle and brake, steering with
// track alignment assist, curb containment and reset to start.
package vehicle

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"sprintrace/pkg/helper"
	"sprintrace/pkg/model"
	"sprintrace/pkg/track"
)

const MaxGear = 5

var (
	GearMaxSpeedKmh = [MaxGear]float64{55, 95, 145, 200, 250}
	GearAccelMps2   = [MaxGear]float64{30, 24, 18, 14, 11}
)

// Tuning, on track / off track where paired.
const (
	downshiftFactor = 0.88
	slowingEpsilon  = 0.2 // km/h

	reverseAccelOn  = 17.0
	reverseAccelOff = 8.0
	passiveDragOn   = 7.5
	passiveDragOff  = 12.0
	brakeDragOn     = 23.0
	brakeDragOff    = 32.0
	maxReverseOn    = 13.0
	maxReverseOff   = 8.0
	offTrackAccel   = 0.5
	offTrackTopRate = 0.6
	offTrackTopCap  = 22.0

	steerMinSpeed     = 0.15
	steerRefSpeed     = 32.0
	steerBaseGain     = 0.35
	steerSpeedGain    = 0.72
	offTrackSteer     = 0.55
	alignClamp        = 0.4
	alignWeightOn     = 0.14
	alignWeightOff    = 0.08
	containMargin     = 0.32
	curbSpeedPenalty  = 0.62
	resetLateralRatio = 2.5
)

// Limits are the speed bounds in m/s for one gear and surface.
type Limits struct {
	MaxForward float64
	MaxReverse float64
}

// LimitsFor returns the speed bounds for gear (1-based) on or off the track.
func LimitsFor(gear int, onTrack bool) Limits {
	top := helper.FromKmh(GearMaxSpeedKmh[helper.ClampI(gear, 1, MaxGear)-1])
	if onTrack {
		return Limits{MaxForward: top, MaxReverse: maxReverseOn}
	}
	return Limits{MaxForward: math.Min(top*offTrackTopRate, offTrackTopCap), MaxReverse: maxReverseOff}
}

// Controller owns the player's speed, yaw and gear between ticks. The body pose itself
// lives in the pose source.
type Controller struct {
	track      *track.Track
	id         model.VehicleID
	rideHeight float64
	resetPos   mgl64.Vec3
	resetYaw   float64

	speed          float64
	yaw            float64
	gear           int
	speedKmh       float64
	lastSpeedKmh   float64
	lastTrackIndex int
	onTrack        bool
	projection     track.Projection
}

// NewController places the controller at spawn; spawn is also the reset pose.
func NewController(t *track.Track, id model.VehicleID, spawn mgl64.Vec3, yaw, rideHeight float64) *Controller {
	start := t.StartIndex()
	return &Controller{
		track:          t,
		id:             id,
		rideHeight:     rideHeight,
		resetPos:       mgl64.Vec3{spawn.X(), rideHeight, spawn.Z()},
		resetYaw:       yaw,
		yaw:            yaw,
		gear:           1,
		lastTrackIndex: start,
		onTrack:        true,
		projection: track.Projection{
			Index:    start,
			Center:   t.Sample(start),
			Tangent:  t.Tangent(start),
			Progress: t.StartDistance(),
		},
	}
}

// Update advances one fixed step.
func (c *Controller) Update(dt float64, in model.Controls, poses model.PoseSource) {
	in = in.Normalized()
	if in.ShiftUp {
		c.ShiftUp()
	}

	pose := poses.ReadPose(c.id)
	c.projection = c.track.Project(pose.Position, c.lastTrackIndex)
	c.lastTrackIndex = c.projection.Index
	c.onTrack = math.Abs(c.projection.Lateral) <= c.track.HalfWidth()-track.EdgeMargin

	c.integrateSpeed(dt, in)
	c.speedKmh = math.Abs(helper.ToKmh(c.speed))
	c.autoDownshift(in.Throttle, in.Brake)
	c.integrateYaw(dt, in.Steer)

	position := c.contain(pose.Position)
	position = mgl64.Vec3{position.X(), c.rideHeight, position.Z()}
	poses.WritePose(c.id, model.NewPoseUpdate(position, c.yaw, model.Forward(c.yaw).Mul(c.speed)))

	if math.Abs(c.projection.Lateral) > c.track.HalfWidth()*resetLateralRatio {
		c.resetToStart(poses)
	}

	c.speedKmh = math.Abs(helper.ToKmh(c.speed))
	c.lastSpeedKmh = c.speedKmh
}

func (c *Controller) integrateSpeed(dt float64, in model.Controls) {
	accel := GearAccelMps2[c.gear-1]
	reverseAccel, passiveDrag, brakeDrag := reverseAccelOn, passiveDragOn, brakeDragOn
	if !c.onTrack {
		accel *= offTrackAccel
		reverseAccel, passiveDrag, brakeDrag = reverseAccelOff, passiveDragOff, brakeDragOff
	}

	switch {
	case in.Throttle > 0:
		c.speed += accel * dt
	case in.Throttle < 0:
		c.speed -= reverseAccel * dt
	default:
		c.speed = helper.DampTowardZero(c.speed, passiveDrag*dt)
	}
	if in.Brake {
		c.speed = helper.DampTowardZero(c.speed, brakeDrag*dt)
	}

	limits := LimitsFor(c.gear, c.onTrack)
	c.speed = helper.ClampF(c.speed, -limits.MaxReverse, limits.MaxForward)
}

// autoDownshift drops gears while the car is not pulling forward and has fallen under
// the lower gear's threshold. It may drop several gears in one tick.
func (c *Controller) autoDownshift(throttle int, braking bool) {
	if c.gear <= 1 {
		return
	}
	slowing := c.speedKmh+slowingEpsilon < c.lastSpeedKmh
	if !braking && !slowing && throttle > 0 {
		return
	}
	for c.gear > 1 {
		threshold := GearMaxSpeedKmh[c.gear-2] * downshiftFactor
		if c.speedKmh > threshold {
			break
		}
		c.gear--
	}
}

func (c *Controller) integrateYaw(dt, steerAxis float64) {
	// positive steer is to the right, which is a negative yaw change
	steer := -steerAxis
	surface := 1.0
	align := alignWeightOn
	if !c.onTrack {
		surface = offTrackSteer
		align = alignWeightOff
	}

	if math.Abs(c.speed) > steerMinSpeed {
		ratio := helper.ClampF(math.Abs(c.speed)/steerRefSpeed, 0, 1)
		gain := steerBaseGain + ratio*steerSpeedGain
		sign := 1.0
		if c.speed < 0 {
			sign = -1
		}
		c.yaw += steer * gain * sign * surface * dt
	}

	delta := helper.NormalizeAngle(track.YawOf(c.projection.Tangent) - c.yaw)
	c.yaw += helper.ClampF(delta, -alignClamp, alignClamp) * align * dt
}

// contain snaps the car back inside the band when it hits the curb.
func (c *Controller) contain(position mgl64.Vec3) mgl64.Vec3 {
	limit := c.track.HalfWidth() - containMargin
	if math.Abs(c.projection.Lateral) <= limit {
		return position
	}
	lateral := helper.ClampF(c.projection.Lateral, -limit, limit)
	snapped := c.projection.Center.Add(track.Normal(c.projection.Tangent).Mul(lateral))
	c.speed *= curbSpeedPenalty
	return mgl64.Vec3{snapped.X(), position.Y(), snapped.Z()}
}

func (c *Controller) resetToStart(poses model.PoseSource) {
	c.speed = 0
	c.gear = 1
	c.lastSpeedKmh = 0
	c.lastTrackIndex = c.track.StartIndex()
	c.yaw = c.resetYaw
	poses.WritePose(c.id, model.NewPoseUpdate(c.resetPos, c.yaw, mgl64.Vec3{}))
}

// ShiftUp moves up one gear, capped at MaxGear.
func (c *Controller) ShiftUp() {
	if c.gear < MaxGear {
		c.gear++
	}
}

// ProgressMeters is the arc-length progress from the last projection.
func (c *Controller) ProgressMeters() float64 {
	return c.projection.Progress
}

func (c *Controller) Gear() int {
	return c.gear
}

func (c *Controller) Speed() float64 {
	return c.speed
}

func (c *Controller) SpeedKmh() float64 {
	return c.speedKmh
}

func (c *Controller) Yaw() float64 {
	return c.yaw
}

func (c *Controller) OnTrack() bool {
	return c.onTrack
}

func (c *Controller) Projection() track.Projection {
	return c.projection
}

func (c *Controller) ID() model.VehicleID {
	return c.id
}
