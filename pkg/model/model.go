package model

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type VehicleID string

const (
	Player   VehicleID = "player"
	Opponent VehicleID = "ai"
)

var upAxis = mgl64.Vec3{0, 1, 0}

// Pose is what the pose source reports for a vehicle at tick start.
type Pose struct {
	Position    mgl64.Vec3 `json:"position"`
	Orientation mgl64.Quat `json:"-"`
}

// Yaw extracts the heading about the vertical axis.
func (p Pose) Yaw() float64 {
	return YawFromQuat(p.Orientation)
}

// PoseUpdate is written back to the pose source at the end of a tick.
type PoseUpdate struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
	Velocity    mgl64.Vec3
	// AngularVelocity is always zero for both vehicles, kept so a physics port can apply it verbatim.
	AngularVelocity mgl64.Vec3
}

// NewPoseUpdate builds a yaw-only update.
func NewPoseUpdate(position mgl64.Vec3, yaw float64, velocity mgl64.Vec3) PoseUpdate {
	return PoseUpdate{
		Position:    position,
		Orientation: YawQuat(yaw),
		Velocity:    velocity,
	}
}

// PoseSource is the read/write port through which controllers reach vehicle bodies.
// A write must be visible to the next read of the same vehicle.
type PoseSource interface {
	ReadPose(id VehicleID) Pose
	WritePose(id VehicleID, update PoseUpdate)
}

// Controls is the player input snapshot for one tick.
type Controls struct {
	Throttle int     `json:"throttle"` // -1, 0 or 1
	Steer    float64 `json:"steer"`    // -1..1, positive steers right
	Brake    bool    `json:"brake"`
	ShiftUp  bool    `json:"shiftUp"` // edge triggered
}

// Normalized clamps the axes into their legal ranges.
func (c Controls) Normalized() Controls {
	switch {
	case c.Throttle > 0:
		c.Throttle = 1
	case c.Throttle < 0:
		c.Throttle = -1
	}
	if c.Steer > 1 {
		c.Steer = 1
	} else if c.Steer < -1 {
		c.Steer = -1
	}
	return c
}

func (c Controls) String() string {
	return fmt.Sprintf("throttle=%d steer=%.2f brake=%t shiftUp=%t", c.Throttle, c.Steer, c.Brake, c.ShiftUp)
}

func YawQuat(yaw float64) mgl64.Quat {
	return mgl64.QuatRotate(yaw, upAxis)
}

func YawFromQuat(q mgl64.Quat) float64 {
	// forward is +Z; rotate it and read the heading back in the XZ plane
	f := q.Rotate(mgl64.Vec3{0, 0, 1})
	return math.Atan2(f.X(), f.Z())
}

// Forward returns the unit heading vector for a yaw, forward = (sin yaw, 0, cos yaw).
func Forward(yaw float64) mgl64.Vec3 {
	return mgl64.Vec3{math.Sin(yaw), 0, math.Cos(yaw)}
}
