// Package physics is a minimal body store standing behind the pose port. Dynamic bodies
// are moved by their velocity on each Integrate; kinematic bodies only move when written.
package physics

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"sprintrace/pkg/model"
)

type Body struct {
	Position        mgl64.Vec3
	Orientation     mgl64.Quat
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
	Kinematic       bool
}

type World struct {
	mu     sync.Mutex
	bodies map[model.VehicleID]*Body
}

func NewWorld() *World {
	return &World{
		bodies: make(map[model.VehicleID]*Body),
	}
}

// Add places a body at a yaw-only pose, replacing any previous body with the same id.
func (w *World) Add(id model.VehicleID, position mgl64.Vec3, yaw float64, kinematic bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.bodies[id] = &Body{
		Position:    position,
		Orientation: model.YawQuat(yaw),
		Kinematic:   kinematic,
	}
}

func (w *World) Remove(id model.VehicleID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.bodies, id)
}

// Integrate advances dynamic bodies by one step.
func (w *World) Integrate(dt float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, b := range w.bodies {
		if b.Kinematic {
			continue
		}
		b.Position = b.Position.Add(b.Velocity.Mul(dt))
	}
}

// ReadPose returns the identity pose at the origin for unknown ids.
func (w *World) ReadPose(id model.VehicleID) model.Pose {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, ok := w.bodies[id]
	if !ok {
		return model.Pose{Orientation: mgl64.QuatIdent()}
	}
	return model.Pose{Position: b.Position, Orientation: b.Orientation}
}

func (w *World) WritePose(id model.VehicleID, update model.PoseUpdate) {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, ok := w.bodies[id]
	if !ok {
		b = &Body{}
		w.bodies[id] = b
	}
	b.Position = update.Position
	b.Orientation = update.Orientation
	b.Velocity = update.Velocity
	b.AngularVelocity = update.AngularVelocity
}

// Body returns a copy of the body state.
func (w *World) Body(id model.VehicleID) (Body, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, ok := w.bodies[id]
	if !ok {
		return Body{}, false
	}
	return *b, true
}
