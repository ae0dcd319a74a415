// Package race adjudicates a single race between the player and the opponent: checkpoints,
// finish order, winner and the status the presentation layer shows.
package race

import (
	"fmt"
	"math"

	"sprintrace/pkg/helper"
	"sprintrace/pkg/model"
	"sprintrace/pkg/track"
	"sprintrace/pkg/vehicle"
)

const (
	// CheckpointTolerance grants checkpoint credit this many meters early.
	CheckpointTolerance = 2.0
	// FinishTolerance counts a vehicle as finished this many meters before the line.
	FinishTolerance = 8.0
)

type State int

const (
	Running State = iota
	Finished
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Finished:
		return "finished"
	}
	return "unknown"
}

// End is emitted once per race. A nil time means that vehicle did not finish.
type End struct {
	Session    string          `json:"session"`
	Winner     model.VehicleID `json:"winner"`
	PlayerTime *float64        `json:"playerTime"`
	AITime     *float64        `json:"aiTime"`
}

// PlayerWon reports whether the result is worth a highscore entry.
func (e End) PlayerWon() bool {
	return e.Winner == model.Player && e.PlayerTime != nil
}

// Hooks are called synchronously from Update.
type Hooks struct {
	// OnCheckpoint receives the index of the checkpoint that is now active.
	OnCheckpoint func(next int)
	OnEnd        func(End)
}

type Director struct {
	track   *track.Track
	session string
	hooks   Hooks

	checkpoints    []float64
	finishLine     float64
	state          State
	elapsed        float64
	nextCheckpoint int

	playerProgress float64
	aiProgress     float64
	playerTime     *float64
	aiTime         *float64
	winner         model.VehicleID
}

func NewDirector(t *track.Track, session string, hooks Hooks) *Director {
	return &Director{
		track:       t,
		session:     session,
		hooks:       hooks,
		checkpoints: t.CheckpointDistances(),
		finishLine:  t.FinishDistance() - FinishTolerance,
		state:       Running,
	}
}

// Update must run after both vehicles have moved in the same tick.
func (d *Director) Update(dt, playerProgress, aiProgress float64) {
	if d.state == Finished {
		return
	}
	d.playerProgress = playerProgress
	d.aiProgress = aiProgress
	d.elapsed += dt

	for d.nextCheckpoint < len(d.checkpoints) && playerProgress >= d.checkpoints[d.nextCheckpoint]-CheckpointTolerance {
		d.nextCheckpoint++
		if d.hooks.OnCheckpoint != nil {
			d.hooks.OnCheckpoint(d.nextCheckpoint)
		}
	}

	if d.playerTime == nil && playerProgress >= d.finishLine {
		d.playerTime = d.stamp()
	}
	if d.aiTime == nil && aiProgress >= d.finishLine {
		d.aiTime = d.stamp()
	}
	if d.playerTime == nil && d.aiTime == nil {
		return
	}

	d.state = Finished
	d.winner = model.Opponent
	// the player keeps a simultaneous finish on equal time
	if d.playerTime != nil && (d.aiTime == nil || *d.playerTime <= *d.aiTime) {
		d.winner = model.Player
	}
	if d.hooks.OnEnd != nil {
		d.hooks.OnEnd(d.End())
	}
}

func (d *Director) stamp() *float64 {
	t := d.elapsed
	return &t
}

func (d *Director) State() State {
	return d.state
}

func (d *Director) Finished() bool {
	return d.state == Finished
}

func (d *Director) Elapsed() float64 {
	return d.elapsed
}

// NextCheckpoint is the index of the active checkpoint, equal to the count once all are passed.
func (d *Director) NextCheckpoint() int {
	return d.nextCheckpoint
}

// Winner is empty while the race is running.
func (d *Director) Winner() model.VehicleID {
	return d.winner
}

// End returns the result record; it is only meaningful once finished.
func (d *Director) End() End {
	return End{
		Session:    d.session,
		Winner:     d.winner,
		PlayerTime: copyTime(d.playerTime),
		AITime:     copyTime(d.aiTime),
	}
}

func copyTime(t *float64) *float64 {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// Status builds the presentation snapshot from the director and the player's gauges.
func (d *Director) Status(gear int, speedKmh float64) Status {
	s := Status{
		Session:         d.session,
		DistanceKm:      helper.ClampF(d.playerProgress, 0, d.track.TotalLength()) / 1000,
		TotalKm:         d.track.TotalLength() / 1000,
		Checkpoints:     helper.ClampI(d.nextCheckpoint, 0, len(d.checkpoints)),
		CheckpointTotal: len(d.checkpoints),
		Gear:            gear,
		MaxGear:         vehicle.MaxGear,
		SpeedKmh:        int(math.Round(speedKmh)),
		ElapsedSeconds:  d.elapsed,
		Elapsed:         helper.SecondsToMinutes(d.elapsed),
		Finished:        d.state == Finished,
	}
	s.StatusLine = d.statusLine()
	return s
}

func (d *Director) statusLine() string {
	if d.state == Finished {
		if d.winner == model.Player {
			return fmt.Sprintf("Victory! Your time: %s", helper.SecondsToMinutes(valueOr(d.playerTime, 0)))
		}
		return fmt.Sprintf("AI wins with %s", helper.SecondsToMinutes(valueOr(d.aiTime, 0)))
	}
	lead := d.playerProgress - d.aiProgress
	if lead >= 0 {
		return fmt.Sprintf("You lead +%.0fm | Q = shift up", lead)
	}
	return fmt.Sprintf("AI leads +%.0fm | Q = shift up", math.Abs(lead))
}

func valueOr(t *float64, fallback float64) float64 {
	if t == nil {
		return fallback
	}
	return *t
}
