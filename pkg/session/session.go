// Package session wires one race: spawns both cars into the pose port, steps the
// controllers and the director in a fixed order, and settles the highscores at the end.
package session

import (
	"log"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/segmentio/ksuid"

	"sprintrace/pkg/helper"
	"sprintrace/pkg/highscore"
	"sprintrace/pkg/model"
	"sprintrace/pkg/physics"
	"sprintrace/pkg/pursuit"
	"sprintrace/pkg/race"
	"sprintrace/pkg/track"
	"sprintrace/pkg/vehicle"
)

const (
	RideHeight = 0.5

	playerDistanceOffset   = 0.0
	playerLateralOffset    = -1.75
	opponentDistanceOffset = 7.0
	opponentLateralOffset  = 0.0
)

// Result is what a finished race leaves behind.
type Result struct {
	race.End
	Highscores []float64 `json:"highscores"`
	Recorded   bool      `json:"recorded"`
}

// Best is the fastest stored time, nil without any.
func (r Result) Best() *float64 {
	if len(r.Highscores) == 0 {
		return nil
	}
	best := r.Highscores[0]
	return &best
}

type Options struct {
	// Rand draws the opponent pace; a time-seeded source is used when nil.
	Rand *rand.Rand
	// OnCheckpoint and OnResult are called from Step.
	OnCheckpoint func(sessionID string, next int)
	OnResult     func(Result)
}

// Car is the planar pose of one vehicle for display.
type Car struct {
	ID  model.VehicleID `json:"id"`
	X   float64         `json:"x"`
	Z   float64         `json:"z"`
	Yaw float64         `json:"yaw"`
	// Progress is the distance covered along the track in meters.
	Progress float64 `json:"progress"`
}

type Session struct {
	ID string

	track    *track.Track
	ledger   *highscore.Ledger
	world    *physics.World
	player   *vehicle.Controller
	opponent *pursuit.Driver
	director *race.Director
	opts     Options
	result   *Result
}

func New(t *track.Track, ledger *highscore.Ledger, opts Options) *Session {
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(rand.Int63()))
	}
	s := &Session{
		ID:     ksuid.New().String(),
		track:  t,
		ledger: ledger,
		world:  physics.NewWorld(),
		opts:   opts,
	}

	playerSpawn := spawnPose(t, playerDistanceOffset, playerLateralOffset)
	s.world.Add(model.Player, playerSpawn.Position, playerSpawn.Yaw, false)
	s.player = vehicle.NewController(t, model.Player, playerSpawn.Position, playerSpawn.Yaw, RideHeight)

	opponentSpawn := spawnPose(t, opponentDistanceOffset, opponentLateralOffset)
	s.world.Add(model.Opponent, opponentSpawn.Position, opponentSpawn.Yaw, true)
	pace := pursuit.PaceMin + opts.Rand.Float64()*pursuit.PaceSpread
	s.opponent = pursuit.NewDriver(t, model.Opponent, opponentSpawn.Yaw, RideHeight, pace)

	s.director = race.NewDirector(t, s.ID, race.Hooks{
		OnCheckpoint: s.checkpoint,
		OnEnd:        s.finish,
	})

	log.Printf("session %s: new race on %.0fm track, opponent pace %.3f\n", s.ID, t.TotalLength(), pace)
	return s
}

func spawnPose(t *track.Track, distanceOffset, lateralOffset float64) track.Pose {
	pose := t.PoseAt(t.StartDistance()+distanceOffset, lateralOffset)
	pose.Position = mgl64.Vec3{pose.Position.X(), RideHeight, pose.Position.Z()}
	return pose
}

// Step advances one fixed tick: bodies, player, opponent, then the director.
// Nothing moves once the race is finished.
func (s *Session) Step(dt float64, controls model.Controls) {
	if s.director.Finished() {
		return
	}
	s.world.Integrate(dt)
	s.player.Update(dt, controls, s.world)
	s.opponent.Update(dt, s.world)
	s.director.Update(dt, s.player.ProgressMeters(), s.opponent.ProgressMeters())
}

func (s *Session) checkpoint(next int) {
	if s.opts.OnCheckpoint != nil {
		s.opts.OnCheckpoint(s.ID, next)
	}
}

func (s *Session) finish(end race.End) {
	result := Result{End: end}
	if end.PlayerWon() {
		result.Highscores = s.ledger.Record(*end.PlayerTime)
		result.Recorded = true
	} else {
		result.Highscores = s.ledger.List()
	}
	s.result = &result

	log.Printf("session %s: %s wins, player %s, ai %s\n", s.ID, end.Winner, helper.OptionalSecondsToMinutes(end.PlayerTime), helper.OptionalSecondsToMinutes(end.AITime))
	if s.opts.OnResult != nil {
		s.opts.OnResult(result)
	}
}

func (s *Session) Status() race.Status {
	return s.director.Status(s.player.Gear(), s.player.SpeedKmh())
}

func (s *Session) Finished() bool {
	return s.director.Finished()
}

// Result is nil until the race finishes.
func (s *Session) Result() *Result {
	return s.result
}

func (s *Session) Cars() []Car {
	progress := map[model.VehicleID]float64{
		model.Player:   s.player.ProgressMeters(),
		model.Opponent: s.opponent.ProgressMeters(),
	}
	ids := []model.VehicleID{model.Player, model.Opponent}
	cars := make([]Car, 0, len(ids))
	for _, id := range ids {
		pose := s.world.ReadPose(id)
		cars = append(cars, Car{
			ID:       id,
			X:        pose.Position.X(),
			Z:        pose.Position.Z(),
			Yaw:      pose.Yaw(),
			Progress: progress[id],
		})
	}
	return cars
}

func (s *Session) Player() *vehicle.Controller {
	return s.player
}

func (s *Session) Opponent() *pursuit.Driver {
	return s.opponent
}

func (s *Session) Track() *track.Track {
	return s.track
}
