package session

import (
	"math"
	"sync"

	"github.com/pkg/errors"

	"sprintrace/pkg/race"
)

const (
	// FixedStep is the simulation tick.
	FixedStep = 1.0 / 60.0
	// MaxFrameTime caps how much real time one Advance may simulate.
	MaxFrameTime = 0.05
)

// ErrNoSession is returned when a snapshot is taken before any race was started.
var ErrNoSession = errors.New("no race started")

// Frame is what the live view draws.
type Frame struct {
	Session string      `json:"session"`
	Status  race.Status `json:"status"`
	Cars    []Car       `json:"cars"`
}

type Factory func() *Session

// Runner owns the current session and converts real elapsed time into fixed steps.
type Runner struct {
	mu          sync.Mutex
	factory     Factory
	input       *Input
	current     *Session
	accumulator float64
}

func NewRunner(factory Factory, input *Input) *Runner {
	return &Runner{
		factory: factory,
		input:   input,
	}
}

// Restart discards the running race, if any, and starts a new one.
func (r *Runner) Restart() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.input.Reset()
	r.accumulator = 0
	r.current = r.factory()
	return r.current
}

// Advance simulates elapsed seconds of real time and returns the steps taken.
func (r *Runner) Advance(elapsed float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil || elapsed <= 0 || math.IsNaN(elapsed) {
		return 0
	}
	r.accumulator += math.Min(elapsed, MaxFrameTime)
	steps := 0
	for r.accumulator >= FixedStep {
		r.current.Step(FixedStep, r.input.Next())
		r.accumulator -= FixedStep
		steps++
	}
	return steps
}

func (r *Runner) Current() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Result is the finished race's result, nil while running or before the first race.
func (r *Runner) Result() *Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return nil
	}
	return r.current.Result()
}

// Frame snapshots the current race; the idle status is reported before the first race.
func (r *Runner) Frame() (Frame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return Frame{Status: race.IdleStatus(), Cars: []Car{}}, ErrNoSession
	}
	return Frame{
		Session: r.current.ID,
		Status:  r.current.Status(),
		Cars:    r.current.Cars(),
	}, nil
}
