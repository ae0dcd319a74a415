package session

import (
	"sync"

	"sprintrace/pkg/model"
	"sprintrace/pkg/queues"
)

// Input collects player controls between ticks. Axes are level triggered and hold their
// last value; shift-up presses are queued and handed out one per tick.
type Input struct {
	mu     sync.Mutex
	held   model.Controls
	shifts *queues.Queue[struct{}]
}

func NewInput() *Input {
	return &Input{
		shifts: queues.NewQueue[struct{}](),
	}
}

func (in *Input) Set(c model.Controls) {
	c = c.Normalized()
	if c.ShiftUp {
		in.shifts.Push(struct{}{})
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	c.ShiftUp = false
	in.held = c
}

// Next returns the controls for the coming tick.
func (in *Input) Next() model.Controls {
	in.mu.Lock()
	c := in.held
	in.mu.Unlock()
	_, c.ShiftUp = in.shifts.Pop()
	return c
}

// Reset releases every axis and drops pending shifts.
func (in *Input) Reset() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.held = model.Controls{}
	in.shifts.Clear()
}
