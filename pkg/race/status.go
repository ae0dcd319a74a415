package race

import (
	"fmt"

	"sprintrace/pkg/vehicle"
)

// Status is the read-only snapshot pushed to the presentation layer every tick.
type Status struct {
	Session         string  `json:"session,omitempty"`
	DistanceKm      float64 `json:"distanceKm"`
	TotalKm         float64 `json:"totalKm"`
	Checkpoints     int     `json:"checkpoints"`
	CheckpointTotal int     `json:"checkpointTotal"`
	Gear            int     `json:"gear"`
	MaxGear         int     `json:"maxGear"`
	SpeedKmh        int     `json:"speedKmh"`
	ElapsedSeconds  float64 `json:"elapsedSeconds"`
	Elapsed         string  `json:"elapsed"`
	StatusLine      string  `json:"statusLine"`
	Finished        bool    `json:"finished"`
}

// IdleStatus is shown before the first race starts.
func IdleStatus() Status {
	return Status{
		Gear:    1,
		MaxGear: vehicle.MaxGear,
		Elapsed: "00:00.000",
	}
}

func (s Status) DistanceLabel() string {
	return fmt.Sprintf("%.2f / %.2f km", s.DistanceKm, s.TotalKm)
}

func (s Status) CheckpointLabel() string {
	return fmt.Sprintf("%d/%d", s.Checkpoints, s.CheckpointTotal)
}

func (s Status) GearLabel() string {
	return fmt.Sprintf("%d/%d", s.Gear, s.MaxGear)
}

func (s Status) SpeedLabel() string {
	return fmt.Sprintf("%d km/h", s.SpeedKmh)
}
