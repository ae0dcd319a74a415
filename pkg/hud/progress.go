package hud

import (
	"io"
	"math"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"

	"sprintrace/pkg/model"
	"sprintrace/pkg/session"
)

// RaceProgress draws both cars as progress bars on a terminal.
type RaceProgress struct {
	pw       progress.Writer
	trackers map[model.VehicleID]*progress.Tracker
	total    int64
	session  string
}

func NewRaceProgress(out io.Writer, totalMeters float64) *RaceProgress {
	pw := progress.NewWriter()
	pw.SetOutputWriter(out)
	pw.SetAutoStop(false)
	pw.SetTrackerLength(34)
	pw.SetMessageWidth(6)
	pw.SetNumTrackersExpected(2)
	pw.SetSortBy(progress.SortByMessage)
	pw.SetStyle(progress.StyleDefault)
	pw.SetTrackerPosition(progress.PositionRight)
	pw.SetUpdateFrequency(time.Millisecond * 100)
	pw.Style().Options.Separator = ""
	pw.Style().Visibility.ETA = false
	pw.Style().Visibility.ETAOverall = false
	pw.Style().Visibility.Percentage = false
	pw.Style().Visibility.Speed = false
	pw.Style().Visibility.SpeedOverall = false
	pw.Style().Visibility.Time = false
	pw.Style().Visibility.TrackerOverall = false
	pw.Style().Visibility.Value = false
	pw.Style().Visibility.Pinned = false
	pw.Style().Chars.BoxLeft = "|"
	pw.Style().Chars.BoxRight = "🏁"
	pw.Style().Chars.Finished = "-"
	pw.Style().Chars.Finished25 = "-"
	pw.Style().Chars.Finished50 = "-"
	pw.Style().Chars.Finished75 = "-"
	pw.Style().Chars.Unfinished = " "

	rp := &RaceProgress{
		pw:       pw,
		trackers: map[model.VehicleID]*progress.Tracker{},
		total:    int64(math.Ceil(totalMeters)),
	}
	for _, id := range []model.VehicleID{model.Player, model.Opponent} {
		tracker := &progress.Tracker{Message: string(id), Total: rp.total, Units: progress.UnitsDefault}
		rp.trackers[id] = tracker
		pw.AppendTracker(tracker)
	}
	return rp
}

// Render blocks until Stop is called.
func (rp *RaceProgress) Render() {
	rp.pw.Render()
}

func (rp *RaceProgress) Stop() {
	rp.pw.Stop()
}

// Update moves the bars to the cars in frame; a new session starts them over.
func (rp *RaceProgress) Update(frame session.Frame) {
	if frame.Session != rp.session {
		rp.session = frame.Session
		for _, tracker := range rp.trackers {
			tracker.SetValue(0)
		}
	}
	for _, car := range frame.Cars {
		tracker, ok := rp.trackers[car.ID]
		if !ok {
			continue
		}
		value := int64(math.Round(car.Progress))
		if value < 0 {
			value = 0
		} else if value > rp.total {
			value = rp.total
		}
		tracker.SetValue(value)
	}
}
