// Package hud renders race state as text tables for the terminal and the bot.
package hud

import (
	"bytes"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"sprintrace/pkg/helper"
	"sprintrace/pkg/model"
	"sprintrace/pkg/race"
	"sprintrace/pkg/session"
)

const (
	noTimes  = "No times yet"
	bestNone = "Best: --:--.---"
)

func newTable(b *bytes.Buffer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(b)
	t.SetStyle(table.StyleRounded)
	return t
}

func RenderStatus(s race.Status) string {
	var b bytes.Buffer
	t := newTable(&b)
	t.AppendRow(table.Row{"Track", s.DistanceLabel()})
	t.AppendRow(table.Row{"Checkpoint", s.CheckpointLabel()})
	t.AppendRow(table.Row{"Gear", s.GearLabel()})
	t.AppendRow(table.Row{"Speed", s.SpeedLabel()})
	t.AppendRow(table.Row{"Time", s.Elapsed})
	t.AppendSeparator()
	t.AppendRow(table.Row{"Status", s.StatusLine})
	t.Render()
	return b.String()
}

// RenderHighscores lists the ranked times under the best-time line.
func RenderHighscores(scores []float64) string {
	if len(scores) == 0 {
		return fmt.Sprintf("%s\n%s\n", bestNone, noTimes)
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "Best: %s\n", helper.SecondsToMinutes(scores[0]))
	t := newTable(&b)
	t.AppendHeader(table.Row{"#", "Time"})
	for i, s := range scores {
		t.AppendRow(table.Row{i + 1, helper.SecondsToMinutes(s)})
	}
	t.Render()
	return b.String()
}

// Headline is the one-line verdict shown after a race.
func Headline(r session.Result) string {
	if r.Winner == model.Player {
		return "Victory!"
	}
	return "AI wins"
}

// Summary is the result line comparing both times.
func Summary(r session.Result) string {
	player := helper.OptionalSecondsToMinutes(r.PlayerTime)
	ai := helper.OptionalSecondsToMinutes(r.AITime)
	if r.Winner == model.Player {
		return fmt.Sprintf("You beat the AI. Your time: %s | AI: %s", player, ai)
	}
	return fmt.Sprintf("AI time: %s | Your time: %s. Try again.", ai, player)
}

func RenderResult(r session.Result) string {
	return fmt.Sprintf("%s\n%s\n\n%s", Headline(r), Summary(r), RenderHighscores(r.Highscores))
}
