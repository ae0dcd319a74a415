// Package layout draws the track map used by the live view and the bot.
package layout

import (
	"bufio"
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/llgcode/draw2d"
	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
	"github.com/llgcode/draw2d/draw2dsvg"
	"github.com/pkg/errors"

	"sprintrace/pkg/track"
)

const (
	SizeSVG = 1200.0
	SizePNG = 480.0
	margin  = 40.0
)

var (
	mu = sync.Mutex{}

	roadColor       = color.RGBA{0x39, 0x39, 0x39, 0xff}
	centreColor     = color.RGBA{0xee, 0xee, 0xee, 0xff}
	checkpointColor = color.RGBA{0xe7, 0xe7, 0x72, 0xff}
	startColor      = color.RGBA{0x3c, 0xb3, 0x71, 0xff}
	finishColor     = color.RGBA{0xd6, 0x4b, 0x4b, 0xff}
)

// Metadata maps world XZ coordinates onto the drawn image.
type Metadata struct {
	MinX   float64 `json:"minX"`
	MinZ   float64 `json:"minZ"`
	Scale  float64 `json:"scale"`
	Margin float64 `json:"margin"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewMetadata fits the samples into a canvas whose longest side is size pixels.
func NewMetadata(samples []mgl64.Vec3, size float64) Metadata {
	minX, minZ := math.Inf(1), math.Inf(1)
	maxX, maxZ := math.Inf(-1), math.Inf(-1)
	for _, s := range samples {
		minX = math.Min(minX, s.X())
		maxX = math.Max(maxX, s.X())
		minZ = math.Min(minZ, s.Z())
		maxZ = math.Max(maxZ, s.Z())
	}
	if len(samples) == 0 {
		minX, maxX, minZ, maxZ = 0, 0, 0, 0
	}

	span := math.Max(maxX-minX, maxZ-minZ)
	scale := 1.0
	if span > 0 {
		scale = (size - 2*margin) / span
	}
	return Metadata{
		MinX:   minX,
		MinZ:   minZ,
		Scale:  scale,
		Margin: margin,
		Width:  math.Ceil((maxX-minX)*scale + 2*margin),
		Height: math.Ceil((maxZ-minZ)*scale + 2*margin),
	}
}

// ToImage converts a world position into image pixels, Y pointing down.
func (m Metadata) ToImage(x, z float64) (float64, float64) {
	px := (x-m.MinX)*m.Scale + m.Margin
	py := m.Height - ((z-m.MinZ)*m.Scale + m.Margin)
	return px, py
}

func (m Metadata) rect() image.Rectangle {
	return image.Rect(0, 0, int(m.Width), int(m.Height))
}

// BuildTrackSVG writes the map and appends its metadata as a trailing XML comment.
func BuildTrackSVG(path string, t *track.Track) (Metadata, error) {
	mu.Lock()
	defer mu.Unlock()

	metadata := NewMetadata(t.Samples(), SizeSVG)
	dest := draw2dsvg.NewSvg()
	gc := draw2dsvg.NewGraphicContext(dest)
	drawTrack(gc, t, metadata)
	if err := draw2dsvg.SaveToSvgFile(path, dest); err != nil {
		return metadata, errors.Wrapf(err, "saving %s", path)
	}

	jsonBytes, err := json.Marshal(metadata)
	if err != nil {
		return metadata, err
	}
	buffer := new(bytes.Buffer)
	if err := json.Compact(buffer, jsonBytes); err != nil {
		return metadata, err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return metadata, err
	}
	defer f.Close()
	_, _ = f.Write([]byte("\n<!--\n"))
	_, _ = f.Write(buffer.Bytes())
	_, err = f.Write([]byte("\n-->"))

	return metadata, err
}

// ReadMetadata reads the comment BuildTrackSVG appended.
func ReadMetadata(path string) (Metadata, error) {
	var metadata Metadata

	f, err := os.Open(path)
	if err != nil {
		return metadata, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var lastLine, secondLastLine string
	for scanner.Scan() {
		secondLastLine = lastLine
		lastLine = scanner.Text()
	}
	if err := scanner.Err(); err != nil {
		return metadata, err
	}
	if strings.TrimSpace(lastLine) != "-->" || secondLastLine == "" {
		return metadata, errors.Errorf("%s has no layout metadata", path)
	}
	if err := json.Unmarshal([]byte(secondLastLine), &metadata); err != nil {
		return metadata, errors.Wrap(err, "decoding layout metadata")
	}
	return metadata, nil
}

// BuildTrackPNG writes a small raster thumbnail of the map.
func BuildTrackPNG(path string, t *track.Track) error {
	mu.Lock()
	defer mu.Unlock()

	metadata := NewMetadata(t.Samples(), SizePNG)
	dest := image.NewRGBA(metadata.rect())
	gc := draw2dimg.NewGraphicContext(dest)
	gc.SetFillColor(color.White)
	draw2dkit.Rectangle(gc, 0, 0, metadata.Width, metadata.Height)
	gc.Fill()
	drawTrack(gc, t, metadata)
	return draw2dimg.SaveToPngFile(path, dest)
}

func drawTrack(gc draw2d.GraphicContext, t *track.Track, m Metadata) {
	samples := t.Samples()
	if len(samples) == 0 {
		return
	}

	// road band, then the centreline on top
	strokePath(gc, samples, m, roadColor, math.Max(2, 2*t.HalfWidth()*m.Scale))
	strokePath(gc, samples, m, centreColor, 1)

	radius := math.Max(3, t.HalfWidth()*m.Scale)
	for _, idx := range t.CheckpointIndices() {
		dot(gc, samples[idx], m, checkpointColor, radius*0.6)
	}
	dot(gc, samples[t.StartIndex()], m, startColor, radius)
	dot(gc, samples[t.FinishIndex()], m, finishColor, radius)
}

func strokePath(gc draw2d.GraphicContext, samples []mgl64.Vec3, m Metadata, c color.Color, width float64) {
	gc.Save()
	gc.SetStrokeColor(c)
	gc.SetLineWidth(width)
	gc.SetLineCap(draw2d.RoundCap)
	gc.SetLineJoin(draw2d.RoundJoin)
	for i, s := range samples {
		x, y := m.ToImage(s.X(), s.Z())
		if i == 0 {
			gc.MoveTo(x, y)
		} else {
			gc.LineTo(x, y)
		}
	}
	gc.Stroke()
	gc.Restore()
}

func dot(gc draw2d.GraphicContext, p mgl64.Vec3, m Metadata, c color.Color, radius float64) {
	gc.Save()
	gc.SetFillColor(c)
	x, y := m.ToImage(p.X(), p.Z())
	draw2dkit.Circle(gc, x, y, radius)
	gc.Fill()
	gc.Restore()
}
