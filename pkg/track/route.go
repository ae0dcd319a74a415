package track

import "github.com/go-gl/mathgl/mgl64"

const (
	DefaultDivisions = 1600
	DefaultTension   = 0.28
	DefaultWidth     = 12.0
	// EdgeMargin is how far inside the edge a vehicle still counts as on track.
	EdgeMargin = 1.1
)

var defaultCheckpointFractions = []float64{0.12, 0.24, 0.36, 0.5, 0.63, 0.76, 0.89}

var defaultRoute = [][2]float64{
	{0, 0},
	{220, 0},
	{500, 100},
	{780, 290},
	{1060, 440},
	{1360, 510},
	{1660, 450},
	{1940, 260},
	{2220, 20},
	{2500, -190},
	{2780, -290},
	{3060, -260},
	{3340, -120},
	{3620, 90},
	{3900, 290},
	{4180, 430},
	{4460, 500},
	{4740, 430},
	{5020, 260},
	{5300, 30},
	{5580, -180},
	{5860, -300},
	{6140, -260},
	{6420, -80},
	{6700, 160},
	{6980, 320},
}

// DefaultConfig is the sprint circuit: a rolling 7 km point-to-point route.
func DefaultConfig() Config {
	points := make([]mgl64.Vec3, len(defaultRoute))
	for i, p := range defaultRoute {
		points[i] = mgl64.Vec3{p[0], 0, p[1]}
	}
	fractions := make([]float64, len(defaultCheckpointFractions))
	copy(fractions, defaultCheckpointFractions)

	return Config{
		ControlPoints:       points,
		Divisions:           DefaultDivisions,
		Tension:             DefaultTension,
		HalfWidth:           DefaultWidth / 2,
		CheckpointFractions: fractions,
	}
}
