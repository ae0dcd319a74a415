package track

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectExactSample(t *testing.T) {
	tr := buildDefault(t)

	for i := 0; i < tr.Len(); i += 37 {
		for _, hint := range []int{i, i - 100, i + 100} {
			p := tr.Project(tr.Sample(i), hint)
			require.Equal(t, tr.Sample(i), tr.Sample(p.Index), "sample %d hint %d", i, hint)
			assert.InDelta(t, 0.0, p.Lateral, 1e-9)
			assert.InDelta(t, tr.Cumulative(i), p.Progress, 1e-6)
		}
	}
}

func TestProjectLateralOffset(t *testing.T) {
	tr := buildStraight(t)

	i := tr.IndexAtDistance(400)
	s := tr.Sample(i)
	p := tr.Project(mgl64.Vec3{s.X(), 0, s.Z() + 3}, i)

	assert.Equal(t, i, p.Index)
	assert.InDelta(t, 3.0, p.Lateral, 1e-9)
	assert.LessOrEqual(t, p.Lateral, tr.HalfWidth()-EdgeMargin)

	p = tr.Project(mgl64.Vec3{s.X(), 0, s.Z() - 3}, i)
	assert.InDelta(t, -3.0, p.Lateral, 1e-9)
}

func TestProjectProgressClamped(t *testing.T) {
	tr := buildStraight(t)

	tests := []mgl64.Vec3{
		{-5000, 0, 0},
		{1e6, 0, 0},
		{500, 0, 1e5},
		{-3, 0, -3},
		{1003, 0, 0},
	}
	for _, pos := range tests {
		for _, hint := range []int{-10, 0, 500, 5000} {
			p := tr.Project(pos, hint)
			assert.GreaterOrEqual(t, p.Progress, 0.0)
			assert.LessOrEqual(t, p.Progress, tr.TotalLength())
			assert.GreaterOrEqual(t, p.Index, 0)
			assert.Less(t, p.Index, tr.Len())
		}
	}
	assert.Equal(t, 0.0, tr.Project(mgl64.Vec3{-5000, 0, 0}, 0).Progress)
	assert.Equal(t, tr.TotalLength(), tr.Project(mgl64.Vec3{1e6, 0, 0}, 0).Progress)
}

func TestProjectRecoversFromStaleHint(t *testing.T) {
	tr := buildDefault(t)

	target := tr.Len() - 10
	p := tr.Project(tr.Sample(target), 0)
	assert.Equal(t, tr.Sample(target), tr.Sample(p.Index))
}
