package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizedZeroVectorIsZero(t *testing.T) {
	n := Vector{}.Normalized()
	assert.True(t, n.IsZero())
	assert.False(t, n.IsNaN())
}

func TestNormalizedHasUnitLength(t *testing.T) {
	n := Vec2(3, 4).Normalized()
	assert.InDelta(t, 1, n.Length(), 1e-12)
	assert.InDelta(t, 0.6, n.X, 1e-12)
}

func TestRotatedKeepsZ(t *testing.T) {
	v := Vector{X: 1, Y: 0, Z: 7}.Rotated(90)
	assert.InDelta(t, 0, v.X, 1e-9)
	assert.InDelta(t, 1, v.Y, 1e-9)
	assert.Equal(t, 7.0, v.Z)
}

func TestReflect(t *testing.T) {
	v := Vec2(1, -1).Reflect(Vec2(0, 1))
	assert.InDelta(t, 1, v.X, 1e-12)
	assert.InDelta(t, 1, v.Y, 1e-12)
}

func TestDistanceAndDot(t *testing.T) {
	assert.InDelta(t, 5, Distance(Vec2(0, 0), Vec2(3, 4)), 1e-12)
	assert.Equal(t, 11.0, Vec2(1, 2).Dot(Vec2(3, 4)))
	assert.Equal(t, Vec2(-1, -2), Vec2(1, 2).Neg())
}
