package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoBodies(wa, wb float64) (*Character, *Character) {
	a := NewCharacter(10, wa, 0, 0)
	b := NewCharacter(10, wb, 0, 0)
	a.SetLocation(Vec2(0, 0))
	b.SetLocation(Vec2(15, 0))
	return a, b
}

func TestResolveCollisionImpulseIsSymmetric(t *testing.T) {
	a, b := twoBodies(2, 4)
	a.SetSpeed(Vec2(10, 0))
	b.SetSpeed(Vec2(-5, 0))
	va, vb := a.Speed(), b.Speed()

	j := ResolveCollision(a, b, 1)
	require.Greater(t, j, 0.0)

	dA := a.Speed().Sub(va).Scale(a.Weight())
	dB := b.Speed().Sub(vb).Scale(b.Weight())
	assert.InDelta(t, 0, dA.Add(dB).Length(), 1e-9, "momentum change must cancel")
	assert.InDelta(t, j, dA.Length(), 1e-9)
	assert.InDelta(t, -10, a.Speed().X, 1e-9)
	assert.InDelta(t, 5, b.Speed().X, 1e-9)
}

func TestResolveCollisionSkipsSeparatingBodies(t *testing.T) {
	a, b := twoBodies(1, 1)
	a.SetSpeed(Vec2(-10, 0))
	b.SetSpeed(Vec2(10, 0))

	assert.Equal(t, 0.0, ResolveCollision(a, b, 1))
	assert.Equal(t, Vec2(-10, 0), a.Speed())
	assert.Equal(t, Vec2(10, 0), b.Speed())
}

func TestResolveCollisionInfiniteMassUnchanged(t *testing.T) {
	a, b := twoBodies(1, 1)
	a.SetInfiniteWeight(true)
	a.SetSpeed(Vec2(3, 0))
	b.SetSpeed(Vec2(-10, 0))

	ResolveCollision(a, b, 1)
	assert.Equal(t, Vec2(3, 0), a.Speed())
	assert.Greater(t, b.Speed().X, 0.0)

	b.SetInfiniteWeight(true)
	b.SetSpeed(Vec2(-10, 0))
	assert.Equal(t, 0.0, ResolveCollision(a, b, 1), "two immovable bodies exchange nothing")
}

func TestResolveCollisionZeroRelativeVelocity(t *testing.T) {
	a, b := twoBodies(1, 1)
	assert.Equal(t, 0.0, ResolveCollision(a, b, 1))
	assert.True(t, a.Speed().IsZero())
	assert.False(t, b.Speed().IsNaN())
}

func TestCorrectPenetrationConverges(t *testing.T) {
	a, b := twoBodies(1, 1)
	prev := penetration(a, b)
	require.InDelta(t, 5, prev, 1e-12)

	for i := 0; i < 12; i++ {
		CorrectPenetration(a, b, penetration(a, b))
		pen := penetration(a, b)
		assert.Less(t, pen, prev)
		prev = pen
	}
	assert.GreaterOrEqual(t, Distance(a.Location(), b.Location()), a.Radius()+b.Radius()-1e-6)
}

func TestCorrectPenetrationCoincidentBodies(t *testing.T) {
	a, b := twoBodies(1, 1)
	b.SetLocation(a.Location())
	CorrectPenetration(a, b, penetration(a, b))
	assert.False(t, a.Location().IsNaN())
	assert.Greater(t, Distance(a.Location(), b.Location()), 0.0)
}

func TestResolveSpawnCollisionMovesOtherOnly(t *testing.T) {
	spawning, other := twoBodies(1, 1)
	spawning.SetInfiniteWeight(true)

	ResolveSpawnCollision(spawning, other, penetration(spawning, other))
	assert.True(t, spawning.Location().IsZero())
	assert.InDelta(t, 20, Distance(spawning.Location(), other.Location()), 1e-9)
}

func TestContactKeyIsOrderIndependent(t *testing.T) {
	assert.Equal(t, newContactKey(2, 1), newContactKey(1, 2))
}

func TestRoomAppliesContactImpulseOnce(t *testing.T) {
	cfg := testConfig()
	r, _ := newTestRoom(t, cfg, 2)
	startMatch(t, r)

	a, b := r.Character(0), r.Character(1)
	a.SetLocation(Vec2(0, 0))
	b.SetLocation(Vec2(250, 0))
	a.SetSpeed(Vec2(300, 0))

	r.Update(testTick)
	_, touching := r.contacts[newContactKey(0, 1)]
	require.True(t, touching)
	assert.Equal(t, 1, r.Player(0).Killer())
	assert.Equal(t, 0, r.Player(1).Killer())
	bSpeed := b.Speed().Length()
	require.Greater(t, bSpeed, 0.0)

	// 仍然重叠：不再施加冲量，只有摩擦衰减
	a.SetLocation(Vec2(0, 0))
	b.SetLocation(Vec2(250, 0))
	r.Update(testTick)
	assert.Less(t, b.Speed().Length(), bSpeed)

	b.SetLocation(Vec2(900, 0))
	r.Update(testTick)
	_, touching = r.contacts[newContactKey(0, 1)]
	assert.False(t, touching, "contact clears once bodies separate")
}
