package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCharacterMovesForwardOnlyWhenMoving(t *testing.T) {
	c := NewCharacter(10, 1, 0, 0)
	c.SetForward(Vec2(1, 0))
	c.SetBaseMoveSpeed(100)

	c.Update(0.5)
	assert.True(t, c.Location().IsZero())

	c.SetMoving(true)
	c.Update(0.5)
	assert.InDelta(t, 50, c.Location().X, 1e-9)
}

func TestCharacterFrictionNeverOvershootsZero(t *testing.T) {
	c := NewCharacter(10, 1, 100, 0)
	c.AddSpeed(Vec2(30, 40)) // |v| = 50

	c.Update(0.1) // decay 20
	assert.InDelta(t, 30, c.Speed().Length(), 1e-9)

	c.Update(0.5) // decay 100 > 30
	assert.True(t, c.Speed().IsZero())
}

func TestCharacterSpeedClampedToMax(t *testing.T) {
	c := NewCharacter(10, 1, 0, 100)
	c.AddSpeed(Vec2(500, 0))
	assert.InDelta(t, 100, c.Speed().Length(), 1e-9)
}

func TestCharacterRotation(t *testing.T) {
	c := NewCharacter(10, 1, 0, 0)
	c.SetForward(Vec2(0, 1))
	c.RotateRight(90)
	assert.InDelta(t, -1, c.Forward().X, 1e-9)
	c.RotateLeft(90)
	assert.InDelta(t, 1, c.Forward().Y, 1e-9)
}

func TestCharacterInfiniteWeight(t *testing.T) {
	c := NewCharacter(10, 4, 0, 0)
	assert.Equal(t, 0.25, c.InverseWeight())
	assert.Equal(t, 4.0, c.EffectiveWeight())

	c.SetInfiniteWeight(true)
	assert.Equal(t, 0.0, c.InverseWeight())
	assert.Equal(t, InfiniteWeight, c.EffectiveWeight())
}

func TestNewCharacterRejectsInvalidBody(t *testing.T) {
	assert.Panics(t, func() { NewCharacter(0, 1, 0, 0) })
	assert.Panics(t, func() { NewCharacter(1, -1, 0, 0) })
}
