package game

import "math"

// InfiniteWeight 无敌（出生）状态下的等效质量
const InfiniteWeight = 1e9

// Character 玩家的物理躯体：圆形刚体 + 前进方向 + 冲量速度
type Character struct {
	location      Vector
	forward       Vector
	impulse       Vector
	baseMoveSpeed float64
	radius        float64
	weight        float64
	infinite      bool
	moving        bool

	friction float64
	maxSpeed float64 // 冲量速度上限，<=0 不限制
}

// NewCharacter 创建躯体；radius、weight 必须为正
func NewCharacter(radius, weight, friction, maxSpeed float64) *Character {
	if radius <= 0 || weight <= 0 {
		panic("game: character radius and weight must be positive")
	}
	return &Character{
		forward:  Vec2(0, 1),
		radius:   radius,
		weight:   weight,
		friction: friction,
		maxSpeed: maxSpeed,
	}
}

// Update 积分位置并按摩擦衰减冲量速度
func (c *Character) Update(dt float64) {
	c.location = c.location.Add(c.Velocity().Scale(dt))

	decay := c.impulse.Normalized().Scale(c.friction * dt * 2)
	if decay.LengthSqr() > c.impulse.LengthSqr() {
		c.impulse = Vector{}
		return
	}
	c.impulse = c.impulse.Sub(decay)
}

// Velocity 本帧最终速度 = 前进速度 + 冲量速度
func (c *Character) Velocity() Vector {
	speed := 0.0
	if c.moving {
		speed = c.baseMoveSpeed
	}
	return c.forward.Scale(speed).Add(c.impulse)
}

// RotateLeft 朝向左转 deg 度；客户端坐标系为左手系，向左转对应负角度
func (c *Character) RotateLeft(deg float64) { c.forward = c.forward.Rotated(-deg) }

// RotateRight 朝向右转 deg 度
func (c *Character) RotateRight(deg float64) { c.forward = c.forward.Rotated(deg) }

// AddSpeed 叠加冲量速度（冲刺、碰撞）
func (c *Character) AddSpeed(v Vector) {
	c.SetSpeed(c.impulse.Add(v))
}

// SetSpeed 直接设置冲量速度
func (c *Character) SetSpeed(v Vector) {
	if v.IsNaN() || v.IsInf() {
		return
	}
	if c.maxSpeed > 0 && v.LengthSqr() > c.maxSpeed*c.maxSpeed {
		v = v.Normalized().Scale(c.maxSpeed)
	}
	c.impulse = v
}

// Speed 当前冲量速度（不含前进速度）
func (c *Character) Speed() Vector { return c.impulse }

// Location 当前位置
func (c *Character) Location() Vector { return c.location }

// SetLocation 直接放置到 v
func (c *Character) SetLocation(v Vector) { c.location = v }

// Translate 平移，用于穿透修正
func (c *Character) Translate(delta Vector) { c.location = c.location.Add(delta) }

// Forward 单位朝向
func (c *Character) Forward() Vector { return c.forward }

// Radius 碰撞半径
func (c *Character) Radius() float64 { return c.radius }

// BaseMoveSpeed 前进速度（已计入增益）
func (c *Character) BaseMoveSpeed() float64 { return c.baseMoveSpeed }

// IsMoving 是否沿朝向前进
func (c *Character) IsMoving() bool { return c.moving }

// SetMoving 开关前进
func (c *Character) SetMoving(moving bool) { c.moving = moving }

// Weight 当前质量（已计入增益）
func (c *Character) Weight() float64 { return c.weight }

// IsInfiniteWeight 是否处于出生无敌
func (c *Character) IsInfiniteWeight() bool { return c.infinite }

// SetInfiniteWeight 开关出生无敌
func (c *Character) SetInfiniteWeight(b bool) { c.infinite = b }

// SetForward 设置朝向，零向量忽略
func (c *Character) SetForward(v Vector) {
	n := v.Normalized()
	if n.IsZero() {
		return
	}
	c.forward = n
}

// SetRadius 设置碰撞半径，非正值忽略
func (c *Character) SetRadius(r float64) {
	if r > 0 {
		c.radius = r
	}
}

// SetWeight 设置质量，非正值忽略
func (c *Character) SetWeight(w float64) {
	if w > 0 {
		c.weight = w
	}
}

// SetBaseMoveSpeed 设置前进速度，负值按 0 处理
func (c *Character) SetBaseMoveSpeed(s float64) { c.baseMoveSpeed = math.Max(0, s) }

// EffectiveWeight 碰撞计算使用的质量
func (c *Character) EffectiveWeight() float64 {
	if c.infinite {
		return InfiniteWeight
	}
	return c.weight
}

// InverseWeight 质量倒数；无限质量时为 0，冲量不会改变其速度
func (c *Character) InverseWeight() float64 {
	if c.infinite {
		return 0
	}
	return 1 / c.weight
}
