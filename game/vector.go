package game

import "math"

// Vector 二维位置/速度（Z 只用于下发给客户端的地面高度提示）
type Vector struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
	Z float64 `json:"z" msgpack:"z"`
}

// Vec2 构造 Z=0 的向量
func Vec2(x, y float64) Vector { return Vector{X: x, Y: y} }

// Add 逐分量相加
func (v Vector) Add(o Vector) Vector { return Vector{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub 逐分量相减
func (v Vector) Sub(o Vector) Vector { return Vector{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Mul 逐分量相乘
func (v Vector) Mul(o Vector) Vector { return Vector{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }

// Scale 数乘
func (v Vector) Scale(s float64) Vector {
	return Vector{v.X * s, v.Y * s, v.Z * s}
}

// Neg 反向
func (v Vector) Neg() Vector { return v.Scale(-1) }

// Dot 点积
func (v Vector) Dot(o Vector) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// LengthSqr 长度的平方
func (v Vector) LengthSqr() float64 { return v.Dot(v) }

// Length 长度
func (v Vector) Length() float64 { return math.Sqrt(v.LengthSqr()) }

// Normalized 单位向量；零向量返回零向量
func (v Vector) Normalized() Vector {
	l := v.Length()
	if l == 0 {
		return Vector{}
	}
	return v.Scale(1 / l)
}

// Rotated 在 XY 平面内旋转 deg 度，Z 保持不变
func (v Vector) Rotated(deg float64) Vector {
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return Vector{X: cos*v.X - sin*v.Y, Y: sin*v.X + cos*v.Y, Z: v.Z}
}

// Reflect 以 normal 为法线反射
func (v Vector) Reflect(normal Vector) Vector {
	return v.Sub(normal.Scale(2 * v.Dot(normal)))
}

// Atan2 XY 平面朝向角（弧度）
func (v Vector) Atan2() float64 { return math.Atan2(v.Y, v.X) }

// IsZero 三个分量都为 0
func (v Vector) IsZero() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// IsNaN 任一分量为 NaN
func (v Vector) IsNaN() bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z)
}

// IsInf 任一分量为无穷
func (v Vector) IsInf() bool {
	return math.IsInf(v.X, 0) || math.IsInf(v.Y, 0) || math.IsInf(v.Z, 0)
}

// Distance 两点距离
func Distance(a, b Vector) float64 { return a.Sub(b).Length() }
