package game

import "fmt"

// InputEdge 按键边沿
type InputEdge uint8

const (
	EdgeNone InputEdge = iota
	EdgePressed
	EdgeReleased
)

func (e InputEdge) String() string {
	switch e {
	case EdgeNone:
		return "none"
	case EdgePressed:
		return "pressed"
	case EdgeReleased:
		return "released"
	default:
		return fmt.Sprintf("edge(%d)", uint8(e))
	}
}

// ParseInputEdge 解析客户端上报的边沿字符串，空串视为 none
func ParseInputEdge(s string) (InputEdge, error) {
	switch s {
	case "", "none":
		return EdgeNone, nil
	case "pressed", "click":
		return EdgePressed, nil
	case "released", "release":
		return EdgeReleased, nil
	default:
		return EdgeNone, fmt.Errorf("unknown input edge %q", s)
	}
}

// Input 一次输入事件：左转、右转、冲刺三个按键的边沿
type Input struct {
	Left  InputEdge
	Right InputEdge
	Rush  InputEdge
}

// Valid 三个边沿都在已知范围内
func (in Input) Valid() bool {
	return in.Left <= EdgeReleased && in.Right <= EdgeReleased && in.Rush <= EdgeReleased
}

// PlayerInput 带槽位的输入，由传输层投递到房间队列
type PlayerInput struct {
	Player int
	Input  Input
}
