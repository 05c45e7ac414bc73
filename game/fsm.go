package game

import (
	"fmt"

	"go.uber.org/zap"
)

// PlayerState 玩家行为状态；数值与客户端协议保持一致
type PlayerState uint8

const (
	StateSpawn PlayerState = iota
	StateIdle
	StateRun
	StateRush
	StateRotate // 只用于广播，左右旋转对客户端都显示为 Rotate
	StateHit
	StateWin
	StateLose
	StateDie
	StateRotateLeft
	StateRotateRight
)

func (s PlayerState) String() string {
	switch s {
	case StateSpawn:
		return "Spawn"
	case StateIdle:
		return "Idle"
	case StateRun:
		return "Run"
	case StateRush:
		return "Rush"
	case StateRotate:
		return "Rotate"
	case StateHit:
		return "Hit"
	case StateWin:
		return "Win"
	case StateLose:
		return "Lose"
	case StateDie:
		return "Die"
	case StateRotateLeft:
		return "RotateLeft"
	case StateRotateRight:
		return "RotateRight"
	default:
		return fmt.Sprintf("PlayerState(%d)", uint8(s))
	}
}

// maxStateChain 一次状态切换中 enter 连续请求切换的最大次数
const maxStateChain = 8

// stateHandlers 单个状态的处理函数；返回 (next, true) 表示请求切换
type stateHandlers struct {
	enter  func(prev PlayerState) (PlayerState, bool)
	update func(dt float64) (PlayerState, bool)
	input  func(in Input) (PlayerState, bool)
	exit   func(next PlayerState)
}

func stay() (PlayerState, bool) { return 0, false }

func goTo(s PlayerState) (PlayerState, bool) { return s, true }

// fsm 以状态枚举为键的处理函数表
type fsm struct {
	current  PlayerState
	handlers map[PlayerState]stateHandlers
	log      *zap.SugaredLogger
}

func newFSM(log *zap.SugaredLogger) *fsm {
	return &fsm{handlers: make(map[PlayerState]stateHandlers), log: log}
}

func (f *fsm) add(s PlayerState, h stateHandlers) { f.handlers[s] = h }

func (f *fsm) state() PlayerState { return f.current }

// start 进入初始状态，不调用 exit
func (f *fsm) start(s PlayerState) { f.change(s, false) }

func (f *fsm) update(dt float64) {
	h, ok := f.handlers[f.current]
	if !ok || h.update == nil {
		f.log.Warnw("fsm has no update handler", "state", f.current)
		return
	}
	if next, changed := h.update(dt); changed {
		f.change(next, true)
	}
}

func (f *fsm) onInput(in Input) {
	h, ok := f.handlers[f.current]
	if !ok || h.input == nil {
		f.log.Warnw("fsm has no input handler", "state", f.current)
		return
	}
	if next, changed := h.input(in); changed {
		f.change(next, true)
	}
}

// change 切换状态；enter 返回的新状态在循环内继续切换，直到稳定或超过上限
func (f *fsm) change(next PlayerState, callExit bool) {
	for depth := 0; ; depth++ {
		if depth >= maxStateChain {
			f.log.Errorw("fsm state chain too long, stopping", "state", f.current, "requested", next)
			return
		}
		prev := f.current
		if callExit {
			if h, ok := f.handlers[prev]; ok && h.exit != nil {
				h.exit(next)
			}
		}
		f.current = next
		f.log.Debugw("state entered", "state", next, "prev", prev)

		h, ok := f.handlers[next]
		if !ok || h.enter == nil {
			f.log.Warnw("fsm has no enter handler", "state", next)
			return
		}
		n, changed := h.enter(prev)
		if !changed {
			return
		}
		next = n
		callExit = true
	}
}
