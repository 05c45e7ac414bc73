package game

import (
	"go.uber.org/zap"

	"bumparena/config"
)

// PlayerController 单个玩家槽位的行为控制：状态机、冲刺资源、增益与击杀判定
type PlayerController struct {
	index     int
	room      *Room
	character *Character
	cfg       *config.Config
	log       *zap.SugaredLogger
	fsm       *fsm

	buff         ItemType
	buffDeadline Deadline

	rushCount  int
	rushRecast Deadline // 再次冲刺的最早时间
	rushRegen  Deadline // 下一次恢复冲刺次数的时间

	spawnDeadline   Deadline
	respawnDeadline Deadline

	lastCollided         int
	lastCollidedDeadline Deadline

	leader bool
}

func newPlayerController(index int, room *Room, character *Character) *PlayerController {
	c := &PlayerController{
		index:                index,
		room:                 room,
		character:            character,
		cfg:                  room.cfg,
		log:                  room.log.With("player", index),
		buff:                 ItemNone,
		rushCount:            room.cfg.RushMaxCount,
		rushRecast:           room.clock.Now(),
		rushRegen:            room.clock.Now(),
		spawnDeadline:        room.clock.Now(),
		respawnDeadline:      room.clock.Now(),
		buffDeadline:         room.clock.Now(),
		lastCollided:         NoKiller,
		lastCollidedDeadline: room.clock.Now(),
	}
	c.fsm = newFSM(c.log)
	c.addStateHandlers()
	c.applyBuffStats()
	return c
}

// Initialize 进入首次出生状态并重置冲刺资源
func (c *PlayerController) Initialize() {
	c.rushCount = c.cfg.RushMaxCount
	c.rushRecast.SetNow()
	c.rushRegen.SetNow()
	c.fsm.start(StateSpawn)
}

// Index 槽位下标
func (c *PlayerController) Index() int            { return c.index }
func (c *PlayerController) Character() *Character { return c.character }
func (c *PlayerController) State() PlayerState    { return c.fsm.state() }
func (c *PlayerController) Buff() ItemType        { return c.buff }
func (c *PlayerController) RushCount() int        { return c.rushCount }
func (c *PlayerController) IsLeader() bool        { return c.leader }
func (c *PlayerController) IsGhost() bool         { return c.buff == ItemGhost }

// ChangeState 由房间从外部强制切换状态（死亡、胜负）
func (c *PlayerController) ChangeState(s PlayerState) {
	c.fsm.change(s, true)
}

// Update 推进状态机、冲刺次数恢复与增益到期
func (c *PlayerController) Update(dt float64) {
	c.fsm.update(dt)

	if c.rushCount < c.cfg.RushMaxCount && c.rushRegen.IsOverNow() {
		c.rushCount++
		if c.rushCount < c.cfg.RushMaxCount {
			c.rushRegen.SetNow().Add(c.cfg.RushRegenSeconds)
		}
		c.room.broadcast(RushCountChanged{Player: c.index, Count: c.rushCount})
	}

	if c.buff != ItemNone && c.buffDeadline.IsOverNow() {
		c.clearBuff()
	}
}

// OnInput 处理一次输入；非法输入记录后忽略
func (c *PlayerController) OnInput(in Input) {
	if !in.Valid() {
		c.log.Warnw("invalid input ignored", "left", in.Left, "right", in.Right, "rush", in.Rush)
		return
	}
	c.fsm.onInput(in)
}

// OnCollided 记录最近碰撞者，用于击杀判定
func (c *PlayerController) OnCollided(other int) {
	c.lastCollided = other
	c.lastCollidedDeadline.SetNow().Add(c.cfg.ScoreKillerJudgeSec)
}

// Killer 判定窗口内最近碰撞的玩家，没有则返回 NoKiller
func (c *PlayerController) Killer() int {
	if c.lastCollided == NoKiller || c.lastCollided == c.index {
		return NoKiller
	}
	if c.lastCollidedDeadline.IsOverNow() {
		return NoKiller
	}
	return c.lastCollided
}

// CanRush 冷却结束且有可用次数（Clover 增益不消耗次数）
func (c *PlayerController) CanRush() bool {
	if !c.rushRecast.IsOverNow() {
		return false
	}
	return c.buff == ItemClover || c.rushCount > 0
}

func (c *PlayerController) useRush() {
	recast := c.cfg.RushRecastSeconds
	if c.buff == ItemStrongWill {
		recast *= c.cfg.BuffStrongWillRecastRatio
	}
	c.rushRecast.SetNow().Add(recast)

	if c.buff != ItemClover {
		if c.rushCount == c.cfg.RushMaxCount {
			c.rushRegen.SetNow().Add(c.cfg.RushRegenSeconds)
		}
		c.rushCount--
		c.room.broadcast(RushCountChanged{Player: c.index, Count: c.rushCount})
	}
	c.character.AddSpeed(c.character.Forward().Scale(c.cfg.CharacterRushSpeed))
}

// ApplyBuff 获得增益；同一时间只保留一个，新的替换旧的
func (c *PlayerController) ApplyBuff(t ItemType) {
	if t == ItemNone {
		return
	}
	c.clearBuff()
	c.buff = t
	c.buffDeadline.SetNow().Add(c.buffSeconds(t))
	c.applyBuffStats()
	c.room.broadcast(BuffStart{Player: c.index, Buff: t})
}

func (c *PlayerController) clearBuff() {
	if c.buff == ItemNone {
		return
	}
	old := c.buff
	c.buff = ItemNone
	c.applyBuffStats()
	c.room.broadcast(BuffEnd{Player: c.index, Buff: old})
}

func (c *PlayerController) buffSeconds(t ItemType) float64 {
	switch t {
	case ItemClover:
		return c.cfg.BuffCloverSeconds
	case ItemFortify:
		return c.cfg.BuffFortifySeconds
	case ItemGhost:
		return c.cfg.BuffGhostSeconds
	case ItemStrongWill:
		return c.cfg.BuffStrongWillSeconds
	case ItemSwiftMove:
		return c.cfg.BuffSwiftMoveSeconds
	default:
		return 0
	}
}

// applyBuffStats 按当前增益重算移动速度与质量
func (c *PlayerController) applyBuffStats() {
	speed := c.cfg.CharacterMoveSpeed
	weight := c.cfg.CharacterWeight
	switch c.buff {
	case ItemSwiftMove:
		speed *= c.cfg.BuffSwiftMoveSpeedRatio
	case ItemFortify:
		weight *= c.cfg.BuffFortifyWeightRatio
	}
	c.character.SetBaseMoveSpeed(speed)
	c.character.SetWeight(weight)
}

// SetLeader 成为/失去领先者：调整碰撞半径并广播
func (c *PlayerController) SetLeader(leader bool) {
	if c.leader == leader {
		return
	}
	c.leader = leader
	if leader {
		c.character.SetRadius(c.cfg.CharacterKingRadius)
		c.room.broadcast(LeaderStart{Player: c.index})
		return
	}
	c.character.SetRadius(c.cfg.CharacterRadius)
	c.room.broadcast(LeaderEnd{Player: c.index})
}

func (c *PlayerController) broadcastState(s PlayerState) {
	c.room.broadcast(StateChanged{Player: c.index, State: s})
}

// BroadcastObjectLocation 广播位置；setHeight 为真时客户端强制使用重生高度
func (c *PlayerController) BroadcastObjectLocation(setHeight bool) {
	loc := c.character.Location()
	loc.Z = c.cfg.MapDefaultHeight
	if setHeight {
		loc.Z = c.cfg.MapRespawnHeight
	}
	c.room.broadcast(ObjectLocation{
		Player:    c.index,
		State:     c.State(),
		Location:  loc,
		Forward:   c.character.Forward(),
		Velocity:  c.character.Velocity(),
		SetHeight: setHeight,
	})
}

func (c *PlayerController) onMoveInput(in Input) (PlayerState, bool) {
	switch {
	case in.Left == EdgePressed:
		return goTo(StateRotateLeft)
	case in.Right == EdgePressed:
		return goTo(StateRotateRight)
	case in.Rush == EdgePressed:
		return c.tryRush()
	}
	return stay()
}

// tryRush 冲刺条件不满足时留在当前状态，不重新进入也不广播
func (c *PlayerController) tryRush() (PlayerState, bool) {
	if !c.CanRush() {
		c.log.Debugw("rush rejected", "count", c.rushCount)
		return stay()
	}
	return goTo(StateRush)
}

func ignoreInput(Input) (PlayerState, bool) { return stay() }

func noUpdate(float64) (PlayerState, bool) { return stay() }

func (c *PlayerController) addStateHandlers() {
	c.fsm.add(StateSpawn, stateHandlers{
		enter: func(prev PlayerState) (PlayerState, bool) {
			c.broadcastState(StateSpawn)
			c.character.SetMoving(false)
			c.character.SetSpeed(Vector{})
			c.character.SetInfiniteWeight(true)
			wait := c.cfg.CharacterFirstSpawnWait
			if prev == StateDie {
				wait = c.cfg.CharacterSpawnSeconds
			}
			c.spawnDeadline.SetNow().Add(wait)
			return stay()
		},
		update: func(float64) (PlayerState, bool) {
			if c.spawnDeadline.IsOverNow() {
				c.character.SetInfiniteWeight(false)
				return goTo(StateIdle)
			}
			return stay()
		},
		input: ignoreInput,
	})

	c.fsm.add(StateIdle, stateHandlers{
		enter: func(PlayerState) (PlayerState, bool) {
			c.broadcastState(StateIdle)
			return stay()
		},
		update: func(float64) (PlayerState, bool) { return goTo(StateRun) },
		input:  c.onMoveInput,
	})

	c.fsm.add(StateRun, stateHandlers{
		enter: func(PlayerState) (PlayerState, bool) {
			c.broadcastState(StateRun)
			c.character.SetMoving(true)
			return stay()
		},
		update: noUpdate,
		input:  c.onMoveInput,
	})

	c.fsm.add(StateRotateLeft, stateHandlers{
		enter: func(PlayerState) (PlayerState, bool) {
			c.broadcastState(StateRotate)
			c.character.SetMoving(false)
			return stay()
		},
		update: func(dt float64) (PlayerState, bool) {
			c.character.RotateLeft(c.cfg.CharacterRotateSpeed * dt)
			return stay()
		},
		input: func(in Input) (PlayerState, bool) {
			switch {
			case in.Left == EdgeReleased:
				return goTo(StateRun)
			case in.Right == EdgePressed:
				return goTo(StateRotateRight)
			case in.Rush == EdgePressed:
				return c.tryRush()
			}
			return stay()
		},
	})

	c.fsm.add(StateRotateRight, stateHandlers{
		enter: func(PlayerState) (PlayerState, bool) {
			c.broadcastState(StateRotate)
			c.character.SetMoving(false)
			return stay()
		},
		update: func(dt float64) (PlayerState, bool) {
			c.character.RotateRight(c.cfg.CharacterRotateSpeed * dt)
			return stay()
		},
		input: func(in Input) (PlayerState, bool) {
			switch {
			case in.Left == EdgePressed:
				return goTo(StateRotateLeft)
			case in.Right == EdgeReleased:
				return goTo(StateRun)
			case in.Rush == EdgePressed:
				return c.tryRush()
			}
			return stay()
		},
	})

	c.fsm.add(StateRush, stateHandlers{
		enter: func(prev PlayerState) (PlayerState, bool) {
			if !c.CanRush() {
				return goTo(prev)
			}
			c.broadcastState(StateRush)
			c.useRush()
			return stay()
		},
		update: func(float64) (PlayerState, bool) {
			if c.character.Speed().Length() < c.cfg.CharacterRushEndSpeed {
				return goTo(StateRun)
			}
			return stay()
		},
		input: ignoreInput,
	})

	c.fsm.add(StateDie, stateHandlers{
		enter: func(PlayerState) (PlayerState, bool) {
			c.character.SetMoving(false)
			c.character.SetInfiniteWeight(false)
			c.clearBuff()
			out := c.character.Location().Normalized()
			if out.IsZero() {
				out = c.character.Forward()
			}
			c.character.SetSpeed(out.Scale(c.cfg.CharacterMapOutSpeed))
			c.respawnDeadline.SetNow().Add(c.cfg.CharacterRespawnSeconds)
			c.lastCollided = NoKiller
			c.broadcastState(StateDie)
			return stay()
		},
		update: func(float64) (PlayerState, bool) {
			if !c.respawnDeadline.IsOverNow() {
				return stay()
			}
			c.character.SetLocation(c.room.SpawnLocation(c.index))
			c.character.SetForward(c.room.SpawnForward(c.index))
			c.character.SetSpeed(Vector{})
			c.BroadcastObjectLocation(true)
			return goTo(StateSpawn)
		},
		input: ignoreInput,
	})

	// Hit 只出现在客户端协议中，服务端没有进入它的路径
	for _, s := range []PlayerState{StateHit, StateWin, StateLose} {
		s := s
		c.fsm.add(s, stateHandlers{
			enter: func(PlayerState) (PlayerState, bool) {
				if s != StateHit {
					c.character.SetMoving(false)
				}
				c.broadcastState(s)
				return stay()
			},
			update: noUpdate,
			input:  ignoreInput,
		})
	}
}
