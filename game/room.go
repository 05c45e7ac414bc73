package game

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"bumparena/config"
)

// RoomState 房间生命周期，只会向前推进
type RoomState uint8

const (
	RoomOpened RoomState = iota
	RoomWaited
	RoomDoing
	RoomEnd
)

func (s RoomState) String() string {
	switch s {
	case RoomOpened:
		return "Opened"
	case RoomWaited:
		return "Waited"
	case RoomDoing:
		return "Doing"
	case RoomEnd:
		return "End"
	default:
		return fmt.Sprintf("RoomState(%d)", uint8(s))
	}
}

// inputBufferSize 每个房间输入队列的容量
const inputBufferSize = 256

type mapPhase struct {
	afterSeconds float64
	radius       float64
}

// Room 一局比赛的权威模拟：所有状态只在 Update 中由单线程修改
type Room struct {
	cfg *config.Config
	log *zap.SugaredLogger
	rng *rand.Rand

	clock      Clock
	maxPlayers int
	characters []*Character
	players    []*PlayerController
	sessions   []Session
	scores     []int
	leaders    []bool
	contacts   map[contactKey]struct{}

	items     []*Item
	itemIndex int
	itemSpawn Deadline

	state      RoomState
	matchStart Deadline // Waited: 开始时间点；Doing: 实际开始的时间点
	mapRadius  float64
	mapPhase   int
	phases     []mapPhase

	inputs chan PlayerInput
}

// Option 房间构造选项
type Option func(*Room)

// WithLogger 注入日志；默认不输出
func WithLogger(log *zap.SugaredLogger) Option {
	return func(r *Room) {
		if log != nil {
			r.log = log
		}
	}
}

// WithRand 注入随机源（道具种类与位置），便于复现
func WithRand(rng *rand.Rand) Option {
	return func(r *Room) {
		if rng != nil {
			r.rng = rng
		}
	}
}

// NewRoom 创建固定人数的房间；players 必须为正
func NewRoom(cfg *config.Config, players int, opts ...Option) *Room {
	if players <= 0 {
		panic(fmt.Sprintf("game: invalid player count %d", players))
	}
	r := &Room{
		cfg:        cfg,
		log:        zap.NewNop().Sugar(),
		rng:        rand.New(rand.NewSource(1)),
		maxPlayers: players,
		characters: make([]*Character, players),
		players:    make([]*PlayerController, players),
		sessions:   make([]Session, players),
		scores:     make([]int, players),
		leaders:    make([]bool, players),
		contacts:   make(map[contactKey]struct{}),
		state:      RoomOpened,
		mapRadius:  cfg.MapRadius,
		phases: []mapPhase{
			{afterSeconds: cfg.MapFirstDisableSeconds, radius: cfg.MapFirstDisableSize},
			{afterSeconds: cfg.MapSecondDisableSeconds, radius: cfg.MapSecondDisableSize},
		},
		inputs: make(chan PlayerInput, inputBufferSize),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.matchStart = r.clock.Now()
	r.itemSpawn = r.clock.Now()

	for i := 0; i < players; i++ {
		ch := NewCharacter(cfg.CharacterRadius, cfg.CharacterWeight, cfg.CharacterFriction, cfg.CharacterMaxSpeed)
		ch.SetLocation(r.SpawnLocation(i))
		ch.SetForward(r.SpawnForward(i))
		r.characters[i] = ch
		r.players[i] = newPlayerController(i, r, ch)
	}
	return r
}

func (r *Room) mustIndex(i int) {
	if i < 0 || i >= r.maxPlayers {
		panic(fmt.Sprintf("game: player index %d out of range [0,%d)", i, r.maxPlayers))
	}
}

// AttachSession 为槽位挂载会话
func (r *Room) AttachSession(i int, s Session) {
	r.mustIndex(i)
	r.sessions[i] = s
}

// PushInput 投递输入（可在其他 goroutine 调用），在下一次 Update 开始时处理；队列满时返回 false
func (r *Room) PushInput(in PlayerInput) bool {
	r.mustIndex(in.Player)
	select {
	case r.inputs <- in:
		return true
	default:
		return false
	}
}

// ReadyToGame 开始等待阶段：所有玩家进入出生状态并下发初始位置
func (r *Room) ReadyToGame() {
	if r.state != RoomOpened {
		return
	}
	r.state = RoomWaited
	r.matchStart.SetNow().Add(r.cfg.GameFirstWaitSeconds)
	for i, p := range r.players {
		p.character.SetLocation(r.SpawnLocation(i))
		p.character.SetForward(r.SpawnForward(i))
		p.Initialize()
		p.BroadcastObjectLocation(true)
	}
	r.log.Infow("room ready", "players", r.maxPlayers, "waitSeconds", r.cfg.GameFirstWaitSeconds)
}

// Update 推进一个 Tick：控制器 → 角色 → 碰撞 → 道具 → 胜负/阶段检查
func (r *Room) Update(dt float64) {
	if r.state == RoomOpened || r.state == RoomEnd {
		return
	}
	r.clock.Advance(dt)
	r.drainInputs()

	if r.state == RoomWaited {
		if !r.matchStart.IsOverNow() {
			return
		}
		r.startMatch()
	}

	r.updatePlayerControllers(dt)
	r.updateCharacters(dt)
	r.checkCollisions()
	r.updateItems()
	r.broadcastLocations()
	r.checkStateChange()
}

func (r *Room) startMatch() {
	r.state = RoomDoing
	r.matchStart.SetNow()
	r.scheduleItemSpawn()
	r.broadcast(MatchStart{DurationSeconds: r.cfg.GameTotalSeconds})
	r.log.Infow("match started", "durationSeconds", r.cfg.GameTotalSeconds)
}

func (r *Room) drainInputs() {
	for {
		select {
		case in := <-r.inputs:
			r.players[in.Player].OnInput(in.Input)
		default:
			return
		}
	}
}

func (r *Room) updatePlayerControllers(dt float64) {
	for _, p := range r.players {
		p.Update(dt)
	}
}

func (r *Room) updateCharacters(dt float64) {
	for _, c := range r.characters {
		c.Update(dt)
	}
}

func (r *Room) broadcastLocations() {
	for _, p := range r.players {
		p.BroadcastObjectLocation(false)
	}
}

// checkStateChange 地图缩小阶段与比赛结束
func (r *Room) checkStateChange() {
	if r.mapPhase < len(r.phases) {
		ph := r.phases[r.mapPhase]
		if r.matchStart.IsOverSeconds(ph.afterSeconds) {
			r.mapPhase++
			if ph.radius < r.mapRadius {
				r.mapRadius = ph.radius
			}
			r.broadcast(MapSizeChanged{Phase: r.mapPhase, Radius: r.mapRadius})
			r.log.Infow("map shrunk", "phase", r.mapPhase, "radius", r.mapRadius)
		}
	}

	if r.matchStart.IsOverSeconds(r.cfg.GameTotalSeconds) {
		r.endMatch()
	}
}

func (r *Room) endMatch() {
	scores := r.Scores()
	r.broadcast(MatchEnd{Scores: scores})

	best := scores[0]
	for _, s := range scores[1:] {
		best = max(best, s)
	}
	for i, p := range r.players {
		if scores[i] == best {
			p.ChangeState(StateWin)
		} else {
			p.ChangeState(StateLose)
		}
	}
	r.state = RoomEnd
	for i, s := range r.sessions {
		if s != nil {
			s.Detach()
			r.sessions[i] = nil
		}
	}
	r.log.Infow("match ended", "scores", scores)
}

func (r *Room) broadcast(ev Event) {
	for _, s := range r.sessions {
		if s != nil {
			s.Send(ev)
		}
	}
}

// SpawnLocation 槽位的出生点：按当前地图半径等分圆周
func (r *Room) SpawnLocation(i int) Vector {
	r.mustIndex(i)
	angle := 360 * float64(i) / float64(r.maxPlayers)
	return Vec2(0, r.mapRadius*r.cfg.MapSpawnPointRatio).Rotated(angle)
}

// SpawnForward 出生时朝向地图中心
func (r *Room) SpawnForward(i int) Vector {
	loc := r.SpawnLocation(i)
	if loc.IsZero() {
		return Vec2(0, 1)
	}
	return loc.Neg().Normalized()
}

// State 房间阶段
func (r *Room) State() RoomState       { return r.state }
func (r *Room) PlayerCount() int       { return r.maxPlayers }
func (r *Room) MapRadius() float64     { return r.mapRadius }
func (r *Room) MapPhase() int          { return r.mapPhase }
func (r *Room) Config() *config.Config { return r.cfg }

// Elapsed 房间时钟经过的秒数
func (r *Room) Elapsed() float64 { return r.clock.Elapsed().Seconds() }

// Player 槽位 i 的控制器；越界 panic
func (r *Room) Player(i int) *PlayerController {
	r.mustIndex(i)
	return r.players[i]
}

// Character 槽位 i 的躯体；越界 panic
func (r *Room) Character(i int) *Character {
	r.mustIndex(i)
	return r.characters[i]
}

// Score 槽位 i 的当前得分
func (r *Room) Score(i int) int {
	r.mustIndex(i)
	return r.scores[i]
}

// Scores 分数副本
func (r *Room) Scores() []int {
	out := make([]int, len(r.scores))
	copy(out, r.scores)
	return out
}

// Items 当前道具副本
func (r *Room) Items() []Item {
	out := make([]Item, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, *it)
	}
	return out
}

// Leaders 当前领先者槽位
func (r *Room) Leaders() []int {
	var out []int
	for i, l := range r.leaders {
		if l {
			out = append(out, i)
		}
	}
	return out
}
