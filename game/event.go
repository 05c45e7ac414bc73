package game

// Event 房间向客户端广播的抽象事件，编码由传输层负责
type Event interface {
	Kind() string
}

// Session 房间槽位上挂载的会话
type Session interface {
	Send(ev Event)
	// Detach 房间结束时调用，之后不再收到事件
	Detach()
}

// NoKiller 击杀日志中没有击杀者
const NoKiller = -1

// StateChanged 玩家状态变化；Rotate 代表左右转两个内部状态
type StateChanged struct {
	Player int         `json:"player" msgpack:"player"`
	State  PlayerState `json:"state" msgpack:"state"`
}

// ObjectLocation 每个 Tick 下发的位置快照；SetHeight 要求客户端贴地
type ObjectLocation struct {
	Player    int         `json:"player" msgpack:"player"`
	State     PlayerState `json:"state" msgpack:"state"`
	Location  Vector      `json:"location" msgpack:"location"`
	Forward   Vector      `json:"forward" msgpack:"forward"`
	Velocity  Vector      `json:"velocity" msgpack:"velocity"`
	SetHeight bool        `json:"setHeight" msgpack:"setHeight"`
}

// RushCountChanged 冲刺次数变化
type RushCountChanged struct {
	Player int `json:"player" msgpack:"player"`
	Count  int `json:"count" msgpack:"count"`
}

// BuffStart 获得增益
type BuffStart struct {
	Player int      `json:"player" msgpack:"player"`
	Buff   ItemType `json:"buff" msgpack:"buff"`
}

// BuffEnd 增益到期或被替换
type BuffEnd struct {
	Player int      `json:"player" msgpack:"player"`
	Buff   ItemType `json:"buff" msgpack:"buff"`
}

// LeaderStart 成为领先者（头顶王冠、半径变大）
type LeaderStart struct {
	Player int `json:"player" msgpack:"player"`
}

// LeaderEnd 失去领先
type LeaderEnd struct {
	Player int `json:"player" msgpack:"player"`
}

// ItemSpawn 道具生成
type ItemSpawn struct {
	Index    int      `json:"index" msgpack:"index"`
	Type     ItemType `json:"type" msgpack:"type"`
	Location Vector   `json:"location" msgpack:"location"`
}

// ItemRemove 道具移除；Eaten 为 false 表示过期
type ItemRemove struct {
	Index int  `json:"index" msgpack:"index"`
	Eaten bool `json:"eaten" msgpack:"eaten"`
}

// KillLog 击杀日志
type KillLog struct {
	Victim int `json:"victim" msgpack:"victim"`
	Killer int `json:"killer" msgpack:"killer"` // NoKiller 表示自杀
}

// MapSizeChanged 地图缩圈
type MapSizeChanged struct {
	Phase  int     `json:"phase" msgpack:"phase"`
	Radius float64 `json:"radius" msgpack:"radius"`
}

// MatchStart 对局开始
type MatchStart struct {
	DurationSeconds float64 `json:"durationSeconds" msgpack:"durationSeconds"`
}

// MatchEnd 对局结束，按槽位给出最终得分
type MatchEnd struct {
	Scores []int `json:"scores" msgpack:"scores"`
}

// Kind 出站消息类型
func (StateChanged) Kind() string     { return "state_changed" }
func (ObjectLocation) Kind() string   { return "object_location" }
func (RushCountChanged) Kind() string { return "rush_count_changed" }
func (BuffStart) Kind() string        { return "buff_start" }
func (BuffEnd) Kind() string          { return "buff_end" }
func (LeaderStart) Kind() string      { return "leader_start" }
func (LeaderEnd) Kind() string        { return "leader_end" }
func (ItemSpawn) Kind() string        { return "item_spawn" }
func (ItemRemove) Kind() string       { return "item_remove" }
func (KillLog) Kind() string          { return "kill_log" }
func (MapSizeChanged) Kind() string   { return "map_size_changed" }
func (MatchStart) Kind() string       { return "match_start" }
func (MatchEnd) Kind() string         { return "match_end" }
