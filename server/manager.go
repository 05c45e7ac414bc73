package server

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"bumparena/config"
	"bumparena/game"
)

// roomEntry 运行中的房间及其 Tick 协程
type roomEntry struct {
	id      string
	room    *game.Room
	metrics *RoomMetrics
	clients []*ClientConn
}

type requestKind int

const (
	reqFind requestKind = iota
	reqCancel
	reqReady
	reqCancelReady
)

type matchRequest struct {
	client *ClientConn
	kind   requestKind
}

// readyGroup 人数已凑齐、等待全员确认的一组会话；槽位即 members 下标
type readyGroup struct {
	id      string
	members []*ClientConn
	ready   []bool
}

func (g *readyGroup) allReady() bool {
	for _, r := range g.ready {
		if !r {
			return false
		}
	}
	return true
}

// Manager 负责匹配排队、准备确认与房间生命周期。
// 排队列表与待确认分组只由 Run 协程修改；rooms/clients 由 mu 保护
type Manager struct {
	cfg   *config.Config
	codec Codec

	requests chan matchRequest
	waiting  []*ClientConn
	pending  map[*ClientConn]*readyGroup
	nWaiting atomic.Int64
	nPending atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	rooms   map[string]*roomEntry
	clients map[string]*ClientConn
}

// NewManager 创建管理器；codec 取自配置
func NewManager(cfg *config.Config) (*Manager, error) {
	codec, err := NewCodec(cfg.Codec)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		cfg:      cfg,
		codec:    codec,
		requests: make(chan matchRequest, 64),
		pending:  make(map[*ClientConn]*readyGroup),
		ctx:      ctx,
		cancel:   cancel,
		rooms:    make(map[string]*roomEntry),
		clients:  make(map[string]*ClientConn),
	}, nil
}

// Enqueue 请求加入匹配队列
func (m *Manager) Enqueue(c *ClientConn) { m.request(matchRequest{client: c, kind: reqFind}) }

// Cancel 请求退出匹配队列；已进入准备确认的视同拒绝
func (m *Manager) Cancel(c *ClientConn) { m.request(matchRequest{client: c, kind: reqCancel}) }

// ConfirmReady 确认准备；本组全部确认后开房间
func (m *Manager) ConfirmReady(c *ClientConn) { m.request(matchRequest{client: c, kind: reqReady}) }

// CancelReady 拒绝准备；本组其他人回到队列
func (m *Manager) CancelReady(c *ClientConn) { m.request(matchRequest{client: c, kind: reqCancelReady}) }

func (m *Manager) request(req matchRequest) {
	select {
	case m.requests <- req:
	case <-m.ctx.Done():
	}
}

// Run 匹配循环：串行处理排队与准备请求
func (m *Manager) Run(ctx context.Context) error {
	Log.Infof("matchmaker started: players=%d codec=%s", m.cfg.MaxPlayers, m.codec.Name())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-m.ctx.Done():
			return nil
		case req := <-m.requests:
			switch req.kind {
			case reqFind:
				m.enqueue(req.client)
			case reqCancel:
				if !m.cancelReady(req.client) {
					m.dequeue(req.client)
				}
			case reqReady:
				m.confirmReady(req.client)
			case reqCancelReady:
				m.cancelReady(req.client)
			}
			m.nWaiting.Store(int64(len(m.waiting)))
			m.nPending.Store(int64(len(m.pending)))
		}
	}
}

func (m *Manager) indexOfWaiting(c *ClientConn) int {
	for i, w := range m.waiting {
		if w == c {
			return i
		}
	}
	return -1
}

func (m *Manager) enqueue(c *ClientConn) {
	if m.indexOfWaiting(c) >= 0 {
		return
	}
	if _, ok := m.pending[c]; ok {
		return
	}
	if c.InRoom() {
		c.sendMessage(MsgError, ErrorMessage{Message: "already in a match"})
		return
	}
	m.waiting = append(m.waiting, c)
	Log.Infof("client %s queued (%d/%d)", c.ID, len(m.waiting), m.cfg.MaxPlayers)
	m.matchWaiting()
}

func (m *Manager) dequeue(c *ClientConn) {
	i := m.indexOfWaiting(c)
	if i < 0 {
		return
	}
	m.waiting = append(m.waiting[:i], m.waiting[i+1:]...)
	Log.Infof("client %s left queue (%d/%d)", c.ID, len(m.waiting), m.cfg.MaxPlayers)
	m.broadcastMatchingInfo()
}

// matchWaiting 队首凑齐人数的依次分组进入准备确认，剩下的广播排队人数
func (m *Manager) matchWaiting() {
	for len(m.waiting) >= m.cfg.MaxPlayers {
		members := make([]*ClientConn, m.cfg.MaxPlayers)
		copy(members, m.waiting)
		m.waiting = append(m.waiting[:0], m.waiting[m.cfg.MaxPlayers:]...)

		g := &readyGroup{
			id:      uuid.NewString(),
			members: members,
			ready:   make([]bool, len(members)),
		}
		for slot, c := range members {
			m.pending[c] = g
			c.sendMessage(MsgReadyMatching, ReadyMatching{Group: g.id, Slot: slot, Players: len(members)})
		}
		Log.Infof("ready check %s started: players=%d", g.id, len(members))
	}
	m.broadcastMatchingInfo()
}

func (m *Manager) confirmReady(c *ClientConn) {
	g, ok := m.pending[c]
	if !ok {
		c.sendMessage(MsgError, ErrorMessage{Message: "no ready check pending"})
		return
	}
	for slot, member := range g.members {
		if member == c {
			g.ready[slot] = true
		}
	}
	Log.Debugf("client %s ready in group %s", c.ID, g.id)
	if !g.allReady() {
		return
	}
	for _, member := range g.members {
		delete(m.pending, member)
	}
	m.startRoom(g.id, g.members)
}

// cancelReady 解散 c 所在的待确认分组：全组收到 cancel_ready_matching，
// 其他人按原顺序回到队首。c 不在任何分组中时返回 false
func (m *Manager) cancelReady(c *ClientConn) bool {
	g, ok := m.pending[c]
	if !ok {
		return false
	}
	requeue := make([]*ClientConn, 0, len(g.members)-1)
	for _, member := range g.members {
		delete(m.pending, member)
		member.sendMessage(MsgCancelReadyMatching, struct{}{})
		if member != c {
			requeue = append(requeue, member)
		}
	}
	m.waiting = append(requeue, m.waiting...)
	Log.Infof("ready check %s cancelled by client %s, %d requeued", g.id, c.ID, len(requeue))
	m.matchWaiting()
	return true
}

func (m *Manager) broadcastMatchingInfo() {
	info := MatchingInfo{Current: len(m.waiting), Max: m.cfg.MaxPlayers}
	for _, w := range m.waiting {
		w.sendMessage(MsgMatchingInfo, info)
	}
}

// startRoom 创建房间、挂载会话并启动 Tick；房间 ID 沿用分组 ID，随机种子由其决定，便于复现
func (m *Manager) startRoom(id string, group []*ClientConn) {
	seed := int64(xxhash.Sum64String(id))
	room := game.NewRoom(m.cfg, len(group),
		game.WithLogger(Log.With("room", id)),
		game.WithRand(rand.New(rand.NewSource(seed))),
	)
	e := &roomEntry{
		id:      id,
		room:    room,
		metrics: &RoomMetrics{},
		clients: group,
	}
	for slot, c := range group {
		c.attach(id, room, slot, e.metrics)
		room.AttachSession(slot, c)
		c.sendMessage(MsgMatchFound, MatchFound{Room: id, Slot: slot, Players: len(group)})
	}
	room.ReadyToGame()

	m.mu.Lock()
	m.rooms[id] = e
	m.mu.Unlock()

	Log.Infof("room %s created: players=%d seed=%d", id, len(group), seed)
	m.wg.Add(1)
	go m.runRoom(e)
}

func (m *Manager) removeRoom(id string) {
	m.mu.Lock()
	delete(m.rooms, id)
	m.mu.Unlock()
}

func (m *Manager) register(c *ClientConn) bool {
	if m.ctx.Err() != nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[c.ID] = c
	return true
}

// unregister 连接断开：退出排队或解散准备分组，并关闭连接。对局中的槽位保留，角色失去输入
func (m *Manager) unregister(c *ClientConn) {
	m.Cancel(c)
	m.mu.Lock()
	delete(m.clients, c.ID)
	m.mu.Unlock()
	_ = c.Close()
	Log.Infof("client %s disconnected", c.ID)
}

// RoomCount 运行中的房间数
func (m *Manager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// Waiting 当前排队人数
func (m *Manager) Waiting() int { return int(m.nWaiting.Load()) }

// Pending 正在等待准备确认的人数
func (m *Manager) Pending() int { return int(m.nPending.Load()) }

// Shutdown 停止所有房间并关闭所有连接；ctx 到期时不再等待房间协程
func (m *Manager) Shutdown(ctx context.Context) error {
	m.cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = multierr.Append(err, ctx.Err())
	}

	m.mu.Lock()
	clients := make([]*ClientConn, 0, len(m.clients))
	for _, c := range m.clients {
		clients = append(clients, c)
	}
	m.mu.Unlock()
	for _, c := range clients {
		err = multierr.Append(err, c.Close())
	}
	Log.Infof("manager stopped: closed %d clients", len(clients))
	return err
}
