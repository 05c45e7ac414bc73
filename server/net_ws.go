package server

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"bumparena/game"
)

const (
	sendQueueSize = 256
	writeWait     = 5 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = pongWait * 9 / 10
	maxReadSize   = 1 << 16
)

// ClientConn 一个客户端连接：读协程解码入站消息，写协程从 send 队列写出。
// 同时实现 game.Session，由房间在 Tick 线程中调用 Send/Detach
type ClientConn struct {
	ID string

	ws      *websocket.Conn
	codec   Codec
	manager *Manager
	send    chan []byte

	mu      sync.Mutex
	closed  bool
	room    *game.Room
	roomID  string
	slot    int
	metrics *RoomMetrics
}

var _ game.Session = (*ClientConn)(nil)

// NewClientConn 包装已升级的连接；读写协程由 HandleWS 启动
func NewClientConn(ws *websocket.Conn, codec Codec, manager *Manager) *ClientConn {
	return &ClientConn{
		ID:      uuid.NewString(),
		ws:      ws,
		codec:   codec,
		manager: manager,
		send:    make(chan []byte, sendQueueSize),
		slot:    -1,
	}
}

// Send 编码对局事件并压入发送队列（game.Session）
func (c *ClientConn) Send(ev game.Event) {
	c.sendMessage(ev.Kind(), ev)
}

// Detach 对局结束，解除与房间的绑定（game.Session）；连接保持，可再次匹配
func (c *ClientConn) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.room = nil
	c.roomID = ""
	c.slot = -1
	c.metrics = nil
}

// attach 由管理器在房间开始 Tick 之前调用
func (c *ClientConn) attach(id string, room *game.Room, slot int, metrics *RoomMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.room = room
	c.roomID = id
	c.slot = slot
	c.metrics = metrics
}

// InRoom 是否正在对局中
func (c *ClientConn) InRoom() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room != nil
}

func (c *ClientConn) sendMessage(kind string, payload any) {
	data, err := c.codec.Encode(kind, payload)
	if err != nil {
		Log.Errorf("encode %s for client %s: %v", kind, c.ID, err)
		return
	}
	c.enqueue(data)
}

// enqueue 非阻塞压入发送队列，满则丢弃（防止阻塞 Tick）
func (c *ClientConn) enqueue(b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- b:
		if c.metrics != nil {
			c.metrics.IncEventsSent()
		}
	default:
		if c.metrics != nil {
			c.metrics.IncEventsDropped()
		}
	}
}

// Close 关闭发送队列与底层连接，可重复调用
func (c *ClientConn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()
	if err := c.ws.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("close client %s: %w", c.ID, err)
	}
	return nil
}

// forwardInput 将输入投递到所在房间的输入队列，在下一次 Tick 处理
func (c *ClientConn) forwardInput(m InputMessage) {
	c.mu.Lock()
	room, roomID, slot, metrics := c.room, c.roomID, c.slot, c.metrics
	c.mu.Unlock()
	if room == nil {
		Log.Debugf("input from client %s outside of a match ignored", c.ID)
		return
	}

	in, err := m.ToInput()
	if err != nil {
		metrics.IncInvalid()
		Log.Warnf("invalid input from client %s in room %s: %v", c.ID, roomID, err)
		return
	}
	if room.PushInput(game.PlayerInput{Player: slot, Input: in}) {
		metrics.IncAccepted()
	} else {
		metrics.IncDropped()
		Log.Debugf("input queue full in room %s, slot %d", roomID, slot)
	}
}

// writePump 独立协程，负责从 send 队列写出到 WS，并定时发送 ping
func (c *ClientConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(c.codec.FrameType(), msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 读取客户端消息：匹配与准备请求交给管理器，输入注入房间
func (c *ClientConn) readPump() {
	defer c.manager.unregister(c)
	c.ws.SetReadLimit(maxReadSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error { return c.ws.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				Log.Warnf("client %s read error: %v", c.ID, err)
			}
			return
		}
		msg, err := c.codec.Decode(payload)
		if err != nil {
			c.mu.Lock()
			metrics := c.metrics
			c.mu.Unlock()
			if metrics != nil {
				metrics.IncInvalid()
			}
			Log.Warnf("bad message from client %s: %v", c.ID, err)
			continue
		}
		switch msg.Type {
		case MsgFindMatch:
			c.manager.Enqueue(c)
		case MsgCancelMatch:
			c.manager.Cancel(c)
		case MsgReadyMatch:
			c.manager.ConfirmReady(c)
		case MsgCancelReadyMatch:
			c.manager.CancelReady(c)
		case MsgInput:
			c.forwardInput(*msg.Input)
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 演示环境：允许所有来源（生产环境需严格限制）
		return true
	},
}

// HandleWS WebSocket 接入；连接建立后客户端发送 find_match 开始排队
func (m *Manager) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnf("upgrade error: %v", err)
		return
	}

	client := NewClientConn(ws, m.codec, m)
	if !m.register(client) {
		_ = client.Close()
		return
	}
	Log.Infof("client %s connected from %s", client.ID, r.RemoteAddr)

	go client.writePump()
	go client.readPump()
}
