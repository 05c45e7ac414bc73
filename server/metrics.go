package server

import (
	"sync/atomic"
)

// RoomMetrics 记录房间运行期的关键指标（用于监控与调试）
type RoomMetrics struct {
	TickCount      int64 // 统计的 Tick 次数
	InputsAccepted int64 // 进入房间输入队列的输入数
	InputsDropped  int64 // 因队列满被丢弃的输入数
	InputsInvalid  int64 // 解码或解析失败的输入数
	EventsSent     int64 // 压入客户端发送队列的消息数
	EventsDropped  int64 // 因发送队列满被丢弃的消息数
	TotalTickNs    int64 // Tick 累计耗时（纳秒）
	MaxTickNs      int64 // 单次 Tick 最大耗时（纳秒）
}

// Inc* 计数器自增，可在任意协程调用
func (m *RoomMetrics) IncAccepted()      { atomic.AddInt64(&m.InputsAccepted, 1) }
func (m *RoomMetrics) IncDropped()       { atomic.AddInt64(&m.InputsDropped, 1) }
func (m *RoomMetrics) IncInvalid()       { atomic.AddInt64(&m.InputsInvalid, 1) }
func (m *RoomMetrics) IncEventsSent()    { atomic.AddInt64(&m.EventsSent, 1) }
func (m *RoomMetrics) IncEventsDropped() { atomic.AddInt64(&m.EventsDropped, 1) }

// AddTick 记录一次 Tick 耗时并更新最大值
func (m *RoomMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
	for {
		cur := atomic.LoadInt64(&m.MaxTickNs)
		if ns <= cur || atomic.CompareAndSwapInt64(&m.MaxTickNs, cur, ns) {
			return
		}
	}
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *RoomMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":      tick,
		"inputs_accepted": atomic.LoadInt64(&m.InputsAccepted),
		"inputs_dropped":  atomic.LoadInt64(&m.InputsDropped),
		"inputs_invalid":  atomic.LoadInt64(&m.InputsInvalid),
		"events_sent":     atomic.LoadInt64(&m.EventsSent),
		"events_dropped":  atomic.LoadInt64(&m.EventsDropped),
		"avg_tick_ms":     avgMs,
		"max_tick_ms":     float64(atomic.LoadInt64(&m.MaxTickNs)) / 1e6,
	}
}
