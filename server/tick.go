package server

import (
	"time"

	"bumparena/game"
)

// maxTickSeconds 单次推进的最大时长，进程卡顿后不会一步跨越太远
const maxTickSeconds = 0.25

// runRoom 房间的 Tick 循环（单线程推进世界），比赛结束或管理器关闭时退出
func (m *Manager) runRoom(e *roomEntry) {
	defer m.wg.Done()
	defer m.removeRoom(e.id)

	ticker := time.NewTicker(m.cfg.TickInterval())
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-m.ctx.Done():
			Log.Infof("room %s stopped by shutdown", e.id)
			return
		case now := <-ticker.C:
			dt := min(now.Sub(last).Seconds(), maxTickSeconds)
			last = now

			// 核心循环：处理输入 → 更新世界 → 广播结果（都在 Update 内完成）
			start := time.Now()
			e.room.Update(dt)
			e.metrics.AddTick(time.Since(start).Nanoseconds())

			if e.room.State() == game.RoomEnd {
				Log.Infof("room %s finished: scores=%v", e.id, e.room.Scores())
				return
			}
		}
	}
}
