package game

import "time"

// Clock 房间内的单调模拟时钟，每个 Tick 推进一次 dt
type Clock struct {
	now time.Duration
}

// Advance 推进 seconds 秒；负值忽略
func (c *Clock) Advance(seconds float64) {
	if seconds <= 0 {
		return
	}
	c.now += secondsToDuration(seconds)
}

// Elapsed 自房间创建以来经过的模拟时间
func (c *Clock) Elapsed() time.Duration { return c.now }

// Now 当前时间点
func (c *Clock) Now() Deadline { return Deadline{clock: c, at: c.now} }

// Deadline 绑定到某个 Clock 的时间点，只支持轮询
type Deadline struct {
	clock *Clock
	at    time.Duration
}

// NewDeadline 在 clock 的当前时间创建时间点
func NewDeadline(clock *Clock) Deadline { return clock.Now() }

// SetNow 重置为当前时间
func (d *Deadline) SetNow() *Deadline {
	d.at = d.clock.now
	return d
}

// Add 向后推移 seconds 秒
func (d *Deadline) Add(seconds float64) *Deadline {
	d.at += secondsToDuration(seconds)
	return d
}

// IsOverNow 时间点已经过去
func (d Deadline) IsOverNow() bool {
	return d.at < d.clock.now
}

// IsOverSeconds 时间点之后的 seconds 秒也已经过去
func (d Deadline) IsOverSeconds(seconds float64) bool {
	return d.at+secondsToDuration(seconds) < d.clock.now
}

// Since 距离该时间点已经过去的秒数（未到时为负）
func (d Deadline) Since() float64 {
	return (d.clock.now - d.at).Seconds()
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
