package game

import (
	"math"
	"testing"

	"bumparena/config"
)

const testTick = 1.0 / 60

type recorder struct {
	events   []Event
	detached bool
}

func (r *recorder) Send(ev Event) { r.events = append(r.events, ev) }
func (r *recorder) Detach()       { r.detached = true }
func (r *recorder) reset()        { r.events = nil }

func collect[T Event](events []Event) []T {
	var out []T
	for _, ev := range events {
		if e, ok := ev.(T); ok {
			out = append(out, e)
		}
	}
	return out
}

// testConfig 角色不前进、不刷道具，只有显式操作才会改变局面
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.CharacterMoveSpeed = 0
	cfg.ItemMaxCount = 0
	return cfg
}

func newTestRoom(t *testing.T, cfg *config.Config, players int) (*Room, *recorder) {
	t.Helper()
	r := NewRoom(cfg, players)
	rec := &recorder{}
	r.AttachSession(0, rec)
	r.ReadyToGame()
	return r, rec
}

func step(r *Room, seconds float64) {
	n := int(math.Ceil(seconds / testTick))
	for i := 0; i < n; i++ {
		r.Update(testTick)
	}
}

func ticks(r *Room, n int) {
	for i := 0; i < n; i++ {
		r.Update(testTick)
	}
}

func push(t *testing.T, r *Room, player int, in Input) {
	t.Helper()
	if !r.PushInput(PlayerInput{Player: player, Input: in}) {
		t.Fatalf("input queue full for player %d", player)
	}
}

// startMatch 推进到比赛开始且所有玩家进入 Run
func startMatch(t *testing.T, r *Room) {
	t.Helper()
	step(r, r.cfg.GameFirstWaitSeconds+0.1)
	if r.State() != RoomDoing {
		t.Fatalf("expected room in Doing, got %s", r.State())
	}
	for i := 0; i < r.PlayerCount(); i++ {
		if s := r.Player(i).State(); s != StateRun {
			t.Fatalf("player %d expected Run, got %s", i, s)
		}
	}
}
