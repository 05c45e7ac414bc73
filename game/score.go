package game

// OnDiePlayer 结算死亡：有击杀者时双方计分，否则按自杀扣分；随后刷新领先者
func (r *Room) OnDiePlayer(victim, killer int) {
	r.mustIndex(victim)
	if killer != NoKiller && killer != victim {
		r.mustIndex(killer)
		r.scores[victim] += r.cfg.ScoreDie
		r.scores[killer] += r.cfg.ScoreKill
	} else {
		killer = NoKiller
		r.scores[victim] += r.cfg.ScoreSelfDie
	}
	r.broadcast(KillLog{Victim: victim, Killer: killer})
	r.log.Infow("player died", "victim", victim, "killer", killer, "scores", r.scores)
	r.CheckNewKing()
}

// CheckNewKing 重新计算最高分并列的玩家集合，离开者先撤销，再授予新加入者
func (r *Room) CheckNewKing() {
	best := r.scores[0]
	for _, s := range r.scores[1:] {
		best = max(best, s)
	}
	for i, p := range r.players {
		if r.leaders[i] && r.scores[i] != best {
			r.leaders[i] = false
			p.SetLeader(false)
		}
	}
	for i, p := range r.players {
		if !r.leaders[i] && r.scores[i] == best {
			r.leaders[i] = true
			p.SetLeader(true)
		}
	}
}
