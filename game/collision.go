package game

// penetrationCorrection 每次接触时每个物体沿法线推开的穿透比例
const penetrationCorrection = 0.4

// contactKey 两个槽位组成的有序键（a < b）
type contactKey struct{ a, b int }

func newContactKey(i, j int) contactKey {
	if i > j {
		i, j = j, i
	}
	return contactKey{a: i, b: j}
}

// penetration 两个圆的穿透深度，>0 表示相交
func penetration(a, b *Character) float64 {
	return a.Radius() + b.Radius() - Distance(a.Location(), b.Location())
}

// contactNormal 由 b 指向 a 的单位法线；两点重合时退化为 a 的朝向
func contactNormal(a, b *Character) Vector {
	n := a.Location().Sub(b.Location()).Normalized()
	if n.IsZero() {
		n = a.Forward()
	}
	return n
}

func (r *Room) checkCollisions() {
	for i := 0; i < r.maxPlayers; i++ {
		for j := i + 1; j < r.maxPlayers; j++ {
			r.checkCollisionPair(i, j)
		}
	}
	r.checkMapOut()
}

func (r *Room) collidable(p *PlayerController) bool {
	return p.State() != StateDie && !p.IsGhost()
}

// checkCollisionPair 接触开始的那个 Tick 施加一次冲量；持续重叠期间只做位置修正
func (r *Room) checkCollisionPair(i, j int) {
	key := newContactKey(i, j)
	pa, pb := r.players[i], r.players[j]
	if !r.collidable(pa) || !r.collidable(pb) {
		delete(r.contacts, key)
		return
	}
	a, b := r.characters[i], r.characters[j]
	pen := penetration(a, b)
	if pen <= 0 {
		delete(r.contacts, key)
		return
	}
	_, touching := r.contacts[key]
	r.contacts[key] = struct{}{}

	switch {
	case a.IsInfiniteWeight() && b.IsInfiniteWeight():
		n := contactNormal(a, b)
		a.Translate(n.Scale(pen / 2))
		b.Translate(n.Scale(-pen / 2))
	case a.IsInfiniteWeight():
		ResolveSpawnCollision(a, b, pen)
	case b.IsInfiniteWeight():
		ResolveSpawnCollision(b, a, pen)
	default:
		if !touching {
			ResolveCollision(a, b, r.cfg.CharacterElasticity)
			pa.OnCollided(j)
			pb.OnCollided(i)
		}
		CorrectPenetration(a, b, pen)
	}
}

// CorrectPenetration 沿法线把两者各推开 pen*0.4
func CorrectPenetration(a, b *Character, pen float64) {
	if pen <= 0 {
		return
	}
	n := contactNormal(a, b)
	a.Translate(n.Scale(pen * penetrationCorrection))
	b.Translate(n.Scale(-pen * penetrationCorrection))
}

// ResolveCollision 沿法线施加冲量；已在分离时不处理。返回冲量大小
func ResolveCollision(a, b *Character, elasticity float64) float64 {
	n := contactNormal(a, b)
	v := a.Velocity().Sub(b.Velocity()).Dot(n)
	if v > 0 {
		return 0
	}
	invA, invB := a.InverseWeight(), b.InverseWeight()
	invSum := invA + invB
	if invSum == 0 {
		return 0
	}
	j := -(1 + elasticity) * v / invSum
	if j == 0 {
		return 0
	}
	a.AddSpeed(n.Scale(j * invA))
	b.AddSpeed(n.Scale(-j * invB))
	return j
}

// ResolveSpawnCollision 出生中的玩家不受影响，只把另一方完全推出
func ResolveSpawnCollision(spawning, other *Character, pen float64) {
	if pen <= 0 {
		return
	}
	n := contactNormal(other, spawning)
	other.Translate(n.Scale(pen))
}

// checkMapOut 离开地图的玩家进入死亡；死亡状态中不会重复触发
func (r *Room) checkMapOut() {
	center := Vector{}
	for i, p := range r.players {
		if p.State() == StateDie {
			continue
		}
		loc := r.characters[i].Location()
		loc.Z = 0
		if Distance(loc, center) <= r.mapRadius {
			continue
		}
		killer := p.Killer()
		p.ChangeState(StateDie)
		r.OnDiePlayer(i, killer)
	}
}

// isOverlapItem 玩家与道具的圆形重叠判定
func isOverlapItem(c *Character, it *Item) bool {
	return Distance(c.Location(), it.Location) < c.Radius()+it.Radius
}
