package game

func (r *Room) scheduleItemSpawn() {
	lo, hi := r.cfg.ItemRegenMinSeconds, r.cfg.ItemRegenMaxSeconds
	wait := lo
	if hi > lo {
		wait += r.rng.Float64() * (hi - lo)
	}
	r.itemSpawn.SetNow().Add(wait)
}

// updateItems 生成、过期、拾取
func (r *Room) updateItems() {
	if r.itemSpawn.IsOverNow() {
		if len(r.items) < r.cfg.ItemMaxCount {
			r.spawnItem()
		}
		r.scheduleItemSpawn()
	}

	alive := r.items[:0]
	for _, it := range r.items {
		if it.IsExpired() {
			r.broadcast(ItemRemove{Index: it.Index, Eaten: false})
			continue
		}
		alive = append(alive, it)
	}
	r.items = alive

	r.checkCollisionItem()
}

func (r *Room) checkCollisionItem() {
	alive := r.items[:0]
	for _, it := range r.items {
		eaten := false
		for i, p := range r.players {
			if p.State() == StateDie || !isOverlapItem(r.characters[i], it) {
				continue
			}
			r.broadcast(ItemRemove{Index: it.Index, Eaten: true})
			p.ApplyBuff(it.Type)
			eaten = true
			break
		}
		if !eaten {
			alive = append(alive, it)
		}
	}
	r.items = alive
}

func (r *Room) spawnItem() {
	typ := r.randomItemType()
	if typ == ItemNone {
		return
	}
	it := newItem(r.itemIndex, typ, r.randomItemLocation(), r.cfg.ItemRadius, r.cfg.ItemLifeMaxSeconds, &r.clock)
	r.itemIndex++
	r.items = append(r.items, it)
	r.broadcast(ItemSpawn{Index: it.Index, Type: it.Type, Location: it.Location})
	r.log.Debugw("item spawned", "index", it.Index, "type", it.Type.String())
}

// randomItemLocation 随机角度、随机半径（不超过当前地图半径的一定比例）
func (r *Room) randomItemLocation() Vector {
	angle := r.rng.Float64() * 360
	dist := r.rng.Float64() * r.mapRadius * r.cfg.ItemSpawnRadiusRatio
	return Vec2(0, dist).Rotated(angle)
}

type itemWeight struct {
	typ    ItemType
	weight int
}

// randomItemType 按权重抽取；Clover 在解锁时间之前不出现
func (r *Room) randomItemType() ItemType {
	pool := []itemWeight{
		{ItemFortify, r.cfg.ItemWeightFortify},
		{ItemGhost, r.cfg.ItemWeightGhost},
		{ItemStrongWill, r.cfg.ItemWeightStrongWill},
		{ItemSwiftMove, r.cfg.ItemWeightSwiftMove},
	}
	if r.matchStart.IsOverSeconds(r.cfg.ItemCloverUnlockSeconds) {
		pool = append(pool, itemWeight{ItemClover, r.cfg.ItemWeightClover})
	}

	total := 0
	for _, e := range pool {
		total += max(e.weight, 0)
	}
	if total == 0 {
		return ItemNone
	}
	n := r.rng.Intn(total)
	for _, e := range pool {
		w := max(e.weight, 0)
		if n < w {
			return e.typ
		}
		n -= w
	}
	return ItemNone
}
