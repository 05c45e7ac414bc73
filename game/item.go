package game

// ItemType 道具种类；ItemNone 表示当前没有增益
type ItemType uint8

const (
	ItemClover ItemType = iota
	ItemFortify
	ItemGhost
	ItemStrongWill
	ItemSwiftMove
	ItemNone
)

func (t ItemType) String() string {
	switch t {
	case ItemClover:
		return "Clover"
	case ItemFortify:
		return "Fortify"
	case ItemGhost:
		return "Ghost"
	case ItemStrongWill:
		return "StrongWill"
	case ItemSwiftMove:
		return "SwiftMove"
	case ItemNone:
		return "None"
	default:
		return "unknown"
	}
}

// Item 地图上的可拾取道具，创建后除移除外不再变化
type Item struct {
	Index     int
	Type      ItemType
	Location  Vector
	Radius    float64
	SpawnTime Deadline

	lifeSeconds float64
}

func newItem(index int, typ ItemType, location Vector, radius, lifeSeconds float64, clock *Clock) *Item {
	return &Item{
		Index:       index,
		Type:        typ,
		Location:    location,
		Radius:      radius,
		SpawnTime:   clock.Now(),
		lifeSeconds: lifeSeconds,
	}
}

// IsExpired 存在时间超过寿命
func (it *Item) IsExpired() bool {
	return it.SpawnTime.IsOverSeconds(it.lifeSeconds)
}
