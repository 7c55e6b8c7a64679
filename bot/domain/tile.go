package domain

// NoZone はどのゾーンにも属さないマスのゾーン名です。
const NoZone byte = '?'

// Object はマス上に存在する物体を表す閉じた型です。
// 実装は Wall, Tank, Bullet, Mine, Laser, Item のみで、利用側は型switchで網羅的に扱います。
type Object interface {
	isObject()
}

// Wall は破壊できない壁です。
type Wall struct{}

// SecondaryItem は戦車が保持している補助アイテムです。
type SecondaryItem uint8

const (
	SecondaryNone SecondaryItem = iota
	SecondaryLaser
	SecondaryDoubleBullet
	SecondaryRadar
	SecondaryMine
)

func (s SecondaryItem) String() string {
	switch s {
	case SecondaryLaser:
		return "laser"
	case SecondaryDoubleBullet:
		return "double-bullet"
	case SecondaryRadar:
		return "radar"
	case SecondaryMine:
		return "mine"
	default:
		return "none"
	}
}

// Turret は戦車の砲塔です。
// BulletCount と TicksToRegen は自分の戦車でのみ送られてきます。
type Turret struct {
	Direction    Direction
	BulletCount  *int
	TicksToRegen *int
}

// Tank は戦車です。
type Tank struct {
	OwnerID       string
	Direction     Direction
	Turret        Turret
	Health        *int
	SecondaryItem *SecondaryItem
}

// Held は保持しているアイテムを返します。未設定なら SecondaryNone です。
func (t Tank) Held() SecondaryItem {
	if t.SecondaryItem == nil {
		return SecondaryNone
	}
	return *t.SecondaryItem
}

// BulletType は弾の種類です。
type BulletType uint8

const (
	BulletBasic BulletType = iota
	BulletDouble
)

// Bullet は飛翔中の弾です。ダブル弾は2マス長の弾として扱います。
type Bullet struct {
	ID        int
	Speed     float64
	Direction Direction
	Type      BulletType
}

// Mine は設置済みの地雷です。
type Mine struct {
	ExplosionRemainingTicks *int
}

// LaserOrientation はレーザーの向きです。
type LaserOrientation uint8

const (
	LaserHorizontal LaserOrientation = iota
	LaserVertical
)

// Laser は照射中のレーザーです。
type Laser struct {
	Orientation LaserOrientation
}

// ItemType は落ちているアイテムの種類です。
type ItemType uint8

const (
	ItemUnknown ItemType = iota
	ItemLaser
	ItemDoubleBullet
	ItemRadar
	ItemMine
)

// Item はマスに落ちている拾得可能なアイテムです。
type Item struct {
	Type ItemType
}

func (Wall) isObject()   {}
func (Tank) isObject()   {}
func (Bullet) isObject() {}
func (Mine) isObject()   {}
func (Laser) isObject()  {}
func (Item) isObject()   {}

// Tile は1マス分の内容です。
type Tile struct {
	Objects []Object
	Visible bool
	Zone    byte
}

// HasWall はマスに壁があるかを返します。
func (t Tile) HasWall() bool {
	for _, obj := range t.Objects {
		if _, ok := obj.(Wall); ok {
			return true
		}
	}
	return false
}

// EnemyTank は ownID 以外の戦車があれば返します。
func (t Tile) EnemyTank(ownID string) (Tank, bool) {
	for _, obj := range t.Objects {
		if tank, ok := obj.(Tank); ok && tank.OwnerID != ownID {
			return tank, true
		}
	}
	return Tank{}, false
}
