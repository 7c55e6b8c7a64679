package domain

// GameState は1tick分のゲーム状態のスナップショットです。
type GameState struct {
	Tick     int
	PlayerID string
	Players  []Player
	Map      Map
}

// Map はグリッドとゾーンの一覧です。Tiles は [x][y] でアクセスします。
type Map struct {
	Tiles [][]Tile
	Zones []Zone
}

// Dim はグリッドの一辺の長さを返します。
func (m Map) Dim() int {
	return len(m.Tiles)
}

// At は p のマスを返します。範囲外なら空のマスを返します。
func (m Map) At(p Position) Tile {
	if !p.InBounds(len(m.Tiles)) || p.Y >= len(m.Tiles[p.X]) {
		return Tile{Zone: NoZone}
	}
	return m.Tiles[p.X][p.Y]
}

// FindTank は ownerID の戦車とその位置を探します。
func (m Map) FindTank(ownerID string) (Tank, Position, bool) {
	for x, row := range m.Tiles {
		for y, tile := range row {
			for _, obj := range tile.Objects {
				if tank, ok := obj.(Tank); ok && tank.OwnerID == ownerID {
					return tank, Position{X: x, Y: y}, true
				}
			}
		}
	}
	return Tank{}, Position{}, false
}

// Player はゲーム中のプレイヤー情報です。
type Player struct {
	ID           string
	Nickname     string
	Color        uint32
	Ping         int
	Score        *int
	TicksToRegen *int
}

// ZoneStatus はゾーンの占領状態です。
type ZoneStatus struct {
	Type           string
	RemainingTicks *int
	PlayerID       *string
	CapturedByID   *string
	RetakenByID    *string
}

// Zone はグリッド上の矩形の占領ゾーンです。
type Zone struct {
	X, Y          int
	Width, Height int
	Index         int
	Status        ZoneStatus
}

// Name はゾーン名（'A' + Index）を返します。
func (z Zone) Name() byte {
	return byte('A' + z.Index)
}

// Contains は p がゾーン内にあるかを返します。
func (z Zone) Contains(p Position) bool {
	return p.X >= z.X && p.X < z.X+z.Width && p.Y >= z.Y && p.Y < z.Y+z.Height
}

// LobbyPlayer はロビーに参加しているプレイヤーです。
type LobbyPlayer struct {
	ID       string
	Nickname string
	Color    uint32
}

// ServerSettings はマッチの設定です。
type ServerSettings struct {
	GridDimension     int
	NumberOfPlayers   int
	Seed              int
	BroadcastInterval int // 1tickのミリ秒
	EagerBroadcast    bool
	Ticks             *int
	MatchName         string
}

// LobbyData はマッチ開始前に一度だけ届くロビー情報です。
type LobbyData struct {
	PlayerID       string
	Players        []LobbyPlayer
	ServerSettings ServerSettings
}

// EndPlayer はゲーム終了時のプレイヤーの成績です。
type EndPlayer struct {
	ID       string
	Nickname string
	Score    int
	Kills    int
}

// GameEnd はゲーム終了通知です。
type GameEnd struct {
	Players []EndPlayer
}

// WarningType はサーバーからの警告の種別です。
type WarningType uint8

const (
	WarningCustom WarningType = iota
	WarningPlayerAlreadyMadeActionWarning
	WarningActionIgnoredDueToDeadWarning
	WarningSlowResponseWarning
)

func (w WarningType) String() string {
	switch w {
	case WarningPlayerAlreadyMadeActionWarning:
		return "player-already-made-action"
	case WarningActionIgnoredDueToDeadWarning:
		return "action-ignored-due-to-dead"
	case WarningSlowResponseWarning:
		return "slow-response"
	default:
		return "custom"
	}
}
