package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// PacketType はパケットの種別です。
type PacketType uint8

const (
	PacketUnknown      PacketType = 0
	PacketPing         PacketType = 1
	PacketPong         PacketType = 2
	PacketGameState    PacketType = 21
	PacketLobbyData    PacketType = 31
	PacketTankMovement PacketType = 65
	PacketTankRotation PacketType = 66
	PacketAbilityUse   PacketType = 67
	PacketReady        PacketType = 102
	PacketGameEnded    PacketType = 103
	PacketGameStarting PacketType = 104
	PacketWarning      PacketType = 105
)

func (p PacketType) String() string {
	switch p {
	case PacketPing:
		return "ping"
	case PacketPong:
		return "pong"
	case PacketGameState:
		return "game-state"
	case PacketLobbyData:
		return "lobby-data"
	case PacketTankMovement:
		return "tank-movement"
	case PacketTankRotation:
		return "tank-rotation"
	case PacketAbilityUse:
		return "ability-use"
	case PacketReady:
		return "ready"
	case PacketGameEnded:
		return "game-ended"
	case PacketGameStarting:
		return "game-starting"
	case PacketWarning:
		return "warning"
	default:
		return fmt.Sprintf("packet(%d)", uint8(p))
	}
}

// Packet はJSONエンベロープ {"type": n, "payload": {...}} です。
type Packet struct {
	Type    PacketType      `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

var (
	ErrInvalidPacket   = errors.New("invalid packet")
	ErrMalformedTank   = errors.New("malformed tank payload")
	ErrMalformedBullet = errors.New("malformed bullet payload")
	ErrGridMismatch    = errors.New("visibility does not match tile grid")
)

// ParsePacket はバイト列からPacketをパースする
func ParsePacket(data []byte) (*Packet, error) {
	var p Packet
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPacket, err)
	}
	return &p, nil
}

// Encode はPacketをバイト列にエンコードする
func (p *Packet) Encode() []byte {
	data, err := json.Marshal(p)
	if err != nil {
		// RawMessage以外のフィールドは常にエンコードできる
		panic(err)
	}
	return data
}

// EncodePongMessage はPongパケットをエンコードする
func EncodePongMessage() []byte {
	return (&Packet{Type: PacketPong, Payload: json.RawMessage(`{}`)}).Encode()
}

// EncodeReadyMessage はReadyパケットをエンコードする
func EncodeReadyMessage() []byte {
	return (&Packet{Type: PacketReady, Payload: json.RawMessage(`{}`)}).Encode()
}

type movementPayload struct {
	Direction MoveDirection `json:"direction"`
}

type rotationPayload struct {
	TankRotation   *RotationDirection `json:"tankRotation"`
	TurretRotation *RotationDirection `json:"turretRotation"`
}

type abilityPayload struct {
	AbilityType AbilityType `json:"abilityType"`
}

// EncodeResponse はボットの行動をパケットにエンコードする
// Wait は両方の回転がnullのTankRotationとして送る
func EncodeResponse(r Response) ([]byte, error) {
	var (
		packetType PacketType
		payload    interface{}
	)
	switch v := r.(type) {
	case Rotate:
		packetType = PacketTankRotation
		payload = rotationPayload{
			TankRotation:   rotationOrNil(v.Tank),
			TurretRotation: rotationOrNil(v.Turret),
		}
	case Move:
		packetType = PacketTankMovement
		payload = movementPayload{Direction: v.Direction}
	case AbilityUse:
		packetType = PacketAbilityUse
		payload = abilityPayload{AbilityType: v.Ability}
	case Wait:
		packetType = PacketTankRotation
		payload = rotationPayload{}
	default:
		return nil, fmt.Errorf("%w: unsupported response %T", ErrInvalidPacket, r)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return (&Packet{Type: packetType, Payload: raw}).Encode(), nil
}

func rotationOrNil(r RotationDirection) *RotationDirection {
	if r == RotationNone {
		return nil
	}
	return &r
}

type wireLobbyData struct {
	PlayerID string `json:"playerId"`
	Players  []struct {
		ID       string `json:"id"`
		Nickname string `json:"nickname"`
		Color    uint32 `json:"color"`
	} `json:"players"`
	ServerSettings struct {
		GridDimension     int    `json:"gridDimension"`
		NumberOfPlayers   int    `json:"numberOfPlayers"`
		Seed              int    `json:"seed"`
		BroadcastInterval int    `json:"broadcastInterval"`
		EagerBroadcast    bool   `json:"eagerBroadcast"`
		Ticks             *int   `json:"ticks"`
		MatchName         string `json:"matchName"`
	} `json:"serverSettings"`
}

// ParseLobbyData はLobbyDataパケットのペイロードをパースする
func ParseLobbyData(payload []byte) (*LobbyData, error) {
	var w wireLobbyData
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, fmt.Errorf("%w: lobby data: %w", ErrInvalidPacket, err)
	}
	lobby := &LobbyData{
		PlayerID: w.PlayerID,
		Players:  make([]LobbyPlayer, 0, len(w.Players)),
		ServerSettings: ServerSettings{
			GridDimension:     w.ServerSettings.GridDimension,
			NumberOfPlayers:   w.ServerSettings.NumberOfPlayers,
			Seed:              w.ServerSettings.Seed,
			BroadcastInterval: w.ServerSettings.BroadcastInterval,
			EagerBroadcast:    w.ServerSettings.EagerBroadcast,
			Ticks:             w.ServerSettings.Ticks,
			MatchName:         w.ServerSettings.MatchName,
		},
	}
	for _, p := range w.Players {
		lobby.Players = append(lobby.Players, LobbyPlayer{ID: p.ID, Nickname: p.Nickname, Color: p.Color})
	}
	return lobby, nil
}

type wireObject struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type wireTank struct {
	OwnerID   *string `json:"ownerId"`
	Direction *int    `json:"direction"`
	Turret    *struct {
		Direction          *int `json:"direction"`
		BulletCount        *int `json:"bulletCount"`
		TicksToRegenBullet *int `json:"ticksToRegenBullet"`
	} `json:"turret"`
	Health        *int `json:"health"`
	SecondaryItem *int `json:"secondaryItem"`
}

type wireBullet struct {
	ID        *int     `json:"id"`
	Speed     *float64 `json:"speed"`
	Direction *int     `json:"direction"`
	Type      int      `json:"type"`
}

type wireZone struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
	Index  int `json:"index"`
	Status struct {
		Type           string  `json:"type"`
		RemainingTicks *int    `json:"remainingTicks"`
		PlayerID       *string `json:"playerId"`
		CapturedByID   *string `json:"capturedById"`
		RetakenByID    *string `json:"retakenById"`
	} `json:"status"`
}

type wireGameState struct {
	PlayerID string `json:"playerId"`
	Tick     int    `json:"tick"`
	Players  []struct {
		ID           string `json:"id"`
		Nickname     string `json:"nickname"`
		Color        uint32 `json:"color"`
		Ping         int    `json:"ping"`
		Score        *int   `json:"score"`
		TicksToRegen *int   `json:"ticksToRegen"`
	} `json:"players"`
	Map struct {
		Tiles      [][][]wireObject `json:"tiles"`
		Zones      []wireZone       `json:"zones"`
		Visibility []string         `json:"visibility"`
	} `json:"map"`
}

// ParseGameState はGameStateパケットのペイロードをパースする
// 可視性は文字列の行として届き、転置してタイルに反映する。未知の物体はスキップして返す。
func ParseGameState(payload []byte) (*GameState, []string, error) {
	var w wireGameState
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, nil, fmt.Errorf("%w: game state: %w", ErrInvalidPacket, err)
	}

	state := &GameState{
		Tick:     w.Tick,
		PlayerID: w.PlayerID,
		Players:  make([]Player, 0, len(w.Players)),
	}
	for _, p := range w.Players {
		state.Players = append(state.Players, Player{
			ID:           p.ID,
			Nickname:     p.Nickname,
			Color:        p.Color,
			Ping:         p.Ping,
			Score:        p.Score,
			TicksToRegen: p.TicksToRegen,
		})
	}

	for _, z := range w.Map.Zones {
		state.Map.Zones = append(state.Map.Zones, Zone{
			X:      z.X,
			Y:      z.Y,
			Width:  z.Width,
			Height: z.Height,
			Index:  z.Index,
			Status: ZoneStatus{
				Type:           z.Status.Type,
				RemainingTicks: z.Status.RemainingTicks,
				PlayerID:       z.Status.PlayerID,
				CapturedByID:   z.Status.CapturedByID,
				RetakenByID:    z.Status.RetakenByID,
			},
		})
	}

	var skipped []string
	dim := len(w.Map.Tiles)
	state.Map.Tiles = make([][]Tile, dim)
	for x, row := range w.Map.Tiles {
		state.Map.Tiles[x] = make([]Tile, len(row))
		for y, objects := range row {
			tile := Tile{Zone: NoZone, Visible: true}
			for _, wo := range objects {
				obj, err := parseObject(wo)
				if err != nil {
					return nil, nil, fmt.Errorf("tile %d,%d: %w", x, y, err)
				}
				if obj == nil {
					skipped = append(skipped, wo.Type)
					continue
				}
				tile.Objects = append(tile.Objects, obj)
			}
			state.Map.Tiles[x][y] = tile
		}
	}

	if len(w.Map.Visibility) > 0 {
		if err := applyVisibility(state.Map.Tiles, w.Map.Visibility); err != nil {
			return nil, nil, err
		}
	}

	for _, z := range state.Map.Zones {
		for x := z.X; x < z.X+z.Width; x++ {
			for y := z.Y; y < z.Y+z.Height; y++ {
				if x >= 0 && x < dim && y >= 0 && y < len(state.Map.Tiles[x]) {
					state.Map.Tiles[x][y].Zone = z.Name()
				}
			}
		}
	}

	return state, skipped, nil
}

// applyVisibility は行ごとの '0'/'1' 文字列を転置して Visible に反映します。
func applyVisibility(tiles [][]Tile, rows []string) error {
	for i, row := range rows {
		for j := 0; j < len(row); j++ {
			if j >= len(tiles) || i >= len(tiles[j]) {
				return fmt.Errorf("%w: row %d col %d", ErrGridMismatch, i, j)
			}
			tiles[j][i].Visible = row[j] == '1'
		}
	}
	return nil
}

// parseObject は1つの物体をパースします。未知の種別は (nil, nil) を返します。
func parseObject(wo wireObject) (Object, error) {
	switch wo.Type {
	case "wall":
		return Wall{}, nil
	case "tank":
		return parseTank(wo.Payload)
	case "bullet":
		return parseBullet(wo.Payload)
	case "mine":
		var m struct {
			ExplosionRemainingTicks *int `json:"explosionRemainingTicks"`
		}
		if len(wo.Payload) > 0 {
			if err := json.Unmarshal(wo.Payload, &m); err != nil {
				return nil, fmt.Errorf("%w: mine: %w", ErrInvalidPacket, err)
			}
		}
		return Mine{ExplosionRemainingTicks: m.ExplosionRemainingTicks}, nil
	case "laser":
		var l struct {
			Orientation int `json:"orientation"`
		}
		if err := json.Unmarshal(wo.Payload, &l); err != nil {
			return nil, fmt.Errorf("%w: laser: %w", ErrInvalidPacket, err)
		}
		return Laser{Orientation: LaserOrientation(l.Orientation)}, nil
	case "item":
		var it struct {
			Type int `json:"type"`
		}
		if err := json.Unmarshal(wo.Payload, &it); err != nil {
			return nil, fmt.Errorf("%w: item: %w", ErrInvalidPacket, err)
		}
		return Item{Type: ItemType(it.Type)}, nil
	default:
		return nil, nil
	}
}

func parseTank(payload []byte) (Object, error) {
	var w wireTank
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTank, err)
	}
	if w.OwnerID == nil {
		return nil, fmt.Errorf("%w: missing ownerId", ErrMalformedTank)
	}
	if w.Direction == nil {
		return nil, fmt.Errorf("%w: missing direction", ErrMalformedTank)
	}
	if w.Turret == nil || w.Turret.Direction == nil {
		return nil, fmt.Errorf("%w: missing turret", ErrMalformedTank)
	}
	tank := Tank{
		OwnerID:   *w.OwnerID,
		Direction: Direction(*w.Direction % 4),
		Turret: Turret{
			Direction:    Direction(*w.Turret.Direction % 4),
			BulletCount:  w.Turret.BulletCount,
			TicksToRegen: w.Turret.TicksToRegenBullet,
		},
		Health: w.Health,
	}
	if w.SecondaryItem != nil {
		item := SecondaryItem(*w.SecondaryItem)
		tank.SecondaryItem = &item
	}
	return tank, nil
}

func parseBullet(payload []byte) (Object, error) {
	var w wireBullet
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedBullet, err)
	}
	if w.ID == nil || w.Speed == nil || w.Direction == nil {
		return nil, fmt.Errorf("%w: missing field", ErrMalformedBullet)
	}
	return Bullet{
		ID:        *w.ID,
		Speed:     *w.Speed,
		Direction: Direction(*w.Direction % 4),
		Type:      BulletType(w.Type),
	}, nil
}

type wireGameEnd struct {
	Players []struct {
		ID       string `json:"id"`
		Nickname string `json:"nickname"`
		Score    int    `json:"score"`
		Kills    int    `json:"kills"`
	} `json:"players"`
}

// ParseGameEnd はGameEndedパケットのペイロードをパースする
func ParseGameEnd(payload []byte) (*GameEnd, error) {
	var w wireGameEnd
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, fmt.Errorf("%w: game end: %w", ErrInvalidPacket, err)
	}
	end := &GameEnd{Players: make([]EndPlayer, 0, len(w.Players))}
	for _, p := range w.Players {
		end.Players = append(end.Players, EndPlayer{ID: p.ID, Nickname: p.Nickname, Score: p.Score, Kills: p.Kills})
	}
	return end, nil
}

// ParseWarning はWarningパケットのペイロードをパースする
func ParseWarning(payload []byte) (WarningType, string, error) {
	var w struct {
		Type    int    `json:"type"`
		Message string `json:"message"`
	}
	if len(payload) == 0 {
		return WarningCustom, "", nil
	}
	if err := json.Unmarshal(payload, &w); err != nil {
		return WarningCustom, "", fmt.Errorf("%w: warning: %w", ErrInvalidPacket, err)
	}
	return WarningType(w.Type), w.Message, nil
}
