package application

import "tankbot/bot/domain"

const ownID = "me"

// newState は全マスが見えている dim×dim の空の盤面を作ります。
func newState(dim, tick int) *domain.GameState {
	tiles := make([][]domain.Tile, dim)
	for x := range tiles {
		tiles[x] = make([]domain.Tile, dim)
		for y := range tiles[x] {
			tiles[x][y] = domain.Tile{Visible: true, Zone: domain.NoZone}
		}
	}
	return &domain.GameState{Tick: tick, PlayerID: ownID, Map: domain.Map{Tiles: tiles}}
}

func put(state *domain.GameState, x, y int, obj domain.Object) {
	state.Map.Tiles[x][y].Objects = append(state.Map.Tiles[x][y].Objects, obj)
}

func borderWalls(state *domain.GameState) {
	dim := state.Map.Dim()
	for i := 0; i < dim; i++ {
		put(state, 0, i, domain.Wall{})
		put(state, dim-1, i, domain.Wall{})
		if i > 0 && i < dim-1 {
			put(state, i, 0, domain.Wall{})
			put(state, i, dim-1, domain.Wall{})
		}
	}
}

func addZone(state *domain.GameState, x, y, w, h, index int) {
	z := domain.Zone{X: x, Y: y, Width: w, Height: h, Index: index}
	state.Map.Zones = append(state.Map.Zones, z)
	for i := x; i < x+w; i++ {
		for j := y; j < y+h; j++ {
			state.Map.Tiles[i][j].Zone = z.Name()
		}
	}
}

func fog(state *domain.GameState) {
	for x := range state.Map.Tiles {
		for y := range state.Map.Tiles[x] {
			state.Map.Tiles[x][y].Visible = false
		}
	}
}

func ownTank(dir, turret domain.Direction, ammo int, held domain.SecondaryItem) domain.Tank {
	return domain.Tank{
		OwnerID:       ownID,
		Direction:     dir,
		Turret:        domain.Turret{Direction: turret, BulletCount: &ammo},
		SecondaryItem: &held,
	}
}

func enemyTank(dir, turret domain.Direction) domain.Tank {
	return domain.Tank{OwnerID: "enemy", Direction: dir, Turret: domain.Turret{Direction: turret}}
}

func lobby(dim int) *domain.LobbyData {
	return &domain.LobbyData{
		PlayerID:       ownID,
		ServerSettings: domain.ServerSettings{GridDimension: dim, BroadcastInterval: 100, Seed: 7},
	}
}

func pos(x, y int) domain.Position {
	return domain.Position{X: x, Y: y}
}
