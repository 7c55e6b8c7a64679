package application

import (
	"testing"

	"pgregory.net/rapid"

	"tankbot/bot/domain"
)

func selfAt(x, y int, dir, turret domain.Direction, ammo int, held domain.SecondaryItem) Self {
	return Self{
		ID:     ownID,
		Pos:    domain.OrientedPosition{Pos: pos(x, y), Dir: dir},
		Turret: turret,
		Ammo:   ammo,
		Held:   held,
	}
}

func TestWillFireHitForSure(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *domain.GameState)
		held  domain.SecondaryItem
		want  bool
	}{
		{
			name:  "adjacent parallel",
			setup: func(s *domain.GameState) { put(s, 2, 3, enemyTank(domain.DirectionDown, domain.DirectionDown)) },
			want:  true,
		},
		{
			name:  "adjacent perpendicular",
			setup: func(s *domain.GameState) { put(s, 2, 3, enemyTank(domain.DirectionLeft, domain.DirectionDown)) },
			want:  false,
		},
		{
			name:  "out of plain range",
			setup: func(s *domain.GameState) { put(s, 0, 3, enemyTank(domain.DirectionDown, domain.DirectionDown)) },
			want:  false,
		},
		{
			name:  "laser reaches across the grid",
			setup: func(s *domain.GameState) { put(s, 0, 3, enemyTank(domain.DirectionUp, domain.DirectionDown)) },
			held:  domain.SecondaryLaser,
			want:  true,
		},
		{
			name: "wall blocks the laser",
			setup: func(s *domain.GameState) {
				put(s, 1, 3, domain.Wall{})
				put(s, 0, 3, enemyTank(domain.DirectionUp, domain.DirectionDown))
			},
			held: domain.SecondaryLaser,
			want: false,
		},
		{
			name: "fog blocks the laser",
			setup: func(s *domain.GameState) {
				s.Map.Tiles[1][3].Visible = false
				put(s, 0, 3, enemyTank(domain.DirectionUp, domain.DirectionDown))
			},
			held: domain.SecondaryLaser,
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := newState(7, 1)
			tt.setup(state)
			static := NewStaticMap(state.Map)
			self := selfAt(3, 3, domain.DirectionUp, domain.DirectionUp, 1, tt.held)

			if got := WillFireHitForSure(state, static, self); got != tt.want {
				t.Errorf("WillFireHitForSure = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestWillFireHitForSure_BeyondPlainRange は通常弾では2マス以上先の敵を確実とみなさないことを確認します。
func TestWillFireHitForSure_BeyondPlainRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dim := rapid.IntRange(3, 12).Draw(t, "dim")
		y := rapid.IntRange(0, dim-1).Draw(t, "y")
		dist := rapid.IntRange(2, dim-1).Draw(t, "dist")
		state := newState(dim, 1)
		put(state, dim-1-dist, y, enemyTank(domain.DirectionDown, domain.DirectionUp))
		static := NewStaticMap(state.Map)
		self := selfAt(dim-1, y, domain.DirectionUp, domain.DirectionUp, 3, domain.SecondaryNone)

		if WillFireHitForSure(state, static, self) {
			t.Fatalf("enemy %d cells away should not be a sure hit", dist)
		}
		if !CanSeeEnemy(state, static, self) {
			t.Fatalf("enemy %d cells away in the clear should be visible", dist)
		}
	})
}

func TestCanSeeEnemy(t *testing.T) {
	state := newState(7, 1)
	put(state, 3, 6, enemyTank(domain.DirectionUp, domain.DirectionUp))
	static := NewStaticMap(state.Map)

	if !CanSeeEnemy(state, static, selfAt(3, 0, domain.DirectionUp, domain.DirectionRight, 0, domain.SecondaryNone)) {
		t.Error("enemy to the right should be visible")
	}
	if CanSeeEnemy(state, static, selfAt(3, 0, domain.DirectionUp, domain.DirectionUp, 0, domain.SecondaryNone)) {
		t.Error("enemy is not in the turret direction")
	}

	state.Map.Tiles[3][4].Visible = false
	if CanSeeEnemy(state, static, selfAt(3, 0, domain.DirectionUp, domain.DirectionRight, 0, domain.SecondaryNone)) {
		t.Error("fog should block the scan")
	}
}

func TestThreatenedFrom(t *testing.T) {
	state := newState(7, 1)
	// 上2マスの敵が砲塔を下へ向けている
	put(state, 1, 3, enemyTank(domain.DirectionLeft, domain.DirectionDown))
	// 右の敵は砲塔がこちらを向いていない
	put(state, 3, 4, enemyTank(domain.DirectionLeft, domain.DirectionUp))
	static := NewStaticMap(state.Map)
	k := NewKnowledgeMap(7, DefaultConfig())
	k.Update(state, static)

	threats := ThreatenedFrom(state, static, k, selfAt(3, 3, domain.DirectionRight, domain.DirectionRight, 0, domain.SecondaryNone))
	if len(threats) != 1 || threats[0] != domain.DirectionUp {
		t.Errorf("threats = %v, want [up]", threats)
	}

	// 車体が脅威と平行なら前後移動で避けられないので数えない
	threats = ThreatenedFrom(state, static, k, selfAt(3, 3, domain.DirectionUp, domain.DirectionRight, 0, domain.SecondaryNone))
	if len(threats) != 0 {
		t.Errorf("threats = %v, want none", threats)
	}
}
