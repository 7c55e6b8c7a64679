package application

import (
	"context"
	"errors"
	"testing"

	"tankbot/bot/domain"
)

func newBot(dim int) *Bot {
	b := New(DefaultConfig(), NewRand(1))
	b.Init(lobby(dim))
	return b
}

// TestDecide_FiresAtEnemyInLine は見通しの良い縦列の先の敵を撃つことを確認します。
func TestDecide_FiresAtEnemyInLine(t *testing.T) {
	state := newState(7, 1)
	put(state, 3, 3, ownTank(domain.DirectionUp, domain.DirectionUp, 3, domain.SecondaryNone))
	put(state, 0, 3, enemyTank(domain.DirectionDown, domain.DirectionDown))

	d := newBot(7).Decide(context.Background(), state)

	want := domain.AbilityUse{Ability: domain.AbilityFireBullet}
	if d.Response != want {
		t.Errorf("Response = %s (%s), want %s", d.Response, d.Strategy, want)
	}
}

func TestDecide_FiresForSureWhenAdjacent(t *testing.T) {
	state := newState(7, 1)
	put(state, 3, 3, ownTank(domain.DirectionUp, domain.DirectionUp, 0, domain.SecondaryDoubleBullet))
	put(state, 2, 3, enemyTank(domain.DirectionDown, domain.DirectionDown))

	d := newBot(7).Decide(context.Background(), state)

	want := domain.AbilityUse{Ability: domain.AbilityFireDoubleBullet}
	if d.Response != want || d.Strategy != "fire-for-sure" {
		t.Errorf("Decide = %s (%s), want %s (fire-for-sure)", d.Response, d.Strategy, want)
	}
}

// TestDecide_DropsMineInZone はゾーン内で背後が空いていれば地雷を置くことを確認します。
func TestDecide_DropsMineInZone(t *testing.T) {
	state := newState(7, 1)
	addZone(state, 2, 2, 3, 3, 0)
	put(state, 3, 3, ownTank(domain.DirectionUp, domain.DirectionUp, 3, domain.SecondaryMine))

	b := newBot(7)
	d := b.Decide(context.Background(), state)

	want := domain.AbilityUse{Ability: domain.AbilityDropMine}
	if d.Response != want {
		t.Fatalf("Response = %s (%s), want %s", d.Response, d.Strategy, want)
	}
	if d.Strategy != "mine-cover" {
		t.Errorf("Strategy = %s, want mine-cover", d.Strategy)
	}
	if !b.knowledge.ContainsMine(pos(4, 3)) {
		t.Error("dropped mine should be recorded behind the tank")
	}
}

func TestDecide_UsesRadar(t *testing.T) {
	state := newState(5, 1)
	put(state, 2, 2, ownTank(domain.DirectionUp, domain.DirectionUp, 3, domain.SecondaryRadar))

	d := newBot(5).Decide(context.Background(), state)

	want := domain.AbilityUse{Ability: domain.AbilityUseRadar}
	if d.Response != want || d.Strategy != "radar" {
		t.Errorf("Decide = %s (%s), want %s (radar)", d.Response, d.Strategy, want)
	}
}

// TestDecide_DodgesIncomingBullet は弾がなく弾丸が迫るとき射線から外れることを確認します。
func TestDecide_DodgesIncomingBullet(t *testing.T) {
	state := newState(8, 1)
	put(state, 2, 5, domain.Bullet{ID: 1, Speed: 2, Direction: domain.DirectionDown})
	put(state, 4, 5, ownTank(domain.DirectionRight, domain.DirectionRight, 0, domain.SecondaryNone))

	b := newBot(8)
	d := b.Decide(context.Background(), state)

	move, ok := d.Response.(domain.Move)
	if !ok {
		t.Fatalf("Response = %s (%s), want a move", d.Response, d.Strategy)
	}
	landing := domain.OrientedPosition{Pos: pos(4, 5), Dir: domain.DirectionRight}
	if move.Direction == domain.MoveForward {
		landing = landing.Apply(domain.ActionForward)
	} else {
		landing = landing.Apply(domain.ActionBackward)
	}
	if landing.Pos.Y == 5 {
		t.Errorf("landing %s is still on column 5", landing.Pos)
	}
	if b.knowledge.WillBeHitNextMove(landing.Pos) || b.knowledge.ContainsMine(landing.Pos) {
		t.Errorf("landing %s is not safe", landing.Pos)
	}
}

// TestDecide_LeavesAlignedBulletLine は近くの関係ない弾より、同じ列を進む遠い弾を避けることを確認します。
func TestDecide_LeavesAlignedBulletLine(t *testing.T) {
	state := newState(12, 1)
	put(state, 6, 6, ownTank(domain.DirectionUp, domain.DirectionUp, 3, domain.SecondaryNone))
	put(state, 7, 7, domain.Bullet{ID: 1, Speed: 2, Direction: domain.DirectionRight})
	put(state, 3, 6, domain.Bullet{ID: 2, Speed: 2, Direction: domain.DirectionDown})

	d := newBot(12).Decide(context.Background(), state)

	if d.Strategy != "leave-bullet-line" {
		t.Fatalf("Decide = %s (%s), want leave-bullet-line", d.Response, d.Strategy)
	}
	// 前進しても列 6 に残るので、まず回転する
	if _, ok := d.Response.(domain.Rotate); !ok {
		t.Errorf("Response = %s, want a rotation", d.Response)
	}
}

// TestDecide_RotatesOffBulletLineWhenHullParallel は車体が弾の進路と平行で前後に逃げられないとき、
// 回避ではなく弾の線から外れる動きに移ることを確認します。
func TestDecide_RotatesOffBulletLineWhenHullParallel(t *testing.T) {
	state := newState(12, 1)
	put(state, 6, 6, ownTank(domain.DirectionUp, domain.DirectionUp, 0, domain.SecondaryNone))
	put(state, 4, 6, domain.Bullet{ID: 1, Speed: 2, Direction: domain.DirectionDown})

	b := newBot(12)
	d := b.Decide(context.Background(), state)

	if d.Strategy != "leave-bullet-line" {
		t.Fatalf("Decide = %s (%s), want leave-bullet-line", d.Response, d.Strategy)
	}
	rot, ok := d.Response.(domain.Rotate)
	if !ok || rot.Tank == domain.RotationNone {
		t.Errorf("Response = %s, want a hull rotation", d.Response)
	}
}

func TestDecide_GoesForNearbyItem(t *testing.T) {
	state := newState(7, 1)
	put(state, 3, 3, ownTank(domain.DirectionUp, domain.DirectionUp, 3, domain.SecondaryNone))
	put(state, 1, 3, domain.Item{Type: domain.ItemRadar})

	d := newBot(7).Decide(context.Background(), state)

	if d.Strategy != "item" || d.Response != (domain.Move{Direction: domain.MoveForward}) {
		t.Errorf("Decide = %s (%s), want forward (item)", d.Response, d.Strategy)
	}
}

func TestDecide_IgnoresDoubleBulletOutOfRange(t *testing.T) {
	state := newState(9, 1)
	addZone(state, 0, 0, 1, 1, 0)
	put(state, 4, 4, ownTank(domain.DirectionUp, domain.DirectionUp, 3, domain.SecondaryNone))
	put(state, 8, 8, domain.Item{Type: domain.ItemDoubleBullet})

	d := newBot(9).Decide(context.Background(), state)

	if d.Strategy == "item" {
		t.Errorf("double bullet 8+ steps away should not be pursued, got %s", d.Response)
	}
}

func TestDecide_SeeksZone(t *testing.T) {
	state := newState(8, 1)
	borderWalls(state)
	addZone(state, 5, 5, 2, 2, 0)
	put(state, 2, 2, ownTank(domain.DirectionUp, domain.DirectionUp, 3, domain.SecondaryNone))

	d := newBot(8).Decide(context.Background(), state)

	if d.Strategy != "seek-zone" {
		t.Errorf("Strategy = %s, want seek-zone", d.Strategy)
	}
}

func TestDecide_RotatesToEnemyInZone(t *testing.T) {
	state := newState(7, 1)
	addZone(state, 2, 2, 3, 3, 0)
	put(state, 3, 3, ownTank(domain.DirectionUp, domain.DirectionUp, 3, domain.SecondaryNone))
	put(state, 3, 6, enemyTank(domain.DirectionUp, domain.DirectionUp))

	d := newBot(7).Decide(context.Background(), state)

	// 敵は右にいるので砲塔は右、車体は下へ向ける
	want := domain.Rotate{Tank: domain.RotationRight, Turret: domain.RotationRight}
	if d.Response != want || d.Strategy != "hold-zone" {
		t.Errorf("Decide = %s (%s), want %s (hold-zone)", d.Response, d.Strategy, want)
	}
}

func TestDecide_NoTankWaits(t *testing.T) {
	state := newState(5, 1)
	d := newBot(5).Decide(context.Background(), state)
	if d.Response != (domain.Wait{}) {
		t.Errorf("Response = %s, want wait", d.Response)
	}
}

func TestDecide_MissingAmmoPanics(t *testing.T) {
	state := newState(5, 1)
	put(state, 2, 2, domain.Tank{OwnerID: ownID, Turret: domain.Turret{Direction: domain.DirectionUp}})

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrMissingAmmo) {
			t.Errorf("recover() = %v, want ErrMissingAmmo", r)
		}
	}()
	newBot(5).Decide(context.Background(), state)
}

// TestDecide_Deterministic は同じシードなら同じ判断列になることを確認します。
func TestDecide_Deterministic(t *testing.T) {
	run := func() []domain.Response {
		b := newBot(6)
		var out []domain.Response
		for tick := 1; tick <= 20; tick++ {
			state := newState(6, tick)
			addZone(state, 1, 1, 4, 4, 0)
			put(state, 2, 2, ownTank(domain.Direction(tick%4), domain.DirectionUp, 0, domain.SecondaryNone))
			out = append(out, b.NextMove(context.Background(), state))
		}
		return out
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("tick %d: %s != %s", i+1, a[i], b[i])
		}
	}
}

func TestInit_ResetsMatchState(t *testing.T) {
	b := newBot(5)
	state := newState(5, 1)
	put(state, 2, 2, ownTank(domain.DirectionUp, domain.DirectionUp, 1, domain.SecondaryNone))
	b.Decide(context.Background(), state)
	if b.static == nil || !b.hasLast {
		t.Fatal("first decision should build match state")
	}

	b.Init(lobby(5))
	if b.static != nil || b.knowledge != nil || b.hasLast {
		t.Error("Init should reset match state")
	}
}
