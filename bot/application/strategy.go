package application

import (
	"context"

	"tankbot/bot/domain"
)

// turn は1tickの判断に必要な入力です。
type turn struct {
	ctx     context.Context
	state   *domain.GameState
	self    Self
	last    domain.OrientedPosition
	hasLast bool
}

// strategy は行動を決められたときだけ (行動, true) を返します。
type strategy struct {
	name string
	run  func(t *turn) (domain.Response, bool)
}

// cascade は戦略を優先順に並べたものです。ゾーンに届かないときは isolated でその場で戦い、
// それでも決まらなければ drunkWalk に落ちます。
func (b *Bot) cascade() []strategy {
	return []strategy{
		{name: "fire-for-sure", run: b.fireForSure},
		{name: "mine-cover", run: b.dropMineInCover},
		{name: "radar", run: b.useRadar},
		{name: "unstick", run: b.unstick},
		{name: "dodge", run: b.dodge},
		{name: "leave-bullet-line", run: b.leaveBulletLine},
		{name: "mine", run: b.dropMineIfReasonable},
		{name: "radar-fallback", run: b.useRadar},
		{name: "item", run: b.goForItem},
		{name: "hold-zone", run: b.holdZone},
		{name: "seek-zone", run: b.seekZone},
		{name: "isolated", run: b.fightInPlace},
	}
}

// fire は使える攻撃手段を選びます。レーザー、ダブル弾、通常弾の順です。
func fire(self Self, useLaser, useDouble bool) (domain.Response, bool) {
	switch {
	case useLaser && self.Held == domain.SecondaryLaser:
		return domain.AbilityUse{Ability: domain.AbilityUseLaser}, true
	case useDouble && self.Held == domain.SecondaryDoubleBullet:
		return domain.AbilityUse{Ability: domain.AbilityFireDoubleBullet}, true
	case self.Ammo > 0:
		return domain.AbilityUse{Ability: domain.AbilityFireBullet}, true
	}
	return nil, false
}

func (b *Bot) fireForSure(t *turn) (domain.Response, bool) {
	if !WillFireHitForSure(t.state, b.static, t.self) {
		return nil, false
	}
	return fire(t.self, true, true)
}

func (b *Bot) shootIfSeeingEnemy(t *turn, useLaser, useDouble bool) (domain.Response, bool) {
	if !CanSeeEnemy(t.state, b.static, t.self) {
		return nil, false
	}
	return fire(t.self, useLaser, useDouble)
}

// dropMineInCover は壁の間かゾーン内にいて、背後のマスが空いていれば地雷を置きます。
func (b *Bot) dropMineInCover(t *turn) (domain.Response, bool) {
	behind, ok := b.mineSpot(t)
	if !ok {
		return nil, false
	}
	if b.knowledge.ContainsMine(behind) || hasTank(t.state, behind) {
		return nil, false
	}
	return b.dropMine(t, behind), true
}

// dropMineIfReasonable は dropMineInCover より緩い条件で地雷を置きます。背後が盤内で壁でなければよい。
func (b *Bot) dropMineIfReasonable(t *turn) (domain.Response, bool) {
	behind, ok := b.mineSpot(t)
	if !ok {
		return nil, false
	}
	return b.dropMine(t, behind), true
}

// mineSpot は地雷を置く条件を満たすときに背後のマスを返します。
func (b *Bot) mineSpot(t *turn) (domain.Position, bool) {
	if t.self.Held != domain.SecondaryMine {
		return domain.Position{}, false
	}
	p := t.self.Pos.Pos
	if !b.static.IsBetweenWalls(p) && !b.static.InZone(p) {
		return domain.Position{}, false
	}
	behind := p.Moved(t.self.Pos.Dir.Opposite())
	if !b.static.Passable(behind) {
		return domain.Position{}, false
	}
	return behind, true
}

func (b *Bot) dropMine(t *turn, at domain.Position) domain.Response {
	b.knowledge.NotifyMine(t.state.Tick, at)
	return domain.AbilityUse{Ability: domain.AbilityDropMine}
}

func (b *Bot) useRadar(t *turn) (domain.Response, bool) {
	if t.self.Held != domain.SecondaryRadar {
		return nil, false
	}
	return domain.AbilityUse{Ability: domain.AbilityUseRadar}, true
}

// unstick は前のtickから動いていないとき、低確率で撃つかうろつくかして膠着を崩します。
func (b *Bot) unstick(t *turn) (domain.Response, bool) {
	if !t.hasLast || t.last != t.self.Pos || b.cfg.StallChance <= 0 {
		return nil, false
	}
	if b.rng.IntN(b.cfg.StallChance) != 0 {
		return nil, false
	}
	if r, ok := b.shootIfSeeingEnemy(t, true, true); ok {
		return r, true
	}
	return b.drunkWalk(t), true
}

// dodge は撃ち返せないときに迫る脅威から前後へ逃げます。
func (b *Bot) dodge(t *turn) (domain.Response, bool) {
	if t.self.Armed() {
		return nil, false
	}
	if len(ThreatenedFrom(t.state, b.static, b.knowledge, t.self)) == 0 {
		return nil, false
	}
	for _, action := range []domain.Action{domain.ActionForward, domain.ActionBackward} {
		next := t.self.Pos.Apply(action).Pos
		if b.static.Passable(next) && !b.knowledge.WillBeHitNextMove(next) && !b.knowledge.ContainsMine(next) {
			return action.Response(), true
		}
	}
	return nil, false
}

// leaveBulletLine は同じ行か列にいる弾のうち最も近いものについて、その両方の線から外れたマスへ向かいます。
func (b *Bot) leaveBulletLine(t *turn) (domain.Response, bool) {
	bullet, ok := b.closestAlignedBullet(t.self.Pos.Pos)
	if !ok {
		return nil, false
	}
	return b.follow(t, func(o domain.OrientedPosition, _ int) bool {
		return o.Pos.X != bullet.X && o.Pos.Y != bullet.Y
	})
}

func (b *Bot) closestAlignedBullet(from domain.Position) (domain.Position, bool) {
	best, found := domain.Position{}, false
	bestDist := 0
	for _, s := range b.knowledge.Bullets() {
		if s.Pos.X != from.X && s.Pos.Y != from.Y {
			continue
		}
		d := from.Manhattan(s.Pos)
		if !found || d < bestDist {
			best, bestDist, found = s.Pos, d, true
		}
	}
	return best, found
}

// goForItem はアイテムを持っていないとき、射程内に知っているアイテムへ向かいます。
func (b *Bot) goForItem(t *turn) (domain.Response, bool) {
	if t.self.Held != domain.SecondaryNone {
		return nil, false
	}
	known := b.knowledge.Knows(func(_ domain.Position, m Memory) bool {
		_, ok := m.Object.(domain.Item)
		return ok
	})
	if !known {
		return nil, false
	}
	return b.follow(t, func(o domain.OrientedPosition, eta int) bool {
		for _, m := range b.knowledge.Objects(o.Pos) {
			item, ok := m.Object.(domain.Item)
			if !ok {
				continue
			}
			limit := b.cfg.ItemRange
			if item.Type == domain.ItemDoubleBullet {
				limit = b.cfg.DoubleBulletRange
			}
			if eta < limit {
				return true
			}
		}
		return false
	})
}

// holdZone はゾーン内にいるとき、その場で戦います。
func (b *Bot) holdZone(t *turn) (domain.Response, bool) {
	if !b.static.InZone(t.self.Pos.Pos) {
		return nil, false
	}
	if r, ok := b.fightInPlace(t); ok {
		return r, true
	}
	return b.drunkWalk(t), true
}

func (b *Bot) seekZone(t *turn) (domain.Response, bool) {
	return b.follow(t, func(o domain.OrientedPosition, _ int) bool {
		return b.static.InZone(o.Pos)
	})
}

// fightInPlace は見えている敵を撃つか、最も近い敵へ向き直ります。
// ゾーンに辿り着けないときもこれで戦います。
func (b *Bot) fightInPlace(t *turn) (domain.Response, bool) {
	if r, ok := b.shootIfSeeingEnemy(t, false, false); ok {
		return r, true
	}
	return b.rotateToEnemy(t)
}

// follow は goal への最短経路の最初の1手を返します。
func (b *Bot) follow(t *turn, goal GoalFunc) (domain.Response, bool) {
	path, ok := b.searcher.Search(t.ctx, t.self.Pos, goal)
	if !ok || !path.HasAction() {
		return nil, false
	}
	return path.First.Response(), true
}

// rotateToEnemy は最も近い敵（見えている敵を優先し、なければ記憶中の敵）に車体と砲塔を向けます。
// 既に向いていれば前進を中心にランダムに動きます。
func (b *Bot) rotateToEnemy(t *turn) (domain.Response, bool) {
	visible := func(o domain.OrientedPosition, _ int) bool {
		tile := t.state.Map.At(o.Pos)
		if !tile.Visible {
			return false
		}
		_, ok := tile.EnemyTank(t.self.ID)
		return ok
	}
	remembered := func(o domain.OrientedPosition, _ int) bool {
		if t.state.Map.At(o.Pos).Visible {
			return false
		}
		for _, m := range b.knowledge.Objects(o.Pos) {
			if tank, ok := m.Object.(domain.Tank); ok && tank.OwnerID != t.self.ID {
				return true
			}
		}
		return false
	}

	path, ok := b.searcher.Search(t.ctx, t.self.Pos, visible)
	if !ok {
		if path, ok = b.searcher.Search(t.ctx, t.self.Pos, remembered); !ok {
			return nil, false
		}
	}

	dx := path.Final.Pos.X - t.self.Pos.Pos.X
	dy := path.Final.Pos.Y - t.self.Pos.Pos.Y
	hull, turret := facing(dx, dy)

	tankRot := domain.RotationTo(t.self.Pos.Dir, hull)
	turretRot := domain.RotationTo(t.self.Turret, turret)
	if tankRot != domain.RotationNone || turretRot != domain.RotationNone {
		return domain.Rotate{Tank: tankRot, Turret: turretRot}, true
	}

	if b.rng.IntN(4) != 0 {
		if b.static.Passable(t.self.Pos.Apply(domain.ActionForward).Pos) {
			return domain.Move{Direction: domain.MoveForward}, true
		}
		return b.drunkWalk(t), true
	}
	switch b.rng.IntN(3) {
	case 0:
		if b.static.Passable(t.self.Pos.Apply(domain.ActionBackward).Pos) {
			return domain.Move{Direction: domain.MoveBackward}, true
		}
		return b.drunkWalk(t), true
	case 1:
		return domain.Wait{}, true
	default:
		return b.drunkWalk(t), true
	}
}

// facing は敵への変位から望ましい車体と砲塔の向きを返します。
// 砲塔は変位の大きい軸へ向け、車体はそれと直交させます。
func facing(dx, dy int) (hull, turret domain.Direction) {
	sideways := func(d int, pos, neg domain.Direction) domain.Direction {
		if d >= 0 {
			return pos
		}
		return neg
	}
	switch {
	case dx >= abs(dy):
		return sideways(dy, domain.DirectionRight, domain.DirectionLeft), domain.DirectionDown
	case dx <= -abs(dy):
		return sideways(dy, domain.DirectionRight, domain.DirectionLeft), domain.DirectionUp
	case dy >= abs(dx):
		return sideways(dx, domain.DirectionDown, domain.DirectionUp), domain.DirectionRight
	default:
		return sideways(dx, domain.DirectionDown, domain.DirectionUp), domain.DirectionLeft
	}
}

// drunkWalk はゾーン内に留まる前後移動か、ランダムな回転をします。必ず行動を返します。
func (b *Bot) drunkWalk(t *turn) domain.Response {
	if b.rng.IntN(2) == 0 {
		forward := b.canMoveInsideZone(t.self.Pos, domain.ActionForward)
		backward := b.canMoveInsideZone(t.self.Pos, domain.ActionBackward)
		switch {
		case forward && backward:
			if b.rng.IntN(2) == 0 {
				return domain.Move{Direction: domain.MoveForward}
			}
			return domain.Move{Direction: domain.MoveBackward}
		case forward:
			return domain.Move{Direction: domain.MoveForward}
		case backward:
			return domain.Move{Direction: domain.MoveBackward}
		}
	}
	return domain.Rotate{
		Tank:   domain.RotationDirection(b.rng.IntN(2)),
		Turret: domain.RotationDirection(b.rng.IntN(2)),
	}
}

func (b *Bot) canMoveInsideZone(o domain.OrientedPosition, action domain.Action) bool {
	next := o.Apply(action).Pos
	return b.static.Passable(next) && b.static.InZone(next)
}

func hasTank(state *domain.GameState, p domain.Position) bool {
	for _, obj := range state.Map.At(p).Objects {
		if _, ok := obj.(domain.Tank); ok {
			return true
		}
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
