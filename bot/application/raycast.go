package application

import "tankbot/bot/domain"

// threatRange は回避判定で見る距離です。
const threatRange = 2

// scanTurret は砲塔の向きに limit マスまで走査し、見つけた敵戦車ごとに hit を呼びます。
// 盤外・壁・視界外のマスで止まります。hit が true を返したら true を返します。
func scanTurret(state *domain.GameState, static *StaticMap, self Self, limit int, hit func(domain.Tank) bool) bool {
	p := self.Pos.Pos
	for i := 0; i < limit; i++ {
		p = p.Moved(self.Turret)
		if !static.Passable(p) {
			return false
		}
		tile := state.Map.At(p)
		if !tile.Visible {
			return false
		}
		for _, obj := range tile.Objects {
			if tank, ok := obj.(domain.Tank); ok && tank.OwnerID != self.ID && hit(tank) {
				return true
			}
		}
	}
	return false
}

// CanSeeEnemy は砲塔の向きに敵戦車が見えているかを返します。
func CanSeeEnemy(state *domain.GameState, static *StaticMap, self Self) bool {
	return scanTurret(state, static, self, static.Dim()-1, func(domain.Tank) bool {
		return true
	})
}

// WillFireHitForSure は今撃てば確実に当たるかを返します。
// 射程は通常弾で1マス、レーザー保持時は盤面全体です。
// 相手の車体が砲塔と平行なときだけ確実とみなします。横方向のずれは見ていない近似です。
func WillFireHitForSure(state *domain.GameState, static *StaticMap, self Self) bool {
	limit := 1
	if self.Held == domain.SecondaryLaser {
		limit = static.Dim() - 1
	}
	return scanTurret(state, static, self, limit, func(tank domain.Tank) bool {
		return domain.IsParallel(self.Turret, tank.Direction)
	})
}

// ThreatenedFrom は4方向それぞれ threatRange マス以内に自分を狙う脅威があるかを調べ、
// 脅威がある方向を返します。脅威は砲塔をこちらへ向けた敵戦車か、こちらへ向かう弾（記憶を含む）です。
// 脅威の向きが自分の車体と平行な場合は前後移動で避けられないため数えません。
func ThreatenedFrom(state *domain.GameState, static *StaticMap, knowledge *KnowledgeMap, self Self) []domain.Direction {
	var threats []domain.Direction
	for _, axis := range domain.Directions {
		incoming := axis.Opposite()
		if domain.IsParallel(self.Pos.Dir, incoming) {
			continue
		}
		if axisThreatened(state, static, knowledge, self, axis, incoming) {
			threats = append(threats, axis)
		}
	}
	return threats
}

func axisThreatened(state *domain.GameState, static *StaticMap, knowledge *KnowledgeMap, self Self, axis, incoming domain.Direction) bool {
	p := self.Pos.Pos
	for step := 0; step < threatRange; step++ {
		p = p.Moved(axis)
		if !static.Passable(p) {
			return false
		}
		for _, obj := range state.Map.At(p).Objects {
			if tank, ok := obj.(domain.Tank); ok && tank.OwnerID != self.ID && tank.Turret.Direction == incoming {
				return true
			}
		}
		for _, m := range knowledge.Objects(p) {
			if b, ok := m.Object.(domain.Bullet); ok && b.Direction == incoming {
				return true
			}
		}
	}
	return false
}
