package application

import (
	"math"

	"tankbot/bot/domain"
)

// Memory は1マスに記憶している物体です。
type Memory struct {
	Tick      int
	Object    domain.Object
	Projected bool // 霧の中へ先送りした弾。再度の先送りはしない
	Dropped   bool // 自分で設置した地雷
}

// BulletSighting は記憶中の弾とその位置です。
type BulletSighting struct {
	Pos    domain.Position
	Bullet domain.Bullet
	Tick   int
}

// KnowledgeMap は視界外のマスについての記憶です。
// 見えているマスは毎tick最新の内容で置き換え、見えないマスは Horizon tickで忘れます。
// 期限切れ直前の弾は進行方向へ数マス先送りして短期的な脅威を追跡します。
type KnowledgeMap struct {
	dim        int
	horizon    int
	projection int
	tick       int

	cells [][]Memory // [x*dim+y]、新しい順

	// Update ごとに再計算する
	trajectory []bool
	hitNext    []bool
	bullets    []BulletSighting
}

// NewKnowledgeMap は dim×dim の空の KnowledgeMap を作ります。
func NewKnowledgeMap(dim int, cfg Config) *KnowledgeMap {
	return &KnowledgeMap{
		dim:        dim,
		horizon:    cfg.Horizon,
		projection: cfg.BulletProjection,
		cells:      make([][]Memory, dim*dim),
		trajectory: make([]bool, dim*dim),
		hitNext:    make([]bool, dim*dim),
	}
}

// Update はスナップショットを取り込みます。クエリより先に毎tick1回呼び出してください。
func (k *KnowledgeMap) Update(state *domain.GameState, static *StaticMap) {
	k.tick = state.Tick

	var expiring []BulletSighting
	for x := 0; x < k.dim; x++ {
		for y := 0; y < k.dim; y++ {
			p := domain.Position{X: x, Y: y}
			i := k.index(p)
			tile := state.Map.At(p)
			if tile.Visible {
				k.refresh(i, tile)
				continue
			}

			kept := k.cells[i][:0]
			for _, m := range k.cells[i] {
				age := k.tick - m.Tick
				// tickを取りこぼしても先送りは行う
				if b, ok := m.Object.(domain.Bullet); ok && !m.Projected && age >= k.horizon {
					expiring = append(expiring, BulletSighting{Pos: p, Bullet: b, Tick: m.Tick})
					continue
				}
				if age > k.horizon {
					continue
				}
				kept = append(kept, m)
			}
			k.cells[i] = kept
		}
	}

	for _, s := range expiring {
		k.project(state, static, s)
	}
	k.rebuildThreats(static)
}

// refresh は見えているマスの記憶を現在の内容で置き換えます。
// 壁は StaticMap が持つため記憶しません。
func (k *KnowledgeMap) refresh(i int, tile domain.Tile) {
	var dropped []Memory
	for _, m := range k.cells[i] {
		if m.Dropped && k.tick-m.Tick <= k.horizon {
			dropped = append(dropped, m)
		}
	}

	cell := k.cells[i][:0]
	hasMine := false
	for _, obj := range tile.Objects {
		switch obj.(type) {
		case domain.Wall:
			continue
		case domain.Mine:
			hasMine = true
		}
		cell = append(cell, Memory{Tick: k.tick, Object: obj})
	}
	if !hasMine {
		cell = append(cell, dropped...)
	}
	k.cells[i] = cell
}

// project は期限切れになる弾を進行方向へ最大 projection マス先送りします。
// 壁か見えているマスに当たったら止めます。
func (k *KnowledgeMap) project(state *domain.GameState, static *StaticMap, s BulletSighting) {
	p := s.Pos
	for step := 0; step < k.projection; step++ {
		p = p.Moved(s.Bullet.Direction)
		if !static.Passable(p) || state.Map.At(p).Visible {
			return
		}
		i := k.index(p)
		k.cells[i] = append([]Memory{{Tick: k.tick, Object: s.Bullet, Projected: true}}, k.cells[i]...)
	}
}

func (k *KnowledgeMap) rebuildThreats(static *StaticMap) {
	clear(k.trajectory)
	clear(k.hitNext)
	k.bullets = k.bullets[:0]

	for i, cell := range k.cells {
		for _, m := range cell {
			b, ok := m.Object.(domain.Bullet)
			if !ok {
				continue
			}
			p := k.position(i)
			k.bullets = append(k.bullets, BulletSighting{Pos: p, Bullet: b, Tick: m.Tick})
			k.hitNext[i] = true
			for step := 0; step < bulletReach(b); step++ {
				p = p.Moved(b.Direction)
				if !static.Passable(p) {
					break
				}
				k.trajectory[k.index(p)] = true
				k.hitNext[k.index(p)] = true
			}
		}
	}
}

// bulletReach は弾が1tickで進むマス数です。ダブル弾は2マス長なので1マス伸ばします。
func bulletReach(b domain.Bullet) int {
	reach := 2
	if b.Speed > 0 {
		reach = int(math.Ceil(b.Speed))
	}
	if b.Type == domain.BulletDouble {
		reach++
	}
	return reach
}

// NotifyMine は自分が p に地雷を設置したことを記録します。
func (k *KnowledgeMap) NotifyMine(tick int, p domain.Position) {
	if !p.InBounds(k.dim) {
		return
	}
	i := k.index(p)
	k.cells[i] = append([]Memory{{Tick: tick, Object: domain.Mine{}, Dropped: true}}, k.cells[i]...)
}

// ContainsMine は p に地雷があると考えているかを返します。
func (k *KnowledgeMap) ContainsMine(p domain.Position) bool {
	if !p.InBounds(k.dim) {
		return false
	}
	for _, m := range k.cells[k.index(p)] {
		if _, ok := m.Object.(domain.Mine); ok {
			return true
		}
	}
	return false
}

// OnBulletTrajectory は p が記憶中の弾の射線上（1tickの到達範囲内）にあるかを返します。
func (k *KnowledgeMap) OnBulletTrajectory(p domain.Position) bool {
	return p.InBounds(k.dim) && k.trajectory[k.index(p)]
}

// WillBeHitNextMove は次のtickに p にいると弾に当たるかを返します。
// 見えている弾は Update で記憶に取り込まれているため、記憶だけを調べれば足ります。
func (k *KnowledgeMap) WillBeHitNextMove(p domain.Position) bool {
	return p.InBounds(k.dim) && k.hitNext[k.index(p)]
}

// Objects は p の記憶を新しい順に返します。
func (k *KnowledgeMap) Objects(p domain.Position) []Memory {
	if !p.InBounds(k.dim) {
		return nil
	}
	return k.cells[k.index(p)]
}

// Knows は pred を満たす記憶が1つでもあるかを返します。
func (k *KnowledgeMap) Knows(pred func(domain.Position, Memory) bool) bool {
	for i, cell := range k.cells {
		for _, m := range cell {
			if pred(k.position(i), m) {
				return true
			}
		}
	}
	return false
}

// Bullets は記憶中の全ての弾を返します。
func (k *KnowledgeMap) Bullets() []BulletSighting {
	return k.bullets
}

func (k *KnowledgeMap) index(p domain.Position) int {
	return p.X*k.dim + p.Y
}

func (k *KnowledgeMap) position(i int) domain.Position {
	return domain.Position{X: i / k.dim, Y: i % k.dim}
}
