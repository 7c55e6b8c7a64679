package application

import (
	"context"

	"tankbot/bot/domain"
)

// Path は探索結果です。再計画は毎tick行うため最初の1手だけを保持します。
type Path struct {
	First domain.Action
	Final domain.OrientedPosition
	Steps int
}

// HasAction は実行すべき1手があるかを返します。開始地点がゴールなら false です。
func (p Path) HasAction() bool {
	return p.Steps > 0
}

// GoalFunc は状態とそこまでの手数（ETA）を受け取り、ゴールかを返します。
type GoalFunc func(pos domain.OrientedPosition, eta int) bool

const (
	unvisited int8 = -1
	origin    int8 = 4
)

// Searcher は (マス, 向き) のグラフ上の幅優先探索です。
// 壁・地雷・弾の射線上のマスへは進みません。バッファは呼び出し間で再利用します。
type Searcher struct {
	static    *StaticMap
	knowledge *KnowledgeMap

	via      []int8 // 状態に到達した操作。unvisited / origin は特別値
	frontier []int32
	next     []int32
}

// NewSearcher は static と knowledge を危険判定に使う Searcher を作ります。
func NewSearcher(static *StaticMap, knowledge *KnowledgeMap) *Searcher {
	n := static.Dim() * static.Dim() * 4
	return &Searcher{
		static:    static,
		knowledge: knowledge,
		via:       make([]int8, n),
	}
}

// Search は start から goal を満たす最短の状態を探します。
// 同じ手数の経路が複数あるときは domain.AllActions の順で最初に見つかったものを返します。
// ctx は層ごとに確認し、期限切れなら (Path{}, false) を返します。
func (s *Searcher) Search(ctx context.Context, start domain.OrientedPosition, goal GoalFunc) (Path, bool) {
	if goal(start, 0) {
		return Path{Final: start}, true
	}
	if !start.Pos.InBounds(s.static.Dim()) {
		return Path{}, false
	}

	for i := range s.via {
		s.via[i] = unvisited
	}
	s.via[s.index(start)] = origin
	s.frontier = append(s.frontier[:0], int32(s.index(start)))

	for eta := 1; len(s.frontier) > 0; eta++ {
		if ctx.Err() != nil {
			return Path{}, false
		}
		s.next = s.next[:0]
		for _, cur := range s.frontier {
			from := s.state(int(cur))
			for _, action := range domain.AllActions {
				to := from.Apply(action)
				if to.Pos != start.Pos && !s.safe(to.Pos) {
					continue
				}
				i := s.index(to)
				if s.via[i] != unvisited {
					continue
				}
				s.via[i] = int8(action)
				if goal(to, eta) {
					return Path{First: s.firstAction(to), Final: to, Steps: eta}, true
				}
				s.next = append(s.next, int32(i))
			}
		}
		s.frontier, s.next = s.next, s.frontier
	}
	return Path{}, false
}

// Distance は start から target のマスまでの最短手数を返します。向きは問いません。
func (s *Searcher) Distance(ctx context.Context, start domain.OrientedPosition, target domain.Position) (int, bool) {
	path, ok := s.Search(ctx, start, func(pos domain.OrientedPosition, _ int) bool {
		return pos.Pos == target
	})
	return path.Steps, ok
}

// safe は探索で進入してよいマスかを返します。
func (s *Searcher) safe(p domain.Position) bool {
	return s.static.Passable(p) &&
		!s.knowledge.ContainsMine(p) &&
		!s.knowledge.OnBulletTrajectory(p)
}

// firstAction は到達操作を逆にたどって開始直後の1手を求めます。
func (s *Searcher) firstAction(goal domain.OrientedPosition) domain.Action {
	cur := goal
	var first domain.Action
	for {
		via := s.via[s.index(cur)]
		if via == origin {
			return first
		}
		first = domain.Action(via)
		cur = cur.Apply(first.Reversed())
	}
}

func (s *Searcher) index(o domain.OrientedPosition) int {
	return (o.Pos.X*s.static.Dim()+o.Pos.Y)*4 + int(o.Dir)
}

func (s *Searcher) state(i int) domain.OrientedPosition {
	dim := s.static.Dim()
	cell := i / 4
	return domain.OrientedPosition{
		Pos: domain.Position{X: cell / dim, Y: cell % dim},
		Dir: domain.Direction(i % 4),
	}
}
