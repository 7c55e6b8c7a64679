package domain

import "fmt"

// Direction は戦車・砲塔・弾丸の向きを表します。
// 値はサーバーのプロトコルと一致しています。
type Direction uint8

const (
	DirectionUp Direction = iota
	DirectionRight
	DirectionDown
	DirectionLeft
)

// directionDeltas は各方向への (行, 列) の移動量です。
var directionDeltas = [4]Position{
	{X: -1, Y: 0},
	{X: 0, Y: 1},
	{X: 1, Y: 0},
	{X: 0, Y: -1},
}

// Directions は全方向を列挙順に並べたものです。
var Directions = [4]Direction{DirectionUp, DirectionRight, DirectionDown, DirectionLeft}

// Delta はこの方向に1マス進んだときの移動量を返します。
func (d Direction) Delta() Position {
	return directionDeltas[d%4]
}

// Opposite は逆方向を返します。
func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

// Rotated は指定の回転を1回適用した向きを返します。
func (d Direction) Rotated(rot RotationDirection) Direction {
	switch rot {
	case RotationLeft:
		return (d + 3) % 4
	case RotationRight:
		return (d + 1) % 4
	default:
		return d
	}
}

// IsParallel は2つの向きが同一直線上（同じ向きか逆向き）にあるかを返します。
func IsParallel(a, b Direction) bool {
	return a == b || a == b.Opposite()
}

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionRight:
		return "right"
	case DirectionDown:
		return "down"
	case DirectionLeft:
		return "left"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// RotationDirection は回転方向です。None は「回転しない」を表します。
type RotationDirection uint8

const (
	RotationLeft RotationDirection = iota
	RotationRight
	RotationNone
)

func (r RotationDirection) String() string {
	switch r {
	case RotationLeft:
		return "left"
	case RotationRight:
		return "right"
	default:
		return "none"
	}
}

// RotationTo は from を to に近づける1回分の回転を返します。
// 真逆の場合は右回転を選びます。
func RotationTo(from, to Direction) RotationDirection {
	switch (to + 4 - from) % 4 {
	case 0:
		return RotationNone
	case 3:
		return RotationLeft
	default:
		return RotationRight
	}
}

// MoveDirection は前進・後退の区別です。
type MoveDirection uint8

const (
	MoveForward MoveDirection = iota
	MoveBackward
)

func (m MoveDirection) String() string {
	if m == MoveBackward {
		return "backward"
	}
	return "forward"
}

// Position はグリッド上のマスです。X が行、Y が列を表します。
type Position struct {
	X, Y int
}

// Moved は dir 方向に1マス進んだ位置を返します。
func (p Position) Moved(dir Direction) Position {
	d := dir.Delta()
	return Position{X: p.X + d.X, Y: p.Y + d.Y}
}

// InBounds は dim×dim のグリッド内にあるかを返します。
func (p Position) InBounds(dim int) bool {
	return p.X >= 0 && p.X < dim && p.Y >= 0 && p.Y < dim
}

// Manhattan はマンハッタン距離を返します。
func (p Position) Manhattan(o Position) int {
	return abs(p.X-o.X) + abs(p.Y-o.Y)
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Action は探索で扱う1手（前進・後退・左回転・右回転）です。
type Action uint8

const (
	ActionForward Action = iota
	ActionBackward
	ActionRotateLeft
	ActionRotateRight
)

// AllActions は探索の展開順です。最短経路が複数ある場合はこの順序で最初に見つかったものが選ばれます。
var AllActions = [4]Action{ActionForward, ActionBackward, ActionRotateLeft, ActionRotateRight}

// Reversed は逆操作を返します。経路復元で使用します。
func (a Action) Reversed() Action {
	switch a {
	case ActionForward:
		return ActionBackward
	case ActionBackward:
		return ActionForward
	case ActionRotateLeft:
		return ActionRotateRight
	default:
		return ActionRotateLeft
	}
}

// IsMove は移動系の操作かを返します。
func (a Action) IsMove() bool {
	return a == ActionForward || a == ActionBackward
}

// Response はこの操作をサーバーへ送るレスポンスに変換します。
// 回転は車体のみで、砲塔は回さない。
func (a Action) Response() Response {
	switch a {
	case ActionForward:
		return Move{Direction: MoveForward}
	case ActionBackward:
		return Move{Direction: MoveBackward}
	case ActionRotateLeft:
		return Rotate{Tank: RotationLeft, Turret: RotationNone}
	default:
		return Rotate{Tank: RotationRight, Turret: RotationNone}
	}
}

func (a Action) String() string {
	switch a {
	case ActionForward:
		return "forward"
	case ActionBackward:
		return "backward"
	case ActionRotateLeft:
		return "rotate-left"
	case ActionRotateRight:
		return "rotate-right"
	default:
		return fmt.Sprintf("action(%d)", uint8(a))
	}
}

// OrientedPosition は (マス, 向き) の組で、経路探索の状態単位です。
type OrientedPosition struct {
	Pos Position
	Dir Direction
}

// Apply は操作を適用した後の状態を返します。
func (o OrientedPosition) Apply(a Action) OrientedPosition {
	switch a {
	case ActionForward:
		o.Pos = o.Pos.Moved(o.Dir)
	case ActionBackward:
		o.Pos = o.Pos.Moved(o.Dir.Opposite())
	case ActionRotateLeft:
		o.Dir = o.Dir.Rotated(RotationLeft)
	case ActionRotateRight:
		o.Dir = o.Dir.Rotated(RotationRight)
	}
	return o
}

// ActionToward は moveDir 方向へ進むために必要な次の操作を返します。
func (o OrientedPosition) ActionToward(moveDir Direction) Action {
	switch moveDir {
	case o.Dir:
		return ActionForward
	case o.Dir.Opposite():
		return ActionBackward
	case o.Dir.Rotated(RotationRight):
		return ActionRotateRight
	default:
		return ActionRotateLeft
	}
}

func (o OrientedPosition) String() string {
	return fmt.Sprintf("%s/%s", o.Pos, o.Dir)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
