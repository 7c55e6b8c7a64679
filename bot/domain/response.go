package domain

import "fmt"

// Response はボットが1tickに返す行動です。
// 実装は Rotate, Move, AbilityUse, Wait のみです。
type Response interface {
	isResponse()
	String() string
}

// Rotate は車体と砲塔の回転です。どちらか一方を RotationNone にできます。
type Rotate struct {
	Tank   RotationDirection
	Turret RotationDirection
}

// Move は前進または後退です。
type Move struct {
	Direction MoveDirection
}

// AbilityType は使用する能力です。
type AbilityType uint8

const (
	AbilityFireBullet AbilityType = iota
	AbilityUseLaser
	AbilityFireDoubleBullet
	AbilityUseRadar
	AbilityDropMine
)

func (a AbilityType) String() string {
	switch a {
	case AbilityFireBullet:
		return "fire"
	case AbilityUseLaser:
		return "fire-laser"
	case AbilityFireDoubleBullet:
		return "fire-double"
	case AbilityUseRadar:
		return "use-radar"
	case AbilityDropMine:
		return "drop-mine"
	default:
		return fmt.Sprintf("ability(%d)", uint8(a))
	}
}

// AbilityUse は射撃・レーダー・地雷設置などの能力使用です。
type AbilityUse struct {
	Ability AbilityType
}

// Wait は何もしないことを表します。
type Wait struct{}

func (Rotate) isResponse()     {}
func (Move) isResponse()       {}
func (AbilityUse) isResponse() {}
func (Wait) isResponse()       {}

func (r Rotate) String() string {
	return fmt.Sprintf("rotate(tank=%s, turret=%s)", r.Tank, r.Turret)
}

func (m Move) String() string {
	return "move(" + m.Direction.String() + ")"
}

func (a AbilityUse) String() string {
	return "ability(" + a.Ability.String() + ")"
}

func (Wait) String() string {
	return "wait"
}
