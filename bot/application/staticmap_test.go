package application

import (
	"testing"

	"tankbot/bot/domain"
)

func TestStaticMap(t *testing.T) {
	state := newState(6, 1)
	borderWalls(state)
	put(state, 2, 2, domain.Wall{})
	addZone(state, 3, 3, 2, 2, 1)

	m := NewStaticMap(state.Map)

	if m.Dim() != 6 {
		t.Fatalf("Dim = %d, want 6", m.Dim())
	}
	if !m.IsWall(pos(2, 2)) || m.IsWall(pos(1, 1)) {
		t.Error("IsWall mismatch at (2,2) or (1,1)")
	}
	if !m.IsWall(pos(-1, 3)) {
		t.Error("out of bounds should count as wall")
	}
	if got := m.ZoneAt(pos(4, 4)); got != 'B' {
		t.Errorf("ZoneAt(4,4) = %c, want B", got)
	}
	if m.InZone(pos(1, 1)) {
		t.Error("(1,1) should not be in a zone")
	}
	// (1,2) は上が外周の壁、下が (2,2) の壁
	if !m.IsBetweenWalls(pos(1, 2)) {
		t.Error("(1,2) should be between walls")
	}
	if m.IsBetweenWalls(pos(3, 3)) {
		t.Error("(3,3) should not be between walls")
	}
}
