package application

import (
	"strings"
	"testing"

	"tankbot/bot/domain"
)

func TestRender(t *testing.T) {
	state := newState(3, 1)
	put(state, 0, 0, domain.Wall{})
	put(state, 0, 1, ownTank(domain.DirectionRight, domain.DirectionRight, 1, domain.SecondaryNone))
	put(state, 0, 2, enemyTank(domain.DirectionDown, domain.DirectionDown))
	put(state, 1, 0, domain.Bullet{Direction: domain.DirectionLeft, Type: domain.BulletDouble})
	put(state, 1, 1, domain.Item{Type: domain.ItemMine})
	put(state, 1, 2, domain.Laser{Orientation: domain.LaserVertical})
	addZone(state, 2, 0, 1, 1, 2)
	state.Map.Tiles[2][2].Visible = false

	got := Render(state, ownID)
	want := strings.Join([]string{
		"##@>Tv",
		"<<M | ",
		"C .   ",
	}, "\n")
	if got != want {
		t.Errorf("Render =\n%s\nwant\n%s", got, want)
	}
}
