package application

import (
	"strings"

	"tankbot/bot/domain"
)

var headingGlyphs = [4]byte{'^', '>', 'v', '<'}

// Render はスナップショットを2文字幅のテキストで描画します。
// 壁は '#'、自分は '@'、敵は 'T' に向きの記号を添えます。霧のマスは空白です。
func Render(state *domain.GameState, ownID string) string {
	var sb strings.Builder
	for x, row := range state.Map.Tiles {
		if x > 0 {
			sb.WriteByte('\n')
		}
		for _, tile := range row {
			sb.WriteString(glyph(tile, ownID))
		}
	}
	return sb.String()
}

func glyph(tile domain.Tile, ownID string) string {
	if len(tile.Objects) > 0 {
		switch obj := tile.Objects[0].(type) {
		case domain.Wall:
			return "##"
		case domain.Tank:
			mark := byte('T')
			if obj.OwnerID == ownID {
				mark = '@'
			}
			return string([]byte{mark, headingGlyphs[obj.Direction%4]})
		case domain.Item:
			switch obj.Type {
			case domain.ItemRadar:
				return "R "
			case domain.ItemDoubleBullet:
				return "D "
			case domain.ItemMine:
				return "M "
			default:
				return "L "
			}
		case domain.Mine:
			return "X "
		case domain.Laser:
			if obj.Orientation == domain.LaserHorizontal {
				return "- "
			}
			return "| "
		case domain.Bullet:
			h := headingGlyphs[obj.Direction%4]
			if obj.Type == domain.BulletDouble {
				return string([]byte{h, h})
			}
			return string([]byte{h, ' '})
		}
	}
	switch {
	case tile.Zone != domain.NoZone && tile.Zone != 0:
		return string([]byte{tile.Zone, ' '})
	case tile.Visible:
		return ". "
	default:
		return "  "
	}
}
