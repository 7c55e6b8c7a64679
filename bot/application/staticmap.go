package application

import "tankbot/bot/domain"

// StaticMap は壁とゾーンの配置です。マッチの最初のスナップショットから一度だけ作られ、以後は変化しません。
type StaticMap struct {
	dim   int
	walls []bool
	zones []byte
}

// NewStaticMap はスナップショットから StaticMap を構築します。
func NewStaticMap(m domain.Map) *StaticMap {
	dim := m.Dim()
	s := &StaticMap{
		dim:   dim,
		walls: make([]bool, dim*dim),
		zones: make([]byte, dim*dim),
	}
	for x := 0; x < dim; x++ {
		for y := 0; y < dim; y++ {
			tile := m.At(domain.Position{X: x, Y: y})
			s.walls[x*dim+y] = tile.HasWall()
			zone := tile.Zone
			if zone == 0 {
				zone = domain.NoZone
			}
			s.zones[x*dim+y] = zone
		}
	}
	return s
}

func (s *StaticMap) Dim() int {
	return s.dim
}

// IsWall は p が壁かを返します。範囲外は壁として扱います。
func (s *StaticMap) IsWall(p domain.Position) bool {
	if !p.InBounds(s.dim) {
		return true
	}
	return s.walls[p.X*s.dim+p.Y]
}

// Passable は p が範囲内かつ壁でないかを返します。
func (s *StaticMap) Passable(p domain.Position) bool {
	return p.InBounds(s.dim) && !s.walls[p.X*s.dim+p.Y]
}

// ZoneAt は p のゾーン名を返します。ゾーン外や範囲外は NoZone です。
func (s *StaticMap) ZoneAt(p domain.Position) byte {
	if !p.InBounds(s.dim) {
		return domain.NoZone
	}
	return s.zones[p.X*s.dim+p.Y]
}

func (s *StaticMap) InZone(p domain.Position) bool {
	return s.ZoneAt(p) != domain.NoZone
}

// IsBetweenWalls は p が縦か横のどちらかの軸で両側を壁（または盤外）に挟まれているかを返します。
func (s *StaticMap) IsBetweenWalls(p domain.Position) bool {
	vertical := s.IsWall(p.Moved(domain.DirectionUp)) && s.IsWall(p.Moved(domain.DirectionDown))
	horizontal := s.IsWall(p.Moved(domain.DirectionLeft)) && s.IsWall(p.Moved(domain.DirectionRight))
	return vertical || horizontal
}
