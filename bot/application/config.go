package application

import "math/rand/v2"

// Config はボットの戦術パラメータです。
type Config struct {
	Horizon           int    `yaml:"horizon"`           // 見えないマスの記憶を保持するtick数
	BulletProjection  int    `yaml:"bulletProjection"`  // 期限切れ直前の弾を先送りするマス数
	ItemRange         int    `yaml:"itemRange"`         // アイテムを取りに行く最大ETA（未満）
	DoubleBulletRange int    `yaml:"doubleBulletRange"` // ダブル弾アイテムの最大ETA（未満）
	StallChance       int    `yaml:"stallChance"`       // 停滞時に 1/StallChance で揺さぶる
	Seed              uint64 `yaml:"seed"`              // 0 ならロビーのシードを使う
}

// DefaultConfig は既定値の Config を返します。
func DefaultConfig() Config {
	return Config{
		Horizon:           5,
		BulletProjection:  2,
		ItemRange:         10,
		DoubleBulletRange: 4,
		StallChance:       4,
	}
}

// NewRand は seed から決定的な乱数生成器を作ります。
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
