package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"tankbot/bot/domain"
)

// ErrMissingAmmo は自分の戦車に弾数が含まれていないことを表します。
// 上流のプロトコル不整合なので回復せずにpanicします。
var ErrMissingAmmo = errors.New("controlled tank has no bullet count")

// Self はこのtickの自分の戦車の状態です。
type Self struct {
	ID     string
	Pos    domain.OrientedPosition
	Turret domain.Direction
	Ammo   int
	Held   domain.SecondaryItem
}

// Armed は撃ち返す手段（弾・レーザー・ダブル弾）を持っているかを返します。
func (s Self) Armed() bool {
	return s.Ammo > 0 || s.Held == domain.SecondaryLaser || s.Held == domain.SecondaryDoubleBullet
}

// Decision は1tick分の判断結果です。Strategy は決定した戦略名です。
type Decision struct {
	Response domain.Response
	Strategy string
}

// Bot は1マッチ分の状態を持つ意思決定器です。
// 単一のゴルーチンから呼び出されることを前提とし、ロックは持ちません。
type Bot struct {
	cfg      Config
	rng      *rand.Rand
	injected bool

	id  string
	dim int

	static    *StaticMap
	knowledge *KnowledgeMap
	searcher  *Searcher

	last    domain.OrientedPosition
	hasLast bool

	strategies []strategy
}

// New は Bot を生成します。rng が nil の場合は Init で Config.Seed（0ならロビーのシード）から作ります。
func New(cfg Config, rng *rand.Rand) *Bot {
	b := &Bot{
		cfg:      cfg,
		rng:      rng,
		injected: rng != nil,
	}
	b.strategies = b.cascade()
	return b
}

// Init はマッチごとの状態を初期化します。
func (b *Bot) Init(lobby *domain.LobbyData) {
	b.id = lobby.PlayerID
	b.dim = lobby.ServerSettings.GridDimension
	b.static = nil
	b.knowledge = nil
	b.searcher = nil
	b.last = domain.OrientedPosition{}
	b.hasLast = false

	if !b.injected {
		seed := b.cfg.Seed
		if seed == 0 {
			seed = uint64(lobby.ServerSettings.Seed)
		}
		b.rng = NewRand(seed)
	}
}

// ID は操作している戦車の所有者IDです。
func (b *Bot) ID() string {
	return b.id
}

// NextMove はこのtickの行動を返します。
func (b *Bot) NextMove(ctx context.Context, state *domain.GameState) domain.Response {
	return b.Decide(ctx, state).Response
}

// Decide はスナップショットを取り込み、戦略を優先順に評価して最初に決まった行動を返します。
// 必ず何らかの行動を返します。
func (b *Bot) Decide(ctx context.Context, state *domain.GameState) Decision {
	if b.id == "" {
		b.id = state.PlayerID
	}
	if b.rng == nil {
		b.rng = NewRand(b.cfg.Seed)
	}
	if b.static == nil {
		b.static = NewStaticMap(state.Map)
		b.knowledge = NewKnowledgeMap(b.static.Dim(), b.cfg)
		b.searcher = NewSearcher(b.static, b.knowledge)
		if b.dim != 0 && b.dim != b.static.Dim() {
			slog.WarnContext(ctx, "grid dimension differs from lobby", "lobby", b.dim, "snapshot", b.static.Dim())
		}
	}

	self, ok := b.locate(state)
	b.knowledge.Update(state, b.static)
	if !ok {
		// 撃破されて盤面にいない
		b.hasLast = false
		return Decision{Response: domain.Wait{}, Strategy: "no-tank"}
	}

	t := &turn{
		ctx:     ctx,
		state:   state,
		self:    self,
		last:    b.last,
		hasLast: b.hasLast,
	}
	b.last, b.hasLast = self.Pos, true

	for _, s := range b.strategies {
		if r, ok := s.run(t); ok {
			b.logDecision(ctx, state, s.name, r)
			return Decision{Response: r, Strategy: s.name}
		}
	}
	r := b.drunkWalk(t)
	b.logDecision(ctx, state, "drunk-walk", r)
	return Decision{Response: r, Strategy: "drunk-walk"}
}

func (b *Bot) logDecision(ctx context.Context, state *domain.GameState, strategy string, r domain.Response) {
	if !slog.Default().Enabled(ctx, slog.LevelDebug) {
		return
	}
	slog.DebugContext(ctx, "decision",
		"tick", state.Tick,
		"strategy", strategy,
		"response", r.String(),
	)
	slog.DebugContext(ctx, "map\n"+Render(state, b.id))
}

// locate は自分の戦車を探して Self を作ります。
func (b *Bot) locate(state *domain.GameState) (Self, bool) {
	tank, pos, ok := state.Map.FindTank(b.id)
	if !ok {
		return Self{}, false
	}
	if tank.Turret.BulletCount == nil {
		panic(fmt.Errorf("%w: tick %d", ErrMissingAmmo, state.Tick))
	}
	return Self{
		ID:     b.id,
		Pos:    domain.OrientedPosition{Pos: pos, Dir: tank.Direction},
		Turret: tank.Turret.Direction,
		Ammo:   *tank.Turret.BulletCount,
		Held:   tank.Held(),
	}, true
}

func (b *Bot) OnGameStarting(ctx context.Context) {
	slog.InfoContext(ctx, "game starting", "playerID", b.id)
}

// OnGameEnded はマッチ終了時に呼ばれます。次のマッチまで記憶を持ち越しません。
func (b *Bot) OnGameEnded(ctx context.Context, end *domain.GameEnd) {
	for _, p := range end.Players {
		if p.ID == b.id {
			slog.InfoContext(ctx, "game ended", "playerID", b.id, "score", p.Score, "kills", p.Kills)
		}
	}
	b.static = nil
	b.knowledge = nil
	b.searcher = nil
	b.hasLast = false
}

func (b *Bot) OnWarning(ctx context.Context, kind domain.WarningType, message string) {
	slog.WarnContext(ctx, "server warning", "type", kind.String(), "message", message)
}
