package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"tankbot/bot/application"
	"tankbot/bot/domain"
	"tankbot/internal/loop"
	"tankbot/results"
)

// ErrInitializationFailed は必須の依存が欠けている場合に返されるエラーです。
var ErrInitializationFailed = errors.New("failed to initialize packet handler")

// Decider はtickごとの判断を行うボットです。application.Bot が実装します。
type Decider interface {
	Init(lobby *domain.LobbyData)
	Decide(ctx context.Context, state *domain.GameState) application.Decision
	OnGameStarting(ctx context.Context)
	OnGameEnded(ctx context.Context, end *domain.GameEnd)
	OnWarning(ctx context.Context, kind domain.WarningType, message string)
	ID() string
}

// Liveness はサーバーからのPingを記録する先です。
type Liveness interface {
	TouchPing()
}

// Options はハンドラーの依存と設定です。Bot と Sender は必須です。
type Options struct {
	Bot       Decider
	Sender    domain.Sender
	Liveness  Liveness
	Recorder  results.Recorder
	Tracer    trace.Tracer
	SessionID string

	// DeadlineMargin はtick間隔から差し引く送信の余裕です。
	DeadlineMargin time.Duration
	QueueSize      int
}

// event は判断ワーカーへ渡す受信パケットです。
type event struct {
	packet   *domain.Packet
	received time.Time
}

// Handler は受信パケットを種別ごとに振り分け、判断を単一のワーカーで直列に実行します。
type Handler struct {
	opts   Options
	worker *loop.Loop[event]
	now    func() time.Time

	// 以下はワーカーのゴルーチンだけが触ります
	budget    time.Duration
	matchName string
}

var _ domain.Dispatcher = (*Handler)(nil)

func New(opts Options) (*Handler, error) {
	if opts.Bot == nil || opts.Sender == nil {
		return nil, ErrInitializationFailed
	}
	if opts.Recorder == nil {
		opts.Recorder = results.LogRecorder{}
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer("tankbot/bot/handler")
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1
	}

	h := &Handler{opts: opts, now: time.Now}
	worker, err := loop.New(loop.Config[event]{
		Handler:   loop.HandlerFunc[event](h.handle),
		QueueSize: opts.QueueSize,
		Logger:    slog.With("session", opts.SessionID),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInitializationFailed, err)
	}
	h.worker = worker
	return h, nil
}

func (h *Handler) Start(ctx context.Context) error {
	return h.worker.Start(ctx)
}

// Stop は積まれた判断を処理し終えるまで最大 timeout 待ちます。
func (h *Handler) Stop(timeout time.Duration) error {
	err := h.worker.DrainTimeout(timeout)
	if errors.Is(err, loop.ErrStopped) {
		return nil
	}
	return err
}

// Dispatch は受信データ1件を処理します。Ping はその場で応答し、それ以外はワーカーへ積みます。
// ゲーム状態は処理待ちのものが既にあれば破棄し、古いtickを溜めません。
func (h *Handler) Dispatch(ctx context.Context, data []byte) error {
	received := h.now()
	packet, err := domain.ParsePacket(data)
	if err != nil {
		return err
	}

	switch packet.Type {
	case domain.PacketPing:
		if h.opts.Liveness != nil {
			h.opts.Liveness.TouchPing()
		}
		return h.opts.Sender.Send(ctx, domain.EncodePongMessage())
	case domain.PacketPong:
		return nil
	case domain.PacketGameState:
		err := h.worker.TrySubmit(event{packet: packet, received: received})
		if errors.Is(err, loop.ErrQueueFull) {
			slog.WarnContext(ctx, "decision worker busy, dropping game state", "session", h.opts.SessionID)
			return nil
		}
		return err
	case domain.PacketLobbyData, domain.PacketGameStarting, domain.PacketGameEnded, domain.PacketWarning:
		return h.worker.Submit(ctx, event{packet: packet, received: received})
	default:
		slog.DebugContext(ctx, "ignoring packet", "type", packet.Type.String())
		return nil
	}
}

func (h *Handler) handle(ctx context.Context, ev event) error {
	switch ev.packet.Type {
	case domain.PacketLobbyData:
		return h.handleLobby(ctx, ev.packet.Payload)
	case domain.PacketGameStarting:
		h.opts.Bot.OnGameStarting(ctx)
		return nil
	case domain.PacketGameState:
		return h.handleGameState(ctx, ev)
	case domain.PacketGameEnded:
		return h.handleGameEnded(ctx, ev.packet.Payload)
	case domain.PacketWarning:
		kind, message, err := domain.ParseWarning(ev.packet.Payload)
		if err != nil {
			return err
		}
		h.opts.Bot.OnWarning(ctx, kind, message)
		return nil
	default:
		return nil
	}
}

func (h *Handler) handleLobby(ctx context.Context, payload json.RawMessage) error {
	lobby, err := domain.ParseLobbyData(payload)
	if err != nil {
		return err
	}
	h.opts.Bot.Init(lobby)
	h.matchName = lobby.ServerSettings.MatchName
	h.budget = tickBudget(lobby.ServerSettings.BroadcastInterval, h.opts.DeadlineMargin)

	slog.InfoContext(ctx, "joined lobby",
		"playerID", lobby.PlayerID,
		"grid", lobby.ServerSettings.GridDimension,
		"players", lobby.ServerSettings.NumberOfPlayers,
		"budget", h.budget,
	)
	return h.opts.Sender.Send(ctx, domain.EncodeReadyMessage())
}

// tickBudget は1tickの判断に使える時間です。間隔が不明なら0（無制限）です。
func tickBudget(intervalMillis int, margin time.Duration) time.Duration {
	if intervalMillis <= 0 {
		return 0
	}
	interval := time.Duration(intervalMillis) * time.Millisecond
	if margin <= 0 || margin >= interval {
		return interval
	}
	return interval - margin
}

func (h *Handler) handleGameState(ctx context.Context, ev event) error {
	state, skipped, err := domain.ParseGameState(ev.packet.Payload)
	if err != nil {
		return err
	}
	if len(skipped) > 0 {
		slog.WarnContext(ctx, "skipped unknown tile objects", "tick", state.Tick, "types", skipped)
	}

	tickCtx := ctx
	var deadline time.Time
	if h.budget > 0 {
		deadline = ev.received.Add(h.budget)
		var cancel context.CancelFunc
		tickCtx, cancel = context.WithDeadline(ctx, deadline)
		defer cancel()
	}

	tickCtx, span := h.opts.Tracer.Start(tickCtx, "tick", trace.WithAttributes(
		attribute.String("session.id", h.opts.SessionID),
		attribute.Int("game.tick", state.Tick),
	))
	defer span.End()

	decision := h.opts.Bot.Decide(tickCtx, state)
	span.SetAttributes(
		attribute.String("bot.strategy", decision.Strategy),
		attribute.String("bot.response", decision.Response.String()),
	)

	if !deadline.IsZero() && h.now().After(deadline) {
		span.SetStatus(codes.Error, "tick budget exceeded")
		slog.WarnContext(ctx, "decision too slow, skipping response",
			"tick", state.Tick,
			"elapsed", h.now().Sub(ev.received),
			"budget", h.budget,
		)
		return nil
	}

	data, err := domain.EncodeResponse(decision.Response)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if err := h.opts.Sender.Send(ctx, data); err != nil {
		span.RecordError(err)
		return fmt.Errorf("send response: %w", err)
	}
	return nil
}

func (h *Handler) handleGameEnded(ctx context.Context, payload json.RawMessage) error {
	end, err := domain.ParseGameEnd(payload)
	if err != nil {
		return err
	}

	result, ok := results.FromGameEnd(end, h.opts.Bot.ID())
	h.opts.Bot.OnGameEnded(ctx, end)
	if !ok {
		slog.WarnContext(ctx, "own player missing from game end", "playerID", h.opts.Bot.ID())
		return nil
	}
	result.SessionID = h.opts.SessionID
	result.MatchName = h.matchName
	result.EndedAt = h.now()
	if err := h.opts.Recorder.Record(ctx, result); err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	return nil
}
