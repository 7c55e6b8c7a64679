package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"tankbot/bot/domain"
)

var (
	// ErrInitializationFailed はエンドポイントの初期化に失敗した場合に返されるエラーです。
	ErrInitializationFailed = errors.New("failed to initialize endpoint")
	// ErrBackpressure は書き込みチャネルが満杯の場合に返されるエラーです。
	ErrBackpressure = errors.New("write channel is full, apply backpressure")
	// ErrEndpointClosed はエンドポイントが既に閉じている場合に返されるエラーです。
	ErrEndpointClosed = errors.New("endpoint closed")
	// ErrIdle はサーバーからの受信が途絶えた場合に Run が返すエラーです。
	ErrIdle = errors.New("connection idle")
)

// Options はエンドポイントの動作設定です。
type Options struct {
	IdleTimeout   time.Duration // 0 以下なら無効
	CheckInterval time.Duration
	WriteBuffer   int
}

// Endpoint はサーバーとの1接続の読み書きを管理します。
// 受信は Dispatcher へ渡し、送信は Send で書き込みチャネルへ積みます。
type Endpoint struct {
	ctx    context.Context
	cancel context.CancelCauseFunc

	session    *domain.Session
	connection *domain.Connection
	opts       Options

	ctrlCh  chan endpointEvent // 制御用チャネル
	writeCh chan []byte        // 書き込み用チャネル

	// lifecycle
	closed atomic.Bool
}

func NewEndpoint(session *domain.Session, connection *domain.Connection, opts Options) (*Endpoint, error) {
	if session == nil {
		return nil, ErrInitializationFailed
	}
	if connection == nil {
		return nil, ErrInitializationFailed
	}
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = time.Second
	}
	if opts.WriteBuffer <= 0 {
		opts.WriteBuffer = 64
	}
	ctx, cancel := context.WithCancelCause(context.Background())
	return &Endpoint{
		ctx:        ctx,
		cancel:     cancel,
		session:    session,
		connection: connection,
		opts:       opts,
		ctrlCh:     make(chan endpointEvent, 16),
		writeCh:    make(chan []byte, opts.WriteBuffer),
	}, nil
}

// Run は接続が閉じるまで読み書きを続けます。
// parent がキャンセルされた場合や Close された場合は nil を、通信の失敗や無通信の場合はその原因を返します。
func (e *Endpoint) Run(parent context.Context, dispatcher domain.Dispatcher) error {
	if dispatcher == nil {
		return ErrInitializationFailed
	}
	logger := slog.With("sessionID", e.session.ID())

	eg, ctx := errgroup.WithContext(e.ctx)
	eg.Go(func() error {
		e.ownerLoop(parent, ctx)
		return nil
	})
	eg.Go(func() error {
		e.readLoop(ctx, dispatcher, logger)
		return nil
	})
	eg.Go(func() error {
		e.writeLoop(ctx)
		return nil
	})
	_ = eg.Wait()

	cause := context.Cause(e.ctx)
	logger.InfoContext(parent, "endpoint closed", "reason", e.session.CloseReason(), "cause", cause)
	if errors.Is(cause, ErrEndpointClosed) {
		return nil
	}
	return cause
}

// Send はデータを書き込みチャネルに積みます。ブロックしません。
func (e *Endpoint) Send(_ context.Context, data []byte) error {
	if e.closed.Load() {
		return ErrEndpointClosed
	}
	select {
	case e.writeCh <- data:
		return nil
	default:
		return ErrBackpressure
	}
}

func (e *Endpoint) Close(ctx context.Context) {
	e.sendCtrlEvent(ctx, endpointEvent{kind: evClose})
}

func (e *Endpoint) ForceClose() {
	e.close(domain.IdleShutdown, nil)
}

// ownerLoop は接続の状態を監視し、終了の判断を一手に引き受けます。
func (e *Endpoint) ownerLoop(parent, ctx context.Context) {
	ticker := time.NewTicker(e.opts.CheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-parent.Done():
			e.close(domain.IdleShutdown, nil)
			return
		case ev := <-e.ctrlCh:
			e.handleControlEvent(ctx, ev)
		case <-ticker.C:
			idle, reason := e.session.IsIdle(e.opts.IdleTimeout)
			if idle {
				e.close(reason, fmt.Errorf("%w: %s for %v", ErrIdle, reason, e.session.Since().Round(time.Millisecond)))
			}
		}
	}
}

func (e *Endpoint) readLoop(ctx context.Context, dispatcher domain.Dispatcher, logger *slog.Logger) {
	for {
		data, err := e.connection.Read(ctx)
		if err != nil {
			if ctx.Err() == nil {
				e.sendCtrlEvent(ctx, endpointEvent{kind: evReadError, err: err})
			}
			return
		}
		e.session.TouchRead()
		if err := dispatcher.Dispatch(ctx, data); err != nil {
			logger.WarnContext(ctx, "failed to dispatch packet", "err", err)
		}
	}
}

func (e *Endpoint) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-e.writeCh:
			if err := e.connection.Write(ctx, data); err != nil {
				e.sendCtrlEvent(ctx, endpointEvent{kind: evWriteError, err: err})
				return
			}
			e.session.TouchWrite()
		}
	}
}

func (e *Endpoint) close(reason domain.IdleReason, cause error) {
	if !e.closed.CompareAndSwap(false, true) {
		return
	}
	if cause == nil {
		cause = ErrEndpointClosed
	}
	e.session.Close(reason)
	e.cancel(cause)
	e.connection.Close(reason.String())
}

// handleControlEvent は制御チャネルからのイベントを処理し接続の状態を更新する唯一の関数です。
func (e *Endpoint) handleControlEvent(ctx context.Context, ev endpointEvent) {
	switch ev.kind {
	case evClose:
		e.close(domain.IdleShutdown, nil)
	case evReadError:
		e.close(domain.IdleFailure, fmt.Errorf("read: %w", ev.err))
	case evWriteError:
		e.close(domain.IdleFailure, fmt.Errorf("write: %w", ev.err))
	default:
		slog.WarnContext(ctx, "unknown endpoint event kind", "kind", ev.kind)
	}
}

func (e *Endpoint) sendCtrlEvent(ctx context.Context, ev endpointEvent) {
	select {
	case e.ctrlCh <- ev:
	case <-ctx.Done():
	}
}
