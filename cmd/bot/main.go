package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"

	adapterwebsocket "tankbot/bot/adapter/websocket"
	"tankbot/bot/application"
	"tankbot/bot/client"
	"tankbot/bot/domain"
	"tankbot/bot/handler"
	"tankbot/config"
	"tankbot/results"
	"tankbot/telemetry"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var extra []slog.Handler
	if cfg.OTLP {
		providers, err := telemetry.Setup(ctx, "tankbot")
		if err != nil {
			fmt.Fprintln(os.Stderr, "telemetry:", err)
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := providers.Shutdown(shutdownCtx); err != nil {
				fmt.Fprintln(os.Stderr, "telemetry shutdown:", err)
			}
		}()
		extra = append(extra, providers.Handler())
	}
	slog.SetDefault(telemetry.NewLogger(os.Stdout, telemetry.ParseLevel(cfg.LogLevel), extra...))

	recorder, err := results.Open(ctx, cfg.ResultsDSN)
	if err != nil {
		slog.Error("failed to open results sink", "err", err)
		os.Exit(1)
	}
	defer recorder.Close()

	// 戦術の状態はロビーごとに Init で作り直すので、ボット自体は再接続をまたいで使い回す
	bot := application.New(cfg.Tuning, nil)

	if err := run(ctx, cfg, bot, recorder); err != nil && ctx.Err() == nil {
		slog.Error("bot stopped", "err", err)
		os.Exit(1)
	}
	slog.Info("bot stopped")
}

// run はセッションが終わるたびに接続し直します。接続できない間は指数バックオフで再試行します。
func run(ctx context.Context, cfg config.Config, bot *application.Bot, recorder results.Recorder) error {
	for ctx.Err() == nil {
		_, err := backoff.Retry(ctx, func() (struct{}, error) {
			connected, err := runSession(ctx, cfg, bot, recorder)
			if ctx.Err() != nil {
				return struct{}{}, backoff.Permanent(ctx.Err())
			}
			if !connected {
				return struct{}{}, err
			}
			if err != nil {
				slog.WarnContext(ctx, "session ended, reconnecting", "err", err)
			}
			return struct{}{}, nil
		},
			backoff.WithBackOff(backoff.NewExponentialBackOff()),
			backoff.WithMaxElapsedTime(cfg.ReconnectMaxElapsed),
			backoff.WithNotify(func(err error, next time.Duration) {
				slog.WarnContext(ctx, "failed to connect", "err", err, "retryIn", next)
			}),
		)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
	return nil
}

// runSession は1接続分のセッションを実行します。接続できたかどうかも返します。
func runSession(ctx context.Context, cfg config.Config, bot *application.Bot, recorder results.Recorder) (bool, error) {
	transport, err := adapterwebsocket.Dial(ctx, adapterwebsocket.DialOptions{
		Host:       cfg.Host,
		Port:       cfg.Port,
		Path:       cfg.Path,
		Nickname:   cfg.Nickname,
		JoinCode:   cfg.JoinCode,
		QuickJoin:  cfg.QuickJoin,
		PlayerType: cfg.PlayerType,
	})
	if err != nil {
		return false, err
	}

	session := domain.NewSession()
	connection := domain.NewConnection(session.ID(), transport)
	logger := slog.With("session", session.ID())

	endpoint, err := client.NewEndpoint(session, connection, client.Options{IdleTimeout: cfg.IdleTimeout})
	if err != nil {
		connection.Close(domain.IdleFailure.String())
		return true, err
	}

	h, err := handler.New(handler.Options{
		Bot:            bot,
		Sender:         endpoint,
		Liveness:       session,
		Recorder:       recorder,
		SessionID:      session.ID(),
		DeadlineMargin: cfg.DeadlineMargin,
	})
	if err != nil {
		endpoint.ForceClose()
		return true, err
	}
	if err := h.Start(ctx); err != nil {
		endpoint.ForceClose()
		return true, err
	}
	defer func() {
		if err := h.Stop(shutdownTimeout); err != nil {
			logger.Warn("failed to stop handler", "err", err)
		}
	}()

	logger.InfoContext(ctx, "connected", "host", cfg.Host, "port", cfg.Port, "nickname", cfg.Nickname)
	return true, endpoint.Run(ctx, h)
}
