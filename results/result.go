package results

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"tankbot/bot/domain"
)

// ErrUnsupportedDSN は記録先のスキームに対応していない場合に返されるエラーです。
var ErrUnsupportedDSN = errors.New("unsupported results dsn")

// Result は1マッチ分の自分の成績です。
type Result struct {
	SessionID string
	MatchName string
	PlayerID  string
	Nickname  string
	Score     int
	Kills     int
	Place     int // 1始まり。同点は同順位
	Players   int
	EndedAt   time.Time
}

// Recorder はマッチ結果の記録先です。ボットは記録を読み返しません。
type Recorder interface {
	Record(ctx context.Context, r Result) error
	Close() error
}

// FromGameEnd はゲーム終了通知から playerID の成績を取り出します。
func FromGameEnd(end *domain.GameEnd, playerID string) (Result, bool) {
	players := append([]domain.EndPlayer(nil), end.Players...)
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Score > players[j].Score
	})
	for i, p := range players {
		if p.ID != playerID {
			continue
		}
		place := i + 1
		for place > 1 && players[place-2].Score == p.Score {
			place--
		}
		return Result{
			PlayerID: p.ID,
			Nickname: p.Nickname,
			Score:    p.Score,
			Kills:    p.Kills,
			Place:    place,
			Players:  len(players),
		}, true
	}
	return Result{}, false
}

// Open は dsn のスキームに応じた Recorder を開きます。
// postgres:// と postgresql:// は PostgreSQL、sqlite: かパスは SQLite、空ならログ出力のみです。
func Open(ctx context.Context, dsn string) (Recorder, error) {
	switch {
	case dsn == "":
		return LogRecorder{}, nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return OpenPostgres(ctx, dsn)
	case strings.HasPrefix(dsn, "sqlite:"):
		return OpenSQLite(ctx, strings.TrimPrefix(dsn, "sqlite:"))
	case !strings.Contains(dsn, "://"):
		return OpenSQLite(ctx, dsn)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDSN, dsn)
	}
}

// LogRecorder は結果をログに出すだけの Recorder です。
type LogRecorder struct{}

func (LogRecorder) Record(ctx context.Context, r Result) error {
	slog.InfoContext(ctx, "match result",
		"match", r.MatchName,
		"playerID", r.PlayerID,
		"score", r.Score,
		"kills", r.Kills,
		"place", r.Place,
		"players", r.Players,
	)
	return nil
}

func (LogRecorder) Close() error {
	return nil
}
