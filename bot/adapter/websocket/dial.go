package adapterwebsocket

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/coder/websocket"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"tankbot/bot/domain"
)

// defaultReadLimit は受信1件の最大サイズです。ゲーム状態は盤面全体を含みます。
const defaultReadLimit = 4 << 20

// DialOptions はゲームサーバーへの接続先です。
type DialOptions struct {
	Host       string
	Port       string
	Path       string
	Nickname   string
	JoinCode   string
	QuickJoin  bool
	PlayerType string
	ReadLimit  int64
}

// URL は接続先のURLを組み立てます。
func (o DialOptions) URL() string {
	q := url.Values{}
	q.Set("nickname", o.Nickname)
	if o.JoinCode != "" {
		q.Set("joinCode", o.JoinCode)
	}
	if o.QuickJoin {
		q.Set("quickJoin", "true")
	}
	if o.PlayerType != "" {
		q.Set("playerType", o.PlayerType)
	}
	path := o.Path
	if path == "" {
		path = "/"
	}
	u := url.URL{
		Scheme:   "ws",
		Host:     net.JoinHostPort(o.Host, o.Port),
		Path:     path,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Dial はサーバーへ接続して Transport を返します。
// ハンドシェイクのHTTPリクエストはトレースされます。
func Dial(ctx context.Context, opts DialOptions) (domain.Transport, error) {
	client := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	conn, _, err := websocket.Dial(ctx, opts.URL(), &websocket.DialOptions{HTTPClient: client})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", opts.Host, err)
	}
	limit := opts.ReadLimit
	if limit <= 0 {
		limit = defaultReadLimit
	}
	conn.SetReadLimit(limit)
	return newTextTransport(conn), nil
}
