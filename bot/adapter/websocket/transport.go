package adapterwebsocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/coder/websocket"

	"tankbot/bot/domain"
)

// ErrBinaryMessage はゲームサーバーからバイナリフレームが届いた場合のエラーです。
var ErrBinaryMessage = errors.New("unexpected binary frame")

// textTransport はJSONのテキストフレームだけをやり取りする Transport です。
type textTransport struct {
	conn *websocket.Conn
}

var _ domain.Transport = (*textTransport)(nil)

func newTextTransport(conn *websocket.Conn) *textTransport {
	return &textTransport{conn: conn}
}

func (t *textTransport) Read(ctx context.Context) ([]byte, error) {
	typ, data, err := t.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	if typ != websocket.MessageText {
		return nil, fmt.Errorf("%w: %d bytes", ErrBinaryMessage, len(data))
	}
	return data, nil
}

func (t *textTransport) Write(ctx context.Context, data []byte) error {
	return t.conn.Write(ctx, websocket.MessageText, data)
}

// Close は接続を閉じます。相手のクローズフレームで終わった場合はエラーにしません。
func (t *textTransport) Close(code int32, reason string) error {
	err := t.conn.Close(websocket.StatusCode(code), reason)
	if err != nil && websocket.CloseStatus(err) != -1 {
		return nil
	}
	return err
}
