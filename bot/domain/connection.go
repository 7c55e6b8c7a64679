package domain

import "context"

// StatusNormalClosure は正常終了時のクローズコードです。
const StatusNormalClosure int32 = 1000

// Connection はサーバーとの物理的な接続を表します。
type Connection struct {
	SessionID string
	transport Transport
}

func NewConnection(sessionID string, transport Transport) *Connection {
	return &Connection{
		SessionID: sessionID,
		transport: transport,
	}
}

func (c *Connection) Write(ctx context.Context, data []byte) error {
	return c.transport.Write(ctx, data)
}

func (c *Connection) Read(ctx context.Context) ([]byte, error) {
	return c.transport.Read(ctx)
}

func (c *Connection) Close(reason string) {
	_ = c.transport.Close(StatusNormalClosure, reason)
}
