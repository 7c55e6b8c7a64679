package domain

import "context"

//go:generate go tool mockgen -destination=./mocks/dispatcher_mock.go -package=mocks . Dispatcher,Sender

// Dispatcher は受信したパケットをボット側へ配送します。
type Dispatcher interface {
	// Dispatch は受信データ1件を処理します。
	Dispatch(ctx context.Context, data []byte) error
}

// Sender はサーバーへの送信口です。
type Sender interface {
	Send(ctx context.Context, data []byte) error
}
