package client_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"tankbot/bot/client"
	"tankbot/bot/domain"
	"tankbot/bot/domain/mocks"
)

func blockUntilDone(ctx context.Context) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// 初期化時に必須の依存が検証されることを確認
func TestNewEndpoint_RequiresDependencies(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := domain.NewSession()
	c := domain.NewConnection(s.ID(), mocks.NewMockTransport(ctrl))

	if _, err := client.NewEndpoint(nil, c, client.Options{}); !errors.Is(err, client.ErrInitializationFailed) {
		t.Errorf("nil session: err = %v, want ErrInitializationFailed", err)
	}
	if _, err := client.NewEndpoint(s, nil, client.Options{}); !errors.Is(err, client.ErrInitializationFailed) {
		t.Errorf("nil connection: err = %v, want ErrInitializationFailed", err)
	}
	if _, err := client.NewEndpoint(s, c, client.Options{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestEndpoint_DispatchesUntilReadFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr := mocks.NewMockTransport(ctrl)
	d := mocks.NewMockDispatcher(ctrl)

	gomock.InOrder(
		tr.EXPECT().Read(gomock.Any()).Return([]byte(`{"type":1}`), nil),
		tr.EXPECT().Read(gomock.Any()).Return(nil, io.EOF),
	)
	d.EXPECT().Dispatch(gomock.Any(), []byte(`{"type":1}`)).Return(nil)
	tr.EXPECT().Close(domain.StatusNormalClosure, "failure").Return(nil)

	s := domain.NewSession()
	e, _ := client.NewEndpoint(s, domain.NewConnection(s.ID(), tr), client.Options{})

	err := e.Run(context.Background(), d)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("Run = %v, want io.EOF", err)
	}
	if s.CloseReason() != domain.IdleFailure {
		t.Errorf("CloseReason = %s, want failure", s.CloseReason())
	}
}

func TestEndpoint_SendWritesAndStopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr := mocks.NewMockTransport(ctrl)
	d := mocks.NewMockDispatcher(ctrl)

	written := make(chan []byte, 1)
	tr.EXPECT().Read(gomock.Any()).DoAndReturn(blockUntilDone).AnyTimes()
	tr.EXPECT().Write(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, data []byte) error {
		written <- data
		return nil
	})
	tr.EXPECT().Close(domain.StatusNormalClosure, "shutdown").Return(nil)

	s := domain.NewSession()
	e, _ := client.NewEndpoint(s, domain.NewConnection(s.ID(), tr), client.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx, d) }()

	if err := e.Send(ctx, []byte("hello")); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	select {
	case data := <-written:
		if string(data) != "hello" {
			t.Errorf("written = %q, want hello", data)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for write")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v, want nil on shutdown", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if err := e.Send(context.Background(), []byte("late")); !errors.Is(err, client.ErrEndpointClosed) {
		t.Errorf("Send after close = %v, want ErrEndpointClosed", err)
	}
}

func TestEndpoint_ClosesWhenIdle(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr := mocks.NewMockTransport(ctrl)
	d := mocks.NewMockDispatcher(ctrl)

	tr.EXPECT().Read(gomock.Any()).DoAndReturn(blockUntilDone).AnyTimes()
	tr.EXPECT().Close(domain.StatusNormalClosure, gomock.Any()).Return(nil)

	s := domain.NewSession()
	e, _ := client.NewEndpoint(s, domain.NewConnection(s.ID(), tr), client.Options{
		IdleTimeout:   30 * time.Millisecond,
		CheckInterval: 10 * time.Millisecond,
	})

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background(), d) }()

	select {
	case err := <-done:
		if !errors.Is(err, client.ErrIdle) {
			t.Errorf("Run = %v, want ErrIdle", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("idle endpoint was not closed")
	}
	if !s.CloseReason().Has(domain.IdleRead) {
		t.Errorf("CloseReason = %s, want read idle", s.CloseReason())
	}
}

func TestEndpoint_Backpressure(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := domain.NewSession()
	e, _ := client.NewEndpoint(s, domain.NewConnection(s.ID(), mocks.NewMockTransport(ctrl)), client.Options{WriteBuffer: 1})

	if err := e.Send(context.Background(), []byte("a")); err != nil {
		t.Fatalf("first Send failed: %v", err)
	}
	if err := e.Send(context.Background(), []byte("b")); !errors.Is(err, client.ErrBackpressure) {
		t.Errorf("second Send = %v, want ErrBackpressure", err)
	}
}
