package results

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"tankbot/bot/domain"
)

func TestFromGameEnd(t *testing.T) {
	end := &domain.GameEnd{Players: []domain.EndPlayer{
		{ID: "a", Score: 10, Kills: 1},
		{ID: "me", Nickname: "bot", Score: 30, Kills: 4},
		{ID: "b", Score: 30, Kills: 2},
		{ID: "c", Score: 5},
	}}

	r, ok := FromGameEnd(end, "me")
	if !ok {
		t.Fatal("own result not found")
	}
	if r.Place != 1 || r.Players != 4 || r.Kills != 4 || r.Nickname != "bot" {
		t.Errorf("result = %+v, want place 1 of 4 with 4 kills", r)
	}

	r, _ = FromGameEnd(end, "c")
	if r.Place != 4 {
		t.Errorf("Place of c = %d, want 4", r.Place)
	}

	if _, ok := FromGameEnd(end, "nobody"); ok {
		t.Error("unknown player should not be found")
	}
}

func TestOpen_Routing(t *testing.T) {
	rec, err := Open(context.Background(), "")
	if err != nil {
		t.Fatalf("Open(\"\") failed: %v", err)
	}
	if _, ok := rec.(LogRecorder); !ok {
		t.Errorf("Open(\"\") = %T, want LogRecorder", rec)
	}

	if _, err := Open(context.Background(), "mysql://localhost/x"); !errors.Is(err, ErrUnsupportedDSN) {
		t.Errorf("Open(mysql) = %v, want ErrUnsupportedDSN", err)
	}
}

func TestSQLiteRecorder(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "results.db")

	rec, err := Open(ctx, "sqlite:"+path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer rec.Close()

	sqlite, ok := rec.(*SQLiteRecorder)
	if !ok {
		t.Fatalf("Open = %T, want *SQLiteRecorder", rec)
	}
	for i := 0; i < 2; i++ {
		err := rec.Record(ctx, Result{
			SessionID: "s",
			MatchName: "m",
			PlayerID:  "me",
			Score:     i,
			Place:     1,
			Players:   2,
			EndedAt:   time.Now(),
		})
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	n, err := sqlite.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
}
