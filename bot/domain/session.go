package domain

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// activity はセッションで記録する通信の種類です。
type activity uint8

const (
	activityRead activity = iota
	activityWrite
	activityPing
	activityCount
)

// idleReasons は activity ごとの IdleReason です。
var idleReasons = [activityCount]IdleReason{
	activityRead:  IdleRead,
	activityWrite: IdleWrite,
	activityPing:  IdlePing,
}

// Session はサーバーとの1接続分の論理的な状態です。
// ID はログとトレースの相関に使うクライアント側の識別子で、サーバーのプレイヤーIDとは別物です。
type Session struct {
	id  string
	now func() time.Time

	last [activityCount]atomic.Int64 // UnixNano

	closed      atomic.Bool
	closeReason atomic.Uint32
}

func NewSession() *Session {
	return newSessionWithClock(time.Now)
}

func newSessionWithClock(now func() time.Time) *Session {
	s := &Session{id: uuid.NewString(), now: now}
	for a := range activityCount {
		s.touch(a)
	}
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) touch(a activity) {
	s.last[a].Store(s.now().UnixNano())
}

func (s *Session) TouchRead()  { s.touch(activityRead) }
func (s *Session) TouchWrite() { s.touch(activityWrite) }

// TouchPing はサーバーからpingを受信したことを記録します。
func (s *Session) TouchPing() { s.touch(activityPing) }

// Since は最後の受信からの経過時間です。
func (s *Session) Since() time.Duration {
	return s.idleFor(activityRead)
}

func (s *Session) idleFor(a activity) time.Duration {
	return s.now().Sub(time.Unix(0, s.last[a].Load()))
}

// Close はセッションを閉じた理由を一度だけ記録します。
func (s *Session) Close(reason IdleReason) bool {
	if s.closed.CompareAndSwap(false, true) {
		s.closeReason.Store(uint32(reason))
		return true
	}
	return false
}

func (s *Session) CloseReason() IdleReason {
	return IdleReason(s.closeReason.Load())
}

// IsIdle はサーバーからの受信が timeout を超えて途絶えているかを返します。
// 書き込みとpingの停滞は理由に含めますが判定には使いません。
func (s *Session) IsIdle(timeout time.Duration) (bool, IdleReason) {
	if timeout <= 0 {
		return false, IdleDisabled
	}
	var reason IdleReason
	for a := range activityCount {
		if s.idleFor(a) > timeout {
			reason |= idleReasons[a]
		}
	}
	return reason.Has(IdleRead), reason
}
