package client

type endpointEventKind uint8

const (
	// unknown
	unknown endpointEventKind = iota

	// I/O
	evReadError  // 受信に失敗した
	evWriteError // 送信に失敗した

	// ctrl
	evClose // 呼び出し側からの終了
)

type endpointEvent struct {
	kind endpointEventKind
	err  error
}
