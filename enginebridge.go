package enginebridge

// Type classifies a notification sent from the bridge to its host.
type Type string

const (
	// TypeEngine wraps a raw line of engine output.
	TypeEngine Type = "engine"
	// TypeLog carries diagnostic prints from the module or bridge.
	TypeLog Type = "log"
	// TypeError carries the module's error-stream output and recoverable
	// relay failures.
	TypeError Type = "error"
	// TypeFatal reports an unrecoverable failure; no engine instance exists
	// or the one that did is dead.
	TypeFatal Type = "fatal"
	// TypeStatus is a non-fatal liveness notice.
	TypeStatus Type = "status"
	// TypeReady is the distinguished readiness signal, sent exactly once.
	TypeReady Type = "ready"
)

// Notification is a single bridge-to-host message.
type Notification struct {
	Type  Type   `json:"type"`
	Data  string `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Transport is the bidirectional text channel a bridge exposes to its host.
// Send forwards one opaque command line to the engine. Notifications returns
// the stream of structured messages flowing back; the channel stays open for
// the lifetime of the bridge and must be drained.
type Transport interface {
	Send(line string) error
	Notifications() <-chan Notification
}
