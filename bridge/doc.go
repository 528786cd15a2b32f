// Package bridge implements the engine bridge: resilient module loading
// with multi-source fallback, and bidirectional text relay between a host
// and the loaded engine instance.
//
// # Loading protocol
//
// Initialization resolves the engine's binary payload from its mirror list
// first, then walks the code mirrors strictly in order. Each candidate
// failure is recorded and non-fatal; the first success wins. A start
// failure with a resolved payload escalates once: the next payload location
// is substituted and the code load retried. Only total exhaustion is fatal,
// reported as exactly one fatal notification, after which the bridge makes
// no further attempt.
//
// # Relay protocol
//
// Host commands are forwarded verbatim to the engine's stdin. Every engine
// stdout line comes back wrapped as an "engine" notification; the error
// stream as "error" notifications. The first stdout line opening with a
// readiness marker (uciok, readyok) additionally triggers the one-shot
// "ready" notification. Right after a successful load the bridge sends the
// fixed bootstrap pair (uci, isready) to provoke that signal, and arms a
// liveness timer that emits a single non-fatal "status" notice if the
// signal does not arrive in time.
//
// Failures during relay are caught at the failing call, converted to
// notifications, and never terminate the message loop.
package bridge
