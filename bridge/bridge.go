package bridge

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fenwick-labs/enginebridge"
	"github.com/fenwick-labs/enginebridge/engine"
	"github.com/fenwick-labs/enginebridge/errors"
	"github.com/fenwick-labs/enginebridge/source"
)

// readyMarkers are the engine tokens that count as a readiness signal: the
// first word of a stdout line is matched against this set.
var readyMarkers = map[string]bool{
	"uciok":   true,
	"readyok": true,
}

// Bridge obtains a running engine instance from the configured mirrors and
// relays opaque text between the host and that instance. One Bridge owns at
// most one instance for its whole life; a dead instance is reported, never
// replaced.
type Bridge struct {
	cfg    Config
	log    *zap.Logger
	notifs chan enginebridge.Notification

	mu          sync.Mutex
	inst        Instance
	initialized bool
	ready       bool
	closed      bool
	readyTimer  *time.Timer
}

var _ enginebridge.Transport = (*Bridge)(nil)

// New creates a Bridge. Initialize must be called before Send.
func New(cfg Config) *Bridge {
	cfg.applyDefaults()
	return &Bridge{
		cfg:    cfg,
		log:    cfg.Logger,
		notifs: make(chan enginebridge.Notification, cfg.NotifyBuffer),
	}
}

// Notifications returns the bridge-to-host message stream. The host must
// drain it; the bridge never blocks relay on a slow host and drops
// notifications once the buffer is full.
func (b *Bridge) Notifications() <-chan enginebridge.Notification {
	return b.notifs
}

// Initialize resolves the payload, walks the code candidates in order until
// one yields a running instance, installs the stream hooks, sends the
// bootstrap probe, and arms the liveness timer.
//
// The payload is resolved strictly before any code-load attempt, because
// the module consults it during its own startup. Individual candidate
// failures are non-fatal; only total exhaustion is, in which case exactly
// one fatal notification is emitted and no further attempt is ever made.
func (b *Bridge) Initialize(ctx context.Context) error {
	b.mu.Lock()
	if b.initialized {
		b.mu.Unlock()
		return errors.InvalidData(errors.PhaseLoad, "bridge already initialized", nil)
	}
	b.initialized = true
	b.mu.Unlock()

	if b.cfg.Load == nil {
		return errors.NotInitialized("loader")
	}

	// Payload override first. Exhaustion here is not fatal on its own: the
	// engine may carry an embedded default network.
	payload, payloadIdx := b.resolvePayload(ctx, 0)

	payloadSwapped := false
	var attempts []source.Attempt

	for _, cand := range b.cfg.Code {
		code, err := b.cfg.Fetch(ctx, cand)
		if err != nil {
			b.log.Warn("code source failed", zap.String("url", cand.URL), zap.Error(err))
			b.emit(enginebridge.Notification{
				Type: enginebridge.TypeLog,
				Data: "code source failed: " + cand.URL,
			})
			attempts = append(attempts, source.Attempt{Candidate: cand, Err: err})
			continue
		}

		inst, err := b.start(ctx, code, payload)
		if err != nil && !payloadSwapped && payloadIdx+1 < len(b.cfg.Payload) {
			// A load that fails with a resolved payload may be failing on
			// the payload itself. Substitute the next payload location and
			// retry this code candidate exactly once.
			var next []byte
			next, payloadIdx = b.resolvePayload(ctx, payloadIdx+1)
			payloadSwapped = true
			if next != nil {
				payload = next
				inst, err = b.start(ctx, code, payload)
			}
		}
		if err != nil {
			b.log.Warn("module start failed", zap.String("url", cand.URL), zap.Error(err))
			b.emit(enginebridge.Notification{
				Type: enginebridge.TypeLog,
				Data: "module start failed: " + cand.URL,
			})
			attempts = append(attempts, source.Attempt{Candidate: cand, Err: err})
			continue
		}

		b.adopt(inst)
		return nil
	}

	var last error
	if len(attempts) > 0 {
		last = attempts[len(attempts)-1].Err
	}
	err := errors.ExhaustedSources(errors.PhaseLoad, len(b.cfg.Code), last)
	b.emit(enginebridge.Notification{
		Type:  enginebridge.TypeFatal,
		Error: err.Error(),
	})
	return err
}

// resolvePayload walks the payload candidates from index from and returns
// the first payload that fetched, plus the index it came from. Exhaustion
// returns nil and the end of the list.
func (b *Bridge) resolvePayload(ctx context.Context, from int) ([]byte, int) {
	if from >= len(b.cfg.Payload) {
		return nil, len(b.cfg.Payload)
	}

	rest := b.cfg.Payload[from:]
	data, winner, attempts, err := source.First(ctx, b.cfg.Fetch, rest)
	for _, a := range attempts {
		b.log.Warn("payload source failed", zap.String("url", a.Candidate.URL), zap.Error(a.Err))
	}
	if err != nil {
		b.emit(enginebridge.Notification{
			Type: enginebridge.TypeLog,
			Data: "no payload source available, relying on module default",
		})
		return nil, len(b.cfg.Payload)
	}

	b.log.Info("payload resolved", zap.String("url", winner.URL), zap.Int("bytes", len(data)))
	for i := from; i < len(b.cfg.Payload); i++ {
		if b.cfg.Payload[i] == winner {
			return data, i
		}
	}
	return data, len(b.cfg.Payload) - 1
}

// start runs one load attempt. The stream hooks are installed here, before
// the module's code runs: startup diagnostics must not be lost, and an
// early readiness marker must not be missed. A module that dies within the
// startup grace window counts as a failed attempt.
func (b *Bridge) start(ctx context.Context, code, payload []byte) (Instance, error) {
	inst, err := b.cfg.Load(ctx, code, LoadOptions{
		Payload:     payload,
		PayloadPath: b.cfg.PayloadGuestPath,
		Stdout:      engine.NewLineWriter(b.onEngineLine),
		Stderr:      engine.NewLineWriter(b.onErrorLine),
	})
	if err != nil {
		return nil, err
	}

	grace := time.NewTimer(b.cfg.StartupGrace)
	defer grace.Stop()
	select {
	case err := <-inst.Done():
		_ = inst.Close(ctx)
		if err == nil {
			err = errors.ModuleAbort(nil)
		}
		return nil, err
	case <-grace.C:
		return inst, nil
	}
}

// adopt installs the instance, watches it for abort, sends the bootstrap
// probe, and arms the liveness timer.
func (b *Bridge) adopt(inst Instance) {
	b.mu.Lock()
	b.inst = inst
	b.readyTimer = time.AfterFunc(b.cfg.ReadyTimeout, b.onReadyTimeout)
	b.mu.Unlock()

	go b.watch(inst)

	for _, cmd := range b.cfg.Bootstrap {
		if err := inst.Send(cmd); err != nil {
			b.relayError("bootstrap command failed", err)
		}
	}
}

// watch reports the instance's termination to the host.
func (b *Bridge) watch(inst Instance) {
	err := <-inst.Done()

	b.mu.Lock()
	closed := b.closed
	if b.readyTimer != nil {
		b.readyTimer.Stop()
	}
	b.mu.Unlock()
	if closed {
		return
	}

	if err != nil {
		b.log.Error("engine aborted", zap.Error(err))
		b.emit(enginebridge.Notification{
			Type:  enginebridge.TypeFatal,
			Error: err.Error(),
		})
		return
	}
	b.emit(enginebridge.Notification{
		Type: enginebridge.TypeStatus,
		Data: "engine exited",
	})
}

// Send forwards one opaque command line to the engine, verbatim. A send
// failure is converted to an error notification and does not disturb the
// relay of other messages.
func (b *Bridge) Send(line string) error {
	b.mu.Lock()
	inst := b.inst
	b.mu.Unlock()

	if inst == nil {
		return errors.NotInitialized("engine instance")
	}
	if err := inst.Send(line); err != nil {
		b.relayError("forward to engine failed", err)
		return err
	}
	return nil
}

// onEngineLine forwards one engine stdout line and inspects it for the
// readiness signal. The first marker flips the readiness flag and emits the
// distinguished ready notification, alongside the normal forward; later
// markers are just traffic.
func (b *Bridge) onEngineLine(line string) {
	b.emit(enginebridge.Notification{
		Type: enginebridge.TypeEngine,
		Data: line,
	})

	fields := strings.Fields(line)
	if len(fields) == 0 || !readyMarkers[fields[0]] {
		return
	}

	b.mu.Lock()
	first := !b.ready
	b.ready = true
	if first && b.readyTimer != nil {
		b.readyTimer.Stop()
	}
	b.mu.Unlock()

	if first {
		b.emit(enginebridge.Notification{
			Type: enginebridge.TypeReady,
			Data: "ready",
		})
	}
}

// onErrorLine forwards one line of the engine's error stream.
func (b *Bridge) onErrorLine(line string) {
	b.emit(enginebridge.Notification{
		Type: enginebridge.TypeError,
		Data: line,
	})
}

// onReadyTimeout fires once if no readiness marker arrived in time. The
// bridge keeps waiting for the real signal; this is a liveness notice, not
// a failure.
func (b *Bridge) onReadyTimeout() {
	b.mu.Lock()
	skip := b.ready || b.closed
	b.mu.Unlock()
	if skip {
		return
	}

	b.emit(enginebridge.Notification{
		Type: enginebridge.TypeStatus,
		Data: "bridge alive, engine has not signaled readiness yet",
	})
}

func (b *Bridge) relayError(detail string, cause error) {
	err := errors.RelayError(detail, cause)
	b.log.Warn("relay error", zap.Error(err))
	b.emit(enginebridge.Notification{
		Type: enginebridge.TypeError,
		Data: err.Error(),
	})
}

// emit delivers one notification without ever blocking the relay. A full
// buffer means the host stopped draining; the notification is dropped and
// logged.
func (b *Bridge) emit(n enginebridge.Notification) {
	select {
	case b.notifs <- n:
	default:
		b.log.Warn("notification dropped, host not draining",
			zap.String("type", string(n.Type)))
	}
}

// Close tears down the bridge and its instance, if any. The notification
// channel is left open for the host to drain.
func (b *Bridge) Close(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	inst := b.inst
	if b.readyTimer != nil {
		b.readyTimer.Stop()
	}
	b.mu.Unlock()

	if inst != nil {
		return inst.Close(ctx)
	}
	return nil
}
