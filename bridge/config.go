package bridge

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/fenwick-labs/enginebridge/engine"
	"github.com/fenwick-labs/enginebridge/source"
)

// Defaults applied by New for zero-valued Config fields.
const (
	// DefaultReadyTimeout is the liveness-fallback window: how long after a
	// successful load the bridge waits for a readiness marker before
	// emitting a status notice.
	DefaultReadyTimeout = 10 * time.Second
	// DefaultStartupGrace is how long a freshly started module gets to
	// abort before the load attempt counts as successful. An engine that
	// cannot open its network file exits almost immediately.
	DefaultStartupGrace = 500 * time.Millisecond
	// DefaultPayloadGuestPath is where the payload is mounted in the guest.
	DefaultPayloadGuestPath = "nn.nnue"
	// DefaultNotifyBuffer sizes the notification channel.
	DefaultNotifyBuffer = 256
)

// DefaultBootstrap is the fixed command pair sent right after a successful
// load to provoke the engine's readiness signal.
func DefaultBootstrap() []string {
	return []string{"uci", "isready"}
}

// Instance is the bridge's view of a running engine module.
type Instance interface {
	Send(line string) error
	Done() <-chan error
	Close(ctx context.Context) error
}

// LoadOptions is what a loader needs beyond the module bytes.
type LoadOptions struct {
	// Payload is mounted in the guest before startup; may be nil.
	Payload []byte
	// PayloadPath is the guest mount path for Payload.
	PayloadPath string
	// Stdout and Stderr receive the guest's streams. The bridge installs
	// its relay hooks here; loaders must wire them before the module's code
	// runs, since the module writes during its own startup.
	Stdout io.Writer
	Stderr io.Writer
}

// LoadFunc starts one engine instance from compiled or raw module bytes.
type LoadFunc func(ctx context.Context, code []byte, opts LoadOptions) (Instance, error)

// Config configures a Bridge. Candidate lists are treated as immutable and
// tried strictly in order. Fetch and Load are injectable so the whole
// fallback protocol is testable without a network or a wazero runtime;
// leaving them nil wires the defaults from source and engine.
type Config struct {
	// Code is the ordered candidate list for the engine module.
	Code []source.Candidate
	// Payload is the ordered candidate list for the engine's evaluation
	// network. May be empty for engines with an embedded default.
	Payload []source.Candidate

	// Bootstrap commands are sent once after a successful load, without
	// waiting for the host. Defaults to DefaultBootstrap().
	Bootstrap []string

	ReadyTimeout     time.Duration
	StartupGrace     time.Duration
	PayloadGuestPath string
	NotifyBuffer     int

	Logger *zap.Logger

	// Fetch retrieves one candidate. Defaults to an HTTP fetcher.
	Fetch source.FetchFunc
	// Load starts an instance. Defaults to a loader backed by Engine.
	Load LoadFunc
	// Engine backs the default loader; ignored when Load is set.
	Engine *engine.Engine
}

func (c *Config) applyDefaults() {
	if c.Bootstrap == nil {
		c.Bootstrap = DefaultBootstrap()
	}
	if c.ReadyTimeout <= 0 {
		c.ReadyTimeout = DefaultReadyTimeout
	}
	if c.StartupGrace <= 0 {
		c.StartupGrace = DefaultStartupGrace
	}
	if c.PayloadGuestPath == "" {
		c.PayloadGuestPath = DefaultPayloadGuestPath
	}
	if c.NotifyBuffer <= 0 {
		c.NotifyBuffer = DefaultNotifyBuffer
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Fetch == nil {
		c.Fetch = source.NewFetcher(source.FetcherConfig{Logger: c.Logger}).Fetch
	}
	if c.Load == nil && c.Engine != nil {
		c.Load = engineLoader(c.Engine)
	}
}

// engineLoader adapts the wazero engine to LoadFunc.
func engineLoader(eng *engine.Engine) LoadFunc {
	return func(ctx context.Context, code []byte, opts LoadOptions) (Instance, error) {
		mod, err := eng.Load(ctx, code)
		if err != nil {
			return nil, err
		}
		return mod.Instantiate(ctx, engine.InstanceConfig{
			Stdout:      opts.Stdout,
			Stderr:      opts.Stderr,
			Payload:     opts.Payload,
			PayloadPath: opts.PayloadPath,
		})
	}
}
