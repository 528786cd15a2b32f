package engine

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing/fstest"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"

	"github.com/fenwick-labs/enginebridge/errors"
)

// Module is a compiled engine module, ready to instantiate.
type Module struct {
	engine   *Engine
	compiled wazero.CompiledModule
}

// InstanceConfig configures one instantiation.
type InstanceConfig struct {
	// Name is the instance name reported to the guest. Defaults to "engine".
	Name string
	// Args are the guest's argv. argv[0] defaults to Name.
	Args []string
	// Stdout and Stderr receive the guest's output streams. These are the
	// module's print and error hooks; nil discards the stream.
	Stdout io.Writer
	Stderr io.Writer
	// Payload, when non-empty, is mounted read-only in the guest filesystem
	// at PayloadPath before the module starts, since the module opens it
	// during its own startup.
	Payload []byte
	// PayloadPath is the guest path for Payload. Defaults to "nn.nnue".
	PayloadPath string
}

// Instance is a running engine module. The guest's _start runs on its own
// goroutine; the host talks to it exclusively through Send and the output
// writers handed to Instantiate.
type Instance struct {
	stdin  *io.PipeWriter
	cancel context.CancelFunc
	done   chan error

	mu     sync.Mutex
	closed bool
}

// Instantiate mounts the payload, wires stdio, and starts the module.
// Start failure is observed through Done: a WASI command module blocks in
// _start for its whole life, so there is no synchronous "started OK" moment
// to report.
func (m *Module) Instantiate(ctx context.Context, cfg InstanceConfig) (*Instance, error) {
	name := cfg.Name
	if name == "" {
		name = "engine"
	}
	args := cfg.Args
	if len(args) == 0 {
		args = []string{name}
	}

	stdout := cfg.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := cfg.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	stdinR, stdinW := io.Pipe()

	modCfg := wazero.NewModuleConfig().
		WithName(name).
		WithArgs(args...).
		WithStdin(stdinR).
		WithStdout(stdout).
		WithStderr(stderr).
		WithSysWalltime().
		WithSysNanotime()

	if len(cfg.Payload) > 0 {
		path := strings.TrimPrefix(cfg.PayloadPath, "/")
		if path == "" {
			path = "nn.nnue"
		}
		fsys := fstest.MapFS{path: &fstest.MapFile{Data: cfg.Payload}}
		modCfg = modCfg.WithFSConfig(wazero.NewFSConfig().WithFSMount(fsys, "/"))
	}

	// The instance outlives the Instantiate call's context; cancellation is
	// owned by Close.
	runCtx, cancel := context.WithCancel(context.Background())

	inst := &Instance{
		stdin:  stdinW,
		cancel: cancel,
		done:   make(chan error, 1),
	}

	go func() {
		mod, err := m.engine.runtime.InstantiateModule(runCtx, m.compiled, modCfg)
		if mod != nil {
			_ = mod.Close(runCtx)
		}
		// Unblock current and future Send calls.
		_ = stdinR.CloseWithError(io.ErrClosedPipe)
		Logger().Debug("engine module exited", zap.String("name", name), zap.Error(err))
		inst.done <- inst.exitError(err)
	}()

	return inst, nil
}

// exitError normalizes the result of a finished _start. A zero exit code and
// a teardown caused by Close both count as clean.
func (i *Instance) exitError(err error) error {
	if err == nil {
		return nil
	}
	if exitErr, ok := err.(*sys.ExitError); ok && exitErr.ExitCode() == 0 {
		return nil
	}

	i.mu.Lock()
	closed := i.closed
	i.mu.Unlock()
	if closed {
		return nil
	}
	return errors.ModuleAbort(err)
}

// Send writes one command line to the guest's stdin.
func (i *Instance) Send(line string) error {
	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		return errors.NotInitialized("engine instance")
	}
	i.mu.Unlock()

	if _, err := io.WriteString(i.stdin, line+"\n"); err != nil {
		return errors.RelayError("write to engine stdin", err)
	}
	return nil
}

// Done reports the module's termination: nil for a clean exit or teardown
// via Close, a module_abort error otherwise. The channel fires once.
func (i *Instance) Done() <-chan error {
	return i.done
}

// Close tears the instance down: stdin is closed so a well-behaved engine
// exits its read loop, and the run context is canceled so a wedged one is
// interrupted.
func (i *Instance) Close(ctx context.Context) error {
	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		return nil
	}
	i.closed = true
	i.mu.Unlock()

	err := i.stdin.Close()
	i.cancel()
	return err
}
