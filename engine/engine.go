package engine

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/fenwick-labs/enginebridge/errors"
)

// Engine owns a wazero runtime with WASI preview1 instantiated. One Engine
// can load and run many modules; modules share nothing but the compiled
// code cache.
type Engine struct {
	runtime wazero.Runtime
}

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	// 256 = 16MB, 1024 = 64MB, 4096 = 256MB
	MemoryLimitPages uint32
}

// New creates a wazero-backed engine. Guest execution honors context
// cancellation, which is how Instance.Close interrupts a running module.
func New(ctx context.Context, cfg *Config) (*Engine, error) {
	runtimeCfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)

	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	runtime := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	wasi_snapshot_preview1.MustInstantiate(ctx, runtime)

	return &Engine{runtime: runtime}, nil
}

// Load compiles module bytes. It does not run anything; instantiation is a
// separate step so a compile failure can be classified before any payload
// work happens.
func (e *Engine) Load(ctx context.Context, wasmBytes []byte) (*Module, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, errors.InvalidData(errors.PhaseLoad, "compile module", err)
	}
	return &Module{engine: e, compiled: compiled}, nil
}

// Close releases all runtime resources. All instances must be closed before
// calling this.
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}
