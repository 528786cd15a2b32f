package engine

import (
	"context"
	stderrors "errors"
	"io"
	"testing"

	"github.com/fenwick-labs/enginebridge/errors"
)

func TestLoad_RejectsInvalidModule(t *testing.T) {
	ctx := context.Background()

	eng, err := New(ctx, nil)
	if err != nil {
		t.Fatalf("create engine: %v", err)
	}
	defer eng.Close(ctx)

	_, err = eng.Load(ctx, []byte("this is not a wasm binary"))
	if err == nil {
		t.Fatal("expected compile failure")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindInvalidData}) {
		t.Errorf("err = %v, want [load] invalid_data", err)
	}
}

func TestLoad_RejectsTruncatedHeader(t *testing.T) {
	ctx := context.Background()

	eng, err := New(ctx, &Config{MemoryLimitPages: 256})
	if err != nil {
		t.Fatalf("create engine: %v", err)
	}
	defer eng.Close(ctx)

	// Valid magic, nothing else.
	_, err = eng.Load(ctx, []byte{0x00, 0x61, 0x73, 0x6d})
	if err == nil {
		t.Fatal("expected compile failure")
	}
}

func TestInstance_SendAfterClose(t *testing.T) {
	_, stdinW := io.Pipe()
	inst := &Instance{
		stdin:  stdinW,
		cancel: func() {},
		done:   make(chan error, 1),
	}

	if err := inst.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := inst.Send("isready"); err == nil {
		t.Fatal("expected error sending on a closed instance")
	}

	// Close is idempotent.
	if err := inst.Close(context.Background()); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestInstance_ExitErrorTreatsCloseAsClean(t *testing.T) {
	inst := &Instance{cancel: func() {}, done: make(chan error, 1)}
	inst.closed = true

	if err := inst.exitError(context.Canceled); err != nil {
		t.Errorf("exitError after close = %v, want nil", err)
	}
}

func TestInstance_ExitErrorClassifiesAbort(t *testing.T) {
	inst := &Instance{cancel: func() {}, done: make(chan error, 1)}

	err := inst.exitError(stderrors.New("unreachable executed"))
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindModuleAbort}) {
		t.Errorf("err = %v, want module_abort", err)
	}
}
