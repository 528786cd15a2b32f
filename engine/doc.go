// Package engine runs the third-party chess engine module under wazero.
//
// The engine artifact is a WASI preview1 command module: _start reads
// commands from stdin and writes responses to stdout for its whole life.
// This package compiles the module, mounts its evaluation-network payload
// into the guest filesystem before startup, and exposes the running guest
// as an Instance with line-oriented stdin and caller-supplied stdout/stderr
// writers.
//
// Nothing here interprets engine traffic; see the bridge package for the
// relay and readiness protocol.
package engine
