// Package enginebridge loads a chess engine compiled to WebAssembly and
// relays text traffic between a host and the running engine instance.
//
// The engine is an opaque third-party artifact: a core WASI command module
// plus the evaluation-network file it opens during startup. The bridge's job
// is to obtain both from mirror lists, get the module running under wazero,
// and forward opaque text lines in both directions while normalizing
// lifecycle signaling and error reporting.
//
// # Architecture Overview
//
//	enginebridge/        Root package with the Notification and Transport contracts
//	├── bridge/          The bridge itself: mirror fallback, bootstrap, relay, readiness
//	├── engine/          wazero integration: compile, WASI stdio, instance lifecycle
//	├── source/          Ordered candidate lists and the HTTP fetcher
//	├── cache/           Badger-backed local artifact cache
//	├── errors/          Structured error types
//	└── cmd/enginebridge CLI: pipe relay mode and an interactive console
//
// # Quick Start
//
//	eng, err := engine.New(ctx, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close(ctx)
//
//	b := bridge.New(bridge.Config{
//	    Code:    []source.Candidate{{URL: mirrorA}, {URL: mirrorB}},
//	    Payload: []source.Candidate{{URL: netMirror}},
//	    Engine:  eng,
//	})
//	if err := b.Initialize(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	go func() {
//	    for n := range b.Notifications() {
//	        fmt.Println(n.Type, n.Data)
//	    }
//	}()
//	b.Send("go depth 12")
//
// # Message Model
//
// Host to engine: opaque text commands, forwarded verbatim to the engine's
// stdin. Engine to host: structured Notifications wrapping each stdout line,
// diagnostic output, lifecycle status, and a distinguished one-shot "ready"
// signal once the engine reports it can accept commands.
//
// # Thread Safety
//
// A Bridge is safe for concurrent Send calls. Notifications are delivered on
// a single channel and must be drained by the host.
package enginebridge
