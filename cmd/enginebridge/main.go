package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/fenwick-labs/enginebridge/bridge"
	"github.com/fenwick-labs/enginebridge/cache"
	"github.com/fenwick-labs/enginebridge/engine"
	"github.com/fenwick-labs/enginebridge/source"
)

// envConfig is the environment-variable surface; flags override it.
type envConfig struct {
	Mirrors      []string      `env:"ENGINE_MIRRORS" envSeparator:","`
	NetMirrors   []string      `env:"ENGINE_NET_MIRRORS" envSeparator:","`
	CacheDir     string        `env:"ENGINE_CACHE_DIR"`
	ReadyTimeout time.Duration `env:"ENGINE_READY_TIMEOUT"`
}

func main() {
	var (
		mirrors      = flag.String("mirrors", "", "Comma-separated engine module mirror URLs")
		netMirrors   = flag.String("net-mirrors", "", "Comma-separated evaluation-network mirror URLs")
		cacheDir     = flag.String("cache", "", "Artifact cache directory (empty disables caching)")
		readyTimeout = flag.Duration("ready-timeout", 0, "Liveness window for the engine's readiness signal")
		interactive  = flag.Bool("i", false, "Interactive console")
		debug        = flag.Bool("debug", false, "Verbose logging")
	)
	flag.Parse()

	if err := run(*mirrors, *netMirrors, *cacheDir, *readyTimeout, *interactive, *debug); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(mirrors, netMirrors, cacheDir string, readyTimeout time.Duration, interactive, debug bool) error {
	ctx := context.Background()

	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if mirrors != "" {
		cfg.Mirrors = splitList(mirrors)
	}
	if netMirrors != "" {
		cfg.NetMirrors = splitList(netMirrors)
	}
	if cacheDir != "" {
		cfg.CacheDir = cacheDir
	}
	if readyTimeout > 0 {
		cfg.ReadyTimeout = readyTimeout
	}
	if len(cfg.Mirrors) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: enginebridge -mirrors <url,url> [-net-mirrors <url,url>] [-cache dir] [-i]")
		fmt.Fprintln(os.Stderr, "       ENGINE_MIRRORS / ENGINE_NET_MIRRORS / ENGINE_CACHE_DIR are honored too")
		os.Exit(1)
	}

	log := zap.NewNop()
	if debug {
		var err error
		if log, err = zap.NewDevelopment(); err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer log.Sync()
	}
	engine.SetLogger(log)

	fetcher := source.NewFetcher(source.FetcherConfig{Logger: log})
	fetch := fetcher.Fetch
	if cfg.CacheDir != "" {
		store, err := cache.Open(cfg.CacheDir)
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		defer store.Close()
		fetch = cache.Cached(fetch, store)
	}

	eng, err := engine.New(ctx, nil)
	if err != nil {
		return fmt.Errorf("create engine runtime: %w", err)
	}
	defer eng.Close(ctx)

	b := bridge.New(bridge.Config{
		Code:         candidates(cfg.Mirrors),
		Payload:      candidates(cfg.NetMirrors),
		ReadyTimeout: cfg.ReadyTimeout,
		Logger:       log,
		Fetch:        fetch,
		Engine:       eng,
	})
	defer b.Close(ctx)

	if interactive || term.IsTerminal(int(os.Stdin.Fd())) {
		return runConsole(ctx, b)
	}

	if err := b.Initialize(ctx); err != nil {
		return err
	}
	return runPipe(b)
}

// runPipe relays os.Stdin lines to the engine and prints every notification
// as a JSON line on os.Stdout. This is the host-integration surface.
func runPipe(b *bridge.Bridge) error {
	go func() {
		enc := json.NewEncoder(os.Stdout)
		for n := range b.Notifications() {
			_ = enc.Encode(n)
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		_ = b.Send(line) // failures surface as error notifications
		if line == "quit" {
			break
		}
	}
	return scanner.Err()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func candidates(urls []string) []source.Candidate {
	out := make([]source.Candidate, 0, len(urls))
	for _, u := range urls {
		out = append(out, source.Candidate{URL: u})
	}
	return out
}
