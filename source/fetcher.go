package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fenwick-labs/enginebridge/errors"
)

// maxArtifactSize caps a single download. Engine modules and networks run
// tens of megabytes; anything past this is a misconfigured mirror.
const maxArtifactSize = 256 << 20

// Fetcher downloads artifacts over HTTP.
type Fetcher struct {
	client *http.Client
	log    *zap.Logger
}

// FetcherConfig configures a Fetcher. Zero values get defaults.
type FetcherConfig struct {
	// Client is the HTTP client to use. Defaults to a client with a
	// 60-second total timeout.
	Client *http.Client
	// Logger receives per-attempt diagnostics. Defaults to a nop logger.
	Logger *zap.Logger
}

// NewFetcher creates a Fetcher.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{client: client, log: log}
}

// Fetch downloads one candidate. Any failure, transport or HTTP status,
// comes back as a source_unavailable error so the caller can move on to the
// next candidate.
func (f *Fetcher) Fetch(ctx context.Context, c Candidate) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, errors.SourceUnavailable(errors.PhaseFetch, c.URL, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Debug("fetch failed", zap.String("url", c.URL), zap.Error(err))
		return nil, errors.SourceUnavailable(errors.PhaseFetch, c.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.log.Debug("fetch rejected", zap.String("url", c.URL), zap.Int("status", resp.StatusCode))
		return nil, errors.SourceUnavailable(errors.PhaseFetch, c.URL,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArtifactSize+1))
	if err != nil {
		return nil, errors.SourceUnavailable(errors.PhaseFetch, c.URL, err)
	}
	if len(data) > maxArtifactSize {
		return nil, errors.SourceUnavailable(errors.PhaseFetch, c.URL,
			fmt.Errorf("artifact exceeds %d bytes", maxArtifactSize))
	}

	f.log.Debug("fetched artifact", zap.String("url", c.URL), zap.Int("bytes", len(data)))
	return data, nil
}
