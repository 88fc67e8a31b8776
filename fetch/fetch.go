// Package fetch downloads API descriptions from their schema endpoints.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/29next/devdocs/errors"
	"github.com/29next/devdocs/system"
	"golang.org/x/sync/errgroup"
)

const (
	// ErrUnexpectedStatus is returned for a non 2xx response.
	ErrUnexpectedStatus = errors.Error("unexpected response status")
)

// DefaultConcurrency bounds how many downloads FetchAll runs at once.
const DefaultConcurrency = 4

// Target is one API version to download.
type Target struct {
	Source  string
	Version string
}

func (t Target) String() string {
	return t.Source + "@" + t.Version
}

type Option func(f *Fetcher)

// WithClient sets the HTTP client. Defaults to http.DefaultClient.
func WithClient(client system.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithConcurrency sets how many downloads run at once. Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// Fetcher downloads API descriptions. It is safe for concurrent use.
type Fetcher struct {
	client      system.Client
	concurrency int
}

func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      http.DefaultClient,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch requests source with the version query parameter set and returns the response body.
func (f *Fetcher) Fetch(ctx context.Context, source, version string) ([]byte, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("invalid source %q: %w", source, err)
	}

	if version != "" {
		query := u.Query()
		query.Set("version", version)
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ErrUnexpectedStatus.Wrapf("%s returned %d", u, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", u, err)
	}

	return data, nil
}

// FetchAll downloads every target concurrently. Results are in target order. The first
// failure cancels the downloads still running and is returned.
func (f *Fetcher) FetchAll(ctx context.Context, targets []Target) ([][]byte, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	results := make([][]byte, len(targets))

	for i, target := range targets {
		g.Go(func() error {
			data, err := f.Fetch(ctx, target.Source, target.Version)
			if err != nil {
				return err
			}
			results[i] = data
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
