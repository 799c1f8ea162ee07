package render

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"slidecast/internal/pkg/errors"
)

// DefaultUserAgent is sent with every asset download. Some image hosts
// reject requests without a browser-like agent.
const DefaultUserAgent = "Mozilla/5.0"

// Fetcher downloads ref into dest, replacing anything already there.
type Fetcher interface {
	Fetch(ctx context.Context, ref, dest string) error
}

// FetchError reports which asset failed to download.
type FetchError struct {
	Index int
	Ref   string
	Kind  Kind
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s %d (%s): %v", e.Kind, e.Index, e.Ref, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// HTTPFetcher downloads assets over HTTP(S).
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher returns a fetcher with an instrumented transport. timeout
// bounds each download; zero leaves it to the caller's context.
func NewHTTPFetcher(userAgent string, timeout time.Duration) *HTTPFetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPFetcher{
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
		userAgent: userAgent,
	}
}

// NewHTTPFetcherWithClient uses client as is.
func NewHTTPFetcherWithClient(client *http.Client, userAgent string) *HTTPFetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPFetcher{client: client, userAgent: userAgent}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, ref, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", dest, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dest, err)
	}
	return nil
}

// FetchAll downloads every asset concurrently. The first failure cancels the
// remaining downloads; FetchAll returns once all of them have stopped, so the
// caller may clean up right away. The returned error carries a *FetchError
// for the asset that failed first.
func FetchAll(ctx context.Context, f Fetcher, assets []StagedAsset) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, a := range assets {
		a := a
		g.Go(func() error {
			if err := f.Fetch(gctx, a.Ref, a.Path); err != nil {
				return &FetchError{Index: a.Index, Ref: a.Ref, Kind: a.Kind, Err: err}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return errors.WrapWithCode(ctx.Err(), errors.CodeCanceled, "render.fetch", "fetch canceled")
		}
		// Built directly so a per-download timeout stays a fetch failure.
		e := errors.New(errors.CodeFetch, "asset download failed")
		e.Op = "render.fetch"
		e.Err = err
		var fe *FetchError
		if errors.As(err, &fe) {
			e = e.WithField("asset_index", fe.Index).WithField("asset_kind", string(fe.Kind))
		}
		return e
	}
	return nil
}
