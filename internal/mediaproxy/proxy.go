package mediaproxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SkipBrowserWarningHeader makes tunnel providers serve content instead of an interstitial page.
const SkipBrowserWarningHeader = "ngrok-skip-browser-warning"

var (
	ErrMissingURL        = errors.New("url query parameter is required")
	ErrUnsupportedTarget = errors.New("only http and https targets can be proxied")
	ErrUpstreamFetch     = errors.New("upstream fetch failed")
)

// Kind selects the fetch policy of a proxied resource.
type Kind int

const (
	KindImage Kind = iota
	KindVideo
)

func (k Kind) String() string {
	if k == KindVideo {
		return "video"
	}
	return "image"
}

// Upstream is an open response from the origin. Close must always be called.
type Upstream struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
	cancel        context.CancelFunc
}

func (u *Upstream) Close() error {
	defer u.cancel()
	return u.Body.Close()
}

// Proxy fetches media from arbitrary origins on behalf of clients.
type Proxy struct {
	httpClient   *http.Client
	imageTimeout time.Duration
}

func NewProxy(imageTimeout time.Duration) *Proxy {
	return NewProxyWithClient(&http.Client{}, imageTimeout)
}

func NewProxyWithClient(client *http.Client, imageTimeout time.Duration) *Proxy {
	return &Proxy{
		httpClient:   client,
		imageTimeout: imageTimeout,
	}
}

// Open issues the outbound GET. Images are bounded by the image timeout, video streams only
// by ctx, which should be the inbound request context so a client disconnect aborts the fetch.
func (p *Proxy) Open(ctx context.Context, kind Kind, rawURL string) (*Upstream, error) {
	target, err := validateTarget(rawURL)
	if err != nil {
		return nil, err
	}

	var cancel context.CancelFunc
	if kind == KindImage && p.imageTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, p.imageTimeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFetch, err)
	}
	req.Header.Set(SkipBrowserWarningHeader, "true")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFetch, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("%w: origin responded %d", ErrUpstreamFetch, resp.StatusCode)
	}

	return &Upstream{
		Body:          resp.Body,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
		cancel:        cancel,
	}, nil
}

func validateTarget(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", ErrMissingURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", ErrUnsupportedTarget
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.String(), nil
	default:
		return "", ErrUnsupportedTarget
	}
}
