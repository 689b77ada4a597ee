package pdf

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Resolver turns an input source into the bytes of a PDF document
type Resolver interface {
	Resolve(ctx context.Context, input any) ([]byte, error)
}

// SourceResolver resolves file paths, http(s) URLs, byte slices and readers.
// File and remote access can be switched off for environments that only
// deal with in-memory blobs.
type SourceResolver struct {
	client  *http.Client
	timeout time.Duration
	maxSize int64
	files   bool
	remote  bool
}

// ResolverOption configures a SourceResolver
type ResolverOption func(*SourceResolver)

// WithHTTPClient sets the client used for URL inputs
func WithHTTPClient(client *http.Client) ResolverOption {
	return func(r *SourceResolver) { r.client = client }
}

// WithFetchTimeout bounds each URL download
func WithFetchTimeout(timeout time.Duration) ResolverOption {
	return func(r *SourceResolver) { r.timeout = timeout }
}

// WithMaxSize limits the size of any single input
func WithMaxSize(maxSize int64) ResolverOption {
	return func(r *SourceResolver) { r.maxSize = maxSize }
}

// WithoutFiles rejects file path inputs
func WithoutFiles() ResolverOption {
	return func(r *SourceResolver) { r.files = false }
}

// WithoutRemote rejects URL inputs
func WithoutRemote() ResolverOption {
	return func(r *SourceResolver) { r.remote = false }
}

// NewResolver creates a resolver with file and remote access enabled
func NewResolver(opts ...ResolverOption) *SourceResolver {
	r := &SourceResolver{
		client:  http.DefaultClient,
		timeout: DefaultFetchTimeout,
		maxSize: DefaultMaxInputSize,
		files:   true,
		remote:  true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve reads input. Supported variants: string (file path or http(s) URL),
// *url.URL, url.URL, []byte and io.Reader.
func (r *SourceResolver) Resolve(ctx context.Context, input any) ([]byte, error) {
	switch src := input.(type) {
	case []byte:
		if int64(len(src)) > r.maxSize {
			return nil, fmt.Errorf("%w: input exceeds maximum allowed %d bytes", ErrFetch, r.maxSize)
		}
		return src, nil
	case string:
		return r.resolveString(ctx, src)
	case *url.URL:
		if src == nil {
			break
		}
		return r.resolveURL(ctx, src)
	case url.URL:
		return r.resolveURL(ctx, &src)
	case io.Reader:
		return readLimited(src, r.maxSize, fmt.Sprintf("%T", src))
	}
	return nil, fmt.Errorf("%w: %T; input must be a file path, URL, []byte or io.Reader", ErrUnsupportedInput, input)
}

func (r *SourceResolver) resolveString(ctx context.Context, s string) ([]byte, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("%w: empty input", ErrUnsupportedInput)
	}
	if u, err := url.Parse(s); err == nil && (u.Scheme == "file" || u.Scheme != "" && u.Host != "") {
		return r.resolveURL(ctx, u)
	}
	return r.readFile(s)
}

func (r *SourceResolver) resolveURL(ctx context.Context, u *url.URL) ([]byte, error) {
	switch u.Scheme {
	case "file":
		return r.readFile(u.Path)
	case "http", "https":
		if !r.remote {
			return nil, fmt.Errorf("%w: remote inputs are disabled (%s)", ErrUnsupportedInput, u.Redacted())
		}
		return fetchWithTimeout(ctx, r.client, r.timeout, r.maxSize, u.String())
	}
	return nil, fmt.Errorf("%w: scheme %q", ErrUnsupportedInput, u.Scheme)
}

func (r *SourceResolver) readFile(path string) ([]byte, error) {
	if !r.files {
		return nil, fmt.Errorf("%w: file inputs are disabled (%s)", ErrUnsupportedInput, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrFetch, path)
	}
	return readLimited(f, r.maxSize, path)
}
