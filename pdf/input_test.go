package pdf

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBytes(t *testing.T) {
	r := NewResolver()
	data, err := r.Resolve(context.Background(), []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)

	_, err = NewResolver(WithMaxSize(3)).Resolve(context.Background(), []byte("%PDF-1.4"))
	assert.ErrorIs(t, err, ErrFetch)
}

func TestResolveReader(t *testing.T) {
	data, err := NewResolver().Resolve(context.Background(), strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = NewResolver(WithMaxSize(4)).Resolve(context.Background(), strings.NewReader("hello"))
	assert.ErrorIs(t, err, ErrFetch)
}

func TestResolveFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.pdf")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0600))

	r := NewResolver()
	ctx := context.Background()

	data, err := r.Resolve(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))

	data, err = r.Resolve(ctx, "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))

	_, err = r.Resolve(ctx, filepath.Join(dir, "missing.pdf"))
	assert.ErrorIs(t, err, ErrFetch)

	_, err = r.Resolve(ctx, dir)
	assert.ErrorIs(t, err, ErrFetch)

	_, err = NewResolver(WithoutFiles()).Resolve(ctx, path)
	assert.ErrorIs(t, err, ErrUnsupportedInput)
}

func TestResolveURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/doc.pdf":
			_, _ = w.Write([]byte("remote"))
		case "/slow.pdf":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte("late"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	ctx := context.Background()
	r := NewResolver(WithHTTPClient(server.Client()))

	data, err := r.Resolve(ctx, server.URL+"/doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "remote", string(data))

	u, err := url.Parse(server.URL + "/doc.pdf")
	require.NoError(t, err)
	data, err = r.Resolve(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, "remote", string(data))

	data, err = r.Resolve(ctx, *u)
	require.NoError(t, err)
	assert.Equal(t, "remote", string(data))

	_, err = r.Resolve(ctx, server.URL+"/missing.pdf")
	assert.ErrorIs(t, err, ErrFetch)
	assert.Contains(t, err.Error(), "404")

	_, err = NewResolver(WithHTTPClient(server.Client()), WithFetchTimeout(20*time.Millisecond)).
		Resolve(ctx, server.URL+"/slow.pdf")
	assert.ErrorIs(t, err, ErrFetch)
	assert.Contains(t, err.Error(), "timed out")

	_, err = NewResolver(WithHTTPClient(server.Client()), WithMaxSize(3)).Resolve(ctx, server.URL+"/doc.pdf")
	assert.ErrorIs(t, err, ErrFetch)

	_, err = NewResolver(WithoutRemote()).Resolve(ctx, server.URL+"/doc.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedInput)
}

func TestResolveUnreachableURL(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	_, err := NewResolver().Resolve(context.Background(), addr+"/doc.pdf")
	assert.ErrorIs(t, err, ErrFetch)
}

// lateTransport answers only after the request context is done
type lateTransport struct {
	closed atomic.Bool
}

func (l *lateTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	<-req.Context().Done()
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       &trackedBody{Reader: strings.NewReader("late"), closed: &l.closed},
		Request:    req,
	}, nil
}

type trackedBody struct {
	io.Reader
	closed *atomic.Bool
}

func (b *trackedBody) Close() error {
	b.closed.Store(true)
	return nil
}

func TestResolveTimeoutClosesBody(t *testing.T) {
	transport := &lateTransport{}
	r := NewResolver(WithHTTPClient(&http.Client{Transport: transport}), WithFetchTimeout(20*time.Millisecond))

	_, err := r.Resolve(context.Background(), "https://example.com/doc.pdf")
	assert.ErrorIs(t, err, ErrFetch)
	assert.Contains(t, err.Error(), "timed out")
	assert.True(t, transport.closed.Load())
}

func TestResolveUnsupported(t *testing.T) {
	r := NewResolver()
	ctx := context.Background()

	for _, input := range []any{nil, 42, "", "   ", (*url.URL)(nil), map[string]string{}, "ftp://example.com/a.pdf"} {
		_, err := r.Resolve(ctx, input)
		assert.ErrorIs(t, err, ErrUnsupportedInput, "%#v", input)
	}
}
