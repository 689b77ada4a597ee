package pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// fetchWithTimeout downloads rawURL, giving up after timeout
func fetchWithTimeout(ctx context.Context, client *http.Client, timeout time.Duration, maxSize int64, rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, rawURL, err)
	}

	resp, err := client.Do(req)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, fmt.Errorf("%w: %s timed out after %v", ErrFetch, rawURL, timeout)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s responded %s", ErrFetch, rawURL, resp.Status)
	}

	data, err := readLimited(resp.Body, maxSize, rawURL)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %s timed out after %v", ErrFetch, rawURL, timeout)
	}
	return data, err
}

// readLimited reads r completely, failing when it holds more than maxSize bytes
func readLimited(r io.Reader, maxSize int64, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrFetch, name, err)
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w: %s exceeds maximum allowed %d bytes", ErrFetch, name, maxSize)
	}
	return data, nil
}
