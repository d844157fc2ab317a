package viewer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"
)

// MaxModelSize caps the bytes read from any source.
const MaxModelSize = 512 << 20

// Source errors.
var (
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
	ErrHTTPStatus        = errors.New("unexpected HTTP status")
	ErrTooLarge          = errors.New("model exceeds size limit")
)

// Source reads the full contents of a model in one shot.
type Source interface {
	Read(ctx context.Context, location string) ([]byte, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, location string) ([]byte, error)

// Read calls f.
func (f SourceFunc) Read(ctx context.Context, location string) ([]byte, error) {
	return f(ctx, location)
}

// FileSource reads local files.
type FileSource struct{}

// Read returns the contents of the file at path.
func (FileSource) Read(_ context.Context, path string) ([]byte, error) {
	return readFile(path)
}

// FetchSource reads http(s) URLs, file:// URLs and plain paths.
type FetchSource struct {
	Client  *http.Client
	Timeout time.Duration
}

// NewFetchSource creates a source whose HTTP requests give up after timeout.
func NewFetchSource(timeout time.Duration) *FetchSource {
	return &FetchSource{Client: http.DefaultClient, Timeout: timeout}
}

// Read fetches location.
func (f *FetchSource) Read(ctx context.Context, location string) ([]byte, error) {
	u, err := url.Parse(location)
	// Windows drive letters parse as one-letter schemes
	if err != nil || len(u.Scheme) <= 1 {
		return readFile(location)
	}

	switch u.Scheme {
	case "file":
		return readFile(filepath.FromSlash(u.Path))
	case "http", "https":
		return f.get(ctx, u.String())
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

func (f *FetchSource) get(ctx context.Context, rawURL string) ([]byte, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status)
	}
	return readLimited(resp.Body)
}

func readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return readLimited(file)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxModelSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxModelSize {
		return nil, ErrTooLarge
	}
	return data, nil
}

// displayName returns the last element of a path or URL.
func displayName(location string) string {
	if u, err := url.Parse(location); err == nil && len(u.Scheme) > 1 {
		return path.Base(u.Path)
	}
	return filepath.Base(location)
}
