package ruleset

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

//go:embed openai.list
var defaultList []byte

// MaxListSize caps the size of a rule list read from any source.
const MaxListSize = 4 << 20

// Source yields the raw bytes of a rule list.
type Source interface {
	Load(ctx context.Context) ([]byte, error)
	String() string
}

// EmbeddedSource serves the rule list compiled into the binary.
type EmbeddedSource struct{}

// Load returns the embedded list.
func (EmbeddedSource) Load(context.Context) ([]byte, error) {
	return defaultList, nil
}

func (EmbeddedSource) String() string {
	return "embedded:openai.list"
}

// FileSource reads a rule list from the local filesystem.
type FileSource struct {
	Path string
}

// Load reads the file at Path.
func (s FileSource) Load(context.Context) ([]byte, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rule list %q: %w", s.Path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxListSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read rule list %q: %w", s.Path, err)
	}
	if len(data) > MaxListSize {
		return nil, fmt.Errorf("rule list %q exceeds %d bytes", s.Path, MaxListSize)
	}
	return data, nil
}

func (s FileSource) String() string {
	return "file:" + s.Path
}

// URLSource downloads a rule list over HTTP.
type URLSource struct {
	URL     string
	Timeout time.Duration

	// Client defaults to http.DefaultClient.
	Client *http.Client

	// Prepare, if set, is called on the request before it is sent.
	Prepare func(*http.Request)
}

// Load fetches URL and returns the body.
func (s URLSource) Load(ctx context.Context) ([]byte, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %q: %w", s.URL, err)
	}

	req.Header.Set("Accept", "text/plain")
	if s.Prepare != nil {
		s.Prepare(req)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rule list %q: %w", s.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch rule list %q: unexpected status %s", s.URL, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxListSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read rule list %q: %w", s.URL, err)
	}
	if len(data) > MaxListSize {
		return nil, fmt.Errorf("rule list %q exceeds %d bytes", s.URL, MaxListSize)
	}
	return data, nil
}

func (s URLSource) String() string {
	return "url:" + s.URL
}
