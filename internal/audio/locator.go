package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// maxClipSize bounds how much of a clip is read into memory.
const maxClipSize = 16 << 20

// ErrClipTooLarge is returned for clips over the locator's size limit.
var ErrClipTooLarge = errors.New("clip too large")

// Locator resolves clip references such as "/audio/ka.mp3".
//
// Rooted references are looked up under Root first, then as absolute
// file paths, then fetched from BaseURL. http and https URLs are always
// fetched directly.
type Locator struct {
	Root    string
	BaseURL string
	Client  *http.Client
	MaxSize int64 // Bytes; zero means 16 MiB
}

// Load returns the encoded clip bytes.
func (l *Locator) Load(ctx context.Context, ref string) ([]byte, error) {
	if ref == "" {
		return nil, fmt.Errorf("empty clip reference")
	}

	if isURL(ref) {
		return l.fetch(ctx, ref)
	}

	if path, ok := l.Resolve(ref); ok {
		data, err := l.readFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading clip: %w", err)
		}
		return data, nil
	}

	if l.BaseURL != "" {
		u, err := url.JoinPath(l.BaseURL, strings.TrimPrefix(ref, "/"))
		if err != nil {
			return nil, fmt.Errorf("building clip URL: %w", err)
		}
		return l.fetch(ctx, u)
	}

	return nil, fmt.Errorf("clip %s: %w", ref, fs.ErrNotExist)
}

// Resolve maps ref to a local file that exists.
func (l *Locator) Resolve(ref string) (string, bool) {
	if l.Root != "" {
		p := filepath.Join(l.Root, filepath.FromSlash(strings.TrimPrefix(ref, "/")))
		if fileExists(p) {
			return p, true
		}
	}
	if filepath.IsAbs(ref) && fileExists(ref) {
		return ref, true
	}
	return "", false
}

func (l *Locator) fetch(ctx context.Context, u string) ([]byte, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching clip: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching clip %s: status %d", u, resp.StatusCode)
	}

	data, err := l.readLimited(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading clip body: %w", err)
	}
	return data, nil
}

func isURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (l *Locator) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return l.readLimited(f)
}

// readLimited reads all of r, failing instead of truncating when r holds
// more than the size limit.
func (l *Locator) readLimited(r io.Reader) ([]byte, error) {
	limit := l.MaxSize
	if limit <= 0 {
		limit = maxClipSize
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: over %d bytes", ErrClipTooLarge, limit)
	}
	return data, nil
}
