package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// defaultUserAgents is the rotation order. IPTV panels are picky: some only
// answer player agents, some only browser agents, so the list mixes both.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"VLC/3.0.20 LibVLC/3.0.20",
	"Lavf/60.3.100",
	"okhttp/4.12.0",
	"Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
}

const (
	// shortDelay separates user-agent attempts after an HTTP error or timeout.
	shortDelay = 500 * time.Millisecond
	// resetDelay gives a provider that dropped the connection time to recover.
	resetDelay = 2 * time.Second
)

// Fetcher downloads a playlist to a local staging file. Staging decouples the
// network socket lifetime from parse duration: a slow parse can no longer
// trigger a read timeout on an already-received payload.
type Fetcher struct {
	client     *http.Client
	userAgents []string
	stagingDir string
	logger     zerolog.Logger

	// delays are fields so tests can shrink them.
	shortDelay time.Duration
	resetDelay time.Duration
}

// New builds a Fetcher staging files under dir. Compression is disabled on
// the transport because several panels serve broken gzip.
func New(dir string, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: 5 * time.Minute,
			Transport: &http.Transport{
				DisableCompression: true,
				Proxy:              http.ProxyFromEnvironment,
			},
		},
		userAgents: defaultUserAgents,
		stagingDir: dir,
		logger:     logger,
		shortDelay: shortDelay,
		resetDelay: resetDelay,
	}
}

// Download fetches rawURL, rotating user agents on retryable failures, and
// returns the staging file path. The caller removes the file. Fatal outcomes
// (DNS, TLS, bad scheme, cancellation) stop the rotation immediately.
func (f *Fetcher) Download(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", &Error{Class: ClassFatal, Err: fmt.Errorf("unsupported playlist URL %q", rawURL)}
	}

	var lastErr *Error
	for i, agent := range f.userAgents {
		path, ferr := f.tryAgent(ctx, rawURL, agent)
		if ferr == nil {
			return path, nil
		}
		if ferr.Class == ClassFatal {
			ferr.Agents = i + 1
			return "", ferr
		}

		f.logger.Warn().
			Int("agent", i+1).
			Int("agents_total", len(f.userAgents)).
			Int("status", ferr.StatusCode).
			Err(ferr.Err).
			Msg("playlist download attempt failed")
		lastErr = ferr

		if i < len(f.userAgents)-1 {
			delay := f.shortDelay
			if ferr.reset {
				delay = f.resetDelay
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", &Error{Class: ClassFatal, Err: ctx.Err()}
			}
		}
	}
	lastErr.Agents = len(f.userAgents)
	return "", lastErr
}

// tryAgent performs one request with one user agent and stages the body.
func (f *Fetcher) tryAgent(ctx context.Context, rawURL, agent string) (string, *Error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &Error{Class: ClassFatal, Err: err}
	}
	req.Header.Set("User-Agent", agent)
	req.Header.Set("Accept", "*/*")
	// Some panels send gzip bodies with a plain content-type; asking for
	// identity sidesteps the whole problem.
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", classifyTransport(ctx, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return f.stage(ctx, resp.Body)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", &Error{Class: ClassAuth, StatusCode: resp.StatusCode, Err: fmt.Errorf("provider rejected request")}
	default:
		// 5xx, the non-standard >600 codes some panels return, and anything
		// else unexpected: try the next agent.
		return "", &Error{Class: ClassRetryable, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status")}
	}
}

// stage copies the full response body to a local file before parsing begins.
// A failed copy removes the partial file and is retryable: resets mid-body
// are the most common provider failure mode.
func (f *Fetcher) stage(ctx context.Context, body io.Reader) (string, *Error) {
	if err := os.MkdirAll(f.stagingDir, 0o755); err != nil {
		return "", &Error{Class: ClassFatal, Err: err}
	}
	path := filepath.Join(f.stagingDir, "playlist-"+uuid.NewString()+".m3u")
	out, err := os.Create(path)
	if err != nil {
		return "", &Error{Class: ClassFatal, Err: err}
	}

	n, err := io.Copy(out, body)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		ferr := classifyTransport(ctx, err)
		ferr.Err = fmt.Errorf("reading playlist body after %d bytes: %w", n, ferr.Err)
		return "", ferr
	}

	f.logger.Debug().Int64("bytes", n).Str("path", path).Msg("playlist staged")
	return path, nil
}
