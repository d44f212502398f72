package fetch

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// Class buckets download failures by how the caller should react.
type Class int

const (
	// ClassRetryable covers timeouts, resets and server-side errors: worth
	// trying the next user agent and, above that, another refresh attempt.
	ClassRetryable Class = iota

	// ClassAuth covers 401/403. Some providers reject specific agent strings,
	// so these still rotate agents, but once every agent has failed the user
	// message points at credentials and subscription expiry.
	ClassAuth

	// ClassFatal covers DNS and TLS failures and malformed URLs: retrying
	// cannot help, surface immediately.
	ClassFatal
)

// Error is a classified download failure.
type Error struct {
	Class      Class
	StatusCode int
	Agents     int // user agents exhausted before giving up
	Err        error

	// reset marks connection resets, which get the longer inter-agent delay.
	reset bool
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("playlist download failed: HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("playlist download failed: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// classifyTransport maps a transport-level error onto the taxonomy. The
// per-request timeout check must run before the context sentinels: the HTTP
// client's own timeout error also matches context.DeadlineExceeded via
// errors.Is, and a timed-out agent is still worth rotating past. Only
// cancellation visible on ctx itself is ambient and therefore fatal.
func classifyTransport(ctx context.Context, err error) *Error {
	if ctx.Err() != nil {
		return &Error{Class: ClassFatal, Err: err}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{Class: ClassFatal, Err: err}
	}

	var (
		unknownAuthority x509.UnknownAuthorityError
		certInvalid      x509.CertificateInvalidError
		hostnameErr      x509.HostnameError
		recordHeader     tls.RecordHeaderError
		certVerify       *tls.CertificateVerificationError
	)
	if errors.As(err, &unknownAuthority) || errors.As(err, &certInvalid) ||
		errors.As(err, &hostnameErr) || errors.As(err, &recordHeader) ||
		errors.As(err, &certVerify) {
		return &Error{Class: ClassFatal, Err: err}
	}

	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return &Error{Class: ClassRetryable, Err: err, reset: true}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Class: ClassRetryable, Err: err}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Class: ClassFatal, Err: err}
	}

	return &Error{Class: ClassRetryable, Err: err}
}
