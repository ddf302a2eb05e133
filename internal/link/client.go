// Package link talks to the LED controller over HTTP: single requests,
// a rate-limited health monitor and a fire-and-forget command dispatcher.
package link

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/ayusman/mudra/internal/finger"
)

// Controller endpoints.
const (
	StatusPath = "/status"
	AllOffPath = "/led/all/off"
)

// FingerPath returns the endpoint switching one finger's LED.
func FingerPath(f finger.ID, on bool) string {
	state := "off"
	if on {
		state = "on"
	}
	return "/led/" + f.String() + "/" + state
}

// CommandPath builds a command endpoint from a finger name and state, or
// the all-off endpoint when allOff is set.
func CommandPath(fingerName string, on, allOff bool) (string, error) {
	if allOff {
		return AllOffPath, nil
	}
	f, err := finger.Parse(fingerName)
	if err != nil {
		return "", err
	}
	return FingerPath(f, on), nil
}

// ParseCommand accepts the short "index/on" or "all/off" form, with or
// without the "/led/" prefix, and returns the endpoint path.
func ParseCommand(s string) (string, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "/"), "led/")
	name, state, ok := strings.Cut(s, "/")
	if !ok {
		return "", fmt.Errorf("command %q: want <finger>/<on|off> or all/off", s)
	}
	switch {
	case name == "all" && state == "off":
		return AllOffPath, nil
	case state == "on" || state == "off":
		return CommandPath(name, state == "on", false)
	default:
		return "", fmt.Errorf("command %q: state must be on or off", s)
	}
}

// DefaultTimeout bounds a single request to the controller.
const DefaultTimeout = 1 * time.Second

// maxBody caps how much of a response body is read.
const maxBody = 4096

var (
	// ErrStatus is returned when the controller answers with a non-2xx status.
	ErrStatus = errors.New("unexpected status")
	// ErrUnreachable is returned when the controller cannot be connected to.
	ErrUnreachable = errors.New("controller unreachable")
)

// Doer sends an HTTP request. *http.Client satisfies it; tests use fakes.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient returns an *http.Client tuned for a LAN microcontroller:
// short dial timeout and a small idle pool.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        8,
			MaxIdleConnsPerHost: 8,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// Response is the part of a controller reply the caller needs.
type Response struct {
	StatusCode int
	Body       string
}

// Client issues single GET requests against the controller base URL.
type Client struct {
	baseURL string
	doer    Doer
	timeout time.Duration
}

// NewClient creates a Client. A nil doer gets NewHTTPClient(timeout);
// a non-positive timeout gets DefaultTimeout.
func NewClient(baseURL string, doer Doer, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if doer == nil {
		doer = NewHTTPClient(timeout)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    doer,
		timeout: timeout,
	}
}

// BaseURL returns the controller base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs one GET of path bounded by the client timeout. A non-2xx
// reply is returned together with an error wrapping ErrStatus.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	r := &Response{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return r, fmt.Errorf("get %s: %w %d", path, ErrStatus, resp.StatusCode)
	}
	return r, nil
}

// FailureKind classifies a delivery error.
type FailureKind int

const (
	// FailureNone means no error.
	FailureNone FailureKind = iota
	// FailureTimeout is transient and worth retrying.
	FailureTimeout
	// FailureUnreachable means the host refused or could not be routed to.
	FailureUnreachable
	// FailureStatus means the controller replied with a non-2xx status.
	FailureStatus
	// FailureOther is anything else.
	FailureOther
)

// String returns the kind's name.
func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureTimeout:
		return "timeout"
	case FailureUnreachable:
		return "unreachable"
	case FailureStatus:
		return "status"
	default:
		return "other"
	}
}

// Classify sorts err into a FailureKind. Timeouts are checked first, so a
// dial that times out counts as a timeout rather than unreachable.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureNone
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}

	if errors.Is(err, ErrStatus) {
		return FailureStatus
	}

	if errors.Is(err, ErrUnreachable) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return FailureUnreachable
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return FailureUnreachable
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return FailureUnreachable
	}

	return FailureOther
}
