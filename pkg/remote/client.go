package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chainguard-dev/clog"

	"github.com/tinygit/tinygit/pkg/object"
)

// ClientOptions configures the transport client.
type ClientOptions struct {
	Timeout     time.Duration // HTTP client timeout (default 60s)
	MaxAttempts int           // retry attempts (default 3)
}

// Response limits per endpoint type.
const (
	responseLimitRefs = 8 << 20   // 8MB
	responseLimitPack = 512 << 20 // 512MB
)

// Client speaks the anonymous smart-HTTP upload-pack protocol: one GET for
// ref discovery, one POST for pack negotiation and retrieval. No
// authentication, no protocol v2, no multi-round negotiation.
type Client struct {
	base        string
	httpClient  *http.Client
	maxAttempts int
}

// NewClient creates a transport client with default options.
func NewClient(remoteURL string) (*Client, error) {
	return NewClientWithOptions(remoteURL, ClientOptions{})
}

// NewClientWithOptions creates a transport client. Zero-value or negative
// fields in opts receive defaults (60s timeout, 3 attempts).
func NewClientWithOptions(remoteURL string, opts ClientOptions) (*Client, error) {
	base, err := normalizeRemoteURL(remoteURL)
	if err != nil {
		return nil, err
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}

	return &Client{
		base: base,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		maxAttempts: opts.MaxAttempts,
	}, nil
}

// URL returns the normalized remote URL.
func (c *Client) URL() string {
	return c.base
}

func normalizeRemoteURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("remote URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse remote URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("remote URL must include scheme and host")
	}
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/"), nil
}

// DiscoverRefs fetches and parses the server's ref advertisement.
func (c *Client) DiscoverRefs(ctx context.Context) (*Advertisement, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/info/refs?service="+uploadPackService, nil)
	if err != nil {
		return nil, err
	}

	body, err := c.do(req, responseLimitRefs, "application/x-git-upload-pack-advertisement")
	if err != nil {
		return nil, fmt.Errorf("ref discovery: %w", err)
	}

	adv, err := parseAdvertisement(body)
	if err != nil {
		return nil, fmt.Errorf("ref discovery: %w", err)
	}
	clog.FromContext(ctx).Infof("discovered %d refs from %s", len(adv.Refs), c.base)
	return adv, nil
}

// FetchPack sends one "want" per hash plus a flush and "done", and returns
// the raw pack bytes from the response. A leading pkt-lined "NAK\n"
// acknowledgment is detected and skipped.
func (c *Client) FetchPack(ctx context.Context, wants []object.Hash) ([]byte, error) {
	if len(wants) == 0 {
		return nil, fmt.Errorf("fetch pack: at least one want hash is required")
	}

	var reqBody []byte
	for _, h := range wants {
		if err := h.Validate(); err != nil {
			return nil, fmt.Errorf("fetch pack: want: %w", err)
		}
		reqBody = appendPktLine(reqBody, "want "+string(h)+"\n")
	}
	reqBody = appendFlushPkt(reqBody)
	reqBody = appendPktLine(reqBody, "done\n")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/"+uploadPackService, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-git-upload-pack-request")
	req.Header.Set("Accept", "application/x-git-upload-pack-result")

	body, err := c.do(req, responseLimitPack, "application/x-git-upload-pack-result")
	if err != nil {
		return nil, fmt.Errorf("fetch pack: %w", err)
	}

	pack, err := stripAckPrefix(body)
	if err != nil {
		return nil, fmt.Errorf("fetch pack: %w", err)
	}
	clog.FromContext(ctx).Infof("received %d pack bytes for %d wants", len(pack), len(wants))
	return pack, nil
}

// stripAckPrefix removes the optional pkt-lined "NAK\n" line preceding the
// raw pack bytes.
func stripAckPrefix(body []byte) ([]byte, error) {
	if bytes.HasPrefix(body, []byte("PACK")) {
		return body, nil
	}
	s := &pktScanner{buf: body}
	line, flush, err := s.next()
	if err != nil {
		return nil, err
	}
	if flush || !bytes.Equal(trimLF(line), []byte("NAK")) {
		return nil, fmt.Errorf("%w: expected NAK or pack data, got %q", ErrProtocol, line)
	}
	rest := s.rest()
	if !bytes.HasPrefix(rest, []byte("PACK")) {
		return nil, fmt.Errorf("%w: no pack data after NAK", ErrProtocol)
	}
	return rest, nil
}

// do executes a request with retries, enforces a response size limit, and
// validates the response content type. Responses advertising a gzip
// Content-Encoding are decompressed transparently.
func (c *Client) do(req *http.Request, maxBytes int64, expectedContentType string) ([]byte, error) {
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := retryDo(c.httpClient, req, c.maxAttempts)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if readErr != nil {
		return nil, readErr
	}
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("remote request failed (%s %s): %s", req.Method, req.URL.Path, msg)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, expectedContentType) {
		return nil, fmt.Errorf("%w: unexpected content type %q (expected %s)", ErrProtocol, ct, expectedContentType)
	}

	if isGzipEncoded(resp.Header.Get("Content-Encoding")) {
		body, err = decompressGzip(body)
		if err != nil {
			return nil, fmt.Errorf("%w: decompress response: %v", ErrProtocol, err)
		}
	}
	return body, nil
}
