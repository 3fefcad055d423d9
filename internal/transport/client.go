// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/jeranaias/fiscus-tui/internal/stream"
)

// Configuration constants for the fiscus backend.
const (
	// DefaultBaseURL is the production chat endpoint.
	DefaultBaseURL = "https://api.fiscus.nl/v1"

	// DefaultTimeout bounds non-streaming requests.
	DefaultTimeout = 60 * time.Second

	// readBufferSize is the per-read chunk size for the response body.
	readBufferSize = 4096

	// MaxResponseSize caps the cumulative streamed body.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit
)

// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
// No client timeout for streaming - lifetime is controlled via context.
// SECURITY: TLS verification required for production
var sharedStreamingClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: false,
		},
	},
}

// =============================================================================
// ERRORS
// =============================================================================

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend antwoordde met status %d: %s", e.StatusCode, e.Body)
}

// =============================================================================
// CLIENT
// =============================================================================

// Config configures a Client.
type Config struct {
	BaseURL string
	APIKey  string
	// RequestsPerMinute throttles submissions; zero means no throttle.
	RequestsPerMinute int
	// HTTPClient overrides the shared streaming client (tests).
	HTTPClient *http.Client
}

// Client talks to the fiscus chat backend. It satisfies stream.Transport.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient builds a backend client.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = sharedStreamingClient
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		limiter:    limiter,
	}
}

// chatRequest is the wire shape of one submission.
type chatRequest struct {
	ConversationID string        `json:"conversation_id,omitempty"`
	Message        string        `json:"message"`
	History        []chatHistory `json:"history,omitempty"`
	WebSearch      bool          `json:"web_search"`
}

type chatHistory struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Send opens the streaming chat call and delivers the body as raw text
// fragments. The channel closes at end of stream; a transport failure is
// delivered as the final fragment's Err. Fragment boundaries never split a
// UTF-8 rune: an incomplete trailing sequence is carried into the next
// read.
func (c *Client) Send(ctx context.Context, req stream.Request) (<-chan stream.Fragment, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wachten op verzoekslimiet: %w", err)
		}
	}

	body := chatRequest{
		ConversationID: req.ConversationID,
		Message:        req.Message,
		WebSearch:      req.WebSearch,
	}
	for _, msg := range req.History {
		body.History = append(body.History, chatHistory{Role: msg.Role.String(), Content: msg.Content})
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("verzoek serialiseren: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/stream", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("verzoek opbouwen: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/plain")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("verbinding met backend mislukt: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(errBody))}
	}

	ch := make(chan stream.Fragment)
	go c.readBody(ctx, resp.Body, ch)
	return ch, nil
}

// readBody pumps the response body into the fragment channel.
func (c *Client) readBody(ctx context.Context, body io.ReadCloser, ch chan<- stream.Fragment) {
	defer close(ch)
	defer body.Close()

	deliver := func(frag stream.Fragment) bool {
		select {
		case ch <- frag:
			return true
		case <-ctx.Done():
			return false
		}
	}

	buf := make([]byte, readBufferSize)
	var carry []byte // incomplete trailing UTF-8 sequence from the previous read
	var total int64

	for {
		n, err := body.Read(buf)
		if n > 0 {
			total += int64(n)
			if total > MaxResponseSize {
				deliver(stream.Fragment{Err: fmt.Errorf("antwoord overschrijdt limiet van %d bytes", MaxResponseSize)})
				return
			}

			chunk := append(carry, buf[:n]...)
			complete, rest := splitCompleteUTF8(chunk)
			carry = rest
			if len(complete) > 0 {
				if !deliver(stream.Fragment{Text: string(complete)}) {
					return
				}
			}
		}
		if err != nil {
			if len(carry) > 0 {
				// Stream ended mid-rune; emit the bytes as-is rather than
				// dropping them.
				if !deliver(stream.Fragment{Text: string(carry)}) {
					return
				}
			}
			if err != io.EOF && ctx.Err() == nil {
				deliver(stream.Fragment{Err: fmt.Errorf("stream lezen mislukt: %w", err)})
			}
			return
		}
	}
}

// splitCompleteUTF8 splits b into a prefix of whole runes and a trailing
// incomplete sequence (at most utf8.UTFMax-1 bytes) awaiting continuation.
// Invalid bytes that can never complete a rune are passed through whole.
func splitCompleteUTF8(b []byte) (complete, rest []byte) {
	for i := len(b) - 1; i >= 0 && len(b)-i < utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if !utf8.FullRune(b[i:]) {
				return b[:i], b[i:]
			}
			break
		}
	}
	return b, nil
}

// compile-time interface check
var _ stream.Transport = (*Client)(nil)
