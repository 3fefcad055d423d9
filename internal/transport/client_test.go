// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/fiscus-tui/internal/stream"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:    srv.URL,
		APIKey:     "test-sleutel",
		HTTPClient: srv.Client(),
	})
}

func collect(t *testing.T, ch <-chan stream.Fragment) (string, error) {
	t.Helper()
	var sb strings.Builder
	for frag := range ch {
		if frag.Err != nil {
			return sb.String(), frag.Err
		}
		sb.WriteString(frag.Text)
	}
	return sb.String(), nil
}

func TestSendStreamsBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/stream", r.URL.Path)
		assert.Equal(t, "Bearer test-sleutel", r.Header.Get("Authorization"))

		flusher, ok := w.(http.Flusher)
		require.True(t, ok)
		for _, part := range []string{"Het antwoord", " is 42.", "\n###COMPLETE###"} {
			_, _ = w.Write([]byte(part))
			flusher.Flush()
		}
	})

	ch, err := client.Send(context.Background(), stream.Request{Message: "vraag"})
	require.NoError(t, err)

	got, err := collect(t, ch)
	require.NoError(t, err)
	assert.Equal(t, "Het antwoord is 42.\n###COMPLETE###", got)
}

func TestSendMarshalsRequestBody(t *testing.T) {
	var gotBody string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte("ok"))
	})

	ch, err := client.Send(context.Background(), stream.Request{
		ConversationID: "c1",
		Message:        "Hoeveel btw?",
		WebSearch:      true,
	})
	require.NoError(t, err)
	_, _ = collect(t, ch)

	assert.Contains(t, gotBody, `"conversation_id":"c1"`)
	assert.Contains(t, gotBody, `"message":"Hoeveel btw?"`)
	assert.Contains(t, gotBody, `"web_search":true`)
}

func TestSendNon2xxReturnsAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "te veel verzoeken", http.StatusTooManyRequests)
	})

	_, err := client.Send(context.Background(), stream.Request{Message: "vraag"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "te veel verzoeken")
}

func TestSendContextCancelStopsStream(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		_, _ = w.Write([]byte("begin"))
		flusher.Flush()
		<-release
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := client.Send(ctx, stream.Request{Message: "vraag"})
	require.NoError(t, err)

	frag := <-ch
	assert.Equal(t, "begin", frag.Text)
	cancel()

	// The channel must close without delivering a synthetic error for a
	// caller-initiated cancellation.
	for frag := range ch {
		assert.NoError(t, frag.Err)
	}
}

func TestSplitCompleteUTF8(t *testing.T) {
	euro := "€" // 3 bytes

	tests := []struct {
		name         string
		in           []byte
		wantComplete string
		wantRest     string
	}{
		{"pure ascii", []byte("belasting"), "belasting", ""},
		{"complete multibyte", []byte("tarief: " + euro), "tarief: " + euro, ""},
		{"split after first byte", []byte("x" + euro[:1]), "x", euro[:1]},
		{"split after second byte", []byte("x" + euro[:2]), "x", euro[:2]},
		{"empty", nil, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			complete, rest := splitCompleteUTF8(tt.in)
			assert.Equal(t, tt.wantComplete, string(complete))
			assert.Equal(t, tt.wantRest, string(rest))
		})
	}
}

// Multi-byte runes split across network reads must arrive whole.
func TestStreamNeverSplitsRunes(t *testing.T) {
	payload := "Teruggaaf van €1.250 — zie bronnen."
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		// Deliver byte by byte to force splits inside every rune.
		for i := 0; i < len(payload); i++ {
			_, _ = w.Write([]byte{payload[i]})
			flusher.Flush()
		}
	})

	ch, err := client.Send(context.Background(), stream.Request{Message: "vraag"})
	require.NoError(t, err)

	var fragments []string
	for frag := range ch {
		require.NoError(t, frag.Err)
		require.True(t, utf8.ValidString(frag.Text), "fragment %q is no valid UTF-8", frag.Text)
		fragments = append(fragments, frag.Text)
	}
	assert.Equal(t, payload, strings.Join(fragments, ""))
}
