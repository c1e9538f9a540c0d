package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestClient(baseURL string, timeout time.Duration) *Client {
	c := NewClient(baseURL, "llama2", zap.NewNop())
	c.http.Timeout = timeout
	c.delay = time.Millisecond
	return c
}

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		_, _ = w.Write([]byte(`{"response": "Yes", "done": true}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, time.Second)
	got, err := c.Complete(context.Background(), "is this template appropriate?")
	require.NoError(t, err)
	assert.Equal(t, "Yes", got)
}

func TestCompleteRetriesOnTimeout(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			time.Sleep(200 * time.Millisecond)
			return
		}
		_, _ = w.Write([]byte(`{"response": "eventually", "done": true}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 50*time.Millisecond)
	got, err := c.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "eventually", got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCompleteGivesUpAfterThreeTimeouts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 50*time.Millisecond)
	_, err := c.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out after 3 attempts")
	assert.Equal(t, int32(3), calls.Load())
}

func TestCompleteDoesNotRetryServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "model failed to load", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, time.Second)
	_, err := c.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Equal(t, int32(1), calls.Load(), "non-timeout failures must not be retried")
}

func TestCompleteStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for _, word := range []string{"There ", "are ", "42 ", "rooms."} {
			fmt.Fprintf(w, `{"response": %q, "done": false}`+"\n", word)
			flusher.Flush()
		}
		fmt.Fprintln(w, `{"response": "", "done": true}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, time.Second)
	chunks, err := c.CompleteStream(context.Background(), "prompt")
	require.NoError(t, err)

	var got string
	for chunk := range chunks {
		got += chunk
	}
	assert.Equal(t, "There are 42 rooms.", got)
}

func TestCompleteStreamCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		fmt.Fprintln(w, `{"response": "first", "done": false}`)
		flusher.Flush()
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	c := newTestClient(srv.URL, 0) // no client timeout, cancellation drives shutdown
	chunks, err := c.CompleteStream(ctx, "prompt")
	require.NoError(t, err)

	first, ok := <-chunks
	require.True(t, ok)
	assert.Equal(t, "first", first)

	cancel()
	// The channel closes without yielding further chunks.
	for range chunks {
	}
}

func TestCompleteStreamTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such model", http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, time.Second)
	_, err := c.CompleteStream(context.Background(), "prompt")
	assert.Error(t, err)
}
