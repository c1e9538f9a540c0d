package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tsiudalski/DSW-2025L-GraphRAG/internal/catalog"
	"github.com/tsiudalski/DSW-2025L-GraphRAG/internal/processor"
)

type fakeConversation struct {
	id     string
	status processor.Status
	answer string
	inputs []string
}

func (f *fakeConversation) SessionID() string { return f.id }

func (f *fakeConversation) Process(_ context.Context, input string) (processor.Status, string) {
	f.inputs = append(f.inputs, input)
	return f.status, f.answer
}

func newTestServer(t *testing.T, newConv NewConversationFunc) *Server {
	t.Helper()
	if newConv == nil {
		n := 0
		newConv = func() Conversation {
			n++
			return &fakeConversation{
				id:     fmt.Sprintf("session-%d", n),
				status: processor.StatusReset,
				answer: "done",
			}
		}
	}
	handler := NewHandler(catalog.Default(), newConv, zap.NewNop())
	return NewServer(handler, ":0", zap.NewNop())
}

func postChat(t *testing.T, srv *Server, body map[string]string) (*httptest.ResponseRecorder, chatResponse) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	srv.Engine().ServeHTTP(rec, req)

	var resp chatResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestChatCreatesSession(t *testing.T) {
	srv := newTestServer(t, nil)

	rec, resp := postChat(t, srv, map[string]string{"message": "how many rooms on floor 2"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "session-1", resp.SessionID)
	assert.Equal(t, "RESET", resp.Status)
	assert.Equal(t, "done", resp.Answer)
}

func TestChatReusesSession(t *testing.T) {
	conv := &fakeConversation{id: "abc", status: processor.StatusContinue, answer: "which floor?"}
	created := 0
	srv := newTestServer(t, func() Conversation {
		created++
		return conv
	})

	_, first := postChat(t, srv, map[string]string{"message": "how many rooms"})
	require.Equal(t, "abc", first.SessionID)

	_, second := postChat(t, srv, map[string]string{"session_id": "abc", "message": "floor 2"})
	assert.Equal(t, "abc", second.SessionID)

	assert.Equal(t, 1, created)
	assert.Equal(t, []string{"how many rooms", "floor 2"}, conv.inputs)
}

func TestChatUnknownSessionStartsFresh(t *testing.T) {
	srv := newTestServer(t, nil)

	_, resp := postChat(t, srv, map[string]string{"session_id": "never-seen", "message": "hi"})
	assert.Equal(t, "session-1", resp.SessionID)
}

func TestChatRejectsMissingMessage(t *testing.T) {
	srv := newTestServer(t, nil)

	rec, _ := postChat(t, srv, map[string]string{"session_id": "abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTemplates(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/templates", nil)
	srv.Engine().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Templates []templateInfo `json:"templates"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Templates, catalog.Default().Len())

	byName := make(map[string]templateInfo)
	for _, info := range body.Templates {
		byName[info.Name] = info
	}
	rooms, ok := byName["count_rooms_on_floor"]
	require.True(t, ok)
	assert.Equal(t, []string{"floor"}, rooms.Fields)
	assert.NotEmpty(t, rooms.Description)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	srv.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"up"`)
}
