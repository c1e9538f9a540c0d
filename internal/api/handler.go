package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tsiudalski/DSW-2025L-GraphRAG/internal/catalog"
	"github.com/tsiudalski/DSW-2025L-GraphRAG/internal/processor"
)

// Conversation is one turn-taking chat session.
type Conversation interface {
	SessionID() string
	Process(ctx context.Context, input string) (processor.Status, string)
}

// NewConversationFunc builds a fresh session processor.
type NewConversationFunc func() Conversation

// Handler serves chat turns and catalog introspection. Sessions live in
// memory; an unknown session_id in a request starts a new one.
type Handler struct {
	catalog *catalog.Catalog
	newConv NewConversationFunc
	logger  *zap.Logger

	mu       sync.Mutex
	sessions map[string]Conversation
}

// NewHandler wires the catalog and the session factory.
func NewHandler(cat *catalog.Catalog, newConv NewConversationFunc, logger *zap.Logger) *Handler {
	return &Handler{
		catalog:  cat,
		newConv:  newConv,
		logger:   logger,
		sessions: make(map[string]Conversation),
	}
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message" binding:"required"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	Answer    string `json:"answer"`
}

// Chat handles one turn of a conversation.
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	conv := h.session(req.SessionID)
	status, answer := conv.Process(c.Request.Context(), req.Message)

	c.JSON(http.StatusOK, chatResponse{
		SessionID: conv.SessionID(),
		Status:    string(status),
		Answer:    answer,
	})
}

// session returns the conversation for id, creating one when the id is
// empty or unknown.
func (h *Handler) session(id string) Conversation {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conv, ok := h.sessions[id]; ok {
		return conv
	}
	conv := h.newConv()
	h.sessions[conv.SessionID()] = conv
	return conv
}

type templateInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Fields      []string `json:"fields"`
}

// ListTemplates returns the registered query templates and their fields.
func (h *Handler) ListTemplates(c *gin.Context) {
	descriptors := h.catalog.List()
	out := make([]templateInfo, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, templateInfo{
			Name:        d.Name,
			Description: d.Description,
			Fields:      d.FieldNames(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"templates": out})
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "up",
		"time":   time.Now().UTC(),
	})
}
