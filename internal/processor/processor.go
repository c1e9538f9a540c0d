// Package processor drives one conversation: it accumulates user text
// across turns, resolves it to a validated template instance via the
// selector and extractor, and either executes the query and synthesizes an
// answer (RESET) or asks the user for more input (CONTINUE). It is the one
// place that converts unexpected failures into a terminal user-facing
// message so the session loop never crashes.
package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tsiudalski/DSW-2025L-GraphRAG/internal/catalog"
	"github.com/tsiudalski/DSW-2025L-GraphRAG/internal/selector"
	"github.com/tsiudalski/DSW-2025L-GraphRAG/internal/sparql"
)

// Status tells the caller what to do with the turn's reply.
type Status string

const (
	// StatusContinue means the turn needs more or corrected input; the
	// buffered text is retained for the next input event.
	StatusContinue Status = "CONTINUE"

	// StatusReset means the turn resolved, successfully or terminally; the
	// buffer is cleared.
	StatusReset Status = "RESET"
)

// correctionMarker separates the original question from follow-up
// corrections in the buffer, so the extractor sees amendments in context.
const correctionMarker = " --- "

const (
	noTemplateMessage = "I couldn't find a suitable query template for your question."
	internalErrorMsg  = "Something went wrong while processing your question. Please try again."
)

// TemplateSelector picks a template for buffered question text.
type TemplateSelector interface {
	Select(ctx context.Context, query string) (*catalog.Descriptor, error)
}

// ParameterExtractor pulls raw parameters for a template out of the text.
type ParameterExtractor interface {
	Extract(ctx context.Context, query string, d *catalog.Descriptor) (map[string]string, error)
}

// QueryClient executes rendered queries against the store.
type QueryClient interface {
	Select(ctx context.Context, query string) ([]sparql.Row, error)
}

// Generator synthesizes the natural-language answer.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteStream(ctx context.Context, prompt string) (<-chan string, error)
}

// Processor holds one conversation's state. It is not safe for concurrent
// use; each session owns its own Processor.
type Processor struct {
	selector  TemplateSelector
	extractor ParameterExtractor
	store     QueryClient
	llm       Generator
	logger    *zap.Logger

	sessionID string
	buffer    string
}

// New creates a Processor with an empty buffer and a fresh session id.
func New(sel TemplateSelector, ext ParameterExtractor, store QueryClient, llm Generator, logger *zap.Logger) *Processor {
	id := uuid.NewString()
	return &Processor{
		selector:  sel,
		extractor: ext,
		store:     store,
		llm:       llm,
		logger:    logger.With(zap.String("session", id)),
		sessionID: id,
	}
}

// SessionID returns the conversation's identifier.
func (p *Processor) SessionID() string {
	return p.sessionID
}

// Process handles one input event and returns the turn status with the
// reply text. On StatusContinue the buffer is retained (and annotated) for
// the next event; on StatusReset it is cleared.
func (p *Processor) Process(ctx context.Context, input string) (status Status, reply string) {
	defer p.recoverTurn(&status, &reply)

	instance, failStatus, failReply := p.resolve(ctx, input)
	if instance == nil {
		return failStatus, failReply
	}

	rows, err := p.execute(ctx, instance)
	if err != nil {
		p.reset()
		return StatusReset, fmt.Sprintf("Error processing your query: %s.", err)
	}

	question := p.buffer
	p.reset()

	answer, err := p.llm.Complete(ctx, synthesisPrompt(rows, question))
	if err != nil {
		return StatusReset, fmt.Sprintf("Error generating response: %s.", err)
	}
	return StatusReset, answer
}

// ProcessStream is Process with streaming synthesis: when the query
// executes, the answer arrives as a finite chunk sequence and the returned
// reply is empty. For CONTINUE turns and terminal errors the channel is nil
// and reply carries the message, exactly like Process.
func (p *Processor) ProcessStream(ctx context.Context, input string) (status Status, reply string, answer <-chan string) {
	defer p.recoverTurn(&status, &reply)

	instance, failStatus, failReply := p.resolve(ctx, input)
	if instance == nil {
		return failStatus, failReply, nil
	}

	rows, err := p.execute(ctx, instance)
	if err != nil {
		p.reset()
		return StatusReset, fmt.Sprintf("Error processing your query: %s.", err), nil
	}

	question := p.buffer
	p.reset()

	chunks, err := p.llm.CompleteStream(ctx, synthesisPrompt(rows, question))
	if err != nil {
		return StatusReset, fmt.Sprintf("Error generating response: %s.", err), nil
	}
	return StatusReset, "", chunks
}

// resolve appends the input to the buffer and runs selection, extraction,
// and validation. It returns a usable instance, or the status and message
// for a turn that cannot execute. CONTINUE outcomes retain the buffer.
func (p *Processor) resolve(ctx context.Context, input string) (*catalog.Instance, Status, string) {
	p.append(input)

	descriptor, err := p.selector.Select(ctx, p.buffer)
	if errors.Is(err, selector.ErrNoTemplate) {
		p.markCorrection()
		return nil, StatusContinue, noTemplateMessage
	}
	if err != nil {
		p.logger.Error("template selection failed", zap.Error(err))
		p.reset()
		return nil, StatusReset, fmt.Sprintf("Error processing your query: %s.", err)
	}
	p.logger.Info("resolved template", zap.String("template", descriptor.Name))

	raw, err := p.extractor.Extract(ctx, p.buffer, descriptor)
	if err != nil {
		p.logger.Error("parameter extraction failed", zap.Error(err))
		p.reset()
		return nil, StatusReset, fmt.Sprintf("Error processing your query: %s.", err)
	}

	instance, fieldErrors, missing := descriptor.Validate(raw)
	if instance == nil {
		p.markCorrection()
		return nil, StatusContinue, validationMessage(descriptor, raw, fieldErrors, missing)
	}
	return instance, "", ""
}

func (p *Processor) execute(ctx context.Context, instance *catalog.Instance) ([]sparql.Row, error) {
	query, err := instance.Render()
	if err != nil {
		return nil, err
	}
	p.logger.Debug("rendered query",
		zap.String("template", instance.Descriptor.Name),
		zap.String("query", query))
	return p.store.Select(ctx, query)
}

// append extends the buffer with a new input event.
func (p *Processor) append(input string) {
	if p.buffer == "" {
		p.buffer = input
		return
	}
	p.buffer += "\n" + input
}

// markCorrection annotates the retained buffer so the next extraction pass
// sees the upcoming input as an amendment, not a new question.
func (p *Processor) markCorrection() {
	if !strings.HasSuffix(p.buffer, correctionMarker) {
		p.buffer += correctionMarker
	}
}

func (p *Processor) reset() {
	p.buffer = ""
}

// recoverTurn is the outermost boundary: any panic during the turn becomes
// a terminal RESET with a generic message instead of crashing the session.
func (p *Processor) recoverTurn(status *Status, reply *string) {
	if r := recover(); r != nil {
		p.logger.Error("unexpected failure during turn", zap.Any("panic", r))
		p.reset()
		*status = StatusReset
		*reply = internalErrorMsg
	}
}

// validationMessage lists every missing field with its description and
// every invalid field with its raw value and failure reason, never stopping
// at the first problem.
func validationMessage(d *catalog.Descriptor, raw map[string]string, fieldErrors map[string]string, missing []string) string {
	var sb strings.Builder

	if len(missing) > 0 {
		described := make([]string, 0, len(missing))
		for _, name := range missing {
			described = append(described, fmt.Sprintf("%s - %s", name, d.FieldDescription(name)))
		}
		fmt.Fprintf(&sb, "Please provide the following information: %s\n", strings.Join(described, ", "))
	}

	if len(fieldErrors) > 0 {
		sb.WriteString("Some parameters are invalid:\n")
		// Report in schema order for a stable message.
		for _, name := range d.FieldNames() {
			if reason, ok := fieldErrors[name]; ok {
				fmt.Fprintf(&sb, "%s (got %q): %s\n", name, raw[name], reason)
			}
		}
		sb.WriteString("Please try to provide these parameters in a correct format.")
	}

	return strings.TrimRight(sb.String(), "\n")
}

// synthesisPrompt embeds the question and serialized rows, asking for a
// direct, evidence-grounded answer. Empty results must be acknowledged.
func synthesisPrompt(rows []sparql.Row, question string) string {
	serialized, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		serialized = []byte("[]")
	}

	return fmt.Sprintf(`You are a helpful assistant that provides clear and concise answers based on query results.

User question: %s

Query results: %s

Instructions:
1. Provide a direct answer to the user's question
2. Use the query results to support your answer
3. Keep the response concise and clear
4. If there are no results, say so clearly

Answer:`, question, serialized)
}
