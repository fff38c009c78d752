// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/docbud-tui/internal/document"
	"github.com/jeranaias/docbud-tui/internal/storage"
)

// =============================================================================
// STATES AND MESSAGES
// =============================================================================

// UploadState is the document upload state.
type UploadState int

const (
	NoFile UploadState = iota
	FileSelected
	Uploading
	Ready
)

func (s UploadState) String() string {
	switch s {
	case NoFile:
		return "no_file"
	case FileSelected:
		return "file_selected"
	case Uploading:
		return "uploading"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// QAState is the question state.
type QAState int

const (
	Idle QAState = iota
	Asking
)

func (s QAState) String() string {
	if s == Asking {
		return "asking"
	}
	return "idle"
}

// User-facing messages.
const (
	MsgNotPDF       = "Please select a PDF file."
	MsgUploadFailed = "Failed to upload PDF. Please try again."
	MsgAnswerFailed = "Failed to get answer. Please try again."
	MsgSaveFailed   = "Could not save conversation history."

	// DefaultDocumentName labels conversations stored without one.
	DefaultDocumentName = "Document"
)

// ErrBusy is returned when an operation conflicts with an upload in flight.
var ErrBusy = errors.New("an upload is in progress")

// Backend is the subset of the backend client the controller needs.
type Backend interface {
	UploadPDF(ctx context.Context, filename string, r io.Reader) error
	AskQuestion(ctx context.Context, question string) (string, error)
}

// UploadRequest is handed out by BeginUpload and returned to CompleteUpload.
type UploadRequest struct {
	Document *document.Document
	gen      uint64
}

// QuestionRequest is handed out by BeginQuestion and returned to
// CompleteQuestion.
type QuestionRequest struct {
	Question string
	gen      uint64
}

type pendingQuestion struct {
	op     storage.ExchangeAppend
	convID string
	gen    uint64
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the in-memory chat state: the selected document, the
// current conversation pointer, the displayed history, the in-flight
// question and the single active reveal. It is not safe for concurrent use.
type Controller struct {
	store  *storage.Store
	client Backend

	// Now is the clock for exchange timestamps. Tests replace it.
	Now func() time.Time

	upload      UploadState
	doc         *document.Document
	docName     string
	uploadErr   string
	uploadGen   uint64
	qa          QAState
	questionErr string
	persistErr  string
	history     []storage.Exchange
	currentID   string

	pending   *pendingQuestion
	qaGen     uint64
	reveal    *Reveal
	revealGen uint64
}

// NewController returns a controller in the NoFile state.
func NewController(store *storage.Store, client Backend) *Controller {
	return &Controller{
		store:  store,
		client: client,
		Now:    time.Now,
	}
}

// Store returns the conversation store.
func (c *Controller) Store() *storage.Store { return c.store }

// Client returns the backend client.
func (c *Controller) Client() Backend { return c.client }

// =============================================================================
// ACCESSORS
// =============================================================================

func (c *Controller) UploadState() UploadState { return c.upload }
func (c *Controller) QAState() QAState         { return c.qa }
func (c *Controller) UploadError() string      { return c.uploadErr }
func (c *Controller) QuestionError() string    { return c.questionErr }
func (c *Controller) PersistError() string     { return c.persistErr }
func (c *Controller) CurrentID() string        { return c.currentID }

// Document returns the selected document, nil when none is selected or the
// conversation was loaded from history.
func (c *Controller) Document() *document.Document { return c.doc }

// DocumentName returns the name shown for the active document.
func (c *Controller) DocumentName() string { return c.docName }

// History returns a copy of the displayed exchanges.
func (c *Controller) History() []storage.Exchange {
	return append([]storage.Exchange(nil), c.history...)
}

// Conversations lists stored conversations, most recent first.
func (c *Controller) Conversations() []storage.Conversation {
	return c.store.List()
}

// Revealing reports whether an answer is being revealed and returns the
// visible text and the timestamp of the exchange it belongs to.
func (c *Controller) Revealing() (text string, timestamp int64, ok bool) {
	if c.reveal == nil {
		return "", 0, false
	}
	return c.reveal.Text(), c.reveal.timestamp, true
}

// RevealGeneration returns the generation of the active reveal, 0 if none.
func (c *Controller) RevealGeneration() uint64 {
	if c.reveal == nil {
		return 0
	}
	return c.reveal.gen
}

// =============================================================================
// UPLOAD FLOW
// =============================================================================

// SelectFile validates path and makes it the document to upload. A file
// that is not a PDF records MsgNotPDF and leaves the state unchanged.
func (c *Controller) SelectFile(path string) error {
	if c.upload == Uploading {
		return ErrBusy
	}

	doc, err := document.Open(path)
	if err != nil {
		if errors.Is(err, document.ErrNotPDF) {
			c.uploadErr = MsgNotPDF
		} else {
			c.uploadErr = "Cannot open file: " + rootCause(err)
		}
		log.Debug().Err(err).Str("path", path).Msg("file rejected")
		return err
	}

	c.doc = doc
	c.docName = doc.Name
	c.uploadErr = ""
	c.upload = FileSelected
	return nil
}

// BeginUpload moves a selected file to Uploading.
func (c *Controller) BeginUpload() (UploadRequest, bool) {
	if c.upload != FileSelected || c.doc == nil {
		return UploadRequest{}, false
	}
	c.upload = Uploading
	c.uploadErr = ""
	c.uploadGen++
	return UploadRequest{Document: c.doc, gen: c.uploadGen}, true
}

// CompleteUpload applies the result of an upload. On success the displayed
// history is cleared and a new conversation is created and made current.
// Results for an upload abandoned by NewChat are ignored.
func (c *Controller) CompleteUpload(ctx context.Context, req UploadRequest, err error) {
	if req.gen != c.uploadGen || c.upload != Uploading {
		log.Debug().Uint64("gen", req.gen).Msg("stale upload result ignored")
		return
	}

	if err != nil {
		log.Warn().Err(err).Str("document", req.Document.Name).Msg("upload failed")
		c.upload = FileSelected
		c.uploadErr = MsgUploadFailed
		return
	}

	c.flushReveal(ctx)
	c.abandonQuestion()
	c.history = nil
	c.questionErr = ""
	c.upload = Ready

	conv, err := c.store.CreateConversation(ctx, req.Document.Name)
	if err != nil {
		log.Error().Err(err).Msg("failed to record conversation")
		c.persistErr = MsgSaveFailed
		c.currentID = ""
		return
	}
	c.persistErr = ""
	c.currentID = conv.ID
}

// Upload performs a full upload synchronously.
func (c *Controller) Upload(ctx context.Context) error {
	req, ok := c.BeginUpload()
	if !ok {
		return errors.New("no file selected")
	}
	err := func() error {
		r, err := req.Document.Reader()
		if err != nil {
			return err
		}
		defer r.Close()
		return c.client.UploadPDF(ctx, req.Document.Name, r)
	}()
	c.CompleteUpload(ctx, req, err)
	return err
}

// NewChat returns to NoFile from any state. The store is untouched apart
// from committing an answer that was still being revealed.
func (c *Controller) NewChat(ctx context.Context) {
	c.flushReveal(ctx)
	c.reset()
}

func (c *Controller) reset() {
	c.discardReveal()
	c.doc = nil
	c.docName = ""
	c.upload = NoFile
	c.uploadErr = ""
	c.uploadGen++
	c.questionErr = ""
	c.history = nil
	c.currentID = ""
	c.abandonQuestion()
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

// LoadConversation makes a stored conversation current and shows its
// history.
func (c *Controller) LoadConversation(ctx context.Context, id string) error {
	if c.upload == Uploading {
		return ErrBusy
	}
	conv, ok := c.store.Get(id)
	if !ok {
		return storage.ErrConversationNotFound
	}

	c.flushReveal(ctx)
	c.abandonQuestion()

	// re-read: flushing may have persisted into this conversation
	if fresh, ok := c.store.Get(id); ok {
		conv = fresh
	}

	c.currentID = conv.ID
	c.history = conv.Messages
	c.doc = nil
	c.docName = conv.DocumentName
	if c.docName == "" {
		c.docName = DefaultDocumentName
	}
	c.upload = Ready
	c.uploadErr = ""
	c.questionErr = ""
	return nil
}

// DeleteConversation removes a conversation. Deleting the current one
// resets to NoFile; any other selection is unaffected.
func (c *Controller) DeleteConversation(ctx context.Context, id string) error {
	if err := c.store.DeleteConversation(ctx, id); err != nil {
		return err
	}
	if id == c.currentID {
		c.reset()
	} else if c.reveal != nil && c.reveal.convID == id {
		c.reveal.convID = ""
	}
	return nil
}

// ClearChat empties the displayed history and persists an empty history
// for the current conversation.
func (c *Controller) ClearChat(ctx context.Context) error {
	c.discardReveal()
	c.abandonQuestion()
	c.history = nil
	c.questionErr = ""

	if c.currentID == "" {
		return nil
	}
	if err := c.store.ClearExchanges(ctx, c.currentID); err != nil {
		c.persistErr = MsgSaveFailed
		return err
	}
	return nil
}

// Reload re-reads the store after another process changed it. A current
// conversation that was deleted elsewhere resets to NoFile; otherwise the
// displayed history is left alone.
func (c *Controller) Reload(ctx context.Context) error {
	if err := c.store.Reload(ctx); err != nil {
		return err
	}
	if c.currentID != "" {
		if _, ok := c.store.Get(c.currentID); !ok {
			c.reset()
		}
	}
	return nil
}

// =============================================================================
// QUESTION FLOW
// =============================================================================

// BeginQuestion starts a question. Blank input, no ready document, or a
// question already in flight make it a silent no-op. The question is shown
// immediately with an empty answer; nothing is persisted yet.
func (c *Controller) BeginQuestion(ctx context.Context, input string) (QuestionRequest, bool) {
	question := norm.NFC.String(strings.TrimSpace(input))
	if question == "" || c.upload != Ready || c.qa == Asking {
		return QuestionRequest{}, false
	}

	c.flushReveal(ctx)

	ts := storage.NextExchangeTimestamp(c.history, c.Now().UnixMilli())
	op := storage.ExchangeAppend{Exchange: storage.Exchange{Question: question, Timestamp: ts}}
	c.history = op.Apply(c.history)

	c.qa = Asking
	c.questionErr = ""
	c.qaGen++
	c.pending = &pendingQuestion{op: op, convID: c.currentID, gen: c.qaGen}

	return QuestionRequest{Question: question, gen: c.qaGen}, true
}

// CompleteQuestion applies the backend result. On failure the optimistic
// exchange is reverted and MsgAnswerFailed recorded. On success a reveal
// starts; its generation is returned so the caller can schedule ticks.
// Results for a question abandoned by NewChat, ClearChat or a conversation
// switch are ignored.
func (c *Controller) CompleteQuestion(req QuestionRequest, answer string, err error) (uint64, bool) {
	p := c.pending
	if p == nil || p.gen != req.gen {
		log.Debug().Uint64("gen", req.gen).Msg("stale answer ignored")
		return 0, false
	}
	c.pending = nil
	c.qa = Idle

	if err != nil {
		log.Warn().Err(err).Msg("question failed")
		c.questionErr = MsgAnswerFailed
		c.history = p.op.Revert(c.history)
		return 0, false
	}

	c.revealGen++
	c.reveal = newReveal(c.revealGen, answer, p.op.Exchange.Timestamp, p.convID)
	return c.revealGen, true
}

// TickReveal advances the reveal with generation gen by one word. When every
// word is visible the next tick commits the full answer and persists the
// owning conversation. It returns true while more ticks are needed; ticks
// for any other generation are no-ops returning false.
func (c *Controller) TickReveal(ctx context.Context, gen uint64) bool {
	if c.reveal == nil || c.reveal.gen != gen {
		return false
	}
	if c.reveal.Advance() {
		return true
	}
	c.commitReveal(ctx)
	return false
}

// Ask runs a whole question synchronously and commits the answer without
// animation. It returns the answer text.
func (c *Controller) Ask(ctx context.Context, input string) (string, error) {
	req, ok := c.BeginQuestion(ctx, input)
	if !ok {
		return "", errors.New("nothing to ask")
	}
	answer, err := c.client.AskQuestion(ctx, req.Question)
	if _, ok := c.CompleteQuestion(req, answer, err); !ok {
		if err == nil {
			err = errors.New("answer discarded")
		}
		return "", err
	}
	c.flushReveal(ctx)
	return answer, nil
}

// =============================================================================
// INTERNALS
// =============================================================================

// flushReveal commits the active reveal's full answer at once.
func (c *Controller) flushReveal(ctx context.Context) {
	if c.reveal != nil {
		c.commitReveal(ctx)
	}
}

// discardReveal drops the active reveal without committing anything.
func (c *Controller) discardReveal() {
	c.reveal = nil
}

func (c *Controller) abandonQuestion() {
	if c.pending != nil {
		c.history = c.pending.op.Revert(c.history)
		c.pending = nil
	}
	c.qa = Idle
	c.qaGen++
}

func (c *Controller) commitReveal(ctx context.Context) {
	r := c.reveal
	c.reveal = nil

	for i := len(c.history) - 1; i >= 0; i-- {
		if c.history[i].Timestamp == r.timestamp {
			c.history[i].Answer = r.full
			break
		}
	}

	if r.convID == "" {
		return
	}
	if err := c.store.SetExchanges(ctx, r.convID, c.history); err != nil {
		log.Error().Err(err).Str("id", r.convID).Msg("failed to persist answer")
		c.persistErr = MsgSaveFailed
		return
	}
	c.persistErr = ""
}

func rootCause(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
