// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jeranaias/docbud-tui/internal/kv"
)

// =============================================================================
// TYPES
// =============================================================================

// Exchange is one question and its answer. Timestamp (Unix ms) doubles as
// the exchange's identity within its conversation.
type Exchange struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Timestamp int64  `json:"timestamp"`
}

// Time returns the exchange timestamp as a time.Time.
func (e Exchange) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// Conversation is the persisted chat session for one uploaded document.
type Conversation struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Timestamp    int64      `json:"timestamp"`
	Messages     []Exchange `json:"messages"`
	DocumentName string     `json:"documentName,omitempty"`
}

// Time returns the creation time.
func (c Conversation) Time() time.Time {
	return time.UnixMilli(c.Timestamp)
}

// Clone returns a deep copy.
func (c Conversation) Clone() Conversation {
	out := c
	out.Messages = append([]Exchange{}, c.Messages...)
	return out
}

// TitleFor derives a conversation title from a document file name by
// dropping the directory and a trailing ".pdf" in any letter case.
func TitleFor(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		base = name
	}
	if len(base) > 4 && strings.EqualFold(base[len(base)-4:], ".pdf") {
		base = base[:len(base)-4]
	}
	return base
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrConversationNotFound is returned when no conversation has the given id.
var ErrConversationNotFound = &ConversationError{Message: "conversation not found"}

// ConversationError represents a conversation-related error.
type ConversationError struct {
	ID      string
	Message string
}

func (e *ConversationError) Error() string {
	if e.ID != "" {
		return e.Message + ": " + e.ID
	}
	return e.Message
}

// Is matches on Message so errors.Is(err, ErrConversationNotFound) works for
// errors that carry an ID.
func (e *ConversationError) Is(target error) bool {
	t, ok := target.(*ConversationError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

func notFound(id string) error {
	return &ConversationError{ID: id, Message: ErrConversationNotFound.Message}
}

// =============================================================================
// STORE
// =============================================================================

// Store mirrors the persisted conversation list in memory. Every mutation
// rewrites the whole list under Key. Concurrent writers in other processes
// are last-write-wins; call Reload after an external change.
type Store struct {
	backend kv.Storage
	key     string

	// Now is the clock used for ids and timestamps. Tests replace it.
	Now func() time.Time

	mu    sync.Mutex
	convs []Conversation
	// decode failure from the last Load; mutations refuse to overwrite the
	// blob while it is set
	loadErr error
}

// NewStore returns a store over backend using key for the blob.
func NewStore(backend kv.Storage, key string) *Store {
	return &Store{
		backend: backend,
		key:     key,
		Now:     time.Now,
		convs:   []Conversation{},
	}
}

// Key returns the storage key holding the blob.
func (s *Store) Key() string { return s.key }

// Load reads the blob into the mirror and returns a copy. An absent blob is
// an empty list. A blob that cannot be decoded yields *DeserializationError
// and leaves the store read-only until Save or a successful Load.
func (s *Store) Load(ctx context.Context) ([]Conversation, error) {
	data, err := s.backend.Get(ctx, s.key)
	if errors.Is(err, kv.ErrNotFound) {
		data, err = nil, nil
	}
	if err != nil {
		return nil, err
	}

	convs, err := Decode(data)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.loadErr = err
		s.convs = []Conversation{}
		log.Error().Err(err).Str("key", s.key).Msg("persisted conversations are unreadable")
		return nil, err
	}
	s.loadErr = nil
	s.convs = convs
	log.Debug().Int("conversations", len(convs)).Str("key", s.key).Msg("loaded conversations")
	return cloneAll(convs), nil
}

// Reload re-reads the blob after another process changed it.
func (s *Store) Reload(ctx context.Context) error {
	_, err := s.Load(ctx)
	return err
}

// Save overwrites the blob with convs and replaces the mirror. It is the
// one write that is allowed after a failed Load.
func (s *Store) Save(ctx context.Context, convs []Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeLocked(ctx, cloneAll(convs)); err != nil {
		return err
	}
	s.loadErr = nil
	return nil
}

// List returns a copy of all conversations, most recent first.
func (s *Store) List() []Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.convs)
}

// Get returns a copy of the conversation with id.
func (s *Store) Get(id string) (Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.convs[i].Clone(), true
	}
	return Conversation{}, false
}

// CreateConversation prepends a new, empty conversation for documentName and
// persists it. The id is the creation time in milliseconds, moved forward
// one millisecond at a time until it is unique.
func (s *Store) CreateConversation(ctx context.Context, documentName string) (Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return Conversation{}, s.loadErr
	}

	ms := s.Now().UnixMilli()
	for s.indexLocked(strconv.FormatInt(ms, 10)) >= 0 {
		ms++
	}

	conv := Conversation{
		ID:           strconv.FormatInt(ms, 10),
		Title:        TitleFor(documentName),
		Timestamp:    ms,
		Messages:     []Exchange{},
		DocumentName: documentName,
	}

	next := make([]Conversation, 0, len(s.convs)+1)
	next = append(next, conv)
	next = append(next, s.convs...)
	if err := s.writeLocked(ctx, next); err != nil {
		return Conversation{}, err
	}

	log.Info().Str("id", conv.ID).Str("document", documentName).Msg("conversation created")
	return conv.Clone(), nil
}

// AppendExchange appends ex to the conversation's history and persists.
func (s *Store) AppendExchange(ctx context.Context, id string, ex Exchange) error {
	return s.mutate(ctx, id, func(c *Conversation) error {
		c.Messages = append(c.Messages, ex)
		return nil
	})
}

// ReplaceLastExchangeAnswer sets the answer of the conversation's most
// recent exchange and persists.
func (s *Store) ReplaceLastExchangeAnswer(ctx context.Context, id, text string) error {
	return s.mutate(ctx, id, func(c *Conversation) error {
		if len(c.Messages) == 0 {
			return &ConversationError{ID: id, Message: "conversation has no exchanges"}
		}
		c.Messages[len(c.Messages)-1].Answer = text
		return nil
	})
}

// SetExchanges replaces the conversation's history and persists.
func (s *Store) SetExchanges(ctx context.Context, id string, exs []Exchange) error {
	return s.mutate(ctx, id, func(c *Conversation) error {
		c.Messages = append([]Exchange{}, exs...)
		return nil
	})
}

// ClearExchanges empties the conversation's history without deleting it.
func (s *Store) ClearExchanges(ctx context.Context, id string) error {
	return s.SetExchanges(ctx, id, nil)
}

// DeleteConversation removes the conversation and persists.
func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return s.loadErr
	}

	i := s.indexLocked(id)
	if i < 0 {
		return notFound(id)
	}
	next := make([]Conversation, 0, len(s.convs)-1)
	next = append(next, s.convs[:i]...)
	next = append(next, s.convs[i+1:]...)
	if err := s.writeLocked(ctx, next); err != nil {
		return err
	}
	log.Info().Str("id", id).Msg("conversation deleted")
	return nil
}

// =============================================================================
// INTERNALS
// =============================================================================

// mutate applies fn to a copy of the conversation, then persists the whole
// list. The mirror only changes when the write succeeds.
func (s *Store) mutate(ctx context.Context, id string, fn func(*Conversation) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return s.loadErr
	}

	i := s.indexLocked(id)
	if i < 0 {
		return notFound(id)
	}

	next := cloneAll(s.convs)
	if err := fn(&next[i]); err != nil {
		return err
	}
	return s.writeLocked(ctx, next)
}

func (s *Store) writeLocked(ctx context.Context, next []Conversation) error {
	data, err := Encode(next)
	if err != nil {
		return err
	}
	if err := s.backend.Set(ctx, s.key, data); err != nil {
		return err
	}
	s.convs = next
	return nil
}

func (s *Store) indexLocked(id string) int {
	for i := range s.convs {
		if s.convs[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(convs []Conversation) []Conversation {
	out := make([]Conversation, len(convs))
	for i := range convs {
		out[i] = convs[i].Clone()
	}
	return out
}
