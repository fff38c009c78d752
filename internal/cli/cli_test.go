// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/docbud-tui/internal/backend"
	"github.com/jeranaias/docbud-tui/internal/config"
	"github.com/jeranaias/docbud-tui/internal/document"
	"github.com/jeranaias/docbud-tui/internal/kv"
	"github.com/jeranaias/docbud-tui/internal/session"
	"github.com/jeranaias/docbud-tui/internal/storage"
)

// =============================================================================
// HELPERS
// =============================================================================

const testAnswer = "Steps:\n1. Open the lid\n2. Press reset"

type env struct {
	dir     string
	dbPath  string
	server  *httptest.Server
	asked   []string
	failAsk bool
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{dir: t.TempDir()}
	e.dbPath = filepath.Join(e.dir, "docbud.db")
	t.Setenv("DOCBUD_HOME", filepath.Join(e.dir, "home"))

	mux := http.NewServeMux()
	mux.HandleFunc(backend.UploadPath, func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := r.FormFile("file"); err != nil {
			http.Error(w, "missing file", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc(backend.AskPath, func(w http.ResponseWriter, r *http.Request) {
		if e.failAsk {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		e.asked = append(e.asked, r.FormValue("question"))
		_ = json.NewEncoder(w).Encode(map[string]string{"answer": testAnswer})
	})
	e.server = httptest.NewServer(mux)
	t.Cleanup(e.server.Close)
	return e
}

func (e *env) pdf(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n%test\n"), 0600))
	return path
}

// run executes the command tree against the test backend and SQLite store.
func (e *env) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--backend", e.server.URL, "--store", "sqlite", "--store-path", e.dbPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func (e *env) conversations(t *testing.T) []storage.Conversation {
	t.Helper()
	out, _, err := e.run(t, "list", "--json")
	require.NoError(t, err)
	var convs []storage.Conversation
	require.NoError(t, json.Unmarshal([]byte(out), &convs))
	return convs
}

// =============================================================================
// ASK
// =============================================================================

func TestAskPrintsAnswerAndSaves(t *testing.T) {
	e := newEnv(t)

	out, errOut, err := e.run(t, "ask", e.pdf(t, "manual.pdf"), "How", "do", "I", "reset?")
	require.NoError(t, err)

	assert.Equal(t, "Steps:\n1. Open the lid\n2. Press reset\n", out)
	assert.Contains(t, errOut, "manual.pdf")
	assert.Equal(t, []string{"How do I reset?"}, e.asked)

	convs := e.conversations(t)
	require.Len(t, convs, 1)
	assert.Equal(t, "manual", convs[0].Title)
	assert.Equal(t, "manual.pdf", convs[0].DocumentName)
	require.Len(t, convs[0].Messages, 1)
	assert.Equal(t, testAnswer, convs[0].Messages[0].Answer)
	assert.Contains(t, errOut, convs[0].ID)
}

func TestAskRejectsNonPDF(t *testing.T) {
	e := newEnv(t)
	path := filepath.Join(e.dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain"), 0600))

	_, _, err := e.run(t, "ask", path, "what?")

	require.Error(t, err)
	assert.Contains(t, err.Error(), session.MsgNotPDF)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestAskBackendFailure(t *testing.T) {
	e := newEnv(t)
	e.failAsk = true

	_, _, err := e.run(t, "ask", e.pdf(t, "manual.pdf"), "what?")

	require.Error(t, err)
	assert.Contains(t, err.Error(), session.MsgAnswerFailed)
	assert.Equal(t, ExitNetworkError, GetExitCode(err))

	convs := e.conversations(t)
	require.Len(t, convs, 1)
	assert.Empty(t, convs[0].Messages)
}

// =============================================================================
// CONVERSATION COMMANDS
// =============================================================================

func TestListEmpty(t *testing.T) {
	e := newEnv(t)
	out, _, err := e.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No conversations yet.")
}

func TestShowClearDelete(t *testing.T) {
	e := newEnv(t)
	_, _, err := e.run(t, "ask", e.pdf(t, "guide.pdf"), "What", "now?")
	require.NoError(t, err)
	id := e.conversations(t)[0].ID

	out, _, err := e.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "guide")
	assert.Contains(t, out, "1 question")

	out, _, err = e.run(t, "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Q: What now?")
	assert.Contains(t, out, "A: Steps:")
	assert.Contains(t, out, "1. Open the lid")

	_, _, err = e.run(t, "clear", id)
	require.NoError(t, err)
	out, _, err = e.run(t, "show", id)
	require.NoError(t, err)
	assert.NotContains(t, out, "Q:")

	out, _, err = e.run(t, "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted conversation "+id)
	assert.Empty(t, e.conversations(t))
}

func TestShowUnknownConversation(t *testing.T) {
	e := newEnv(t)
	_, _, err := e.run(t, "show", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))

	_, _, err = e.run(t, "delete", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))
}

// =============================================================================
// EXPORT
// =============================================================================

func TestExportWritesFile(t *testing.T) {
	e := newEnv(t)
	_, _, err := e.run(t, "ask", e.pdf(t, "manual.pdf"), "How", "do", "I", "reset?")
	require.NoError(t, err)
	id := e.conversations(t)[0].ID

	outDir := filepath.Join(e.dir, "exports")
	out, _, err := e.run(t, "export", id, "--format", "html", "--out", outDir)
	require.NoError(t, err)

	path := strings.TrimSpace(out)
	assert.Equal(t, outDir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "conversation_manual_"))
	assert.Equal(t, ".html", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "How do I reset?")
	assert.Contains(t, string(data), "<li>Open the lid</li>")
}

func TestExportErrors(t *testing.T) {
	e := newEnv(t)

	_, _, err := e.run(t, "export", "nope", "--out", e.dir)
	require.Error(t, err)
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))

	_, _, err = e.run(t, "export", "nope", "--format", "pdf")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

// =============================================================================
// CONFIG
// =============================================================================

func TestConfigShowsOverrides(t *testing.T) {
	e := newEnv(t)
	out, _, err := e.run(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, e.server.URL)
	assert.Contains(t, out, `"backend": "sqlite"`)
}

func TestConfigInitWritesFile(t *testing.T) {
	e := newEnv(t)
	path := filepath.Join(e.dir, "cfg.toml")

	_, _, err := e.run(t, "--config", filepath.Join(e.dir, "missing.toml"), "config", "init")
	require.Error(t, err, "loading a missing file fails")

	// Write a minimal file, then re-initialize it with --force.
	require.NoError(t, os.WriteFile(path, []byte("version = \"1\"\n"), 0600))
	_, _, err = e.run(t, "--config", path, "config", "init")
	require.Error(t, err)

	_, _, err = e.run(t, "--config", path, "config", "init", "--force")
	require.NoError(t, err)

	cfg, err := config.LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, config.StorageSQLite, cfg.Storage.Backend)
}

func TestInvalidStoreIsConfigError(t *testing.T) {
	e := newEnv(t)
	_, _, err := e.run(t, "--store", "floppy", "list")
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, GetExitCode(err))
}

// =============================================================================
// REPL
// =============================================================================

type scriptedReader struct {
	lines   []string
	history []string
	prompts []string
}

func (s *scriptedReader) Prompt(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *scriptedReader) AppendHistory(item string) {
	s.history = append(s.history, item)
}

func TestREPLSession(t *testing.T) {
	e := newEnv(t)
	store := storage.NewStore(kv.NewMemoryStorage(), config.DefaultStorageKey)
	_, err := store.Load(context.Background())
	require.NoError(t, err)
	ctrl := session.NewController(store, backend.NewClient(backend.ClientConfig{BaseURL: e.server.URL}))

	in := &scriptedReader{lines: []string{
		"",
		"/help",
		"what is this?", // not a file yet
		e.pdf(t, "manual.pdf"),
		"How do I reset?",
		"/list",
		"/bogus",
		"/clear",
		"/new",
	}}
	var out, errOut bytes.Buffer
	r := &repl{ctx: context.Background(), ctrl: ctrl, in: in, out: &out, errOut: &errOut}

	require.NoError(t, r.run(""))

	assert.Contains(t, out.String(), "/open <id>")
	assert.Contains(t, out.String(), "1. Open the lid")
	assert.Contains(t, out.String(), "Conversation cleared.")
	assert.Contains(t, errOut.String(), "unknown command /bogus")
	assert.Equal(t, []string{"How do I reset?"}, e.asked)
	assert.Equal(t, []string{"pdf> ", "pdf> ", "pdf> ", "pdf> ", "ask> ", "ask> ", "ask> ", "ask> ", "ask> ", "pdf> "}, in.prompts)
	assert.NotContains(t, in.history, "")

	convs := store.List()
	require.Len(t, convs, 1)
	assert.Empty(t, convs[0].Messages)
}

func TestREPLOpenConversation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	store := storage.NewStore(kv.NewMemoryStorage(), config.DefaultStorageKey)
	_, err := store.Load(ctx)
	require.NoError(t, err)
	conv, err := store.CreateConversation(ctx, "handbook.pdf")
	require.NoError(t, err)
	require.NoError(t, store.SetExchanges(ctx, conv.ID, []storage.Exchange{{Question: "Who?", Answer: "The ops team", Timestamp: 1}}))

	ctrl := session.NewController(store, backend.NewClient(backend.ClientConfig{BaseURL: e.server.URL}))
	in := &scriptedReader{lines: []string{"/open " + conv.ID, "/open", "/delete " + conv.ID, "/quit", "never read"}}
	var out, errOut bytes.Buffer
	r := &repl{ctx: ctx, ctrl: ctrl, in: in, out: &out, errOut: &errOut}

	require.NoError(t, r.run(""))

	assert.Contains(t, out.String(), "Opened handbook.pdf (1 questions)")
	assert.Contains(t, out.String(), "The ops team")
	assert.Contains(t, errOut.String(), "usage: /open <id>")
	assert.Empty(t, store.List())
	assert.Equal(t, session.NoFile, ctrl.UploadState())
	assert.Len(t, in.lines, 1)
}

// =============================================================================
// EXIT CODES
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("x"), ExitGeneralError},
		{"config", &ConfigError{Err: errors.New("bad")}, ExitConfigError},
		{"validate", config.ValidateErrors{{Field: "f", Message: "m"}}, ExitConfigError},
		{"timeout", &CommandError{Command: "ask", Err: backend.ErrTimeout}, ExitTimeoutError},
		{"connection", backend.ErrConnection, ExitNetworkError},
		{"not found", storage.ErrConversationNotFound, ExitNotFoundError},
		{"not pdf", document.ErrNotPDF, ExitUsageError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}
