// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docbud-tui/internal/session"
	"github.com/jeranaias/docbud-tui/internal/ui/components"
	"github.com/jeranaias/docbud-tui/internal/ui/styles"
)

// =============================================================================
// SCREEN AND FOCUS
// =============================================================================

// Screen is the main area currently shown.
type Screen int

const (
	ScreenUpload Screen = iota // Select and upload a PDF
	ScreenChat                 // Ask questions about the uploaded PDF
)

// Focus is the widget receiving key presses.
type Focus int

const (
	FocusInput Focus = iota
	FocusSidebar
)

const (
	sidebarWidth    = 30
	minSidebarTotal = 70 // below this terminal width the sidebar is hidden
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Options configures a Model.
type Options struct {
	// RevealInterval is the delay between revealed answer words.
	RevealInterval time.Duration
	// ShowSidebar shows the conversation list on start.
	ShowSidebar bool
	// Changes delivers a value whenever the store is rewritten elsewhere.
	// Nil disables live reload.
	Changes <-chan struct{}
	// Context bounds backend calls and store writes. Defaults to
	// context.Background().
	Context context.Context
	// ExportDir receives Markdown exports. Defaults to the working directory.
	ExportDir string
}

// Model is the Bubble Tea model for the docbud UI.
type Model struct {
	ctrl  *session.Controller
	theme *styles.Theme
	keys  KeyMap
	ctx   context.Context

	// Widgets
	pathInput textinput.Model
	input     textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	header    *components.Header
	sidebar   *components.Sidebar

	// Layout
	width       int
	height      int
	showSidebar bool
	focus       Focus

	revealInterval time.Duration
	changes        <-chan struct{}
	exportDir      string
	reloadPending  bool

	// statusMsg is transient feedback such as "Copied".
	statusMsg string
}

// New creates the UI model around a controller.
func New(ctrl *session.Controller, theme *styles.Theme, opts Options) Model {
	path := textinput.New()
	path.Prompt = "PDF: "
	path.Placeholder = "path/to/document.pdf"
	path.CharLimit = 4096
	path.Focus()

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question about the document..."
	ti.CharLimit = 4096

	vp := viewport.New(80, 20)
	vp.SetContent("")

	// ASCII frames render everywhere
	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}

	interval := opts.RevealInterval
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	m := Model{
		ctrl:           ctrl,
		theme:          theme,
		keys:           DefaultKeyMap(),
		ctx:            ctx,
		pathInput:      path,
		input:          ti,
		viewport:       vp,
		spinner:        sp,
		header:         components.NewHeader(theme),
		sidebar:        components.NewSidebar(theme),
		width:          80,
		height:         24,
		showSidebar:    opts.ShowSidebar,
		revealInterval: interval,
		changes:        opts.Changes,
		exportDir:      opts.ExportDir,
	}
	m.refresh()
	return m
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the cursor blink and the store subscription.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForChange(m.changes))
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case UploadResultMsg:
		return m.handleUploadResult(msg)

	case AnswerResultMsg:
		return m.handleAnswerResult(msg)

	case RevealTickMsg:
		return m.handleRevealTick(msg)

	case StoreChangedMsg:
		return m.handleStoreChanged()

	case CopiedMsg:
		if msg.Err != nil {
			m.statusMsg = "Failed to copy: " + msg.Err.Error()
		} else {
			m.statusMsg = "Copied answer to clipboard"
		}
		return m, nil

	case ExportedMsg:
		if msg.Err != nil {
			m.statusMsg = "Export failed: " + msg.Err.Error()
		} else {
			m.statusMsg = "Exported to " + msg.Path
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.updateViewport()
		return m, cmd
	}

	return m.updateInputs(msg)
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Screen returns the screen implied by the upload state.
func (m Model) Screen() Screen {
	if m.ctrl.UploadState() == session.Ready {
		return ScreenChat
	}
	return ScreenUpload
}

// Focus returns the focused widget.
func (m Model) Focus() Focus { return m.focus }

// SidebarVisible reports whether the sidebar is drawn.
func (m Model) SidebarVisible() bool {
	return m.showSidebar && m.width >= minSidebarTotal
}

// Controller returns the session controller.
func (m Model) Controller() *session.Controller { return m.ctrl }

// StatusMessage returns the transient status line.
func (m Model) StatusMessage() string { return m.statusMsg }

func (m Model) busy() bool {
	return m.ctrl.UploadState() == session.Uploading || m.ctrl.QAState() == session.Asking
}

// =============================================================================
// HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.layout()
	m.updateViewport()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMsg = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.NewChat):
		m.ctrl.NewChat(m.ctx)
		m.pathInput.Reset()
		m.input.Reset()
		m.setFocus(FocusInput)
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.ToggleSidebar):
		m.showSidebar = !m.showSidebar
		if !m.showSidebar {
			m.setFocus(FocusInput)
		}
		m.layout()
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.FocusSidebar):
		if m.focus == FocusSidebar {
			m.setFocus(FocusInput)
		} else if m.SidebarVisible() {
			m.setFocus(FocusSidebar)
		}
		m.refresh()
		return m, nil
	}

	if m.focus == FocusSidebar {
		return m.handleSidebarKey(msg)
	}
	if m.Screen() == ScreenUpload {
		return m.handleUploadKey(msg)
	}
	return m.handleChatKey(msg)
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.sidebar.MoveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.sidebar.MoveCursor(1)
	case key.Matches(msg, m.keys.Back):
		m.setFocus(FocusInput)
	case key.Matches(msg, m.keys.Submit):
		conv, ok := m.sidebar.Selected()
		if !ok {
			return m, nil
		}
		if err := m.ctrl.LoadConversation(m.ctx, conv.ID); err != nil {
			m.statusMsg = "Cannot open conversation: " + err.Error()
			return m, nil
		}
		m.input.Reset()
		m.setFocus(FocusInput)
	case key.Matches(msg, m.keys.Delete):
		conv, ok := m.sidebar.Selected()
		if !ok {
			return m, nil
		}
		if err := m.ctrl.DeleteConversation(m.ctx, conv.ID); err != nil {
			m.statusMsg = session.MsgSaveFailed
			return m, nil
		}
		if m.Screen() == ScreenUpload {
			m.pathInput.Reset()
		}
	}
	m.refresh()
	return m, nil
}

func (m Model) handleUploadKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, m.keys.Submit) {
		return m.updateInputs(msg)
	}

	switch m.ctrl.UploadState() {
	case session.Uploading:
		return m, nil
	case session.FileSelected:
		// Enter on an unchanged path confirms the upload.
		if doc := m.ctrl.Document(); doc != nil && m.pathInput.Value() == doc.Path {
			return m.startUpload()
		}
	}

	if err := m.ctrl.SelectFile(m.pathInput.Value()); err != nil {
		m.refresh()
		return m, nil
	}
	m.pathInput.SetValue(m.ctrl.Document().Path)
	m.pathInput.CursorEnd()
	m.refresh()
	return m, nil
}

func (m Model) startUpload() (tea.Model, tea.Cmd) {
	req, ok := m.ctrl.BeginUpload()
	if !ok {
		return m, nil
	}
	m.refresh()
	return m, tea.Batch(uploadCmd(m.ctx, m.ctrl.Client(), req), m.spinner.Tick)
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		req, ok := m.ctrl.BeginQuestion(m.ctx, m.input.Value())
		if !ok {
			return m, nil
		}
		m.input.Reset()
		m.refresh()
		return m, tea.Batch(askCmd(m.ctx, m.ctrl.Client(), req), m.spinner.Tick)

	case key.Matches(msg, m.keys.ClearChat):
		if err := m.ctrl.ClearChat(m.ctx); err != nil {
			m.statusMsg = session.MsgSaveFailed
		}
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		return m.copyLastAnswer()

	case key.Matches(msg, m.keys.Export):
		return m.exportCurrent()

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}
	return m.updateInputs(msg)
}

func (m Model) handleUploadResult(msg UploadResultMsg) (tea.Model, tea.Cmd) {
	m.ctrl.CompleteUpload(m.ctx, msg.Request, msg.Err)
	if m.ctrl.UploadState() == session.Ready {
		m.input.Reset()
		m.setFocus(FocusInput)
	}
	m.refresh()
	return m, nil
}

func (m Model) handleAnswerResult(msg AnswerResultMsg) (tea.Model, tea.Cmd) {
	gen, ok := m.ctrl.CompleteQuestion(msg.Request, msg.Answer, msg.Err)
	m.refresh()
	if !ok {
		return m, nil
	}
	return m, revealTickCmd(gen, m.revealInterval)
}

func (m Model) handleRevealTick(msg RevealTickMsg) (tea.Model, tea.Cmd) {
	more := m.ctrl.TickReveal(m.ctx, msg.Gen)
	m.refresh()
	if more {
		return m, revealTickCmd(msg.Gen, m.revealInterval)
	}
	return m, nil
}

// handleStoreChanged reloads the store, deferred while a question or
// reveal is running.
func (m Model) handleStoreChanged() (tea.Model, tea.Cmd) {
	m.reloadPending = true
	m.refresh()
	return m, waitForChange(m.changes)
}

func (m *Model) reloadIfPending() {
	if !m.reloadPending || m.ctrl.QAState() == session.Asking {
		return
	}
	if _, _, revealing := m.ctrl.Revealing(); revealing {
		return
	}
	m.reload()
}

func (m *Model) reload() {
	m.reloadPending = false
	if err := m.ctrl.Reload(m.ctx); err != nil {
		m.statusMsg = "Could not reload history: " + err.Error()
	}
}

func (m Model) copyLastAnswer() (tea.Model, tea.Cmd) {
	history := m.ctrl.History()
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Answer != "" {
			return m, copyCmd(history[i].Answer)
		}
	}
	m.statusMsg = "No answer to copy"
	return m, nil
}

func (m Model) exportCurrent() (tea.Model, tea.Cmd) {
	conv, ok := m.ctrl.Store().Get(m.ctrl.CurrentID())
	if !ok {
		m.statusMsg = "Nothing to export"
		return m, nil
	}
	return m, exportCmd(conv, m.exportDir)
}

// updateInputs forwards msg to the focused text input.
func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.focus != FocusInput {
		return m, nil
	}
	var cmd tea.Cmd
	if m.Screen() == ScreenUpload {
		m.pathInput, cmd = m.pathInput.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

// =============================================================================
// STATE SYNC
// =============================================================================

func (m *Model) setFocus(f Focus) {
	m.focus = f
	m.sidebar.Focused = f == FocusSidebar
	if f == FocusInput {
		m.pathInput.Focus()
		m.input.Focus()
	} else {
		m.pathInput.Blur()
		m.input.Blur()
	}
}

// refresh copies controller state into the widgets, first applying a
// reload deferred by handleStoreChanged once nothing is in flight.
func (m *Model) refresh() {
	m.reloadIfPending()
	m.header.Document = m.ctrl.DocumentName()
	m.header.Status = headerStatus(m.ctrl)
	m.sidebar.SetConversations(m.ctrl.Conversations())
	m.sidebar.CurrentID = m.ctrl.CurrentID()
	m.layout()
	m.updateViewport()
}

func headerStatus(ctrl *session.Controller) string {
	switch {
	case ctrl.UploadState() == session.Uploading:
		return "uploading"
	case ctrl.QAState() == session.Asking:
		return "thinking"
	case ctrl.UploadState() == session.Ready:
		return "ready"
	}
	return ""
}
