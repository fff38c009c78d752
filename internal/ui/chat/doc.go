// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the interactive docbud terminal UI.

The chat package implements a Bubble Tea model on top of session.Controller.
The controller owns the upload and question state machines; this package
turns key presses into controller operations, runs backend calls as
commands, and renders the result.

# Screens

  - Upload: a path input, the selected document summary and the upload
    status. Enter selects the file, a second Enter uploads it.
  - Chat: the question history in a scrolling viewport, the revealed answer
    and a question input.

A conversation sidebar can be shown next to either screen. Tab moves focus
into it; Enter loads the highlighted conversation and d deletes it.

# Asynchronous work

Uploads and questions run as tea.Cmd goroutines and report back with
UploadResultMsg and AnswerResultMsg. Answers are revealed one word per
RevealTickMsg; each tick carries the reveal generation so ticks from a
cancelled reveal are ignored. When the store supports change
notification, StoreChangedMsg reloads the sidebar.

# Key Bindings

  - Enter: select/upload file, ask question, load conversation
  - Ctrl+N: new chat
  - Ctrl+L: clear chat
  - Ctrl+B: toggle sidebar
  - Tab: focus sidebar / input
  - Ctrl+Y: copy last answer
  - Ctrl+E: export conversation to Markdown
  - PgUp/PgDn: scroll history
  - Ctrl+C: quit
*/
package chat
