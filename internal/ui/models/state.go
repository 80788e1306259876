// Package models holds the state rendered by the terminal UI.
package models

import (
	"github.com/Cyclone1070/claw/internal/security"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
)

// Message is one entry of the chat transcript.
type Message struct {
	Role    string // user | assistant | tool | error
	Content string
}

// State is the complete UI state.
type State struct {
	Width  int
	Height int

	Input    textinput.Model
	Viewport viewport.Model
	Spinner  spinner.Model
	Messages []Message

	// CanSubmit is true while the chat loop waits for input.
	CanSubmit bool

	StatusPhase   string // ready | thinking | executing | done | failed | error
	StatusMessage string
	DotCount      int
	CurrentModel  string

	PendingApproval *security.ApprovalRequest

	ModelList      []string
	ShowModelList  bool
	ModelListIndex int
}
