// Package ui is the interactive terminal front end. It reads user input,
// shows the transcript and workflow progress, and answers approval
// prompts for the security gate.
package ui

import (
	"context"

	"github.com/Cyclone1070/claw/internal/security"
	"github.com/Cyclone1070/claw/internal/ui/services"
	"github.com/Cyclone1070/claw/internal/workflow"
	"github.com/Cyclone1070/claw/internal/workflow/observe"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// UICommand is a slash command forwarded to the chat loop.
type UICommand struct {
	Type string
	Args map[string]string
}

// UI implements security.Approver on top of a Bubble Tea program.
type UI struct {
	program *tea.Program

	inputReq      chan inputRequest
	inputResp     chan string
	approvalReq   chan security.ApprovalRequest
	approvalResp  chan security.Approval
	events        chan workflow.Event
	messageChan   chan string
	modelListChan chan []string
	commandChan   chan UICommand
	readyChan     chan struct{}
}

type inputRequest struct {
	Prompt string
}

// UIChannels holds the channels between the UI and the chat loop.
type UIChannels struct {
	InputReq      chan inputRequest
	InputResp     chan string
	ApprovalReq   chan security.ApprovalRequest
	ApprovalResp  chan security.Approval
	Events        chan workflow.Event
	MessageChan   chan string
	ModelListChan chan []string
	CommandChan   chan UICommand
	ReadyChan     chan struct{} // closed when the UI accepts requests
}

// NewUIChannels creates a new UIChannels struct with default buffers
func NewUIChannels() *UIChannels {
	return &UIChannels{
		InputReq:      make(chan inputRequest),
		InputResp:     make(chan string),
		ApprovalReq:   make(chan security.ApprovalRequest),
		ApprovalResp:  make(chan security.Approval),
		Events:        make(chan workflow.Event, 64),
		MessageChan:   make(chan string, 10),
		ModelListChan: make(chan []string),
		CommandChan:   make(chan UICommand, 10),
		ReadyChan:     make(chan struct{}),
	}
}

// SpinnerFactory creates a new spinner
type SpinnerFactory func() spinner.Model

// NewUI creates a new Bubble Tea UI
func NewUI(channels *UIChannels, renderer services.MarkdownRenderer, spinnerFactory SpinnerFactory, model string) *UI {
	ui := &UI{
		inputReq:      channels.InputReq,
		inputResp:     channels.InputResp,
		approvalReq:   channels.ApprovalReq,
		approvalResp:  channels.ApprovalResp,
		events:        channels.Events,
		messageChan:   channels.MessageChan,
		modelListChan: channels.ModelListChan,
		commandChan:   channels.CommandChan,
		readyChan:     channels.ReadyChan,
	}
	m := newBubbleTeaModel(channels, renderer, spinnerFactory)
	m.state.CurrentModel = model
	ui.program = tea.NewProgram(m, tea.WithAltScreen())
	return ui
}

// Start runs the program until the user quits.
func (u *UI) Start() error {
	_, err := u.program.Run()
	return err
}

// Quit stops the program.
func (u *UI) Quit() { u.program.Quit() }

// ReadInput waits for the user to submit a line.
func (u *UI) ReadInput(ctx context.Context, prompt string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case u.inputReq <- inputRequest{Prompt: prompt}:
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case response := <-u.inputResp:
			return response, nil
		}
	}
}

// RequestApproval shows the approval popup and waits for an answer.
// Cancellation denies.
func (u *UI) RequestApproval(ctx context.Context, req security.ApprovalRequest) (security.Approval, error) {
	select {
	case <-ctx.Done():
		return security.ApprovalDeny, ctx.Err()
	case u.approvalReq <- req:
		select {
		case <-ctx.Done():
			return security.ApprovalDeny, ctx.Err()
		case decision := <-u.approvalResp:
			return decision, nil
		}
	}
}

// Observer returns a workflow observer feeding the status bar.
func (u *UI) Observer() workflow.Observer {
	return observe.NewChannel(u.events)
}

// WriteMessage appends an assistant message to the transcript.
func (u *UI) WriteMessage(content string) {
	select {
	case u.messageChan <- content:
	default:
	}
}

// WriteModelList opens the model picker.
func (u *UI) WriteModelList(models []string) {
	select {
	case u.modelListChan <- models:
	default:
	}
}

// Commands returns the command channel
func (u *UI) Commands() <-chan UICommand {
	return u.commandChan
}

// Ready returns a channel that is closed when the UI is ready to accept requests
func (u *UI) Ready() <-chan struct{} {
	return u.readyChan
}
